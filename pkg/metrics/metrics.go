package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ProviderRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "agri_advisor",
		Name:      "provider_requests_total",
		Help:      "External data provider calls by provider and outcome.",
	}, []string{"provider", "outcome"})

	ProviderLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "agri_advisor",
		Name:      "provider_request_seconds",
		Help:      "External data provider latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"provider"})

	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "agri_advisor",
		Name:      "quote_cache_lookups_total",
		Help:      "Quote cache lookups by result (hit, miss, stale).",
	}, []string{"result"})

	SyntheticFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "agri_advisor",
		Name:      "synthetic_fallbacks_total",
		Help:      "Aggregations answered by the synthetic generator.",
	})

	RetrievalMode = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "agri_advisor",
		Name:      "retrieval_mode_total",
		Help:      "Knowledge retrievals by ranking strategy.",
	}, []string{"mode"})

	AdviceAnswers = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "agri_advisor",
		Name:      "advice_answers_total",
		Help:      "Advice responses by answer source (llm, fallback).",
	}, []string{"source"})
)

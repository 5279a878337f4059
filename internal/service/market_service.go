package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"agri-advisor/internal/cache"
	"agri-advisor/internal/commodity"
	"agri-advisor/internal/models"
	"agri-advisor/internal/provider"
	"agri-advisor/internal/synthetic"
	"agri-advisor/pkg/metrics"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	defaultQuoteLimit   = 10
	providerRecordLimit = 100
	maxConcurrentFetch  = 8
)

// MarketService aggregates quotes from every configured provider.
type MarketService struct {
	providers  []provider.MarketProvider
	priorities map[string]int
	generator  *synthetic.Generator
	resolver   *commodity.Resolver
	cache      *cache.QuoteCache
	timeout    time.Duration
	limit      int
	now        func() time.Time
	logger     *zap.Logger
}

func NewMarketService(
	providers []provider.MarketProvider,
	generator *synthetic.Generator,
	resolver *commodity.Resolver,
	quoteCache *cache.QuoteCache,
	timeout time.Duration,
	defaultLimit int,
	logger *zap.Logger,
) *MarketService {
	sorted := append([]provider.MarketProvider(nil), providers...)
	provider.SortMarket(sorted)

	priorities := make(map[string]int, len(sorted))
	for _, p := range sorted {
		priorities[p.Name()] = p.Priority()
	}
	if defaultLimit <= 0 {
		defaultLimit = defaultQuoteLimit
	}

	return &MarketService{
		providers:  sorted,
		priorities: priorities,
		generator:  generator,
		resolver:   resolver,
		cache:      quoteCache,
		timeout:    timeout,
		limit:      defaultLimit,
		now:        time.Now,
		logger:     logger,
	}
}

// FetchQuotes returns at most limit quotes for the location and commodities.
// It never fails: when no provider has data the synthetic generator answers.
func (s *MarketService) FetchQuotes(ctx context.Context, loc models.Location, commodities []string, limit int) []models.MarketQuote {
	if limit <= 0 {
		limit = s.limit
	}
	keys := s.canonicalKeys(commodities)
	day := s.now()

	entry, hit := s.cache.GetOrFetch(ctx, cache.Key(loc, keys, day), func(ctx context.Context) (cache.Entry, bool) {
		entry := s.aggregate(ctx, loc, keys, day)
		// A cancelled caller sees failures that say nothing about the providers.
		return entry, ctx.Err() == nil
	})

	quotes := s.rank(entry.Quotes, loc, keys, limit)
	s.logger.Info("Market quotes ready",
		zap.String("location", loc.Label()),
		zap.Strings("commodities", keys),
		zap.Bool("cache_hit", hit),
		zap.Bool("synthetic", entry.Synthetic),
		zap.Int("count", len(quotes)),
	)
	return quotes
}

func (s *MarketService) canonicalKeys(commodities []string) []string {
	var keys []string
	seen := make(map[string]struct{}, len(commodities))
	for _, c := range commodities {
		key, _ := s.resolver.Canonical(c)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}
	return keys
}

// aggregate fans out to every provider for every commodity and waits for all
// calls to settle. Failures are logged and skipped; slots keep the merge in
// priority order regardless of completion order.
func (s *MarketService) aggregate(ctx context.Context, loc models.Location, keys []string, day time.Time) cache.Entry {
	targets := keys
	if len(targets) == 0 {
		targets = []string{""}
	}

	results := make([][][]models.MarketQuote, len(s.providers))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(maxConcurrentFetch)

	for i, p := range s.providers {
		results[i] = make([][]models.MarketQuote, len(targets))
		for j, target := range targets {
			eg.Go(func() error {
				results[i][j] = s.fetchOne(egCtx, p, provider.Request{
					Location:  loc,
					Commodity: target,
					Limit:     providerRecordLimit,
					Day:       day,
				})
				return nil
			})
		}
	}
	_ = eg.Wait()

	var merged []models.MarketQuote
	for i := range results {
		for j := range results[i] {
			merged = append(merged, results[i][j]...)
		}
	}
	quotes := filterCommodities(Dedup(merged), keys)

	if len(quotes) == 0 {
		metrics.SyntheticFallbacks.Inc()
		s.logger.Warn("No live market data, using synthetic estimates",
			zap.String("location", loc.Label()),
			zap.Strings("commodities", keys),
		)
		return cache.Entry{
			Quotes:    s.generator.Generate(loc, keys, day),
			StoredAt:  s.now(),
			Synthetic: true,
		}
	}

	return cache.Entry{Quotes: quotes, StoredAt: s.now()}
}

func (s *MarketService) fetchOne(ctx context.Context, p provider.MarketProvider, req provider.Request) []models.MarketQuote {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	raw, err := p.Fetch(ctx, req)
	metrics.ProviderLatency.WithLabelValues(p.Name()).Observe(time.Since(start).Seconds())

	if errors.Is(err, provider.ErrNotConfigured) {
		metrics.ProviderRequests.WithLabelValues(p.Name(), "skipped").Inc()
		return nil
	}
	if err != nil {
		metrics.ProviderRequests.WithLabelValues(p.Name(), "error").Inc()
		s.logger.Warn("Market provider failed",
			zap.String("provider", p.Name()),
			zap.String("commodity", req.Commodity),
			zap.Error(err),
		)
		return nil
	}

	quotes, err := p.Parse(raw)
	if err != nil {
		metrics.ProviderRequests.WithLabelValues(p.Name(), "malformed").Inc()
		s.logger.Warn("Market provider returned malformed data",
			zap.String("provider", p.Name()),
			zap.Error(err),
		)
		return nil
	}
	if len(quotes) == 0 {
		metrics.ProviderRequests.WithLabelValues(p.Name(), "empty").Inc()
		s.logger.Info("Market provider had no data",
			zap.String("provider", p.Name()),
			zap.String("commodity", req.Commodity),
		)
		return nil
	}

	metrics.ProviderRequests.WithLabelValues(p.Name(), "ok").Inc()
	return quotes
}

// Dedup keeps the first quote for each (commodity, market, district, date).
func Dedup(quotes []models.MarketQuote) []models.MarketQuote {
	seen := make(map[string]struct{}, len(quotes))
	out := make([]models.MarketQuote, 0, len(quotes))
	for _, q := range quotes {
		if !q.Valid() {
			continue
		}
		k := q.DedupKey()
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, q)
	}
	return out
}

// filterCommodities keeps only quotes whose canonical commodity was requested.
// Fuzzy matching is deliberately absent here.
func filterCommodities(quotes []models.MarketQuote, keys []string) []models.MarketQuote {
	if len(keys) == 0 {
		return quotes
	}
	want := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		want[k] = struct{}{}
	}
	out := quotes[:0]
	for _, q := range quotes {
		if _, ok := want[q.Commodity]; ok {
			out = append(out, q)
		}
	}
	return out
}

// rank sorts a copy of quotes and truncates it to limit. The order depends
// only on quote contents.
func (s *MarketService) rank(quotes []models.MarketQuote, loc models.Location, keys []string, limit int) []models.MarketQuote {
	requested := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		requested[k] = struct{}{}
	}

	out := append([]models.MarketQuote(nil), quotes...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := &out[i], &out[j]

		_, ra := requested[a.Commodity]
		_, rb := requested[b.Commodity]
		if ra != rb {
			return ra
		}
		if !loc.IsZero() {
			la, lb := loc.Matches(a.Market, a.District, a.State), loc.Matches(b.Market, b.District, b.State)
			if la != lb {
				return la
			}
		}
		if a.Trend.Rank() != b.Trend.Rank() {
			return a.Trend.Rank() < b.Trend.Rank()
		}
		if a.Commodity != b.Commodity {
			return a.Commodity < b.Commodity
		}
		if c := strings.Compare(a.Market, b.Market); c != 0 {
			return c < 0
		}
		if pa, pb := s.priority(a.Source), s.priority(b.Source); pa != pb {
			return pa < pb
		}
		if a.District != b.District {
			return a.District < b.District
		}
		return a.Date > b.Date
	})

	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (s *MarketService) priority(source string) int {
	if p, ok := s.priorities[source]; ok {
		return p
	}
	return len(s.priorities) + 1
}

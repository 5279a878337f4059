package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"agri-advisor/internal/commodity"
	"agri-advisor/internal/models"
	"agri-advisor/pkg/config"
	"agri-advisor/pkg/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var ErrEmptyQuery = errors.New("query is empty")

const (
	SourceLLM      = "llm"
	SourceFallback = "fallback"

	defaultPromptQuotes = 5
	defaultLLMTimeout   = 15 * time.Second
	minFuzzyQueryRunes  = 5
)

type Retriever interface {
	Retrieve(ctx context.Context, query, language string, k int) []models.KnowledgeDocument
}

type QuoteFetcher interface {
	FetchQuotes(ctx context.Context, loc models.Location, commodities []string, limit int) []models.MarketQuote
}

type WeatherReporter interface {
	Current(ctx context.Context, loc models.Location) models.WeatherSnapshot
}

type AdviceRequest struct {
	Query       string
	Language    string
	Location    models.Location
	Commodities []string
}

type Advice struct {
	ID          uuid.UUID                  `json:"id"`
	Answer      string                     `json:"answer"`
	Language    string                     `json:"language"`
	Confidence  float64                    `json:"confidence"`
	Source      string                     `json:"source"`
	Season      Season                     `json:"season"`
	Commodities []string                   `json:"commodities"`
	Quotes      []models.MarketQuote       `json:"quotes"`
	Weather     models.WeatherSnapshot     `json:"weather"`
	Snippets    []models.KnowledgeDocument `json:"snippets"`
}

// AdvisoryService turns a farmer's question into an answer grounded in
// knowledge snippets, market quotes and current weather.
type AdvisoryService struct {
	retriever Retriever
	market    QuoteFetcher
	weather   WeatherReporter
	completer Completer // nil means always use the fallback
	resolver  *commodity.Resolver

	llm          config.LLMConfig
	topK         int
	quoteLimit   int
	promptQuotes int

	now    func() time.Time
	logger *zap.Logger
}

func NewAdvisoryService(
	retriever Retriever,
	market QuoteFetcher,
	weather WeatherReporter,
	completer Completer,
	resolver *commodity.Resolver,
	cfg *config.Config,
	logger *zap.Logger,
) *AdvisoryService {
	s := &AdvisoryService{
		retriever:    retriever,
		market:       market,
		weather:      weather,
		completer:    completer,
		resolver:     resolver,
		llm:          cfg.LLM,
		topK:         cfg.RAG.TopK,
		quoteLimit:   cfg.Advisory.QuoteLimit,
		promptQuotes: cfg.Advisory.PromptQuotes,
		now:          time.Now,
		logger:       logger,
	}
	if s.llm.Timeout <= 0 {
		s.llm.Timeout = defaultLLMTimeout
	}
	if s.promptQuotes <= 0 {
		s.promptQuotes = defaultPromptQuotes
	}
	return s
}

// Advise answers req. The only error is ErrEmptyQuery; every data-layer
// failure degrades to synthetic data or the rule-based answer.
func (s *AdvisoryService) Advise(ctx context.Context, req AdviceRequest) (*Advice, error) {
	query := cleanText(req.Query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	lang := DetectLanguage(query, req.Language)
	commodities := s.commodities(query, req.Commodities)
	season := SeasonFor(s.now())

	var (
		docs    []models.KnowledgeDocument
		quotes  []models.MarketQuote
		weather models.WeatherSnapshot
	)
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		docs = s.retriever.Retrieve(egCtx, query, lang, s.topK)
		return nil
	})
	eg.Go(func() error {
		quotes = s.market.FetchQuotes(egCtx, req.Location, commodities, s.quoteLimit)
		return nil
	})
	eg.Go(func() error {
		weather = s.weather.Current(egCtx, req.Location)
		return nil
	})
	_ = eg.Wait()

	prompt := s.BuildContext(query, req.Location, lang, weather, docs, quotes)

	source := SourceLLM
	answer, err := s.complete(ctx, lang, prompt)
	if err != nil {
		s.logger.Warn("Completion failed, using rule-based answer",
			zap.String("language", lang),
			zap.Error(err),
		)
		source = SourceFallback
		answer = FallbackAnswer(query, lang, weather, quotes, season)
	}
	metrics.AdviceAnswers.WithLabelValues(source).Inc()

	advice := &Advice{
		ID:          uuid.New(),
		Answer:      answer,
		Language:    lang,
		Confidence:  Confidence(answer),
		Source:      source,
		Season:      season,
		Commodities: commodities,
		Quotes:      quotes,
		Weather:     weather,
		Snippets:    docs,
	}

	s.logger.Info("Advice generated",
		zap.String("advice_id", advice.ID.String()),
		zap.String("language", lang),
		zap.String("source", source),
		zap.Strings("commodities", commodities),
		zap.Int("snippets", len(docs)),
		zap.Int("quotes", len(quotes)),
	)
	return advice, nil
}

// commodities merges crops named in the query with those given explicitly.
// Tokens the resolver did not recognise stay out of the market lookup, as do
// fuzzy matches on short words ("time" is two edits from "rice").
func (s *AdvisoryService) commodities(query string, explicit []string) []string {
	var out []string
	seen := make(map[string]struct{})
	add := func(key string) {
		if _, ok := seen[key]; ok || key == "" {
			return
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}

	for _, c := range explicit {
		if key, ok := s.resolver.Canonical(c); ok {
			add(key)
		}
	}
	for _, m := range s.resolver.ResolveDetailed(query) {
		if !m.Known() {
			continue
		}
		if m.Method == commodity.MethodFuzzy && utf8.RuneCountInString(m.Token) < minFuzzyQueryRunes {
			continue
		}
		add(m.Key)
	}
	return out
}

func (s *AdvisoryService) complete(ctx context.Context, lang, prompt string) (string, error) {
	if s.completer == nil {
		return "", ErrNoCompletion
	}

	ctx, cancel := context.WithTimeout(ctx, s.llm.Timeout)
	defer cancel()

	answer, err := s.completer.Complete(ctx, systemPrompt(lang), prompt, s.llm.MaxTokens, s.llm.Temperature)
	if err != nil {
		return "", fmt.Errorf("failed to complete advice: %w", err)
	}
	answer = cleanText(answer)
	if answer == "" {
		return "", ErrNoCompletion
	}
	return answer, nil
}

func systemPrompt(lang string) string {
	return "You are an agricultural advisor for small farmers in India. " +
		"Answer in " + languageName(lang) + " in at most four short, practical sentences. " +
		"Use the weather, market prices and knowledge given in the context. " +
		"If the prices are marked as estimates, say that they are estimates."
}

// BuildContext renders the completion prompt. Sections always appear in the
// same order; empty sections are stated as such rather than dropped.
func (s *AdvisoryService) BuildContext(
	query string,
	loc models.Location,
	lang string,
	weather models.WeatherSnapshot,
	docs []models.KnowledgeDocument,
	quotes []models.MarketQuote,
) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Question: %s\n", query)
	fmt.Fprintf(&b, "Location: %s\n", loc.Label())
	fmt.Fprintf(&b, "Language: %s\n", languageName(lang))
	fmt.Fprintf(&b, "Season: %s\n", SeasonFor(s.now()))
	fmt.Fprintf(&b, "Weather: %s\n", renderWeather(weather))

	shown := quotes
	if len(shown) > s.promptQuotes {
		shown = shown[:s.promptQuotes]
	}
	switch {
	case len(shown) == 0:
		b.WriteString("Market prices: none available\n")
	case shown[0].IsSynthetic():
		b.WriteString("Market prices (regional estimates, not live):\n")
	default:
		b.WriteString("Market prices:\n")
	}
	for _, q := range shown {
		fmt.Fprintf(&b, "- %s\n", renderQuote(q))
	}

	if len(docs) == 0 {
		b.WriteString("Knowledge: none found")
	} else {
		b.WriteString("Knowledge:\n")
		b.WriteString(renderSnippets(docs))
	}
	return b.String()
}

func renderWeather(w models.WeatherSnapshot) string {
	text := fmt.Sprintf("%.1f°C, humidity %.0f%%, rain %.1f mm, wind %.0f km/h, %s",
		w.TemperatureC, w.HumidityPct, w.RainfallMM, w.WindKph, w.Condition)
	if w.Synthetic {
		text += " (seasonal normal)"
	}
	return text
}

// renderQuote formats a quote as "commodity: price unit at market (trend)".
func renderQuote(q models.MarketQuote) string {
	return fmt.Sprintf("%s: %s %s at %s (%s)",
		q.Commodity, strconv.FormatFloat(q.Price, 'f', -1, 64), q.Unit, q.Market, q.Trend)
}

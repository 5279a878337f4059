package service

import (
	"context"
	"testing"
	"time"

	"agri-advisor/internal/cache"
	"agri-advisor/internal/commodity"
	"agri-advisor/internal/models"
	"agri-advisor/internal/provider"
	"agri-advisor/internal/synthetic"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var pune = models.Location{City: "Pune", State: "Maharashtra"}

func newTestMarket(t *testing.T, providers ...provider.MarketProvider) *MarketService {
	t.Helper()
	gen, err := synthetic.New()
	require.NoError(t, err)

	logger := zaptest.NewLogger(t)
	qc := cache.NewQuoteCache(cache.NewMemoryStore(), 30*time.Minute, logger)
	return NewMarketService(providers, gen, commodity.MustResolver(), qc, time.Second, 10, logger)
}

func quote(commodity, market string, price float64, trend models.Trend) models.MarketQuote {
	return models.MarketQuote{
		Commodity: commodity,
		Price:     price,
		Unit:      "quintal",
		Market:    market,
		District:  "Delhi",
		State:     "Delhi",
		Trend:     trend,
		Date:      "2024-01-01",
	}
}

func TestFetchQuotes_PartialFailure(t *testing.T) {
	down1 := &fakeMarket{name: "agmarknet", priority: 1, err: errUnavailable}
	down2 := &fakeMarket{name: "mandi_board", priority: 2, err: &provider.StatusError{Provider: "mandi_board", Code: 503}}
	up := &fakeMarket{name: "enam", priority: 3, quotes: map[string][]models.MarketQuote{
		"rice": {quote("rice", "Delhi Mandi", 2100, models.TrendUp)},
	}}
	s := newTestMarket(t, down1, down2, up)

	quotes := s.FetchQuotes(context.Background(), models.Location{}, []string{"rice"}, 10)

	require.Len(t, quotes, 1)
	assert.Equal(t, "enam", quotes[0].Source)
	assert.Equal(t, 2100.0, quotes[0].Price)
	assert.False(t, quotes[0].IsSynthetic())
	assert.Equal(t, 1, down1.Calls())
	assert.Equal(t, 1, down2.Calls())
}

func TestFetchQuotes_DuplicatesAcrossSourcesKeepHighestPriority(t *testing.T) {
	first := &fakeMarket{name: "agmarknet", priority: 1, quotes: map[string][]models.MarketQuote{
		"rice": {quote("rice", "Delhi Mandi", 2000, models.TrendUp)},
	}}
	second := &fakeMarket{name: "mandi_board", priority: 2, quotes: map[string][]models.MarketQuote{
		"rice": {
			quote("rice", "Delhi Mandi", 2050, models.TrendStable),
			quote("rice", "Azadpur Mandi", 2075, models.TrendStable),
		},
	}}
	// Registration order must not matter.
	s := newTestMarket(t, second, first)

	quotes := s.FetchQuotes(context.Background(), models.Location{}, []string{"rice"}, 10)

	require.Len(t, quotes, 2)
	var delhi []models.MarketQuote
	for _, q := range quotes {
		if q.Market == "Delhi Mandi" {
			delhi = append(delhi, q)
		}
	}
	require.Len(t, delhi, 1)
	assert.Equal(t, "agmarknet", delhi[0].Source)
	assert.Equal(t, 2000.0, delhi[0].Price)
}

func TestDedup_DropsInvalidQuotes(t *testing.T) {
	quotes := Dedup([]models.MarketQuote{
		quote("rice", "Delhi Mandi", 0, models.TrendUp),
		quote("rice", "Delhi Mandi", -5, models.TrendUp),
		quote("", "Delhi Mandi", 100, models.TrendUp),
		quote("rice", "Delhi Mandi", 1900, models.TrendUp),
		quote("rice", "delhi mandi", 1950, models.TrendUp),
	})

	require.Len(t, quotes, 1)
	assert.Equal(t, 1900.0, quotes[0].Price)
}

func TestFetchQuotes_CommodityFilterIsExact(t *testing.T) {
	p := &fakeMarket{name: "agmarknet", priority: 1, quotes: map[string][]models.MarketQuote{
		"onion": {
			quote("onion", "Lasalgaon", 1500, models.TrendDown),
			quote("garlic", "Lasalgaon", 9000, models.TrendUp),
		},
	}}
	s := newTestMarket(t, p)

	quotes := s.FetchQuotes(context.Background(), models.Location{}, []string{"pyaz"}, 10)

	require.Len(t, quotes, 1)
	assert.Equal(t, "onion", quotes[0].Commodity)
}

func TestFetchQuotes_NoSilentPadding(t *testing.T) {
	s := newTestMarket(t,
		&fakeMarket{name: "agmarknet", priority: 1, err: errUnavailable},
		&fakeMarket{name: "enam", priority: 3, quotes: map[string][]models.MarketQuote{}},
	)

	quotes := s.FetchQuotes(context.Background(), pune, []string{"wheat", "onion"}, 10)

	got := make(map[string]int)
	for _, q := range quotes {
		got[q.Commodity]++
		assert.True(t, q.IsSynthetic())
	}
	assert.Equal(t, map[string]int{"wheat": 1, "onion": 1}, got)
}

func TestFetchQuotes_TomatoInPuneWithEveryProviderDown(t *testing.T) {
	providers := []provider.MarketProvider{
		&fakeMarket{name: "agmarknet", priority: 1, err: errUnavailable},
		&fakeMarket{name: "mandi_board", priority: 2, err: errUnavailable},
		&fakeMarket{name: "enam", priority: 3, err: errUnavailable},
	}
	s := newTestMarket(t, providers...)
	ctx := context.Background()
	commodities := commodity.MustResolver().Resolve("tomato price")

	first := s.FetchQuotes(ctx, pune, commodities, 10)
	require.Len(t, first, 1)
	assert.Equal(t, "tomato", first[0].Commodity)
	assert.Equal(t, synthetic.Source, first[0].Source)
	assert.Contains(t, first[0].Source, "regional")
	assert.Greater(t, first[0].Price, 0.0)

	second := s.FetchQuotes(ctx, pune, commodities, 10)
	assert.Equal(t, first, second)

	// A cold cache reaches the same numbers.
	fresh := newTestMarket(t, providers...)
	assert.Equal(t, first, fresh.FetchQuotes(ctx, pune, commodities, 10))
}

func TestFetchQuotes_CachesWithinTTL(t *testing.T) {
	p := &fakeMarket{name: "agmarknet", priority: 1, quotes: map[string][]models.MarketQuote{
		"wheat": {quote("wheat", "Indore", 2275, models.TrendUp)},
	}}
	s := newTestMarket(t, p)
	ctx := context.Background()

	s.FetchQuotes(ctx, pune, []string{"wheat"}, 10)
	s.FetchQuotes(ctx, pune, []string{"gehun"}, 10)

	assert.Equal(t, 1, p.Calls())
}

func TestFetchQuotes_CancelledRequestIsNotCached(t *testing.T) {
	p := &fakeMarket{name: "agmarknet", priority: 1, quotes: map[string][]models.MarketQuote{
		"wheat": {quote("wheat", "Indore", 2275, models.TrendUp)},
	}}
	s := newTestMarket(t, p)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	quotes := s.FetchQuotes(ctx, pune, []string{"wheat"}, 10)
	require.Len(t, quotes, 1)
	assert.True(t, quotes[0].IsSynthetic())

	quotes = s.FetchQuotes(context.Background(), pune, []string{"wheat"}, 10)
	require.Len(t, quotes, 1)
	assert.Equal(t, "agmarknet", quotes[0].Source)
}

func TestRank_DeterministicOrder(t *testing.T) {
	s := newTestMarket(t)
	quotes := []models.MarketQuote{
		quote("rice", "Delhi Mandi", 2000, models.TrendStable),
		quote("onion", "Delhi Mandi", 1500, models.TrendDown),
		quote("wheat", "Delhi Mandi", 2275, models.TrendUp),
		quote("tomato", "Delhi Mandi", 1800, models.TrendUp),
	}

	ranked := s.rank(quotes, models.Location{}, nil, 10)
	assert.Equal(t, []string{"tomato", "wheat", "rice", "onion"}, commoditiesOf(ranked))

	ranked = s.rank(quotes, models.Location{}, []string{"onion"}, 10)
	assert.Equal(t, []string{"onion", "tomato", "wheat", "rice"}, commoditiesOf(ranked))

	// Input order does not leak into the output.
	reversed := []models.MarketQuote{quotes[3], quotes[2], quotes[1], quotes[0]}
	assert.Equal(t, ranked, s.rank(reversed, models.Location{}, []string{"onion"}, 10))

	assert.Len(t, s.rank(quotes, models.Location{}, nil, 2), 2)
}

func TestRank_PromotesMatchingLocation(t *testing.T) {
	s := newTestMarket(t)
	delhi := quote("onion", "Delhi Mandi", 1500, models.TrendUp)
	local := quote("onion", "Pune APMC", 1400, models.TrendDown)
	local.District, local.State = "Pune", "Maharashtra"

	ranked := s.rank([]models.MarketQuote{delhi, local}, pune, []string{"onion"}, 10)

	require.Len(t, ranked, 2)
	assert.Equal(t, "Pune APMC", ranked[0].Market)
}

func commoditiesOf(quotes []models.MarketQuote) []string {
	out := make([]string, len(quotes))
	for i, q := range quotes {
		out[i] = q.Commodity
	}
	return out
}

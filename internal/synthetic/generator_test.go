package synthetic

import (
	"testing"
	"time"

	"agri-advisor/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pune = models.Location{City: "Pune", State: "Maharashtra"}

func mustGenerator(t *testing.T) *Generator {
	t.Helper()
	g, err := New()
	require.NoError(t, err)
	return g
}

func TestGenerate_DeterministicPerDay(t *testing.T) {
	g := mustGenerator(t)
	day := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	first := g.Generate(pune, []string{"tomato"}, day)
	second := g.Generate(pune, []string{"tomato"}, day.Add(10*time.Hour))
	require.Len(t, first, 1)
	assert.Equal(t, first, second)

	other := g.Generate(pune, []string{"tomato"}, day.AddDate(0, 0, 1))
	require.Len(t, other, 1)
	assert.NotEqual(t,
		[]any{first[0].Price, first[0].Trend, first[0].ChangePercent},
		[]any{other[0].Price, other[0].Trend, other[0].ChangePercent},
	)
	assert.Equal(t, "2024-01-02", other[0].Date)
}

func TestGenerate_NoSilentPadding(t *testing.T) {
	g := mustGenerator(t)

	quotes := g.Generate(pune, []string{"wheat", "onion"}, time.Now())
	require.Len(t, quotes, 2)
	assert.Equal(t, "wheat", quotes[0].Commodity)
	assert.Equal(t, "onion", quotes[1].Commodity)
}

func TestGenerate_SkipsUnknownAndDuplicates(t *testing.T) {
	g := mustGenerator(t)

	quotes := g.Generate(pune, []string{"xyzxyz", "onion", "onion"}, time.Now())
	require.Len(t, quotes, 1)
	assert.Equal(t, "onion", quotes[0].Commodity)

	assert.Empty(t, g.Generate(pune, []string{"xyzxyz"}, time.Now()))
}

func TestGenerate_DefaultsWhenNothingRequested(t *testing.T) {
	g := mustGenerator(t)

	quotes := g.Generate(models.Location{}, nil, time.Now())
	require.NotEmpty(t, quotes)
	for _, q := range quotes {
		assert.True(t, q.Valid())
		assert.True(t, q.IsSynthetic())
		assert.Equal(t, "Regional Mandi", q.Market)
		assert.Equal(t, "India", q.State)
	}
}

func TestGenerate_QuoteShape(t *testing.T) {
	g := mustGenerator(t)
	day := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)

	for _, key := range []string{"rice", "cumin", "sugarcane", "tomato", "onion"} {
		quotes := g.Generate(pune, []string{key}, day)
		require.Len(t, quotes, 1, key)
		q := quotes[0]
		assert.Greater(t, q.Price, 0.0)
		assert.GreaterOrEqual(t, q.ChangePercent, 0.0)
		assert.Contains(t, []models.Trend{models.TrendUp, models.TrendDown, models.TrendStable}, q.Trend)
		assert.Equal(t, "Pune Regional Mandi", q.Market)
		assert.Equal(t, "Pune", q.District)
		assert.Equal(t, "Maharashtra", q.State)
		assert.Equal(t, "quintal", q.Unit)
		assert.Equal(t, Source, q.Source)
		assert.NotEqual(t, "Unknown", q.Market)
	}
}

func TestSeed_WrapsAt32Bits(t *testing.T) {
	assert.Equal(t, int32(0), seed(""))
	assert.Equal(t, int32(97), seed("a"))
	assert.Equal(t, int32(97*31+98), seed("ab"))
	// Long inputs overflow int32 and wrap instead of growing.
	assert.NotPanics(t, func() { seed("pomegranate_change2024-12-31") })

	for _, s := range []int32{0, 1, -1, 1 << 30, -1 << 31} {
		r := seededRandom(s)
		assert.GreaterOrEqual(t, r, 0.0)
		assert.Less(t, r, 1.0)
	}
}

func TestNewFromYAML_Validates(t *testing.T) {
	_, err := NewFromYAML([]byte(`prices: {rice: {base: 100, variation: 200, unit: quintal}}`))
	require.Error(t, err)

	_, err = NewFromYAML([]byte(`
default_commodities: [wheat]
prices: {rice: {base: 100, variation: 10, unit: quintal}}
`))
	require.Error(t, err)
}

func TestWeather_DeterministicAndSeasonal(t *testing.T) {
	july := time.Date(2024, 7, 15, 8, 0, 0, 0, time.UTC)

	a := Weather(pune, july)
	b := Weather(pune, july)
	assert.Equal(t, a, b)
	assert.True(t, a.Synthetic)
	assert.Equal(t, WeatherSource, a.Source)
	assert.Equal(t, "monsoon rain", a.Condition)
	assert.InDelta(t, 82, a.HumidityPct, 5)

	jan := Weather(pune, time.Date(2024, 1, 15, 8, 0, 0, 0, time.UTC))
	assert.Less(t, jan.TemperatureC, a.TemperatureC)
}

// Package synthetic produces deterministic stand-in market and weather data
// for when every live source is unavailable. Output depends only on the
// inputs, so a farmer asking twice on the same day gets the same numbers.
package synthetic

import (
	_ "embed"
	"fmt"
	"math"
	"strings"
	"time"

	"agri-advisor/internal/models"

	"gopkg.in/yaml.v3"
)

// Source labels every generated quote.
const Source = models.SyntheticSourcePrefix + "regional-estimate"

//go:embed prices.yaml
var defaultTable []byte

type priceRow struct {
	Base      float64 `yaml:"base"`
	Variation float64 `yaml:"variation"`
	Unit      string  `yaml:"unit"`
}

type table struct {
	DefaultCommodities []string            `yaml:"default_commodities"`
	Prices             map[string]priceRow `yaml:"prices"`
}

type Generator struct {
	prices   map[string]priceRow
	defaults []string
}

func New() (*Generator, error) {
	return NewFromYAML(defaultTable)
}

func NewFromYAML(data []byte) (*Generator, error) {
	var t table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse price table: %w", err)
	}
	for key, row := range t.Prices {
		if row.Base <= 0 || row.Variation < 0 || row.Variation >= row.Base {
			return nil, fmt.Errorf("price row %q: base must exceed variation and be positive", key)
		}
	}
	for _, key := range t.DefaultCommodities {
		if _, ok := t.Prices[key]; !ok {
			return nil, fmt.Errorf("default commodity %q has no price row", key)
		}
	}
	return &Generator{prices: t.Prices, defaults: t.DefaultCommodities}, nil
}

// Covers reports whether the generator has a price row for commodity.
func (g *Generator) Covers(commodity string) bool {
	_, ok := g.prices[commodity]
	return ok
}

// Generate returns one quote per requested commodity for day. Commodities
// without a price row are skipped rather than substituted. With no commodities
// requested, the default staples are generated.
func (g *Generator) Generate(loc models.Location, commodities []string, day time.Time) []models.MarketQuote {
	keys := commodities
	if len(keys) == 0 {
		keys = g.defaults
	}

	date := day.Format(time.DateOnly)
	market, district, state := labels(loc)

	seen := make(map[string]struct{}, len(keys))
	quotes := make([]models.MarketQuote, 0, len(keys))
	for _, key := range keys {
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		row, ok := g.prices[key]
		if !ok {
			continue
		}

		offset := seededRandom(seed(key+"_price"+date))*2 - 1
		price := math.Round(row.Base + offset*row.Variation)

		trend := trendFor(seededRandom(seed(key + "_trend" + date)))
		change := seededRandom(seed(key + "_change" + date))
		// Stable prices move under 1%, trending ones 1-8%.
		if trend != models.TrendStable {
			change = 1 + change*7
		}

		quotes = append(quotes, models.MarketQuote{
			Commodity:     key,
			Price:         price,
			Unit:          row.Unit,
			Market:        market,
			District:      district,
			State:         state,
			Trend:         trend,
			ChangePercent: math.Round(change*10) / 10,
			Date:          date,
			Source:        Source,
		})
	}
	return quotes
}

func trendFor(r float64) models.Trend {
	switch {
	case r < 1.0/3:
		return models.TrendDown
	case r < 2.0/3:
		return models.TrendStable
	default:
		return models.TrendUp
	}
}

// labels never yields an empty string or the "Unknown" placeholder.
func labels(loc models.Location) (market, district, state string) {
	city, st := strings.TrimSpace(loc.City), strings.TrimSpace(loc.State)
	switch {
	case city != "":
		market, district = city+" Regional Mandi", city
	case st != "":
		market, district = st+" Regional Mandi", "Regional"
	default:
		market, district = "Regional Mandi", "Regional"
	}
	state = st
	if state == "" {
		state = "India"
	}
	return market, district, state
}

// seed is the 32-bit wraparound polynomial string hash h = h*31 + rune.
func seed(s string) int32 {
	var h int32
	for _, r := range s {
		h = h*31 + int32(r)
	}
	return h
}

// seededRandom maps a seed onto [0, 1) as frac(sin(seed) * 10000).
func seededRandom(seed int32) float64 {
	x := math.Sin(float64(seed)) * 10000
	return x - math.Floor(x)
}

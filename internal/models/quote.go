package models

import "strings"

type Trend string

const (
	TrendUp     Trend = "up"
	TrendDown   Trend = "down"
	TrendStable Trend = "stable"
)

// ParseTrend maps provider spellings (arrows, signs, words) onto Trend.
func ParseTrend(s string) Trend {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up", "+", "rise", "rising", "increase", "↑", "tezi", "तेजी":
		return TrendUp
	case "down", "-", "fall", "falling", "decrease", "↓", "मंदी":
		return TrendDown
	default:
		return TrendStable
	}
}

// Rank orders trends for display: rising prices first.
func (t Trend) Rank() int {
	switch t {
	case TrendUp:
		return 0
	case TrendDown:
		return 2
	default:
		return 1
	}
}

type MarketQuote struct {
	Commodity     string  `json:"commodity"`
	Price         float64 `json:"price"`
	Unit          string  `json:"unit"`
	Market        string  `json:"market"`
	District      string  `json:"district"`
	State         string  `json:"state"`
	Trend         Trend   `json:"trend"`
	ChangePercent float64 `json:"change_percent"`
	Date          string  `json:"date"` // YYYY-MM-DD
	Source        string  `json:"source"`
}

// DedupKey identifies the same observation reported by different sources.
func (q *MarketQuote) DedupKey() string {
	return strings.ToLower(q.Commodity) + "|" + strings.ToLower(q.Market) + "|" +
		strings.ToLower(q.District) + "|" + q.Date
}

// Valid reports whether the quote may be returned to a caller.
func (q *MarketQuote) Valid() bool {
	return q.Commodity != "" && q.Price > 0
}

// IsSynthetic reports whether the quote came from the deterministic generator.
func (q *MarketQuote) IsSynthetic() bool {
	return strings.HasPrefix(q.Source, SyntheticSourcePrefix)
}

const SyntheticSourcePrefix = "synthetic:"

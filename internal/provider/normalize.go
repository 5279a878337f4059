package provider

import (
	"math"
	"strconv"
	"strings"
	"time"

	"agri-advisor/internal/commodity"
	"agri-advisor/internal/models"
)

// ParsePrice extracts a number from labels such as "₹2,450/qtl" or "Rs. 1800".
// Everything except digits and the first decimal point is discarded.
// Unparseable input yields 0 and a leading minus a negative value; both later
// fail validation.
func ParsePrice(s string) float64 {
	var b strings.Builder
	dot, neg := false, false
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' && b.Len() == 0:
			neg = true
		case r == '.' && !dot && b.Len() > 0:
			dot = true
			b.WriteRune(r)
		case r == '/' && b.Len() > 0:
			// "2450/qtl": the unit follows.
			return sign(neg) * parseFloat(b.String())
		}
	}
	return sign(neg) * parseFloat(b.String())
}

func sign(neg bool) float64 {
	if neg {
		return -1
	}
	return 1
}

func parseFloat(s string) float64 {
	s = strings.TrimSuffix(s, ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// NormalizeUnit maps provider unit spellings onto "quintal", "kg", "tonne" or
// "dozen". Unknown spellings are lowercased and kept; empty means quintal,
// which is how Indian mandis quote by default.
func NormalizeUnit(s string) string {
	u := strings.ToLower(strings.TrimSpace(s))
	u = strings.TrimPrefix(u, "rs.")
	u = strings.TrimPrefix(u, "rs")
	u = strings.TrimPrefix(u, "₹")
	u = strings.Trim(u, " ./")
	switch u {
	case "", "quintal", "quintals", "qtl", "qtl.", "q", "qui", "qui.", "100 kg", "100kg":
		return "quintal"
	case "kg", "kgs", "kilogram", "kilo":
		return "kg"
	case "tonne", "tonnes", "ton", "tons", "mt":
		return "tonne"
	case "dozen", "doz", "dz":
		return "dozen"
	}
	return u
}

// Label returns the first non-empty value that is not a placeholder, or
// fallback. The literal "Unknown" never escapes.
func Label(fallback string, values ...string) string {
	for _, v := range values {
		v = strings.TrimSpace(v)
		switch strings.ToLower(v) {
		case "", "unknown", "na", "n/a", "null", "-":
			continue
		}
		return v
	}
	return fallback
}

// dateLayouts are the date formats seen across feeds.
var dateLayouts = []string{
	time.DateOnly,
	"02/01/2006",
	"02-01-2006",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"02-Jan-2006",
}

// NormalizeDate renders a provider date as YYYY-MM-DD, falling back to day.
func NormalizeDate(s string, day time.Time) string {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(time.DateOnly)
		}
	}
	return day.Format(time.DateOnly)
}

// TrendFromRange derives a trend from where the modal price sits between the
// day's minimum and maximum: more than 2% above the midpoint is up.
func TrendFromRange(minPrice, maxPrice, modal float64) (models.Trend, float64) {
	if minPrice <= 0 || maxPrice <= 0 || modal <= 0 {
		return models.TrendStable, 0
	}
	return TrendFromPrevious((minPrice+maxPrice)/2, modal)
}

// TrendFromPrevious compares current with a reference price.
func TrendFromPrevious(previous, current float64) (models.Trend, float64) {
	if previous <= 0 || current <= 0 {
		return models.TrendStable, 0
	}
	change := (current - previous) / previous * 100
	pct := math.Round(math.Abs(change)*10) / 10
	switch {
	case change > 2:
		return models.TrendUp, pct
	case change < -2:
		return models.TrendDown, pct
	default:
		return models.TrendStable, pct
	}
}

// normalizer is embedded by market providers to canonicalize records.
type normalizer struct {
	resolver *commodity.Resolver
	now      func() time.Time
}

func newNormalizer(resolver *commodity.Resolver) normalizer {
	return normalizer{resolver: resolver, now: time.Now}
}

// quote finishes a record: canonical commodity, non-placeholder labels.
func (n normalizer) quote(q models.MarketQuote) (models.MarketQuote, bool) {
	key, _ := n.resolver.Canonical(q.Commodity)
	q.Commodity = key
	q.District = Label("Regional", q.District)
	q.State = Label("India", q.State)
	q.Market = Label(q.District+" Mandi", q.Market)
	if q.Trend == "" {
		q.Trend = models.TrendStable
	}
	q.ChangePercent = math.Abs(q.ChangePercent)
	return q, q.Valid()
}

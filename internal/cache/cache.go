// Package cache memoizes aggregated market quotes per (location, commodities, day).
package cache

import (
	"context"
	"sort"
	"strings"
	"time"

	"agri-advisor/internal/models"
)

// Entry is one cached aggregation: the full merged quote list before truncation.
type Entry struct {
	Quotes    []models.MarketQuote `json:"quotes"`
	StoredAt  time.Time            `json:"stored_at"`
	Synthetic bool                 `json:"synthetic"`
}

// ExpiresAt is StoredAt+ttl for live data and the end of StoredAt's calendar
// day for synthetic data, so generated prices stay put until midnight.
func (e Entry) ExpiresAt(ttl time.Duration) time.Time {
	if e.Synthetic {
		y, m, d := e.StoredAt.Date()
		return time.Date(y, m, d+1, 0, 0, 0, 0, e.StoredAt.Location())
	}
	return e.StoredAt.Add(ttl)
}

// Fresh reports whether the entry may still be served at now.
func (e Entry) Fresh(now time.Time, ttl time.Duration) bool {
	return now.Before(e.ExpiresAt(ttl))
}

// Store is a cache backend. Get reports found=false for a missing key; errors
// are backend failures the caller should treat as a miss.
type Store interface {
	Get(ctx context.Context, key string) (Entry, bool, error)
	Set(ctx context.Context, key string, entry Entry, expiry time.Duration) error
}

// Key composes the cache key. Commodities are sorted so that "onion wheat" and
// "wheat onion" share an entry; no commodities means "all".
func Key(loc models.Location, commodities []string, day time.Time) string {
	part := "all"
	if len(commodities) > 0 {
		sorted := append([]string(nil), commodities...)
		sort.Strings(sorted)
		part = strings.Join(sorted, ",")
	}
	return loc.Key() + "|" + part + "|" + day.Format(time.DateOnly)
}

package cache

import (
	"context"
	"time"

	"agri-advisor/pkg/metrics"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// QuoteCache puts freshness rules and request collapsing in front of a Store.
type QuoteCache struct {
	store  Store
	ttl    time.Duration
	group  singleflight.Group
	now    func() time.Time
	logger *zap.Logger
}

func NewQuoteCache(store Store, ttl time.Duration, logger *zap.Logger) *QuoteCache {
	return &QuoteCache{
		store:  store,
		ttl:    ttl,
		now:    time.Now,
		logger: logger,
	}
}

// Lookup returns a fresh entry for key, if any. Backend errors count as a miss.
func (c *QuoteCache) Lookup(ctx context.Context, key string) (Entry, bool) {
	entry, found, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.Warn("Quote cache read failed", zap.String("key", key), zap.Error(err))
		metrics.CacheLookups.WithLabelValues("error").Inc()
		return Entry{}, false
	}
	if !found {
		metrics.CacheLookups.WithLabelValues("miss").Inc()
		return Entry{}, false
	}
	if !entry.Fresh(c.now(), c.ttl) {
		metrics.CacheLookups.WithLabelValues("stale").Inc()
		return Entry{}, false
	}
	metrics.CacheLookups.WithLabelValues("hit").Inc()
	return entry, true
}

// Store saves entry under key until it stops being fresh.
func (c *QuoteCache) Store(ctx context.Context, key string, entry Entry) {
	expiry := entry.ExpiresAt(c.ttl).Sub(c.now())
	if expiry <= 0 {
		return
	}
	if err := c.store.Set(ctx, key, entry, expiry); err != nil {
		c.logger.Warn("Quote cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// GetOrFetch serves key from the cache or runs fetch once for all concurrent
// callers of the same key. The result is stored unless fetch reports it
// should not be, e.g. because the request was cancelled midway. A caller that
// joined someone else's declined fetch fetches once more with its own context.
func (c *QuoteCache) GetOrFetch(ctx context.Context, key string, fetch func(context.Context) (Entry, bool)) (Entry, bool) {
	if entry, ok := c.Lookup(ctx, key); ok {
		return entry, true
	}

	res, led := c.fetchShared(ctx, key, fetch)
	if !res.stored && !led && ctx.Err() == nil {
		res, _ = c.fetchShared(ctx, key, fetch)
	}
	return res.entry, false
}

type fetchResult struct {
	entry  Entry
	stored bool
}

// fetchShared joins or starts the in-flight fetch for key and reports whether
// this caller's fetch was the one that ran.
func (c *QuoteCache) fetchShared(ctx context.Context, key string, fetch func(context.Context) (Entry, bool)) (fetchResult, bool) {
	led := false
	v, _, _ := c.group.Do(key, func() (interface{}, error) {
		led = true
		entry, store := fetch(ctx)
		if entry.StoredAt.IsZero() {
			entry.StoredAt = c.now()
		}
		if store {
			c.Store(ctx, key, entry)
		}
		return fetchResult{entry: entry, stored: store}, nil
	})
	return v.(fetchResult), led
}

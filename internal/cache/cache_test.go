package cache

import (
	"context"
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"agri-advisor/internal/models"
	"agri-advisor/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var pune = models.Location{City: "Pune", State: "Maharashtra"}

func TestKey_SortsCommoditiesAndDefaultsToAll(t *testing.T) {
	day := time.Date(2024, 1, 1, 15, 0, 0, 0, time.UTC)

	assert.Equal(t, "pune|maharashtra|onion,wheat|2024-01-01", Key(pune, []string{"wheat", "onion"}, day))
	assert.Equal(t, Key(pune, []string{"onion", "wheat"}, day), Key(pune, []string{"wheat", "onion"}, day))
	assert.Equal(t, "anywhere|all|2024-01-01", Key(models.Location{}, nil, day))
}

func TestEntry_Freshness(t *testing.T) {
	stored := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	ttl := 45 * time.Minute

	live := Entry{StoredAt: stored}
	assert.True(t, live.Fresh(stored.Add(44*time.Minute), ttl))
	assert.False(t, live.Fresh(stored.Add(46*time.Minute), ttl))

	synthetic := Entry{StoredAt: stored, Synthetic: true}
	assert.True(t, synthetic.Fresh(stored.Add(13*time.Hour), ttl))
	assert.False(t, synthetic.Fresh(time.Date(2024, 1, 2, 0, 0, 1, 0, time.UTC), ttl))
}

func TestMemoryStore_ExpiresEntries(t *testing.T) {
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	s := NewMemoryStore()
	s.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "a", Entry{StoredAt: now}, time.Minute))
	_, found, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.True(t, found)

	now = now.Add(2 * time.Minute)
	_, found, _ = s.Get(ctx, "a")
	assert.False(t, found)

	require.NoError(t, s.Set(ctx, "b", Entry{StoredAt: now}, time.Minute))
	assert.Equal(t, 1, s.Len())
}

func TestQuoteCache_ServesFreshAndRefetchesStale(t *testing.T) {
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	store := NewMemoryStore()
	store.now = func() time.Time { return now }
	c := NewQuoteCache(store, 30*time.Minute, zaptest.NewLogger(t))
	c.now = func() time.Time { return now }
	ctx := context.Background()

	calls := 0
	fetch := func(context.Context) (Entry, bool) {
		calls++
		return Entry{Quotes: []models.MarketQuote{{Commodity: "rice", Price: float64(calls)}}}, true
	}

	e, hit := c.GetOrFetch(ctx, "k", fetch)
	assert.False(t, hit)
	assert.Equal(t, now, e.StoredAt)

	e, hit = c.GetOrFetch(ctx, "k", fetch)
	assert.True(t, hit)
	assert.Equal(t, 1.0, e.Quotes[0].Price)

	now = now.Add(31 * time.Minute)
	e, hit = c.GetOrFetch(ctx, "k", fetch)
	assert.False(t, hit)
	assert.Equal(t, 2.0, e.Quotes[0].Price)
	assert.Equal(t, 2, calls)
}

func TestQuoteCache_CollapsesConcurrentMisses(t *testing.T) {
	c := NewQuoteCache(NewMemoryStore(), 30*time.Minute, zaptest.NewLogger(t))

	var calls atomic.Int32
	release := make(chan struct{})
	fetch := func(context.Context) (Entry, bool) {
		calls.Add(1)
		<-release
		return Entry{Quotes: []models.MarketQuote{{Commodity: "onion", Price: 1}}}, true
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e, _ := c.GetOrFetch(context.Background(), "same", fetch)
			assert.Len(t, e.Quotes, 1)
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.LessOrEqual(t, calls.Load(), int32(8))
	assert.GreaterOrEqual(t, calls.Load(), int32(1))
}

type failingStore struct{}

func (failingStore) Get(context.Context, string) (Entry, bool, error) {
	return Entry{}, false, errors.New("connection refused")
}

func (failingStore) Set(context.Context, string, Entry, time.Duration) error {
	return errors.New("connection refused")
}

func TestQuoteCache_BackendFailureIsAMiss(t *testing.T) {
	c := NewQuoteCache(failingStore{}, 30*time.Minute, zaptest.NewLogger(t))

	e, hit := c.GetOrFetch(context.Background(), "k", func(context.Context) (Entry, bool) {
		return Entry{Quotes: []models.MarketQuote{{Commodity: "wheat", Price: 2275}}}, true
	})
	assert.False(t, hit)
	require.Len(t, e.Quotes, 1)
}

func TestQuoteCache_SkipsStoreWhenFetchDeclines(t *testing.T) {
	store := NewMemoryStore()
	c := NewQuoteCache(store, 30*time.Minute, zaptest.NewLogger(t))

	_, _ = c.GetOrFetch(context.Background(), "k", func(context.Context) (Entry, bool) {
		return Entry{Synthetic: true}, false
	})
	assert.Equal(t, 0, store.Len())
}

func TestQuoteCache_CancelledLeaderDoesNotLeakIntoFollowers(t *testing.T) {
	store := NewMemoryStore()
	c := NewQuoteCache(store, 30*time.Minute, zaptest.NewLogger(t))

	var calls atomic.Int32
	started := make(chan struct{})
	fetch := func(ctx context.Context) (Entry, bool) {
		if calls.Add(1) == 1 {
			close(started)
			<-ctx.Done()
			return Entry{Synthetic: true}, false
		}
		return Entry{Quotes: []models.MarketQuote{{Commodity: "wheat", Price: 2275}}}, true
	}

	leaderCtx, cancel := context.WithCancel(context.Background())
	leader := make(chan Entry, 1)
	go func() {
		e, _ := c.GetOrFetch(leaderCtx, "k", fetch)
		leader <- e
	}()
	<-started

	follower := make(chan Entry, 1)
	go func() {
		e, _ := c.GetOrFetch(context.Background(), "k", fetch)
		follower <- e
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()

	assert.True(t, (<-leader).Synthetic)
	e := <-follower
	assert.False(t, e.Synthetic)
	require.Len(t, e.Quotes, 1)
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, 1, store.Len())
}

func TestRedisStore_RoundTrip(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	s := NewRedisStore(&config.RedisConfig{Addr: addr, Prefix: "agri-test"})
	defer s.Close()
	ctx := context.Background()
	require.NoError(t, s.Ping(ctx))

	entry := Entry{
		Quotes:    []models.MarketQuote{{Commodity: "tomato", Price: 1800, Trend: models.TrendUp}},
		StoredAt:  time.Now().UTC().Truncate(time.Second),
		Synthetic: true,
	}
	require.NoError(t, s.Set(ctx, "pune|all|2024-01-01", entry, time.Minute))

	got, found, err := s.Get(ctx, "pune|all|2024-01-01")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, entry.Quotes, got.Quotes)
	assert.True(t, got.StoredAt.Equal(entry.StoredAt))

	_, found, err = s.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)
}

package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"agri-advisor/internal/models"
	"agri-advisor/internal/provider"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var errUnavailable = errors.New("connection refused")

// fakeMarket serves fixed quotes per commodity ("" for any) or fails.
type fakeMarket struct {
	name     string
	priority int
	err      error
	quotes   map[string][]models.MarketQuote

	mu    sync.Mutex
	calls int
}

func (f *fakeMarket) Name() string  { return f.name }
func (f *fakeMarket) Priority() int { return f.priority }

func (f *fakeMarket) Fetch(ctx context.Context, req provider.Request) ([]byte, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return []byte(req.Commodity), nil
}

func (f *fakeMarket) Parse(raw []byte) ([]models.MarketQuote, error) {
	quotes := f.quotes[string(raw)]
	out := make([]models.MarketQuote, len(quotes))
	for i, q := range quotes {
		q.Source = f.name
		out[i] = q
	}
	return out, nil
}

func (f *fakeMarket) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeWeather struct {
	name     string
	priority int
	snapshot models.WeatherSnapshot
	err      error
}

func (f *fakeWeather) Name() string  { return f.name }
func (f *fakeWeather) Priority() int { return f.priority }

func (f *fakeWeather) Current(context.Context, models.Location) (models.WeatherSnapshot, error) {
	if f.err != nil {
		return models.WeatherSnapshot{}, f.err
	}
	snap := f.snapshot
	snap.Source = f.name
	return snap, nil
}

type fakeEmbedder struct {
	err    error
	vector []float32
	hang   bool

	mu    sync.Mutex
	calls int
}

func (f *fakeEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.hang {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = f.vector
	}
	return out, nil
}

func (f *fakeEmbedder) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

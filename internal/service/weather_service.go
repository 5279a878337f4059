package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"agri-advisor/internal/models"
	"agri-advisor/internal/provider"
	"agri-advisor/internal/synthetic"
	"agri-advisor/pkg/metrics"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const weatherTTL = 30 * time.Minute

type weatherEntry struct {
	snapshot models.WeatherSnapshot
	storedAt time.Time
}

// WeatherService asks every weather provider at once and keeps the answer of
// the highest-priority one that succeeded.
type WeatherService struct {
	providers []provider.WeatherProvider
	timeout   time.Duration

	mu      sync.Mutex
	entries map[string]weatherEntry

	now    func() time.Time
	logger *zap.Logger
}

func NewWeatherService(providers []provider.WeatherProvider, timeout time.Duration, logger *zap.Logger) *WeatherService {
	sorted := append([]provider.WeatherProvider(nil), providers...)
	provider.SortWeather(sorted)

	return &WeatherService{
		providers: sorted,
		timeout:   timeout,
		entries:   make(map[string]weatherEntry),
		now:       time.Now,
		logger:    logger,
	}
}

// Current never fails; with no provider answering it returns the seasonal
// normal for the location.
func (s *WeatherService) Current(ctx context.Context, loc models.Location) models.WeatherSnapshot {
	now := s.now()
	key := loc.Key()

	s.mu.Lock()
	entry, ok := s.entries[key]
	s.mu.Unlock()
	if ok && now.Sub(entry.storedAt) < weatherTTL && sameDay(entry.storedAt, now) {
		return entry.snapshot
	}

	snapshots := make([]*models.WeatherSnapshot, len(s.providers))
	eg, egCtx := errgroup.WithContext(ctx)
	for i, p := range s.providers {
		eg.Go(func() error {
			snapshots[i] = s.fetchOne(egCtx, p, loc)
			return nil
		})
	}
	_ = eg.Wait()

	var snapshot models.WeatherSnapshot
	found := false
	for _, snap := range snapshots {
		if snap != nil {
			snapshot, found = *snap, true
			break
		}
	}
	if !found {
		metrics.SyntheticFallbacks.Inc()
		s.logger.Warn("No live weather, using seasonal normals", zap.String("location", loc.Label()))
		snapshot = synthetic.Weather(loc, now)
	}

	if ctx.Err() == nil {
		s.mu.Lock()
		s.entries[key] = weatherEntry{snapshot: snapshot, storedAt: now}
		s.mu.Unlock()
	}
	return snapshot
}

func (s *WeatherService) fetchOne(ctx context.Context, p provider.WeatherProvider, loc models.Location) *models.WeatherSnapshot {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	snap, err := p.Current(ctx, loc)
	metrics.ProviderLatency.WithLabelValues(p.Name()).Observe(time.Since(start).Seconds())

	switch {
	case err == nil:
		metrics.ProviderRequests.WithLabelValues(p.Name(), "ok").Inc()
		return &snap
	case errors.Is(err, provider.ErrNotConfigured):
		metrics.ProviderRequests.WithLabelValues(p.Name(), "skipped").Inc()
	default:
		metrics.ProviderRequests.WithLabelValues(p.Name(), "error").Inc()
		s.logger.Warn("Weather provider failed",
			zap.String("provider", p.Name()),
			zap.String("location", loc.Label()),
			zap.Error(err),
		)
	}
	return nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

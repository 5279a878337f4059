package service

import (
	"context"
	"testing"
	"time"

	"agri-advisor/internal/models"
	"agri-advisor/internal/provider"
	"agri-advisor/internal/synthetic"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
)

func TestWeatherCurrent_HighestPriorityWins(t *testing.T) {
	s := NewWeatherService([]provider.WeatherProvider{
		&fakeWeather{name: "openweathermap", priority: 2, snapshot: models.WeatherSnapshot{TemperatureC: 30}},
		&fakeWeather{name: "open-meteo", priority: 1, snapshot: models.WeatherSnapshot{TemperatureC: 28}},
	}, time.Second, zaptest.NewLogger(t))

	snap := s.Current(context.Background(), pune)

	assert.Equal(t, "open-meteo", snap.Source)
	assert.Equal(t, 28.0, snap.TemperatureC)
	assert.False(t, snap.Synthetic)
}

func TestWeatherCurrent_SkipsFailedProvider(t *testing.T) {
	s := NewWeatherService([]provider.WeatherProvider{
		&fakeWeather{name: "open-meteo", priority: 1, err: errUnavailable},
		&fakeWeather{name: "openweathermap", priority: 2, snapshot: models.WeatherSnapshot{HumidityPct: 70}},
	}, time.Second, zaptest.NewLogger(t))

	snap := s.Current(context.Background(), pune)

	assert.Equal(t, "openweathermap", snap.Source)
}

func TestWeatherCurrent_SeasonalNormalWhenAllFail(t *testing.T) {
	day := time.Date(2024, 7, 15, 9, 0, 0, 0, time.UTC)
	s := NewWeatherService([]provider.WeatherProvider{
		&fakeWeather{name: "open-meteo", priority: 1, err: errUnavailable},
		&fakeWeather{name: "openweathermap", priority: 2, err: provider.ErrNotConfigured},
	}, time.Second, zaptest.NewLogger(t))
	s.now = func() time.Time { return day }

	snap := s.Current(context.Background(), pune)

	assert.True(t, snap.Synthetic)
	assert.Equal(t, synthetic.Weather(pune, day), snap)
}

func TestWeatherCurrent_CachesPerLocation(t *testing.T) {
	now := time.Date(2024, 7, 15, 9, 0, 0, 0, time.UTC)
	p := &fakeWeather{name: "open-meteo", priority: 1, snapshot: models.WeatherSnapshot{TemperatureC: 28}}
	s := NewWeatherService([]provider.WeatherProvider{p}, time.Second, zaptest.NewLogger(t))
	s.now = func() time.Time { return now }
	ctx := context.Background()

	assert.Equal(t, 28.0, s.Current(ctx, pune).TemperatureC)

	p.snapshot.TemperatureC = 31
	assert.Equal(t, 28.0, s.Current(ctx, pune).TemperatureC)

	now = now.Add(weatherTTL + time.Minute)
	assert.Equal(t, 31.0, s.Current(ctx, pune).TemperatureC)
}

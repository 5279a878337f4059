package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"agri-advisor/internal/models"
)

// OpenWeather reads current conditions from the OpenWeatherMap API.
type OpenWeather struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewOpenWeather(baseURL, apiKey string, client *http.Client) *OpenWeather {
	return &OpenWeather{baseURL: baseURL, apiKey: apiKey, client: client}
}

func (p *OpenWeather) Name() string  { return "openweathermap" }
func (p *OpenWeather) Priority() int { return 2 }

func (p *OpenWeather) Current(ctx context.Context, loc models.Location) (models.WeatherSnapshot, error) {
	if p.baseURL == "" || p.apiKey == "" {
		return models.WeatherSnapshot{}, ErrNotConfigured
	}

	place := strings.TrimSpace(loc.City)
	if place == "" {
		place = strings.TrimSpace(loc.State)
	}
	if place == "" {
		return models.WeatherSnapshot{}, fmt.Errorf("location has neither city nor state: %w", ErrNoData)
	}

	q := url.Values{}
	q.Set("q", place+",IN")
	q.Set("appid", p.apiKey)
	q.Set("units", "metric")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return models.WeatherSnapshot{}, fmt.Errorf("failed to create openweathermap request: %w", err)
	}
	body, err := doRequest(p.client, p.Name(), req)
	if err != nil {
		return models.WeatherSnapshot{}, err
	}

	var resp struct {
		Main *struct {
			Temp     float64 `json:"temp"`
			Humidity float64 `json:"humidity"`
		} `json:"main"`
		Wind struct {
			Speed float64 `json:"speed"` // m/s
		} `json:"wind"`
		Rain struct {
			OneHour float64 `json:"1h"`
		} `json:"rain"`
		Weather []struct {
			Description string `json:"description"`
		} `json:"weather"`
		Dt int64 `json:"dt"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return models.WeatherSnapshot{}, fmt.Errorf("failed to decode openweathermap response: %w", err)
	}
	if resp.Main == nil {
		return models.WeatherSnapshot{}, ErrNoData
	}

	condition := "clear"
	if len(resp.Weather) > 0 && resp.Weather[0].Description != "" {
		condition = resp.Weather[0].Description
	}
	observed := time.Now()
	if resp.Dt > 0 {
		observed = time.Unix(resp.Dt, 0)
	}

	return models.WeatherSnapshot{
		TemperatureC: resp.Main.Temp,
		HumidityPct:  resp.Main.Humidity,
		RainfallMM:   resp.Rain.OneHour,
		WindKph:      math.Round(resp.Wind.Speed*3.6*10) / 10,
		Condition:    condition,
		ObservedAt:   observed,
		Source:       p.Name(),
	}, nil
}

package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"agri-advisor/internal/models"
)

// OpenMeteo resolves the location through the Open-Meteo geocoding API and
// reads current conditions from the forecast API. Neither needs a key.
type OpenMeteo struct {
	forecastURL  string
	geocodingURL string
	client       *http.Client

	mu     sync.RWMutex
	coords map[string][2]float64 // location key -> lat, lon
}

func NewOpenMeteo(forecastURL, geocodingURL string, client *http.Client) *OpenMeteo {
	return &OpenMeteo{
		forecastURL:  forecastURL,
		geocodingURL: geocodingURL,
		client:       client,
		coords:       make(map[string][2]float64),
	}
}

func (p *OpenMeteo) Name() string  { return "open-meteo" }
func (p *OpenMeteo) Priority() int { return 1 }

func (p *OpenMeteo) Current(ctx context.Context, loc models.Location) (models.WeatherSnapshot, error) {
	if p.forecastURL == "" || p.geocodingURL == "" {
		return models.WeatherSnapshot{}, ErrNotConfigured
	}

	lat, lon, err := p.geocode(ctx, loc)
	if err != nil {
		return models.WeatherSnapshot{}, err
	}

	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(lat, 'f', 4, 64))
	q.Set("longitude", strconv.FormatFloat(lon, 'f', 4, 64))
	q.Set("current", "temperature_2m,relative_humidity_2m,precipitation,wind_speed_10m,weather_code")
	q.Set("timezone", "auto")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.forecastURL+"?"+q.Encode(), nil)
	if err != nil {
		return models.WeatherSnapshot{}, fmt.Errorf("failed to create forecast request: %w", err)
	}
	body, err := doRequest(p.client, p.Name(), req)
	if err != nil {
		return models.WeatherSnapshot{}, err
	}

	var resp struct {
		Current *struct {
			Time        string  `json:"time"`
			Temperature float64 `json:"temperature_2m"`
			Humidity    float64 `json:"relative_humidity_2m"`
			Rain        float64 `json:"precipitation"`
			Wind        float64 `json:"wind_speed_10m"`
			Code        int     `json:"weather_code"`
		} `json:"current"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return models.WeatherSnapshot{}, fmt.Errorf("failed to decode forecast response: %w", err)
	}
	if resp.Current == nil {
		return models.WeatherSnapshot{}, ErrNoData
	}

	observed, err := time.Parse("2006-01-02T15:04", resp.Current.Time)
	if err != nil {
		observed = time.Now()
	}

	return models.WeatherSnapshot{
		TemperatureC: resp.Current.Temperature,
		HumidityPct:  resp.Current.Humidity,
		RainfallMM:   resp.Current.Rain,
		WindKph:      resp.Current.Wind,
		Condition:    weatherCodeText(resp.Current.Code),
		ObservedAt:   observed,
		Source:       p.Name(),
	}, nil
}

func (p *OpenMeteo) geocode(ctx context.Context, loc models.Location) (float64, float64, error) {
	key := loc.Key()
	p.mu.RLock()
	c, ok := p.coords[key]
	p.mu.RUnlock()
	if ok {
		return c[0], c[1], nil
	}

	name := strings.TrimSpace(loc.City)
	if name == "" {
		name = strings.TrimSpace(loc.State)
	}
	if name == "" {
		return 0, 0, fmt.Errorf("location has neither city nor state: %w", ErrNoData)
	}

	q := url.Values{}
	q.Set("name", name)
	q.Set("count", "5")
	q.Set("language", "en")
	q.Set("format", "json")
	q.Set("countryCode", "IN")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.geocodingURL+"?"+q.Encode(), nil)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to create geocoding request: %w", err)
	}
	body, err := doRequest(p.client, p.Name(), req)
	if err != nil {
		return 0, 0, err
	}

	var resp struct {
		Results []struct {
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
			Admin1    string  `json:"admin1"`
		} `json:"results"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, 0, fmt.Errorf("failed to decode geocoding response: %w", err)
	}
	if len(resp.Results) == 0 {
		return 0, 0, ErrNoData
	}

	// Prefer the candidate in the requested state ("Aurangabad" exists twice).
	best := resp.Results[0]
	for _, r := range resp.Results {
		if loc.State != "" && strings.EqualFold(r.Admin1, strings.TrimSpace(loc.State)) {
			best = r
			break
		}
	}

	p.mu.Lock()
	p.coords[key] = [2]float64{best.Latitude, best.Longitude}
	p.mu.Unlock()
	return best.Latitude, best.Longitude, nil
}

// weatherCodeText renders a WMO weather interpretation code.
func weatherCodeText(code int) string {
	switch {
	case code == 0:
		return "clear"
	case code <= 3:
		return "partly cloudy"
	case code == 45 || code == 48:
		return "fog"
	case code >= 51 && code <= 57:
		return "drizzle"
	case code >= 61 && code <= 67, code >= 80 && code <= 82:
		return "rain"
	case code >= 71 && code <= 77, code == 85 || code == 86:
		return "snow"
	case code >= 95:
		return "thunderstorm"
	default:
		return "cloudy"
	}
}

// Package provider adapts external market and weather feeds to the canonical
// record model. Each feed is one MarketProvider or WeatherProvider; callers
// treat any error or empty result as "no data from this source".
package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"agri-advisor/internal/models"
)

var (
	ErrNotConfigured = errors.New("provider not configured")
	ErrNoData        = errors.New("provider returned no data")
)

// Request is one market lookup. Commodity is a canonical key or empty for
// "whatever the source has for this location".
type Request struct {
	Location  models.Location
	Commodity string
	Limit     int
	Day       time.Time
}

type MarketProvider interface {
	Name() string
	// Priority orders providers when merging; lower wins duplicates.
	Priority() int
	Fetch(ctx context.Context, req Request) ([]byte, error)
	// Parse normalizes a raw payload. Invalid records are dropped silently;
	// an error means the payload as a whole was unreadable.
	Parse(raw []byte) ([]models.MarketQuote, error)
}

type WeatherProvider interface {
	Name() string
	Priority() int
	Current(ctx context.Context, loc models.Location) (models.WeatherSnapshot, error)
}

// SortMarket orders providers by priority, then name.
func SortMarket(providers []MarketProvider) {
	sort.SliceStable(providers, func(i, j int) bool {
		if providers[i].Priority() != providers[j].Priority() {
			return providers[i].Priority() < providers[j].Priority()
		}
		return providers[i].Name() < providers[j].Name()
	})
}

func SortWeather(providers []WeatherProvider) {
	sort.SliceStable(providers, func(i, j int) bool {
		return providers[i].Priority() < providers[j].Priority()
	})
}

// StatusError is a non-2xx response from a provider.
type StatusError struct {
	Provider string
	Code     int
	Body     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s responded with status %d: %s", e.Provider, e.Code, e.Body)
}

const maxBodyBytes = 4 << 20

// doRequest executes req and returns the body of a 2xx response.
func doRequest(client *http.Client, name string, req *http.Request) ([]byte, error) {
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call %s: %w", name, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", name, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet := string(body)
		if len(snippet) > 200 {
			snippet = snippet[:200]
		}
		return nil, &StatusError{Provider: name, Code: resp.StatusCode, Body: snippet}
	}
	return body, nil
}

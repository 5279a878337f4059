package provider

import (
	"net/http"
	"strings"

	"agri-advisor/internal/commodity"
	"agri-advisor/pkg/config"
)

// NewHTTPClient is the client shared by all providers.
func NewHTTPClient(cfg *config.ProvidersConfig) *http.Client {
	return &http.Client{Timeout: cfg.Timeout}
}

// MarketProviders builds the configured market sources in priority order,
// leaving out any named in PROVIDERS_DISABLED.
func MarketProviders(cfg *config.ProvidersConfig, client *http.Client, resolver *commodity.Resolver) []MarketProvider {
	all := []MarketProvider{
		NewAgmarknet(cfg.AgmarknetURL, cfg.AgmarknetKey, client, resolver),
		NewMandiBoard(cfg.MandiBoardURL, client, resolver),
		NewENAM(cfg.ENAMURL, cfg.ENAMToken, client, resolver),
	}

	var out []MarketProvider
	for _, p := range all {
		if !disabled(cfg.DisabledSource, p.Name()) {
			out = append(out, p)
		}
	}
	SortMarket(out)
	return out
}

func WeatherProviders(cfg *config.WeatherConfig, disabledSources []string, client *http.Client) []WeatherProvider {
	all := []WeatherProvider{
		NewOpenMeteo(cfg.OpenMeteoURL, cfg.GeocodingURL, client),
		NewOpenWeather(cfg.OpenWeatherURL, cfg.OpenWeatherKey, client),
	}

	var out []WeatherProvider
	for _, p := range all {
		if !disabled(disabledSources, p.Name()) {
			out = append(out, p)
		}
	}
	SortWeather(out)
	return out
}

func disabled(list []string, name string) bool {
	for _, d := range list {
		if strings.EqualFold(d, name) {
			return true
		}
	}
	return false
}

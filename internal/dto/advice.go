package dto

type AdviceRequest struct {
	Query       string   `json:"query" example:"tamatar ka bhav kya hai"`
	Language    string   `json:"language,omitempty" example:"hi"`
	City        string   `json:"city,omitempty" example:"Pune"`
	State       string   `json:"state,omitempty" example:"Maharashtra"`
	Commodities []string `json:"commodities,omitempty"`
}

type SeasonResponse struct {
	Name   string   `json:"name"`
	Months string   `json:"months"`
	Crops  []string `json:"crops"`
}

type WeatherResponse struct {
	TemperatureC float64 `json:"temperature_c"`
	HumidityPct  float64 `json:"humidity_pct"`
	RainfallMM   float64 `json:"rainfall_mm"`
	WindKph      float64 `json:"wind_kph"`
	Condition    string  `json:"condition"`
	ObservedAt   string  `json:"observed_at"`
	Source       string  `json:"source"`
	Synthetic    bool    `json:"synthetic"`
}

type AdviceResponse struct {
	ID          string            `json:"id"`
	Answer      string            `json:"answer"`
	Language    string            `json:"language"`
	Confidence  float64           `json:"confidence"`
	Source      string            `json:"source"`
	Season      SeasonResponse    `json:"season"`
	Commodities []string          `json:"commodities"`
	Quotes      []QuoteResponse   `json:"quotes"`
	Weather     WeatherResponse   `json:"weather"`
	Snippets    []SnippetResponse `json:"snippets"`
}

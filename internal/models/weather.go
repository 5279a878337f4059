package models

import "time"

type WeatherSnapshot struct {
	TemperatureC float64   `json:"temperature_c"`
	HumidityPct  float64   `json:"humidity_pct"`
	RainfallMM   float64   `json:"rainfall_mm"`
	WindKph      float64   `json:"wind_kph"`
	Condition    string    `json:"condition"`
	ObservedAt   time.Time `json:"observed_at"`
	Source       string    `json:"source"`
	Synthetic    bool      `json:"synthetic"`
}

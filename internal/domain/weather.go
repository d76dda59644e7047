package domain

import "time"

// WeatherSnapshot is the cached view of the external weather API response.
type WeatherSnapshot struct {
	Condition   string    `json:"condition"`
	Description string    `json:"description"`
	TempC       float64   `json:"tempC"`
	Humidity    int       `json:"humidity"`
	WindKph     float64   `json:"windKph"`
	HeatIndexC  float64   `json:"heatIndexC"`
	FetchedAt   time.Time `json:"fetchedAt"`
}

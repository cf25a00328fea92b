package external

import "time"

// SourceID names one configured upstream.
type SourceID string

const (
	SourceOpenWeather SourceID = "openweather"
	SourceWeatherAPI  SourceID = "weatherapi"
	SourceOpenMeteo   SourceID = "openmeteo"
	SourceUtility     SourceID = "utility_api"
)

// Kind identifies which bundle slot a source fills.
type Kind string

const (
	KindWeather Kind = "weather"
	KindUtility Kind = "utility"
)

// PeriodLayout is the billing period format (YYYY-MM).
const PeriodLayout = "2006-01"

// Params carries the per-fetch inputs shared by all sources.
type Params struct {
	Location string
	Period   string // YYYY-MM, empty means the current month
}

// WeatherSnapshot is the normalized current weather reading.
type WeatherSnapshot struct {
	Temperature float64   `json:"temperature"` // °C
	Humidity    float64   `json:"humidity"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
}

// UtilitySnapshot is the normalized electricity billing summary for one period.
type UtilitySnapshot struct {
	CostPerKwh float64 `json:"costPerKwh"`
	TotalKwh   float64 `json:"totalKwh"`
	TotalCost  float64 `json:"totalCost"`
	Period     string  `json:"period"`
}

// SourceStatus reports how one configured source contributed to a bundle.
type SourceStatus struct {
	Source   SourceID `json:"source"`
	Fallback bool     `json:"fallback"`
	Reason   string   `json:"reason,omitempty"`
}

// Bundle is the merged result of one fetch cycle. Weather and Utility are
// always set on bundles produced by Merge.
type Bundle struct {
	Weather      *WeatherSnapshot `json:"weather"`
	Utility      *UtilitySnapshot `json:"utility"`
	SyncedAt     time.Time        `json:"syncedAt"`
	UsedFallback bool             `json:"usedFallback"`
	Sources      []SourceStatus   `json:"sources"`
}

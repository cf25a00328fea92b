package external

import "time"

// FallbackWeather is the reading used when no weather source succeeds.
func FallbackWeather(now time.Time) WeatherSnapshot {
	return WeatherSnapshot{
		Temperature: 18,
		Humidity:    65,
		Description: "Partly cloudy",
		Timestamp:   now.UTC(),
	}
}

// FallbackUtility is the billing summary used when the utility source is
// unavailable or has no endpoint.
func FallbackUtility() UtilitySnapshot {
	return UtilitySnapshot{
		CostPerKwh: 0.15,
		TotalKwh:   1250,
		TotalCost:  187.5,
		Period:     "2025-11",
	}
}

// FallbackFor returns the fallback snapshot for a bundle slot.
func FallbackFor(kind Kind, now time.Time) Snapshot {
	if kind == KindUtility {
		return FallbackUtility()
	}
	return FallbackWeather(now)
}

// FallbackBundle is a fully synthetic bundle, flagged as fallback.
func FallbackBundle(now time.Time) Bundle {
	w := FallbackWeather(now)
	u := FallbackUtility()
	return Bundle{
		Weather:      &w,
		Utility:      &u,
		SyncedAt:     now.UTC(),
		UsedFallback: true,
		Sources:      []SourceStatus{},
	}
}

package stats

import "fmt"

// DashboardStats is the aggregate view served to the dashboard. Every field is
// always populated, whether computed or taken from the fallback snapshot.
type DashboardStats struct {
	TotalHours         float64   `json:"totalHours"`
	AverageHoursPerDay float64   `json:"averageHoursPerDay"`
	CurrentTemperature float64   `json:"currentTemperature"`
	ElectricityCost    float64   `json:"electricityCost"`
	EfficiencyScore    float64   `json:"efficiencyScore"`
	CostPerHour        float64   `json:"costPerHour"`
	ChartData          ChartData `json:"chartData"`
	IsFallback         bool      `json:"isFallback"`
}

type ChartData struct {
	EfficiencyVsTemp []ChartPoint `json:"efficiencyVsTemp"`
	CostPerHour      []CostPoint  `json:"costPerHour"`
}

// ChartPoint is a synthetic per-day temperature/efficiency pair.
type ChartPoint struct {
	Date        string  `json:"date"`
	Temperature float64 `json:"temperature"`
	Efficiency  float64 `json:"efficiency"`
}

// CostPoint is the estimated cost per hour worked on one day.
type CostPoint struct {
	Date  string  `json:"date"`
	Cost  float64 `json:"cost"`
	Hours float64 `json:"hours"`
}

// CalculationError reports an input the calculator cannot use.
type CalculationError struct {
	Field  string
	Reason string
}

func (e *CalculationError) Error() string {
	return fmt.Sprintf("calculation %s: %s", e.Field, e.Reason)
}

// FallbackStats returns a fresh copy of the static snapshot served when
// aggregation fails.
func FallbackStats() DashboardStats {
	return DashboardStats{
		TotalHours:         37.5,
		AverageHoursPerDay: 7.5,
		CurrentTemperature: 18,
		ElectricityCost:    187.5,
		EfficiencyScore:    85,
		CostPerHour:        5.0,
		ChartData: ChartData{
			EfficiencyVsTemp: []ChartPoint{
				{Date: "2025-11-18", Temperature: 15, Efficiency: 82},
				{Date: "2025-11-19", Temperature: 17, Efficiency: 84},
				{Date: "2025-11-20", Temperature: 16, Efficiency: 83},
				{Date: "2025-11-21", Temperature: 19, Efficiency: 86},
				{Date: "2025-11-22", Temperature: 18, Efficiency: 85},
			},
			CostPerHour: []CostPoint{
				{Date: "2025-11-18", Cost: 4.8, Hours: 16},
				{Date: "2025-11-19", Cost: 5.1, Hours: 15.5},
				{Date: "2025-11-20", Cost: 4.9, Hours: 8},
				{Date: "2025-11-21", Cost: 5.2, Hours: 14},
				{Date: "2025-11-22", Cost: 5.0, Hours: 15.5},
			},
		},
		IsFallback: true,
	}
}

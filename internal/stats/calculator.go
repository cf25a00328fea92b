package stats

import (
	"math"
	"math/rand"
	"sort"

	"github.com/i474232898/eco-ops-dashboard/internal/external"
	"github.com/i474232898/eco-ops-dashboard/internal/hours"
)

const (
	defaultTemperature = 18.0
	optimalTemperature = 20.0
	baseEfficiency     = 90.0
	minEfficiency      = 60.0
	maxEfficiency      = 100.0

	// chart noise amplitudes, ± around the real reading
	tempNoise       = 3.0
	efficiencyNoise = 2.0
)

// Calculator turns hour entries and an external bundle into DashboardStats.
type Calculator struct {
	// jitter returns a value in [0, 1). Only the chart series use it.
	jitter func() float64
}

// NewCalculator returns a Calculator. A nil jitter uses math/rand.
func NewCalculator(jitter func() float64) *Calculator {
	if jitter == nil {
		jitter = rand.Float64
	}
	return &Calculator{jitter: jitter}
}

// Compute derives summary metrics and chart series. Everything except the
// chart noise is deterministic for the same inputs.
func (c *Calculator) Compute(entries []hours.HourEntry, bundle external.Bundle) (DashboardStats, error) {
	temp := defaultTemperature
	if bundle.Weather != nil {
		temp = bundle.Weather.Temperature
	}
	if !finite(temp) {
		return DashboardStats{}, &CalculationError{Field: "temperature", Reason: "not a finite number"}
	}

	cost := 0.0
	if bundle.Utility != nil {
		cost = bundle.Utility.TotalCost
	}
	if !finite(cost) {
		return DashboardStats{}, &CalculationError{Field: "electricityCost", Reason: "not a finite number"}
	}

	var total float64
	byDate := make(map[string]float64)
	for _, e := range entries {
		if !finite(e.Hours) || e.Hours < 0 {
			return DashboardStats{}, &CalculationError{Field: "hours", Reason: "entry " + e.ID + " has invalid hours"}
		}
		total += e.Hours
		byDate[e.Date] += e.Hours
	}

	dates := make([]string, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	days := max(len(dates), 1)

	costPerHour := 0.0
	if total > 0 {
		costPerHour = cost / total
	}

	return DashboardStats{
		TotalHours:         round(total, 1),
		AverageHoursPerDay: round(total/float64(days), 1),
		CurrentTemperature: temp,
		ElectricityCost:    round(cost, 2),
		EfficiencyScore:    EfficiencyScore(temp),
		CostPerHour:        round(costPerHour, 2),
		ChartData: ChartData{
			EfficiencyVsTemp: c.efficiencySeries(dates, temp),
			CostPerHour:      costSeries(dates, byDate, cost),
		},
	}, nil
}

// EfficiencyScore treats 20°C as optimal and loses one point per degree of
// deviation, clamped to [60, 100].
func EfficiencyScore(temp float64) float64 {
	score := baseEfficiency - math.Abs(optimalTemperature-temp)
	return round(math.Min(math.Max(score, minEfficiency), maxEfficiency), 0)
}

func (c *Calculator) efficiencySeries(dates []string, temp float64) []ChartPoint {
	points := make([]ChartPoint, 0, len(dates))
	for _, d := range dates {
		t := round(temp+(c.jitter()-0.5)*2*tempNoise, 0)
		eff := round(baseEfficiency-math.Abs(optimalTemperature-t)+(c.jitter()-0.5)*2*efficiencyNoise, 0)
		points = append(points, ChartPoint{Date: d, Temperature: t, Efficiency: eff})
	}
	return points
}

func costSeries(dates []string, byDate map[string]float64, cost float64) []CostPoint {
	points := make([]CostPoint, 0, len(dates))
	if len(dates) == 0 {
		return points
	}
	avgPerDay := cost / float64(len(dates))
	for _, d := range dates {
		h := byDate[d]
		perHour := 0.0
		if h > 0 {
			perHour = round(avgPerDay/h, 2)
		}
		points = append(points, CostPoint{Date: d, Cost: perHour, Hours: h})
	}
	return points
}

// round rounds half up to the given number of decimal places.
func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Floor(v*p+0.5) / p
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

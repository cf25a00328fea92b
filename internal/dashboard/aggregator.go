package dashboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/i474232898/eco-ops-dashboard/internal/alert"
	"github.com/i474232898/eco-ops-dashboard/internal/external"
	"github.com/i474232898/eco-ops-dashboard/internal/hours"
	"github.com/i474232898/eco-ops-dashboard/internal/logger"
	"github.com/i474232898/eco-ops-dashboard/internal/metrics"
	"github.com/i474232898/eco-ops-dashboard/internal/stats"
)

const (
	// AlertLabel identifies this component in error alerts.
	AlertLabel = "dashboard-aggregator"
	// WindowDays is the trailing range of hour entries fed to the calculator.
	WindowDays = 7
)

// BundleFetcher returns the merged external data for one request.
type BundleFetcher interface {
	Fetch(ctx context.Context, p external.Params) external.Bundle
}

// Options tunes an Aggregator. Zero values are usable.
type Options struct {
	Calculator      *stats.Calculator
	Logger          *logger.Logger
	DefaultLocation string
	Mock            bool
}

// Aggregator produces DashboardStats from stored hours and external data.
type Aggregator struct {
	store    hours.Store
	fetcher  BundleFetcher
	notifier alert.Notifier
	calc     *stats.Calculator
	log      *logger.Logger
	location string
	mock     bool
	now      func() time.Time
}

func NewAggregator(store hours.Store, fetcher BundleFetcher, notifier alert.Notifier, opts Options) *Aggregator {
	if opts.Calculator == nil {
		opts.Calculator = stats.NewCalculator(nil)
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	return &Aggregator{
		store:    store,
		fetcher:  fetcher,
		notifier: notifier,
		calc:     opts.Calculator,
		log:      opts.Logger,
		location: opts.DefaultLocation,
		mock:     opts.Mock,
		now:      time.Now,
	}
}

// Run never fails. Any error or panic in the pipeline is logged, alerted once
// and answered with the static fallback snapshot.
func (a *Aggregator) Run(ctx context.Context, location string) stats.DashboardStats {
	if a.mock {
		a.log.Infow("serving mock data", "endpoint", "dashboard_stats")
		metrics.RecordDashboard(true)
		return stats.FallbackStats()
	}
	if location == "" {
		location = a.location
	}

	result, err := a.guarded(ctx, location)
	if err != nil {
		a.log.Errorw("dashboard_fallback", "location", location, "error", err)
		if a.notifier != nil {
			a.notifier.Notify(ctx, err, AlertLabel)
		}
		metrics.RecordDashboard(true)
		return stats.FallbackStats()
	}

	metrics.RecordDashboard(false)
	return result
}

func (a *Aggregator) guarded(ctx context.Context, location string) (result stats.DashboardStats, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &stats.CalculationError{Field: "pipeline", Reason: fmt.Sprintf("panic: %v", r)}
		}
	}()
	return a.compute(ctx, location)
}

func (a *Aggregator) compute(ctx context.Context, location string) (stats.DashboardStats, error) {
	from, to := Window(a.now())

	entries, err := a.store.GetEntriesByDateRange(ctx, from, to)
	if err != nil {
		var se *hours.StorageError
		if !errors.As(err, &se) {
			err = &hours.StorageError{Op: "hours_by_range", Err: err}
		}
		return stats.DashboardStats{}, err
	}

	bundle := a.fetcher.Fetch(ctx, external.Params{Location: location, Period: to[:7]})

	result, err := a.calc.Compute(entries, bundle)
	if err != nil {
		return stats.DashboardStats{}, err
	}
	result.IsFallback = false
	return result, nil
}

// Window returns the inclusive ISO date range [now-7d, now] in UTC.
func Window(now time.Time) (from, to string) {
	end := now.UTC()
	return end.AddDate(0, 0, -WindowDays).Format(hours.DateLayout), end.Format(hours.DateLayout)
}

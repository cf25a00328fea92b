package external

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/i474232898/eco-ops-dashboard/internal/logger"
	"github.com/i474232898/eco-ops-dashboard/internal/metrics"
)

// DefaultTimeout bounds a single upstream call when none is configured.
const DefaultTimeout = 5 * time.Second

// FetcherConfig controls which sources run and how long each may take.
type FetcherConfig struct {
	Sources []SourceID
	Timeout time.Duration
	Mock    bool
}

// Fetcher runs the configured sources concurrently and merges their results.
// Fetch never fails: every source error becomes a fallback for that source.
type Fetcher struct {
	registry map[SourceID]Source
	cfg      FetcherConfig
	log      *logger.Logger
	now      func() time.Time
}

// NewFetcher registers the given sources. Sources not listed in cfg.Sources
// are available to FetchSources only.
func NewFetcher(cfg FetcherConfig, log *logger.Logger, sources ...Source) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if log == nil {
		log = logger.Nop()
	}
	reg := make(map[SourceID]Source, len(sources))
	for _, s := range sources {
		reg[s.ID()] = s
	}
	return &Fetcher{registry: reg, cfg: cfg, log: log, now: time.Now}
}

// Fetch runs the configured source list.
func (f *Fetcher) Fetch(ctx context.Context, p Params) Bundle {
	return f.FetchSources(ctx, f.cfg.Sources, p)
}

// FetchSources runs the given sources in parallel, each under its own timeout.
// Unknown ids are skipped with a warning.
func (f *Fetcher) FetchSources(ctx context.Context, ids []SourceID, p Params) Bundle {
	if f.cfg.Mock {
		f.log.Infow("serving mock data", "endpoint", "data_sync")
		return FallbackBundle(f.now())
	}

	results := make([]Result, len(ids))

	var wg sync.WaitGroup
	for i, id := range ids {
		src, ok := f.registry[id]
		if !ok {
			f.log.Warnw("unknown_source_skipped", "source", id)
			continue
		}

		wg.Add(1)
		go func(i int, src Source) {
			defer wg.Done()
			results[i] = f.run(ctx, src, p)
		}(i, src)
	}
	wg.Wait()

	return Merge(results, f.now())
}

// run settles one source's slot by the deadline. The source keeps running in
// the background if it ignores ctx; its late result is dropped.
func (f *Fetcher) run(ctx context.Context, src Source, p Params) (res Result) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, f.cfg.Timeout)
	defer cancel()

	defer func() {
		if res.IsFallback() {
			f.log.Warnw("source_fetch_failed", "source", src.ID(), "reason", res.Reason)
		}
		metrics.RecordUpstreamFetch(string(src.ID()), res.IsFallback(), time.Since(start))
	}()

	done := make(chan Result, 1)
	go func() {
		done <- f.call(ctx, src, p)
	}()

	select {
	case res = <-done:
		return res
	case <-ctx.Done():
		return Fallback(src.ID(), FallbackFor(src.Kind(), f.now()), &UpstreamError{Source: src.ID(), Reason: "no response before deadline", Err: ctx.Err()})
	}
}

func (f *Fetcher) call(ctx context.Context, src Source, p Params) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = Fallback(src.ID(), FallbackFor(src.Kind(), f.now()), fmt.Errorf("source panicked: %v", r))
		}
	}()

	res, err := src.Fetch(ctx, p)
	if err != nil {
		return Fallback(src.ID(), FallbackFor(src.Kind(), f.now()), err)
	}
	if res.Snapshot == nil {
		return Fallback(src.ID(), FallbackFor(src.Kind(), f.now()), fmt.Errorf("%s returned no data", src.ID()))
	}
	if res.Source == "" {
		res.Source = src.ID()
	}
	return res
}

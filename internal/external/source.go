package external

import (
	"context"
	"time"
)

// Source abstracts one external data provider.
//
// Fetch returns an Ok result on success. A source may return a Fallback result
// itself when its configuration says so (e.g. no endpoint); any returned error
// is converted to a fallback by the Fetcher.
type Source interface {
	ID() SourceID
	Kind() Kind
	Fetch(ctx context.Context, p Params) (Result, error)
}

// Snapshot is a normalized record that fills one bundle slot.
type Snapshot interface {
	kind() Kind
	applyTo(b *Bundle)
}

func (w WeatherSnapshot) kind() Kind        { return KindWeather }
func (w WeatherSnapshot) applyTo(b *Bundle) { b.Weather = &w }

func (u UtilitySnapshot) kind() Kind        { return KindUtility }
func (u UtilitySnapshot) applyTo(b *Bundle) { b.Utility = &u }

// Result is the outcome of one source: Ok(snapshot) or Fallback(snapshot, reason).
type Result struct {
	Source   SourceID
	Snapshot Snapshot
	Reason   error
}

// Ok wraps a fresh upstream snapshot.
func Ok(id SourceID, s Snapshot) Result {
	return Result{Source: id, Snapshot: s}
}

// Fallback wraps a substitute snapshot and the reason it was needed.
func Fallback(id SourceID, s Snapshot, reason error) Result {
	if reason == nil {
		reason = ErrFallback
	}
	return Result{Source: id, Snapshot: s, Reason: reason}
}

// IsFallback reports whether the result carries substitute data.
func (r Result) IsFallback() bool { return r.Reason != nil }

func (r Result) status() SourceStatus {
	st := SourceStatus{Source: r.Source, Fallback: r.IsFallback()}
	if r.Reason != nil {
		st.Reason = r.Reason.Error()
	}
	return st
}

// Merge combines per-source results, given in configured order, into a bundle.
//
// Each slot takes the first Ok result targeting it, or the first Fallback when
// none succeeded. Slots that no result targets get their fallback value without
// marking the bundle. UsedFallback is set if any result is a Fallback.
func Merge(results []Result, now time.Time) Bundle {
	b := Bundle{Sources: make([]SourceStatus, 0, len(results))}
	fresh := make(map[Kind]bool, 2)

	for _, r := range results {
		if r.Snapshot == nil {
			continue
		}
		b.Sources = append(b.Sources, r.status())

		k := r.Snapshot.kind()
		if r.IsFallback() {
			b.UsedFallback = true
			if !fresh[k] && !filled(&b, k) {
				r.Snapshot.applyTo(&b)
			}
			continue
		}
		if !fresh[k] {
			r.Snapshot.applyTo(&b)
			fresh[k] = true
		}
	}

	if b.Weather == nil {
		FallbackWeather(now).applyTo(&b)
	}
	if b.Utility == nil {
		FallbackUtility().applyTo(&b)
	}
	b.SyncedAt = now.UTC()
	return b
}

func filled(b *Bundle, k Kind) bool {
	if k == KindUtility {
		return b.Utility != nil
	}
	return b.Weather != nil
}

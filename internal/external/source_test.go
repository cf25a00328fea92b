package external

import (
	"errors"
	"testing"
	"time"
)

var testNow = time.Date(2025, 11, 22, 12, 0, 0, 0, time.UTC)

func TestMerge_EmptyResultsFillsBothSlots(t *testing.T) {
	b := Merge(nil, testNow)

	if b.Weather == nil || b.Utility == nil {
		t.Fatalf("both slots must be populated: %+v", b)
	}
	if b.UsedFallback {
		t.Fatal("unconfigured slots must not mark the bundle as fallback")
	}
	if !b.SyncedAt.Equal(testNow) {
		t.Fatalf("SyncedAt = %v, want %v", b.SyncedAt, testNow)
	}
	if b.Sources == nil || len(b.Sources) != 0 {
		t.Fatalf("Sources should be an empty list, got %#v", b.Sources)
	}
}

func TestMerge_WeatherFailsUtilitySucceeds(t *testing.T) {
	live := UtilitySnapshot{CostPerKwh: 0.2, TotalKwh: 500, TotalCost: 100, Period: "2025-11"}
	results := []Result{
		Fallback(SourceOpenWeather, FallbackWeather(testNow), &UpstreamError{Source: SourceOpenWeather, StatusCode: 500}),
		Ok(SourceUtility, live),
	}

	b := Merge(results, testNow)

	if !b.UsedFallback {
		t.Fatal("expected UsedFallback")
	}
	if *b.Utility != live {
		t.Fatalf("utility = %+v, want live %+v", *b.Utility, live)
	}
	if b.Weather.Temperature != 18 || b.Weather.Description != "Partly cloudy" {
		t.Fatalf("weather should be the fallback reading, got %+v", *b.Weather)
	}
	if len(b.Sources) != 2 || !b.Sources[0].Fallback || b.Sources[1].Fallback {
		t.Fatalf("unexpected source statuses: %+v", b.Sources)
	}
	if b.Sources[0].Reason == "" {
		t.Fatal("fallback status should carry a reason")
	}
}

func TestMerge_FirstOkWinsSlot(t *testing.T) {
	first := WeatherSnapshot{Temperature: 10, Description: "rain"}
	second := WeatherSnapshot{Temperature: 25, Description: "sun"}

	b := Merge([]Result{
		Fallback(SourceOpenWeather, FallbackWeather(testNow), errors.New("down")),
		Ok(SourceWeatherAPI, first),
		Ok("other", second),
	}, testNow)

	if b.Weather.Temperature != 10 {
		t.Fatalf("expected first ok reading to win, got %+v", *b.Weather)
	}
	if !b.UsedFallback {
		t.Fatal("a failed configured source still marks the bundle")
	}
}

func TestMerge_AllOk(t *testing.T) {
	b := Merge([]Result{
		Ok(SourceOpenWeather, WeatherSnapshot{Temperature: 21}),
		Ok(SourceUtility, UtilitySnapshot{TotalCost: 50}),
	}, testNow)

	if b.UsedFallback {
		t.Fatal("no fallback expected")
	}
	if b.Weather.Temperature != 21 || b.Utility.TotalCost != 50 {
		t.Fatalf("unexpected bundle: %+v %+v", *b.Weather, *b.Utility)
	}
}

func TestMerge_SkipsZeroResults(t *testing.T) {
	b := Merge([]Result{{}, Ok(SourceUtility, UtilitySnapshot{TotalCost: 1})}, testNow)
	if len(b.Sources) != 1 {
		t.Fatalf("zero results should not produce a status: %+v", b.Sources)
	}
}

func TestFallbackWithoutReasonIsStillFallback(t *testing.T) {
	r := Fallback(SourceUtility, FallbackUtility(), nil)
	if !r.IsFallback() || !errors.Is(r.Reason, ErrFallback) {
		t.Fatalf("unexpected result: %+v", r)
	}
}

func TestUpstreamErrorMessageAndUnwrap(t *testing.T) {
	inner := errors.New("connection refused")
	err := &UpstreamError{Source: SourceUtility, StatusCode: 502, Reason: "bad gateway", Err: inner}

	want := "upstream utility_api: status 502: bad gateway: connection refused"
	if err.Error() != want {
		t.Fatalf("Error() = %q, want %q", err.Error(), want)
	}
	if !errors.Is(err, inner) {
		t.Fatal("expected UpstreamError to unwrap to inner error")
	}
}

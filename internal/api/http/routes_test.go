package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/eco-ops-dashboard/internal/external"
	"github.com/i474232898/eco-ops-dashboard/internal/hours"
	"github.com/i474232898/eco-ops-dashboard/internal/scheduler"
	"github.com/i474232898/eco-ops-dashboard/internal/stats"
	"github.com/i474232898/eco-ops-dashboard/internal/store"
)

type statsFunc func(ctx context.Context, location string) stats.DashboardStats

func (f statsFunc) Run(ctx context.Context, location string) stats.DashboardStats {
	return f(ctx, location)
}

type fetchFunc func(ctx context.Context, p external.Params) external.Bundle

func (f fetchFunc) Fetch(ctx context.Context, p external.Params) external.Bundle { return f(ctx, p) }

type fixedSync struct{ last scheduler.LastSync }

func (s fixedSync) Last() (scheduler.LastSync, bool) { return s.last, true }

type brokenStore struct{ hours.Store }

func (brokenStore) LogHours(context.Context, hours.NewEntry) (hours.HourEntry, error) {
	return hours.HourEntry{}, &hours.StorageError{Op: "log_hours", Err: errors.New("disk full")}
}

func (brokenStore) ListHours(context.Context, hours.Filter) ([]hours.HourEntry, error) {
	return nil, &hours.StorageError{Op: "list_hours", Err: errors.New("disk full")}
}

type recordingNotifier struct {
	mu     sync.Mutex
	labels []string
}

func (n *recordingNotifier) Notify(_ context.Context, _ error, label string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.labels = append(n.labels, label)
	return true
}

func testDeps() Deps {
	return Deps{
		Hours: store.NewMemoryStore(hours.SeedEntries()),
		Stats: statsFunc(func(context.Context, string) stats.DashboardStats {
			return stats.FallbackStats()
		}),
		Fetcher: fetchFunc(func(_ context.Context, p external.Params) external.Bundle {
			return external.FallbackBundle(time.Now())
		}),
		Info: Info{App: "eco-ops-manager", Environment: "test", DefaultLocation: "London,UK", Mock: true},
	}
}

func do(t *testing.T, app *fiber.App, req *http.Request) (*http.Response, []byte) {
	t.Helper()
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, body
}

func decodeError(t *testing.T, body []byte) errorBody {
	t.Helper()
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		t.Fatalf("error body is not the envelope: %s", body)
	}
	if eb.Error == "" || eb.Message == "" || eb.Timestamp == "" {
		t.Fatalf("incomplete error envelope: %+v", eb)
	}
	return eb
}

func TestDashboardStats_UsesLocationQuery(t *testing.T) {
	d := testDeps()
	var got string
	d.Stats = statsFunc(func(_ context.Context, location string) stats.DashboardStats {
		got = location
		return stats.FallbackStats()
	})
	app := NewApp(d)

	resp, body := do(t, app, httptest.NewRequest(http.MethodGet, "/api/dashboard/stats?location=Paris,FR", nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if got != "Paris,FR" {
		t.Fatalf("location = %q", got)
	}

	var st stats.DashboardStats
	if err := json.Unmarshal(body, &st); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !st.IsFallback || st.EfficiencyScore != 85 || len(st.ChartData.CostPerHour) != 5 {
		t.Fatalf("unexpected body: %s", body)
	}

	do(t, app, httptest.NewRequest(http.MethodGet, "/api/dashboard/stats", nil))
	if got != "London,UK" {
		t.Fatalf("default location = %q", got)
	}
}

func TestDataSync(t *testing.T) {
	d := testDeps()
	var got external.Params
	d.Fetcher = fetchFunc(func(_ context.Context, p external.Params) external.Bundle {
		got = p
		return external.FallbackBundle(time.Now())
	})
	app := NewApp(d)

	resp, body := do(t, app, httptest.NewRequest(http.MethodGet, "/api/data/sync?period=2025-10", nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d body %s", resp.StatusCode, body)
	}
	if got.Period != "2025-10" || got.Location != "London,UK" {
		t.Fatalf("unexpected params: %+v", got)
	}

	var b map[string]any
	if err := json.Unmarshal(body, &b); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, key := range []string{"weather", "utility", "syncedAt", "usedFallback", "sources"} {
		if _, ok := b[key]; !ok {
			t.Fatalf("bundle missing %q: %s", key, body)
		}
	}
}

func TestDataSync_InvalidPeriod(t *testing.T) {
	app := NewApp(testDeps())

	resp, body := do(t, app, httptest.NewRequest(http.MethodGet, "/api/data/sync?period=November", nil))
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if eb := decodeError(t, body); eb.Message != "period must be in YYYY-MM format" {
		t.Fatalf("message = %q", eb.Message)
	}
}

func TestLogHours(t *testing.T) {
	app := NewApp(testDeps())

	req := httptest.NewRequest(http.MethodPost, "/api/hours/log",
		strings.NewReader(`{"staffName":"Ann Lee","hours":0,"date":"2025-11-23"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, body := do(t, app, req)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d body %s", resp.StatusCode, body)
	}
	var e hours.HourEntry
	if err := json.Unmarshal(body, &e); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if e.ID == "" || e.StaffName != "Ann Lee" || e.Hours != 0 || e.Date != "2025-11-23" || e.CreatedAt.IsZero() {
		t.Fatalf("unexpected entry: %+v", e)
	}
}

func TestLogHours_Validation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		message string
	}{
		{name: "missing hours", body: `{"staffName":"A","date":"2025-11-23"}`, message: "staffName, hours (number), and date are required"},
		{name: "blank name", body: `{"staffName":"  ","hours":4,"date":"2025-11-23"}`, message: "staffName, hours (number), and date are required"},
		{name: "too many hours", body: `{"staffName":"A","hours":25,"date":"2025-11-23"}`, message: "Hours must be between 0 and 24"},
		{name: "negative hours", body: `{"staffName":"A","hours":-1,"date":"2025-11-23"}`, message: "Hours must be between 0 and 24"},
		{name: "hours as string", body: `{"staffName":"A","hours":"8","date":"2025-11-23"}`, message: "staffName, hours (number), and date are required"},
		{name: "bad date", body: `{"staffName":"A","hours":8,"date":"23/11/2025"}`, message: "date must be in YYYY-MM-DD format"},
	}

	app := NewApp(testDeps())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/hours/log", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")

			resp, body := do(t, app, req)
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("status = %d", resp.StatusCode)
			}
			if eb := decodeError(t, body); eb.Message != tt.message {
				t.Fatalf("message = %q, want %q", eb.Message, tt.message)
			}
		})
	}
}

func TestLogHours_StoreFailureAlerts(t *testing.T) {
	d := testDeps()
	d.Hours = brokenStore{}
	n := &recordingNotifier{}
	d.Notifier = n
	app := NewApp(d)

	req := httptest.NewRequest(http.MethodPost, "/api/hours/log",
		strings.NewReader(`{"staffName":"A","hours":8,"date":"2025-11-23"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, body := do(t, app, req)
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if eb := decodeError(t, body); eb.Message != "Failed to log hours" || eb.Error != "Internal Server Error" {
		t.Fatalf("unexpected envelope: %+v", eb)
	}
	if len(n.labels) != 1 || n.labels[0] != "POST /api/hours/log" {
		t.Fatalf("alerts = %v", n.labels)
	}
}

func TestListHours(t *testing.T) {
	app := NewApp(testDeps())

	resp, body := do(t, app, httptest.NewRequest(http.MethodGet, "/api/hours?staffName=Jane%20Doe", nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var entries []hours.HourEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(entries) != 2 || entries[0].ID != "2" {
		t.Fatalf("unexpected entries: %+v", entries)
	}

	_, body = do(t, app, httptest.NewRequest(http.MethodGet, "/api/hours?date=2030-01-01", nil))
	if strings.TrimSpace(string(body)) != "[]" {
		t.Fatalf("empty result should be [], got %s", body)
	}
}

func TestListHours_StoreFailure(t *testing.T) {
	d := testDeps()
	d.Hours = brokenStore{}
	resp, body := do(t, NewApp(d), httptest.NewRequest(http.MethodGet, "/api/hours", nil))
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	decodeError(t, body)
}

func TestHealth(t *testing.T) {
	d := testDeps()
	app := NewApp(d)

	resp, body := do(t, app, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var h map[string]any
	if err := json.Unmarshal(body, &h); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if h["status"] != "ok" || h["app"] != "eco-ops-manager" || h["mockMode"] != true || h["lastSync"] != nil {
		t.Fatalf("unexpected health body: %s", body)
	}

	d.Sync = fixedSync{last: scheduler.LastSync{At: time.Date(2025, 11, 22, 12, 0, 0, 0, time.UTC), UsedFallback: true}}
	_, body = do(t, NewApp(d), httptest.NewRequest(http.MethodGet, "/api/health", nil))
	if !strings.Contains(string(body), `"lastSync":{"at":"2025-11-22T12:00:00Z"`) {
		t.Fatalf("lastSync not rendered: %s", body)
	}
}

func TestUnknownAPIRoute(t *testing.T) {
	resp, body := do(t, NewApp(testDeps()), httptest.NewRequest(http.MethodGet, "/api/nope", nil))
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if eb := decodeError(t, body); eb.Message != "API endpoint /api/nope not found" {
		t.Fatalf("message = %q", eb.Message)
	}
}

func TestPanicIsRecovered(t *testing.T) {
	d := testDeps()
	d.Stats = statsFunc(func(context.Context, string) stats.DashboardStats { panic("boom") })
	n := &recordingNotifier{}
	d.Notifier = n

	resp, body := do(t, NewApp(d), httptest.NewRequest(http.MethodGet, "/api/dashboard/stats", nil))
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	decodeError(t, body)
	if len(n.labels) != 1 {
		t.Fatalf("expected one alert, got %v", n.labels)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	resp, body := do(t, NewApp(testDeps()), httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !strings.Contains(string(body), "eco_ops_app_start_time_seconds") {
		t.Fatal("metrics output missing app metrics")
	}
}

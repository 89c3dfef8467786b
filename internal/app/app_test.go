package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ahaar/ahaar-cli/internal/config"
	"github.com/ahaar/ahaar-cli/internal/model"
	"github.com/ahaar/ahaar-cli/internal/service"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

var testNow = time.Date(2025, 3, 14, 18, 0, 0, 0, time.Local)

const nutritionBody = `{"calories": 760, "protein": 43, "carbs": 70, "fat": 19,
 "meals": [{"id": "m1", "name": "Grilled Chicken Salad", "calories": 420}]}`

const mealsBody = `{"meals": [{"id": "m2", "name": "Dinner", "calories": 610}, {"id": "m1", "name": "Lunch", "calories": 420}]}`

// stubAPI serves the backend routes and fails every request once down is set.
type stubAPI struct {
	down  atomic.Bool
	calls atomic.Int32
}

func (s *stubAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.calls.Add(1)
	if s.down.Load() {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error": "backend offline"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	switch {
	case strings.HasPrefix(r.URL.Path, "/nutrition/"):
		_, _ = w.Write([]byte(nutritionBody))
	case strings.HasPrefix(r.URL.Path, "/meals/"):
		_, _ = w.Write([]byte(mealsBody))
	case r.URL.Path == "/health":
		_, _ = w.Write([]byte(`{"status": "healthy", "timestamp": "2025-03-14T18:00:00", "gemini_configured": true}`))
	default:
		http.NotFound(w, r)
	}
}

func newTestApp(t *testing.T, dbPath, baseURL string, demo, offline bool) *App {
	t.Helper()
	cfg := config.Default()
	cfg.UserID = "priya"
	cfg.DBPath = dbPath
	cfg.API.BaseURL = baseURL
	cfg.DemoFallback = demo
	a, err := New(cfg, Options{Offline: offline, Logger: NopLogger{}, Clock: fixedClock{testNow}, OpID: "op-test"})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func dailyRange(t *testing.T, date string) service.PeriodRange {
	t.Helper()
	r, err := service.ResolvePeriod(service.PeriodDaily, date, "", "", testNow)
	if err != nil {
		t.Fatalf("resolve period: %v", err)
	}
	return r
}

func TestLoadPeriodFallsBackLiveCacheDemo(t *testing.T) {
	t.Parallel()
	api := &stubAPI{}
	srv := httptest.NewServer(api)
	defer srv.Close()
	a := newTestApp(t, filepath.Join(t.TempDir(), "cache.db"), srv.URL, true, false)
	ctx := context.Background()

	r := dailyRange(t, "2025-03-14")
	res, err := a.LoadPeriod(ctx, r)
	if err != nil {
		t.Fatalf("live load: %v", err)
	}
	if res.Origin != OriginLive || res.Totals.Calories != 760 || res.LiveErr != nil {
		t.Fatalf("unexpected live result: %+v", res)
	}

	api.down.Store(true)
	res, err = a.LoadPeriod(ctx, r)
	if err != nil {
		t.Fatalf("cached load: %v", err)
	}
	if res.Origin != OriginCache || res.Totals.Calories != 760 || res.LiveErr == nil {
		t.Fatalf("expected cache fallback with live error, got %+v", res)
	}
	if !res.FetchedAt.Equal(testNow) {
		t.Fatalf("expected cached fetched_at %s, got %s", testNow, res.FetchedAt)
	}
	if !strings.Contains(res.LiveErr.Error(), "backend offline") {
		t.Fatalf("expected server error message, got %v", res.LiveErr)
	}

	res, err = a.LoadPeriod(ctx, dailyRange(t, "2025-03-01"))
	if err != nil {
		t.Fatalf("demo load: %v", err)
	}
	if res.Origin != OriginDemo || len(res.Totals.Meals) == 0 {
		t.Fatalf("expected demo data, got origin=%s meals=%d", res.Origin, len(res.Totals.Meals))
	}

	origin, ok, err := service.GetSyncState(a.DB(), service.SyncLastOrigin)
	if err != nil || !ok || origin != string(OriginDemo) {
		t.Fatalf("expected last origin demo, got %q ok=%v err=%v", origin, ok, err)
	}
	if msg, ok, _ := service.GetSyncState(a.DB(), service.SyncLastError); !ok || !strings.Contains(msg, "503") {
		t.Fatalf("expected last error to be recorded, got %q", msg)
	}
}

func TestLoadPeriodRecomputesEmptyTotals(t *testing.T) {
	t.Parallel()
	a := newTestApp(t, filepath.Join(t.TempDir(), "cache.db"), "http://127.0.0.1:1", false, true)
	r := dailyRange(t, "2025-03-14")
	totals := model.PeriodTotals{Meals: []model.Meal{{Name: "Lunch", Calories: 420}, {Name: "Snack", Calories: 180}}}
	if err := service.SaveSnapshot(a.DB(), "priya", r, totals, testNow); err != nil {
		t.Fatalf("seed snapshot: %v", err)
	}

	res, err := a.LoadPeriod(context.Background(), r)
	if err != nil {
		t.Fatalf("cached load: %v", err)
	}
	if res.Origin != OriginCache || res.Totals.Calories != 600 {
		t.Fatalf("expected totals recomputed from cached meals, got origin=%s calories=%.0f", res.Origin, res.Totals.Calories)
	}
}

func TestLoadPeriodWithoutDemoFails(t *testing.T) {
	t.Parallel()
	a := newTestApp(t, filepath.Join(t.TempDir(), "cache.db"), "http://127.0.0.1:1", false, true)

	if _, err := a.LoadPeriod(context.Background(), dailyRange(t, "2025-03-14")); err == nil {
		t.Fatalf("expected error with no live, cache or demo source")
	}
}

func TestOfflineNeverCallsAPI(t *testing.T) {
	t.Parallel()
	api := &stubAPI{}
	srv := httptest.NewServer(api)
	defer srv.Close()
	a := newTestApp(t, filepath.Join(t.TempDir(), "cache.db"), srv.URL, true, true)
	ctx := context.Background()

	if _, err := a.Sync(ctx, dailyRange(t, "2025-03-14")); err == nil {
		t.Fatalf("expected offline sync to fail")
	}
	res, err := a.LoadMeals(ctx, testNow)
	if err != nil {
		t.Fatalf("offline meals: %v", err)
	}
	if res.Origin != OriginDemo {
		t.Fatalf("expected demo meals offline, got %s", res.Origin)
	}
	status, err := a.Status(ctx)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status.Health != nil || status.HealthError != "" {
		t.Fatalf("offline status must skip health check: %+v", status)
	}
	if n := api.calls.Load(); n != 0 {
		t.Fatalf("expected no API calls offline, got %d", n)
	}
}

func TestSyncCachesPeriodAndMeals(t *testing.T) {
	t.Parallel()
	api := &stubAPI{}
	srv := httptest.NewServer(api)
	defer srv.Close()
	dbPath := filepath.Join(t.TempDir(), "cache.db")
	ctx := context.Background()

	online := newTestApp(t, dbPath, srv.URL, false, false)
	if _, err := online.Sync(ctx, dailyRange(t, "2025-03-14")); err != nil {
		t.Fatalf("sync: %v", err)
	}
	if err := online.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	offline := newTestApp(t, dbPath, srv.URL, false, true)
	meals, err := offline.LoadMeals(ctx, testNow)
	if err != nil {
		t.Fatalf("cached meals: %v", err)
	}
	if meals.Origin != OriginCache || len(meals.Meals) != 2 || meals.Meals[0].ID != "m2" {
		t.Fatalf("expected cached meals in server order, got %+v", meals)
	}
	if !meals.FetchedAt.Equal(testNow) {
		t.Fatalf("expected cached meals fetched_at %s, got %s", testNow, meals.FetchedAt)
	}

	status, err := offline.Status(ctx)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status.SchemaVersion != 3 || len(status.Snapshots) != 1 || status.Snapshots[0].From != "2025-03-14" {
		t.Fatalf("unexpected status: %+v", status)
	}
	if status.OpID != "op-test" || status.UserID != "priya" {
		t.Fatalf("unexpected status identity: %+v", status)
	}
	found := false
	for _, e := range status.SyncState {
		if e.Key == service.SyncLastSuccess {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected last_success in sync state: %+v", status.SyncState)
	}
}

func TestStatusReportsHealth(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(&stubAPI{})
	defer srv.Close()
	a := newTestApp(t, filepath.Join(t.TempDir(), "cache.db"), srv.URL, true, false)

	status, err := a.Status(context.Background())
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status.Health == nil || status.Health.Status != "healthy" || !status.Health.GeminiConfigured {
		t.Fatalf("unexpected health: %+v err=%q", status.Health, status.HealthError)
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	t.Parallel()
	cfg := config.Default()
	cfg.DBPath = filepath.Join(t.TempDir(), "cache.db")
	cfg.API.BaseURL = "ftp://example.com"
	if _, err := New(cfg, Options{}); err == nil {
		t.Fatalf("expected invalid base url to fail")
	}
	if _, err := New(nil, Options{}); err == nil {
		t.Fatalf("expected nil config to fail")
	}
}

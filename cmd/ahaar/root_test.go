package ahaar

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ahaar/ahaar-cli/internal/config"
	"github.com/ahaar/ahaar-cli/internal/db"
	"github.com/ahaar/ahaar-cli/internal/model"
	"github.com/ahaar/ahaar-cli/internal/service"
)

// resetFlags restores package flag state between in-process runs.
func resetFlags() {
	configPath, dbPath, userID, apiToken = "", "", "", ""
	offline, verbose = false, false
	periodArg, dateArg, fromArg, toArg = "daily", "", "", ""
	insightsJSON, insightsNoCharts, insightsOutPath, insightsOutFormat = false, false, "", "text"
	mealsDate, mealsSort, mealsTags, mealsJSON = "", "newest", false, false
	trendMetric, trendCount = "calories", 7
	summaryJSON, statusJSON, microsJSON = false, false, false
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags()
	buf := &bytes.Buffer{}
	rootCmd.SetOut(buf)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func offlineArgs(t *testing.T, args ...string) []string {
	t.Helper()
	dir := t.TempDir()
	base := []string{"--config", filepath.Join(dir, "config.toml"), "--db", filepath.Join(dir, "cache.db"), "--offline"}
	return append(base, args...)
}

// seededArgs is offlineArgs with a cache db prepared by seed.
func seededArgs(t *testing.T, seed func(*testing.T, *sql.DB), args ...string) []string {
	t.Helper()
	dir := t.TempDir()
	dbFile := filepath.Join(dir, "cache.db")
	sqldb, err := db.Open(dbFile)
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	if err := db.ApplyMigrations(sqldb); err != nil {
		t.Fatalf("migrate cache: %v", err)
	}
	seed(t, sqldb)
	if err := sqldb.Close(); err != nil {
		t.Fatalf("close cache: %v", err)
	}
	base := []string{"--config", filepath.Join(dir, "config.toml"), "--db", dbFile, "--offline"}
	return append(base, args...)
}

var seedDay = time.Date(2025, 3, 14, 0, 0, 0, 0, time.Local)

func TestRootHelp(t *testing.T) {
	out, err := runCLI(t, "--help")
	if err != nil {
		t.Fatalf("execute root help: %v", err)
	}
	if !strings.Contains(out, "insights") {
		t.Fatalf("expected help to list insights command, got %q", out)
	}
}

func TestInitCommandIdempotent(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.toml")
	dbFile := filepath.Join(dir, "cache.db")
	for i := 0; i < 2; i++ {
		out, err := runCLI(t, "--config", cfgPath, "--db", dbFile, "init")
		if err != nil {
			t.Fatalf("init run %d failed: %v", i+1, err)
		}
		if !strings.Contains(out, "schema v3") {
			t.Fatalf("init run %d: unexpected output %q", i+1, out)
		}
	}
	cfg, err := config.ReadFromFile(cfgPath)
	if err != nil {
		t.Fatalf("read written config: %v", err)
	}
	if cfg.UserID != "default_user" || !cfg.DemoFallback {
		t.Fatalf("unexpected default config: %+v", cfg)
	}
}

func TestConfigSetPersistsTargets(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.toml")
	if _, err := runCLI(t, "--config", cfgPath, "config", "set", "--calories", "1800", "--user-id", "priya"); err != nil {
		t.Fatalf("config set: %v", err)
	}
	out, err := runCLI(t, "--config", cfgPath, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(out, `user_id = "priya"`) || !strings.Contains(out, "calories = 1800.0") {
		t.Fatalf("expected updated values in config show, got:\n%s", out)
	}
	if _, err := runCLI(t, "--config", cfgPath, "config", "set", "--api-url", "not a url"); err == nil {
		t.Fatalf("expected invalid api url to be rejected")
	}
}

func TestInsightsOfflineUsesDemoData(t *testing.T) {
	out, err := runCLI(t, offlineArgs(t, "insights", "--date", "2025-03-14", "--json")...)
	if err != nil {
		t.Fatalf("insights: %v", err)
	}
	var report map[string]any
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode insights json: %v\n%s", err, out)
	}
	if report["origin"] != "demo" || report["period"] != "daily" {
		t.Fatalf("unexpected report header: origin=%v period=%v", report["origin"], report["period"])
	}
	if _, ok := report["indices"].(map[string]any)["heart_risk"]; !ok {
		t.Fatalf("expected heart_risk index in report")
	}
	if report["latest_meal"] != "Salmon with Quinoa" {
		t.Fatalf("expected latest analysed meal to be the salmon, got %v", report["latest_meal"])
	}
	adv, ok := report["advanced"].(map[string]any)
	if !ok {
		t.Fatalf("expected advanced panel in report")
	}
	if adv["omega_3"] != 2.1 || adv["organic"] != true || adv["local"] != false {
		t.Fatalf("unexpected advanced panel: %v", adv)
	}
	if v, ok := adv["antioxidant_orac"]; !ok || v != nil {
		t.Fatalf("expected unknown ORAC as null, got %v ok=%v", v, ok)
	}
}

func TestInsightsWritesMarkdownReport(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "report.md")
	out, err := runCLI(t, offlineArgs(t, "insights", "--period", "weekly", "--date", "2025-03-12", "--no-charts", "--out", outPath, "--out-format", "markdown")...)
	if err != nil {
		t.Fatalf("insights export: %v", err)
	}
	if !strings.Contains(out, "Saved insights report") || !strings.Contains(out, "Source: demo data") {
		t.Fatalf("unexpected stdout:\n%s", out)
	}
	if strings.Contains(out, "\nCharts\n") {
		t.Fatalf("--no-charts must suppress chart section")
	}
	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !strings.HasPrefix(string(data), "# Nutrition Insights Report") || !strings.Contains(string(data), "`2025-03-10` to `2025-03-16`") {
		t.Fatalf("unexpected markdown report:\n%s", data)
	}
}

func TestInsightsRendersAdvancedPanel(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "report.md")
	out, err := runCLI(t, offlineArgs(t, "insights", "--date", "2025-03-14", "--no-charts", "--out", outPath, "--out-format", "md")...)
	if err != nil {
		t.Fatalf("insights: %v", err)
	}
	if !strings.Contains(out, "\nAdvanced\nMeal: Salmon with Quinoa\nORAC: n/a\n") || !strings.Contains(out, "Sourcing: local no, organic yes") {
		t.Fatalf("expected advanced panel in text output:\n%s", out)
	}
	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !strings.Contains(string(data), "## Advanced\n- Meal: Salmon with Quinoa\n") || !strings.Contains(string(data), "- Omega-3: 2.10 g  Omega-6: 1.40 g  Omega-3:6 ratio: n/a\n") {
		t.Fatalf("expected advanced panel in markdown:\n%s", data)
	}
}

func TestMealsSortByCalories(t *testing.T) {
	out, err := runCLI(t, offlineArgs(t, "meals", "--sort", "calories_desc", "--tags")...)
	if err != nil {
		t.Fatalf("meals: %v", err)
	}
	order := []string{"Salmon with Quinoa", "Grilled Chicken Salad", "Oatmeal with Berries", "Greek Yogurt Parfait"}
	last := -1
	for _, name := range order {
		idx := strings.Index(out, name)
		if idx <= last {
			t.Fatalf("expected %q after previous meal in output:\n%s", name, out)
		}
		last = idx
	}
}

func TestMealsSortedKeepLoadedPositionForTimestamp(t *testing.T) {
	seed := func(t *testing.T, sqldb *sql.DB) {
		meals := []model.Meal{{ID: "x", Name: "x", Calories: 100}, {ID: "y", Name: "y", Calories: 300}, {ID: "z", Name: "z", Calories: 200}}
		if err := service.SaveMeals(sqldb, "default_user", seedDay, meals, seedDay.Add(9*time.Hour)); err != nil {
			t.Fatalf("seed meals: %v", err)
		}
	}
	out, err := runCLI(t, seededArgs(t, seed, "meals", "--date", "2025-03-14", "--sort", "calories_desc", "--json")...)
	if err != nil {
		t.Fatalf("meals: %v", err)
	}
	var got struct {
		Origin    string     `json:"origin"`
		FetchedAt *time.Time `json:"fetched_at"`
		Totals    struct {
			Calories float64 `json:"calories"`
		} `json:"totals"`
		Meals []struct {
			ID         string `json:"id"`
			ResolvedAt int64  `json:"resolved_timestamp"`
		} `json:"meals"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode meals json: %v\n%s", err, out)
	}
	if got.Origin != "cache" || got.FetchedAt == nil || got.Totals.Calories != 600 || len(got.Meals) != 3 {
		t.Fatalf("unexpected meals report: %+v", got)
	}
	wantOrder := []string{"y", "z", "x"}
	wantTS := map[string]int64{"x": 0, "y": 1, "z": 2}
	for i, m := range got.Meals {
		if m.ID != wantOrder[i] {
			t.Fatalf("expected order %v, got %+v", wantOrder, got.Meals)
		}
		if m.ResolvedAt != wantTS[m.ID] {
			t.Fatalf("expected %s to resolve to its loaded position %d, got %d", m.ID, wantTS[m.ID], m.ResolvedAt)
		}
	}
}

func TestMealsPrintsDayTotals(t *testing.T) {
	out, err := runCLI(t, offlineArgs(t, "meals")...)
	if err != nil {
		t.Fatalf("meals: %v", err)
	}
	if !strings.Contains(out, "TOTAL\t4 meals\t1540\t") {
		t.Fatalf("expected demo day totals row, got:\n%s", out)
	}
}

func TestSummaryRecomputesEmptyCachedTotals(t *testing.T) {
	seed := func(t *testing.T, sqldb *sql.DB) {
		r, err := service.ResolvePeriod(service.PeriodDaily, "2025-03-14", "", "", seedDay)
		if err != nil {
			t.Fatalf("resolve period: %v", err)
		}
		totals := model.PeriodTotals{Meals: []model.Meal{{Name: "Lunch", Calories: 420}, {Name: "Snack", Calories: 180}}}
		if err := service.SaveSnapshot(sqldb, "default_user", r, totals, seedDay); err != nil {
			t.Fatalf("seed snapshot: %v", err)
		}
	}
	out, err := runCLI(t, seededArgs(t, seed, "summary", "--date", "2025-03-14", "--json")...)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	var got struct {
		Origin string `json:"origin"`
		Totals struct {
			Calories float64 `json:"calories"`
		} `json:"totals"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode summary json: %v\n%s", err, out)
	}
	if got.Origin != "cache" || got.Totals.Calories != 600 {
		t.Fatalf("expected calories recomputed from cached meals, got %+v", got)
	}
}

func TestMealsRejectsUnknownSortKey(t *testing.T) {
	if _, err := runCLI(t, offlineArgs(t, "meals", "--sort", "spiciest")...); err == nil {
		t.Fatalf("expected invalid sort key to fail")
	}
}

func TestMealsTrendJSON(t *testing.T) {
	out, err := runCLI(t, offlineArgs(t, "meals", "trend", "--metric", "calories", "--count", "2", "--json")...)
	if err != nil {
		t.Fatalf("meals trend: %v", err)
	}
	var got struct {
		Metric string    `json:"metric"`
		Values []float64 `json:"values"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode trend json: %v\n%s", err, out)
	}
	if got.Metric != "calories" || len(got.Values) != 2 || got.Values[0] != 560 || got.Values[1] != 220 {
		t.Fatalf("unexpected trend: %+v", got)
	}
}

func TestSyncRequiresNetwork(t *testing.T) {
	if _, err := runCLI(t, offlineArgs(t, "sync")...); err == nil {
		t.Fatalf("expected offline sync to fail")
	}
}

func TestSummaryRejectsDailyRange(t *testing.T) {
	if _, err := runCLI(t, offlineArgs(t, "summary", "--from", "2025-03-01", "--to", "2025-03-07")...); err == nil {
		t.Fatalf("expected from/to on a daily period to fail")
	}
}

func TestStatusOffline(t *testing.T) {
	out, err := runCLI(t, offlineArgs(t, "status")...)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !strings.Contains(out, "Health: skipped (offline)") || !strings.Contains(out, "schema v3") {
		t.Fatalf("unexpected status output:\n%s", out)
	}
}

func TestRDACommand(t *testing.T) {
	out, err := runCLI(t, "rda", "Vitamin A", "450", "mcg")
	if err != nil {
		t.Fatalf("rda: %v", err)
	}
	if !strings.Contains(out, "Vitamin A: 50.0% of 900 mcg (0.9 mg)") {
		t.Fatalf("unexpected rda output %q", out)
	}
	if _, err := runCLI(t, "rda", "Unobtainium", "1", "mg"); err == nil {
		t.Fatalf("expected unknown nutrient to fail")
	}
}

func TestMicrosOfflineJSON(t *testing.T) {
	out, err := runCLI(t, offlineArgs(t, "micros", "--json")...)
	if err != nil {
		t.Fatalf("micros: %v", err)
	}
	var got struct {
		Origin string           `json:"origin"`
		Items  []map[string]any `json:"items"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode micros json: %v\n%s", err, out)
	}
	if got.Origin != "demo" || len(got.Items) == 0 {
		t.Fatalf("expected demo micronutrients, got %+v", got)
	}
}

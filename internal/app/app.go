package app

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ahaar/ahaar-cli/internal/config"
	"github.com/ahaar/ahaar-cli/internal/db"
	"github.com/ahaar/ahaar-cli/internal/fixture"
	"github.com/ahaar/ahaar-cli/internal/model"
	"github.com/ahaar/ahaar-cli/internal/provider/ahaarapi"
	"github.com/ahaar/ahaar-cli/internal/service"
)

// Origin names the source that answered a load.
type Origin string

const (
	OriginLive  Origin = "live"
	OriginCache Origin = "cache"
	OriginDemo  Origin = "demo"
)

type Options struct {
	// Offline skips the API and reads only the cache and demo data.
	Offline    bool
	Logger     Logger
	Clock      service.Clock
	HTTPClient *http.Client
	OpID       string
}

// App wires the config, cache, API client and logger for one CLI invocation.
// The caller must call Close when done.
type App struct {
	cfg     *config.Config
	db      *sql.DB
	dbPath  string
	client  *ahaarapi.Client
	session ahaarapi.Session
	log     Logger
	clock   service.Clock
	offline bool
	opID    string
}

func New(cfg *config.Config, opts Options) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	timeout, err := cfg.TimeoutDuration()
	if err != nil {
		return nil, err
	}

	dbPath := strings.TrimSpace(cfg.DBPath)
	if dbPath == "" {
		dbPath, err = DefaultDBPath()
		if err != nil {
			return nil, err
		}
	}
	sqldb, err := db.Open(dbPath)
	if err != nil {
		return nil, err
	}
	if err := db.ApplyMigrations(sqldb); err != nil {
		_ = sqldb.Close()
		return nil, err
	}

	a := &App{
		cfg:     cfg,
		db:      sqldb,
		dbPath:  dbPath,
		session: ahaarapi.Session{UserID: cfg.UserID, Token: cfg.Token},
		log:     opts.Logger,
		clock:   opts.Clock,
		offline: opts.Offline,
		opID:    opts.OpID,
	}
	if a.log == nil {
		a.log = NopLogger{}
	}
	if a.clock == nil {
		a.clock = service.RealClock{}
	}
	if a.opID == "" {
		a.opID = uuid.NewString()
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	a.client = &ahaarapi.Client{BaseURL: cfg.API.BaseURL, HTTPClient: httpClient}
	a.log.Debug("app ready", "db", dbPath, "api", cfg.API.BaseURL, "offline", opts.Offline)
	return a, nil
}

func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

func (a *App) Now() time.Time { return a.clock.Now() }

func (a *App) DB() *sql.DB { return a.db }

func (a *App) DBPath() string { return a.dbPath }

func (a *App) Config() *config.Config { return a.cfg }

func (a *App) Targets() service.Targets {
	t := a.cfg.Targets
	return service.Targets{Calories: t.Calories, ProteinG: t.ProteinG, CarbsG: t.CarbsG, FatG: t.FatG}
}

type PeriodResult struct {
	Range     service.PeriodRange
	Totals    model.PeriodTotals
	Origin    Origin
	FetchedAt time.Time
	// LiveErr holds the API failure when a fallback source answered.
	LiveErr error
}

type MealsResult struct {
	Day       time.Time
	Meals     []model.Meal
	Origin    Origin
	FetchedAt time.Time
	LiveErr   error
}

// LoadPeriod answers from the API, then the cache, then the demo dataset.
func (a *App) LoadPeriod(ctx context.Context, r service.PeriodRange) (PeriodResult, error) {
	res, err := a.loadPeriod(ctx, r)
	if err != nil {
		return PeriodResult{}, err
	}
	var filled bool
	if res.Totals, filled = service.FillTotals(res.Totals); filled {
		a.log.Debug("recomputed empty totals from meals", "period", r.Label(), "meals", len(res.Totals.Meals), "origin", res.Origin)
	}
	a.recordSync(service.SyncLastOrigin, string(res.Origin))
	return res, nil
}

func (a *App) loadPeriod(ctx context.Context, r service.PeriodRange) (PeriodResult, error) {
	res := PeriodResult{Range: r}
	if !a.offline {
		totals, err := a.fetchPeriod(ctx, r)
		if err == nil {
			res.Totals, res.Origin, res.FetchedAt = totals, OriginLive, a.Now()
			return res, nil
		}
		res.LiveErr = err
		a.log.Warn("live nutrition fetch failed", "period", r.Label(), "error", err)
	}

	snap, ok, err := service.LoadSnapshot(a.db, a.cfg.UserID, r)
	if err != nil {
		return PeriodResult{}, err
	}
	if ok {
		a.log.Debug("serving cached snapshot", "period", r.Label(), "fetched_at", snap.FetchedAt)
		res.Totals, res.Origin, res.FetchedAt = snap.Totals, OriginCache, snap.FetchedAt
		return res, nil
	}

	if a.cfg.DemoFallback {
		totals, err := fixture.Period(r.Period)
		if err != nil {
			return PeriodResult{}, err
		}
		a.log.Info("serving demo data", "period", r.Period)
		res.Totals, res.Origin = totals, OriginDemo
		return res, nil
	}
	return PeriodResult{}, noDataError(r.Label(), res.LiveErr)
}

// LoadMeals answers the meal list for one day in the same source order as
// LoadPeriod.
func (a *App) LoadMeals(ctx context.Context, day time.Time) (MealsResult, error) {
	res := MealsResult{Day: day}
	label := day.Format(service.DateLayout)
	if !a.offline {
		meals, err := a.fetchMeals(ctx, day)
		if err == nil {
			res.Meals, res.Origin, res.FetchedAt = meals, OriginLive, a.Now()
			return res, nil
		}
		res.LiveErr = err
		a.log.Warn("live meals fetch failed", "date", label, "error", err)
	}

	cached, ok, err := service.CachedMeals(a.db, a.cfg.UserID, day)
	if err != nil {
		return MealsResult{}, err
	}
	if ok {
		a.log.Debug("serving cached meals", "date", label, "fetched_at", cached.FetchedAt)
		res.Meals, res.Origin, res.FetchedAt = cached.Meals, OriginCache, cached.FetchedAt
		return res, nil
	}

	if a.cfg.DemoFallback {
		meals, err := fixture.Meals()
		if err != nil {
			return MealsResult{}, err
		}
		res.Meals, res.Origin = meals, OriginDemo
		return res, nil
	}
	return MealsResult{}, noDataError(label, res.LiveErr)
}

// Sync fetches the period and, for daily periods, the day's meals from the
// API and caches both. It never falls back.
func (a *App) Sync(ctx context.Context, r service.PeriodRange) (PeriodResult, error) {
	if a.offline {
		return PeriodResult{}, fmt.Errorf("sync requires network access (remove --offline)")
	}
	totals, err := a.fetchPeriod(ctx, r)
	if err != nil {
		return PeriodResult{}, err
	}
	if r.Period == service.PeriodDaily {
		if _, err := a.fetchMeals(ctx, r.From); err != nil {
			return PeriodResult{}, err
		}
	}
	return PeriodResult{Range: r, Totals: totals, Origin: OriginLive, FetchedAt: a.Now()}, nil
}

func (a *App) fetchPeriod(ctx context.Context, r service.PeriodRange) (model.PeriodTotals, error) {
	totals, _, err := a.client.GetNutrition(ctx, a.session, ahaarapi.Range{Period: string(r.Period), Query: r.Query()})
	if err != nil {
		a.recordSync(service.SyncLastError, err.Error())
		return model.PeriodTotals{}, err
	}
	if err := service.SaveSnapshot(a.db, a.cfg.UserID, r, totals, a.Now()); err != nil {
		return model.PeriodTotals{}, err
	}
	a.recordSuccess()
	a.log.Debug("cached nutrition snapshot", "period", r.Label(), "meals", len(totals.Meals))
	return totals, nil
}

func (a *App) fetchMeals(ctx context.Context, day time.Time) ([]model.Meal, error) {
	meals, _, err := a.client.GetMeals(ctx, a.session, day.Format(service.DateLayout))
	if err != nil {
		a.recordSync(service.SyncLastError, err.Error())
		return nil, err
	}
	if err := service.SaveMeals(a.db, a.cfg.UserID, day, meals, a.Now()); err != nil {
		return nil, err
	}
	a.recordSuccess()
	return meals, nil
}

func (a *App) recordSuccess() {
	a.recordSync(service.SyncLastSuccess, a.Now().UTC().Format(time.RFC3339))
	a.recordSync(service.SyncLastUser, a.cfg.UserID)
}

func (a *App) recordSync(key, value string) {
	if err := service.SetSyncState(a.db, key, value); err != nil {
		a.log.Warn("record sync state failed", "key", key, "error", err)
	}
}

func noDataError(label string, liveErr error) error {
	if liveErr != nil {
		return fmt.Errorf("no data for %s (enable demo_fallback or run sync): %w", label, liveErr)
	}
	return fmt.Errorf("no cached data for %s (enable demo_fallback or run sync)", label)
}

type StatusReport struct {
	OpID          string                    `json:"op_id"`
	APIBaseURL    string                    `json:"api_base_url"`
	UserID        string                    `json:"user_id"`
	TokenSet      bool                      `json:"token_set"`
	Offline       bool                      `json:"offline"`
	Health        *ahaarapi.Health          `json:"health,omitempty"`
	HealthError   string                    `json:"health_error,omitempty"`
	DBPath        string                    `json:"db_path"`
	SchemaVersion int                       `json:"schema_version"`
	DemoFallback  bool                      `json:"demo_fallback"`
	SyncState     []service.SyncEntry       `json:"sync_state"`
	Snapshots     []service.SnapshotSummary `json:"snapshots"`
}

func (a *App) Status(ctx context.Context) (StatusReport, error) {
	out := StatusReport{
		OpID:         a.opID,
		APIBaseURL:   a.cfg.API.BaseURL,
		UserID:       a.cfg.UserID,
		TokenSet:     a.session.Token != "",
		Offline:      a.offline,
		DBPath:       a.dbPath,
		DemoFallback: a.cfg.DemoFallback,
	}
	if !a.offline {
		h, err := a.client.CheckHealth(ctx)
		if err != nil {
			out.HealthError = err.Error()
		} else {
			out.Health = &h
		}
	}
	var err error
	if out.SchemaVersion, err = db.SchemaVersion(a.db); err != nil {
		return StatusReport{}, err
	}
	if out.SyncState, err = service.ListSyncState(a.db); err != nil {
		return StatusReport{}, err
	}
	if out.Snapshots, err = service.ListSnapshots(a.db, a.cfg.UserID); err != nil {
		return StatusReport{}, err
	}
	return out, nil
}

package service

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ahaar/ahaar-cli/internal/model"
)

type Snapshot struct {
	UserID    string             `json:"user_id"`
	Range     PeriodRange        `json:"range"`
	Totals    model.PeriodTotals `json:"totals"`
	FetchedAt time.Time          `json:"fetched_at"`
}

func SaveSnapshot(db *sql.DB, userID string, r PeriodRange, totals model.PeriodTotals, fetchedAt time.Time) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return fmt.Errorf("user id is required")
	}
	payload, err := json.Marshal(totals)
	if err != nil {
		return fmt.Errorf("marshal period snapshot: %w", err)
	}
	_, err = db.Exec(`
INSERT INTO period_snapshots(user_id, period, from_date, to_date, payload_json, fetched_at)
VALUES(?, ?, ?, ?, ?, ?)
ON CONFLICT(user_id, period, from_date, to_date) DO UPDATE SET
  payload_json=excluded.payload_json,
  fetched_at=excluded.fetched_at
`, userID, string(r.Period), r.From.Format(DateLayout), r.To.Format(DateLayout), string(payload), fetchedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("save period snapshot %s: %w", r.Label(), err)
	}
	return nil
}

// LoadSnapshot returns the cached totals for exactly this range.
func LoadSnapshot(db *sql.DB, userID string, r PeriodRange) (Snapshot, bool, error) {
	var payload, fetchedAt string
	err := db.QueryRow(`
SELECT payload_json, fetched_at FROM period_snapshots
WHERE user_id = ? AND period = ? AND from_date = ? AND to_date = ?
`, strings.TrimSpace(userID), string(r.Period), r.From.Format(DateLayout), r.To.Format(DateLayout)).Scan(&payload, &fetchedAt)
	if err == sql.ErrNoRows {
		return Snapshot{}, false, nil
	}
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("load period snapshot %s: %w", r.Label(), err)
	}
	out := Snapshot{UserID: userID, Range: r}
	if err := json.Unmarshal([]byte(payload), &out.Totals); err != nil {
		return Snapshot{}, false, fmt.Errorf("decode period snapshot %s: %w", r.Label(), err)
	}
	out.FetchedAt, err = time.Parse(time.RFC3339, fetchedAt)
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("parse snapshot fetched_at: %w", err)
	}
	return out, true, nil
}

type SnapshotSummary struct {
	Period    Period    `json:"period"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	FetchedAt time.Time `json:"fetched_at"`
}

func ListSnapshots(db *sql.DB, userID string) ([]SnapshotSummary, error) {
	rows, err := db.Query(`
SELECT period, from_date, to_date, fetched_at FROM period_snapshots
WHERE user_id = ?
ORDER BY from_date DESC, period ASC
`, strings.TrimSpace(userID))
	if err != nil {
		return nil, fmt.Errorf("list period snapshots: %w", err)
	}
	defer rows.Close()
	out := []SnapshotSummary{}
	for rows.Next() {
		var s SnapshotSummary
		var period, fetchedAt string
		if err := rows.Scan(&period, &s.From, &s.To, &fetchedAt); err != nil {
			return nil, fmt.Errorf("scan period snapshot: %w", err)
		}
		s.Period = Period(period)
		if s.FetchedAt, err = time.Parse(time.RFC3339, fetchedAt); err != nil {
			return nil, fmt.Errorf("parse snapshot fetched_at: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate period snapshots: %w", err)
	}
	return out, nil
}

// SaveMeals replaces the cached meals for one user and day, keeping the
// server's order.
func SaveMeals(db *sql.DB, userID string, day time.Time, meals []model.Meal, fetchedAt time.Time) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return fmt.Errorf("user id is required")
	}
	date := day.Format(DateLayout)
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin save meals tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM cached_meals WHERE user_id = ? AND meal_date = ?`, userID, date); err != nil {
		return fmt.Errorf("clear cached meals for %s: %w", date, err)
	}
	stamp := fetchedAt.UTC().Format(time.RFC3339)
	for i, m := range meals {
		payload, err := json.Marshal(m)
		if err != nil {
			return fmt.Errorf("marshal meal %d: %w", i, err)
		}
		if _, err := tx.Exec(`
INSERT INTO cached_meals(user_id, meal_date, position, id, payload_json, fetched_at)
VALUES(?, ?, ?, ?, ?, ?)
`, userID, date, i, m.ID, string(payload), stamp); err != nil {
			return fmt.Errorf("cache meal %d for %s: %w", i, date, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit cached meals: %w", err)
	}
	return nil
}

// CachedDay is one day of cached meals. FetchedAt is the latest fetch time of
// its rows.
type CachedDay struct {
	Meals     []model.Meal
	FetchedAt time.Time
}

// CachedMeals returns the cached meals for a day in server order. The bool is
// false when nothing is cached for the day.
func CachedMeals(db *sql.DB, userID string, day time.Time) (CachedDay, bool, error) {
	rows, err := db.Query(`
SELECT payload_json, fetched_at FROM cached_meals
WHERE user_id = ? AND meal_date = ?
ORDER BY position ASC
`, strings.TrimSpace(userID), day.Format(DateLayout))
	if err != nil {
		return CachedDay{}, false, fmt.Errorf("query cached meals: %w", err)
	}
	defer rows.Close()
	out := CachedDay{Meals: []model.Meal{}}
	for rows.Next() {
		var payload, fetchedAt string
		if err := rows.Scan(&payload, &fetchedAt); err != nil {
			return CachedDay{}, false, fmt.Errorf("scan cached meal: %w", err)
		}
		var m model.Meal
		if err := json.Unmarshal([]byte(payload), &m); err != nil {
			return CachedDay{}, false, fmt.Errorf("decode cached meal: %w", err)
		}
		stamp, err := time.Parse(time.RFC3339, fetchedAt)
		if err != nil {
			return CachedDay{}, false, fmt.Errorf("parse cached meal fetched_at: %w", err)
		}
		if stamp.After(out.FetchedAt) {
			out.FetchedAt = stamp
		}
		out.Meals = append(out.Meals, m)
	}
	if err := rows.Err(); err != nil {
		return CachedDay{}, false, fmt.Errorf("iterate cached meals: %w", err)
	}
	return out, len(out.Meals) > 0, nil
}

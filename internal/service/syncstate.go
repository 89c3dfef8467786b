package service

import (
	"database/sql"
	"fmt"
	"time"
)

// Sync state keys written by the sync and load paths.
const (
	SyncLastSuccess = "last_success"
	SyncLastError   = "last_error"
	SyncLastOrigin  = "last_origin"
	SyncLastUser    = "last_user"
)

type SyncEntry struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

func SetSyncState(db *sql.DB, key, value string) error {
	key = normalizeName(key)
	if key == "" {
		return fmt.Errorf("sync state key is required")
	}
	_, err := db.Exec(`
INSERT INTO sync_state(key, value, updated_at)
VALUES(?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at
`, key, value)
	if err != nil {
		return fmt.Errorf("set sync state %q: %w", key, err)
	}
	return nil
}

func GetSyncState(db *sql.DB, key string) (string, bool, error) {
	key = normalizeName(key)
	if key == "" {
		return "", false, fmt.Errorf("sync state key is required")
	}
	var value string
	err := db.QueryRow(`SELECT value FROM sync_state WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get sync state %q: %w", key, err)
	}
	return value, true, nil
}

func ListSyncState(db *sql.DB) ([]SyncEntry, error) {
	rows, err := db.Query(`SELECT key, value, updated_at FROM sync_state ORDER BY key ASC`)
	if err != nil {
		return nil, fmt.Errorf("list sync state: %w", err)
	}
	defer rows.Close()
	out := []SyncEntry{}
	for rows.Next() {
		var e SyncEntry
		if err := rows.Scan(&e.Key, &e.Value, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan sync state: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sync state: %w", err)
	}
	return out, nil
}

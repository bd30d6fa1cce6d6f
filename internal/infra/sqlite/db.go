// Package sqlite provides SQLite-based persistent storage for Diabetree.
// Uses WAL mode for concurrent reads and crash-safe writes. It implements
// the domain.ReadingStore and domain.StateStore collaborator interfaces.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver (no CGO required)
)

// DB wraps a SQLite connection with WAL mode and migrations.
type DB struct {
	db *sql.DB
}

// Open creates or opens the SQLite database at dir/state.db.
// Enables WAL mode, foreign keys, and 5-second busy timeout.
func Open(dir string) (*DB, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	dbPath := filepath.Join(dir, "state.db")
	dsn := dbPath + "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	// Connection pool settings for SQLite
	db.SetMaxOpenConns(1) // SQLite is single-writer
	db.SetMaxIdleConns(1)

	d := &DB{db: db}
	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return d, nil
}

// Close cleanly shuts down the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// Ping checks database connectivity.
func (d *DB) Ping() error {
	return d.db.Ping()
}

// migrate runs idempotent schema migrations.
func (d *DB) migrate() error {
	migrations := []string{
		// Glucose readings — append-only measurement log
		`CREATE TABLE IF NOT EXISTS readings (
			id               TEXT PRIMARY KEY,
			owner            TEXT NOT NULL,
			value            REAL NOT NULL,
			timestamp        INTEGER NOT NULL,
			meal_context     TEXT NOT NULL DEFAULT '',
			activity_context TEXT NOT NULL DEFAULT '',
			notes            TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_readings_owner_ts ON readings(owner, timestamp)`,

		// Key-value store for progression state (stage, balance, mission state)
		`CREATE TABLE IF NOT EXISTS progress (
			owner TEXT NOT NULL,
			key   TEXT NOT NULL,
			value TEXT NOT NULL,
			PRIMARY KEY (owner, key)
		)`,

		// Unlocked achievements — grows monotonically
		`CREATE TABLE IF NOT EXISTS achievements (
			owner       TEXT NOT NULL,
			id          TEXT NOT NULL,
			unlocked_at INTEGER NOT NULL,
			PRIMARY KEY (owner, id)
		)`,

		// Rewarded mission instances — (mission, date) composite keys that
		// have already paid out
		`CREATE TABLE IF NOT EXISTS rewarded_missions (
			owner       TEXT NOT NULL,
			mission_id  TEXT NOT NULL,
			day         TEXT NOT NULL,
			rewarded_at INTEGER NOT NULL,
			PRIMARY KEY (owner, mission_id, day)
		)`,

		// Owned collectible trees
		`CREATE TABLE IF NOT EXISTS collectibles (
			owner       TEXT NOT NULL,
			id          TEXT NOT NULL,
			acquired_at INTEGER NOT NULL,
			PRIMARY KEY (owner, id)
		)`,

		// Notification log drained by the presentation layer
		`CREATE TABLE IF NOT EXISTS notifications (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			owner      TEXT NOT NULL,
			type       TEXT NOT NULL,
			title      TEXT NOT NULL,
			body       TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			shown      BOOLEAN DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_notif_owner_created ON notifications(owner, created_at)`,
	}

	for _, m := range migrations {
		if _, err := d.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}

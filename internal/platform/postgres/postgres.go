package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // database/sql driver
)

// Open connects to PostgreSQL and verifies the connection.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// Migrate applies the schema. Idempotent; run at startup.
func Migrate(ctx context.Context, db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS recycling_events (
			id           TEXT PRIMARY KEY,
			phone_number TEXT NOT NULL,
			user_name    TEXT NOT NULL DEFAULT '',
			bottles      INTEGER NOT NULL DEFAULT 0,
			cups         INTEGER NOT NULL DEFAULT 0,
			points       INTEGER NOT NULL DEFAULT 0,
			machine_id   TEXT NOT NULL DEFAULT '',
			recorded_at  TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_recycling_events_phone ON recycling_events (phone_number)`,
		`CREATE TABLE IF NOT EXISTS user_profiles (
			phone_number TEXT PRIMARY KEY,
			user_name    TEXT NOT NULL,
			age          INTEGER,
			gender       TEXT NOT NULL DEFAULT '',
			national_id  TEXT NOT NULL DEFAULT '',
			profile_pic  TEXT NOT NULL DEFAULT '',
			created_at   TIMESTAMPTZ NOT NULL,
			updated_at   TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS bin_full_notifications (
			id          TEXT PRIMARY KEY,
			bin_type    TEXT NOT NULL,
			machine_id  TEXT NOT NULL DEFAULT '',
			occurred_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_bin_full_occurred ON bin_full_notifications (occurred_at DESC)`,
		`CREATE TABLE IF NOT EXISTS feedbacks (
			id           TEXT PRIMARY KEY,
			phone_number TEXT NOT NULL,
			feedback     TEXT NOT NULL,
			created_at   TIMESTAMPTZ NOT NULL
		)`,
	}
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

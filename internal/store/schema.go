package store

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect"
)

// Table names.
const (
	tableAttemptStats   = "attempt_stats"
	tableMistakeCards   = "mistake_cards"
	tableReviewSessions = "review_sessions"
	tableReviewEntries  = "review_entries"
	tablePlanEchoes     = "plan_echoes"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS attempt_stats (
		item_id          TEXT PRIMARY KEY,
		attempts         INTEGER NOT NULL DEFAULT 0,
		correct          INTEGER NOT NULL DEFAULT 0,
		last_answered_at TEXT,
		interval_days    INTEGER NOT NULL DEFAULT 0,
		ease             REAL NOT NULL DEFAULT 0,
		due              TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS mistake_cards (
		id                 TEXT PRIMARY KEY,
		item_id            TEXT NOT NULL UNIQUE,
		status             TEXT NOT NULL,
		objective_ids      TEXT NOT NULL DEFAULT '[]',
		misconception_tags TEXT NOT NULL DEFAULT '[]',
		tags               TEXT NOT NULL DEFAULT '[]',
		created_at         TEXT NOT NULL,
		due                TEXT NOT NULL,
		interval_days      INTEGER NOT NULL,
		ease               REAL NOT NULL,
		lapses             INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS review_sessions (
		id         TEXT PRIMARY KEY,
		started_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS review_entries (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL REFERENCES review_sessions(id) ON DELETE CASCADE,
		card_id    TEXT NOT NULL DEFAULT '',
		item_id    TEXT NOT NULL,
		outcome    TEXT NOT NULL,
		at         TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS review_entries_session ON review_entries(session_id)`,
	`CREATE TABLE IF NOT EXISTS plan_echoes (
		id         TEXT PRIMARY KEY,
		kind       TEXT NOT NULL,
		plan_id    TEXT NOT NULL,
		payload    TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS plan_echoes_kind_created ON plan_echoes(kind, created_at)`,
}

func migrate(ctx context.Context, drv dialect.ExecQuerier) error {
	for _, stmt := range schema {
		if err := drv.Exec(ctx, stmt, []any{}, nil); err != nil {
			return fmt.Errorf("exec %q: %w", firstLine(stmt), err)
		}
	}
	return nil
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}
	return s
}

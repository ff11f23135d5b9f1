package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations. Statements are idempotent and the
// full list re-runs on every open; ALTER TABLE duplicates are tolerated.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS clients (
		id                TEXT PRIMARY KEY,
		code              TEXT NOT NULL UNIQUE,
		name              TEXT NOT NULL,
		vat_quarter_group TEXT
		                  CHECK(vat_quarter_group IN ('1_4_7_10','2_5_8_11','3_6_9_12')),
		year_end_month    INTEGER NOT NULL DEFAULT 0,
		year_end_day      INTEGER NOT NULL DEFAULT 0,
		registry_ref      TEXT NOT NULL DEFAULT '',
		active            INTEGER NOT NULL DEFAULT 1,
		created_at        TEXT NOT NULL,
		updated_at        TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS reviewers (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		role       TEXT NOT NULL DEFAULT 'staff'
		           CHECK(role IN ('staff','manager','partner')),
		active     INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS obligations (
		id                   TEXT PRIMARY KEY,
		client_id            TEXT NOT NULL REFERENCES clients(id) ON DELETE CASCADE,
		kind                 TEXT NOT NULL
		                     CHECK(kind IN ('vat_return','annual_accounts','corporation_tax','confirmation_statement')),
		period_start         TEXT NOT NULL,
		period_end           TEXT NOT NULL,
		due_date             TEXT NOT NULL,
		due_source           TEXT NOT NULL DEFAULT 'auto'
		                     CHECK(due_source IN ('auto','manual')),
		due_updated_by       TEXT NOT NULL DEFAULT '',
		due_updated_at       TEXT,
		current_stage        TEXT NOT NULL,
		assigned_reviewer_id TEXT REFERENCES reviewers(id),
		version              INTEGER NOT NULL DEFAULT 1,
		created_at           TEXT NOT NULL,
		updated_at           TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_obligations_client_kind ON obligations(client_id, kind)`,
	`CREATE INDEX IF NOT EXISTS idx_obligations_stage ON obligations(current_stage)`,
	`CREATE INDEX IF NOT EXISTS idx_obligations_period_end ON obligations(period_end)`,

	`CREATE TABLE IF NOT EXISTS obligation_milestones (
		obligation_id TEXT NOT NULL REFERENCES obligations(id) ON DELETE CASCADE,
		field         TEXT NOT NULL,
		reached_at    TEXT NOT NULL,
		actor_id      TEXT NOT NULL,
		actor_name    TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (obligation_id, field)
	)`,

	`CREATE TABLE IF NOT EXISTS history_entries (
		id            TEXT PRIMARY KEY,
		obligation_id TEXT NOT NULL REFERENCES obligations(id) ON DELETE CASCADE,
		from_stage    TEXT,
		to_stage      TEXT NOT NULL,
		changed_at    TEXT NOT NULL,
		actor_id      TEXT NOT NULL,
		actor_name    TEXT NOT NULL DEFAULT '',
		notes         TEXT NOT NULL DEFAULT ''
	)`,

	`CREATE INDEX IF NOT EXISTS idx_history_obligation ON history_entries(obligation_id, changed_at)`,
}

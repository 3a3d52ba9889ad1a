package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Every column is TEXT NOT NULL DEFAULT '' so rows scan straight into
// strings; typed parsing happens in the repositories.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		user_email TEXT PRIMARY KEY,
		name       TEXT NOT NULL DEFAULT '',
		role       TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS tasks (
		task_id            TEXT PRIMARY KEY,
		title              TEXT NOT NULL DEFAULT '',
		description        TEXT NOT NULL DEFAULT '',
		assignee_email     TEXT NOT NULL DEFAULT '',
		created_at         TEXT NOT NULL DEFAULT '',
		due_at             TEXT NOT NULL DEFAULT '',
		status             TEXT NOT NULL DEFAULT '',
		total_time_seconds TEXT NOT NULL DEFAULT '',
		created_by         TEXT NOT NULL DEFAULT '',
		closed_by          TEXT NOT NULL DEFAULT '',
		closed_at          TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS sessions (
		session_id       TEXT PRIMARY KEY,
		task_id          TEXT NOT NULL DEFAULT '',
		user_email       TEXT NOT NULL DEFAULT '',
		start_at         TEXT NOT NULL DEFAULT '',
		pause_at         TEXT NOT NULL DEFAULT '',
		resume_at        TEXT NOT NULL DEFAULT '',
		end_at           TEXT NOT NULL DEFAULT '',
		duration_seconds TEXT NOT NULL DEFAULT '',
		kind             TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS logins (
		login_id             TEXT PRIMARY KEY,
		user_email           TEXT NOT NULL DEFAULT '',
		login_at             TEXT NOT NULL DEFAULT '',
		logout_at            TEXT NOT NULL DEFAULT '',
		total_logged_seconds TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_assignee ON tasks(assignee_email)`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_task ON sessions(task_id)`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_email)`,
	`CREATE INDEX IF NOT EXISTS idx_logins_user ON logins(user_email)`,

	// Auto-expired global pauses are flagged separately from manual ones.
	`ALTER TABLE sessions ADD COLUMN automatic TEXT NOT NULL DEFAULT ''`,
}

// Migrate runs all schema migrations.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate "duplicate column name" errors from ALTER TABLE
			// since the migration system re-runs all statements.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

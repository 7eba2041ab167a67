package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// schema is portable across PostgreSQL and SQLite.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS students (
		padron BIGINT PRIMARY KEY,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS curriculum_enrollments (
		padron BIGINT NOT NULL,
		curriculum_id INTEGER NOT NULL,
		created_at TIMESTAMP NOT NULL,
		PRIMARY KEY (padron, curriculum_id)
	)`,
	`CREATE TABLE IF NOT EXISTS course_enrollments (
		padron BIGINT NOT NULL,
		course_code TEXT NOT NULL,
		enrolled_at TIMESTAMP NOT NULL,
		PRIMARY KEY (padron, course_code)
	)`,
	`CREATE TABLE IF NOT EXISTS course_approvals (
		padron BIGINT NOT NULL,
		course_code TEXT NOT NULL,
		approved_at TIMESTAMP NOT NULL,
		PRIMARY KEY (padron, course_code)
	)`,
}

// EnsureSchema creates the academic record tables when missing.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

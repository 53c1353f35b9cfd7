package repositories

import (
	"context"
	"database/sql"
	"fmt"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS inspection_missions (
		id UUID PRIMARY KEY,
		unit_id TEXT NOT NULL,
		unit_type TEXT NOT NULL,
		trigger_kind TEXT NOT NULL,
		target_area TEXT NOT NULL,
		priority TEXT NOT NULL,
		status TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		started_at TIMESTAMPTZ,
		completed_at TIMESTAMPTZ,
		findings TEXT[] NOT NULL DEFAULT '{}',
		abort_reason TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS inspection_missions_completed_idx
		ON inspection_missions (completed_at DESC)`,
	`CREATE TABLE IF NOT EXISTS telemetry_updates (
		id UUID PRIMARY KEY,
		mission_id UUID NOT NULL,
		source TEXT NOT NULL,
		recorded_at TIMESTAMPTZ NOT NULL,
		structural_issues INTEGER NOT NULL,
		severity TEXT NOT NULL,
		affected_area TEXT NOT NULL,
		safety_factor_adjustment DOUBLE PRECISION NOT NULL,
		applied BOOLEAN NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS telemetry_updates_recorded_idx
		ON telemetry_updates (recorded_at DESC)`,
}

// InitializeSchema створює таблиці журналу аудиту, якщо їх немає
func InitializeSchema(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement %d: %w", i, err)
		}
	}
	return nil
}

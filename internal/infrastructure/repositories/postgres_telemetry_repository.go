package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"dam-inspection-system/internal/domain"
)

// PostgresTelemetryRepository зберігає оновлення телеметрії у PostgreSQL
type PostgresTelemetryRepository struct {
	db *sql.DB
}

// NewPostgresTelemetryRepository створює новий екземпляр PostgresTelemetryRepository
func NewPostgresTelemetryRepository(db *sql.DB) *PostgresTelemetryRepository {
	return &PostgresTelemetryRepository{
		db: db,
	}
}

// RecordTelemetry дописує оновлення в журнал
func (r *PostgresTelemetryRepository) RecordTelemetry(ctx context.Context, update *domain.TelemetryUpdate) error {
	query := `
		INSERT INTO telemetry_updates (
			id, mission_id, source, recorded_at, structural_issues, severity,
			affected_area, safety_factor_adjustment, applied
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		update.ID,
		update.MissionID,
		update.Source.String(),
		update.Timestamp,
		update.Findings.StructuralIssues,
		update.Findings.Severity.String(),
		update.Findings.AffectedArea,
		update.Findings.SafetyFactorAdjustment,
		update.Applied,
	)
	if err != nil {
		return fmt.Errorf("failed to record telemetry update: %w", err)
	}

	return nil
}

// ListTelemetry повертає останні limit оновлень, новіші першими
func (r *PostgresTelemetryRepository) ListTelemetry(ctx context.Context, limit int) ([]*domain.TelemetryUpdate, error) {
	query := `
		SELECT id, mission_id, source, recorded_at, structural_issues, severity,
			affected_area, safety_factor_adjustment, applied
		FROM telemetry_updates
		ORDER BY recorded_at DESC
		LIMIT $1
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query telemetry updates: %w", err)
	}
	defer rows.Close()

	var updates []*domain.TelemetryUpdate
	for rows.Next() {
		var (
			u                domain.TelemetryUpdate
			source, severity string
		)
		if err := rows.Scan(
			&u.ID,
			&u.MissionID,
			&source,
			&u.Timestamp,
			&u.Findings.StructuralIssues,
			&severity,
			&u.Findings.AffectedArea,
			&u.Findings.SafetyFactorAdjustment,
			&u.Applied,
		); err != nil {
			return nil, fmt.Errorf("failed to scan telemetry update: %w", err)
		}

		if u.Source, err = domain.ParseUnitType(source); err != nil {
			return nil, err
		}
		if u.Findings.Severity, err = domain.ParseSeverity(severity); err != nil {
			return nil, err
		}

		updates = append(updates, &u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating telemetry updates: %w", err)
	}

	return updates, nil
}

// PostgresAuditRepository об'єднує обидві таблиці журналу
type PostgresAuditRepository struct {
	*PostgresMissionRepository
	*PostgresTelemetryRepository
}

// NewPostgresAuditRepository створює новий екземпляр PostgresAuditRepository
func NewPostgresAuditRepository(db *sql.DB) *PostgresAuditRepository {
	return &PostgresAuditRepository{
		PostgresMissionRepository:   NewPostgresMissionRepository(db),
		PostgresTelemetryRepository: NewPostgresTelemetryRepository(db),
	}
}

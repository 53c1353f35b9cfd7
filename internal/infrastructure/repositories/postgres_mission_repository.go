package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"dam-inspection-system/internal/domain"
)

// PostgresMissionRepository зберігає завершені місії у PostgreSQL
type PostgresMissionRepository struct {
	db *sql.DB
}

// NewPostgresMissionRepository створює новий екземпляр PostgresMissionRepository
func NewPostgresMissionRepository(db *sql.DB) *PostgresMissionRepository {
	return &PostgresMissionRepository{
		db: db,
	}
}

// RecordMission дописує місію в журнал
func (r *PostgresMissionRepository) RecordMission(ctx context.Context, mission *domain.InspectionMission) error {
	query := `
		INSERT INTO inspection_missions (
			id, unit_id, unit_type, trigger_kind, target_area, priority, status,
			created_at, started_at, completed_at, findings, abort_reason
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	findings := mission.Findings
	if findings == nil {
		findings = []string{}
	}

	_, err := r.db.ExecContext(
		ctx,
		query,
		mission.ID,
		mission.UnitID,
		mission.UnitType.String(),
		mission.Trigger.String(),
		mission.TargetArea,
		mission.Priority.String(),
		mission.Status.String(),
		mission.CreatedAt,
		nullTime(mission.StartedAt),
		nullTime(mission.CompletedAt),
		pq.Array(findings),
		mission.AbortReason,
	)
	if err != nil {
		return fmt.Errorf("failed to record mission: %w", err)
	}

	return nil
}

// ListMissions повертає останні limit місій, новіші першими
func (r *PostgresMissionRepository) ListMissions(ctx context.Context, limit int) ([]*domain.InspectionMission, error) {
	query := `
		SELECT id, unit_id, unit_type, trigger_kind, target_area, priority, status,
			created_at, started_at, completed_at, findings, abort_reason
		FROM inspection_missions
		ORDER BY completed_at DESC
		LIMIT $1
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query missions: %w", err)
	}
	defer rows.Close()

	var missions []*domain.InspectionMission
	for rows.Next() {
		var (
			m                                   domain.InspectionMission
			unitType, trigger, priority, status string
			startedAt, completedAt              sql.NullTime
		)
		if err := rows.Scan(
			&m.ID,
			&m.UnitID,
			&unitType,
			&trigger,
			&m.TargetArea,
			&priority,
			&status,
			&m.CreatedAt,
			&startedAt,
			&completedAt,
			pq.Array(&m.Findings),
			&m.AbortReason,
		); err != nil {
			return nil, fmt.Errorf("failed to scan mission: %w", err)
		}

		if m.UnitType, err = domain.ParseUnitType(unitType); err != nil {
			return nil, err
		}
		if m.Trigger, err = domain.ParseTriggerKind(trigger); err != nil {
			return nil, err
		}
		if m.Priority, err = domain.ParsePriority(priority); err != nil {
			return nil, err
		}
		if m.Status, err = domain.ParseMissionStatus(status); err != nil {
			return nil, err
		}
		m.StartedAt = timePtr(startedAt)
		m.CompletedAt = timePtr(completedAt)

		missions = append(missions, &m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating missions: %w", err)
	}

	return missions, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

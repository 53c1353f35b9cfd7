package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"dam-inspection-system/internal/domain"
	"dam-inspection-system/internal/ports"
)

// DefaultHistoryLimit кількість місій в історії за замовчуванням
const DefaultHistoryLimit = 50

// MissionTracker веде місії від in-progress до completed/aborted і
// повертає пристрої до флоту
type MissionTracker struct {
	fleet    *FleetRegistry
	missions *MissionLog
	audit    ports.AuditRecorder
	metrics  ports.Metrics
	now      func() time.Time
	log      zerolog.Logger
}

// NewMissionTracker створює новий екземпляр MissionTracker
func NewMissionTracker(
	fleet *FleetRegistry,
	missions *MissionLog,
	audit ports.AuditRecorder,
	metrics ports.Metrics,
	log zerolog.Logger,
) *MissionTracker {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	return &MissionTracker{
		fleet:    fleet,
		missions: missions,
		audit:    audit,
		metrics:  metrics,
		now:      time.Now,
		log:      log.With().Str("component", "mission_tracker").Logger(),
	}
}

// BeginInspection фіксує, що пристрій дістався цілі і почав огляд
func (t *MissionTracker) BeginInspection(ctx context.Context, missionID uuid.UUID) (domain.RoboticUnit, error) {
	mission, err := t.missions.Get(missionID)
	if err != nil {
		return domain.RoboticUnit{}, err
	}
	if mission.Status != domain.MissionStatusInProgress {
		return domain.RoboticUnit{}, fmt.Errorf("%w: mission %s is %s", domain.ErrInvalidTransition, missionID, mission.Status)
	}

	unit, err := t.fleet.Transition(mission.UnitID, domain.UnitStatusDeployed, domain.UnitStatusInspecting)
	if err != nil {
		return domain.RoboticUnit{}, err
	}

	t.log.Info().
		Str("mission_id", missionID.String()).
		Str("unit_id", unit.ID).
		Msg("inspection started")

	return unit, nil
}

// Complete завершує місію зі знахідками
func (t *MissionTracker) Complete(ctx context.Context, missionID uuid.UUID, findings []string) (domain.InspectionMission, error) {
	return t.finish(ctx, missionID, domain.MissionStatusCompleted, findings, "")
}

// Abort перериває місію. Пристрій все одно повертається в idle.
func (t *MissionTracker) Abort(ctx context.Context, missionID uuid.UUID, reason string) (domain.InspectionMission, error) {
	return t.finish(ctx, missionID, domain.MissionStatusAborted, nil, reason)
}

// Get повертає місію за ID
func (t *MissionTracker) Get(missionID uuid.UUID) (domain.InspectionMission, error) {
	return t.missions.Get(missionID)
}

// History повертає останні місії
func (t *MissionTracker) History(limit int) []domain.InspectionMission {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return t.missions.History(limit)
}

// Active повертає незавершені місії
func (t *MissionTracker) Active() []domain.InspectionMission {
	return t.missions.Open()
}

// HasOpenMission повідомляє, чи за пристроєм закріплена незавершена місія
func (t *MissionTracker) HasOpenMission(unitID string) bool {
	_, open := t.fleet.OpenMission(unitID)
	return open
}

// SetUnitStatus ручна зміна статусу оператором. Переходи в місію і з неї
// керуються диспетчером і трекером, тож тут дозволено лише зарядку,
// позначення несправності та повернення з fault. Реєстр відхиляє
// fault -> idle, поки за пристроєм закріплена незавершена місія.
func (t *MissionTracker) SetUnitStatus(ctx context.Context, unitID string, from, to domain.UnitStatus) (domain.RoboticUnit, error) {
	if to.IsBusy() || (from.IsBusy() && to != domain.UnitStatusFault) {
		return domain.RoboticUnit{}, fmt.Errorf("%w: %s -> %s is controlled by missions", domain.ErrInvalidTransition, from, to)
	}

	unit, err := t.fleet.Transition(unitID, from, to)
	if err != nil {
		return domain.RoboticUnit{}, err
	}

	t.log.Info().
		Str("unit_id", unitID).
		Stringer("from", from).
		Stringer("to", to).
		Msg("unit status set by operator")

	return unit, nil
}

// FleetStatus зведення флоту разом з кількістю активних місій
func (t *MissionTracker) FleetStatus() domain.FleetStatus {
	status := t.fleet.Status()
	status.ActiveMissions = len(t.missions.Open())
	return status
}

func (t *MissionTracker) finish(
	ctx context.Context,
	missionID uuid.UUID,
	status domain.MissionStatus,
	findings []string,
	reason string,
) (domain.InspectionMission, error) {
	now := t.now()

	// Finish є єдиною точкою переходу, тож напрацювання нараховується рівно один раз
	mission, err := t.missions.Finish(missionID, status, now, findings, reason)
	if err != nil {
		return domain.InspectionMission{}, err
	}

	var operated time.Duration
	if mission.StartedAt != nil {
		operated = now.Sub(*mission.StartedAt)
	}

	unit, err := t.fleet.Release(mission.UnitID, mission.ID, now, operated)
	if err != nil {
		return mission, fmt.Errorf("release unit %s: %w", mission.UnitID, err)
	}

	t.metrics.MissionFinished(status)
	t.log.Info().
		Str("mission_id", missionID.String()).
		Str("unit_id", unit.ID).
		Stringer("status", status).
		Dur("duration", operated).
		Int("findings", len(mission.Findings)).
		Str("reason", reason).
		Msg("mission finished")

	if t.audit != nil {
		if err := t.audit.RecordMission(ctx, &mission); err != nil {
			t.metrics.AuditFailure("mission")
			t.log.Error().Err(err).Str("mission_id", missionID.String()).Msg("failed to record mission")
		}
	}

	return mission, nil
}

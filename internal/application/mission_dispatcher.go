package application

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"dam-inspection-system/internal/domain"
	"dam-inspection-system/internal/ports"
)

// DefaultMinBatteryLevel мінімальний заряд для виходу на місію, %
const DefaultMinBatteryLevel = 20.0

// seepageHighDelta зміна фільтрації, після якої місія отримує високий пріоритет, л/с
const seepageHighDelta = 10.0

// MissionDispatcher обирає вільний придатний пристрій та створює місію
type MissionDispatcher struct {
	fleet      *FleetRegistry
	missions   *MissionLog
	metrics    ports.Metrics
	minBattery float64
	now        func() time.Time
	log        zerolog.Logger
}

// NewMissionDispatcher створює новий екземпляр MissionDispatcher
func NewMissionDispatcher(
	fleet *FleetRegistry,
	missions *MissionLog,
	metrics ports.Metrics,
	minBattery float64,
	log zerolog.Logger,
) *MissionDispatcher {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	return &MissionDispatcher{
		fleet:      fleet,
		missions:   missions,
		metrics:    metrics,
		minBattery: minBattery,
		now:        time.Now,
		log:        log.With().Str("component", "mission_dispatcher").Logger(),
	}
}

// Dispatch призначає місію першому придатному вільному пристрою. Якщо такого
// немає, повертає domain.ErrNoUnitAvailable.
func (d *MissionDispatcher) Dispatch(
	ctx context.Context,
	trigger domain.TriggerKind,
	targetArea string,
	priority domain.Priority,
) (domain.InspectionMission, error) {
	if err := ctx.Err(); err != nil {
		return domain.InspectionMission{}, err
	}

	missionID := uuid.New()
	for _, candidate := range d.candidates(trigger) {
		// Місія закріплюється за пристроєм у тому ж кроці, що й захоплення
		unit, err := d.fleet.Claim(candidate.ID, missionID)
		if errors.Is(err, domain.ErrInvalidTransition) {
			// Пристрій перехопив інший диспетчер, пробуємо наступного кандидата
			continue
		}
		if err != nil {
			return domain.InspectionMission{}, err
		}

		return d.createMission(missionID, unit, trigger, targetArea, priority)
	}

	d.metrics.DispatchUnavailable(trigger)
	d.log.Info().
		Stringer("trigger", trigger).
		Str("target_area", targetArea).
		Stringer("priority", priority).
		Msg("no unit available for mission")

	return domain.InspectionMission{}, fmt.Errorf("%w for %s", domain.ErrNoUnitAvailable, trigger)
}

// DispatchThermal створює місію за термічною аномалією
func (d *MissionDispatcher) DispatchThermal(
	ctx context.Context,
	hotspot string,
	temperature float64,
	severity domain.Severity,
) (domain.InspectionMission, error) {
	priority := domain.PriorityMedium
	switch severity {
	case domain.SeverityCritical:
		priority = domain.PriorityCritical
	case domain.SeverityHigh:
		priority = domain.PriorityHigh
	}

	d.log.Info().
		Str("hotspot", hotspot).
		Float64("temperature_c", temperature).
		Stringer("severity", severity).
		Msg("thermal anomaly detected")

	return d.Dispatch(ctx, domain.TriggerThermalAnomaly, hotspot, priority)
}

// DispatchSeepage створює місію за зміною фільтрації
func (d *MissionDispatcher) DispatchSeepage(
	ctx context.Context,
	location string,
	rate, delta float64,
) (domain.InspectionMission, error) {
	priority := domain.PriorityMedium
	if math.Abs(delta) > seepageHighDelta {
		priority = domain.PriorityHigh
	}

	d.log.Info().
		Str("location", location).
		Float64("seepage_rate", rate).
		Float64("seepage_delta", delta).
		Msg("seepage anomaly detected")

	return d.Dispatch(ctx, domain.TriggerSeepageChange, location, priority)
}

func (d *MissionDispatcher) createMission(
	missionID uuid.UUID,
	unit domain.RoboticUnit,
	trigger domain.TriggerKind,
	targetArea string,
	priority domain.Priority,
) (domain.InspectionMission, error) {
	now := d.now()
	mission := domain.InspectionMission{
		ID:         missionID,
		UnitID:     unit.ID,
		UnitType:   unit.Type,
		Trigger:    trigger,
		TargetArea: targetArea,
		Priority:   priority,
		Status:     domain.MissionStatusQueued,
		CreatedAt:  now,
		Findings:   []string{},
	}
	d.missions.Append(mission)

	started, err := d.missions.Start(mission.ID, now)
	if err != nil {
		return domain.InspectionMission{}, err
	}

	d.metrics.MissionDispatched(trigger)
	d.log.Info().
		Str("mission_id", started.ID.String()).
		Str("unit_id", unit.ID).
		Stringer("unit_type", unit.Type).
		Stringer("trigger", trigger).
		Str("target_area", targetArea).
		Stringer("priority", priority).
		Float64("battery", unit.BatteryLevel).
		Msg("unit deployed")

	return started, nil
}

// candidates повертає вільні придатні пристрої: спершу з меншим
// напрацюванням, далі за ідентифікатором
func (d *MissionDispatcher) candidates(trigger domain.TriggerKind) []domain.RoboticUnit {
	var eligible []domain.RoboticUnit
	for _, unit := range d.fleet.List() {
		if unit.Status != domain.UnitStatusIdle || unit.BatteryLevel < d.minBattery {
			continue
		}
		if canServe(unit, trigger) {
			eligible = append(eligible, unit)
		}
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		if eligible[i].HoursOperated != eligible[j].HoursOperated {
			return eligible[i].HoursOperated < eligible[j].HoursOperated
		}
		return eligible[i].ID < eligible[j].ID
	})

	return eligible
}

// canServe перевіряє відповідність типу і обладнання пристрою тригеру
func canServe(unit domain.RoboticUnit, trigger domain.TriggerKind) bool {
	switch trigger {
	case domain.TriggerThermalAnomaly:
		return unit.Type == domain.UnitTypeAerialVehicle && unit.HasCapability(domain.CapabilityThermalCamera)
	case domain.TriggerSeepageChange:
		return unit.Type == domain.UnitTypeUnderwaterVehicle
	case domain.TriggerScheduled, domain.TriggerManual:
		return unit.CanInspect()
	}
	return false
}

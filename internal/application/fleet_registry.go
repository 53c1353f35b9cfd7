package application

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"dam-inspection-system/internal/domain"
)

// unitEntry тримає стан одного пристрою під власним м'ютексом, тож зміни
// статусу різних пристроїв не конкурують між собою
type unitEntry struct {
	mu      sync.Mutex
	unit    domain.RoboticUnit
	mission uuid.UUID // незавершена місія, uuid.Nil якщо немає
}

// FleetRegistry є авторитетним сховищем стану роботизованого флоту
type FleetRegistry struct {
	mu    sync.RWMutex
	units map[string]*unitEntry
	order []string
	now   func() time.Time
	log   zerolog.Logger
}

// NewFleetRegistry створює порожній реєстр
func NewFleetRegistry(log zerolog.Logger) *FleetRegistry {
	return &FleetRegistry{
		units: make(map[string]*unitEntry),
		now:   time.Now,
		log:   log.With().Str("component", "fleet_registry").Logger(),
	}
}

// Register додає пристрій. Порядок реєстрації є порядком сканування.
func (r *FleetRegistry) Register(unit domain.RoboticUnit) error {
	if unit.ID == "" {
		return fmt.Errorf("%w: unit id is required", domain.ErrInvalidInput)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.units[unit.ID]; exists {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateUnit, unit.ID)
	}

	r.units[unit.ID] = &unitEntry{unit: unit.Clone()}
	r.order = append(r.order, unit.ID)

	r.log.Info().
		Str("unit_id", unit.ID).
		Stringer("type", unit.Type).
		Stringer("status", unit.Status).
		Msg("unit registered")

	return nil
}

// Get повертає копію стану пристрою
func (r *FleetRegistry) Get(id string) (domain.RoboticUnit, error) {
	entry, err := r.entry(id)
	if err != nil {
		return domain.RoboticUnit{}, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	return entry.unit.Clone(), nil
}

// List повертає копії всіх пристроїв у порядку реєстрації
func (r *FleetRegistry) List() []domain.RoboticUnit {
	r.mu.RLock()
	entries := make([]*unitEntry, 0, len(r.order))
	for _, id := range r.order {
		entries = append(entries, r.units[id])
	}
	r.mu.RUnlock()

	units := make([]domain.RoboticUnit, 0, len(entries))
	for _, entry := range entries {
		entry.mu.Lock()
		units = append(units, entry.unit.Clone())
		entry.mu.Unlock()
	}

	return units
}

// Transition виконує compare-and-swap статусу пристрою. Пристрій, за яким
// закріплена незавершена місія, не може повернутися з fault в idle.
func (r *FleetRegistry) Transition(id string, from, to domain.UnitStatus) (domain.RoboticUnit, error) {
	return r.swap(id, func(u *domain.RoboticUnit, mission *uuid.UUID) error {
		if u.Status != from {
			return fmt.Errorf("%w: unit %s is %s, expected %s", domain.ErrInvalidTransition, id, u.Status, from)
		}
		if !legalUnitTransition(from, to) {
			return fmt.Errorf("%w: unit %s cannot go from %s to %s", domain.ErrInvalidTransition, id, from, to)
		}
		if from == domain.UnitStatusFault && *mission != uuid.Nil {
			return fmt.Errorf("%w: unit %s still has open mission %s", domain.ErrInvalidTransition, id, *mission)
		}
		if from.IsBusy() && to == domain.UnitStatusIdle {
			now := r.now()
			u.LastMission = &now
			*mission = uuid.Nil
		}
		u.Status = to
		return nil
	})
}

// Claim переводить вільний пристрій у deployed і в тому ж кроці закріплює
// за ним місію missionID
func (r *FleetRegistry) Claim(id string, missionID uuid.UUID) (domain.RoboticUnit, error) {
	return r.swap(id, func(u *domain.RoboticUnit, mission *uuid.UUID) error {
		if u.Status != domain.UnitStatusIdle {
			return fmt.Errorf("%w: unit %s is %s, expected %s", domain.ErrInvalidTransition, id, u.Status, domain.UnitStatusIdle)
		}
		if *mission != uuid.Nil {
			return fmt.Errorf("%w: unit %s already holds mission %s", domain.ErrInvalidTransition, id, *mission)
		}
		u.Status = domain.UnitStatusDeployed
		*mission = missionID
		return nil
	})
}

// OpenMission повертає незавершену місію, закріплену за пристроєм
func (r *FleetRegistry) OpenMission(id string) (uuid.UUID, bool) {
	entry, err := r.entry(id)
	if err != nil {
		return uuid.Nil, false
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	return entry.mission, entry.mission != uuid.Nil
}

// Release повертає пристрій з місії missionID в idle, фіксуючи час
// завершення і напрацювання. Пристрій у стані fault лишається у fault, але
// напрацювання все одно зараховується.
func (r *FleetRegistry) Release(id string, missionID uuid.UUID, at time.Time, operated time.Duration) (domain.RoboticUnit, error) {
	return r.swap(id, func(u *domain.RoboticUnit, mission *uuid.UUID) error {
		if *mission != uuid.Nil && *mission != missionID {
			return fmt.Errorf("%w: unit %s holds mission %s, not %s", domain.ErrInvalidTransition, id, *mission, missionID)
		}

		switch {
		case u.Status.IsBusy():
			u.Status = domain.UnitStatusIdle
		case u.Status == domain.UnitStatusFault:
		default:
			return fmt.Errorf("%w: unit %s is %s, not on a mission", domain.ErrInvalidTransition, id, u.Status)
		}

		*mission = uuid.Nil
		stamp := at
		u.LastMission = &stamp
		if operated > 0 {
			u.HoursOperated += operated.Hours()
		}
		return nil
	})
}

// UpdateTelemetry оновлює заряд батареї і координати пристрою. Під час
// місії заряд може лише зменшуватись.
func (r *FleetRegistry) UpdateTelemetry(id string, battery float64, location domain.Location) (domain.RoboticUnit, error) {
	return r.swap(id, func(u *domain.RoboticUnit, _ *uuid.UUID) error {
		if battery < 0 || battery > 100 {
			return fmt.Errorf("%w: battery level %.1f out of range", domain.ErrInvalidInput, battery)
		}
		if u.Status.IsBusy() && battery > u.BatteryLevel {
			battery = u.BatteryLevel
		}
		u.BatteryLevel = battery
		u.Location = location
		return nil
	})
}

// Status рахує пристрої за статусами
func (r *FleetRegistry) Status() domain.FleetStatus {
	var status domain.FleetStatus
	for _, u := range r.List() {
		status.Total++
		switch u.Status {
		case domain.UnitStatusIdle:
			status.Idle++
		case domain.UnitStatusDeployed, domain.UnitStatusInspecting:
			status.Deployed++
		case domain.UnitStatusCharging:
			status.Charging++
		case domain.UnitStatusFault:
			status.Fault++
		}
	}
	return status
}

func (r *FleetRegistry) entry(id string) (*unitEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.units[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnitNotFound, id)
	}
	return entry, nil
}

// swap застосовує мутацію до копії стану і фіксує її лише за відсутності помилки
func (r *FleetRegistry) swap(id string, mutate func(u *domain.RoboticUnit, mission *uuid.UUID) error) (domain.RoboticUnit, error) {
	entry, err := r.entry(id)
	if err != nil {
		return domain.RoboticUnit{}, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	next := entry.unit.Clone()
	mission := entry.mission
	if err := mutate(&next, &mission); err != nil {
		return domain.RoboticUnit{}, err
	}

	prev := entry.unit.Status
	entry.unit = next
	entry.mission = mission

	if prev != next.Status {
		r.log.Debug().
			Str("unit_id", id).
			Stringer("from", prev).
			Stringer("to", next.Status).
			Msg("unit status changed")
	}

	return next.Clone(), nil
}

// legalUnitTransition таблиця допустимих переходів статусу пристрою
func legalUnitTransition(from, to domain.UnitStatus) bool {
	if to == domain.UnitStatusFault {
		return from != domain.UnitStatusFault
	}

	switch from {
	case domain.UnitStatusIdle:
		return to == domain.UnitStatusDeployed || to == domain.UnitStatusCharging
	case domain.UnitStatusDeployed:
		return to == domain.UnitStatusInspecting || to == domain.UnitStatusIdle
	case domain.UnitStatusInspecting:
		return to == domain.UnitStatusIdle
	case domain.UnitStatusCharging:
		return to == domain.UnitStatusIdle
	case domain.UnitStatusFault:
		return to == domain.UnitStatusIdle
	}

	return false
}

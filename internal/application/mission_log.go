package application

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"dam-inspection-system/internal/domain"
)

// MissionLog зберігає всі місії в порядку створення. Завершені місії
// лишаються в журналі лише для читання.
type MissionLog struct {
	mu       sync.RWMutex
	missions map[uuid.UUID]*domain.InspectionMission
	order    []uuid.UUID
}

// NewMissionLog створює порожній журнал місій
func NewMissionLog() *MissionLog {
	return &MissionLog{
		missions: make(map[uuid.UUID]*domain.InspectionMission),
	}
}

// Append додає нову місію
func (l *MissionLog) Append(mission domain.InspectionMission) {
	l.mu.Lock()
	defer l.mu.Unlock()

	m := mission.Clone()
	l.missions[m.ID] = &m
	l.order = append(l.order, m.ID)
}

// Get повертає копію місії
func (l *MissionLog) Get(id uuid.UUID) (domain.InspectionMission, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	m, ok := l.missions[id]
	if !ok {
		return domain.InspectionMission{}, fmt.Errorf("%w: %s", domain.ErrMissionNotFound, id)
	}
	return m.Clone(), nil
}

// Start переводить місію з queued в in-progress
func (l *MissionLog) Start(id uuid.UUID, at time.Time) (domain.InspectionMission, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	m, ok := l.missions[id]
	if !ok {
		return domain.InspectionMission{}, fmt.Errorf("%w: %s", domain.ErrMissionNotFound, id)
	}
	if m.Status != domain.MissionStatusQueued {
		return domain.InspectionMission{}, fmt.Errorf("%w: mission %s is %s, expected %s",
			domain.ErrInvalidTransition, id, m.Status, domain.MissionStatusQueued)
	}

	started := at
	m.Status = domain.MissionStatusInProgress
	m.StartedAt = &started

	return m.Clone(), nil
}

// Finish атомарно переводить місію з in-progress у термінальний статус.
// Повторний виклик для вже завершеної місії повертає ErrInvalidTransition.
func (l *MissionLog) Finish(id uuid.UUID, status domain.MissionStatus, at time.Time, findings []string, reason string) (domain.InspectionMission, error) {
	if !status.IsTerminal() {
		return domain.InspectionMission{}, fmt.Errorf("%w: %s is not a terminal status", domain.ErrInvalidTransition, status)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	m, ok := l.missions[id]
	if !ok {
		return domain.InspectionMission{}, fmt.Errorf("%w: %s", domain.ErrMissionNotFound, id)
	}
	if m.Status != domain.MissionStatusInProgress {
		return domain.InspectionMission{}, fmt.Errorf("%w: mission %s is %s, expected %s",
			domain.ErrInvalidTransition, id, m.Status, domain.MissionStatusInProgress)
	}

	completed := at
	m.Status = status
	m.CompletedAt = &completed
	m.Findings = append(m.Findings, findings...)
	m.AbortReason = reason

	return m.Clone(), nil
}

// History повертає останні limit місій, від старіших до новіших
func (l *MissionLog) History(limit int) []domain.InspectionMission {
	l.mu.RLock()
	defer l.mu.RUnlock()

	ids := l.order
	if limit > 0 && len(ids) > limit {
		ids = ids[len(ids)-limit:]
	}

	out := make([]domain.InspectionMission, 0, len(ids))
	for _, id := range ids {
		out = append(out, l.missions[id].Clone())
	}
	return out
}

// Open повертає всі незавершені місії
func (l *MissionLog) Open() []domain.InspectionMission {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := []domain.InspectionMission{}
	for _, id := range l.order {
		if m := l.missions[id]; !m.Status.IsTerminal() {
			out = append(out, m.Clone())
		}
	}
	return out
}

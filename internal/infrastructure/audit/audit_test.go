package audit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dam-inspection-system/internal/domain"
	"dam-inspection-system/internal/logger"
)

func openTestJournal(t *testing.T) *BadgerJournal {
	t.Helper()
	j, err := OpenBadgerJournal(JournalConfig{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })
	return j
}

func TestOpenBadgerJournalRequiresPath(t *testing.T) {
	_, err := OpenBadgerJournal(JournalConfig{})
	require.Error(t, err)
}

func TestBadgerJournalMissionsNewestFirst(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()
	base := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)

	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		completed := base.Add(time.Duration(i) * time.Minute)
		m := &domain.InspectionMission{
			ID:          uuid.New(),
			UnitID:      "ROV-001",
			UnitType:    domain.UnitTypeUnderwaterVehicle,
			Trigger:     domain.TriggerSeepageChange,
			TargetArea:  "Gallery-3",
			Priority:    domain.PriorityMedium,
			Status:      domain.MissionStatusCompleted,
			CreatedAt:   base,
			CompletedAt: &completed,
			Findings:    []string{},
		}
		ids = append(ids, m.ID)
		require.NoError(t, j.RecordMission(ctx, m))
	}

	missions, err := j.ListMissions(ctx, 2)
	require.NoError(t, err)
	require.Len(t, missions, 2)
	assert.Equal(t, ids[2], missions[0].ID)
	assert.Equal(t, ids[1], missions[1].ID)
	assert.Equal(t, domain.MissionStatusCompleted, missions[0].Status)
}

func TestBadgerJournalTelemetry(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	update := &domain.TelemetryUpdate{
		ID:        uuid.New(),
		Timestamp: time.Now(),
		Source:    domain.UnitTypeAerialVehicle,
		MissionID: uuid.New(),
		Findings: domain.TelemetryFindings{
			StructuralIssues:       2,
			Severity:               domain.SeverityHigh,
			AffectedArea:           "Crest",
			SafetyFactorAdjustment: -0.12,
		},
		Applied: true,
	}
	require.NoError(t, j.RecordTelemetry(ctx, update))

	updates, err := j.ListTelemetry(ctx, 0)
	require.NoError(t, err)
	require.Len(t, updates, 1)
	assert.Equal(t, update.ID, updates[0].ID)
	assert.Equal(t, domain.SeverityHigh, updates[0].Findings.Severity)
	assert.InDelta(t, -0.12, updates[0].Findings.SafetyFactorAdjustment, 1e-9)

	missions, err := j.ListMissions(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, missions)
}

type recordingStore struct {
	mu        sync.Mutex
	missions  []uuid.UUID
	telemetry []uuid.UUID
	err       error
}

func (s *recordingStore) RecordMission(_ context.Context, m *domain.InspectionMission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.missions = append(s.missions, m.ID)
	return s.err
}

func (s *recordingStore) RecordTelemetry(_ context.Context, u *domain.TelemetryUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.telemetry = append(s.telemetry, u.ID)
	return s.err
}

func (s *recordingStore) counts() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.missions), len(s.telemetry)
}

type failureCounter struct {
	mu    sync.Mutex
	kinds []string
}

func (f *failureCounter) MissionDispatched(domain.TriggerKind)   {}
func (f *failureCounter) DispatchUnavailable(domain.TriggerKind) {}
func (f *failureCounter) MissionFinished(domain.MissionStatus)   {}
func (f *failureCounter) TelemetryProcessed(float64, bool)       {}
func (f *failureCounter) SeismicAlert()                          {}
func (f *failureCounter) CriticalFindings()                      {}
func (f *failureCounter) AuditFailure(kind string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.kinds = append(f.kinds, kind)
}

func TestAsyncRecorderQueueFull(t *testing.T) {
	store := &recordingStore{}
	r := NewAsyncRecorder(store, 1, nil, logger.NewTestLogger())
	ctx := context.Background()

	require.NoError(t, r.RecordMission(ctx, &domain.InspectionMission{ID: uuid.New()}))
	err := r.RecordTelemetry(ctx, &domain.TelemetryUpdate{ID: uuid.New()})
	require.ErrorIs(t, err, ErrQueueFull)
	assert.Equal(t, 1, r.Len())
}

func TestAsyncRecorderDrainsOnShutdown(t *testing.T) {
	store := &recordingStore{}
	r := NewAsyncRecorder(store, 8, nil, logger.NewTestLogger())
	ctx, cancel := context.WithCancel(context.Background())

	for i := 0; i < 3; i++ {
		require.NoError(t, r.RecordMission(ctx, &domain.InspectionMission{ID: uuid.New()}))
	}
	require.NoError(t, r.RecordTelemetry(ctx, &domain.TelemetryUpdate{ID: uuid.New()}))

	cancel()
	require.NoError(t, r.Run(ctx))

	missions, telemetry := store.counts()
	assert.Equal(t, 3, missions)
	assert.Equal(t, 1, telemetry)
	assert.Equal(t, 0, r.Len())
}

func TestAsyncRecorderCountsFailures(t *testing.T) {
	store := &recordingStore{err: errors.New("disk full")}
	metrics := &failureCounter{}
	r := NewAsyncRecorder(store, 4, metrics, logger.NewTestLogger())
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, r.RecordMission(ctx, &domain.InspectionMission{ID: uuid.New()}))
	require.NoError(t, r.RecordTelemetry(ctx, &domain.TelemetryUpdate{ID: uuid.New()}))

	cancel()
	require.NoError(t, r.Run(ctx))

	metrics.mu.Lock()
	defer metrics.mu.Unlock()
	assert.ElementsMatch(t, []string{"mission", "telemetry"}, metrics.kinds)
}

func TestAsyncRecorderCopiesRecords(t *testing.T) {
	store := &recordingStore{}
	r := NewAsyncRecorder(store, 4, nil, logger.NewTestLogger())
	ctx, cancel := context.WithCancel(context.Background())

	m := &domain.InspectionMission{ID: uuid.New()}
	original := m.ID
	require.NoError(t, r.RecordMission(ctx, m))
	m.ID = uuid.New()

	cancel()
	require.NoError(t, r.Run(ctx))

	store.mu.Lock()
	defer store.mu.Unlock()
	require.Len(t, store.missions, 1)
	assert.Equal(t, original, store.missions[0])
}

func TestMultiRecorder(t *testing.T) {
	failing := &recordingStore{err: errors.New("offline")}
	healthy := &recordingStore{}
	multi := MultiRecorder{failing, healthy}

	err := multi.RecordMission(context.Background(), &domain.InspectionMission{ID: uuid.New()})
	require.Error(t, err)

	missions, _ := healthy.counts()
	assert.Equal(t, 1, missions)
}

package application

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"dam-inspection-system/internal/domain"
	"dam-inspection-system/internal/logger"
)

var errBackendDown = errors.New("backend down")

type recordingAlerts struct {
	mu       sync.Mutex
	seismic  []domain.SeismicAlert
	critical []domain.CriticalFindingsAlert
}

func (r *recordingAlerts) PublishSeismicAlert(_ context.Context, alert domain.SeismicAlert) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seismic = append(r.seismic, alert)
	return nil
}

func (r *recordingAlerts) PublishCriticalFindings(_ context.Context, alert domain.CriticalFindingsAlert) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.critical = append(r.critical, alert)
	return nil
}

type recordingAudit struct {
	mu        sync.Mutex
	err       error
	missions  []domain.InspectionMission
	telemetry []domain.TelemetryUpdate
}

func (r *recordingAudit) RecordMission(_ context.Context, m *domain.InspectionMission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.missions = append(r.missions, m.Clone())
	return nil
}

func (r *recordingAudit) RecordTelemetry(_ context.Context, u *domain.TelemetryUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.telemetry = append(r.telemetry, *u)
	return nil
}

type recordingMetrics struct {
	mu            sync.Mutex
	dispatched    int
	unavailable   int
	finished      map[domain.MissionStatus]int
	auditFailures map[string]int
	seismic       int
	critical      int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{
		finished:      make(map[domain.MissionStatus]int),
		auditFailures: make(map[string]int),
	}
}

func (m *recordingMetrics) MissionDispatched(domain.TriggerKind) {
	m.mu.Lock()
	m.dispatched++
	m.mu.Unlock()
}

func (m *recordingMetrics) DispatchUnavailable(domain.TriggerKind) {
	m.mu.Lock()
	m.unavailable++
	m.mu.Unlock()
}

func (m *recordingMetrics) MissionFinished(s domain.MissionStatus) {
	m.mu.Lock()
	m.finished[s]++
	m.mu.Unlock()
}

func (m *recordingMetrics) TelemetryProcessed(float64, bool) {}

func (m *recordingMetrics) SeismicAlert() {
	m.mu.Lock()
	m.seismic++
	m.mu.Unlock()
}

func (m *recordingMetrics) CriticalFindings() {
	m.mu.Lock()
	m.critical++
	m.mu.Unlock()
}

func (m *recordingMetrics) AuditFailure(kind string) {
	m.mu.Lock()
	m.auditFailures[kind]++
	m.mu.Unlock()
}

type countingObserver struct {
	mu        sync.Mutex
	snapshots []domain.DamStabilityGauge
}

func (o *countingObserver) ObserveGauge(s domain.DamStabilityGauge) {
	o.mu.Lock()
	o.snapshots = append(o.snapshots, s)
	o.mu.Unlock()
}

func (o *countingObserver) count() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.snapshots)
}

type memoryArchive struct {
	mu      sync.Mutex
	err     error
	objects map[string][]byte
	keys    map[uuid.UUID][]string
}

func newMemoryArchive() *memoryArchive {
	return &memoryArchive{
		objects: make(map[string][]byte),
		keys:    make(map[uuid.UUID][]string),
	}
}

func (a *memoryArchive) SaveDetectionBatch(_ context.Context, missionID uuid.UUID, results []domain.DetectionResult) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return "", a.err
	}
	data, err := json.Marshal(results)
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("missions/%s/%d.json", missionID, len(a.keys[missionID]))
	a.objects[key] = data
	a.keys[missionID] = append(a.keys[missionID], key)
	return key, nil
}

func (a *memoryArchive) GetDetectionBatch(_ context.Context, key string) (io.ReadCloser, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	data, ok := a.objects[key]
	if !ok {
		return nil, fmt.Errorf("object %s not found", key)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (a *memoryArchive) ListDetectionBatchKeys(_ context.Context, missionID uuid.UUID) ([]string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string{}, a.keys[missionID]...), nil
}

// core зібране ядро над одним реєстром і журналом місій
type core struct {
	fleet      *FleetRegistry
	missions   *MissionLog
	dispatcher *MissionDispatcher
	tracker    *MissionTracker
	gauge      *StabilityGauge
	integrator *SafetyFeedbackIntegrator
	alerts     *recordingAlerts
	audit      *recordingAudit
	metrics    *recordingMetrics
}

func newCore(t *testing.T, units ...domain.RoboticUnit) *core {
	t.Helper()

	log := logger.NewTestLogger()
	c := &core{
		fleet:    NewFleetRegistry(log),
		missions: NewMissionLog(),
		alerts:   &recordingAlerts{},
		audit:    &recordingAudit{},
		metrics:  newRecordingMetrics(),
	}
	for _, u := range units {
		require.NoError(t, c.fleet.Register(u))
	}

	c.dispatcher = NewMissionDispatcher(c.fleet, c.missions, c.metrics, DefaultMinBatteryLevel, log)
	c.tracker = NewMissionTracker(c.fleet, c.missions, c.audit, c.metrics, log)
	c.gauge = NewStabilityGauge(DefaultWaterLevel, c.alerts, c.metrics, log)
	c.integrator = NewSafetyFeedbackIntegrator(c.gauge, c.audit, c.alerts, c.metrics, log)
	return c
}

func aerialThermal(id string) domain.RoboticUnit {
	return domain.RoboticUnit{
		ID:           id,
		Type:         domain.UnitTypeAerialVehicle,
		Status:       domain.UnitStatusIdle,
		Capabilities: []domain.Capability{domain.CapabilityThermalCamera},
		BatteryLevel: 100,
	}
}

func underwater(id string) domain.RoboticUnit {
	return domain.RoboticUnit{
		ID:           id,
		Type:         domain.UnitTypeUnderwaterVehicle,
		Status:       domain.UnitStatusIdle,
		Capabilities: []domain.Capability{domain.CapabilitySonar, domain.CapabilityVisualCamera},
		BatteryLevel: 100,
	}
}

func cleaningArm(id string) domain.RoboticUnit {
	return domain.RoboticUnit{
		ID:           id,
		Type:         domain.UnitTypeCleaningArm,
		Status:       domain.UnitStatusIdle,
		BatteryLevel: 100,
	}
}

func detection(t domain.DetectionType, sev domain.Severity) domain.Detection {
	return domain.Detection{Type: t, Severity: sev, Confidence: 0.9}
}

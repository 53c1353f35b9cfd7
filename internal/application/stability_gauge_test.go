package application

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dam-inspection-system/internal/domain"
	"dam-inspection-system/internal/logger"
	"dam-inspection-system/pkg/stability"
)

func newTestGauge(waterLevel float64) (*StabilityGauge, *recordingAlerts, *countingObserver) {
	alerts := &recordingAlerts{}
	observer := &countingObserver{}
	gauge := NewStabilityGauge(waterLevel, alerts, nil, logger.NewTestLogger(), observer)
	return gauge, alerts, observer
}

func TestGaugeInitialState(t *testing.T) {
	gauge, _, _ := newTestGauge(DefaultWaterLevel)

	snapshot := gauge.Snapshot()
	assert.InDelta(t, 1.8, snapshot.SafetyFactor, 1e-9)
	assert.Equal(t, domain.StabilitySafe, snapshot.Status)
	assert.Equal(t, domain.SeismicNone, snapshot.SeismicActivity)
	assert.Equal(t, 1.0, snapshot.InspectionMultiplier)
}

func TestGaugeUpliftAndWaterLevel(t *testing.T) {
	gauge, _, observer := newTestGauge(DefaultWaterLevel)
	ctx := context.Background()
	t0 := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	gauge.IngestWaterLevel(ctx, domain.WaterLevelData{GaugeID: "WL-1", Level: 90, Timestamp: t0})
	gauge.IngestPiezometer(ctx, domain.PiezometerData{SensorID: "P-1", Pressure: 10, Timestamp: t0})
	snapshot := gauge.IngestPiezometer(ctx, domain.PiezometerData{SensorID: "P-2", Pressure: 14, Timestamp: t0})

	assert.InDelta(t, 12.0, snapshot.UpliftPressure, 1e-9)
	assert.InDelta(t, 0.8, snapshot.SafetyFactor, 1e-9)
	assert.Equal(t, domain.StabilityCritical, snapshot.Status)
	assert.Equal(t, 3, observer.count())
}

func TestGaugeSafetyFactorFloor(t *testing.T) {
	gauge, _, _ := newTestGauge(DefaultWaterLevel)

	snapshot := gauge.IngestPiezometer(context.Background(), domain.PiezometerData{SensorID: "P-1", Pressure: 1000})
	assert.Equal(t, stability.MinSafetyFactor, snapshot.SafetyFactor)
	assert.Equal(t, domain.StabilityCritical, snapshot.Status)
}

func TestGaugeIgnoresOutOfOrderReadings(t *testing.T) {
	gauge, _, observer := newTestGauge(DefaultWaterLevel)
	ctx := context.Background()
	t0 := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	gauge.IngestPiezometer(ctx, domain.PiezometerData{SensorID: "P-1", Pressure: 2, Timestamp: t0})
	snapshot := gauge.IngestPiezometer(ctx, domain.PiezometerData{SensorID: "P-1", Pressure: 20, Timestamp: t0.Add(-time.Minute)})

	assert.InDelta(t, 2.0, snapshot.UpliftPressure, 1e-9)
	assert.InDelta(t, 1.6, snapshot.SafetyFactor, 1e-9)
	assert.Equal(t, 1, observer.count())
}

func TestGaugeSeismicAlert(t *testing.T) {
	gauge, alerts, _ := newTestGauge(DefaultWaterLevel)
	ctx := context.Background()

	snapshot := gauge.IngestSeismic(ctx, domain.SeismicData{StationID: "SEIS-1", PeakGroundAcceleration: 0.18, Frequency: 4.2})

	assert.Equal(t, domain.SeismicHigh, snapshot.SeismicActivity)
	assert.Equal(t, domain.StabilityWarning, snapshot.Status)
	require.Len(t, alerts.seismic, 1)
	alert := alerts.seismic[0]
	assert.Equal(t, "SEIS-1", alert.StationID)
	assert.Equal(t, domain.SeismicHigh, alert.Activity)
	assert.Len(t, alert.RecommendedActions, 4)
	assert.False(t, alert.Timestamp.IsZero())
}

func TestGaugeSeismicThresholds(t *testing.T) {
	gauge, alerts, _ := newTestGauge(DefaultWaterLevel)
	ctx := context.Background()

	snapshot := gauge.IngestSeismic(ctx, domain.SeismicData{StationID: "SEIS-1", PeakGroundAcceleration: 0.03})
	assert.Equal(t, domain.SeismicLow, snapshot.SeismicActivity)
	assert.Equal(t, domain.StabilityMonitoring, snapshot.Status)
	assert.Empty(t, alerts.seismic)

	snapshot = gauge.IngestSeismic(ctx, domain.SeismicData{StationID: "SEIS-2", PeakGroundAcceleration: 0.07})
	assert.Equal(t, domain.SeismicModerate, snapshot.SeismicActivity)
	require.Len(t, alerts.seismic, 1)
	assert.Len(t, alerts.seismic[0].RecommendedActions, 2)
}

func TestGaugeApplyAdjustmentAndReset(t *testing.T) {
	gauge, _, _ := newTestGauge(DefaultWaterLevel)
	ctx := context.Background()

	gauge.IngestPiezometer(ctx, domain.PiezometerData{SensorID: "P-1", Pressure: 2})

	snapshot := gauge.ApplyAdjustment(ctx, -0.1)
	assert.InDelta(t, 1.44, snapshot.SafetyFactor, 1e-9)
	assert.InDelta(t, 0.9, snapshot.InspectionMultiplier, 1e-9)
	assert.Equal(t, domain.StabilityMonitoring, snapshot.Status)

	// перерахунок за сенсорами зберігає накопичену поправку
	snapshot = gauge.IngestWaterLevel(ctx, domain.WaterLevelData{Level: 100})
	assert.InDelta(t, 1.44, snapshot.SafetyFactor, 1e-9)

	snapshot = gauge.ApplyAdjustment(ctx, -0.5)
	assert.InDelta(t, 0.72, snapshot.SafetyFactor, 1e-9)
	assert.Equal(t, domain.StabilityCritical, snapshot.Status)

	snapshot = gauge.ResetInspectionPenalty(ctx)
	assert.InDelta(t, 1.6, snapshot.SafetyFactor, 1e-9)
	assert.Equal(t, 1.0, snapshot.InspectionMultiplier)
	assert.Equal(t, domain.StabilitySafe, snapshot.Status)
}

func TestGaugeAdjustmentAtFloorIsStable(t *testing.T) {
	gauge, _, _ := newTestGauge(DefaultWaterLevel)
	ctx := context.Background()
	reading := domain.PiezometerData{SensorID: "P-1", Pressure: 1000}

	snapshot := gauge.IngestPiezometer(ctx, reading)
	require.Equal(t, stability.MinSafetyFactor, snapshot.SafetyFactor)

	// нижня межа застосовується після множника, а не до нього
	snapshot = gauge.ApplyAdjustment(ctx, -0.25)
	assert.Equal(t, stability.MinSafetyFactor, snapshot.SafetyFactor)
	assert.InDelta(t, 0.75, snapshot.InspectionMultiplier, 1e-9)
	assert.Equal(t, domain.StabilityCritical, snapshot.Status)

	// повторний той самий показ не змінює коефіцієнт
	snapshot = gauge.IngestPiezometer(ctx, reading)
	assert.Equal(t, stability.MinSafetyFactor, snapshot.SafetyFactor)
	assert.InDelta(t, 0.75, snapshot.InspectionMultiplier, 1e-9)
}

func TestGaugeAdjustmentMatchesSensorRecompute(t *testing.T) {
	gauge, _, _ := newTestGauge(DefaultWaterLevel)
	ctx := context.Background()

	gauge.IngestPiezometer(ctx, domain.PiezometerData{SensorID: "P-1", Pressure: 6})
	adjusted := gauge.ApplyAdjustment(ctx, -0.2)
	resent := gauge.IngestPiezometer(ctx, domain.PiezometerData{SensorID: "P-1", Pressure: 6})

	// 1.8 - 0.6 = 1.2, 1.2 * 0.8 = 0.96
	assert.InDelta(t, 0.96, adjusted.SafetyFactor, 1e-9)
	assert.InDelta(t, adjusted.SafetyFactor, resent.SafetyFactor, 1e-9)
}

func TestGaugeConcurrentIngest(t *testing.T) {
	gauge, _, observer := newTestGauge(DefaultWaterLevel)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			gauge.IngestPiezometer(ctx, domain.PiezometerData{SensorID: "P-1", Pressure: 3})
		}()
		go func() {
			defer wg.Done()
			gauge.ApplyAdjustment(ctx, -0.01)
		}()
	}
	wg.Wait()

	snapshot := gauge.Snapshot()
	assert.InDelta(t, 1.5*snapshot.InspectionMultiplier, snapshot.SafetyFactor, 1e-9)
	assert.Equal(t, 40, observer.count())
}

package application

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dam-inspection-system/internal/domain"
	"dam-inspection-system/pkg/inspection"
)

func testMission(area string) domain.InspectionMission {
	return domain.InspectionMission{
		ID:         uuid.New(),
		UnitID:     "UAV-T1",
		UnitType:   domain.UnitTypeAerialVehicle,
		TargetArea: area,
		Status:     domain.MissionStatusCompleted,
	}
}

func TestComputeAdjustment(t *testing.T) {
	tests := []struct {
		name       string
		detections []domain.Detection
		want       float64
	}{
		{"no detections", nil, 0},
		{"single low", []domain.Detection{detection(domain.DetectionDebris, domain.SeverityLow)}, -0.01},
		{"medium crack", []domain.Detection{detection(domain.DetectionCrack, domain.SeverityMedium)}, -0.05},
		{"high without cracks", []domain.Detection{detection(domain.DetectionCorrosion, domain.SeverityHigh)}, -0.08},
		{"critical with many cracks", []domain.Detection{
			detection(domain.DetectionCrack, domain.SeverityCritical),
			detection(domain.DetectionCrack, domain.SeverityHigh),
			detection(domain.DetectionCrack, domain.SeverityHigh),
			detection(domain.DetectionCrack, domain.SeverityLow),
			detection(domain.DetectionCrack, domain.SeverityLow),
			detection(domain.DetectionCrack, domain.SeverityLow),
			detection(domain.DetectionCrack, domain.SeverityLow),
		}, -0.25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			summary := inspection.Aggregate([]domain.DetectionResult{{FrameID: 1, Detections: tt.detections}})
			got := ComputeAdjustment(summary)
			assert.InDelta(t, tt.want, got, 1e-9)
			assert.GreaterOrEqual(t, got, MaxAdjustmentPenalty)
			assert.LessOrEqual(t, got, 0.0)
		})
	}
}

func TestProcessMissionResultsCriticalBatch(t *testing.T) {
	c := newCore(t)
	mission := testMission("spillway-3")

	update := c.integrator.ProcessMissionResults(context.Background(), mission, []domain.DetectionResult{
		{FrameID: 1, Detections: []domain.Detection{
			detection(domain.DetectionCorrosion, domain.SeverityMedium),
			detection(domain.DetectionCrack, domain.SeverityCritical),
		}},
		{FrameID: 2, Detections: []domain.Detection{
			detection(domain.DetectionDebris, domain.SeverityLow),
		}},
	})

	assert.Equal(t, 3, update.Findings.StructuralIssues)
	assert.Equal(t, domain.SeverityCritical, update.Findings.Severity)
	assert.InDelta(t, -0.17, update.Findings.SafetyFactorAdjustment, 1e-9)
	assert.Equal(t, "spillway-3", update.Findings.AffectedArea)
	assert.Equal(t, domain.UnitTypeAerialVehicle, update.Source)
	assert.Equal(t, mission.ID, update.MissionID)
	assert.True(t, update.Applied)

	snapshot := c.gauge.Snapshot()
	assert.InDelta(t, 1.8*0.83, snapshot.SafetyFactor, 1e-9)
	assert.Equal(t, domain.StabilityMonitoring, snapshot.Status)

	require.Len(t, c.alerts.critical, 1)
	assert.Equal(t, 3, c.alerts.critical[0].IssueCount)
	assert.Equal(t, "spillway-3", c.alerts.critical[0].AffectedArea)
	assert.Len(t, c.alerts.critical[0].RecommendedActions, 3)

	require.Len(t, c.audit.telemetry, 1)
	assert.True(t, c.audit.telemetry[0].Applied)

	recent := c.integrator.Recent(10)
	require.Len(t, recent, 1)
	assert.True(t, recent[0].Applied)
}

func TestProcessMissionResultsEmptyBatch(t *testing.T) {
	c := newCore(t)
	before := c.gauge.Snapshot()

	update := c.integrator.ProcessMissionResults(context.Background(), testMission("crest"), nil)

	assert.Zero(t, update.Findings.StructuralIssues)
	assert.Equal(t, domain.SeverityLow, update.Findings.Severity)
	assert.Zero(t, update.Findings.SafetyFactorAdjustment)
	assert.False(t, update.Applied)
	assert.Equal(t, before.SafetyFactor, c.gauge.Snapshot().SafetyFactor)
	assert.Empty(t, c.alerts.critical)

	stats := c.integrator.Statistics()
	assert.Equal(t, 1, stats.TotalUpdates)
	assert.Zero(t, stats.AppliedUpdates)
}

func TestProcessMissionResultsBelowApplyThreshold(t *testing.T) {
	c := newCore(t)

	update := c.integrator.ProcessMissionResults(context.Background(), testMission("crest"), []domain.DetectionResult{
		{FrameID: 1, Detections: []domain.Detection{detection(domain.DetectionDebris, domain.SeverityLow)}},
	})

	assert.InDelta(t, -0.01, update.Findings.SafetyFactorAdjustment, 1e-9)
	assert.False(t, update.Applied)
	assert.InDelta(t, 1.8, c.gauge.Snapshot().SafetyFactor, 1e-9)
}

func TestIntegratorStatisticsAndReport(t *testing.T) {
	c := newCore(t)
	ctx := context.Background()

	c.integrator.ProcessMissionResults(ctx, testMission("gallery-1"), []domain.DetectionResult{
		{FrameID: 1, Detections: []domain.Detection{detection(domain.DetectionCorrosion, domain.SeverityHigh)}},
	})
	c.integrator.ProcessMissionResults(ctx, testMission("gallery-2"), []domain.DetectionResult{
		{FrameID: 1, Detections: []domain.Detection{detection(domain.DetectionSpalling, domain.SeverityCritical)}},
	})
	c.integrator.ProcessMissionResults(ctx, testMission("crest"), nil)

	stats := c.integrator.Statistics()
	assert.Equal(t, 3, stats.TotalUpdates)
	assert.Equal(t, 2, stats.AppliedUpdates)
	assert.Equal(t, 1, stats.CriticalFindings)
	assert.InDelta(t, -0.115, stats.AvgSafetyAdjustment, 1e-9)

	recent := c.integrator.Recent(2)
	require.Len(t, recent, 2)
	assert.Equal(t, "gallery-2", recent[0].Findings.AffectedArea)
	assert.Equal(t, "crest", recent[1].Findings.AffectedArea)

	report := c.integrator.Report()
	assert.Contains(t, report, "ROBOTIC TELEMETRY INTEGRATION REPORT")
	assert.Contains(t, report, "Total Telemetry Updates: 3")
	assert.Contains(t, report, "Applied to Safety Model: 2")
	assert.Contains(t, report, "Critical Findings: 1")
	assert.Contains(t, report, "Area: gallery-2")
}

func TestIntegratorRecentEmpty(t *testing.T) {
	c := newCore(t)

	recent := c.integrator.Recent(5)
	assert.NotNil(t, recent)
	assert.Empty(t, recent)
}

func TestIntegratorAuditFailureIsNotFatal(t *testing.T) {
	c := newCore(t)
	c.audit.err = errBackendDown

	update := c.integrator.ProcessMissionResults(context.Background(), testMission("crest"), []domain.DetectionResult{
		{FrameID: 1, Detections: []domain.Detection{detection(domain.DetectionCrack, domain.SeverityHigh)}},
	})

	assert.True(t, update.Applied)
	assert.Equal(t, 1, c.metrics.auditFailures["telemetry"])
	assert.Equal(t, 1, c.integrator.Statistics().TotalUpdates)
}

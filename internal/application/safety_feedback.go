package application

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"dam-inspection-system/internal/domain"
	"dam-inspection-system/internal/ports"
	"dam-inspection-system/pkg/inspection"
)

// Межі поправки коефіцієнта запасу за один пакет результатів
const (
	MaxAdjustmentPenalty = -0.30
	MinAppliedAdjustment = 0.01

	crackPenalty    = -0.02
	maxCrackPenalty = 5
)

// severityPenalty базова поправка за найвищу тяжкість
var severityPenalty = map[domain.Severity]float64{
	domain.SeverityCritical: -0.15,
	domain.SeverityHigh:     -0.08,
	domain.SeverityMedium:   -0.03,
	domain.SeverityLow:      -0.01,
}

// ComputeAdjustment розраховує поправку за підсумком детекцій. Результат
// завжди в межах [-0.30, 0]; відсутність детекцій дає 0.
func ComputeAdjustment(summary inspection.Summary) float64 {
	if summary.TotalIssues == 0 {
		return 0
	}

	adjustment := severityPenalty[summary.MaxSeverity]

	if cracks := summary.Count(domain.DetectionCrack); cracks > 0 {
		adjustment += crackPenalty * float64(min(cracks, maxCrackPenalty))
	}

	return math.Max(MaxAdjustmentPenalty, math.Min(0, adjustment))
}

// SafetyFeedbackIntegrator перетворює результати інспекцій у поправку
// коефіцієнта запасу і веде журнал оновлень телеметрії
type SafetyFeedbackIntegrator struct {
	gauge   *StabilityGauge
	audit   ports.AuditRecorder
	alerts  ports.AlertPublisher
	metrics ports.Metrics
	now     func() time.Time
	log     zerolog.Logger

	mu      sync.RWMutex
	updates []domain.TelemetryUpdate
}

// NewSafetyFeedbackIntegrator створює новий екземпляр SafetyFeedbackIntegrator
func NewSafetyFeedbackIntegrator(
	gauge *StabilityGauge,
	audit ports.AuditRecorder,
	alerts ports.AlertPublisher,
	metrics ports.Metrics,
	log zerolog.Logger,
) *SafetyFeedbackIntegrator {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	return &SafetyFeedbackIntegrator{
		gauge:   gauge,
		audit:   audit,
		alerts:  alerts,
		metrics: metrics,
		now:     time.Now,
		log:     log.With().Str("component", "safety_feedback").Logger(),
	}
}

// ProcessMissionResults обробляє пакет детекцій місії. Порожній пакет не є
// помилкою: поправка нульова, але запис все одно зберігається.
func (s *SafetyFeedbackIntegrator) ProcessMissionResults(
	ctx context.Context,
	mission domain.InspectionMission,
	results []domain.DetectionResult,
) domain.TelemetryUpdate {
	summary := inspection.Aggregate(results)
	adjustment := ComputeAdjustment(summary)

	update := domain.TelemetryUpdate{
		ID:        uuid.New(),
		Timestamp: s.now(),
		Source:    mission.UnitType,
		MissionID: mission.ID,
		Findings: domain.TelemetryFindings{
			StructuralIssues:       summary.TotalIssues,
			Severity:               summary.MaxSeverity,
			AffectedArea:           mission.TargetArea,
			SafetyFactorAdjustment: adjustment,
		},
	}

	idx := s.append(update)

	if math.Abs(adjustment) > MinAppliedAdjustment && s.gauge != nil {
		s.gauge.ApplyAdjustment(ctx, adjustment)
		update.Applied = true
		s.markApplied(idx)
	}

	s.metrics.TelemetryProcessed(adjustment, update.Applied)
	s.log.Info().
		Str("mission_id", mission.ID.String()).
		Int("structural_issues", summary.TotalIssues).
		Stringer("max_severity", summary.MaxSeverity).
		Int("cracks", summary.Count(domain.DetectionCrack)).
		Float64("adjustment", adjustment).
		Bool("applied", update.Applied).
		Msg("telemetry update processed")

	if s.audit != nil {
		if err := s.audit.RecordTelemetry(ctx, &update); err != nil {
			s.metrics.AuditFailure("telemetry")
			s.log.Error().Err(err).Str("update_id", update.ID.String()).Msg("failed to record telemetry update")
		}
	}

	if summary.TotalIssues > 0 && summary.MaxSeverity == domain.SeverityCritical {
		s.publishCritical(ctx, update)
	}

	return update
}

// Recent повертає останні limit оновлень
func (s *SafetyFeedbackIntegrator) Recent(limit int) []domain.TelemetryUpdate {
	s.mu.RLock()
	defer s.mu.RUnlock()

	updates := s.updates
	if limit > 0 && len(updates) > limit {
		updates = updates[len(updates)-limit:]
	}
	out := make([]domain.TelemetryUpdate, len(updates))
	copy(out, updates)
	return out
}

// Statistics зведення журналу оновлень
func (s *SafetyFeedbackIntegrator) Statistics() domain.TelemetryStatistics {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var stats domain.TelemetryStatistics
	sum := 0.0
	for _, u := range s.updates {
		stats.TotalUpdates++
		if u.Applied {
			stats.AppliedUpdates++
			sum += u.Findings.SafetyFactorAdjustment
		}
		if u.Findings.Severity == domain.SeverityCritical && u.Findings.StructuralIssues > 0 {
			stats.CriticalFindings++
		}
	}
	if stats.AppliedUpdates > 0 {
		stats.AvgSafetyAdjustment = sum / float64(stats.AppliedUpdates)
	}
	return stats
}

// Report формує текстовий звіт для операторів
func (s *SafetyFeedbackIntegrator) Report() string {
	stats := s.Statistics()
	recent := s.Recent(10)

	var b strings.Builder
	rule := strings.Repeat("=", 80)

	fmt.Fprintln(&b, rule)
	fmt.Fprintln(&b, "ROBOTIC TELEMETRY INTEGRATION REPORT")
	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, "Generated: %s\n\n", s.now().UTC().Format(time.RFC3339))

	fmt.Fprintln(&b, "SUMMARY:")
	fmt.Fprintf(&b, "  Total Telemetry Updates: %d\n", stats.TotalUpdates)
	fmt.Fprintf(&b, "  Applied to Safety Model: %d\n", stats.AppliedUpdates)
	fmt.Fprintf(&b, "  Critical Findings: %d\n", stats.CriticalFindings)
	fmt.Fprintf(&b, "  Avg Safety Adjustment: %.2f%%\n\n", stats.AvgSafetyAdjustment*100)

	fmt.Fprintln(&b, "RECENT UPDATES:")
	for _, u := range recent {
		fmt.Fprintf(&b, "  %s - %s - %s\n", u.Timestamp.UTC().Format("15:04:05"), u.Source, u.Findings.Severity)
		fmt.Fprintf(&b, "    Area: %s\n", u.Findings.AffectedArea)
		fmt.Fprintf(&b, "    Issues: %d, SF Adj: %.1f%%\n", u.Findings.StructuralIssues, u.Findings.SafetyFactorAdjustment*100)
	}
	fmt.Fprintln(&b, rule)

	return b.String()
}

func (s *SafetyFeedbackIntegrator) append(update domain.TelemetryUpdate) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates = append(s.updates, update)
	return len(s.updates) - 1
}

func (s *SafetyFeedbackIntegrator) markApplied(idx int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates[idx].Applied = true
}

func (s *SafetyFeedbackIntegrator) publishCritical(ctx context.Context, update domain.TelemetryUpdate) {
	alert := domain.CriticalFindingsAlert{
		Source:             update.Source,
		MissionID:          update.MissionID,
		AffectedArea:       update.Findings.AffectedArea,
		IssueCount:         update.Findings.StructuralIssues,
		RecommendedActions: domain.CriticalFindingsActions(),
		Timestamp:          update.Timestamp,
	}

	s.metrics.CriticalFindings()
	s.log.Warn().
		Str("mission_id", update.MissionID.String()).
		Str("affected_area", alert.AffectedArea).
		Int("issues", alert.IssueCount).
		Msg("critical structural findings detected")

	if s.alerts == nil {
		return
	}
	if err := s.alerts.PublishCriticalFindings(ctx, alert); err != nil {
		s.log.Error().Err(err).Str("mission_id", update.MissionID.String()).Msg("failed to publish critical findings alert")
	}
}

package application

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"dam-inspection-system/internal/domain"
	"dam-inspection-system/internal/ports"
	"dam-inspection-system/pkg/inspection"
)

// InspectionOutcome результат обробки звіту місії
type InspectionOutcome struct {
	Mission    domain.InspectionMission `json:"mission"`
	Telemetry  domain.TelemetryUpdate   `json:"telemetry"`
	ArchiveKey string                   `json:"archive_key,omitempty"`
}

// InspectionResultService відповідає за прийом результатів інспекції:
// завершення місії, архівування сирих детекцій і передачу їх інтегратору
type InspectionResultService struct {
	tracker    *MissionTracker
	integrator *SafetyFeedbackIntegrator
	archive    ports.DetectionArchive
	threshold  float64
	log        zerolog.Logger
}

// NewInspectionResultService створює новий екземпляр InspectionResultService.
// threshold <= 0 вимикає фільтрацію за впевненістю.
func NewInspectionResultService(
	tracker *MissionTracker,
	integrator *SafetyFeedbackIntegrator,
	archive ports.DetectionArchive,
	threshold float64,
	log zerolog.Logger,
) *InspectionResultService {
	return &InspectionResultService{
		tracker:    tracker,
		integrator: integrator,
		archive:    archive,
		threshold:  threshold,
		log:        log.With().Str("component", "inspection_results").Logger(),
	}
}

// SubmitResults завершує місію і обробляє її детекції. Місія, яку вже
// завершено, повертає помилку і не впливає на коефіцієнт запасу.
func (s *InspectionResultService) SubmitResults(
	ctx context.Context,
	missionID uuid.UUID,
	findings []string,
	results []domain.DetectionResult,
) (InspectionOutcome, error) {
	mission, err := s.tracker.Complete(ctx, missionID, findings)
	if err != nil {
		return InspectionOutcome{}, err
	}

	outcome := InspectionOutcome{Mission: mission}

	if s.archive != nil && len(results) > 0 {
		key, err := s.archive.SaveDetectionBatch(ctx, missionID, results)
		if err != nil {
			s.log.Error().Err(err).Str("mission_id", missionID.String()).Msg("failed to archive detection batch")
		} else {
			outcome.ArchiveKey = key
		}
	}

	if s.threshold > 0 {
		results = inspection.FilterByConfidence(results, s.threshold)
	}

	outcome.Telemetry = s.integrator.ProcessMissionResults(ctx, mission, results)
	return outcome, nil
}

// ArchivedBatches повертає ключі збережених пакетів місії
func (s *InspectionResultService) ArchivedBatches(ctx context.Context, missionID uuid.UUID) ([]string, error) {
	if _, err := s.tracker.Get(missionID); err != nil {
		return nil, err
	}
	if s.archive == nil {
		return []string{}, nil
	}
	return s.archive.ListDetectionBatchKeys(ctx, missionID)
}

// ArchivedBatch відкриває збережений пакет детекцій
func (s *InspectionResultService) ArchivedBatch(ctx context.Context, objectKey string) (io.ReadCloser, error) {
	if s.archive == nil {
		return nil, domain.ErrArchiveDisabled
	}
	return s.archive.GetDetectionBatch(ctx, objectKey)
}

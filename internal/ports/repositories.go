package ports

import (
	"context"

	"dam-inspection-system/internal/domain"
)

// AuditRecorder визначає append-only сховище історії. Ядро лише дописує
// записи і ніколи їх не змінює.
type AuditRecorder interface {
	RecordTelemetry(ctx context.Context, update *domain.TelemetryUpdate) error
	RecordMission(ctx context.Context, mission *domain.InspectionMission) error
}

// AuditReader дає доступ до вже записаної історії
type AuditReader interface {
	ListTelemetry(ctx context.Context, limit int) ([]*domain.TelemetryUpdate, error)
	ListMissions(ctx context.Context, limit int) ([]*domain.InspectionMission, error)
}

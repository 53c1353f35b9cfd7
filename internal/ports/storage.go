package ports

import (
	"context"
	"io"

	"github.com/google/uuid"

	"dam-inspection-system/internal/domain"
)

// DetectionArchive визначає інтерфейс об'єктного сховища для пакетів детекцій
type DetectionArchive interface {
	// Збереження сирого пакета детекцій місії, повертає ключ об'єкта
	SaveDetectionBatch(ctx context.Context, missionID uuid.UUID, results []domain.DetectionResult) (string, error)
	GetDetectionBatch(ctx context.Context, objectKey string) (io.ReadCloser, error)
	ListDetectionBatchKeys(ctx context.Context, missionID uuid.UUID) ([]string, error)
}

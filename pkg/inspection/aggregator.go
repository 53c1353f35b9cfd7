package inspection

import (
	"dam-inspection-system/internal/domain"
)

// DefaultConfidenceThreshold поріг впевненості сервісу комп'ютерного зору
const DefaultConfidenceThreshold = 0.7

// Summary агреговані результати детекцій
type Summary struct {
	TotalIssues   int                          `json:"total_issues"`
	MaxSeverity   domain.Severity              `json:"max_severity"`
	CountsByType  map[domain.DetectionType]int `json:"counts_by_type"`
	CriticalCount int                          `json:"critical_count"`
}

// Count повертає кількість детекцій заданого класу
func (s Summary) Count(t domain.DetectionType) int {
	return s.CountsByType[t]
}

// Aggregate рахує детекції в усіх кадрах пакета. Порожній пакет є штатним
// результатом: MaxSeverity = low, усі лічильники нульові.
func Aggregate(results []domain.DetectionResult) Summary {
	summary := Summary{
		MaxSeverity:  domain.SeverityLow,
		CountsByType: make(map[domain.DetectionType]int),
	}

	for _, result := range results {
		for _, detection := range result.Detections {
			summary.TotalIssues++
			summary.CountsByType[detection.Type]++

			if detection.Severity == domain.SeverityCritical {
				summary.CriticalCount++
			}
			if detection.Severity > summary.MaxSeverity {
				summary.MaxSeverity = detection.Severity
			}
		}
	}

	return summary
}

// FilterByConfidence відкидає детекції з впевненістю нижче порогу.
// Кадри без жодної детекції зберігаються, щоб не губити frame id.
func FilterByConfidence(results []domain.DetectionResult, threshold float64) []domain.DetectionResult {
	out := make([]domain.DetectionResult, 0, len(results))
	for _, result := range results {
		filtered := result
		filtered.Detections = nil
		for _, detection := range result.Detections {
			if detection.Confidence >= threshold {
				filtered.Detections = append(filtered.Detections, detection)
			}
		}
		out = append(out, filtered)
	}
	return out
}

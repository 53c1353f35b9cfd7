package stability

import (
	"math"

	"dam-inspection-system/internal/domain"
)

const (
	// MinSafetyFactor нижня межа розрахункового коефіцієнта
	MinSafetyFactor = 0.5

	baseSafetyFactor    = 1.8
	referenceWaterLevel = 100.0
	waterLevelDivisor   = 50.0
	upliftDivisor       = 10.0
)

// Пороги пікового прискорення ґрунту, g
const (
	PGALowThreshold      = 0.02
	PGAModerateThreshold = 0.05
	PGAHighThreshold     = 0.15
)

// BaselineSafetyFactor груба модель коефіцієнта запасу без нижньої межі
func BaselineSafetyFactor(waterLevel, upliftPressure float64) float64 {
	return baseSafetyFactor + (referenceWaterLevel-waterLevel)/waterLevelDivisor - upliftPressure/upliftDivisor
}

// FloorSafetyFactor обмежує коефіцієнт знизу. NaN теж зводиться до межі,
// щоб перерахунок був визначений на всій області входів.
func FloorSafetyFactor(factor float64) float64 {
	if math.IsNaN(factor) || factor < MinSafetyFactor {
		return MinSafetyFactor
	}
	return factor
}

// ClassifySeismic визначає клас активності за піковим прискоренням
func ClassifySeismic(pga float64) domain.SeismicActivity {
	switch {
	case pga < PGALowThreshold:
		return domain.SeismicNone
	case pga < PGAModerateThreshold:
		return domain.SeismicLow
	case pga < PGAHighThreshold:
		return domain.SeismicModerate
	default:
		return domain.SeismicHigh
	}
}

// DeriveStatus перевіряє пороги по черзі, перший збіг перемагає
func DeriveStatus(safetyFactor float64, seismic domain.SeismicActivity) domain.StabilityStatus {
	switch {
	case safetyFactor >= 1.5 && seismic == domain.SeismicNone:
		return domain.StabilitySafe
	case safetyFactor >= 1.2 && seismic <= domain.SeismicLow:
		return domain.StabilityMonitoring
	case safetyFactor >= 1.0:
		return domain.StabilityWarning
	default:
		return domain.StabilityCritical
	}
}

// MeanPressure середній тиск по всіх п'єзометрах, 0 якщо їх немає
func MeanPressure(readings map[string]domain.PiezometerData) float64 {
	if len(readings) == 0 {
		return 0
	}
	sum := 0.0
	for _, r := range readings {
		sum += r.Pressure
	}
	return sum / float64(len(readings))
}

// MaxPGA максимальне прискорення серед усіх станцій
func MaxPGA(readings map[string]domain.SeismicData) float64 {
	peak := 0.0
	for _, r := range readings {
		if r.PeakGroundAcceleration > peak {
			peak = r.PeakGroundAcceleration
		}
	}
	return peak
}

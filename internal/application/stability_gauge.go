package application

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"dam-inspection-system/internal/domain"
	"dam-inspection-system/internal/ports"
	"dam-inspection-system/pkg/stability"
)

// DefaultWaterLevel початковий рівень води, м
const DefaultWaterLevel = 100.0

// StabilityGauge підтримує поточний стан стійкості однієї споруди. Усі
// зміни серіалізуються одним м'ютексом, тому перерахунок ніколи не бачить
// проміжного стану.
type StabilityGauge struct {
	mu          sync.Mutex
	piezometers map[string]domain.PiezometerData
	seismic     map[string]domain.SeismicData
	waterLevel  float64
	multiplier  float64
	state       domain.DamStabilityGauge

	alerts    ports.AlertPublisher
	observers []ports.GaugeObserver
	metrics   ports.Metrics
	now       func() time.Time
	log       zerolog.Logger
}

// NewStabilityGauge створює новий екземпляр StabilityGauge
func NewStabilityGauge(
	waterLevel float64,
	alerts ports.AlertPublisher,
	metrics ports.Metrics,
	log zerolog.Logger,
	observers ...ports.GaugeObserver,
) *StabilityGauge {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	g := &StabilityGauge{
		piezometers: make(map[string]domain.PiezometerData),
		seismic:     make(map[string]domain.SeismicData),
		waterLevel:  waterLevel,
		multiplier:  1,
		alerts:      alerts,
		observers:   observers,
		metrics:     metrics,
		now:         time.Now,
		log:         log.With().Str("component", "stability_gauge").Logger(),
	}
	g.recompute(g.now())
	return g
}

// Snapshot повертає поточний стан
func (g *StabilityGauge) Snapshot() domain.DamStabilityGauge {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// IngestPiezometer оновлює показник п'єзометра і перераховує стан
func (g *StabilityGauge) IngestPiezometer(ctx context.Context, reading domain.PiezometerData) domain.DamStabilityGauge {
	g.mu.Lock()
	reading.Timestamp = g.stamp(reading.Timestamp)
	if prev, ok := g.piezometers[reading.SensorID]; ok && reading.Timestamp.Before(prev.Timestamp) {
		snapshot := g.state
		g.mu.Unlock()
		return snapshot
	}
	g.piezometers[reading.SensorID] = reading
	snapshot := g.recompute(reading.Timestamp)
	g.mu.Unlock()

	g.notify(snapshot)
	return snapshot
}

// IngestSeismic оновлює показник сейсмостанції і перераховує стан.
// Показник рівня moderate і вище додатково публікує сповіщення.
func (g *StabilityGauge) IngestSeismic(ctx context.Context, reading domain.SeismicData) domain.DamStabilityGauge {
	g.mu.Lock()
	reading.Timestamp = g.stamp(reading.Timestamp)
	stale := false
	if prev, ok := g.seismic[reading.StationID]; ok && reading.Timestamp.Before(prev.Timestamp) {
		stale = true
	} else {
		g.seismic[reading.StationID] = reading
	}
	var snapshot domain.DamStabilityGauge
	if stale {
		snapshot = g.state
	} else {
		snapshot = g.recompute(reading.Timestamp)
	}
	g.mu.Unlock()

	if !stale {
		g.notify(snapshot)
	}

	if activity := stability.ClassifySeismic(reading.PeakGroundAcceleration); activity >= domain.SeismicModerate {
		g.publishSeismic(ctx, reading, activity)
	}

	return snapshot
}

// IngestWaterLevel оновлює рівень води у водосховищі
func (g *StabilityGauge) IngestWaterLevel(ctx context.Context, reading domain.WaterLevelData) domain.DamStabilityGauge {
	g.mu.Lock()
	g.waterLevel = reading.Level
	snapshot := g.recompute(g.stamp(reading.Timestamp))
	g.mu.Unlock()

	g.notify(snapshot)
	return snapshot
}

// ApplyAdjustment накопичує поправку у множнику інспекцій (multiplier *= 1 + delta)
// і перераховує коефіцієнт як floor(baseline * multiplier). Та сама формула
// діє для перерахунків за сенсорами, тож коефіцієнт не змінюється від
// повторного надходження однакових показів.
func (g *StabilityGauge) ApplyAdjustment(ctx context.Context, delta float64) domain.DamStabilityGauge {
	g.mu.Lock()
	g.multiplier *= 1 + delta
	snapshot := g.recompute(g.now())
	g.mu.Unlock()

	g.log.Info().
		Float64("delta", delta).
		Float64("safety_factor", snapshot.SafetyFactor).
		Stringer("status", snapshot.Status).
		Msg("safety factor adjusted")

	g.notify(snapshot)
	return snapshot
}

// ResetInspectionPenalty скидає накопичені поправки після усунення дефектів
func (g *StabilityGauge) ResetInspectionPenalty(ctx context.Context) domain.DamStabilityGauge {
	g.mu.Lock()
	g.multiplier = 1
	snapshot := g.recompute(g.now())
	g.mu.Unlock()

	g.log.Info().Float64("safety_factor", snapshot.SafetyFactor).Msg("inspection penalty reset")

	g.notify(snapshot)
	return snapshot
}

// recompute перераховує похідні поля. Викликається під g.mu.
func (g *StabilityGauge) recompute(at time.Time) domain.DamStabilityGauge {
	uplift := stability.MeanPressure(g.piezometers)
	activity := stability.ClassifySeismic(stability.MaxPGA(g.seismic))
	factor := stability.FloorSafetyFactor(stability.BaselineSafetyFactor(g.waterLevel, uplift) * g.multiplier)

	g.state = domain.DamStabilityGauge{
		SafetyFactor:         factor,
		WaterLevel:           g.waterLevel,
		UpliftPressure:       uplift,
		SeismicActivity:      activity,
		Status:               stability.DeriveStatus(factor, activity),
		InspectionMultiplier: g.multiplier,
		LastUpdate:           at,
	}
	return g.state
}

func (g *StabilityGauge) stamp(ts time.Time) time.Time {
	if ts.IsZero() {
		return g.now()
	}
	return ts
}

func (g *StabilityGauge) notify(snapshot domain.DamStabilityGauge) {
	for _, o := range g.observers {
		o.ObserveGauge(snapshot)
	}
}

func (g *StabilityGauge) publishSeismic(ctx context.Context, reading domain.SeismicData, activity domain.SeismicActivity) {
	alert := domain.SeismicAlert{
		StationID:              reading.StationID,
		PeakGroundAcceleration: reading.PeakGroundAcceleration,
		Frequency:              reading.Frequency,
		Activity:               activity,
		RecommendedActions:     domain.SeismicActions(activity),
		Timestamp:              reading.Timestamp,
	}

	g.metrics.SeismicAlert()
	g.log.Warn().
		Str("station_id", reading.StationID).
		Float64("pga", reading.PeakGroundAcceleration).
		Stringer("activity", activity).
		Msg("seismic alert")

	if g.alerts == nil {
		return
	}
	if err := g.alerts.PublishSeismicAlert(ctx, alert); err != nil {
		g.log.Error().Err(err).Str("station_id", reading.StationID).Msg("failed to publish seismic alert")
	}
}

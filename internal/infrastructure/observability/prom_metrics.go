package observability

import (
	"math"

	"github.com/prometheus/client_golang/prometheus"

	"dam-inspection-system/internal/domain"
)

const namespace = "dam"

// PromMetrics implements ports.Metrics and ports.GaugeObserver on top of
// prometheus collectors.
type PromMetrics struct {
	dispatched   *prometheus.CounterVec
	unavailable  *prometheus.CounterVec
	finished     *prometheus.CounterVec
	telemetry    *prometheus.CounterVec
	seismic      prometheus.Counter
	critical     prometheus.Counter
	auditFailure *prometheus.CounterVec

	adjustment prometheus.Histogram

	safetyFactor   prometheus.Gauge
	upliftPressure prometheus.Gauge
	waterLevel     prometheus.Gauge
	status         prometheus.Gauge
}

// NewPromMetrics registers all collectors with reg. A nil reg falls back to
// prometheus.DefaultRegisterer.
func NewPromMetrics(reg prometheus.Registerer) *PromMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &PromMetrics{
		dispatched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "missions_dispatched_total",
			Help:      "Inspection missions created, by trigger.",
		}, []string{"trigger"}),
		unavailable: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispatch_unavailable_total",
			Help:      "Dispatch requests that found no eligible idle unit.",
		}, []string{"trigger"}),
		finished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "missions_finished_total",
			Help:      "Missions that reached a terminal status.",
		}, []string{"status"}),
		telemetry: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "telemetry_updates_total",
			Help:      "Telemetry updates produced from mission results.",
		}, []string{"applied"}),
		seismic: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "seismic_alerts_total",
			Help:      "Seismic alerts raised at moderate activity or above.",
		}),
		critical: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "critical_findings_total",
			Help:      "Mission result batches with critical severity.",
		}),
		auditFailure: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audit_write_failures_total",
			Help:      "Audit records that could not be persisted.",
		}, []string{"kind"}),
		adjustment: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "safety_adjustment_magnitude",
			Help:      "Magnitude of safety factor adjustments applied to the gauge.",
			Buckets:   []float64{0.01, 0.02, 0.05, 0.1, 0.15, 0.2, 0.3},
		}),
		safetyFactor: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "safety_factor",
			Help:      "Current structural safety factor.",
		}),
		upliftPressure: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "uplift_pressure",
			Help:      "Mean piezometer pressure.",
		}),
		waterLevel: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "water_level_meters",
			Help:      "Reservoir water level.",
		}),
		status: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stability_status",
			Help:      "Stability status: 0 safe, 1 monitoring, 2 warning, 3 critical.",
		}),
	}

	reg.MustRegister(
		m.dispatched, m.unavailable, m.finished, m.telemetry,
		m.seismic, m.critical, m.auditFailure, m.adjustment,
		m.safetyFactor, m.upliftPressure, m.waterLevel, m.status,
	)
	return m
}

func (m *PromMetrics) MissionDispatched(trigger domain.TriggerKind) {
	m.dispatched.WithLabelValues(trigger.String()).Inc()
}

func (m *PromMetrics) DispatchUnavailable(trigger domain.TriggerKind) {
	m.unavailable.WithLabelValues(trigger.String()).Inc()
}

func (m *PromMetrics) MissionFinished(status domain.MissionStatus) {
	m.finished.WithLabelValues(status.String()).Inc()
}

func (m *PromMetrics) TelemetryProcessed(adjustment float64, applied bool) {
	if applied {
		m.telemetry.WithLabelValues("true").Inc()
		m.adjustment.Observe(math.Abs(adjustment))
		return
	}
	m.telemetry.WithLabelValues("false").Inc()
}

func (m *PromMetrics) SeismicAlert() { m.seismic.Inc() }

func (m *PromMetrics) CriticalFindings() { m.critical.Inc() }

func (m *PromMetrics) AuditFailure(kind string) {
	m.auditFailure.WithLabelValues(kind).Inc()
}

// ObserveGauge mirrors the latest gauge snapshot.
func (m *PromMetrics) ObserveGauge(snapshot domain.DamStabilityGauge) {
	m.safetyFactor.Set(snapshot.SafetyFactor)
	m.upliftPressure.Set(snapshot.UpliftPressure)
	m.waterLevel.Set(snapshot.WaterLevel)
	m.status.Set(float64(snapshot.Status))
}

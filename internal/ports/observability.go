package ports

import "dam-inspection-system/internal/domain"

// Metrics лічильники та показники ядра
type Metrics interface {
	MissionDispatched(trigger domain.TriggerKind)
	DispatchUnavailable(trigger domain.TriggerKind)
	MissionFinished(status domain.MissionStatus)
	TelemetryProcessed(adjustment float64, applied bool)
	SeismicAlert()
	CriticalFindings()
	AuditFailure(kind string)
}

// GaugeObserver отримує знімок стану стійкості після кожного перерахунку
type GaugeObserver interface {
	ObserveGauge(snapshot domain.DamStabilityGauge)
}

// NopMetrics порожня реалізація Metrics
type NopMetrics struct{}

func (NopMetrics) MissionDispatched(domain.TriggerKind)   {}
func (NopMetrics) DispatchUnavailable(domain.TriggerKind) {}
func (NopMetrics) MissionFinished(domain.MissionStatus)   {}
func (NopMetrics) TelemetryProcessed(float64, bool)       {}
func (NopMetrics) SeismicAlert()                          {}
func (NopMetrics) CriticalFindings()                      {}
func (NopMetrics) AuditFailure(string)                    {}

package domain

import (
	"time"

	"github.com/google/uuid"
)

// Location координати пристрою відносно осі греблі, метри
type Location struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// RoboticUnit представляє роботизований пристрій інспекції
type RoboticUnit struct {
	ID            string       `json:"id"`
	Type          UnitType     `json:"type"`
	Status        UnitStatus   `json:"status"`
	Capabilities  []Capability `json:"capabilities"`
	BatteryLevel  float64      `json:"battery_level"`
	Location      Location     `json:"location"`
	LastMission   *time.Time   `json:"last_mission"`
	HoursOperated float64      `json:"hours_operated"`
}

// HasCapability перевіряє наявність обладнання
func (u RoboticUnit) HasCapability(c Capability) bool {
	for _, have := range u.Capabilities {
		if have == c {
			return true
		}
	}
	return false
}

// CanInspect повідомляє, чи пристрій несе хоча б один сенсор огляду
func (u RoboticUnit) CanInspect() bool {
	for _, c := range u.Capabilities {
		if c.IsInspectionSensor() {
			return true
		}
	}
	return false
}

// Clone повертає копію без спільних зрізів та вказівників
func (u RoboticUnit) Clone() RoboticUnit {
	out := u
	out.Capabilities = make([]Capability, len(u.Capabilities))
	copy(out.Capabilities, u.Capabilities)
	if u.LastMission != nil {
		t := *u.LastMission
		out.LastMission = &t
	}
	return out
}

// InspectionMission представляє місію огляду, призначену одному пристрою
type InspectionMission struct {
	ID          uuid.UUID     `json:"id"`
	UnitID      string        `json:"unit_id"`
	UnitType    UnitType      `json:"unit_type"`
	Trigger     TriggerKind   `json:"trigger"`
	TargetArea  string        `json:"target_area"`
	Priority    Priority      `json:"priority"`
	Status      MissionStatus `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	StartedAt   *time.Time    `json:"started_at"`
	CompletedAt *time.Time    `json:"completed_at"`
	Findings    []string      `json:"findings"`
	AbortReason string        `json:"abort_reason,omitempty"`
}

// Clone повертає копію місії
func (m InspectionMission) Clone() InspectionMission {
	out := m
	out.Findings = make([]string, len(m.Findings))
	copy(out.Findings, m.Findings)
	if m.StartedAt != nil {
		t := *m.StartedAt
		out.StartedAt = &t
	}
	if m.CompletedAt != nil {
		t := *m.CompletedAt
		out.CompletedAt = &t
	}
	return out
}

// BoundingBox область кадру з дефектом, пікселі
type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Detection окремий дефект, знайдений на кадрі
type Detection struct {
	Type        DetectionType `json:"type"`
	Confidence  float64       `json:"confidence" validate:"gte=0,lte=1"`
	BoundingBox BoundingBox   `json:"bounding_box"`
	Severity    Severity      `json:"severity"`
	Description string        `json:"description,omitempty"`
}

// DetectionResult результат аналізу одного кадру відео
type DetectionResult struct {
	FrameID        int64         `json:"frame_id"`
	Timestamp      time.Time     `json:"timestamp"`
	Source         string        `json:"source,omitempty"`
	Detections     []Detection   `json:"detections" validate:"dive"`
	ProcessingTime time.Duration `json:"processing_time,omitempty"`
}

// PiezometerData показник п'єзометра
type PiezometerData struct {
	SensorID  string    `json:"sensor_id" validate:"required"`
	Location  string    `json:"location"`
	Pressure  float64   `json:"pressure"` // бар
	Elevation float64   `json:"elevation"`
	Timestamp time.Time `json:"timestamp"`
}

// SeismicData показник сейсмостанції
type SeismicData struct {
	StationID              string    `json:"station_id" validate:"required"`
	PeakGroundAcceleration float64   `json:"peak_ground_acceleration" validate:"gte=0"` // g
	Frequency              float64   `json:"frequency"`                                 // Гц
	Timestamp              time.Time `json:"timestamp"`
}

// WaterLevelData рівень води у водосховищі
type WaterLevelData struct {
	GaugeID   string    `json:"gauge_id"`
	Level     float64   `json:"level"` // м над основою
	Timestamp time.Time `json:"timestamp"`
}

// DamStabilityGauge знімок стану стійкості споруди
type DamStabilityGauge struct {
	SafetyFactor         float64         `json:"safety_factor"`
	WaterLevel           float64         `json:"water_level"`
	UpliftPressure       float64         `json:"uplift_pressure"`
	SeismicActivity      SeismicActivity `json:"seismic_activity"`
	Status               StabilityStatus `json:"status"`
	InspectionMultiplier float64         `json:"inspection_multiplier"`
	LastUpdate           time.Time       `json:"last_update"`
}

// TelemetryFindings підсумок знахідок однієї місії
type TelemetryFindings struct {
	StructuralIssues       int      `json:"structural_issues"`
	Severity               Severity `json:"severity"`
	AffectedArea           string   `json:"affected_area"`
	SafetyFactorAdjustment float64  `json:"safety_factor_adjustment"`
}

// TelemetryUpdate аудиторський запис одного циклу зворотного зв'язку
type TelemetryUpdate struct {
	ID        uuid.UUID         `json:"id"`
	Timestamp time.Time         `json:"timestamp"`
	Source    UnitType          `json:"source"`
	MissionID uuid.UUID         `json:"mission_id"`
	Findings  TelemetryFindings `json:"findings"`
	Applied   bool              `json:"applied"`
}

// FleetStatus зведення стану флоту
type FleetStatus struct {
	Total          int `json:"total"`
	Idle           int `json:"idle"`
	Deployed       int `json:"deployed"`
	Charging       int `json:"charging"`
	Fault          int `json:"fault"`
	ActiveMissions int `json:"active_missions"`
}

// TelemetryStatistics зведення журналу телеметрії
type TelemetryStatistics struct {
	TotalUpdates        int     `json:"total_updates"`
	AppliedUpdates      int     `json:"applied_updates"`
	CriticalFindings    int     `json:"critical_findings"`
	AvgSafetyAdjustment float64 `json:"avg_safety_adjustment"`
}

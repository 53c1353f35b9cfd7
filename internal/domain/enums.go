package domain

import (
	"fmt"
	"strings"
)

// Впорядковані переліки. Порядок констант визначає порядок порівняння,
// тому нові значення додаються лише в кінець відповідного блоку.

// UnitType тип роботизованого пристрою
type UnitType int

const (
	UnitTypeUnderwaterVehicle UnitType = iota
	UnitTypeAerialVehicle
	UnitTypeCleaningArm
	UnitTypeCrawler
)

var unitTypeNames = []string{"underwater-vehicle", "aerial-vehicle", "cleaning-arm", "crawler"}

// UnitStatus операційний статус пристрою
type UnitStatus int

const (
	UnitStatusIdle UnitStatus = iota
	UnitStatusDeployed
	UnitStatusInspecting
	UnitStatusCharging
	UnitStatusFault
)

var unitStatusNames = []string{"idle", "deployed", "inspecting", "charging", "fault"}

// TriggerKind причина створення місії
type TriggerKind int

const (
	TriggerThermalAnomaly TriggerKind = iota
	TriggerSeepageChange
	TriggerScheduled
	TriggerManual
)

var triggerKindNames = []string{"thermal-anomaly", "seepage-change", "scheduled", "manual"}

// Priority пріоритет місії: low < medium < high < critical
type Priority int

const (
	PriorityLow Priority = iota
	PriorityMedium
	PriorityHigh
	PriorityCritical
)

var priorityNames = []string{"low", "medium", "high", "critical"}

// MissionStatus статус місії; переходи лише вперед
type MissionStatus int

const (
	MissionStatusQueued MissionStatus = iota
	MissionStatusInProgress
	MissionStatusCompleted
	MissionStatusAborted
)

var missionStatusNames = []string{"queued", "in-progress", "completed", "aborted"}

// DetectionType клас дефекту, який повертає сервіс комп'ютерного зору
type DetectionType int

const (
	DetectionCrack DetectionType = iota
	DetectionCorrosion
	DetectionDebris
	DetectionSpalling
	DetectionEfflorescence
)

var detectionTypeNames = []string{"crack", "corrosion", "debris", "spalling", "efflorescence"}

// Severity тяжкість окремої детекції: low < medium < high < critical
type Severity int

const (
	SeverityLow Severity = iota
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

var severityNames = []string{"low", "medium", "high", "critical"}

// SeismicActivity клас сейсмічної активності: none < low < moderate < high
type SeismicActivity int

const (
	SeismicNone SeismicActivity = iota
	SeismicLow
	SeismicModerate
	SeismicHigh
)

var seismicActivityNames = []string{"none", "low", "moderate", "high"}

// StabilityStatus узагальнений стан споруди: safe < monitoring < warning < critical
type StabilityStatus int

const (
	StabilitySafe StabilityStatus = iota
	StabilityMonitoring
	StabilityWarning
	StabilityCritical
)

var stabilityStatusNames = []string{"safe", "monitoring", "warning", "critical"}

// Capability сенсорне обладнання пристрою
type Capability int

const (
	CapabilityThermalCamera Capability = iota
	CapabilityVisualCamera
	CapabilitySonar
	CapabilityLidar
)

var capabilityNames = []string{"thermal-camera", "visual-camera", "sonar", "lidar"}

func enumName(names []string, v int) string {
	if v < 0 || v >= len(names) {
		return fmt.Sprintf("unknown(%d)", v)
	}
	return names[v]
}

func parseEnum(names []string, kind, s string) (int, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range names {
		if name == s {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: %s %q", ErrUnknownValue, kind, s)
}

func marshalEnum(names []string, kind string, v int) ([]byte, error) {
	if v < 0 || v >= len(names) {
		return nil, fmt.Errorf("%w: %s %d", ErrUnknownValue, kind, v)
	}
	return []byte(names[v]), nil
}

func (t UnitType) String() string { return enumName(unitTypeNames, int(t)) }
func (t UnitType) MarshalText() ([]byte, error) {
	return marshalEnum(unitTypeNames, "unit type", int(t))
}
func (t *UnitType) UnmarshalText(b []byte) error {
	v, err := ParseUnitType(string(b))
	if err == nil {
		*t = v
	}
	return err
}

// ParseUnitType розбирає назву типу пристрою
func ParseUnitType(s string) (UnitType, error) {
	v, err := parseEnum(unitTypeNames, "unit type", s)
	return UnitType(v), err
}

func (s UnitStatus) String() string { return enumName(unitStatusNames, int(s)) }
func (s UnitStatus) MarshalText() ([]byte, error) {
	return marshalEnum(unitStatusNames, "unit status", int(s))
}
func (s *UnitStatus) UnmarshalText(b []byte) error {
	v, err := ParseUnitStatus(string(b))
	if err == nil {
		*s = v
	}
	return err
}

// ParseUnitStatus розбирає назву статусу пристрою
func ParseUnitStatus(s string) (UnitStatus, error) {
	v, err := parseEnum(unitStatusNames, "unit status", s)
	return UnitStatus(v), err
}

// IsBusy повідомляє, чи пристрій зайнятий відкритою місією
func (s UnitStatus) IsBusy() bool {
	return s == UnitStatusDeployed || s == UnitStatusInspecting
}

func (k TriggerKind) String() string { return enumName(triggerKindNames, int(k)) }
func (k TriggerKind) MarshalText() ([]byte, error) {
	return marshalEnum(triggerKindNames, "trigger", int(k))
}
func (k *TriggerKind) UnmarshalText(b []byte) error {
	v, err := ParseTriggerKind(string(b))
	if err == nil {
		*k = v
	}
	return err
}

// ParseTriggerKind розбирає назву тригера місії
func ParseTriggerKind(s string) (TriggerKind, error) {
	v, err := parseEnum(triggerKindNames, "trigger", s)
	return TriggerKind(v), err
}

func (p Priority) String() string { return enumName(priorityNames, int(p)) }
func (p Priority) MarshalText() ([]byte, error) {
	return marshalEnum(priorityNames, "priority", int(p))
}
func (p *Priority) UnmarshalText(b []byte) error {
	v, err := ParsePriority(string(b))
	if err == nil {
		*p = v
	}
	return err
}

// ParsePriority розбирає назву пріоритету
func ParsePriority(s string) (Priority, error) {
	v, err := parseEnum(priorityNames, "priority", s)
	return Priority(v), err
}

func (s MissionStatus) String() string { return enumName(missionStatusNames, int(s)) }
func (s MissionStatus) MarshalText() ([]byte, error) {
	return marshalEnum(missionStatusNames, "mission status", int(s))
}
func (s *MissionStatus) UnmarshalText(b []byte) error {
	v, err := ParseMissionStatus(string(b))
	if err == nil {
		*s = v
	}
	return err
}

// ParseMissionStatus розбирає назву статусу місії
func ParseMissionStatus(s string) (MissionStatus, error) {
	v, err := parseEnum(missionStatusNames, "mission status", s)
	return MissionStatus(v), err
}

// IsTerminal повідомляє, чи місія вже завершена або перервана
func (s MissionStatus) IsTerminal() bool {
	return s == MissionStatusCompleted || s == MissionStatusAborted
}

func (t DetectionType) String() string { return enumName(detectionTypeNames, int(t)) }
func (t DetectionType) MarshalText() ([]byte, error) {
	return marshalEnum(detectionTypeNames, "detection type", int(t))
}
func (t *DetectionType) UnmarshalText(b []byte) error {
	v, err := ParseDetectionType(string(b))
	if err == nil {
		*t = v
	}
	return err
}

// ParseDetectionType розбирає назву класу дефекту
func ParseDetectionType(s string) (DetectionType, error) {
	v, err := parseEnum(detectionTypeNames, "detection type", s)
	return DetectionType(v), err
}

func (s Severity) String() string { return enumName(severityNames, int(s)) }
func (s Severity) MarshalText() ([]byte, error) {
	return marshalEnum(severityNames, "severity", int(s))
}
func (s *Severity) UnmarshalText(b []byte) error {
	v, err := ParseSeverity(string(b))
	if err == nil {
		*s = v
	}
	return err
}

// ParseSeverity розбирає назву тяжкості
func ParseSeverity(s string) (Severity, error) {
	v, err := parseEnum(severityNames, "severity", s)
	return Severity(v), err
}

func (a SeismicActivity) String() string { return enumName(seismicActivityNames, int(a)) }
func (a SeismicActivity) MarshalText() ([]byte, error) {
	return marshalEnum(seismicActivityNames, "seismic activity", int(a))
}
func (a *SeismicActivity) UnmarshalText(b []byte) error {
	v, err := parseEnum(seismicActivityNames, "seismic activity", string(b))
	if err == nil {
		*a = SeismicActivity(v)
	}
	return err
}

func (s StabilityStatus) String() string { return enumName(stabilityStatusNames, int(s)) }
func (s StabilityStatus) MarshalText() ([]byte, error) {
	return marshalEnum(stabilityStatusNames, "stability status", int(s))
}
func (s *StabilityStatus) UnmarshalText(b []byte) error {
	v, err := parseEnum(stabilityStatusNames, "stability status", string(b))
	if err == nil {
		*s = StabilityStatus(v)
	}
	return err
}

func (c Capability) String() string { return enumName(capabilityNames, int(c)) }
func (c Capability) MarshalText() ([]byte, error) {
	return marshalEnum(capabilityNames, "capability", int(c))
}
func (c *Capability) UnmarshalText(b []byte) error {
	v, err := ParseCapability(string(b))
	if err == nil {
		*c = v
	}
	return err
}

// ParseCapability розбирає назву сенсорного обладнання
func ParseCapability(s string) (Capability, error) {
	v, err := parseEnum(capabilityNames, "capability", s)
	return Capability(v), err
}

// IsInspectionSensor повідомляє, чи обладнання придатне для огляду споруди
func (c Capability) IsInspectionSensor() bool {
	switch c {
	case CapabilityThermalCamera, CapabilityVisualCamera, CapabilitySonar, CapabilityLidar:
		return true
	}
	return false
}

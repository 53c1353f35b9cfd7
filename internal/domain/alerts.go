package domain

import (
	"time"

	"github.com/google/uuid"
)

// SeismicAlert сповіщення про сейсмічну активність рівня moderate і вище
type SeismicAlert struct {
	StationID              string          `json:"station_id"`
	PeakGroundAcceleration float64         `json:"peak_ground_acceleration"`
	Frequency              float64         `json:"frequency"`
	Activity               SeismicActivity `json:"activity"`
	RecommendedActions     []string        `json:"recommended_actions"`
	Timestamp              time.Time       `json:"timestamp"`
}

// CriticalFindingsAlert сповіщення про критичні знахідки інспекції
type CriticalFindingsAlert struct {
	Source             UnitType  `json:"source"`
	MissionID          uuid.UUID `json:"mission_id"`
	AffectedArea       string    `json:"affected_area"`
	IssueCount         int       `json:"issue_count"`
	RecommendedActions []string  `json:"recommended_actions"`
	Timestamp          time.Time `json:"timestamp"`
}

// CriticalFindingsActions рекомендації при критичних структурних знахідках
func CriticalFindingsActions() []string {
	return []string{
		"Schedule immediate structural engineering inspection",
		"Consider reducing reservoir level as precaution",
		"Increase monitoring frequency to daily",
	}
}

// SeismicActions рекомендації залежно від класу активності
func SeismicActions(activity SeismicActivity) []string {
	switch {
	case activity >= SeismicHigh:
		return []string{
			"Launch emergency post-earthquake inspection of the dam body",
			"Inspect galleries and contraction joints for new cracking",
			"Prepare for controlled reservoir drawdown",
			"Verify piezometer and pendulum readings against baseline",
		}
	case activity == SeismicModerate:
		return []string{
			"Inspect galleries and contraction joints for new cracking",
			"Verify piezometer and pendulum readings against baseline",
		}
	}
	return nil
}

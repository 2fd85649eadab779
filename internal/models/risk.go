package models

type RiskLevel string

const (
	RiskLow     RiskLevel = "Low"
	RiskMedium  RiskLevel = "Medium"
	RiskHigh    RiskLevel = "High"
	RiskUnknown RiskLevel = "Unknown" // sentinel for missing weather, not an error
	RiskError   RiskLevel = "Error"   // upstream route resolution failed
)

// Level thresholds. Every level derivation in the codebase goes through
// LevelForScore so these cannot drift between call sites.
const (
	HighRiskThreshold   = 60
	MediumRiskThreshold = 30
)

func LevelForScore(score int) RiskLevel {
	switch {
	case score >= HighRiskThreshold:
		return RiskHigh
	case score >= MediumRiskThreshold:
		return RiskMedium
	default:
		return RiskLow
	}
}

// rank orders levels for monotonic escalation. Unknown and Error never
// participate in escalation.
func (l RiskLevel) rank() int {
	switch l {
	case RiskHigh:
		return 3
	case RiskMedium:
		return 2
	case RiskLow:
		return 1
	default:
		return 0
	}
}

// MaxLevel returns the more severe of two levels.
func MaxLevel(a, b RiskLevel) RiskLevel {
	if b.rank() > a.rank() {
		return b
	}
	return a
}

// RiskAssessment is the outcome of assessing one weather snapshot against
// one hazard-type label. Score is always within [0,100].
type RiskAssessment struct {
	Level   RiskLevel `json:"level"`
	Score   int       `json:"score"`
	Factors []string  `json:"factors"`
}

type RoutePoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// RouteInfo is the resolved route handed to the aggregator: the polyline
// plus the human-readable distance/duration strings from the directions
// provider.
type RouteInfo struct {
	Points       []RoutePoint `json:"points"`
	DistanceText string       `json:"distance_text"`
	DurationText string       `json:"duration_text"`
}

// SampledPoint pairs one sampled route point with the weather observed
// there and its risk assessment.
type SampledPoint struct {
	Point   RoutePoint      `json:"point"`
	Weather WeatherSnapshot `json:"weather"`
	Risk    RiskAssessment  `json:"risk"`
}

// RouteRiskResult is the full outcome of one route analysis. Superseded in
// full on each new request; never persisted.
type RouteRiskResult struct {
	RiskLevel           RiskLevel      `json:"risk_level"`
	RiskScore           int            `json:"risk_score"`
	HighRiskZoneCount   int            `json:"high_risk_zone_count"`
	MediumRiskZoneCount int            `json:"medium_risk_zone_count"`
	HazardsOnRoute      []Hazard       `json:"hazards_on_route"`
	Explanation         string         `json:"explanation"`
	SampledPoints       []SampledPoint `json:"sampled_points"`
}

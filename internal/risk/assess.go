package risk

import (
	"github.com/miroads/go-road-risk/internal/models"
)

// Hazard-type labels recognized by Assess. Any other label yields a
// zero-contribution assessment (no signal, not an error).
const (
	LabelIcyRoads           = "Icy Roads"
	LabelFloodRisk          = "Flood Risk"
	LabelLowVisibility      = "Low Visibility"
	LabelHighWindRisk       = "High Wind Risk"
	LabelAccidentLikelihood = "Accident Likelihood"
)

// Hand-tuned scoring weights. There is no documented calibration behind
// them, so they stay as named constants rather than a fitted model.
const (
	icyFreezePoints     = 40
	icyPrecipPoints     = 30
	icyHumidityPoints   = 20
	floodPrecipPoints   = 50
	floodHumidityPoints = 20
	visUnderMilePoints  = 60
	visReducedPoints    = 40
	visFogPoints        = 30
	windSeverePoints    = 60
	windStrongPoints    = 40
	accidentCondPoints  = 30
	accidentVisPoints   = 25
	accidentWindPoints  = 20
)

const maxScore = 100

// Assess scores one weather snapshot against one hazard-type label.
// A nil snapshot yields the Unknown sentinel. The factor order is fixed:
// the first factor is surfaced verbatim in route explanations.
func Assess(w *models.WeatherSnapshot, hazardType string) models.RiskAssessment {
	if w == nil {
		return models.RiskAssessment{Level: models.RiskUnknown, Score: 0, Factors: []string{}}
	}

	score := 0
	factors := []string{}
	add := func(points int, factor string) {
		score += points
		factors = append(factors, factor)
	}

	switch hazardType {
	case LabelIcyRoads:
		if w.TemperatureF <= 32 {
			add(icyFreezePoints, "Freezing temperatures")
		}
		if w.PrecipitationInches > 0 {
			add(icyPrecipPoints, "Precipitation expected")
		}
		if w.HumidityPct > 80 {
			add(icyHumidityPoints, "High humidity")
		}

	case LabelFloodRisk:
		if w.PrecipitationInches > 0.5 {
			add(floodPrecipPoints, "Heavy precipitation")
		}
		if w.HumidityPct > 85 {
			add(floodHumidityPoints, "Saturated air")
		}

	case LabelLowVisibility:
		if w.VisibilityMiles != nil {
			if *w.VisibilityMiles < 1 {
				add(visUnderMilePoints, "Visibility under one mile")
			} else if *w.VisibilityMiles < 3 {
				add(visReducedPoints, "Reduced visibility")
			}
		}
		if w.Condition == "Fog" || w.Condition == "Mist" {
			add(visFogPoints, "Fog or mist reported")
		}

	case LabelHighWindRisk:
		if w.WindMph > 30 {
			add(windSeverePoints, "Damaging wind gusts")
		} else if w.WindMph > 20 {
			add(windStrongPoints, "Strong winds")
		}

	case LabelAccidentLikelihood:
		if w.Condition == "Rain" || w.Condition == "Snow" {
			add(accidentCondPoints, "Active rain or snow")
		}
		if w.VisibilityMiles != nil && *w.VisibilityMiles < 3 {
			add(accidentVisPoints, "Reduced visibility")
		}
		if w.WindMph > 20 {
			add(accidentWindPoints, "Strong winds")
		}
	}

	// Sum first, clamp once. Individual weights can push the raw sum past
	// the cap by construction.
	if score > maxScore {
		score = maxScore
	}

	return models.RiskAssessment{
		Level:   models.LevelForScore(score),
		Score:   score,
		Factors: factors,
	}
}

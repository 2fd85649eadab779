package risk

import (
	"fmt"
	"strings"

	"github.com/miroads/go-road-risk/internal/models"
)

// ExplainInput carries the aggregate numbers the explanation is built from.
type ExplainInput struct {
	Level           models.RiskLevel
	Score           int
	DistanceText    string
	DurationText    string
	Hazards         []models.Hazard
	HighZones       int
	MediumZones     int
	Keywords        []string
	SamplesAssessed int
}

// Explain renders the deterministic route summary. Clause order is fixed;
// each clause appears only when its condition holds.
func Explain(in ExplainInput) string {
	var b strings.Builder

	routeDesc := "route"
	if in.DistanceText != "" {
		routeDesc = fmt.Sprintf("%s route", in.DistanceText)
	}
	if in.DurationText != "" {
		fmt.Fprintf(&b, "%s risk (%d%%) detected along your %s (%s).", in.Level, in.Score, routeDesc, in.DurationText)
	} else {
		fmt.Fprintf(&b, "%s risk (%d%%) detected along your %s.", in.Level, in.Score, routeDesc)
	}

	if in.SamplesAssessed == 0 {
		b.WriteString(" Weather conditions along this route could not be assessed.")
	}

	if n := len(in.Hazards); n > 0 {
		critical := 0
		for _, h := range in.Hazards {
			if h.Type.Critical() {
				critical++
			}
		}
		if critical > 0 {
			fmt.Fprintf(&b, " %d reported %s on this route, including %d critical (accident, closure, or weather).",
				n, plural(n, "hazard", "hazards"), critical)
		} else {
			fmt.Fprintf(&b, " %d reported %s on this route.", n, plural(n, "hazard", "hazards"))
		}
	}

	if in.HighZones > 0 {
		fmt.Fprintf(&b, " %d high-risk %s identified.", in.HighZones, plural(in.HighZones, "zone", "zones"))
	}
	if in.MediumZones > 0 {
		fmt.Fprintf(&b, " %d moderate-risk %s identified.", in.MediumZones, plural(in.MediumZones, "zone", "zones"))
	}

	if len(in.Keywords) > 0 {
		kw := in.Keywords
		if len(kw) > 3 {
			kw = kw[:3]
		}
		fmt.Fprintf(&b, " Key concerns: %s.", strings.Join(kw, ", "))
	}

	switch in.Level {
	case models.RiskHigh:
		b.WriteString(" Consider delaying travel or taking an alternate route.")
	case models.RiskMedium:
		b.WriteString(" Drive with caution and allow extra time.")
	default:
		b.WriteString(" Normal driving precautions apply.")
	}
	if len(in.Hazards) > 0 {
		b.WriteString(" Stay alert near reported hazard locations.")
	}

	return b.String()
}

func plural(n int, singular, pluralForm string) string {
	if n == 1 {
		return singular
	}
	return pluralForm
}

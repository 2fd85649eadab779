package risk

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/miroads/go-road-risk/internal/geo"
	"github.com/miroads/go-road-risk/internal/models"
	"github.com/miroads/go-road-risk/internal/textanalysis"
)

// WeatherProvider returns current conditions at a point, or nil on any
// failure. The aggregator never distinguishes failure reasons.
type WeatherProvider interface {
	CurrentWeather(ctx context.Context, lat, lng float64) *models.WeatherSnapshot
}

// HazardHistory counts past hazards of given types recorded since a cutoff
// inside a bounding box. Used for the historical-pattern escalation.
type HazardHistory interface {
	CountRecentNear(ctx context.Context, types []models.HazardType, since time.Time, bounds geo.Bounds) (int, error)
}

// Analyzer is the optional text-analysis enrichment. A nil Analyzer, or a
// nil result from Analyze, disables enrichment without affecting
// correctness.
type Analyzer interface {
	Analyze(ctx context.Context, text string) *textanalysis.Insights
}

// Escalation weights. Additive and monotonic only: escalation can raise
// Low to Medium to High but never lowers a level once set.
const (
	hazardOnRoutePoints  = 5
	criticalHazardPoints = 15

	// Historical accident-pattern nudge: per recent accident-type hazard
	// near the route, capped so a noisy backlog cannot dominate live
	// conditions. Capping keeps the adjustment monotonic non-decreasing.
	historyAccidentPoints = 10
	historyMaxPoints      = 30

	// Sentiment adjustment bound from the optional text-analysis pass,
	// applied after all other scoring.
	sentimentMaxPoints = 20
)

const (
	DefaultSampleTarget = 5
	DefaultLookbackDays = 7
)

// Aggregator combines per-sample weather risk, on-route point hazards and
// historical hazard counts into one route-level assessment. Every input
// combination produces a valid result; the aggregator has no failure mode.
type Aggregator struct {
	Weather  WeatherProvider
	History  HazardHistory // optional
	Insights Analyzer      // optional

	SampleTarget        int
	RouteThresholdMiles float64
	LookbackDays        int
	Now                 func() time.Time
}

func NewAggregator(weather WeatherProvider, history HazardHistory, insights Analyzer) *Aggregator {
	return &Aggregator{
		Weather:             weather,
		History:             history,
		Insights:            insights,
		SampleTarget:        DefaultSampleTarget,
		RouteThresholdMiles: geo.DefaultRouteThresholdMiles,
		LookbackDays:        DefaultLookbackDays,
		Now:                 time.Now,
	}
}

// AggregateRouteRisk runs the full route analysis. Individual weather
// lookups that fail are dropped, never retried and never fatal; with zero
// successful samples the weather contribution is zero and the explanation
// says conditions could not be assessed.
func (a *Aggregator) AggregateRouteRisk(ctx context.Context, route models.RouteInfo, hazardType string, known []models.Hazard) models.RouteRiskResult {
	sampled := a.sampleWeather(ctx, route.Points, hazardType)

	highZones := 0
	mediumZones := 0
	totalScore := 0
	for _, s := range sampled {
		totalScore += s.Risk.Score
		switch s.Risk.Level {
		case models.RiskHigh:
			highZones++
		case models.RiskMedium:
			mediumZones++
		}
	}

	avgScore := 0
	if len(sampled) > 0 {
		avgScore = totalScore / len(sampled)
	}

	// A single severe zone escalates the whole route even when the
	// average looks mild.
	level := models.RiskLow
	switch {
	case avgScore >= models.HighRiskThreshold || highZones >= 2:
		level = models.RiskHigh
	case avgScore >= models.MediumRiskThreshold || highZones >= 1 || mediumZones >= 2:
		level = models.RiskMedium
	}

	hazardsOnRoute := geo.NearRoute(known, route.Points, a.routeThreshold())
	critical := 0
	for _, h := range hazardsOnRoute {
		if h.Type.Critical() {
			critical++
		}
	}

	score := avgScore + len(hazardsOnRoute)*hazardOnRoutePoints + critical*criticalHazardPoints
	score = clampScore(score)
	level = models.MaxLevel(level, models.LevelForScore(score))

	score, level = a.applyHistory(ctx, route.Points, score, level)

	keywords := []string{}
	score, level, keywords = a.applyInsights(ctx, hazardsOnRoute, score, level)

	result := models.RouteRiskResult{
		RiskLevel:           level,
		RiskScore:           score,
		HighRiskZoneCount:   highZones,
		MediumRiskZoneCount: mediumZones,
		HazardsOnRoute:      hazardsOnRoute,
		SampledPoints:       sampled,
	}
	result.Explanation = Explain(ExplainInput{
		Level:           level,
		Score:           score,
		DistanceText:    route.DistanceText,
		DurationText:    route.DurationText,
		Hazards:         hazardsOnRoute,
		HighZones:       highZones,
		MediumZones:     mediumZones,
		Keywords:        keywords,
		SamplesAssessed: len(sampled),
	})
	return result
}

// sampleWeather fetches conditions for the sampled route points
// concurrently. Failed lookups leave nil slots that are compacted out,
// preserving route order for the survivors.
func (a *Aggregator) sampleWeather(ctx context.Context, route []models.RoutePoint, hazardType string) []models.SampledPoint {
	points := geo.SamplePoints(route, a.sampleTarget())
	if len(points) == 0 {
		return []models.SampledPoint{}
	}

	results := make([]*models.SampledPoint, len(points))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(a.sampleTarget() + 1)
	for i, p := range points {
		i, p := i, p
		g.Go(func() error {
			w := a.Weather.CurrentWeather(gCtx, p.Lat, p.Lng)
			if w == nil {
				// Dropped sample degrades precision, never aborts the
				// request. Do not propagate.
				slog.Debug("weather sample unavailable", "lat", p.Lat, "lng", p.Lng)
				return nil
			}
			results[i] = &models.SampledPoint{
				Point:   p,
				Weather: *w,
				Risk:    Assess(w, hazardType),
			}
			return nil
		})
	}
	_ = g.Wait()

	sampled := make([]models.SampledPoint, 0, len(points))
	for _, r := range results {
		if r != nil {
			sampled = append(sampled, *r)
		}
	}
	return sampled
}

func (a *Aggregator) applyHistory(ctx context.Context, route []models.RoutePoint, score int, level models.RiskLevel) (int, models.RiskLevel) {
	if a.History == nil || len(route) == 0 {
		return score, level
	}

	since := a.now().AddDate(0, 0, -a.lookbackDays())
	bounds := geo.RouteBounds(route, a.routeThreshold())
	count, err := a.History.CountRecentNear(ctx, []models.HazardType{models.HazardTypeAccident}, since, bounds)
	if err != nil {
		slog.Warn("historical hazard lookup failed", "error", err)
		return score, level
	}

	boost := count * historyAccidentPoints
	if boost > historyMaxPoints {
		boost = historyMaxPoints
	}
	score = clampScore(score + boost)
	return score, models.MaxLevel(level, models.LevelForScore(score))
}

// applyInsights runs the optional text-analysis pass over the on-route
// hazard descriptions. Negative sentiment nudges the score up, positive
// down, bounded to sentimentMaxPoints either way; the level is only ever
// re-derived upward.
func (a *Aggregator) applyInsights(ctx context.Context, hazards []models.Hazard, score int, level models.RiskLevel) (int, models.RiskLevel, []string) {
	keywords := []string{}
	if a.Insights == nil || len(hazards) == 0 {
		return score, level, keywords
	}

	descriptions := make([]string, 0, len(hazards))
	for _, h := range hazards {
		if h.Description != "" {
			descriptions = append(descriptions, h.Description)
		}
	}
	if len(descriptions) == 0 {
		return score, level, keywords
	}

	ins := a.Insights.Analyze(ctx, strings.Join(descriptions, ". "))
	if ins == nil {
		return score, level, keywords
	}

	nudge := int(-ins.Sentiment * sentimentMaxPoints)
	if nudge > sentimentMaxPoints {
		nudge = sentimentMaxPoints
	} else if nudge < -sentimentMaxPoints {
		nudge = -sentimentMaxPoints
	}
	score = clampScore(score + nudge)
	return score, models.MaxLevel(level, models.LevelForScore(score)), ins.Keywords
}

func clampScore(score int) int {
	if score > maxScore {
		return maxScore
	}
	if score < 0 {
		return 0
	}
	return score
}

func (a *Aggregator) sampleTarget() int {
	if a.SampleTarget > 0 {
		return a.SampleTarget
	}
	return DefaultSampleTarget
}

func (a *Aggregator) routeThreshold() float64 {
	if a.RouteThresholdMiles > 0 {
		return a.RouteThresholdMiles
	}
	return geo.DefaultRouteThresholdMiles
}

func (a *Aggregator) lookbackDays() int {
	if a.LookbackDays > 0 {
		return a.LookbackDays
	}
	return DefaultLookbackDays
}

func (a *Aggregator) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

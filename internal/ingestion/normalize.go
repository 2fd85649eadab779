package ingestion

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/miroads/go-road-risk/internal/models"
)

// Coordinate field aliases, in lookup order. Feed records arrive in several
// shapes (flat, nested provider objects, string-typed numbers); the ordered
// alias list makes the accepted shapes explicit.
var (
	latAliases = [][]string{
		{"latitude"},
		{"lat"},
		{"Location", "Latitude"},
		{"location", "lat"},
	}
	lngAliases = [][]string{
		{"longitude"},
		{"lng"},
		{"Location", "Longitude"},
		{"location", "lng"},
	}
)

// Ordered classification rules: the first matching rule wins, so
// "weather-related lane closure" resolves against the earlier keyword set.
// Reordering these changes classification results.
var typeRules = []struct {
	keywords []string
	t        models.HazardType
}{
	{[]string{"accident", "crash", "collision"}, models.HazardTypeAccident},
	{[]string{"construct", "work", "repair"}, models.HazardTypeConstruction},
	{[]string{"closure", "closed", "block"}, models.HazardTypeClosure},
	{[]string{"congestion", "traffic", "delay"}, models.HazardTypeCongestion},
	{[]string{"weather", "ice", "snow", "wind", "flood", "storm"}, models.HazardTypeWeather},
	{[]string{"lane"}, models.HazardTypeLane},
	{[]string{"incident", "event"}, models.HazardTypeIncident},
}

// Normalize maps one raw feed record into the canonical hazard shape.
// Returns nil when either coordinate is absent or non-finite; callers must
// filter nils so no record without coordinates reaches downstream use.
func Normalize(raw map[string]any, source string, index int) *models.Hazard {
	lat, ok := numberByAliases(raw, latAliases)
	if !ok {
		return nil
	}
	lng, ok := numberByAliases(raw, lngAliases)
	if !ok {
		return nil
	}

	id := stringField(raw, "id", "Id", "ID", "eventId")
	if id == "" {
		id = fmt.Sprintf("%s-%d", source, index)
	}

	h := &models.Hazard{
		ID:          id,
		Source:      source,
		Type:        ClassifyType(stringField(raw, "type", "Type", "category", "Category", "eventType", "EventType")),
		Description: stringField(raw, "description", "Description", "message", "title", "Title"),
		Impact:      stringField(raw, "impact", "Impact"),
		StartDate:   timeField(raw, "startDate", "StartDate", "start_date"),
		EndDate:     timeField(raw, "endDate", "EndDate", "end_date"),
		Latitude:    lat,
		Longitude:   lng,
		CreatedAt:   time.Now(),
	}
	return h
}

// ClassifyType lower-cases a free-text type/category and matches it against
// the ordered substring rules. Unmatched or empty input yields "other".
func ClassifyType(s string) models.HazardType {
	s = strings.ToLower(s)
	for _, rule := range typeRules {
		for _, kw := range rule.keywords {
			if strings.Contains(s, kw) {
				return rule.t
			}
		}
	}
	return models.HazardTypeOther
}

func numberByAliases(raw map[string]any, aliases [][]string) (float64, bool) {
	for _, path := range aliases {
		if v, ok := lookupPath(raw, path); ok {
			if f, ok := coerceNumber(v); ok && !math.IsNaN(f) && !math.IsInf(f, 0) {
				return f, true
			}
		}
	}
	return 0, false
}

func lookupPath(raw map[string]any, path []string) (any, bool) {
	var cur any = raw
	for _, key := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func coerceNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func stringField(raw map[string]any, keys ...string) string {
	for _, key := range keys {
		if v, ok := raw[key]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

func timeField(raw map[string]any, keys ...string) *time.Time {
	for _, key := range keys {
		v, ok := raw[key]
		if !ok {
			continue
		}
		s, ok := v.(string)
		if !ok || s == "" {
			continue
		}
		if ts, err := time.Parse(time.RFC3339, s); err == nil {
			return &ts
		}
	}
	return nil
}

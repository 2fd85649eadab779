package api

import (
	"github.com/miroads/go-road-risk/internal/models"
)

type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}
type Feature struct {
	Type       string         `json:"type"`
	Geometry   Geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}
type Geometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

func toGeoJSON(hazards []models.Hazard) FeatureCollection {
	features := make([]Feature, 0, len(hazards))

	for _, h := range hazards {
		props := map[string]any{
			"id":          h.ID,
			"type":        string(h.Type),
			"description": h.Description,
			"source":      h.Source,
			"created_at":  h.CreatedAt,
		}
		if h.Impact != "" {
			props["impact"] = h.Impact
		}
		if h.StartDate != nil {
			props["start_date"] = h.StartDate
		}
		if h.EndDate != nil {
			props["end_date"] = h.EndDate
		}

		features = append(features, Feature{
			Type: "Feature",
			Geometry: Geometry{
				Type:        "Point",
				Coordinates: []float64{h.Longitude, h.Latitude},
			},
			Properties: props,
		})
	}

	return FeatureCollection{
		Type:     "FeatureCollection",
		Features: features,
	}
}

// Package directions abstracts the maps provider behind an explicit
// interface so the risk core never touches a provider SDK or global.
package directions

import (
	"context"
	"errors"

	"github.com/miroads/go-road-risk/internal/geo"
	"github.com/miroads/go-road-risk/internal/models"
)

// Named error causes surfaced by route/geocode resolution. Callers map
// these to user-facing messages; the risk aggregator never sees them.
var (
	ErrNotFound       = errors.New("directions: no route or place found")
	ErrQuotaExceeded  = errors.New("directions: provider quota exceeded")
	ErrInvalidRequest = errors.New("directions: invalid request")
	ErrRequestDenied  = errors.New("directions: request denied")
)

type Provider interface {
	// Geocode resolves free text to a coordinate.
	Geocode(ctx context.Context, query string) (models.RoutePoint, error)
	// Route resolves origin/destination text to a polyline with
	// distance/duration metadata.
	Route(ctx context.Context, origin, destination string) (*models.RouteInfo, error)
	// DistanceBetween returns the great-circle miles between two points.
	DistanceBetween(a, b models.RoutePoint) float64
}

// Haversine satisfies DistanceBetween for adapters whose provider offers
// no cheaper answer.
func haversineMiles(a, b models.RoutePoint) float64 {
	return geo.HaversineMiles(a.Lat, a.Lng, b.Lat, b.Lng)
}

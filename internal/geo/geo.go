package geo

import (
	"math"

	"github.com/miroads/go-road-risk/internal/models"
)

const earthRadiusMiles = 3958.8

// Default proximity thresholds used by the service.
const (
	DefaultNearbyRadiusMiles   = 10.0 // hazards near the driver's location
	DefaultRouteThresholdMiles = 2.0  // hazards relevant to a route
)

// HaversineMiles returns the great-circle distance in miles between two
// points on a sphere of Earth's mean radius. No ellipsoid correction;
// error stays well within map-marker tolerance.
func HaversineMiles(lat1, lng1, lat2, lng2 float64) float64 {
	lat1r := lat1 * math.Pi / 180
	lat2r := lat2 * math.Pi / 180
	dLat := (lat2 - lat1) * math.Pi / 180
	dLng := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1r)*math.Cos(lat2r)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMiles * c
}

// NearPoint reports whether the hazard lies within thresholdMiles of the
// given point.
func NearPoint(h models.Hazard, p models.RoutePoint, thresholdMiles float64) bool {
	return HaversineMiles(h.Latitude, h.Longitude, p.Lat, p.Lng) <= thresholdMiles
}

// NearRoute returns the hazards whose distance to the route polyline is
// within thresholdMiles. The scan short-circuits per hazard on the first
// route point inside the threshold; the global minimum distance is not
// needed for membership.
func NearRoute(hazards []models.Hazard, route []models.RoutePoint, thresholdMiles float64) []models.Hazard {
	matched := make([]models.Hazard, 0)
	for _, h := range hazards {
		for _, p := range route {
			if HaversineMiles(h.Latitude, h.Longitude, p.Lat, p.Lng) <= thresholdMiles {
				matched = append(matched, h)
				break
			}
		}
	}
	return matched
}

// SamplePoints picks an evenly spaced subset of route points for weather
// lookups, bounding external calls regardless of polyline length. Returns
// at least one point for non-empty input and never more than target+1
// (integer stride off-by-one; callers tolerate it).
func SamplePoints(route []models.RoutePoint, target int) []models.RoutePoint {
	if len(route) == 0 {
		return nil
	}
	if target < 1 {
		target = 1
	}

	stride := len(route) / target
	if stride < 1 {
		stride = 1
	}

	samples := make([]models.RoutePoint, 0, target+1)
	for i := 0; i < len(route); i += stride {
		samples = append(samples, route[i])
	}
	return samples
}

// Bounds is a lat/lng bounding box used for locality filtering of
// historical hazards.
type Bounds struct {
	MinLat, MaxLat float64
	MinLng, MaxLng float64
}

// RouteBounds computes the bounding box of a polyline padded by padMiles
// on every side. Longitude padding is widened by the latitude cosine so
// the pad holds away from the equator.
func RouteBounds(route []models.RoutePoint, padMiles float64) Bounds {
	if len(route) == 0 {
		return Bounds{}
	}

	b := Bounds{
		MinLat: route[0].Lat, MaxLat: route[0].Lat,
		MinLng: route[0].Lng, MaxLng: route[0].Lng,
	}
	for _, p := range route[1:] {
		b.MinLat = math.Min(b.MinLat, p.Lat)
		b.MaxLat = math.Max(b.MaxLat, p.Lat)
		b.MinLng = math.Min(b.MinLng, p.Lng)
		b.MaxLng = math.Max(b.MaxLng, p.Lng)
	}

	latPad := padMiles / 69.0 // ~69 miles per degree of latitude
	midLat := (b.MinLat + b.MaxLat) / 2 * math.Pi / 180
	lngPad := latPad / math.Max(math.Cos(midLat), 0.01)

	b.MinLat -= latPad
	b.MaxLat += latPad
	b.MinLng -= lngPad
	b.MaxLng += lngPad
	return b
}

// Contains reports whether the point lies within the bounds.
func (b Bounds) Contains(lat, lng float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lng >= b.MinLng && lng <= b.MaxLng
}

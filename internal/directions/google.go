package directions

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/miroads/go-road-risk/internal/models"
)

// GoogleClient adapts the Google Maps web services (Directions and
// Geocoding JSON endpoints) to the Provider interface.
type GoogleClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewGoogleClient(baseURL, apiKey string) *GoogleClient {
	return &GoogleClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type geocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

type directionsResponse struct {
	Status string `json:"status"`
	Routes []struct {
		OverviewPolyline struct {
			Points string `json:"points"`
		} `json:"overview_polyline"`
		Legs []struct {
			Distance struct {
				Text string `json:"text"`
			} `json:"distance"`
			Duration struct {
				Text string `json:"text"`
			} `json:"duration"`
		} `json:"legs"`
	} `json:"routes"`
}

func (c *GoogleClient) Geocode(ctx context.Context, query string) (models.RoutePoint, error) {
	q := url.Values{}
	q.Set("address", query)
	q.Set("key", c.apiKey)

	var data geocodeResponse
	if err := c.getJSON(ctx, "/maps/api/geocode/json?"+q.Encode(), &data); err != nil {
		return models.RoutePoint{}, err
	}
	if err := mapStatus(data.Status); err != nil {
		return models.RoutePoint{}, err
	}
	if len(data.Results) == 0 {
		return models.RoutePoint{}, ErrNotFound
	}

	loc := data.Results[0].Geometry.Location
	return models.RoutePoint{Lat: loc.Lat, Lng: loc.Lng}, nil
}

func (c *GoogleClient) Route(ctx context.Context, origin, destination string) (*models.RouteInfo, error) {
	q := url.Values{}
	q.Set("origin", origin)
	q.Set("destination", destination)
	q.Set("key", c.apiKey)

	var data directionsResponse
	if err := c.getJSON(ctx, "/maps/api/directions/json?"+q.Encode(), &data); err != nil {
		return nil, err
	}
	if err := mapStatus(data.Status); err != nil {
		return nil, err
	}
	if len(data.Routes) == 0 {
		return nil, ErrNotFound
	}

	route := data.Routes[0]
	info := &models.RouteInfo{
		Points: decodePolyline(route.OverviewPolyline.Points),
	}
	if len(route.Legs) > 0 {
		info.DistanceText = route.Legs[0].Distance.Text
		info.DurationText = route.Legs[0].Duration.Text
	}
	if len(info.Points) < 2 {
		return nil, ErrNotFound
	}
	return info, nil
}

func (c *GoogleClient) DistanceBetween(a, b models.RoutePoint) float64 {
	return haversineMiles(a, b)
}

func (c *GoogleClient) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("error while doing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d - status: %s", resp.StatusCode, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("error decoding resp.Body: %w", err)
	}
	return nil
}

// mapStatus translates provider status strings into the named error causes.
func mapStatus(status string) error {
	switch status {
	case "OK":
		return nil
	case "ZERO_RESULTS", "NOT_FOUND":
		return ErrNotFound
	case "OVER_QUERY_LIMIT", "OVER_DAILY_LIMIT":
		return ErrQuotaExceeded
	case "INVALID_REQUEST", "MAX_WAYPOINTS_EXCEEDED", "MAX_ROUTE_LENGTH_EXCEEDED":
		return ErrInvalidRequest
	case "REQUEST_DENIED":
		return ErrRequestDenied
	default:
		return fmt.Errorf("directions: provider status %s", status)
	}
}

// decodePolyline expands an encoded polyline string into route points.
// Standard Google encoding: deltas in 1e-5 degrees, 5-bit groups, chars
// offset by 63.
func decodePolyline(encoded string) []models.RoutePoint {
	var points []models.RoutePoint
	lat, lng := 0, 0

	for i := 0; i < len(encoded); {
		dLat, next, ok := decodeVarint(encoded, i)
		if !ok {
			return points
		}
		i = next
		lat += dLat

		dLng, next, ok := decodeVarint(encoded, i)
		if !ok {
			return points
		}
		i = next
		lng += dLng

		points = append(points, models.RoutePoint{
			Lat: float64(lat) / 1e5,
			Lng: float64(lng) / 1e5,
		})
	}
	return points
}

func decodeVarint(s string, i int) (value, next int, ok bool) {
	result, shift := 0, 0
	for {
		if i >= len(s) {
			return 0, i, false
		}
		b := int(s[i]) - 63
		i++
		result |= (b & 0x1f) << shift
		shift += 5
		if b < 0x20 {
			break
		}
	}
	if result&1 != 0 {
		return ^(result >> 1), i, true
	}
	return result >> 1, i, true
}

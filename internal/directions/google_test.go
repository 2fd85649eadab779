package directions

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/miroads/go-road-risk/internal/models"
)

func pt(lat, lng float64) models.RoutePoint {
	return models.RoutePoint{Lat: lat, Lng: lng}
}

func TestDecodePolyline(t *testing.T) {
	// Canonical example from the polyline encoding reference:
	// (38.5, -120.2), (40.7, -120.95), (43.252, -126.453)
	points := decodePolyline("_p~iF~ps|U_ulLnnqC_mqNvxq`@")

	if len(points) != 3 {
		t.Fatalf("expected 3 points, got %d", len(points))
	}

	want := [][2]float64{
		{38.5, -120.2},
		{40.7, -120.95},
		{43.252, -126.453},
	}
	for i, w := range want {
		if math.Abs(points[i].Lat-w[0]) > 1e-5 || math.Abs(points[i].Lng-w[1]) > 1e-5 {
			t.Errorf("point %d = (%f, %f), want (%f, %f)", i, points[i].Lat, points[i].Lng, w[0], w[1])
		}
	}
}

func TestDecodePolyline_Malformed(t *testing.T) {
	// Truncated input must not panic; partial points are acceptable.
	if got := decodePolyline("_p~iF"); len(got) != 0 {
		t.Errorf("expected no complete points from truncated input, got %d", len(got))
	}
	if got := decodePolyline(""); len(got) != 0 {
		t.Errorf("expected no points from empty input, got %d", len(got))
	}
}

func TestMapStatus(t *testing.T) {
	tests := []struct {
		status string
		want   error
	}{
		{"OK", nil},
		{"ZERO_RESULTS", ErrNotFound},
		{"NOT_FOUND", ErrNotFound},
		{"OVER_QUERY_LIMIT", ErrQuotaExceeded},
		{"INVALID_REQUEST", ErrInvalidRequest},
		{"REQUEST_DENIED", ErrRequestDenied},
	}

	for _, tt := range tests {
		got := mapStatus(tt.status)
		if !errors.Is(got, tt.want) {
			t.Errorf("mapStatus(%s) = %v, want %v", tt.status, got, tt.want)
		}
	}

	if got := mapStatus("UNKNOWN_ERROR"); got == nil {
		t.Error("expected a generic error for unknown status")
	}
}

func TestRoute_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/maps/api/directions/json" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		fmt.Fprint(w, `{
			"status": "OK",
			"routes": [{
				"overview_polyline": {"points": "_p~iF~ps|U_ulLnnqC_mqNvxq`+"`"+`@"},
				"legs": [{"distance": {"text": "12 mi"}, "duration": {"text": "18 mins"}}]
			}]
		}`)
	}))
	defer srv.Close()

	c := NewGoogleClient(srv.URL, "test-key")
	got, err := c.Route(context.Background(), "Detroit, MI", "Ann Arbor, MI")
	if err != nil {
		t.Fatalf("Route failed: %v", err)
	}
	if len(got.Points) != 3 {
		t.Errorf("expected 3 points, got %d", len(got.Points))
	}
	if got.DistanceText != "12 mi" || got.DurationText != "18 mins" {
		t.Errorf("metadata = %q/%q, want 12 mi/18 mins", got.DistanceText, got.DurationText)
	}
}

func TestRoute_QuotaError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status": "OVER_QUERY_LIMIT", "routes": []}`)
	}))
	defer srv.Close()

	c := NewGoogleClient(srv.URL, "test-key")
	_, err := c.Route(context.Background(), "a", "b")
	if !errors.Is(err, ErrQuotaExceeded) {
		t.Errorf("err = %v, want ErrQuotaExceeded", err)
	}
}

func TestGeocode_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("address"); got != "Lansing, MI" {
			t.Errorf("address = %q, want Lansing, MI", got)
		}
		fmt.Fprint(w, `{"status": "OK", "results": [{"geometry": {"location": {"lat": 42.7325, "lng": -84.5555}}}]}`)
	}))
	defer srv.Close()

	c := NewGoogleClient(srv.URL, "test-key")
	got, err := c.Geocode(context.Background(), "Lansing, MI")
	if err != nil {
		t.Fatalf("Geocode failed: %v", err)
	}
	if got.Lat != 42.7325 || got.Lng != -84.5555 {
		t.Errorf("point = %+v", got)
	}
}

func TestGeocode_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status": "ZERO_RESULTS", "results": []}`)
	}))
	defer srv.Close()

	c := NewGoogleClient(srv.URL, "test-key")
	_, err := c.Geocode(context.Background(), "nowhere at all")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestDistanceBetween_Symmetric(t *testing.T) {
	c := NewGoogleClient("http://example.invalid", "k")
	a := c.DistanceBetween(
		pt(42.3314, -83.0458),
		pt(42.2808, -83.7430),
	)
	b := c.DistanceBetween(
		pt(42.2808, -83.7430),
		pt(42.3314, -83.0458),
	)
	if a != b {
		t.Errorf("distance not symmetric: %f vs %f", a, b)
	}
	if a < 30 || a > 40 {
		t.Errorf("Detroit-Ann Arbor distance = %f mi, want ~36", a)
	}
}

// Package weather wraps the current-conditions provider. The contract is
// soft-failure: CurrentWeather returns nil on any problem and callers never
// distinguish reasons. A circuit breaker keeps a flapping provider from
// stalling route analysis with five doomed lookups per request.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/miroads/go-road-risk/internal/models"
)

const (
	metersPerMile = 1609.34
	mmPerInch     = 25.4
)

type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[*models.WeatherSnapshot]
}

func NewClient(baseURL, apiKey string) *Client {
	cb := gobreaker.NewCircuitBreaker[*models.WeatherSnapshot](gobreaker.Settings{
		Name:        "weather",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
	})

	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		breaker: cb,
	}
}

type currentResponse struct {
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  float64 `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Visibility *float64 `json:"visibility"` // meters; omitted by some stations
	Rain       struct {
		OneHour float64 `json:"1h"` // mm
	} `json:"rain"`
	Snow struct {
		OneHour float64 `json:"1h"` // mm
	} `json:"snow"`
}

// CurrentWeather fetches imperial-unit conditions at a point. Returns nil
// on any failure, including an open breaker.
func (c *Client) CurrentWeather(ctx context.Context, lat, lng float64) *models.WeatherSnapshot {
	snapshot, err := c.breaker.Execute(func() (*models.WeatherSnapshot, error) {
		return c.fetch(ctx, lat, lng)
	})
	if err != nil {
		slog.Debug("weather lookup failed", "lat", lat, "lng", lng, "error", err)
		return nil
	}
	return snapshot
}

func (c *Client) fetch(ctx context.Context, lat, lng float64) (*models.WeatherSnapshot, error) {
	q := url.Values{}
	q.Set("lat", fmt.Sprintf("%.4f", lat))
	q.Set("lon", fmt.Sprintf("%.4f", lng))
	q.Set("units", "imperial")
	q.Set("appid", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/weather?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error while doing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d - status: %s", resp.StatusCode, resp.Status)
	}

	var data currentResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("error decoding resp.Body: %w", err)
	}

	snapshot := &models.WeatherSnapshot{
		TemperatureF:        data.Main.Temp,
		FeelsLikeF:          data.Main.FeelsLike,
		HumidityPct:         data.Main.Humidity,
		WindMph:             data.Wind.Speed,
		PrecipitationInches: (data.Rain.OneHour + data.Snow.OneHour) / mmPerInch,
	}
	if len(data.Weather) > 0 {
		snapshot.Condition = data.Weather[0].Main
		snapshot.Description = data.Weather[0].Description
	}
	if data.Visibility != nil {
		miles := *data.Visibility / metersPerMile
		snapshot.VisibilityMiles = &miles
	}

	return snapshot, nil
}

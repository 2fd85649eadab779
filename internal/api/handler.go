package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/miroads/go-road-risk/internal/directions"
	"github.com/miroads/go-road-risk/internal/geo"
	"github.com/miroads/go-road-risk/internal/ingestion"
	"github.com/miroads/go-road-risk/internal/models"
	"github.com/miroads/go-road-risk/internal/repository"
	"github.com/miroads/go-road-risk/internal/risk"
)

const maxKnownHazards = 500

// FeedSource exposes the latest normalized feed snapshot.
type FeedSource interface {
	Latest() []models.Hazard
}

type Handler struct {
	repo       repository.HazardRepository
	feed       FeedSource
	directions directions.Provider
	weather    risk.WeatherProvider
	aggregator *risk.Aggregator

	nearbyRadiusMiles float64
}

func NewHandler(repo repository.HazardRepository, feed FeedSource, dir directions.Provider, weather risk.WeatherProvider, aggregator *risk.Aggregator, nearbyRadiusMiles float64) *Handler {
	if nearbyRadiusMiles <= 0 {
		nearbyRadiusMiles = geo.DefaultNearbyRadiusMiles
	}
	return &Handler{
		repo:              repo,
		feed:              feed,
		directions:        dir,
		weather:           weather,
		aggregator:        aggregator,
		nearbyRadiusMiles: nearbyRadiusMiles,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/api/mdot/events", h.getFeedEvents)
	r.GET("/api/hazards", h.getNearbyHazards)
	r.POST("/api/reports", h.createReport)
	r.POST("/api/route-risk", h.analyzeRoute)
	r.GET("/api/point-risk", h.assessPoint)
	r.GET("/health", h.health)
}

// getFeedEvents serves the proxy view of the DOT feed: always a JSON
// array, empty when nothing has been fetched yet.
func (h *Handler) getFeedEvents(c *gin.Context) {
	c.JSON(http.StatusOK, h.feed.Latest())
}

func (h *Handler) getNearbyHazards(c *gin.Context) {
	lat, err1 := strconv.ParseFloat(c.Query("lat"), 64)
	lng, err2 := strconv.ParseFloat(c.Query("lng"), 64)
	if err1 != nil || err2 != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat and lng are required"})
		return
	}

	radius := h.nearbyRadiusMiles
	if r := c.Query("radius"); r != "" {
		if v, err := strconv.ParseFloat(r, 64); err == nil && v > 0 && v <= 100 {
			radius = v
		}
	}

	known, err := h.repo.ListHazards(c.Request.Context(), repository.Filter{Limit: maxKnownHazards})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch hazards"})
		return
	}

	point := models.RoutePoint{Lat: lat, Lng: lng}
	nearby := make([]models.Hazard, 0)
	for _, hz := range known {
		if geo.NearPoint(hz, point, radius) {
			nearby = append(nearby, hz)
		}
	}

	fc := toGeoJSON(nearby)
	c.Header("Content-Type", "application/geo+json")
	c.JSON(http.StatusOK, fc)
}

// createReport accepts a loose hazard-report object, normalizes it and
// persists it. Reports feed the same store the historical lookback reads.
func (h *Handler) createReport(c *gin.Context) {
	var raw map[string]any
	if err := c.ShouldBindJSON(&raw); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}

	hazard := ingestion.Normalize(raw, "report", 0)
	if hazard == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "report needs valid coordinates"})
		return
	}
	// Feed records get positional fallback IDs; reports need a unique one.
	if hazard.ID == "report-0" {
		hazard.ID = fmt.Sprintf("report-%s", uuid.NewString())
	}

	if err := h.repo.Add(c.Request.Context(), hazard); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store report"})
		return
	}

	c.JSON(http.StatusCreated, hazard)
}

type routeRiskRequest struct {
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	HazardType  string `json:"hazardType"`
}

func (h *Handler) analyzeRoute(c *gin.Context) {
	var req routeRiskRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Origin == "" || req.Destination == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "origin and destination are required"})
		return
	}
	if req.HazardType == "" {
		req.HazardType = risk.LabelAccidentLikelihood
	}

	route, err := h.directions.Route(c.Request.Context(), req.Origin, req.Destination)
	if err != nil {
		// Upstream resolution failure is terminal: the aggregator is
		// never invoked.
		c.JSON(http.StatusOK, models.RouteRiskResult{
			RiskLevel:      models.RiskError,
			RiskScore:      0,
			HazardsOnRoute: []models.Hazard{},
			SampledPoints:  []models.SampledPoint{},
			Explanation:    routeErrorMessage(err),
		})
		return
	}

	known, repoErr := h.repo.ListHazards(c.Request.Context(), repository.Filter{Limit: maxKnownHazards})
	if repoErr != nil {
		// Zero hazards available, never fatal.
		known = nil
	}

	result := h.aggregator.AggregateRouteRisk(c.Request.Context(), *route, req.HazardType, known)
	c.JSON(http.StatusOK, result)
}

func (h *Handler) assessPoint(c *gin.Context) {
	lat, err1 := strconv.ParseFloat(c.Query("lat"), 64)
	lng, err2 := strconv.ParseFloat(c.Query("lng"), 64)
	if err1 != nil || err2 != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat and lng are required"})
		return
	}

	hazardType := c.Query("type")
	if hazardType == "" {
		hazardType = risk.LabelAccidentLikelihood
	}

	snapshot := h.weather.CurrentWeather(c.Request.Context(), lat, lng)
	assessment := risk.Assess(snapshot, hazardType)

	known, err := h.repo.ListHazards(c.Request.Context(), repository.Filter{Limit: maxKnownHazards})
	if err != nil {
		known = nil
	}
	point := models.RoutePoint{Lat: lat, Lng: lng}
	nearby := make([]models.Hazard, 0)
	for _, hz := range known {
		if geo.NearPoint(hz, point, h.nearbyRadiusMiles) {
			nearby = append(nearby, hz)
		}
	}

	resp := gin.H{
		"risk":           assessment,
		"nearby_hazards": nearby,
	}
	if snapshot != nil {
		resp["weather"] = snapshot
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// routeErrorMessage maps named directions errors to user-facing causes.
func routeErrorMessage(err error) string {
	switch {
	case errors.Is(err, directions.ErrNotFound):
		return "Could not find a driving route between those locations."
	case errors.Is(err, directions.ErrQuotaExceeded):
		return "The directions service is over its request limit. Try again in a few minutes."
	case errors.Is(err, directions.ErrInvalidRequest):
		return "The route request was invalid. Check the origin and destination."
	case errors.Is(err, directions.ErrRequestDenied):
		return "The directions service rejected the request."
	default:
		return "Route lookup failed. Try again."
	}
}

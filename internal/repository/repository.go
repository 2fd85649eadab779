package repository

import (
	"context"
	"time"

	"github.com/miroads/go-road-risk/internal/geo"
	"github.com/miroads/go-road-risk/internal/models"
)

type Filter struct {
	Limit int
	Types []models.HazardType
	Since *time.Time
}

// HazardRepository stores normalized hazards: feed events and driver
// reports alike. The historical lookback for route scoring reads from the
// same table via CountRecentNear.
type HazardRepository interface {
	Add(ctx context.Context, h *models.Hazard) error
	GetByID(ctx context.Context, id string) (*models.Hazard, error)
	Exists(ctx context.Context, id string) (bool, error)
	ListHazards(ctx context.Context, opts Filter) ([]models.Hazard, error)
	CountRecentNear(ctx context.Context, types []models.HazardType, since time.Time, bounds geo.Bounds) (int, error)
}

package ingestion

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/miroads/go-road-risk/internal/config"
	"github.com/miroads/go-road-risk/internal/models"
	"github.com/miroads/go-road-risk/internal/repository"
	"github.com/miroads/go-road-risk/internal/worker"
)

// Manager polls the DOT feed, normalizes the records and persists new
// hazards through a worker pool. It also keeps the latest normalized
// snapshot in memory for the feed proxy endpoint.
type Manager struct {
	cfg  *config.Config
	repo repository.HazardRepository
	feed *FeedClient
	pool *worker.Pool
	wg   sync.WaitGroup

	mu     sync.RWMutex
	latest []models.Hazard
}

func NewManager(cfg *config.Config, repo repository.HazardRepository, feed *FeedClient) *Manager {
	return &Manager{
		cfg:    cfg,
		repo:   repo,
		feed:   feed,
		latest: []models.Hazard{},
	}
}

func (m *Manager) Start(ctx context.Context) {
	processor := func(ctx context.Context, h *models.Hazard) error {
		exists, err := m.repo.Exists(ctx, h.ID)
		if err != nil {
			slog.Error("error checking existence", "id", h.ID, "error", err)
			return err
		}
		if exists {
			return nil
		}

		if err := m.repo.Add(ctx, h); err != nil {
			slog.Error("error adding hazard", "id", h.ID, "error", err)
			return err
		}

		slog.Info("added hazard", "id", h.ID, "type", h.Type, "source", h.Source)
		return nil
	}

	m.pool = worker.NewPool(m.cfg.Worker.Count, m.cfg.Worker.BufferSize, processor)
	m.pool.Start(ctx)

	if m.cfg.Feed.Enabled {
		m.wg.Add(1)
		go m.runPoller(ctx, m.cfg.Feed.PollInterval)
	}
}

func (m *Manager) runPoller(ctx context.Context, interval time.Duration) {
	defer m.wg.Done()
	slog.Info("starting feed poller", "interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Initial poll
	m.poll(ctx)

	for {
		select {
		case <-ctx.Done():
			slog.Info("feed poller shutting down")
			return
		case <-ticker.C:
			m.poll(ctx)
		}
	}
}

func (m *Manager) poll(ctx context.Context) {
	slog.Debug("polling feed")

	records, err := m.feed.Fetch(ctx)
	if err != nil {
		slog.Error("feed poll failed", "error", err)
		return
	}

	hazards := make([]models.Hazard, 0, len(records))
	for i, raw := range records {
		h := Normalize(raw, "mdot", i)
		if h == nil {
			slog.Debug("dropping record without coordinates", "index", i)
			continue
		}
		hazards = append(hazards, *h)
	}

	m.mu.Lock()
	m.latest = hazards
	m.mu.Unlock()

	for i := range hazards {
		m.pool.Submit(&hazards[i])
	}

	slog.Debug("feed poll complete", "raw", len(records), "normalized", len(hazards))
}

// Latest returns the most recent normalized feed snapshot. Empty until the
// first successful poll; a later poll failure keeps the last known
// snapshot, never surfaces an error to callers.
func (m *Manager) Latest() []models.Hazard {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Hazard, len(m.latest))
	copy(out, m.latest)
	return out
}

func (m *Manager) Stop() {
	m.wg.Wait()
	m.pool.Stop()
	slog.Info("ingestion manager stopped")
}

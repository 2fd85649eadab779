package ingestion

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/miroads/go-road-risk/internal/config"
	"github.com/miroads/go-road-risk/internal/geo"
	"github.com/miroads/go-road-risk/internal/models"
	"github.com/miroads/go-road-risk/internal/repository"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// mockHazardRepo implements repository.HazardRepository for testing
type mockHazardRepo struct {
	mu       sync.Mutex
	hazards  map[string]*models.Hazard
	addCount atomic.Int64
}

func newMockRepo() *mockHazardRepo {
	return &mockHazardRepo{
		hazards: make(map[string]*models.Hazard),
	}
}

func (m *mockHazardRepo) Add(ctx context.Context, h *models.Hazard) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hazards[h.ID] = h
	m.addCount.Add(1)
	return nil
}

func (m *mockHazardRepo) GetByID(ctx context.Context, id string) (*models.Hazard, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hazards[id], nil
}

func (m *mockHazardRepo) Exists(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, exists := m.hazards[id]
	return exists, nil
}

func (m *mockHazardRepo) ListHazards(ctx context.Context, opts repository.Filter) ([]models.Hazard, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var results []models.Hazard
	for _, h := range m.hazards {
		results = append(results, *h)
	}
	return results, nil
}

func (m *mockHazardRepo) CountRecentNear(ctx context.Context, types []models.HazardType, since time.Time, bounds geo.Bounds) (int, error) {
	return 0, nil
}

func testConfig(feedEnabled bool, urls []string) *config.Config {
	return &config.Config{
		Worker: config.WorkerConfig{
			Count:      2,
			BufferSize: 10,
		},
		Feed: config.FeedConfig{
			Enabled:      feedEnabled,
			URLs:         urls,
			PollInterval: time.Minute,
		},
	}
}

func TestManager_StartStop(t *testing.T) {
	repo := newMockRepo()
	mgr := NewManager(testConfig(false, nil), repo, nil)

	ctx, cancel := context.WithCancel(context.Background())

	// Start should not block
	mgr.Start(ctx)

	// Give it a moment
	time.Sleep(50 * time.Millisecond)

	// Cancel and stop
	cancel()
	mgr.Stop()

	// Should complete without hanging
}

func TestManager_PollNormalizesAndPersists(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[
			{"id": "ev-1", "eventType": "Crash on I-94", "message": "Multi-vehicle crash", "latitude": 42.3, "longitude": -83.1},
			{"id": "ev-2", "eventType": "Road work", "Location": {"Latitude": 42.5, "Longitude": -83.3}},
			{"id": "no-coords", "eventType": "Closure"}
		]`)
	}))
	defer srv.Close()

	repo := newMockRepo()
	mgr := NewManager(testConfig(false, []string{srv.URL}), repo, NewFeedClient([]string{srv.URL}))

	ctx, cancel := context.WithCancel(context.Background())
	mgr.Start(ctx)

	// Drive one poll directly instead of waiting on the ticker.
	mgr.poll(ctx)

	// Give workers time to process
	time.Sleep(200 * time.Millisecond)

	latest := mgr.Latest()
	if len(latest) != 2 {
		t.Errorf("expected 2 normalized hazards in snapshot, got %d", len(latest))
	}
	if len(latest) == 2 {
		if latest[0].ID != "ev-1" || latest[0].Type != models.HazardTypeAccident {
			t.Errorf("unexpected first hazard: %+v", latest[0])
		}
		if latest[1].Type != models.HazardTypeConstruction || latest[1].Latitude != 42.5 {
			t.Errorf("unexpected second hazard: %+v", latest[1])
		}
	}

	// A second poll of identical records must not duplicate rows.
	mgr.poll(ctx)
	time.Sleep(200 * time.Millisecond)

	cancel()
	mgr.Stop()

	if got := repo.addCount.Load(); got != 2 {
		t.Errorf("expected 2 hazards added across both polls, got %d", got)
	}
}

func TestManager_PollFailureKeepsSnapshot(t *testing.T) {
	calls := atomic.Int64{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) > 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, `[{"id": "ev-1", "eventType": "crash", "latitude": 42.3, "longitude": -83.1}]`)
	}))
	defer srv.Close()

	repo := newMockRepo()
	mgr := NewManager(testConfig(false, []string{srv.URL}), repo, NewFeedClient([]string{srv.URL}))

	ctx, cancel := context.WithCancel(context.Background())
	mgr.Start(ctx)

	mgr.poll(ctx)
	mgr.poll(ctx) // upstream now failing

	if got := mgr.Latest(); len(got) != 1 {
		t.Errorf("expected the last good snapshot to survive, got %d hazards", len(got))
	}

	cancel()
	mgr.Stop()
}

func TestManager_ConcurrentSubmit(t *testing.T) {
	cfg := testConfig(false, nil)
	cfg.Worker.Count = 4
	cfg.Worker.BufferSize = 100

	repo := newMockRepo()
	mgr := NewManager(cfg, repo, nil)

	ctx, cancel := context.WithCancel(context.Background())
	mgr.Start(ctx)

	// Submit many hazards concurrently
	var wg sync.WaitGroup
	numGoroutines := 10
	numPerGoroutine := 50

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func(goroutineID int) {
			defer wg.Done()
			for j := 0; j < numPerGoroutine; j++ {
				h := &models.Hazard{
					ID:        fmt.Sprintf("test_%d_%d", goroutineID, j),
					Source:    "test",
					Type:      models.HazardTypeAccident,
					Latitude:  42.0,
					Longitude: -83.0,
					CreatedAt: time.Now(),
				}
				mgr.pool.Submit(h)
			}
		}(i)
	}

	wg.Wait()

	// Give workers time to process
	time.Sleep(200 * time.Millisecond)

	cancel()
	mgr.Stop()

	// Verify all were processed
	expected := numGoroutines * numPerGoroutine
	actual := int(repo.addCount.Load())
	if actual != expected {
		t.Errorf("expected %d hazards added, got %d", expected, actual)
	}
}

func TestManager_GracefulShutdown(t *testing.T) {
	cfg := testConfig(false, nil)
	cfg.Worker.BufferSize = 100

	repo := newMockRepo()
	mgr := NewManager(cfg, repo, nil)

	ctx, cancel := context.WithCancel(context.Background())
	mgr.Start(ctx)

	// Submit some work
	for i := 0; i < 50; i++ {
		h := &models.Hazard{
			ID:        fmt.Sprintf("shutdown_test_%d", i),
			Source:    "test",
			Type:      models.HazardTypeClosure,
			Latitude:  42.0,
			Longitude: -83.0,
			CreatedAt: time.Now(),
		}
		mgr.pool.Submit(h)
	}

	// Immediately cancel
	cancel()

	// Stop should wait for in-flight work
	done := make(chan struct{})
	go func() {
		mgr.Stop()
		close(done)
	}()

	select {
	case <-done:
		// Good, stopped gracefully
	case <-time.After(5 * time.Second):
		t.Fatal("manager.Stop() timed out - possible goroutine leak")
	}
}

package ingestion

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// FeedClient fetches raw hazard events from the DOT feed. Several mirror
// URLs are tried in order; the first that answers with a JSON array wins.
type FeedClient struct {
	urls   []string
	client *http.Client
}

func NewFeedClient(urls []string) *FeedClient {
	return &FeedClient{
		urls: urls,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Fetch returns the normalized hazards from the first reachable feed URL.
// All URLs failing is an error for the poller to log; callers that serve
// user traffic treat it as "zero hazards available".
func (c *FeedClient) Fetch(ctx context.Context) ([]map[string]any, error) {
	var lastErr error
	for _, url := range c.urls {
		records, err := c.fetchOne(ctx, url)
		if err != nil {
			slog.Debug("feed url failed, trying next", "url", url, "error", err)
			lastErr = err
			continue
		}
		return records, nil
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no feed urls configured")
	}
	return nil, fmt.Errorf("all feed urls failed: %w", lastErr)
}

func (c *FeedClient) fetchOne(ctx context.Context, url string) ([]map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
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

	var records []map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("error decoding resp.Body: %w", err)
	}

	return records, nil
}

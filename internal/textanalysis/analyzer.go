// Package textanalysis wraps the optional text-analysis provider. The
// service works fully without it: every failure path returns nil insights
// and callers treat nil as "no enrichment available".
package textanalysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Insights is what the provider extracts from free text. Sentiment runs
// from -1 (strongly negative) to +1 (strongly positive).
type Insights struct {
	Keywords  []string `json:"keywords"`
	Sentiment float64  `json:"sentiment"`
}

type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type analyzeRequest struct {
	Text string `json:"text"`
}

// Analyze sends the text to the provider and returns its insights, or nil
// on any failure. Callers never distinguish failure reasons.
func (c *Client) Analyze(ctx context.Context, text string) *Insights {
	if text == "" {
		return nil
	}

	body, err := json.Marshal(analyzeRequest{Text: text})
	if err != nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/analyze", bytes.NewReader(body))
	if err != nil {
		return nil
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))
	}

	resp, err := c.client.Do(req)
	if err != nil {
		slog.Debug("text analysis request failed", "error", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Debug("text analysis returned non-OK", "status", resp.StatusCode)
		return nil
	}

	var ins Insights
	if err := json.NewDecoder(resp.Body).Decode(&ins); err != nil {
		slog.Debug("text analysis decode failed", "error", err)
		return nil
	}

	return &ins
}

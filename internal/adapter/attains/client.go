// Package attains talks to the bulk assessment service: a status probe for
// dataset readiness and a full-payload fetch.
package attains

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/waterbody-recon/internal/domain"
)

// Dataset build states reported by the status endpoint.
const (
	StateCold     = "cold"
	StateBuilding = "building"
	StateReady    = "ready"
)

// ServiceStatus is the status endpoint's view of the bulk dataset.
type ServiceStatus struct {
	State        string `json:"state"`
	StatesLoaded int    `json:"states_loaded"`
}

// Ready reports whether the dataset can be fetched.
func (s ServiceStatus) Ready() bool {
	return s.State == StateReady
}

// Client fetches bulk assessment data over HTTP.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewClient creates a bulk-data client against the given base URL.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		logger:  logger,
	}
}

// Status probes the dataset build state.
func (c *Client) Status(ctx context.Context) (ServiceStatus, error) {
	var status ServiceStatus
	if err := c.getJSON(ctx, c.baseURL+"/status", &status); err != nil {
		return ServiceStatus{}, fmt.Errorf("status: %w", err)
	}
	return status, nil
}

// Fetch retrieves the complete assessment payload, keyed by state
// abbreviation. The payload is a full replacement, never a delta.
func (c *Client) Fetch(ctx context.Context) (map[string][]domain.BulkAssessment, error) {
	var resp struct {
		Assessments map[string][]domain.BulkAssessment `json:"assessments"`
	}
	if err := c.getJSON(ctx, c.baseURL+"/assessments", &resp); err != nil {
		return nil, fmt.Errorf("fetch assessments: %w", err)
	}
	return resp.Assessments, nil
}

func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API error: status %d: %s", resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

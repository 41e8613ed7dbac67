package attains

import (
	"context"
	"log/slog"
	"sync"

	"github.com/couchcryptid/waterbody-recon/internal/domain"
)

// source is the slice of Client the decorator wraps.
type source interface {
	Status(ctx context.Context) (ServiceStatus, error)
	Fetch(ctx context.Context) (map[string][]domain.BulkAssessment, error)
}

// RetainingClient wraps a bulk source and keeps the last successful payload.
// When a fetch fails and a previous payload exists, the stale payload is
// served instead of the error: downstream consumers prefer old data over
// none.
type RetainingClient struct {
	inner  source
	logger *slog.Logger

	mu       sync.Mutex
	lastGood map[string][]domain.BulkAssessment
}

// NewRetainingClient creates a retention decorator around a bulk source.
func NewRetainingClient(inner source, logger *slog.Logger) *RetainingClient {
	return &RetainingClient{inner: inner, logger: logger}
}

// Status delegates to the wrapped source.
func (r *RetainingClient) Status(ctx context.Context) (ServiceStatus, error) {
	return r.inner.Status(ctx)
}

// Fetch delegates to the wrapped source. On success the payload is retained;
// on failure the last retained payload is served when one exists, and the
// error surfaces only when there is nothing to fall back to.
func (r *RetainingClient) Fetch(ctx context.Context) (map[string][]domain.BulkAssessment, error) {
	payload, err := r.inner.Fetch(ctx)
	if err == nil {
		r.mu.Lock()
		r.lastGood = payload
		r.mu.Unlock()
		return payload, nil
	}

	r.mu.Lock()
	stale := r.lastGood
	r.mu.Unlock()

	if stale == nil {
		return nil, err
	}
	r.logger.Warn("bulk fetch failed, serving retained payload", "error", err, "states", len(stale))
	return stale, nil
}

// Package pipeline owns the poll-fetch-recompute loop: it watches the bulk
// dataset's build status, pulls the full payload when ready, recomputes the
// complete snapshot from scratch, and hands the result to the HTTP layer and
// the optional Kafka sink.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/waterbody-recon/internal/adapter/attains"
	"github.com/couchcryptid/waterbody-recon/internal/domain"
	"github.com/couchcryptid/waterbody-recon/internal/observability"
)

// BulkSource probes dataset readiness and fetches the full payload.
type BulkSource interface {
	Status(ctx context.Context) (attains.ServiceStatus, error)
	Fetch(ctx context.Context) (map[string][]domain.BulkAssessment, error)
}

// SnapshotPublisher pushes a completed snapshot to an external sink.
type SnapshotPublisher interface {
	Publish(ctx context.Context, snap domain.Snapshot) error
}

// Poller drives periodic snapshot recomputation. The current snapshot is
// held behind an atomic pointer; readers always see a complete, immutable
// snapshot and a failed cycle never replaces a good one.
type Poller struct {
	source    BulkSource
	registry  []domain.RegistryWaterbody
	flow      map[string]domain.FlowScore
	ej        map[string]int
	publisher SnapshotPublisher
	logger    *slog.Logger
	metrics   *observability.Metrics

	interval   time.Duration
	maxBackoff time.Duration

	snapshot atomic.Pointer[domain.Snapshot]
	ready    atomic.Bool
}

// New creates a Poller. publisher may be nil when Kafka publishing is
// disabled; flow and ej may be nil when enrichment is unavailable.
func New(
	source BulkSource,
	registry []domain.RegistryWaterbody,
	flow map[string]domain.FlowScore,
	ej map[string]int,
	publisher SnapshotPublisher,
	logger *slog.Logger,
	metrics *observability.Metrics,
	interval, maxBackoff time.Duration,
) *Poller {
	return &Poller{
		source:     source,
		registry:   registry,
		flow:       flow,
		ej:         ej,
		publisher:  publisher,
		logger:     logger,
		metrics:    metrics,
		interval:   interval,
		maxBackoff: maxBackoff,
	}
}

// CheckReadiness returns nil once the first snapshot has been computed, or
// an error describing why the service is not yet ready.
func (p *Poller) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("no snapshot computed yet")
	}
	return nil
}

// Snapshot returns the current snapshot, or nil before the first successful
// cycle.
func (p *Poller) Snapshot() *domain.Snapshot {
	return p.snapshot.Load()
}

// Run executes the poll loop until the context is cancelled. Failed or
// not-ready cycles retry on an exponential backoff; successful cycles wait
// the full poll interval.
func (p *Poller) Run(ctx context.Context) error {
	p.logger.Info("poller started", "interval", p.interval)

	// Backoff starts well under the poll interval so a dataset mid-build is
	// picked up shortly after it finishes.
	initial := 5 * time.Second
	backoff := initial

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("poller stopping", "reason", ctx.Err())
			return nil
		default:
		}

		wait := p.interval
		if p.runCycle(ctx) {
			backoff = initial
		} else {
			wait = backoff
			backoff = nextBackoff(backoff, p.maxBackoff)
		}

		if !sleepWithContext(ctx, wait) {
			p.logger.Info("poller stopping", "reason", ctx.Err())
			return nil
		}
	}
}

// runCycle executes one status-fetch-recompute pass. Returns true when a
// snapshot was produced.
func (p *Poller) runCycle(ctx context.Context) bool {
	start := time.Now()

	statusStart := time.Now()
	status, err := p.source.Status(ctx)
	p.metrics.AttainsAPIDuration.WithLabelValues("status").Observe(time.Since(statusStart).Seconds())
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		p.metrics.AttainsRequests.WithLabelValues("status", "error").Inc()
		p.logger.Error("status probe failed", "error", err)
		p.metrics.PollCycles.WithLabelValues("error").Inc()
		return false
	}
	p.metrics.AttainsRequests.WithLabelValues("status", "success").Inc()
	if !status.Ready() {
		p.logger.Info("bulk dataset not ready", "state", status.State, "states_loaded", status.StatesLoaded)
		p.metrics.PollCycles.WithLabelValues("not_ready").Inc()
		return false
	}

	fetchStart := time.Now()
	bulk, err := p.source.Fetch(ctx)
	p.metrics.AttainsAPIDuration.WithLabelValues("fetch").Observe(time.Since(fetchStart).Seconds())
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		p.metrics.AttainsRequests.WithLabelValues("fetch", "error").Inc()
		p.logger.Error("bulk fetch failed", "error", err)
		p.metrics.PollCycles.WithLabelValues("error").Inc()
		return false
	}
	p.metrics.AttainsRequests.WithLabelValues("fetch", "success").Inc()

	snap, err := domain.ComputeSnapshot(p.registry, bulk, p.flow, p.ej, p.logger)
	if err != nil {
		// The snapshot still carries the registry fallback view; serve it,
		// but surface the failure.
		p.logger.Error("reconciliation fell back to registry view", "error", err)
		p.metrics.SnapshotFallbacks.Inc()
	}

	p.snapshot.Store(&snap)
	p.ready.Store(true)

	p.metrics.SnapshotsComputed.Inc()
	p.metrics.PollCycles.WithLabelValues("success").Inc()
	p.metrics.PollDuration.Observe(time.Since(start).Seconds())
	p.metrics.StatesLoaded.Set(float64(snap.StatesLoaded))
	p.metrics.ReconciledTotal.Set(float64(len(snap.Reconciled)))
	p.metrics.SyntheticTotal.Set(float64(countSynthetic(snap.Reconciled)))

	p.logger.Info("snapshot computed",
		"states_loaded", snap.StatesLoaded,
		"reconciled", len(snap.Reconciled),
		"duration", time.Since(start),
	)

	p.publish(ctx, snap)
	return true
}

func (p *Poller) publish(ctx context.Context, snap domain.Snapshot) {
	if p.publisher == nil {
		return
	}
	if err := p.publisher.Publish(ctx, snap); err != nil {
		p.logger.Error("snapshot publish failed", "error", err)
		p.metrics.PublishErrors.Inc()
		return
	}
	p.metrics.SnapshotsPublished.Inc()
}

func countSynthetic(reconciled []domain.ReconciledWaterbody) int {
	n := 0
	for _, w := range reconciled {
		if w.Synthetic {
			n++
		}
	}
	return n
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

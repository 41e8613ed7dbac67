package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// reconciliation engine.
type Metrics struct {
	SnapshotsComputed  prometheus.Counter
	SnapshotFallbacks  prometheus.Counter
	SnapshotsPublished prometheus.Counter
	PublishErrors      prometheus.Counter

	// Poll loop metrics.
	PollCycles   *prometheus.CounterVec // labels: outcome={success,not_ready,error}
	PollDuration prometheus.Histogram

	// Snapshot shape gauges, refreshed on every recomputation.
	StatesLoaded     prometheus.Gauge
	ReconciledTotal  prometheus.Gauge
	SyntheticTotal   prometheus.Gauge
	FlowBlendEnabled prometheus.Gauge

	// ATTAINS API metrics.
	AttainsRequests    *prometheus.CounterVec   // labels: endpoint={status,fetch}, outcome={success,error}
	AttainsAPIDuration *prometheus.HistogramVec // labels: endpoint={status,fetch}
}

// NewMetrics creates and registers all engine metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		SnapshotsComputed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "waterbody_recon",
			Name:      "snapshots_computed_total",
			Help:      "Total full snapshot recomputations.",
		}),
		SnapshotFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "waterbody_recon",
			Name:      "snapshot_fallbacks_total",
			Help:      "Recomputations that fell back to the registry-only view.",
		}),
		SnapshotsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "waterbody_recon",
			Name:      "snapshots_published_total",
			Help:      "Snapshots written to the sink topic.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "waterbody_recon",
			Name:      "publish_errors_total",
			Help:      "Failed snapshot publishes.",
		}),
		PollCycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "waterbody_recon",
			Name:      "poll_cycles_total",
			Help:      "Bulk-data poll cycles by outcome.",
		}, []string{"outcome"}),
		PollDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "waterbody_recon",
			Name:      "poll_duration_seconds",
			Help:      "Duration of a complete poll-fetch-recompute cycle.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
		StatesLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "waterbody_recon",
			Name:      "states_loaded",
			Help:      "States present in the current bulk dataset.",
		}),
		ReconciledTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "waterbody_recon",
			Name:      "reconciled_waterbodies",
			Help:      "Waterbodies in the current reconciled set.",
		}),
		SyntheticTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "waterbody_recon",
			Name:      "synthetic_waterbodies",
			Help:      "Reconciled waterbodies synthesized from bulk data alone.",
		}),
		FlowBlendEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "waterbody_recon",
			Name:      "flow_blend_enabled",
			Help:      "1 when flow-vulnerability blending is enabled, 0 otherwise.",
		}),
		AttainsRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "waterbody_recon",
			Name:      "attains_requests_total",
			Help:      "ATTAINS API requests by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		AttainsAPIDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "waterbody_recon",
			Name:      "attains_api_duration_seconds",
			Help:      "ATTAINS API request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"endpoint"}),
	}

	prometheus.MustRegister(
		m.SnapshotsComputed,
		m.SnapshotFallbacks,
		m.SnapshotsPublished,
		m.PublishErrors,
		m.PollCycles,
		m.PollDuration,
		m.StatesLoaded,
		m.ReconciledTotal,
		m.SyntheticTotal,
		m.FlowBlendEnabled,
		m.AttainsRequests,
		m.AttainsAPIDuration,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		SnapshotsComputed:  prometheus.NewCounter(prometheus.CounterOpts{Namespace: "waterbody_recon", Name: "snapshots_computed_total"}),
		SnapshotFallbacks:  prometheus.NewCounter(prometheus.CounterOpts{Namespace: "waterbody_recon", Name: "snapshot_fallbacks_total"}),
		SnapshotsPublished: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "waterbody_recon", Name: "snapshots_published_total"}),
		PublishErrors:      prometheus.NewCounter(prometheus.CounterOpts{Namespace: "waterbody_recon", Name: "publish_errors_total"}),
		PollCycles:         prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "waterbody_recon", Name: "poll_cycles_total"}, []string{"outcome"}),
		PollDuration:       prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "waterbody_recon", Name: "poll_duration_seconds"}),
		StatesLoaded:       prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "waterbody_recon", Name: "states_loaded"}),
		ReconciledTotal:    prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "waterbody_recon", Name: "reconciled_waterbodies"}),
		SyntheticTotal:     prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "waterbody_recon", Name: "synthetic_waterbodies"}),
		FlowBlendEnabled:   prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "waterbody_recon", Name: "flow_blend_enabled"}),
		AttainsRequests:    prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "waterbody_recon", Name: "attains_requests_total"}, []string{"endpoint", "outcome"}),
		AttainsAPIDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "waterbody_recon", Name: "attains_api_duration_seconds"}, []string{"endpoint"}),
	}
}

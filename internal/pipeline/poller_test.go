package pipeline_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/waterbody-recon/internal/adapter/attains"
	"github.com/couchcryptid/waterbody-recon/internal/domain"
	"github.com/couchcryptid/waterbody-recon/internal/observability"
	"github.com/couchcryptid/waterbody-recon/internal/pipeline"
)

// --- mocks ---

type mockSource struct {
	mu       sync.Mutex
	status   attains.ServiceStatus
	statuses []attains.ServiceStatus // consumed first when non-empty
	payload  map[string][]domain.BulkAssessment
	fetchErr error
	fetches  int
}

func (m *mockSource) Status(_ context.Context) (attains.ServiceStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.statuses) > 0 {
		s := m.statuses[0]
		m.statuses = m.statuses[1:]
		return s, nil
	}
	return m.status, nil
}

func (m *mockSource) Fetch(_ context.Context) (map[string][]domain.BulkAssessment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetches++
	return m.payload, m.fetchErr
}

type mockPublisher struct {
	mu        sync.Mutex
	published []domain.Snapshot
	err       error
}

func (m *mockPublisher) Publish(_ context.Context, snap domain.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.published = append(m.published, snap)
	return nil
}

func (m *mockPublisher) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.published)
}

func newTestMetrics() *observability.Metrics {
	// Use a fresh registry to avoid "already registered" panics in tests.
	return observability.NewMetricsForTesting()
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testRegistry() []domain.RegistryWaterbody {
	return []domain.RegistryWaterbody{
		{ID: "md_patapsco", Name: "Patapsco River", StateCode: "24", Status: domain.StatusMonitored, AlertLevel: domain.AlertLow},
	}
}

func newPoller(source pipeline.BulkSource, publisher pipeline.SnapshotPublisher) *pipeline.Poller {
	return pipeline.New(
		source, testRegistry(), nil, nil, publisher,
		testLogger(), newTestMetrics(),
		20*time.Millisecond, 50*time.Millisecond,
	)
}

// --- tests ---

func TestPoller_ComputesSnapshotWhenReady(t *testing.T) {
	source := &mockSource{
		status: attains.ServiceStatus{State: attains.StateReady, StatesLoaded: 1},
		payload: map[string][]domain.BulkAssessment{
			"MD": {{Name: "Patapsco River", Category: "5", Causes: []string{"TOTAL PHOSPHORUS"}}},
		},
	}
	p := newPoller(source, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	require.NoError(t, p.Run(ctx))

	snap := p.Snapshot()
	require.NotNil(t, snap)
	assert.Equal(t, 1, snap.StatesLoaded)
	require.Len(t, snap.Reconciled, 1)
	assert.Equal(t, domain.AlertHigh, snap.Reconciled[0].AlertLevel)
	assert.NoError(t, p.CheckReadiness(context.Background()))
}

func TestPoller_NotReadyBeforeFirstSnapshot(t *testing.T) {
	p := newPoller(&mockSource{}, nil)
	require.Error(t, p.CheckReadiness(context.Background()))
	assert.Nil(t, p.Snapshot())
}

func TestPoller_SkipsFetchWhileBuilding(t *testing.T) {
	source := &mockSource{
		status: attains.ServiceStatus{State: attains.StateBuilding, StatesLoaded: 3},
	}
	p := newPoller(source, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	require.NoError(t, p.Run(ctx))

	source.mu.Lock()
	defer source.mu.Unlock()
	assert.Zero(t, source.fetches)
	assert.Nil(t, p.Snapshot())
}

func TestPoller_BecomesReadyAfterBuild(t *testing.T) {
	source := &mockSource{
		statuses: []attains.ServiceStatus{
			{State: attains.StateCold},
			{State: attains.StateBuilding, StatesLoaded: 5},
		},
		status:  attains.ServiceStatus{State: attains.StateReady, StatesLoaded: 10},
		payload: map[string][]domain.BulkAssessment{"MD": {{Name: "Patapsco River", Category: "2"}}},
	}
	p := newPoller(source, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	require.NoError(t, p.Run(ctx))

	require.NotNil(t, p.Snapshot())
	assert.NoError(t, p.CheckReadiness(context.Background()))
}

func TestPoller_KeepsPreviousSnapshotOnFetchFailure(t *testing.T) {
	source := &mockSource{
		status:  attains.ServiceStatus{State: attains.StateReady, StatesLoaded: 1},
		payload: map[string][]domain.BulkAssessment{"MD": {{Name: "Patapsco River", Category: "5"}}},
	}
	p := newPoller(source, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	require.NoError(t, p.Run(ctx))
	cancel()

	first := p.Snapshot()
	require.NotNil(t, first)

	source.mu.Lock()
	source.fetchErr = errors.New("upstream down")
	source.mu.Unlock()

	ctx, cancel = context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	require.NoError(t, p.Run(ctx))

	assert.Same(t, first, p.Snapshot())
	assert.NoError(t, p.CheckReadiness(context.Background()))
}

func TestPoller_PublishesSnapshots(t *testing.T) {
	source := &mockSource{
		status:  attains.ServiceStatus{State: attains.StateReady, StatesLoaded: 1},
		payload: map[string][]domain.BulkAssessment{"MD": {{Name: "Patapsco River", Category: "5"}}},
	}
	pub := &mockPublisher{}
	p := newPoller(source, pub)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	require.NoError(t, p.Run(ctx))

	assert.Positive(t, pub.count())
}

func TestPoller_PublishFailureDoesNotDropSnapshot(t *testing.T) {
	source := &mockSource{
		status:  attains.ServiceStatus{State: attains.StateReady, StatesLoaded: 1},
		payload: map[string][]domain.BulkAssessment{"MD": {{Name: "Patapsco River", Category: "5"}}},
	}
	pub := &mockPublisher{err: errors.New("broker unreachable")}
	p := newPoller(source, pub)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	require.NoError(t, p.Run(ctx))

	assert.NotNil(t, p.Snapshot())
	assert.NoError(t, p.CheckReadiness(context.Background()))
}

package livestate

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/inventagious/funding-gateway/internal/backendapi"
	"github.com/inventagious/funding-gateway/internal/models"
	"github.com/stretchr/testify/require"
)

type scriptedFetcher struct {
	mu      sync.Mutex
	results []backendapi.ProjectResult
	calls   int
}

func (f *scriptedFetcher) Project(ctx context.Context, projectID string) backendapi.ProjectResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if len(f.results) == 0 {
		return backendapi.ProjectResult{Outcome: backendapi.FetchError}
	}
	result := f.results[0]
	if len(f.results) > 1 {
		f.results = f.results[1:]
	}
	return result
}

func (f *scriptedFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func okResult(amount float64, backers int, status models.ProjectStatus, updatedAt time.Time) backendapi.ProjectResult {
	return backendapi.ProjectResult{
		Outcome: backendapi.FetchOK,
		Project: models.ProjectSnapshot{
			ID:           "p1",
			Kind:         models.KindCrowdfunding,
			Status:       status,
			FundingGoal:  100,
			AmountRaised: amount,
			BackersCount: backers,
			UpdatedAt:    updatedAt,
		},
	}
}

func TestFingerprintDedup(t *testing.T) {
	at := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	fetcher := &scriptedFetcher{results: []backendapi.ProjectResult{
		okResult(50, 3, models.StatusActive, at),
		okResult(50, 3, models.StatusActive, at),
	}}

	updates := 0
	w := NewWatcher("p1", fetcher, Options{
		OnUpdate: func(models.ProjectSnapshot) { updates++ },
	})

	w.Refetch(context.Background())
	w.Refetch(context.Background())

	require.Equal(t, 2, fetcher.callCount())
	require.Equal(t, 1, updates, "identical poll responses must not re-fire the update callback")
}

func TestUpdateFiresOnChange(t *testing.T) {
	at := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	fetcher := &scriptedFetcher{results: []backendapi.ProjectResult{
		okResult(50, 3, models.StatusActive, at),
		okResult(60, 4, models.StatusActive, at.Add(time.Second)),
	}}

	updates := 0
	w := NewWatcher("p1", fetcher, Options{
		OnUpdate: func(models.ProjectSnapshot) { updates++ },
	})

	w.Refetch(context.Background())
	w.Refetch(context.Background())
	require.Equal(t, 2, updates)

	snapshot, ok := w.Snapshot()
	require.True(t, ok)
	require.Equal(t, 60.0, snapshot.AmountRaised)
	require.Equal(t, 4, snapshot.BackersCount)
}

func TestOptimisticFundingTransition(t *testing.T) {
	at := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	fetcher := &scriptedFetcher{results: []backendapi.ProjectResult{
		okResult(98, 10, models.StatusActive, at),
	}}

	w := NewWatcher("p1", fetcher, Options{})
	w.Refetch(context.Background())

	snapshot, applied := w.OptimisticUpdate(3, 0.019)
	require.True(t, applied)
	require.InDelta(t, 100.943, snapshot.AmountRaised, 0.0001)
	require.Equal(t, 11, snapshot.BackersCount)
	require.Equal(t, models.StatusFunded, snapshot.Status)
}

func TestOptimisticBelowGoalKeepsStatus(t *testing.T) {
	at := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	fetcher := &scriptedFetcher{results: []backendapi.ProjectResult{
		okResult(10, 1, models.StatusActive, at),
	}}

	w := NewWatcher("p1", fetcher, Options{})
	w.Refetch(context.Background())

	snapshot, applied := w.OptimisticUpdate(5, 0.019)
	require.True(t, applied)
	require.Equal(t, models.StatusActive, snapshot.Status)
	require.InDelta(t, 14.905, snapshot.AmountRaised, 0.0001)
}

func TestOptimisticWithoutSnapshot(t *testing.T) {
	w := NewWatcher("p1", &scriptedFetcher{}, Options{})
	_, applied := w.OptimisticUpdate(5, 0.019)
	require.False(t, applied)
}

func TestPollLoopSupersedesOptimistic(t *testing.T) {
	at := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	// The poll repeats the authoritative value 55 forever.
	fetcher := &scriptedFetcher{results: []backendapi.ProjectResult{
		okResult(50, 3, models.StatusActive, at),
		okResult(55, 4, models.StatusActive, at.Add(time.Second)),
	}}

	w := NewWatcher("p1", fetcher, Options{Interval: 10 * time.Millisecond})
	w.Start(context.Background())
	defer w.Stop()

	w.OptimisticUpdate(30, 0.019)

	// Last writer wins: the next poll overwrites the optimistic guess.
	require.Eventually(t, func() bool {
		snapshot, ok := w.Snapshot()
		return ok && snapshot.AmountRaised == 55
	}, time.Second, 5*time.Millisecond)
}

func TestNotFound(t *testing.T) {
	fetcher := &scriptedFetcher{results: []backendapi.ProjectResult{
		{Outcome: backendapi.FetchNotFound},
	}}

	w := NewWatcher("p1", fetcher, Options{})
	w.Refetch(context.Background())

	require.True(t, w.NotFound())
	_, ok := w.Snapshot()
	require.False(t, ok)
}

func TestFetchErrorKeepsLastSnapshot(t *testing.T) {
	at := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	fetcher := &scriptedFetcher{results: []backendapi.ProjectResult{
		okResult(50, 3, models.StatusActive, at),
		{Outcome: backendapi.FetchError},
	}}

	w := NewWatcher("p1", fetcher, Options{})
	w.Refetch(context.Background())
	polled := w.LastPolledAt()

	w.Refetch(context.Background())
	snapshot, ok := w.Snapshot()
	require.True(t, ok)
	require.Equal(t, 50.0, snapshot.AmountRaised)
	require.Equal(t, polled, w.LastPolledAt(), "failed polls do not advance the success timestamp")
}

func TestStopPreventsWrites(t *testing.T) {
	at := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	fetcher := &scriptedFetcher{results: []backendapi.ProjectResult{
		okResult(50, 3, models.StatusActive, at),
	}}

	w := NewWatcher("p1", fetcher, Options{})
	w.Refetch(context.Background())
	w.Stop()

	fetcher.mu.Lock()
	fetcher.results = []backendapi.ProjectResult{okResult(99, 9, models.StatusActive, at.Add(time.Minute))}
	fetcher.mu.Unlock()

	w.Refetch(context.Background())
	snapshot, _ := w.Snapshot()
	require.Equal(t, 50.0, snapshot.AmountRaised)
}

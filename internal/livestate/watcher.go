// Package livestate keeps a project's funding snapshot in sync with the
// backend. A watcher polls on a fixed interval, suppresses redundant updates
// via a content fingerprint, and accepts optimistic local updates right after
// a submitted contribution. The backend stays authoritative: the next poll
// overwrites whatever the optimistic update guessed (last writer wins).
package livestate

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/inventagious/funding-gateway/internal/backendapi"
	"github.com/inventagious/funding-gateway/internal/config"
	"github.com/inventagious/funding-gateway/internal/models"
)

// ProjectFetcher is the slice of the backend client the watcher needs.
type ProjectFetcher interface {
	Project(ctx context.Context, projectID string) backendapi.ProjectResult
}

// Options configures a Watcher.
type Options struct {
	Interval time.Duration // 0 uses config.DefaultPollInterval
	FeeRate  float64       // 0 uses config.DefaultPlatformFeeRate
	// OnUpdate fires when the snapshot meaningfully changed (fingerprint
	// moved). Never fired for polls that returned identical data.
	OnUpdate func(models.ProjectSnapshot)
}

// Watcher holds the best-known funding snapshot for one project.
type Watcher struct {
	projectID string
	fetcher   ProjectFetcher
	opts      Options

	mu           sync.Mutex
	snapshot     models.ProjectSnapshot
	haveSnapshot bool
	notFound     bool
	loading      bool
	lastPolledAt time.Time
	fingerprint  string
	stop         chan struct{}
	stopped      bool
	started      bool
}

// NewWatcher creates a watcher for the given project. Call Start to begin
// polling and Stop to tear it down.
func NewWatcher(projectID string, fetcher ProjectFetcher, opts Options) *Watcher {
	if opts.Interval <= 0 {
		opts.Interval = config.DefaultPollInterval
	}
	if opts.FeeRate <= 0 {
		opts.FeeRate = config.DefaultPlatformFeeRate
	}
	return &Watcher{
		projectID: projectID,
		fetcher:   fetcher,
		opts:      opts,
		stop:      make(chan struct{}),
	}
}

// Start performs the first fetch and, once it completes, begins silent
// interval polling in a goroutine. Calling Start twice is a no-op.
func (w *Watcher) Start(ctx context.Context) {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return
	}
	w.started = true
	w.mu.Unlock()

	w.fetch(ctx, false)

	go w.pollLoop(ctx)
}

func (w *Watcher) pollLoop(ctx context.Context) {
	ticker := time.NewTicker(w.opts.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-w.stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.fetch(ctx, true)
		}
	}
}

// Stop tears the watcher down. No state writes happen after Stop returns.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}
	w.stopped = true
	close(w.stop)
}

// fetch pulls the current snapshot. Silent fetches leave the loading flag
// untouched so polling never flickers the UI.
func (w *Watcher) fetch(ctx context.Context, silent bool) {
	if !silent {
		w.mu.Lock()
		w.loading = true
		w.mu.Unlock()
	}

	result := w.fetcher.Project(ctx, w.projectID)

	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	if !silent {
		w.loading = false
	}

	switch result.Outcome {
	case backendapi.FetchNotFound:
		w.notFound = true
		w.mu.Unlock()
		return
	case backendapi.FetchError:
		// Keep the last good snapshot; a later poll will catch up.
		w.mu.Unlock()
		log.Printf("livestate: poll failed for project %s: %v", w.projectID, result.Err)
		return
	}

	w.notFound = false
	w.lastPolledAt = time.Now()

	fp := result.Project.Fingerprint()
	if fp == w.fingerprint && w.haveSnapshot {
		w.mu.Unlock()
		return
	}
	w.snapshot = result.Project
	w.haveSnapshot = true
	w.fingerprint = fp
	onUpdate := w.opts.OnUpdate
	snapshot := w.snapshot
	w.mu.Unlock()

	if onUpdate != nil {
		onUpdate(snapshot)
	}
}

// Refetch forces a non-silent fetch, e.g. after the user pulls to refresh.
func (w *Watcher) Refetch(ctx context.Context) {
	w.fetch(ctx, false)
}

// OptimisticUpdate applies a just-submitted contribution locally for a
// responsive UI: the net amount (after the platform fee) is added to the
// raised total, the backer count is incremented, and status flips to funded
// when the goal is met. The next poll's authoritative data supersedes this.
func (w *Watcher) OptimisticUpdate(amount, feeRate float64) (models.ProjectSnapshot, bool) {
	if feeRate <= 0 {
		feeRate = w.opts.FeeRate
	}

	w.mu.Lock()
	if !w.haveSnapshot || w.stopped {
		w.mu.Unlock()
		return models.ProjectSnapshot{}, false
	}
	net := amount * (1 - feeRate)
	w.snapshot.AmountRaised += net
	w.snapshot.BackersCount++
	if w.snapshot.FundingGoal > 0 && w.snapshot.AmountRaised >= w.snapshot.FundingGoal {
		w.snapshot.Status = models.StatusFunded
	}
	w.snapshot.UpdatedAt = time.Now().UTC()
	w.fingerprint = w.snapshot.Fingerprint()
	snapshot := w.snapshot
	onUpdate := w.opts.OnUpdate
	w.mu.Unlock()

	if onUpdate != nil {
		onUpdate(snapshot)
	}
	return snapshot, true
}

// Snapshot returns the best-known snapshot and whether one exists yet.
func (w *Watcher) Snapshot() (models.ProjectSnapshot, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshot, w.haveSnapshot
}

// NotFound reports whether the backend answered 404 for this project.
func (w *Watcher) NotFound() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.notFound
}

// Loading reports whether a non-silent fetch is in flight.
func (w *Watcher) Loading() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.loading
}

// LastPolledAt returns the time of the last successful poll.
func (w *Watcher) LastPolledAt() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastPolledAt
}

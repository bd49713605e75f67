// Package donations merges the backend's two payment entity kinds —
// crowdfunding contributions and private-funding donations — into one
// normalized, time-ordered feed with a short-TTL cache in front.
package donations

import (
	"context"
	"sort"
	"sync"

	"github.com/inventagious/funding-gateway/internal/models"
)

// FeedAPI is the slice of the backend client the aggregator needs.
type FeedAPI interface {
	Contributions(ctx context.Context, projectID string) ([]models.Contribution, error)
	Donations(ctx context.Context, projectID string) ([]models.Donation, error)
}

// FetchOptions control a single feed fetch.
type FetchOptions struct {
	// SkipCache forces a refetch even when a fresh cached feed exists.
	SkipCache bool
	// Silent suppresses the loading flag, same convention as live polling.
	Silent bool
}

// Aggregator produces the merged funding feed for a project.
type Aggregator struct {
	api   FeedAPI
	cache *FeedCache

	mu      sync.Mutex
	loading bool
}

// NewAggregator wires the aggregator to the backend client and an injected
// cache; cache may be shared with other readers of the same feeds.
func NewAggregator(api FeedAPI, cache *FeedCache) *Aggregator {
	return &Aggregator{api: api, cache: cache}
}

// Loading reports whether a non-silent fetch is in flight.
func (a *Aggregator) Loading() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.loading
}

// Invalidate drops the cached feed for a project.
func (a *Aggregator) Invalidate(projectID string) {
	a.cache.Invalidate(projectID)
}

// Fetch returns the normalized feed for the project, newest first.
//
// For crowdfunding projects contributions are the primary list with legacy
// donations appended; for private projects the order is reversed. Records
// appearing in both source lists are NOT de-duplicated by id: collapsing them
// would change observable totals, so overlap is surfaced as-is.
func (a *Aggregator) Fetch(ctx context.Context, projectID string, kind models.ProjectKind, opts FetchOptions) ([]models.FundingRecord, error) {
	if !opts.SkipCache {
		if records, ok := a.cache.Get(projectID); ok {
			return records, nil
		}
	}

	if !opts.Silent {
		a.mu.Lock()
		a.loading = true
		a.mu.Unlock()
		defer func() {
			a.mu.Lock()
			a.loading = false
			a.mu.Unlock()
		}()
	}

	contributions, err := a.api.Contributions(ctx, projectID)
	if err != nil {
		return nil, err
	}
	donationList, err := a.api.Donations(ctx, projectID)
	if err != nil {
		return nil, err
	}

	records := merge(contributions, donationList, kind)
	a.cache.Set(projectID, records)
	return records, nil
}

// merge normalizes both lists into the shared shape and sorts by createdAt
// descending regardless of source order.
func merge(contributions []models.Contribution, donationList []models.Donation, kind models.ProjectKind) []models.FundingRecord {
	records := make([]models.FundingRecord, 0, len(contributions)+len(donationList))

	if kind == models.KindPrivate {
		for _, d := range donationList {
			records = append(records, models.NormalizeDonation(d))
		}
		for _, c := range contributions {
			records = append(records, models.NormalizeContribution(c))
		}
	} else {
		for _, c := range contributions {
			records = append(records, models.NormalizeContribution(c))
		}
		for _, d := range donationList {
			records = append(records, models.NormalizeDonation(d))
		}
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	return records
}

package services

import (
	"log"
	"sync"

	"github.com/inventagious/funding-gateway/internal/models"
)

// ProjectUpdate is the payload fanned out to live feed subscribers when a
// project's funding snapshot meaningfully changed.
type ProjectUpdate struct {
	Type     string                 `json:"type"` // "funding_update"
	Project  models.ProjectSnapshot `json:"project"`
	Progress float64                `json:"progress"` // raised/goal fraction, capped at 1
}

// NewProjectUpdate wraps a snapshot in the wire payload shape.
func NewProjectUpdate(p models.ProjectSnapshot) ProjectUpdate {
	return ProjectUpdate{
		Type:     "funding_update",
		Project:  p,
		Progress: fundingProgress(p),
	}
}

// subscriberBuffer bounds how many undelivered updates queue per connection
// before new ones are dropped.
const subscriberBuffer = 8

type subscriber struct {
	projectID string
	ch        chan ProjectUpdate
}

// ProjectHub is a registry of live feed subscriptions keyed by project id.
// Each subscriber owns a buffered channel drained by exactly one writer, so
// updates for a connection are always delivered from a single goroutine.
type ProjectHub struct {
	mu          sync.RWMutex
	subscribers map[*subscriber]struct{}
}

// NewProjectHub creates an empty hub.
func NewProjectHub() *ProjectHub {
	return &ProjectHub{subscribers: make(map[*subscriber]struct{})}
}

// Subscribe registers interest in one project's updates. The returned channel
// is closed by the unsubscribe func, terminating the reader's drain loop.
func (h *ProjectHub) Subscribe(projectID string) (<-chan ProjectUpdate, func()) {
	sub := &subscriber{projectID: projectID, ch: make(chan ProjectUpdate, subscriberBuffer)}
	h.mu.Lock()
	h.subscribers[sub] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return sub.ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subscribers, sub)
			close(sub.ch)
			h.mu.Unlock()
		})
	}
}

// SubscriberCount reports how many connections watch the given project.
func (h *ProjectHub) SubscriberCount(projectID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for sub := range h.subscribers {
		if sub.projectID == projectID {
			n++
		}
	}
	return n
}

// Broadcast queues a snapshot for every subscriber of its project. Sends never
// block: a subscriber whose buffer is full misses the update and catches up on
// the next one.
func (h *ProjectHub) Broadcast(snapshot models.ProjectSnapshot) {
	update := NewProjectUpdate(snapshot)

	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.subscribers {
		if sub.projectID != snapshot.ID {
			continue
		}
		select {
		case sub.ch <- update:
		default:
			log.Printf("dropping funding update for slow subscriber on project %s", snapshot.ID)
		}
	}
}

func fundingProgress(p models.ProjectSnapshot) float64 {
	if p.FundingGoal <= 0 {
		return 0
	}
	progress := p.AmountRaised / p.FundingGoal
	if progress > 1 {
		return 1
	}
	return progress
}

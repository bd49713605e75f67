package walletauth

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventType labels funnel events recorded during onboarding.
type EventType string

const (
	EventFlowStarted   EventType = "flow_started"
	EventStepCompleted EventType = "step_completed"
	EventError         EventType = "error"
	EventAbandoned     EventType = "abandoned"
	EventFlowCompleted EventType = "flow_completed"
)

// Event is a single onboarding funnel event.
type Event struct {
	ID        string    `json:"id" bson:"id"`
	SessionID string    `json:"session_id" bson:"session_id"`
	Type      EventType `json:"type" bson:"type"`
	Step      string    `json:"step,omitempty" bson:"step,omitempty"`
	ErrorKind ErrorKind `json:"error_kind,omitempty" bson:"error_kind,omitempty"`
	Category  string    `json:"category,omitempty" bson:"category,omitempty"`
	Message   string    `json:"message,omitempty" bson:"message,omitempty"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
}

// categoryOf collapses the error taxonomy into the coarser funnel categories
// the analytics dashboards group by. A missing wallet counts as a connection
// failure for funnel purposes.
func categoryOf(kind ErrorKind) string {
	switch kind {
	case ErrWalletNotFound, ErrConnectionFailed:
		return "CONNECTION_FAILED"
	case ErrNetwork, ErrTimeout:
		return "NETWORK"
	case ErrBackend:
		return "BACKEND"
	default:
		return string(kind)
	}
}

// EventSink receives events for external persistence. Writes must not block
// the flow; the log calls them from a goroutine and only logs failures.
type EventSink interface {
	Write(ctx context.Context, event Event) error
}

// EventLog records onboarding funnel events in memory and forwards them to an
// optional external sink. Honors a user-controlled opt-out flag.
type EventLog struct {
	mu     sync.Mutex
	events []Event
	sink   EventSink
	optOut bool
}

// NewEventLog creates an event log. sink may be nil for in-memory only.
func NewEventLog(sink EventSink) *EventLog {
	return &EventLog{sink: sink}
}

// SetOptOut enables or disables recording entirely.
func (l *EventLog) SetOptOut(optOut bool) {
	l.mu.Lock()
	l.optOut = optOut
	l.mu.Unlock()
}

// Record stores the event and forwards it to the sink asynchronously.
func (l *EventLog) Record(sessionID string, t EventType, step string, flowErr *FlowError) {
	l.mu.Lock()
	if l.optOut {
		l.mu.Unlock()
		return
	}
	event := Event{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		Type:      t,
		Step:      step,
		Timestamp: time.Now().UTC(),
	}
	if flowErr != nil {
		event.ErrorKind = flowErr.Kind
		event.Category = categoryOf(flowErr.Kind)
		event.Message = flowErr.Message
	}
	l.events = append(l.events, event)
	sink := l.sink
	l.mu.Unlock()

	if sink != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := sink.Write(ctx, event); err != nil {
				log.Printf("analytics sink write failed: %v", err)
			}
		}()
	}
}

// Events returns a copy of everything recorded so far.
func (l *EventLog) Events() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Event, len(l.events))
	copy(out, l.events)
	return out
}

// EventsOfType filters recorded events by type.
func (l *EventLog) EventsOfType(t EventType) []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []Event
	for _, e := range l.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

package walletauth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type captureSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *captureSink) Write(ctx context.Context, event Event) error {
	s.mu.Lock()
	s.events = append(s.events, event)
	s.mu.Unlock()
	return nil
}

func (s *captureSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

func TestEventLogRecord(t *testing.T) {
	log := NewEventLog(nil)
	log.Record("sess-1", EventFlowStarted, "detection", nil)
	log.Record("sess-1", EventStepCompleted, "connection", nil)

	events := log.Events()
	require.Len(t, events, 2)
	require.Equal(t, EventFlowStarted, events[0].Type)
	require.Equal(t, "sess-1", events[0].SessionID)
	require.NotEmpty(t, events[0].ID)
	require.False(t, events[0].Timestamp.IsZero())
}

func TestEventLogErrorCategory(t *testing.T) {
	log := NewEventLog(nil)
	log.Record("s", EventError, "detection", Classify(ErrNoWalletDetected, "detection"))

	errs := log.EventsOfType(EventError)
	require.Len(t, errs, 1)
	require.Equal(t, ErrWalletNotFound, errs[0].ErrorKind)
	require.Equal(t, "CONNECTION_FAILED", errs[0].Category)
	require.Equal(t, "detection", errs[0].Step)
}

func TestEventLogOptOut(t *testing.T) {
	log := NewEventLog(nil)
	log.SetOptOut(true)
	log.Record("s", EventFlowStarted, "detection", nil)
	require.Empty(t, log.Events())

	log.SetOptOut(false)
	log.Record("s", EventFlowStarted, "detection", nil)
	require.Len(t, log.Events(), 1)
}

func TestEventLogSink(t *testing.T) {
	sink := &captureSink{}
	log := NewEventLog(sink)
	log.Record("s", EventFlowCompleted, "success", nil)

	require.Eventually(t, func() bool {
		return sink.count() == 1
	}, time.Second, 10*time.Millisecond)
}

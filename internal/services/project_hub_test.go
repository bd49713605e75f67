package services

import (
	"sync"
	"testing"
	"time"

	"github.com/inventagious/funding-gateway/internal/models"
	"github.com/stretchr/testify/require"
)

func TestBroadcastReachesOnlyMatchingProject(t *testing.T) {
	hub := NewProjectHub()
	chA, unsubA := hub.Subscribe("p1")
	defer unsubA()
	chB, unsubB := hub.Subscribe("p2")
	defer unsubB()

	hub.Broadcast(models.ProjectSnapshot{ID: "p1", FundingGoal: 100, AmountRaised: 25})

	require.Len(t, chA, 1)
	update := <-chA
	require.Equal(t, "funding_update", update.Type)
	require.Equal(t, 0.25, update.Progress)
	require.Empty(t, chB)
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	hub := NewProjectHub()
	ch, unsub := hub.Subscribe("p1")

	hub.Broadcast(models.ProjectSnapshot{ID: "p1", FundingGoal: 100, AmountRaised: 50})
	unsub()
	unsub() // second call is a no-op

	// Queued update is still readable, then the channel reports closed so the
	// connection's writer loop terminates instead of parking forever.
	update, ok := <-ch
	require.True(t, ok)
	require.Equal(t, 0.5, update.Progress)
	_, ok = <-ch
	require.False(t, ok)
	require.Equal(t, 0, hub.SubscriberCount("p1"))
}

func TestBroadcastAfterUnsubscribeIsDropped(t *testing.T) {
	hub := NewProjectHub()
	ch, unsub := hub.Subscribe("p1")
	unsub()

	hub.Broadcast(models.ProjectSnapshot{ID: "p1", FundingGoal: 100, AmountRaised: 50})

	_, ok := <-ch
	require.False(t, ok)
}

func TestBroadcastNeverBlocksOnSlowSubscriber(t *testing.T) {
	hub := NewProjectHub()
	ch, unsub := hub.Subscribe("p1")
	defer unsub()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < subscriberBuffer*3; i++ {
			hub.Broadcast(models.ProjectSnapshot{ID: "p1", FundingGoal: 100, AmountRaised: float64(i)})
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("broadcast blocked on a subscriber that is not draining")
	}
	require.Len(t, ch, subscriberBuffer)
}

func TestConcurrentBroadcastsDeliverThroughOneChannel(t *testing.T) {
	hub := NewProjectHub()
	ch, unsub := hub.Subscribe("p1")

	// One producer races another, as a background poll does with an optimistic
	// contribution update. All deliveries funnel through the subscriber's
	// channel, so the connection only ever sees one writer.
	const perProducer = 50
	var wg sync.WaitGroup
	received := 0
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		for range ch {
			received++
		}
	}()

	for p := 0; p < 2; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				hub.Broadcast(models.ProjectSnapshot{ID: "p1", FundingGoal: 100, AmountRaised: float64(i)})
			}
		}()
	}
	wg.Wait()
	unsub()
	<-drained

	require.Greater(t, received, 0)
	require.LessOrEqual(t, received, 2*perProducer)
}

func TestProgressCappedAtOne(t *testing.T) {
	require.Equal(t, 1.0, fundingProgress(models.ProjectSnapshot{FundingGoal: 100, AmountRaised: 150}))
	require.Equal(t, 0.0, fundingProgress(models.ProjectSnapshot{FundingGoal: 0, AmountRaised: 150}))
}

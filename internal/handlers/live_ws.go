package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/inventagious/funding-gateway/internal/livestate"
	"github.com/inventagious/funding-gateway/internal/services"
)

var liveUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS for WebSocket is handled at the HTTP layer already.
		return true
	},
}

const (
	liveWriteWait  = 10 * time.Second
	livePongWait   = 90 * time.Second
	livePingPeriod = 30 * time.Second
)

// LiveFeed serves the live funding WebSocket. One watcher polls per watched
// project regardless of how many clients subscribe; the last unsubscribe
// stops the watcher.
type LiveFeed struct {
	hub      *services.ProjectHub
	fetcher  livestate.ProjectFetcher
	interval time.Duration
	feeRate  float64

	mu       sync.Mutex
	watchers map[string]*watcherRef
}

type watcherRef struct {
	watcher *livestate.Watcher
	cancel  context.CancelFunc
	refs    int
}

// NewLiveFeed builds the live feed handler set.
func NewLiveFeed(hub *services.ProjectHub, fetcher livestate.ProjectFetcher, interval time.Duration, feeRate float64) *LiveFeed {
	return &LiveFeed{
		hub:      hub,
		fetcher:  fetcher,
		interval: interval,
		feeRate:  feeRate,
		watchers: make(map[string]*watcherRef),
	}
}

// acquire starts (or reuses) the watcher for a project.
func (f *LiveFeed) acquire(projectID string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if ref, ok := f.watchers[projectID]; ok {
		ref.refs++
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	watcher := livestate.NewWatcher(projectID, f.fetcher, livestate.Options{
		Interval: f.interval,
		FeeRate:  f.feeRate,
		OnUpdate: f.hub.Broadcast,
	})
	watcher.Start(ctx)
	f.watchers[projectID] = &watcherRef{watcher: watcher, cancel: cancel, refs: 1}
}

// release drops one subscriber and tears the watcher down on the last one.
func (f *LiveFeed) release(projectID string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ref, ok := f.watchers[projectID]
	if !ok {
		return
	}
	ref.refs--
	if ref.refs > 0 {
		return
	}
	ref.watcher.Stop()
	ref.cancel()
	delete(f.watchers, projectID)
}

// OptimisticUpdate applies a just-submitted contribution to the watched
// snapshot so subscribers see it before the next poll.
func (f *LiveFeed) OptimisticUpdate(projectID string, amount, feeRate float64) bool {
	f.mu.Lock()
	ref, ok := f.watchers[projectID]
	f.mu.Unlock()
	if !ok {
		return false
	}
	_, applied := ref.watcher.OptimisticUpdate(amount, feeRate)
	return applied
}

// ServeWS handles GET /ws/projects?project_id=...
func (f *LiveFeed) ServeWS(w http.ResponseWriter, r *http.Request) {
	projectID := r.URL.Query().Get("project_id")
	if projectID == "" {
		http.Error(w, "project_id is required", http.StatusBadRequest)
		return
	}

	conn, err := liveUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	f.acquire(projectID)
	defer f.release(projectID)

	updates, unsubscribe := f.hub.Subscribe(projectID)
	defer unsubscribe()

	// Push the current snapshot to this connection before the writer starts,
	// so a new subscriber doesn't wait a full poll interval. The writer is not
	// running yet, keeping the connection single-writer throughout.
	f.mu.Lock()
	ref, watched := f.watchers[projectID]
	f.mu.Unlock()
	if watched {
		if snapshot, have := ref.watcher.Snapshot(); have {
			_ = conn.SetWriteDeadline(time.Now().Add(liveWriteWait))
			if err := conn.WriteJSON(services.NewProjectUpdate(snapshot)); err != nil {
				return
			}
		}
	}

	// Single writer: every data frame and ping leaves through this goroutine.
	// It terminates when unsubscribe closes the updates channel or a write
	// fails.
	go func() {
		pinger := time.NewTicker(livePingPeriod)
		defer pinger.Stop()
		for {
			select {
			case update, ok := <-updates:
				if !ok {
					return
				}
				_ = conn.SetWriteDeadline(time.Now().Add(liveWriteWait))
				if err := conn.WriteJSON(update); err != nil {
					return
				}
			case <-pinger.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(liveWriteWait)); err != nil {
					return
				}
			}
		}
	}()

	// Reader loop: consume control frames and detect close.
	conn.SetReadLimit(4 * 1024)
	_ = conn.SetReadDeadline(time.Now().Add(livePongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(livePongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(livePongWait))
	}
}

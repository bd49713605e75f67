package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// RedirectTTL bounds how long a stored return path survives. Session
	// storage in the browser dies with the tab; the Redis variant uses a TTL.
	RedirectTTL = 1 * time.Hour
	// RedirectKeyPrefix is the Redis key prefix for stored redirect paths
	RedirectKeyPrefix = "redirect:"
)

// NewSessionID mints an id identifying one browser session.
func NewSessionID() string {
	return uuid.New().String()
}

// RedirectStore remembers, per session, where to return after authentication.
// The stored path is consumed exactly once: GetAndClear reads and removes it.
type RedirectStore interface {
	Set(ctx context.Context, sessionID, path string) error
	// GetAndClear returns the stored path and removes it; "" when nothing is stored.
	GetAndClear(ctx context.Context, sessionID string) (string, error)
	Clear(ctx context.Context, sessionID string) error
}

// MemoryRedirectStore is the in-process store used by tests and single-node runs.
type MemoryRedirectStore struct {
	mu    sync.Mutex
	paths map[string]string
}

func NewMemoryRedirectStore() *MemoryRedirectStore {
	return &MemoryRedirectStore{paths: make(map[string]string)}
}

func (s *MemoryRedirectStore) Set(ctx context.Context, sessionID, path string) error {
	s.mu.Lock()
	s.paths[sessionID] = path
	s.mu.Unlock()
	return nil
}

func (s *MemoryRedirectStore) GetAndClear(ctx context.Context, sessionID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	path, ok := s.paths[sessionID]
	if !ok {
		return "", nil
	}
	delete(s.paths, sessionID)
	return path, nil
}

func (s *MemoryRedirectStore) Clear(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	delete(s.paths, sessionID)
	s.mu.Unlock()
	return nil
}

// RedisRedirectStore keeps redirect paths in Redis so sessions survive
// instance restarts and work across replicas.
type RedisRedirectStore struct {
	client *redis.Client
}

func NewRedisRedirectStore(client *redis.Client) *RedisRedirectStore {
	return &RedisRedirectStore{client: client}
}

func (s *RedisRedirectStore) Set(ctx context.Context, sessionID, path string) error {
	return s.client.Set(ctx, RedirectKeyPrefix+sessionID, path, RedirectTTL).Err()
}

func (s *RedisRedirectStore) GetAndClear(ctx context.Context, sessionID string) (string, error) {
	key := RedirectKeyPrefix + sessionID
	path, err := s.client.GetDel(ctx, key).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return path, nil
}

func (s *RedisRedirectStore) Clear(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, RedirectKeyPrefix+sessionID).Err()
}

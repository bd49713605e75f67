// Package pricing caches the SOL/USD quote used to render fiat equivalents.
package pricing

import (
	"context"
	"sync"
	"time"
)

// DefaultQuoteTTL keeps quotes for a minute; display precision does not need
// more and the upstream quote endpoint is rate limited.
const DefaultQuoteTTL = 60 * time.Second

// QuoteAPI is the slice of the backend client the price service needs.
type QuoteAPI interface {
	SolPriceUSD(ctx context.Context) (float64, error)
}

// Service returns SOL/USD quotes behind a TTL cache. Constructor-injected so
// tests control its lifecycle; no module-level state.
type Service struct {
	api QuoteAPI
	ttl time.Duration

	mu        sync.Mutex
	price     float64
	fetchedAt time.Time
	now       func() time.Time
}

// NewService builds a price service; ttl<=0 uses DefaultQuoteTTL.
func NewService(api QuoteAPI, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultQuoteTTL
	}
	return &Service{api: api, ttl: ttl, now: time.Now}
}

// SolPriceUSD returns the cached quote, refetching when the TTL lapsed.
func (s *Service) SolPriceUSD(ctx context.Context) (float64, error) {
	s.mu.Lock()
	if !s.fetchedAt.IsZero() && s.now().Sub(s.fetchedAt) < s.ttl {
		price := s.price
		s.mu.Unlock()
		return price, nil
	}
	s.mu.Unlock()

	price, err := s.api.SolPriceUSD(ctx)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	s.price = price
	s.fetchedAt = s.now()
	s.mu.Unlock()
	return price, nil
}

// Flush drops the cached quote so the next call refetches.
func (s *Service) Flush() {
	s.mu.Lock()
	s.fetchedAt = time.Time{}
	s.mu.Unlock()
}

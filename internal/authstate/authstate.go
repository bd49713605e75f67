// Package authstate holds the process-wide auth token and cached user
// profile. It is initialized once at startup by probing persisted storage and
// mutated only through its setters; feature code never writes it directly.
package authstate

import (
	"log"
	"sync"

	"github.com/inventagious/funding-gateway/internal/models"
)

// Holder guards the session token and the user it belongs to.
//
// Invariant: a non-empty token implies a prior successful authentication
// round-trip; an empty token forces IsAuthenticated() == false. Setting a
// user without a token is a programming error and is logged and refused.
type Holder struct {
	mu    sync.RWMutex
	token string
	user  *models.AuthUser
}

func NewHolder() *Holder {
	return &Holder{}
}

// SetToken stores the bearer token obtained from a verified wallet signature.
func (h *Holder) SetToken(token string) {
	h.mu.Lock()
	h.token = token
	h.mu.Unlock()
}

// SetUser caches the authenticated user. Refused when no token is present.
func (h *Holder) SetUser(user models.AuthUser) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.token == "" {
		log.Printf("authstate: refusing to set user %q without a token", user.ID)
		return
	}
	u := user
	h.user = &u
}

// Token returns the current bearer token, or "" when unauthenticated.
func (h *Holder) Token() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token
}

// User returns the cached user and whether one is set.
func (h *Holder) User() (models.AuthUser, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.user == nil {
		return models.AuthUser{}, false
	}
	return *h.user, true
}

// IsAuthenticated reports whether a token is present.
func (h *Holder) IsAuthenticated() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token != ""
}

// Logout clears the token and user together. Also used when a profile fetch
// comes back 401, which means the token is no longer valid.
func (h *Holder) Logout() {
	h.mu.Lock()
	h.token = ""
	h.user = nil
	h.mu.Unlock()
}

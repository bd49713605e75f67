package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/inventagious/funding-gateway/internal/session"
)

// SessionResponse wraps session endpoints' replies.
type SessionResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message,omitempty"`
	SessionID string `json:"session_id,omitempty"`
	Path      string `json:"path,omitempty"`
}

// SetRedirectRequest stores where to return after authentication.
type SetRedirectRequest struct {
	SessionID string `json:"session_id"`
	Path      string `json:"path"`
}

// NewSessionHandler builds handlers over the injected redirect store.
func NewSessionHandler(store session.RedirectStore) *SessionHandler {
	return &SessionHandler{store: store}
}

type SessionHandler struct {
	store session.RedirectStore
}

// Create mints a new session id for the browser.
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(SessionResponse{
		Success:   true,
		SessionID: session.NewSessionID(),
	})
}

// SetRedirect stores the return path before the client navigates to sign-in.
// Only same-site relative paths are accepted.
func (h *SessionHandler) SetRedirect(w http.ResponseWriter, r *http.Request) {
	var req SetRedirectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(SessionResponse{Success: false, Message: "Invalid request body"})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if req.SessionID == "" || req.Path == "" {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(SessionResponse{Success: false, Message: "session_id and path are required"})
		return
	}
	if !strings.HasPrefix(req.Path, "/") || strings.HasPrefix(req.Path, "//") {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(SessionResponse{Success: false, Message: "path must be a relative path"})
		return
	}

	if err := h.store.Set(r.Context(), req.SessionID, req.Path); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(SessionResponse{Success: false, Message: "Failed to store redirect path"})
		return
	}
	json.NewEncoder(w).Encode(SessionResponse{Success: true})
}

// ConsumeRedirect reads and clears the stored path. A second call for the
// same session returns an empty path.
func (h *SessionHandler) ConsumeRedirect(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	w.Header().Set("Content-Type", "application/json")
	if sessionID == "" {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(SessionResponse{Success: false, Message: "session_id is required"})
		return
	}

	path, err := h.store.GetAndClear(r.Context(), sessionID)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(SessionResponse{Success: false, Message: "Failed to read redirect path"})
		return
	}
	json.NewEncoder(w).Encode(SessionResponse{Success: true, Path: path})
}

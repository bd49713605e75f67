package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/inventagious/funding-gateway/internal/services"
	"github.com/inventagious/funding-gateway/internal/walletauth"
)

// EventsResponse wraps the funnel events admin endpoint.
type EventsResponse struct {
	Success bool               `json:"success"`
	Message string             `json:"message,omitempty"`
	Events  []walletauth.Event `json:"events"`
}

// GetOnboardingEvents returns a session's funnel events for the admin view.
func GetOnboardingEvents(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	w.Header().Set("Content-Type", "application/json")
	if sessionID == "" {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(EventsResponse{Success: false, Message: "session_id is required"})
		return
	}

	limit := int64(0)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.ParseInt(raw, 10, 64); err == nil {
			limit = parsed
		}
	}

	events, err := services.LoadSessionEvents(r.Context(), sessionID, limit)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(EventsResponse{Success: false, Message: "Failed to load events"})
		return
	}
	if events == nil {
		events = []walletauth.Event{}
	}
	json.NewEncoder(w).Encode(EventsResponse{Success: true, Events: events})
}

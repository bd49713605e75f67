package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/inventagious/funding-gateway/internal/donations"
	"github.com/inventagious/funding-gateway/internal/models"
)

// FeedResponse wraps the merged funding feed.
type FeedResponse struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message,omitempty"`
	Records []models.FundingRecord `json:"records"`
}

// ContributionNoticeRequest tells the gateway a contribution was just
// submitted on-chain so it can update live state ahead of the next poll.
type ContributionNoticeRequest struct {
	ProjectID string  `json:"project_id"`
	Amount    float64 `json:"amount"`
	FeeRate   float64 `json:"fee_rate,omitempty"`
}

// FeedHandler serves the merged donations/contributions feed and accepts
// contribution notices.
type FeedHandler struct {
	agg  *donations.Aggregator
	live *LiveFeed
}

func NewFeedHandler(agg *donations.Aggregator, live *LiveFeed) *FeedHandler {
	return &FeedHandler{agg: agg, live: live}
}

// Get handles GET /api/feed/{projectID}?kind=&skip_cache=
func (h *FeedHandler) Get(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")
	w.Header().Set("Content-Type", "application/json")
	if projectID == "" {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(FeedResponse{Success: false, Message: "project id is required"})
		return
	}

	kind := models.ProjectKind(r.URL.Query().Get("kind"))
	if kind != models.KindPrivate {
		kind = models.KindCrowdfunding
	}

	records, err := h.agg.Fetch(r.Context(), projectID, kind, donations.FetchOptions{
		SkipCache: r.URL.Query().Get("skip_cache") == "true",
		Silent:    true,
	})
	if err != nil {
		w.WriteHeader(http.StatusBadGateway)
		json.NewEncoder(w).Encode(FeedResponse{Success: false, Message: "Failed to load funding feed"})
		return
	}
	if records == nil {
		records = []models.FundingRecord{}
	}
	json.NewEncoder(w).Encode(FeedResponse{Success: true, Records: records})
}

// NotifyContribution handles POST /api/live/contribution. It applies an
// optimistic update to the watched snapshot and drops the cached feed; the
// blockchain write path cannot reach either cache itself.
func (h *FeedHandler) NotifyContribution(w http.ResponseWriter, r *http.Request) {
	var req ContributionNoticeRequest
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(FeedResponse{Success: false, Message: "Invalid request body"})
		return
	}
	if req.ProjectID == "" || req.Amount <= 0 {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(FeedResponse{Success: false, Message: "project_id and a positive amount are required"})
		return
	}

	h.live.OptimisticUpdate(req.ProjectID, req.Amount, req.FeeRate)
	h.agg.Invalidate(req.ProjectID)
	json.NewEncoder(w).Encode(FeedResponse{Success: true})
}

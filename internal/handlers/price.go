package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/inventagious/funding-gateway/internal/pricing"
)

// PriceResponse wraps the SOL/USD quote.
type PriceResponse struct {
	Success bool    `json:"success"`
	Message string  `json:"message,omitempty"`
	USD     float64 `json:"usd,omitempty"`
}

// NewPriceQuote serves the cached SOL/USD quote so every rendered card does
// not hammer the upstream quote endpoint.
func NewPriceQuote(svc *pricing.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		price, err := svc.SolPriceUSD(r.Context())
		if err != nil {
			w.WriteHeader(http.StatusBadGateway)
			json.NewEncoder(w).Encode(PriceResponse{Success: false, Message: "Failed to fetch price quote"})
			return
		}
		json.NewEncoder(w).Encode(PriceResponse{Success: true, USD: price})
	}
}

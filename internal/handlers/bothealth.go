package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"
)

// botHealthTimeout bounds the health probe so a hung bot never hangs the page.
const botHealthTimeout = 5 * time.Second

// NewBotHealthCheck probes the external bot API and reports its status,
// distinguishing timeout (504) from unreachable (503) from generic failure
// (500) so the frontend can render the right banner.
func NewBotHealthCheck(botAPIURL string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if botAPIURL == "" {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"healthy": false,
				"error":   "bot API is not configured",
			})
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), botHealthTimeout)
		defer cancel()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(botAPIURL, "/")+"/health", nil)
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]interface{}{"healthy": false, "error": "failed to build health request"})
			return
		}

		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			status := http.StatusInternalServerError
			msg := "bot health check failed"
			switch {
			case errors.Is(err, context.DeadlineExceeded):
				status = http.StatusGatewayTimeout
				msg = "bot health check timed out"
			case strings.Contains(err.Error(), "connection refused"), strings.Contains(err.Error(), "no such host"):
				status = http.StatusServiceUnavailable
				msg = "bot API unreachable"
			}
			w.WriteHeader(status)
			json.NewEncoder(w).Encode(map[string]interface{}{"healthy": false, "error": msg})
			return
		}
		defer resp.Body.Close()
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"healthy": resp.StatusCode >= 200 && resp.StatusCode < 300,
			"status":  resp.StatusCode,
		})
	}
}

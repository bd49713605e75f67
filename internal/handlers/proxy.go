package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

const proxyTimeout = 15 * time.Second

// proxyClient is shared by all forwarded requests. Redirects are passed
// through untouched so the browser sees the backend's own Location header.
var proxyClient = &http.Client{
	CheckRedirect: func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	},
}

// NewBackendProxy returns a handler that transparently forwards requests to
// the upstream funding backend: same method, path (with the /api prefix
// stripped), query, body, and the client's Authorization header. The
// backend's status code and JSON body come back unchanged; non-JSON upstream
// bodies are wrapped as {"error": <text>} so clients always get JSON.
func NewBackendProxy(backendURL string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		upstreamPath := strings.TrimPrefix(r.URL.Path, "/api")
		target := backendURL + upstreamPath
		if r.URL.RawQuery != "" {
			target += "?" + r.URL.RawQuery
		}

		ctx, cancel := context.WithTimeout(r.Context(), proxyTimeout)
		defer cancel()

		req, err := http.NewRequestWithContext(ctx, r.Method, target, r.Body)
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, "failed to build upstream request")
			return
		}
		if ct := r.Header.Get("Content-Type"); ct != "" {
			req.Header.Set("Content-Type", ct)
		}
		if auth := r.Header.Get("Authorization"); auth != "" {
			req.Header.Set("Authorization", auth)
		}

		resp, err := proxyClient.Do(req)
		if err != nil {
			status, msg := upstreamFailure(err)
			log.Printf("proxy: %s %s failed: %v", r.Method, upstreamPath, err)
			writeJSONError(w, status, msg)
			return
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
		if err != nil {
			writeJSONError(w, http.StatusBadGateway, "failed to read upstream response")
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(resp.StatusCode)
		if json.Valid(body) {
			w.Write(body)
			return
		}
		// Upstream answered with plain text (e.g. a proxy error page).
		wrapped, _ := json.Marshal(map[string]string{"error": strings.TrimSpace(string(body))})
		w.Write(wrapped)
	}
}

// upstreamFailure maps a transport error onto the status codes the frontend
// distinguishes: 504 timeout, 503 unreachable, 500 anything else.
func upstreamFailure(err error) (int, string) {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "upstream request timed out"
	case strings.Contains(err.Error(), "connection refused"),
		strings.Contains(err.Error(), "no such host"):
		return http.StatusServiceUnavailable, "upstream service unavailable"
	default:
		return http.StatusInternalServerError, "upstream request failed"
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

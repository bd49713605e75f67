package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProxyForwardsRequest(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/projects/p1/interest", r.URL.Path)
		require.Equal(t, "page=2", r.URL.RawQuery)
		require.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, _ := io.ReadAll(r.Body)
		require.JSONEq(t, `{"amount":5}`, string(body))

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer upstream.Close()

	proxy := NewBackendProxy(upstream.URL)
	req := httptest.NewRequest(http.MethodPost, "/api/projects/p1/interest?page=2", strings.NewReader(`{"amount":5}`))
	req.Header.Set("Authorization", "Bearer tok-1")
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	proxy(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.JSONEq(t, `{"ok":true}`, rec.Body.String())
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestProxyPassesErrorStatusThrough(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"error":"amount must be positive"}`))
	}))
	defer upstream.Close()

	proxy := NewBackendProxy(upstream.URL)
	rec := httptest.NewRecorder()
	proxy(rec, httptest.NewRequest(http.MethodPost, "/api/projects/p1/interest", nil))

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.JSONEq(t, `{"error":"amount must be positive"}`, rec.Body.String())
}

func TestProxyWrapsNonJSONBody(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>502 Bad Gateway</html>"))
	}))
	defer upstream.Close()

	proxy := NewBackendProxy(upstream.URL)
	rec := httptest.NewRecorder()
	proxy(rec, httptest.NewRequest(http.MethodGet, "/api/projects", nil))

	require.Equal(t, http.StatusBadGateway, rec.Code)

	var wrapped map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &wrapped))
	require.Equal(t, "<html>502 Bad Gateway</html>", wrapped["error"])
}

func TestProxyUnreachableUpstream(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	upstream.Close()

	proxy := NewBackendProxy(upstream.URL)
	rec := httptest.NewRecorder()
	proxy(rec, httptest.NewRequest(http.MethodGet, "/api/projects", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "upstream service unavailable", body["error"])
}

func TestUpstreamFailureMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"timeout", context.DeadlineExceeded, http.StatusGatewayTimeout},
		{"wrapped timeout", errors.New("Get \"http://x\": context deadline exceeded"), http.StatusInternalServerError},
		{"refused", errors.New("dial tcp 127.0.0.1:9999: connect: connection refused"), http.StatusServiceUnavailable},
		{"dns", errors.New("dial tcp: lookup backend.invalid: no such host"), http.StatusServiceUnavailable},
		{"other", errors.New("tls handshake failure"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, _ := upstreamFailure(tt.err)
			require.Equal(t, tt.wantStatus, status)
		})
	}
}

func TestBotHealthHealthy(t *testing.T) {
	bot := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/health", r.URL.Path)
		w.Write([]byte("ok"))
	}))
	defer bot.Close()

	rec := httptest.NewRecorder()
	NewBotHealthCheck(bot.URL)(rec, httptest.NewRequest(http.MethodGet, "/api/bot/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, true, body["healthy"])
	require.Equal(t, float64(http.StatusOK), body["status"])
}

func TestBotHealthUpstreamError(t *testing.T) {
	bot := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer bot.Close()

	rec := httptest.NewRecorder()
	NewBotHealthCheck(bot.URL)(rec, httptest.NewRequest(http.MethodGet, "/api/bot/health", nil))

	// The probe itself succeeded, so the endpoint answers 200 with healthy=false.
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, false, body["healthy"])
}

func TestBotHealthUnreachable(t *testing.T) {
	bot := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	bot.Close()

	rec := httptest.NewRecorder()
	NewBotHealthCheck(bot.URL)(rec, httptest.NewRequest(http.MethodGet, "/api/bot/health", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestBotHealthUnconfigured(t *testing.T) {
	rec := httptest.NewRecorder()
	NewBotHealthCheck("")(rec, httptest.NewRequest(http.MethodGet, "/api/bot/health", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

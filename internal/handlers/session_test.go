package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/inventagious/funding-gateway/internal/session"
	"github.com/stretchr/testify/require"
)

func decodeSession(t *testing.T, rec *httptest.ResponseRecorder) SessionResponse {
	t.Helper()
	var resp SessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestSessionCreateMintsID(t *testing.T) {
	h := NewSessionHandler(session.NewMemoryRedirectStore())

	rec := httptest.NewRecorder()
	h.Create(rec, httptest.NewRequest(http.MethodPost, "/api/session", nil))

	resp := decodeSession(t, rec)
	require.True(t, resp.Success)
	require.NotEmpty(t, resp.SessionID)
}

func TestRedirectStoreAndConsumeOnce(t *testing.T) {
	h := NewSessionHandler(session.NewMemoryRedirectStore())

	body := strings.NewReader(`{"session_id":"s1","path":"/campaigns/create"}`)
	rec := httptest.NewRecorder()
	h.SetRedirect(rec, httptest.NewRequest(http.MethodPost, "/api/session/redirect", body))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ConsumeRedirect(rec, httptest.NewRequest(http.MethodGet, "/api/session/redirect?session_id=s1", nil))
	resp := decodeSession(t, rec)
	require.True(t, resp.Success)
	require.Equal(t, "/campaigns/create", resp.Path)

	rec = httptest.NewRecorder()
	h.ConsumeRedirect(rec, httptest.NewRequest(http.MethodGet, "/api/session/redirect?session_id=s1", nil))
	resp = decodeSession(t, rec)
	require.True(t, resp.Success)
	require.Empty(t, resp.Path, "a consumed redirect must not be returned again")
}

func TestSetRedirectRejectsAbsoluteAndSchemeRelative(t *testing.T) {
	h := NewSessionHandler(session.NewMemoryRedirectStore())

	for _, path := range []string{"https://evil.example/phish", "//evil.example/phish", "campaigns/create"} {
		body, _ := json.Marshal(SetRedirectRequest{SessionID: "s1", Path: path})
		rec := httptest.NewRecorder()
		h.SetRedirect(rec, httptest.NewRequest(http.MethodPost, "/api/session/redirect", strings.NewReader(string(body))))
		require.Equal(t, http.StatusBadRequest, rec.Code, "path %q must be rejected", path)
	}
}

func TestSetRedirectRequiresFields(t *testing.T) {
	h := NewSessionHandler(session.NewMemoryRedirectStore())

	rec := httptest.NewRecorder()
	h.SetRedirect(rec, httptest.NewRequest(http.MethodPost, "/api/session/redirect", strings.NewReader(`{"path":"/x"}`)))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.ConsumeRedirect(rec, httptest.NewRequest(http.MethodGet, "/api/session/redirect", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

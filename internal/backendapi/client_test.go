package backendapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestProjectOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/projects/p1", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":            "p1",
			"kind":          "crowdfunding",
			"status":        "active",
			"funding_goal":  100,
			"amount_raised": 42.5,
			"backers_count": 7,
			"updated_at":    time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		})
	}))
	defer srv.Close()

	result := New(srv.URL).Project(context.Background(), "p1")
	require.Equal(t, FetchOK, result.Outcome)
	require.Equal(t, 42.5, result.Project.AmountRaised)
	require.Equal(t, 7, result.Project.BackersCount)
}

func TestProjectNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"project not found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	result := New(srv.URL).Project(context.Background(), "missing")
	require.Equal(t, FetchNotFound, result.Outcome)
	require.Error(t, result.Err)
}

func TestProjectServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	result := New(srv.URL).Project(context.Background(), "p1")
	require.Equal(t, FetchError, result.Outcome)

	var se *StatusError
	require.ErrorAs(t, result.Err, &se)
	require.Equal(t, http.StatusInternalServerError, se.HTTPStatus())
}

func TestProjectUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	result := New(srv.URL).Project(context.Background(), "p1")
	require.Equal(t, FetchError, result.Outcome)
	require.Error(t, result.Err)
}

func TestWalletConnectSendsPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/auth/wallet/connect", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req WalletConnectRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "wallet123", req.WalletAddress)
		require.NotEmpty(t, req.Signature)

		json.NewEncoder(w).Encode(map[string]interface{}{
			"token":          "jwt-abc",
			"is_new_account": true,
			"user": map[string]interface{}{
				"id":             "u1",
				"wallet_address": "wallet123",
			},
		})
	}))
	defer srv.Close()

	payload, err := New(srv.URL).WalletConnect(context.Background(), WalletConnectRequest{
		WalletAddress: "wallet123",
		Message:       "challenge",
		Signature:     "c2ln",
	})
	require.NoError(t, err)
	require.Equal(t, "jwt-abc", payload.Token)
	require.True(t, payload.IsNewAccount)
	require.Equal(t, "wallet123", payload.User.WalletAddress)
}

func TestProfileSendsBearerToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]interface{}{"id": "u1"})
	}))
	defer srv.Close()

	user, err := New(srv.URL).Profile(context.Background(), "tok-1")
	require.NoError(t, err)
	require.Equal(t, "u1", user.ID)
}

func TestProfileUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid token"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := New(srv.URL).Profile(context.Background(), "stale")
	var se *StatusError
	require.ErrorAs(t, err, &se)
	require.Equal(t, http.StatusUnauthorized, se.Status)
}

func TestSolPriceUSD(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/price/sol", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]float64{"usd": 148.3})
	}))
	defer srv.Close()

	price, err := New(srv.URL).SolPriceUSD(context.Background())
	require.NoError(t, err)
	require.Equal(t, 148.3, price)
}

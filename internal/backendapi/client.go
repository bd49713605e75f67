// Package backendapi is the REST client for the upstream funding backend.
// The gateway holds no durable data of its own; every entity (users, projects,
// contributions, donations, prices) lives behind these endpoints.
package backendapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/inventagious/funding-gateway/internal/models"
)

// StatusError carries a non-2xx upstream response.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.Status, e.Body)
}

// HTTPStatus exposes the status code to the error classifier.
func (e *StatusError) HTTPStatus() int {
	return e.Status
}

// FetchOutcome tags the result of a project fetch so callers branch on a
// value instead of matching sentinel errors.
type FetchOutcome int

const (
	FetchOK FetchOutcome = iota
	FetchNotFound
	FetchError
)

// ProjectResult is the tagged result of fetching one project.
type ProjectResult struct {
	Outcome FetchOutcome
	Project models.ProjectSnapshot
	Err     error
}

// WalletConnectRequest is the signed-challenge payload sent to the backend
// for verification.
type WalletConnectRequest struct {
	WalletAddress string `json:"wallet_address"`
	Message       string `json:"message"`
	Signature     string `json:"signature"` // base64
}

// CompleteProfileRequest finalizes a new account after wallet auth.
type CompleteProfileRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

// Client talks to the upstream funding backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a backend client. baseURL must not end in a slash.
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// WalletConnect exchanges a signed challenge for a session token.
func (c *Client) WalletConnect(ctx context.Context, req WalletConnectRequest) (models.WalletConnectPayload, error) {
	var payload models.WalletConnectPayload
	err := c.postJSON(ctx, "/auth/wallet/connect", "", req, &payload)
	return payload, err
}

// CompleteProfile submits full name and email for a freshly created account.
func (c *Client) CompleteProfile(ctx context.Context, token string, req CompleteProfileRequest) (models.AuthUser, error) {
	var user models.AuthUser
	err := c.postJSON(ctx, "/auth/wallet/complete-profile", token, req, &user)
	return user, err
}

// Profile fetches the current user. A 401 means the token is invalid and the
// caller must clear local auth state.
func (c *Client) Profile(ctx context.Context, token string) (models.AuthUser, error) {
	var user models.AuthUser
	err := c.getJSON(ctx, "/auth/profile", token, &user)
	return user, err
}

// Project fetches one project's funding snapshot as a tagged result.
func (c *Client) Project(ctx context.Context, projectID string) ProjectResult {
	var snapshot models.ProjectSnapshot
	err := c.getJSON(ctx, "/projects/"+projectID, "", &snapshot)
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) && se.Status == http.StatusNotFound {
			return ProjectResult{Outcome: FetchNotFound, Err: err}
		}
		return ProjectResult{Outcome: FetchError, Err: err}
	}
	return ProjectResult{Outcome: FetchOK, Project: snapshot}
}

// Contributions lists a project's crowdfunding contributions.
func (c *Client) Contributions(ctx context.Context, projectID string) ([]models.Contribution, error) {
	var out []models.Contribution
	err := c.getJSON(ctx, "/projects/"+projectID+"/contributions", "", &out)
	return out, err
}

// Donations lists a project's private-funding (or legacy) donations.
func (c *Client) Donations(ctx context.Context, projectID string) ([]models.Donation, error) {
	var out []models.Donation
	err := c.getJSON(ctx, "/projects/"+projectID+"/donations", "", &out)
	return out, err
}

// SolPriceUSD fetches the current SOL/USD quote.
func (c *Client) SolPriceUSD(ctx context.Context) (float64, error) {
	var quote struct {
		USD float64 `json:"usd"`
	}
	if err := c.getJSON(ctx, "/price/sol", "", &quote); err != nil {
		return 0, err
	}
	return quote.USD, nil
}

func (c *Client) postJSON(ctx context.Context, path, token string, body, dest interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, token, dest)
}

func (c *Client) getJSON(ctx context.Context, path, token string, dest interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, token, dest)
}

func (c *Client) do(req *http.Request, token string, dest interface{}) error {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Status: resp.StatusCode, Body: string(raw)}
	}
	if dest == nil {
		return nil
	}
	return json.Unmarshal(raw, dest)
}

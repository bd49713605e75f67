// Package walletauth drives wallet-based onboarding: detect a wallet, connect,
// sign a challenge, exchange it for a session token, optionally collect a
// profile, then redirect. It is a library, not an HTTP surface: a client
// binary embeds the Orchestrator and supplies the WalletProvider for its
// platform (browser extension bridge, deep link, or the wallet SDK's social
// login). The gateway itself hosts only the flow's analytics endpoints.
package walletauth

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/inventagious/funding-gateway/internal/authstate"
	"github.com/inventagious/funding-gateway/internal/backendapi"
	"github.com/inventagious/funding-gateway/internal/models"
	"github.com/inventagious/funding-gateway/internal/session"
)

// FlowState is the orchestrator's position in the onboarding state machine.
type FlowState string

const (
	StateIdle            FlowState = "idle"
	StateDetecting       FlowState = "detecting"
	StateConnecting      FlowState = "connecting"
	StateAuthenticating  FlowState = "authenticating"
	StateProfileRequired FlowState = "profile_required"
	StateDone            FlowState = "done"
	StateError           FlowState = "error"
)

// DefaultDetectWait bounds how long detection probes for a wallet provider
// before declaring WALLET_NOT_FOUND.
const DefaultDetectWait = 3 * time.Second

// DefaultPostAuthPath is where Done navigates when no redirect path is stored.
const DefaultPostAuthPath = "/dashboard"

// AuthAPI is the slice of the backend client the orchestrator needs.
type AuthAPI interface {
	WalletConnect(ctx context.Context, req backendapi.WalletConnectRequest) (models.WalletConnectPayload, error)
	CompleteProfile(ctx context.Context, token string, req backendapi.CompleteProfileRequest) (models.AuthUser, error)
}

// Options configures an Orchestrator.
type Options struct {
	AppID       string
	Method      ConnectMethod // connection method the user picked; defaults to extension
	DetectWait  time.Duration // 0 uses DefaultDetectWait
	SignTimeout time.Duration // 0 means the signature prompt is bounded only by the wallet UI
	DefaultPath string        // 0-value uses DefaultPostAuthPath
	// Navigate performs the post-auth redirect. Required.
	Navigate func(path string)
}

// Orchestrator drives the end-to-end wallet onboarding flow:
// detect wallet → connect → sign challenge → exchange for session token →
// optionally collect profile → redirect.
//
// Start is idempotent: remounts and double-invokes must not re-trigger wallet
// probing or duplicate signature prompts, so a second call while the flow is
// live is a no-op. Steps are strictly sequential. Nothing is retried
// automatically; Retry is always user-initiated.
type Orchestrator struct {
	mu sync.Mutex

	provider  WalletProvider
	api       AuthAPI
	auth      *authstate.Holder
	redirects session.RedirectStore
	events    *EventLog
	opts      Options

	sessionID string
	state     FlowState
	address   string
	lastErr   *FlowError
	failedAt  FlowState
}

// NewOrchestrator wires the flow's collaborators. sessionID identifies the
// browser session for analytics and redirect-path lookup.
func NewOrchestrator(sessionID string, provider WalletProvider, api AuthAPI, auth *authstate.Holder, redirects session.RedirectStore, events *EventLog, opts Options) *Orchestrator {
	if opts.DetectWait <= 0 {
		opts.DetectWait = DefaultDetectWait
	}
	if opts.DefaultPath == "" {
		opts.DefaultPath = DefaultPostAuthPath
	}
	if opts.Method == "" {
		opts.Method = MethodExtension
	}
	return &Orchestrator{
		provider:  provider,
		api:       api,
		auth:      auth,
		redirects: redirects,
		events:    events,
		opts:      opts,
		sessionID: sessionID,
		state:     StateIdle,
	}
}

// State returns the current flow state.
func (o *Orchestrator) State() FlowState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// LastError returns the classified error the flow stopped on, if any.
func (o *Orchestrator) LastError() *FlowError {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastErr
}

// CurrentStep maps the flow state onto the onboarding step sequence for UI
// progress rendering.
func (o *Orchestrator) CurrentStep() Step {
	o.mu.Lock()
	defer o.mu.Unlock()
	switch o.state {
	case StateIdle, StateDetecting:
		return StepDetection
	case StateConnecting:
		return StepConnection
	case StateAuthenticating:
		return StepAuthentication
	case StateProfileRequired:
		return StepProfile
	case StateDone:
		return StepSuccess
	case StateError:
		switch o.failedAt {
		case StateConnecting:
			return StepConnection
		case StateAuthenticating:
			return StepAuthentication
		default:
			return StepDetection
		}
	}
	return StepDetection
}

// Progress returns the flow's percentage position for the UI.
func (o *Orchestrator) Progress() int {
	return ProgressOf(o.CurrentStep())
}

// Start begins the flow. It is a no-op when the flow already left Idle, which
// guards against duplicate initialization from remounts. Returns the state
// the flow landed in.
func (o *Orchestrator) Start(ctx context.Context) FlowState {
	o.mu.Lock()
	if o.state != StateIdle {
		state := o.state
		o.mu.Unlock()
		return state
	}
	o.state = StateDetecting
	o.mu.Unlock()

	o.events.Record(o.sessionID, EventFlowStarted, string(StepDetection), nil)
	o.run(ctx, StateDetecting)
	return o.State()
}

// Retry re-runs the flow from the step that failed. Only valid in the Error
// state; anywhere else it is a no-op. The sign-challenge step always builds a
// fresh nonce, so retried authentication cannot replay an old signature.
func (o *Orchestrator) Retry(ctx context.Context) FlowState {
	o.mu.Lock()
	if o.state != StateError {
		state := o.state
		o.mu.Unlock()
		return state
	}
	if o.lastErr != nil && !o.lastErr.Retryable {
		// WALLET_NOT_FOUND: installing a wallet is required, then the user
		// restarts from scratch.
		from := StateDetecting
		o.lastErr = nil
		o.state = from
		o.mu.Unlock()
		o.run(ctx, from)
		return o.State()
	}
	from := o.failedAt
	if from == "" {
		from = StateDetecting
	}
	o.lastErr = nil
	o.state = from
	o.mu.Unlock()
	o.run(ctx, from)
	return o.State()
}

// Abandon records that the user navigated away mid-flow. Not an error.
func (o *Orchestrator) Abandon() {
	o.mu.Lock()
	state := o.state
	o.mu.Unlock()
	if state == StateDone || state == StateIdle {
		return
	}
	o.events.Record(o.sessionID, EventAbandoned, string(o.CurrentStep()), nil)
}

// run executes the sequential steps beginning at from.
func (o *Orchestrator) run(ctx context.Context, from FlowState) {
	switch from {
	case StateDetecting:
		if !o.detect(ctx) {
			return
		}
		fallthrough
	case StateConnecting:
		if !o.connect(ctx) {
			return
		}
		fallthrough
	case StateAuthenticating:
		o.authenticate(ctx)
	}
}

// detect probes for a wallet provider within the bounded wait.
func (o *Orchestrator) detect(ctx context.Context) bool {
	o.setState(StateDetecting)

	deadline := time.Now().Add(o.opts.DetectWait)
	for {
		if o.provider.Detect(ctx) {
			o.events.Record(o.sessionID, EventStepCompleted, string(StepDetection), nil)
			return true
		}
		if time.Now().After(deadline) {
			o.fail(StateDetecting, string(StepDetection), ErrNoWalletDetected)
			return false
		}
		select {
		case <-ctx.Done():
			o.fail(StateDetecting, string(StepDetection), ctx.Err())
			return false
		case <-time.After(100 * time.Millisecond):
		}
	}
}

// connect requests the wallet connection via the chosen method.
func (o *Orchestrator) connect(ctx context.Context) bool {
	o.setState(StateConnecting)

	address, err := o.provider.Connect(ctx, o.opts.Method)
	if err != nil {
		o.fail(StateConnecting, string(StepConnection), err)
		return false
	}
	o.mu.Lock()
	o.address = address
	o.mu.Unlock()
	o.events.Record(o.sessionID, EventStepCompleted, string(StepConnection), nil)
	return true
}

// authenticate signs a fresh challenge and exchanges it for a session token.
func (o *Orchestrator) authenticate(ctx context.Context) {
	o.setState(StateAuthenticating)

	o.mu.Lock()
	address := o.address
	o.mu.Unlock()

	nonce, err := NewChallengeNonce()
	if err != nil {
		o.fail(StateAuthenticating, "authentication.nonce", err)
		return
	}
	message := BuildChallenge(o.opts.AppID, address, nonce, time.Now())

	signCtx := ctx
	if o.opts.SignTimeout > 0 {
		var cancel context.CancelFunc
		signCtx, cancel = context.WithTimeout(ctx, o.opts.SignTimeout)
		defer cancel()
	}
	signature, err := o.provider.SignMessage(signCtx, []byte(message))
	if err != nil {
		o.fail(StateAuthenticating, "authentication.sign", err)
		return
	}

	payload, err := o.api.WalletConnect(ctx, backendapi.WalletConnectRequest{
		WalletAddress: address,
		Message:       message,
		Signature:     encodeSignature(signature),
	})
	if err != nil {
		o.fail(StateAuthenticating, "authentication.exchange", err)
		return
	}

	o.auth.SetToken(payload.Token)
	o.auth.SetUser(payload.User)
	o.events.Record(o.sessionID, EventStepCompleted, string(StepAuthentication), nil)

	if !payload.User.ProfileComplete {
		o.setState(StateProfileRequired)
		return
	}
	o.finish(ctx)
}

// SubmitProfile completes onboarding for a new account. Only valid in the
// ProfileRequired state.
func (o *Orchestrator) SubmitProfile(ctx context.Context, fullName, email string) error {
	o.mu.Lock()
	if o.state != StateProfileRequired {
		state := o.state
		o.mu.Unlock()
		return errors.New("profile submission is not expected in state " + string(state))
	}
	o.mu.Unlock()

	fullName = strings.TrimSpace(fullName)
	email = strings.TrimSpace(email)
	if fullName == "" || email == "" {
		return errors.New("full name and email are required")
	}
	if !strings.Contains(email, "@") {
		return errors.New("email is not valid")
	}

	user, err := o.api.CompleteProfile(ctx, o.auth.Token(), backendapi.CompleteProfileRequest{
		FullName: fullName,
		Email:    email,
	})
	if err != nil {
		flowErr := Classify(err, string(StepProfile))
		o.events.Record(o.sessionID, EventError, string(StepProfile), flowErr)
		return flowErr
	}
	o.auth.SetUser(user)
	o.events.Record(o.sessionID, EventStepCompleted, string(StepProfile), nil)
	o.finish(ctx)
	return nil
}

// finish resolves the redirect path and completes the flow.
func (o *Orchestrator) finish(ctx context.Context) {
	dest, err := o.redirects.GetAndClear(ctx, o.sessionID)
	if err != nil {
		log.Printf("walletauth: redirect lookup failed for session %s: %v", o.sessionID, err)
		dest = ""
	}
	if dest == "" {
		dest = o.opts.DefaultPath
	}
	o.setState(StateDone)
	o.events.Record(o.sessionID, EventFlowCompleted, string(StepSuccess), nil)
	if o.opts.Navigate != nil {
		o.opts.Navigate(dest)
	}
}

func (o *Orchestrator) setState(s FlowState) {
	o.mu.Lock()
	o.state = s
	o.mu.Unlock()
}

// fail classifies the error, records analytics, and parks the flow in the
// absorbing Error state with the step that failed remembered for Retry.
func (o *Orchestrator) fail(at FlowState, step string, err error) {
	flowErr := Classify(err, step)
	log.Printf("walletauth: %s failed: %v", step, flowErr)
	o.events.Record(o.sessionID, EventError, step, flowErr)

	o.mu.Lock()
	o.failedAt = at
	o.lastErr = flowErr
	o.state = StateError
	o.mu.Unlock()
}

package walletauth

import (
	"context"
	"errors"
	"strings"
)

// ErrorKind is the closed taxonomy every raw wallet/network/backend failure
// is mapped into before reaching the UI.
type ErrorKind string

const (
	ErrUserCancelled     ErrorKind = "USER_CANCELLED"
	ErrNetwork           ErrorKind = "NETWORK_ERROR"
	ErrTimeout           ErrorKind = "TIMEOUT"
	ErrWalletNotFound    ErrorKind = "WALLET_NOT_FOUND"
	ErrConnectionFailed  ErrorKind = "CONNECTION_FAILED"
	ErrSignatureRejected ErrorKind = "SIGNATURE_REJECTED"
	ErrBackend           ErrorKind = "BACKEND_ERROR"
	ErrUnknown           ErrorKind = "UNKNOWN"
)

// ErrNoWalletDetected is returned by the detection step when no injected or
// deep-link wallet provider shows up within the bounded wait.
var ErrNoWalletDetected = errors.New("no wallet provider detected")

// FlowError is a raw error normalized into the fixed taxonomy, carrying
// enough context for the UI to render a recovery action.
type FlowError struct {
	Kind        ErrorKind `json:"kind"`
	Message     string    `json:"message"`
	Recoverable bool      `json:"recoverable"`
	Retryable   bool      `json:"retryable"`
	Step        string    `json:"step"`
	Cause       error     `json:"-"`
}

func (e *FlowError) Error() string {
	return string(e.Kind) + " at " + e.Step + ": " + e.Message
}

func (e *FlowError) Unwrap() error {
	return e.Cause
}

// statusCoded is implemented by backend client errors that carry an HTTP status.
type statusCoded interface {
	HTTPStatus() int
}

// Classify maps any error raised during the onboarding flow into exactly one
// taxonomy member. Step is a free-form label (may be finer-grained than the
// step enum). Pure function; callers log and record analytics separately.
//
// Pattern precedence matters: cancellation keywords are checked before
// connection keywords so that e.g. "connection rejected" classifies as
// USER_CANCELLED rather than CONNECTION_FAILED.
func Classify(err error, step string) *FlowError {
	fe := &FlowError{
		Kind:        ErrUnknown,
		Message:     "Something went wrong. Please try again.",
		Recoverable: true,
		Retryable:   true,
		Step:        step,
		Cause:       err,
	}
	if err == nil {
		return fe
	}

	msg := strings.ToLower(err.Error())

	switch {
	case containsAny(msg, "user rejected", "user denied", "rejected", "denied", "cancelled", "canceled", "dismissed"):
		fe.Kind = ErrUserCancelled
		fe.Message = "You cancelled the request. Connect your wallet to continue."

	case containsAny(msg, "network", "fetch failed", "failed to fetch", "connection refused", "no such host", "offline"):
		fe.Kind = ErrNetwork
		fe.Message = "Network error. Check your connection and try again."

	case errors.Is(err, context.DeadlineExceeded) || containsAny(msg, "timeout", "timed out", "deadline exceeded"):
		fe.Kind = ErrTimeout
		fe.Message = "The request took too long. Please try again."

	case errors.Is(err, ErrNoWalletDetected) || containsAny(msg, "wallet not found", "no provider", "not installed"):
		fe.Kind = ErrWalletNotFound
		fe.Message = "No wallet found. Install a Solana wallet to continue."
		fe.Retryable = false // retrying is pointless until a wallet is installed

	case containsAny(msg, "connect", "connection failed", "disconnected"):
		fe.Kind = ErrConnectionFailed
		fe.Message = "Could not connect to your wallet. Please try again."

	case containsAny(msg, "signature", "invalid sign", "verification failed"):
		fe.Kind = ErrSignatureRejected
		fe.Message = "The signature could not be verified. Please sign again."

	default:
		var sc statusCoded
		if errors.As(err, &sc) {
			fe.Kind = ErrBackend
			if sc.HTTPStatus() >= 500 {
				fe.Message = "The server had a problem. Please try again shortly."
			} else {
				fe.Message = "The server rejected the request. Please try again."
			}
		}
	}

	return fe
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

package walletauth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"
)

// ConnectMethod selects how the wallet SDK establishes the connection.
type ConnectMethod string

const (
	MethodExtension ConnectMethod = "extension"
	MethodDeepLink  ConnectMethod = "deeplink"
	MethodSocial    ConnectMethod = "social"
)

// WalletProvider is the black-box wallet SDK surface the orchestrator drives.
// Implementations wrap a browser extension bridge, a deep link, or the SDK's
// social login.
type WalletProvider interface {
	// Detect reports whether a wallet is available right now.
	Detect(ctx context.Context) bool
	// Connect requests a wallet connection and returns the wallet address.
	Connect(ctx context.Context, method ConnectMethod) (string, error)
	// SignMessage asks the wallet to sign the challenge message.
	SignMessage(ctx context.Context, message []byte) ([]byte, error)
	// Disconnect tears down the connection.
	Disconnect(ctx context.Context) error
}

// encodeSignature renders a raw wallet signature in the wire format the
// backend's verify endpoint expects.
func encodeSignature(sig []byte) string {
	return base64.StdEncoding.EncodeToString(sig)
}

// NewChallengeNonce returns a fresh random nonce. A new nonce must be issued
// for every signing attempt so a captured signature cannot be replayed.
func NewChallengeNonce() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(buf), nil
}

// BuildChallenge composes the human-readable message presented to the wallet
// for signing. The backend rebuilds the same message to verify the signature.
func BuildChallenge(appID, walletAddress, nonce string, issuedAt time.Time) string {
	return fmt.Sprintf(
		"Sign in to Inventagious\n\nApp: %s\nWallet: %s\nNonce: %s\nIssued At: %s",
		appID, walletAddress, nonce, issuedAt.UTC().Format(time.RFC3339),
	)
}

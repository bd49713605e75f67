package models

import "time"

// AuthUser is the authenticated platform user tied to a wallet address.
// Populated after token validation, cleared on logout; mutated only through
// the auth state holder.
type AuthUser struct {
	ID              string    `json:"id"`
	WalletAddress   string    `json:"wallet_address"`
	FullName        string    `json:"full_name,omitempty"`
	Email           string    `json:"email,omitempty"`
	ProfileComplete bool      `json:"profile_complete"`
	CreatedAt       time.Time `json:"created_at"`
}

// WalletConnectPayload is the backend's response to a successful
// signature-verified wallet connect.
type WalletConnectPayload struct {
	Token        string   `json:"token"`
	User         AuthUser `json:"user"`
	IsNewAccount bool     `json:"is_new_account"`
}

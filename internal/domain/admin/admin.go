// Package admin defines the admin identity, allowlist, and session types
// used by the authorization gate.
package admin

import (
	"errors"
	"net/mail"
	"strings"
	"time"
)

// Identity is an authenticated admin as reported by the identity provider.
type Identity struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	PhotoURL string `json:"photo_url,omitempty"`
}

// Entry is one allowlisted admin email. Entries are keyed by an opaque
// generated id so they can be removed individually. The master address is
// never stored as an Entry.
type Entry struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	AddedBy   string    `json:"added_by"`
	CreatedAt time.Time `json:"created_at"`
}

// AddRequest is the input for allowlisting a new admin email.
type AddRequest struct {
	Email string `json:"email"`
}

// Normalize lower-cases and trims the email. Applied at insertion time
// only; the master address is compared literally, never normalized.
func (r *AddRequest) Normalize() string {
	return strings.ToLower(strings.TrimSpace(r.Email))
}

// Validate checks that the AddRequest carries a plausible email address.
func (r *AddRequest) Validate() error {
	email := r.Normalize()
	if email == "" {
		return errors.New("email is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return errors.New("invalid email format")
	}
	return nil
}

// Session is a signed-in console session. Only the SHA-256 hash of the
// session token is stored.
type Session struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	PhotoURL  string    `json:"photo_url,omitempty"`
	TokenHash string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// Identity returns the identity the session was created for.
func (s *Session) Identity() *Identity {
	return &Identity{Email: s.Email, Name: s.Name, PhotoURL: s.PhotoURL}
}

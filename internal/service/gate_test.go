package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/raghavbhatia332/licensedesk/internal/config"
	"github.com/raghavbhatia332/licensedesk/internal/domain"
	"github.com/raghavbhatia332/licensedesk/internal/domain/admin"
	"github.com/raghavbhatia332/licensedesk/internal/port/identity"
)

func testAuthCfg() *config.Auth {
	return &config.Auth{
		Enabled:     true,
		MasterEmail: "master@example.com",
		SessionTTL:  time.Hour,
	}
}

func TestSignInMasterAlwaysAllowed(t *testing.T) {
	store := &mockStore{}
	verifier := &stubVerifier{ident: &admin.Identity{Email: "master@example.com", Name: "Master"}}
	gate := NewGate(store, verifier, testAuthCfg())

	result, err := gate.SignIn(context.Background(), "raw-token")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if result.Token == "" {
		t.Error("expected a session token")
	}
	if result.Identity.Email != "master@example.com" {
		t.Errorf("identity = %q", result.Identity.Email)
	}
	if len(store.sessions) != 1 {
		t.Fatalf("expected 1 stored session, got %d", len(store.sessions))
	}
	if store.sessions[0].TokenHash == result.Token {
		t.Error("raw token must not be stored")
	}
}

func TestSignInAllowlisted(t *testing.T) {
	store := &mockStore{admins: []admin.Entry{{ID: "1", Email: "ops@example.com"}}}
	verifier := &stubVerifier{ident: &admin.Identity{Email: "ops@example.com"}}
	gate := NewGate(store, verifier, testAuthCfg())

	if _, err := gate.SignIn(context.Background(), "raw-token"); err != nil {
		t.Fatalf("SignIn: %v", err)
	}
}

func TestSignInDenied(t *testing.T) {
	store := &mockStore{}
	verifier := &stubVerifier{ident: &admin.Identity{Email: "stranger@example.com"}}
	gate := NewGate(store, verifier, testAuthCfg())

	_, err := gate.SignIn(context.Background(), "raw-token")
	if !errors.Is(err, domain.ErrDenied) {
		t.Fatalf("error = %v, want ErrDenied", err)
	}
	if len(store.sessions) != 0 {
		t.Error("denied sign-in must not create a session")
	}
}

// The master address is compared literally while allowlist lookups use the
// normalized email, so a case variant of the master address is denied.
func TestSignInMasterCaseSensitive(t *testing.T) {
	store := &mockStore{}
	verifier := &stubVerifier{ident: &admin.Identity{Email: "Master@Example.com"}}
	gate := NewGate(store, verifier, testAuthCfg())

	if _, err := gate.SignIn(context.Background(), "raw-token"); !errors.Is(err, domain.ErrDenied) {
		t.Errorf("error = %v, want ErrDenied for case variant of master address", err)
	}
}

func TestSignInProviderErrorPassesThrough(t *testing.T) {
	provErr := &identity.ProviderError{Code: "auth/invalid-token", Message: "token expired"}
	gate := NewGate(&mockStore{}, &stubVerifier{err: provErr}, testAuthCfg())

	_, err := gate.SignIn(context.Background(), "raw-token")
	var got *identity.ProviderError
	if !errors.As(err, &got) {
		t.Fatalf("error = %v, want ProviderError", err)
	}
	if got.Code != "auth/invalid-token" {
		t.Errorf("code = %q", got.Code)
	}
}

func TestSignInDisabled(t *testing.T) {
	cfg := testAuthCfg()
	cfg.Enabled = false
	gate := NewGate(&mockStore{}, nil, cfg)

	if _, err := gate.SignIn(context.Background(), "raw-token"); !errors.Is(err, domain.ErrDenied) {
		t.Errorf("error = %v, want ErrDenied when gate disabled", err)
	}
}

func TestResumeRechecksAllowlist(t *testing.T) {
	store := &mockStore{admins: []admin.Entry{{ID: "1", Email: "ops@example.com"}}}
	verifier := &stubVerifier{ident: &admin.Identity{Email: "ops@example.com"}}
	gate := NewGate(store, verifier, testAuthCfg())

	result, err := gate.SignIn(context.Background(), "raw-token")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}

	sess, err := gate.Resume(context.Background(), result.Token)
	if err != nil {
		t.Fatalf("Resume: %v", err)
	}
	if sess.Email != "ops@example.com" {
		t.Errorf("session email = %q", sess.Email)
	}

	// Remove the email from the allowlist; the session must die on the
	// next request, not at expiry.
	store.admins = nil
	if _, err := gate.Resume(context.Background(), result.Token); !errors.Is(err, domain.ErrDenied) {
		t.Errorf("error = %v, want ErrDenied after allowlist removal", err)
	}
	if len(store.sessions) != 0 {
		t.Error("revoked session should be deleted")
	}
}

func TestResumeExpired(t *testing.T) {
	cfg := testAuthCfg()
	cfg.SessionTTL = -time.Minute
	store := &mockStore{}
	verifier := &stubVerifier{ident: &admin.Identity{Email: "master@example.com"}}
	gate := NewGate(store, verifier, cfg)

	result, err := gate.SignIn(context.Background(), "raw-token")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}

	if _, err := gate.Resume(context.Background(), result.Token); !errors.Is(err, domain.ErrDenied) {
		t.Errorf("error = %v, want ErrDenied for expired session", err)
	}
}

func TestResumeUnknownToken(t *testing.T) {
	gate := NewGate(&mockStore{}, nil, testAuthCfg())
	if _, err := gate.Resume(context.Background(), "never-issued"); !errors.Is(err, domain.ErrDenied) {
		t.Errorf("error = %v, want ErrDenied", err)
	}
}

func TestSignOutIdempotent(t *testing.T) {
	store := &mockStore{}
	verifier := &stubVerifier{ident: &admin.Identity{Email: "master@example.com"}}
	gate := NewGate(store, verifier, testAuthCfg())

	result, err := gate.SignIn(context.Background(), "raw-token")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}

	if err := gate.SignOut(context.Background(), result.Token); err != nil {
		t.Fatalf("SignOut: %v", err)
	}
	if len(store.sessions) != 0 {
		t.Error("session not deleted")
	}

	// Second sign-out with the same token is not an error.
	if err := gate.SignOut(context.Background(), result.Token); err != nil {
		t.Errorf("repeat SignOut: %v", err)
	}
}

// Package service holds the business logic between the HTTP adapter and the
// store: the authorization gate and the license, allowlist, and settings
// managers.
package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/raghavbhatia332/licensedesk/internal/config"
	"github.com/raghavbhatia332/licensedesk/internal/domain"
	"github.com/raghavbhatia332/licensedesk/internal/domain/admin"
	"github.com/raghavbhatia332/licensedesk/internal/port/database"
	"github.com/raghavbhatia332/licensedesk/internal/port/identity"
)

// Gate is the authorization gate: it decides whether an authenticated
// identity may use the console, and owns console sessions. Authorization is
// resolved per request against the allowlist as stored at that moment;
// there is no process-wide authorized set.
type Gate struct {
	store    database.Store
	verifier identity.Verifier
	cfg      *config.Auth
}

// NewGate creates the authorization gate.
func NewGate(store database.Store, verifier identity.Verifier, cfg *config.Auth) *Gate {
	return &Gate{store: store, verifier: verifier, cfg: cfg}
}

// SignInResult is returned on a successful sign-in.
type SignInResult struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	Identity  *admin.Identity `json:"identity"`
}

// SignIn verifies the ID token, checks the identity against the authorized
// set (master address plus a fresh allowlist snapshot), and on ALLOW creates
// a session. On DENY it returns domain.ErrDenied wrapping the rejected email
// and creates nothing — the caller is left signed out.
func (g *Gate) SignIn(ctx context.Context, rawIDToken string) (*SignInResult, error) {
	if !g.cfg.Enabled || g.verifier == nil {
		return nil, fmt.Errorf("sign-in is disabled: %w", domain.ErrDenied)
	}

	ident, err := g.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, err
	}

	allowed, err := g.Authorize(ctx, ident.Email)
	if err != nil {
		return nil, fmt.Errorf("authorize %s: %w", ident.Email, err)
	}
	if !allowed {
		slog.Warn("sign-in denied", "email", ident.Email)
		return nil, fmt.Errorf("%s is not an authorized admin: %w", ident.Email, domain.ErrDenied)
	}

	rawToken, err := generateSessionToken()
	if err != nil {
		return nil, fmt.Errorf("generate session token: %w", err)
	}

	sess := &admin.Session{
		ID:        uuid.NewString(),
		Email:     ident.Email,
		Name:      ident.Name,
		PhotoURL:  ident.PhotoURL,
		TokenHash: HashToken(rawToken),
		ExpiresAt: time.Now().Add(g.cfg.SessionTTL),
	}
	if err := g.store.CreateSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	slog.Info("sign-in allowed", "email", ident.Email)
	return &SignInResult{
		Token:     rawToken,
		ExpiresAt: sess.ExpiresAt,
		Identity:  ident,
	}, nil
}

// Authorize reports whether email may use the console right now. The master
// address is compared literally; allowlist entries were normalized when
// they were inserted, so the lookup uses the email as-is.
func (g *Gate) Authorize(ctx context.Context, email string) (bool, error) {
	if email == g.cfg.MasterEmail {
		return true, nil
	}
	return g.store.EmailAllowed(ctx, email)
}

// Resume validates a session token and re-authorizes its identity against
// the current allowlist. A session whose email has since been removed from
// the allowlist is deleted and denied.
func (g *Gate) Resume(ctx context.Context, rawToken string) (*admin.Session, error) {
	sess, err := g.store.GetSessionByHash(ctx, HashToken(rawToken))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("unknown session: %w", domain.ErrDenied)
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	if time.Now().After(sess.ExpiresAt) {
		_ = g.store.DeleteSession(ctx, sess.ID)
		return nil, fmt.Errorf("session expired: %w", domain.ErrDenied)
	}

	allowed, err := g.Authorize(ctx, sess.Email)
	if err != nil {
		return nil, fmt.Errorf("authorize %s: %w", sess.Email, err)
	}
	if !allowed {
		_ = g.store.DeleteSession(ctx, sess.ID)
		slog.Warn("session revoked, email no longer allowlisted", "email", sess.Email)
		return nil, fmt.Errorf("%s is not an authorized admin: %w", sess.Email, domain.ErrDenied)
	}

	return sess, nil
}

// SignOut deletes the session for the given token. Unknown tokens are not
// an error; sign-out is idempotent.
func (g *Gate) SignOut(ctx context.Context, rawToken string) error {
	sess, err := g.store.GetSessionByHash(ctx, HashToken(rawToken))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("get session: %w", err)
	}
	return g.store.DeleteSession(ctx, sess.ID)
}

// StartSweeper runs a background loop deleting expired sessions until ctx
// is cancelled.
func (g *Gate) StartSweeper(ctx context.Context) {
	interval := g.cfg.SweepInterval
	if interval <= 0 {
		interval = 15 * time.Minute
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := g.store.DeleteExpiredSessions(ctx, time.Now())
				if err != nil {
					slog.Error("session sweep failed", "error", err)
					continue
				}
				if n > 0 {
					slog.Info("expired sessions removed", "count", n)
				}
			}
		}
	}()
}

// generateSessionToken returns a 32-byte random token, base64url encoded.
func generateSessionToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// HashToken returns the hex SHA-256 of a session token. Only hashes are
// stored.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

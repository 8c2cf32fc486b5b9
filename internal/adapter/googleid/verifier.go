// Package googleid implements the identity port over Google ID token
// validation.
package googleid

import (
	"context"
	"errors"
	"time"

	"google.golang.org/api/idtoken"

	"github.com/raghavbhatia332/licensedesk/internal/domain/admin"
	"github.com/raghavbhatia332/licensedesk/internal/port/identity"
	"github.com/raghavbhatia332/licensedesk/internal/resilience"
)

const (
	breakerMaxFailures = 10
	breakerTimeout     = 30 * time.Second
)

// Verifier validates Google-issued ID tokens against a fixed audience.
// Validation calls out to Google's certs endpoint, so they run behind a
// circuit breaker.
type Verifier struct {
	audience string
	validate func(ctx context.Context, token, audience string) (*idtoken.Payload, error)
	breaker  *resilience.Breaker
}

// New creates a Verifier for the given OAuth client ID (the token audience).
func New(audience string) *Verifier {
	return &Verifier{
		audience: audience,
		validate: idtoken.Validate,
		breaker:  resilience.NewBreaker(breakerMaxFailures, breakerTimeout),
	}
}

// Verify validates the raw ID token and extracts the asserted identity.
// Provider failures are wrapped as *identity.ProviderError so the message
// can be surfaced to the user verbatim.
func (v *Verifier) Verify(ctx context.Context, rawToken string) (*admin.Identity, error) {
	if rawToken == "" {
		return nil, &identity.ProviderError{Code: "auth/missing-token", Message: "no id token supplied"}
	}

	var payload *idtoken.Payload
	err := v.breaker.Execute(func() error {
		var err error
		payload, err = v.validate(ctx, rawToken, v.audience)
		return err
	})
	if errors.Is(err, resilience.ErrCircuitOpen) {
		return nil, &identity.ProviderError{Code: "auth/provider-unavailable", Message: "token verification temporarily unavailable"}
	}
	if err != nil {
		return nil, &identity.ProviderError{Code: "auth/invalid-token", Message: err.Error()}
	}

	email, _ := payload.Claims["email"].(string)
	if email == "" {
		return nil, &identity.ProviderError{Code: "auth/missing-email", Message: "id token carries no email claim"}
	}

	ident := &admin.Identity{Email: email}
	if name, ok := payload.Claims["name"].(string); ok {
		ident.Name = name
	}
	if picture, ok := payload.Claims["picture"].(string); ok {
		ident.PhotoURL = picture
	}
	return ident, nil
}

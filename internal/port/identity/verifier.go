// Package identity defines the boundary to the third-party identity provider.
package identity

import (
	"context"
	"fmt"

	"github.com/raghavbhatia332/licensedesk/internal/domain/admin"
)

// ProviderError carries the provider's error code and message so the gate
// can surface them to the user verbatim.
type ProviderError struct {
	Code    string
	Message string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("identity provider: %s: %s", e.Code, e.Message)
}

// Verifier validates a raw ID token from the sign-in flow and returns the
// identity it asserts. Failures from the provider are returned as
// *ProviderError.
type Verifier interface {
	Verify(ctx context.Context, rawToken string) (*admin.Identity, error)
}

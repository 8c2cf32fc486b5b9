// Package database defines the database store port (interface).
package database

import (
	"context"
	"time"

	"github.com/raghavbhatia332/licensedesk/internal/domain/admin"
	"github.com/raghavbhatia332/licensedesk/internal/domain/event"
	"github.com/raghavbhatia332/licensedesk/internal/domain/license"
	"github.com/raghavbhatia332/licensedesk/internal/domain/settings"
)

// Store is the port interface for database operations. Mutation methods
// take the change event describing them; the store appends it in the same
// transaction, assigns its sequence number, and fills its payload with the
// resulting entity state.
type Store interface {
	// Licenses
	ListLicenses(ctx context.Context) ([]license.Record, error)
	GetLicense(ctx context.Context, id string) (*license.Record, error)
	// CreateLicense fails with domain.ErrConflict when the identifier
	// already exists. A duplicate add is never an overwrite.
	CreateLicense(ctx context.Context, rec *license.Record, ev *event.ChangeEvent) error
	// UpdateLicense writes the editable fields (client name, expiry date,
	// revenue exclusion). The identifier is the key and is never mutated.
	UpdateLicense(ctx context.Context, rec *license.Record, ev *event.ChangeEvent) error
	// ToggleLicenseStatus flips IsActive and returns the updated record.
	ToggleLicenseStatus(ctx context.Context, id string, ev *event.ChangeEvent) (*license.Record, error)
	// RenewLicense writes the advanced expiry date and incremented renewal
	// count in a single statement and returns the updated record.
	RenewLicense(ctx context.Context, id string, newExpiry license.Date, ev *event.ChangeEvent) (*license.Record, error)
	DeleteLicense(ctx context.Context, id string, ev *event.ChangeEvent) error

	// Admin allowlist
	ListAdmins(ctx context.Context) ([]admin.Entry, error)
	AddAdmin(ctx context.Context, entry *admin.Entry, ev *event.ChangeEvent) error
	RemoveAdmin(ctx context.Context, id string, ev *event.ChangeEvent) error
	// EmailAllowed reports whether the email is present in the allowlist.
	// The master address is checked by the gate, not the store.
	EmailAllowed(ctx context.Context, email string) (bool, error)

	// Settings (singleton)
	GetSettings(ctx context.Context) (*settings.Settings, error)
	UpsertSettings(ctx context.Context, s *settings.Settings, ev *event.ChangeEvent) error

	// Sessions
	CreateSession(ctx context.Context, s *admin.Session) error
	GetSessionByHash(ctx context.Context, tokenHash string) (*admin.Session, error)
	DeleteSession(ctx context.Context, id string) error
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)

	// Change feed catch-up: events with Seq > since, ordered by Seq.
	ListEventsSince(ctx context.Context, since int64, limit int) ([]event.ChangeEvent, error)
}

package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/raghavbhatia332/licensedesk/internal/config"
	"github.com/raghavbhatia332/licensedesk/internal/domain"
	"github.com/raghavbhatia332/licensedesk/internal/domain/admin"
	"github.com/raghavbhatia332/licensedesk/internal/domain/event"
	"github.com/raghavbhatia332/licensedesk/internal/port/changefeed"
	"github.com/raghavbhatia332/licensedesk/internal/port/database"
)

// AllowlistService manages the persisted admin allowlist. The master
// address lives only in configuration: it is never stored and can never be
// removed.
type AllowlistService struct {
	store database.Store
	feed  changefeed.Feed
	cfg   *config.Auth
}

// NewAllowlistService creates a new AllowlistService.
func NewAllowlistService(store database.Store, feed changefeed.Feed, cfg *config.Auth) *AllowlistService {
	return &AllowlistService{store: store, feed: feed, cfg: cfg}
}

// List returns the stored allowlist entries. The master address is not
// among them.
func (s *AllowlistService) List(ctx context.Context) ([]admin.Entry, error) {
	return s.store.ListAdmins(ctx)
}

// Add allowlists a new admin email. The email is lower-cased and trimmed
// at insertion time; the master address is rejected as it is always
// authorized already.
func (s *AllowlistService) Add(ctx context.Context, req *admin.AddRequest, addedBy string) (*admin.Entry, error) {
	if err := req.Validate(); err != nil {
		return nil, validationErr(err)
	}

	email := req.Normalize()
	if email == s.cfg.MasterEmail {
		return nil, fmt.Errorf("master admin is always authorized: %w", domain.ErrConflict)
	}

	entry := &admin.Entry{
		ID:      uuid.NewString(),
		Email:   email,
		AddedBy: addedBy,
	}

	ev := newEvent(event.EntityAdmin, entry.ID, event.TypeCreated)
	if err := s.store.AddAdmin(ctx, entry, ev); err != nil {
		return nil, err
	}
	publishEvent(ctx, s.feed, ev)
	return entry, nil
}

// Remove deletes an allowlist entry by its generated id.
func (s *AllowlistService) Remove(ctx context.Context, id string) error {
	ev := newEvent(event.EntityAdmin, id, event.TypeDeleted)
	if err := s.store.RemoveAdmin(ctx, id, ev); err != nil {
		return err
	}
	publishEvent(ctx, s.feed, ev)
	return nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/raghavbhatia332/licensedesk/internal/domain"
	"github.com/raghavbhatia332/licensedesk/internal/domain/event"
	"github.com/raghavbhatia332/licensedesk/internal/domain/settings"
	"github.com/raghavbhatia332/licensedesk/internal/port/changefeed"
	"github.com/raghavbhatia332/licensedesk/internal/port/database"
)

// SettingsService manages the console-wide settings singleton.
type SettingsService struct {
	store database.Store
	feed  changefeed.Feed
}

func NewSettingsService(store database.Store, feed changefeed.Feed) *SettingsService {
	return &SettingsService{store: store, feed: feed}
}

// Get returns the settings singleton, or zero-value defaults before the
// first update ever happens.
func (s *SettingsService) Get(ctx context.Context) (*settings.Settings, error) {
	st, err := s.store.GetSettings(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return &settings.Settings{}, nil
		}
		return nil, fmt.Errorf("get settings: %w", err)
	}
	return st, nil
}

// Update replaces the settings singleton with the supplied values.
func (s *SettingsService) Update(ctx context.Context, req settings.UpdateRequest) (*settings.Settings, error) {
	if err := req.Validate(); err != nil {
		return nil, validationErr(err)
	}
	next := &settings.Settings{
		AdminEmail:  req.AdminEmail,
		TrialPeriod: req.TrialPeriod,
		UpdatedAt:   time.Now().UTC(),
	}

	ev := newEvent(event.EntitySettings, "settings", event.TypeUpdated)
	if err := s.store.UpsertSettings(ctx, next, ev); err != nil {
		return nil, fmt.Errorf("upsert settings: %w", err)
	}
	publishEvent(ctx, s.feed, ev)
	return next, nil
}

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/raghavbhatia332/licensedesk/internal/domain/event"
	"github.com/raghavbhatia332/licensedesk/internal/domain/license"
	"github.com/raghavbhatia332/licensedesk/internal/port/changefeed"
	"github.com/raghavbhatia332/licensedesk/internal/port/database"
)

// LicenseService manages license records and their derived view state.
// Mutations commit to the store together with a change event, then publish
// the event on the feed; consoles see results only once the store has
// confirmed them.
type LicenseService struct {
	store database.Store
	feed  changefeed.Feed
}

// NewLicenseService creates a new LicenseService.
func NewLicenseService(store database.Store, feed changefeed.Feed) *LicenseService {
	return &LicenseService{store: store, feed: feed}
}

// List returns all records with derived display state computed at read time.
func (s *LicenseService) List(ctx context.Context) ([]license.View, error) {
	recs, err := s.store.ListLicenses(ctx)
	if err != nil {
		return nil, fmt.Errorf("list licenses: %w", err)
	}
	return license.NewViews(recs, time.Now()), nil
}

// Get returns a single record with derived display state.
func (s *LicenseService) Get(ctx context.Context, id string) (*license.View, error) {
	rec, err := s.store.GetLicense(ctx, id)
	if err != nil {
		return nil, err
	}
	v := license.NewView(*rec, time.Now())
	return &v, nil
}

// Create adds a new record. IsActive is forced true regardless of caller
// input; a duplicate identifier is rejected with a conflict.
func (s *LicenseService) Create(ctx context.Context, req *license.CreateRequest) (*license.Record, error) {
	if err := req.Validate(); err != nil {
		return nil, validationErr(err)
	}

	rec := &license.Record{
		ID:                 req.ID,
		ClientName:         req.ClientName,
		ExpiryDate:         req.ExpiryDate,
		IsActive:           true,
		ExcludeFromRevenue: req.ExcludeFromRevenue,
	}

	ev := newEvent(event.EntityLicense, rec.ID, event.TypeCreated)
	if err := s.store.CreateLicense(ctx, rec, ev); err != nil {
		return nil, err
	}
	publishEvent(ctx, s.feed, ev)
	return rec, nil
}

// Update merges the editable fields into the record. The identifier is not
// part of the request and cannot change.
func (s *LicenseService) Update(ctx context.Context, id string, req license.UpdateRequest) (*license.Record, error) {
	if err := req.Validate(); err != nil {
		return nil, validationErr(err)
	}

	rec, err := s.store.GetLicense(ctx, id)
	if err != nil {
		return nil, err
	}
	req.ApplyTo(rec)

	ev := newEvent(event.EntityLicense, rec.ID, event.TypeUpdated)
	if err := s.store.UpdateLicense(ctx, rec, ev); err != nil {
		return nil, err
	}
	publishEvent(ctx, s.feed, ev)
	return rec, nil
}

// ToggleStatus flips the record's active flag, touching nothing else.
func (s *LicenseService) ToggleStatus(ctx context.Context, id string) (*license.Record, error) {
	ev := newEvent(event.EntityLicense, id, event.TypeStatusToggled)
	rec, err := s.store.ToggleLicenseStatus(ctx, id, ev)
	if err != nil {
		return nil, err
	}
	publishEvent(ctx, s.feed, ev)
	return rec, nil
}

// Renew advances the expiry by exactly one calendar year from its current
// value — never from "now" — and increments the renewal count, atomically.
// The result is returned only after the store confirms the write.
func (s *LicenseService) Renew(ctx context.Context, id string) (*license.Record, error) {
	rec, err := s.store.GetLicense(ctx, id)
	if err != nil {
		return nil, err
	}

	ev := newEvent(event.EntityLicense, id, event.TypeRenewed)
	renewed, err := s.store.RenewLicense(ctx, id, rec.ExpiryDate.NextRenewal(), ev)
	if err != nil {
		return nil, err
	}
	publishEvent(ctx, s.feed, ev)
	return renewed, nil
}

// Delete removes the record outright. Irreversible.
func (s *LicenseService) Delete(ctx context.Context, id string) error {
	ev := newEvent(event.EntityLicense, id, event.TypeDeleted)
	if err := s.store.DeleteLicense(ctx, id, ev); err != nil {
		return err
	}
	publishEvent(ctx, s.feed, ev)
	return nil
}

// Stats recomputes the derived summary over the whole collection.
func (s *LicenseService) Stats(ctx context.Context) (*license.Stats, error) {
	recs, err := s.store.ListLicenses(ctx)
	if err != nil {
		return nil, fmt.Errorf("list licenses: %w", err)
	}
	st := license.ComputeStats(recs, time.Now())
	return &st, nil
}

// EventsSince returns change events for reconnect catch-up.
func (s *LicenseService) EventsSince(ctx context.Context, since int64, limit int) ([]event.ChangeEvent, error) {
	return s.store.ListEventsSince(ctx, since, limit)
}

// publishEvent puts a committed change event on the feed. The mutation has
// already committed; a publish failure is logged and left to the catch-up
// endpoint rather than failing the request.
func publishEvent(ctx context.Context, feed changefeed.Feed, ev *event.ChangeEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		slog.Error("marshal change event", "seq", ev.Seq, "error", err)
		return
	}
	if err := feed.Publish(ctx, ev.Subject(), data); err != nil {
		slog.Error("publish change event", "subject", ev.Subject(), "seq", ev.Seq, "error", err)
	}
}

func newEvent(entity event.Entity, entityID string, typ event.Type) *event.ChangeEvent {
	return &event.ChangeEvent{
		ID:       uuid.NewString(),
		Entity:   entity,
		EntityID: entityID,
		Type:     typ,
	}
}

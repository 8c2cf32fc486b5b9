package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/raghavbhatia332/licensedesk/internal/domain"
	"github.com/raghavbhatia332/licensedesk/internal/domain/admin"
	"github.com/raghavbhatia332/licensedesk/internal/domain/event"
	"github.com/raghavbhatia332/licensedesk/internal/domain/license"
	"github.com/raghavbhatia332/licensedesk/internal/domain/settings"
	"github.com/raghavbhatia332/licensedesk/internal/port/changefeed"
	"github.com/raghavbhatia332/licensedesk/internal/port/database"
)

// Ensure mockStore implements database.Store at compile time.
var _ database.Store = (*mockStore)(nil)

// mockStore is a minimal in-memory implementation of database.Store for
// testing. Mutations append the change event the way the real store does.
type mockStore struct {
	licenses []license.Record
	admins   []admin.Entry
	sessions []admin.Session
	settings *settings.Settings
	events   []event.ChangeEvent
	seq      int64

	// Error hooks — set these to inject failures.
	listLicensesErr  error
	getLicenseErr    error
	createLicenseErr error
	updateLicenseErr error
	addAdminErr      error
	emailAllowedErr  error
	createSessionErr error
}

func (m *mockStore) appendEvent(ev *event.ChangeEvent, payload any) {
	m.seq++
	ev.Seq = m.seq
	ev.OccurredAt = time.Now()
	if payload != nil {
		ev.Payload, _ = json.Marshal(payload)
	}
	m.events = append(m.events, *ev)
}

func (m *mockStore) ListLicenses(_ context.Context) ([]license.Record, error) {
	return m.licenses, m.listLicensesErr
}

func (m *mockStore) GetLicense(_ context.Context, id string) (*license.Record, error) {
	if m.getLicenseErr != nil {
		return nil, m.getLicenseErr
	}
	for i := range m.licenses {
		if m.licenses[i].ID == id {
			rec := m.licenses[i]
			return &rec, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) CreateLicense(_ context.Context, rec *license.Record, ev *event.ChangeEvent) error {
	if m.createLicenseErr != nil {
		return m.createLicenseErr
	}
	for i := range m.licenses {
		if m.licenses[i].ID == rec.ID {
			return domain.ErrConflict
		}
	}
	rec.CreatedAt = time.Now()
	rec.UpdatedAt = rec.CreatedAt
	m.licenses = append(m.licenses, *rec)
	m.appendEvent(ev, rec)
	return nil
}

func (m *mockStore) UpdateLicense(_ context.Context, rec *license.Record, ev *event.ChangeEvent) error {
	if m.updateLicenseErr != nil {
		return m.updateLicenseErr
	}
	for i := range m.licenses {
		if m.licenses[i].ID == rec.ID {
			rec.UpdatedAt = time.Now()
			m.licenses[i] = *rec
			m.appendEvent(ev, rec)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *mockStore) ToggleLicenseStatus(_ context.Context, id string, ev *event.ChangeEvent) (*license.Record, error) {
	for i := range m.licenses {
		if m.licenses[i].ID == id {
			m.licenses[i].IsActive = !m.licenses[i].IsActive
			m.licenses[i].UpdatedAt = time.Now()
			rec := m.licenses[i]
			m.appendEvent(ev, &rec)
			return &rec, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) RenewLicense(_ context.Context, id string, newExpiry license.Date, ev *event.ChangeEvent) (*license.Record, error) {
	for i := range m.licenses {
		if m.licenses[i].ID == id {
			m.licenses[i].ExpiryDate = newExpiry
			m.licenses[i].RenewalCount++
			m.licenses[i].UpdatedAt = time.Now()
			rec := m.licenses[i]
			m.appendEvent(ev, &rec)
			return &rec, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) DeleteLicense(_ context.Context, id string, ev *event.ChangeEvent) error {
	for i := range m.licenses {
		if m.licenses[i].ID == id {
			m.licenses = append(m.licenses[:i], m.licenses[i+1:]...)
			m.appendEvent(ev, nil)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *mockStore) ListAdmins(_ context.Context) ([]admin.Entry, error) {
	return m.admins, nil
}

func (m *mockStore) AddAdmin(_ context.Context, entry *admin.Entry, ev *event.ChangeEvent) error {
	if m.addAdminErr != nil {
		return m.addAdminErr
	}
	for i := range m.admins {
		if m.admins[i].Email == entry.Email {
			return domain.ErrConflict
		}
	}
	entry.CreatedAt = time.Now()
	m.admins = append(m.admins, *entry)
	m.appendEvent(ev, entry)
	return nil
}

func (m *mockStore) RemoveAdmin(_ context.Context, id string, ev *event.ChangeEvent) error {
	for i := range m.admins {
		if m.admins[i].ID == id {
			m.admins = append(m.admins[:i], m.admins[i+1:]...)
			m.appendEvent(ev, nil)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *mockStore) EmailAllowed(_ context.Context, email string) (bool, error) {
	if m.emailAllowedErr != nil {
		return false, m.emailAllowedErr
	}
	for i := range m.admins {
		if m.admins[i].Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockStore) GetSettings(_ context.Context) (*settings.Settings, error) {
	if m.settings == nil {
		return nil, domain.ErrNotFound
	}
	st := *m.settings
	return &st, nil
}

func (m *mockStore) UpsertSettings(_ context.Context, st *settings.Settings, ev *event.ChangeEvent) error {
	cp := *st
	m.settings = &cp
	m.appendEvent(ev, st)
	return nil
}

func (m *mockStore) CreateSession(_ context.Context, s *admin.Session) error {
	if m.createSessionErr != nil {
		return m.createSessionErr
	}
	m.sessions = append(m.sessions, *s)
	return nil
}

func (m *mockStore) GetSessionByHash(_ context.Context, tokenHash string) (*admin.Session, error) {
	for i := range m.sessions {
		if m.sessions[i].TokenHash == tokenHash {
			s := m.sessions[i]
			return &s, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) DeleteSession(_ context.Context, id string) error {
	for i := range m.sessions {
		if m.sessions[i].ID == id {
			m.sessions = append(m.sessions[:i], m.sessions[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *mockStore) DeleteExpiredSessions(_ context.Context, now time.Time) (int64, error) {
	var kept []admin.Session
	var deleted int64
	for _, s := range m.sessions {
		if now.After(s.ExpiresAt) {
			deleted++
			continue
		}
		kept = append(kept, s)
	}
	m.sessions = kept
	return deleted, nil
}

func (m *mockStore) ListEventsSince(_ context.Context, since int64, limit int) ([]event.ChangeEvent, error) {
	var out []event.ChangeEvent
	for _, ev := range m.events {
		if ev.Seq > since {
			out = append(out, ev)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// recordingFeed captures published subjects for assertions.
type recordingFeed struct {
	mu        sync.Mutex
	published []string
}

var _ changefeed.Feed = (*recordingFeed)(nil)

func (f *recordingFeed) Publish(_ context.Context, subject string, _ []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, subject)
	return nil
}

func (f *recordingFeed) Subscribe(_ context.Context, _ string, _ changefeed.Handler) (func(), error) {
	return func() {}, nil
}

func (f *recordingFeed) subjects() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.published...)
}

// stubVerifier returns a fixed identity or error.
type stubVerifier struct {
	ident *admin.Identity
	err   error
}

func (v *stubVerifier) Verify(_ context.Context, _ string) (*admin.Identity, error) {
	return v.ident, v.err
}

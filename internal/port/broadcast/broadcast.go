// Package broadcast defines the port for broadcasting real-time events to connected consoles.
package broadcast

import (
	"context"

	"github.com/raghavbhatia332/licensedesk/internal/domain/license"
)

// Event type strings consoles key on. License, admin, and settings events
// carry the change-feed event as payload; stats snapshots carry the
// recomputed derived totals.
const (
	EventLicenseCreated = "license.created"
	EventLicenseUpdated = "license.updated"
	EventLicenseStatus  = "license.status_toggled"
	EventLicenseRenewed = "license.renewed"
	EventLicenseDeleted = "license.deleted"
	EventAdminAdded     = "admin.created"
	EventAdminRemoved   = "admin.deleted"
	EventSettings       = "settings.updated"
	EventStatsSnapshot  = "stats.snapshot"
)

// StatsSnapshot is broadcast after every license change so consoles can
// redraw the summary cards without refetching.
type StatsSnapshot struct {
	Stats license.Stats `json:"stats"`
}

// Broadcaster sends real-time events to all connected consoles.
type Broadcaster interface {
	// BroadcastEvent sends a typed event to all connected consoles.
	BroadcastEvent(ctx context.Context, eventType string, payload any)
}

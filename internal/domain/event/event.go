// Package event defines the change-feed events emitted for every committed
// mutation. Events are appended to the store in the same transaction as the
// mutation they describe and rebroadcast to connected consoles.
package event

import (
	"encoding/json"
	"time"
)

// Entity identifies which collection an event belongs to.
type Entity string

const (
	EntityLicense  Entity = "license"
	EntityAdmin    Entity = "admin"
	EntitySettings Entity = "settings"
)

// Type identifies what happened to the entity.
type Type string

const (
	TypeCreated       Type = "created"
	TypeUpdated       Type = "updated"
	TypeStatusToggled Type = "status_toggled"
	TypeRenewed       Type = "renewed"
	TypeDeleted       Type = "deleted"
)

// ChangeEvent is one entry in the append-only change feed. Seq is assigned
// by the store and is strictly increasing; consumers use it for ordering
// and reconnect catch-up.
type ChangeEvent struct {
	ID         string          `json:"id"`
	Seq        int64           `json:"seq"`
	Entity     Entity          `json:"entity"`
	EntityID   string          `json:"entity_id"`
	Type       Type            `json:"type"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// Subject returns the feed subject this event is published on,
// e.g. "licenses.created" or "admins.deleted".
func (e *ChangeEvent) Subject() string {
	switch e.Entity {
	case EntityLicense:
		return "licenses." + string(e.Type)
	case EntityAdmin:
		return "admins." + string(e.Type)
	default:
		return "settings." + string(e.Type)
	}
}

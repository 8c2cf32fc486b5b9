package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/raghavbhatia332/licensedesk/internal/domain/event"
)

// appendEventTx inserts a change event inside the mutation's transaction.
// The store assigns the sequence number and, when payloadSrc is non-nil,
// serializes it as the event payload.
func (s *Store) appendEventTx(ctx context.Context, tx pgx.Tx, ev *event.ChangeEvent, payloadSrc any) error {
	if ev == nil {
		return nil
	}
	if payloadSrc != nil {
		data, err := json.Marshal(payloadSrc)
		if err != nil {
			return fmt.Errorf("marshal event payload: %w", err)
		}
		ev.Payload = data
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}

	err := tx.QueryRow(ctx, `
		INSERT INTO change_events (id, entity, entity_id, type, payload, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING seq`,
		ev.ID, ev.Entity, ev.EntityID, ev.Type, ev.Payload, ev.OccurredAt,
	).Scan(&ev.Seq)
	if err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	return nil
}

// ListEventsSince returns up to limit events with seq > since, oldest first.
func (s *Store) ListEventsSince(ctx context.Context, since int64, limit int) ([]event.ChangeEvent, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, seq, entity, entity_id, type, payload, occurred_at
		FROM change_events WHERE seq > $1 ORDER BY seq LIMIT $2`,
		since, limit)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []event.ChangeEvent
	for rows.Next() {
		var ev event.ChangeEvent
		if err := rows.Scan(&ev.ID, &ev.Seq, &ev.Entity, &ev.EntityID, &ev.Type, &ev.Payload, &ev.OccurredAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/raghavbhatia332/licensedesk/internal/domain/admin"
	"github.com/raghavbhatia332/licensedesk/internal/domain/event"
)

func (s *Store) ListAdmins(ctx context.Context) ([]admin.Entry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, email, added_by, created_at
		FROM admins ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	defer rows.Close()

	var entries []admin.Entry
	for rows.Next() {
		var e admin.Entry
		if err := rows.Scan(&e.ID, &e.Email, &e.AddedBy, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan admin: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *Store) AddAdmin(ctx context.Context, entry *admin.Entry, ev *event.ChangeEvent) error {
	entry.CreatedAt = time.Now().UTC()

	return s.inTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO admins (id, email, added_by, created_at)
			VALUES ($1, $2, $3, $4)`,
			entry.ID, entry.Email, entry.AddedBy, entry.CreatedAt,
		)
		if err != nil {
			return conflictWrap(err, "add admin %s", entry.Email)
		}
		return s.appendEventTx(ctx, tx, ev, entry)
	})
}

func (s *Store) RemoveAdmin(ctx context.Context, id string, ev *event.ChangeEvent) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM admins WHERE id = $1`, id)
		if err := execExpectOne(tag, err, "remove admin %s", id); err != nil {
			return err
		}
		return s.appendEventTx(ctx, tx, ev, nil)
	})
}

// EmailAllowed reports whether email is present in the allowlist. Always a
// fresh read; allowlist membership is never cached.
func (s *Store) EmailAllowed(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM admins WHERE email = $1)`, email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check allowlist %s: %w", email, err)
	}
	return exists, nil
}

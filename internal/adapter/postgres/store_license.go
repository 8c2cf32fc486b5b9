package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/raghavbhatia332/licensedesk/internal/domain/event"
	"github.com/raghavbhatia332/licensedesk/internal/domain/license"
)

const licenseColumns = `id, client_name, expiry_date, is_active, exclude_from_revenue, renewal_count, last_active, created_at, updated_at`

// scannable abstracts pgx.Row and pgx.Rows for shared scan helpers.
type scannable interface {
	Scan(dest ...any) error
}

func scanLicense(row scannable) (license.Record, error) {
	var rec license.Record
	var expiry time.Time
	err := row.Scan(&rec.ID, &rec.ClientName, &expiry, &rec.IsActive,
		&rec.ExcludeFromRevenue, &rec.RenewalCount, &rec.LastActive,
		&rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return rec, err
	}
	rec.ExpiryDate = license.Date{Time: expiry}
	return rec, nil
}

func (s *Store) ListLicenses(ctx context.Context) ([]license.Record, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+licenseColumns+` FROM licenses ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list licenses: %w", err)
	}
	defer rows.Close()

	var recs []license.Record
	for rows.Next() {
		rec, err := scanLicense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan license: %w", err)
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

func (s *Store) GetLicense(ctx context.Context, id string) (*license.Record, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+licenseColumns+` FROM licenses WHERE id = $1`, id)

	rec, err := scanLicense(row)
	if err != nil {
		return nil, notFoundWrap(err, "get license %s", id)
	}
	return &rec, nil
}

// CreateLicense inserts a new record and appends the change event in the
// same transaction. A duplicate identifier is a conflict, never an overwrite.
func (s *Store) CreateLicense(ctx context.Context, rec *license.Record, ev *event.ChangeEvent) error {
	now := time.Now().UTC()
	rec.CreatedAt = now
	rec.UpdatedAt = now

	return s.inTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO licenses (id, client_name, expiry_date, is_active, exclude_from_revenue, renewal_count, last_active, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			rec.ID, rec.ClientName, rec.ExpiryDate.Time, rec.IsActive,
			rec.ExcludeFromRevenue, rec.RenewalCount, rec.LastActive,
			rec.CreatedAt, rec.UpdatedAt,
		)
		if err != nil {
			return conflictWrap(err, "create license %s", rec.ID)
		}
		return s.appendEventTx(ctx, tx, ev, rec)
	})
}

// UpdateLicense writes the editable fields of rec. The identifier is the
// key and is never mutated.
func (s *Store) UpdateLicense(ctx context.Context, rec *license.Record, ev *event.ChangeEvent) error {
	rec.UpdatedAt = time.Now().UTC()

	return s.inTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE licenses SET client_name = $2, expiry_date = $3, exclude_from_revenue = $4, updated_at = $5
			WHERE id = $1`,
			rec.ID, rec.ClientName, rec.ExpiryDate.Time, rec.ExcludeFromRevenue, rec.UpdatedAt,
		)
		if err := execExpectOne(tag, err, "update license %s", rec.ID); err != nil {
			return err
		}
		return s.appendEventTx(ctx, tx, ev, rec)
	})
}

// ToggleLicenseStatus flips is_active and returns the updated record.
func (s *Store) ToggleLicenseStatus(ctx context.Context, id string, ev *event.ChangeEvent) (*license.Record, error) {
	var rec license.Record
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
			UPDATE licenses SET is_active = NOT is_active, updated_at = $2
			WHERE id = $1
			RETURNING `+licenseColumns, id, time.Now().UTC())

		var err error
		rec, err = scanLicense(row)
		if err != nil {
			return notFoundWrap(err, "toggle license %s", id)
		}
		return s.appendEventTx(ctx, tx, ev, &rec)
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// RenewLicense writes the advanced expiry date and the incremented renewal
// count in one statement, so the pair is atomic.
func (s *Store) RenewLicense(ctx context.Context, id string, newExpiry license.Date, ev *event.ChangeEvent) (*license.Record, error) {
	var rec license.Record
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
			UPDATE licenses SET expiry_date = $2, renewal_count = renewal_count + 1, updated_at = $3
			WHERE id = $1
			RETURNING `+licenseColumns, id, newExpiry.Time, time.Now().UTC())

		var err error
		rec, err = scanLicense(row)
		if err != nil {
			return notFoundWrap(err, "renew license %s", id)
		}
		return s.appendEventTx(ctx, tx, ev, &rec)
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *Store) DeleteLicense(ctx context.Context, id string, ev *event.ChangeEvent) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM licenses WHERE id = $1`, id)
		if err := execExpectOne(tag, err, "delete license %s", id); err != nil {
			return err
		}
		return s.appendEventTx(ctx, tx, ev, nil)
	})
}

// inTx runs fn inside a transaction, committing on success.
func (s *Store) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

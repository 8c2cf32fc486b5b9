package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/raghavbhatia332/licensedesk/internal/domain/event"
	"github.com/raghavbhatia332/licensedesk/internal/domain/settings"
)

// The settings table holds exactly one row, keyed by a constant id.
const settingsRowID = 1

func (s *Store) GetSettings(ctx context.Context) (*settings.Settings, error) {
	var st settings.Settings
	err := s.pool.QueryRow(ctx, `
		SELECT admin_email, trial_period, updated_at
		FROM settings WHERE id = $1`, settingsRowID,
	).Scan(&st.AdminEmail, &st.TrialPeriod, &st.UpdatedAt)
	if err != nil {
		return nil, notFoundWrap(err, "get settings")
	}
	return &st, nil
}

func (s *Store) UpsertSettings(ctx context.Context, st *settings.Settings, ev *event.ChangeEvent) error {
	st.UpdatedAt = time.Now().UTC()

	return s.inTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO settings (id, admin_email, trial_period, updated_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (id) DO UPDATE SET admin_email = EXCLUDED.admin_email,
				trial_period = EXCLUDED.trial_period, updated_at = EXCLUDED.updated_at`,
			settingsRowID, st.AdminEmail, st.TrialPeriod, st.UpdatedAt,
		)
		if err != nil {
			return conflictWrap(err, "upsert settings")
		}
		return s.appendEventTx(ctx, tx, ev, st)
	})
}

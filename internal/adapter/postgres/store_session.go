package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/raghavbhatia332/licensedesk/internal/domain/admin"
)

func (s *Store) CreateSession(ctx context.Context, sess *admin.Session) error {
	sess.CreatedAt = time.Now().UTC()
	_, err := s.pool.Exec(ctx, `
		INSERT INTO sessions (id, email, name, photo_url, token_hash, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		sess.ID, sess.Email, sess.Name, sess.PhotoURL, sess.TokenHash,
		sess.ExpiresAt, sess.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (s *Store) GetSessionByHash(ctx context.Context, tokenHash string) (*admin.Session, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, email, name, photo_url, token_hash, expires_at, created_at
		FROM sessions WHERE token_hash = $1`, tokenHash)

	var sess admin.Session
	err := row.Scan(&sess.ID, &sess.Email, &sess.Name, &sess.PhotoURL,
		&sess.TokenHash, &sess.ExpiresAt, &sess.CreatedAt)
	if err != nil {
		return nil, notFoundWrap(err, "get session")
	}
	return &sess, nil
}

func (s *Store) DeleteSession(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	return execExpectOne(tag, err, "delete session %s", id)
}

// DeleteExpiredSessions removes sessions past their expiry. Returns the
// number of rows removed.
func (s *Store) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}

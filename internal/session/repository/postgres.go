package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"smallbiz-erp/backend/internal/db"
	"smallbiz-erp/backend/internal/session/domain"
)

const sessionColumns = `id, user_id, org_id, expires_at, revoked_at, last_seen_at, ip_address, created_at`

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a session repository that uses the given db for persistence.
func NewPostgresRepository(conn *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: conn}
}

// GetByID returns the session for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = $1`, id)
	s, err := scanSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return s, nil
}

// Create persists the session to the database. The session must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, s *domain.Session) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (`+sessionColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		s.ID, s.UserID, s.TenantID(), s.ExpiresAt,
		db.NullTime(s.RevokedAt), db.NullTime(s.LastSeenAt), s.IPAddress, s.CreatedAt,
	)
	return err
}

// Revoke marks the session with the given id as revoked. Revoking an already revoked or
// unknown session is not an error.
func (r *PostgresRepository) Revoke(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE sessions SET revoked_at = $2 WHERE id = $1 AND revoked_at IS NULL`, id, time.Now().UTC())
	return err
}

// DeleteExpired removes sessions that expired before the given time and returns how many were removed.
func (r *PostgresRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at < $1`, before)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*domain.Session, error) {
	var (
		s          domain.Session
		revokedAt  sql.NullTime
		lastSeenAt sql.NullTime
	)
	if err := row.Scan(&s.ID, &s.UserID, &s.OrgID, &s.ExpiresAt, &revokedAt, &lastSeenAt, &s.IPAddress, &s.CreatedAt); err != nil {
		return nil, err
	}
	s.RevokedAt = db.TimePtr(revokedAt)
	s.LastSeenAt = db.TimePtr(lastSeenAt)
	return &s, nil
}

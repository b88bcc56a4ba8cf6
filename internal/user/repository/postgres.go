package repository

import (
	"context"
	"database/sql"
	"errors"

	"smallbiz-erp/backend/internal/db"
	"smallbiz-erp/backend/internal/user/domain"
)

// EmailConstraint is the unique constraint on users.email.
const EmailConstraint = "users_email_key"

const userColumns = `id, org_id, email, name, status, created_at, updated_at`

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a user repository that uses the given db for persistence.
func NewPostgresRepository(conn *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: conn}
}

// GetByEmail returns the user with the given email, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

// Insert writes u with q, which may be a transaction.
func Insert(ctx context.Context, q db.Querier, u *domain.User) error {
	if err := u.Validate(); err != nil {
		return err
	}
	_, err := q.ExecContext(ctx, `
		INSERT INTO users (id, org_id, email, name, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		u.ID, db.NullString(u.OrgID), u.Email, u.Name, string(u.Status), u.CreatedAt, u.UpdatedAt)
	return err
}

func scanUser(row *sql.Row) (*domain.User, error) {
	var (
		u      domain.User
		orgID  sql.NullString
		status string
	)
	if err := row.Scan(&u.ID, &orgID, &u.Email, &u.Name, &status, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	u.OrgID = orgID.String
	u.Status = domain.UserStatus(status)
	return &u, nil
}

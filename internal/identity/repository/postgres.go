package repository

import (
	"context"
	"database/sql"
	"errors"

	"smallbiz-erp/backend/internal/db"
	"smallbiz-erp/backend/internal/identity/domain"
	orgdomain "smallbiz-erp/backend/internal/organization/domain"
	orgrepo "smallbiz-erp/backend/internal/organization/repository"
	userdomain "smallbiz-erp/backend/internal/user/domain"
	userrepo "smallbiz-erp/backend/internal/user/repository"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an identity repository that uses the given db for persistence.
func NewPostgresRepository(conn *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: conn}
}

// GetByUserAndProvider returns the identity for the given user and provider, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByUserAndProvider(ctx context.Context, userID string, provider domain.IdentityProvider) (*domain.Identity, error) {
	var (
		i domain.Identity
		p string
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, provider, provider_id, password_hash, created_at
		FROM identities WHERE user_id = $1 AND provider = $2`, userID, string(provider),
	).Scan(&i.ID, &i.UserID, &p, &i.ProviderID, &i.PasswordHash, &i.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	i.Provider = domain.IdentityProvider(p)
	return &i, nil
}

// CreateAccount writes org, user and identity in one transaction. A duplicate email surfaces
// as a unique violation on users_email_key and leaves no rows behind.
func (r *PostgresRepository) CreateAccount(ctx context.Context, org *orgdomain.Org, user *userdomain.User, ident *domain.Identity) error {
	return db.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := orgrepo.Insert(ctx, tx, org); err != nil {
			return err
		}
		if err := userrepo.Insert(ctx, tx, user); err != nil {
			return err
		}
		return insertIdentity(ctx, tx, ident)
	})
}

func insertIdentity(ctx context.Context, q db.Querier, i *domain.Identity) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO identities (id, user_id, provider, provider_id, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		i.ID, i.UserID, string(i.Provider), i.ProviderID, i.PasswordHash, i.CreatedAt)
	return err
}

package repository

import (
	"context"
	"database/sql"
	"errors"

	"smallbiz-erp/backend/internal/db"
	"smallbiz-erp/backend/internal/party/domain"
	"smallbiz-erp/backend/internal/platform/tenancy"
)

const partyColumns = `id, org_id, name, email, phone, address, created_at`

type PostgresRepository struct {
	db    *sql.DB
	table string
}

// NewPostgresRepository returns the repository for parties of kind.
func NewPostgresRepository(conn *sql.DB, kind domain.Kind) *PostgresRepository {
	return &PostgresRepository{db: conn, table: kind.Table()}
}

// List returns the org's parties, newest first.
func (r *PostgresRepository) List(ctx context.Context, orgID string) ([]*domain.Party, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+partyColumns+` FROM `+r.table+` WHERE org_id = $1 ORDER BY created_at DESC`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Party
	for rows.Next() {
		p, err := scanParty(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) Get(ctx context.Context, orgID, id string) (*domain.Party, error) {
	if err := tenancy.CheckID(id); err != nil {
		return nil, err
	}
	p, err := scanParty(r.db.QueryRowContext(ctx,
		`SELECT `+partyColumns+` FROM `+r.table+` WHERE id = $1 AND org_id = $2`, id, orgID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, tenancy.ErrNotFound
	}
	return p, err
}

func (r *PostgresRepository) Create(ctx context.Context, orgID string, p *domain.Party) error {
	p.OrgID = orgID
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO `+r.table+` (id, org_id, name, email, phone, address, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		p.ID, orgID, p.Name, db.NullString(p.Email), db.NullString(p.Phone), db.NullString(p.Address), p.CreatedAt)
	return err
}

func (r *PostgresRepository) Delete(ctx context.Context, orgID, id string) error {
	return tenancy.DeleteScoped(ctx, r.db, `DELETE FROM `+r.table+` WHERE id = $1 AND org_id = $2`, orgID, id)
}

func (r *PostgresRepository) Count(ctx context.Context, orgID string) (int, error) {
	return db.Count(ctx, r.db, `SELECT count(*) FROM `+r.table+` WHERE org_id = $1`, orgID)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanParty(s scanner) (*domain.Party, error) {
	var (
		p                     domain.Party
		email, phone, address sql.NullString
	)
	if err := s.Scan(&p.ID, &p.OrgID, &p.Name, &email, &phone, &address, &p.CreatedAt); err != nil {
		return nil, err
	}
	p.Email, p.Phone, p.Address = email.String, phone.String, address.String
	return &p, nil
}

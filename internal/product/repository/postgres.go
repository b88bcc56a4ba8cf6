package repository

import (
	"context"
	"database/sql"
	"errors"

	"smallbiz-erp/backend/internal/db"
	"smallbiz-erp/backend/internal/platform/tenancy"
	"smallbiz-erp/backend/internal/product/domain"
)

const productColumns = `id, org_id, sku, name, unit, price_cents, created_at`

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(conn *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: conn}
}

// List returns the org's products ordered by SKU.
func (r *PostgresRepository) List(ctx context.Context, orgID string) ([]*domain.Product, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE org_id = $1 ORDER BY sku`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.OrgID, &p.SKU, &p.Name, &p.Unit, &p.PriceCents, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) Get(ctx context.Context, orgID, id string) (*domain.Product, error) {
	if err := tenancy.CheckID(id); err != nil {
		return nil, err
	}
	var p domain.Product
	err := r.db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1 AND org_id = $2`, id, orgID).
		Scan(&p.ID, &p.OrgID, &p.SKU, &p.Name, &p.Unit, &p.PriceCents, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, tenancy.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PostgresRepository) Create(ctx context.Context, orgID string, p *domain.Product) error {
	p.OrgID = orgID
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO products (id, org_id, sku, name, unit, price_cents, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		p.ID, orgID, p.SKU, p.Name, p.Unit, p.PriceCents, p.CreatedAt)
	return err
}

// Delete removes the product with its stock moves; document lines keep their text and lose the link.
func (r *PostgresRepository) Delete(ctx context.Context, orgID, id string) error {
	return tenancy.DeleteScoped(ctx, r.db, `DELETE FROM products WHERE id = $1 AND org_id = $2`, orgID, id)
}

func (r *PostgresRepository) Count(ctx context.Context, orgID string) (int, error) {
	return db.Count(ctx, r.db, `SELECT count(*) FROM products WHERE org_id = $1`, orgID)
}

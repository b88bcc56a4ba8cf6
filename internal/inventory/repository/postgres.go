package repository

import (
	"context"
	"database/sql"

	"smallbiz-erp/backend/internal/db"
	"smallbiz-erp/backend/internal/inventory/domain"
	"smallbiz-erp/backend/internal/platform/tenancy"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(conn *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: conn}
}

func (r *PostgresRepository) ListMoves(ctx context.Context, orgID string, limit int) ([]*domain.Move, error) {
	if limit <= 0 {
		limit = 200
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT m.id, m.org_id, m.product_id, p.sku, p.name, m.type, m.qty, m.note, m.created_at
		FROM inventory_moves m JOIN products p ON p.id = m.product_id
		WHERE m.org_id = $1
		ORDER BY m.created_at DESC LIMIT $2`, orgID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Move
	for rows.Next() {
		var (
			m    domain.Move
			typ  string
			note sql.NullString
		)
		if err := rows.Scan(&m.ID, &m.OrgID, &m.ProductID, &m.ProductSKU, &m.ProductName, &typ, &m.Qty, &note, &m.CreatedAt); err != nil {
			return nil, err
		}
		m.Type = domain.MoveType(typ)
		m.Note = note.String
		out = append(out, &m)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) CreateMove(ctx context.Context, orgID string, m *domain.Move) error {
	m.OrgID = orgID
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO inventory_moves (id, org_id, product_id, type, qty, note, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		m.ID, orgID, m.ProductID, string(m.Type), m.Qty, db.NullString(m.Note), m.CreatedAt)
	return err
}

func (r *PostgresRepository) DeleteMove(ctx context.Context, orgID, id string) error {
	return tenancy.DeleteScoped(ctx, r.db, `DELETE FROM inventory_moves WHERE id = $1 AND org_id = $2`, orgID, id)
}

func (r *PostgresRepository) CountMoves(ctx context.Context, orgID string) (int, error) {
	return db.Count(ctx, r.db, `SELECT count(*) FROM inventory_moves WHERE org_id = $1`, orgID)
}

func (r *PostgresRepository) Totals(ctx context.Context, orgID string) ([]domain.MoveTotal, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT product_id, type, SUM(qty) FROM inventory_moves
		WHERE org_id = $1 GROUP BY product_id, type`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.MoveTotal
	for rows.Next() {
		var (
			t   domain.MoveTotal
			typ string
		)
		if err := rows.Scan(&t.ProductID, &typ, &t.Qty); err != nil {
			return nil, err
		}
		t.Type = domain.MoveType(typ)
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) Products(ctx context.Context, orgID string) ([]domain.ProductRef, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, sku, name, unit FROM products WHERE org_id = $1 ORDER BY sku`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.ProductRef
	for rows.Next() {
		var p domain.ProductRef
		if err := rows.Scan(&p.ID, &p.SKU, &p.Name, &p.Unit); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

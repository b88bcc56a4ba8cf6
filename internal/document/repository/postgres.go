package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"smallbiz-erp/backend/internal/db"
	"smallbiz-erp/backend/internal/document/domain"
	"smallbiz-erp/backend/internal/platform/tenancy"
)

type PostgresRepository struct {
	db   *sql.DB
	kind domain.Kind
}

// NewPostgresRepository returns the repository for documents of kind.
func NewPostgresRepository(conn *sql.DB, kind domain.Kind) *PostgresRepository {
	return &PostgresRepository{db: conn, kind: kind}
}

func (r *PostgresRepository) headerQuery(where string) string {
	k := r.kind
	return fmt.Sprintf(`
		SELECT d.id, d.org_id, d.%[2]s, p.name, d.number, d.%[3]s, d.due_date, d.notes,
		       d.subtotal_cents, d.tax_cents, d.total_cents, d.created_at
		FROM %[1]s d JOIN %[4]s p ON p.id = d.%[2]s
		WHERE %[5]s`, k.Table, k.PartyColumn, k.DateColumn, k.PartyTable, where)
}

func (r *PostgresRepository) List(ctx context.Context, orgID string) ([]*domain.Document, error) {
	return r.list(ctx, r.headerQuery(`d.org_id = $1`)+` ORDER BY d.created_at DESC`, orgID)
}

func (r *PostgresRepository) ListByParty(ctx context.Context, orgID, partyID string) ([]*domain.Document, error) {
	if err := tenancy.CheckID(partyID); err != nil {
		return nil, nil
	}
	return r.list(ctx, r.headerQuery(`d.org_id = $1 AND d.`+r.kind.PartyColumn+` = $2`)+` ORDER BY d.created_at DESC`, orgID, partyID)
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Document, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Document
	for rows.Next() {
		d, err := r.scanHeader(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) Get(ctx context.Context, orgID, id string) (*domain.Document, error) {
	if err := tenancy.CheckID(id); err != nil {
		return nil, err
	}
	d, err := r.scanHeader(r.db.QueryRowContext(ctx, r.headerQuery(`d.id = $1 AND d.org_id = $2`), id, orgID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, tenancy.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT id, product_id, description, qty, unit_price_cents, line_total_cents
		FROM %s WHERE %s = $1 AND org_id = $2 ORDER BY position`, r.kind.LineTable, r.kind.LineFK), id, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	d.Lines = []domain.Line{}
	for rows.Next() {
		var (
			l         domain.Line
			productID sql.NullString
		)
		if err := rows.Scan(&l.ID, &productID, &l.Description, &l.Qty, &l.UnitPriceCents, &l.LineTotalCents); err != nil {
			return nil, err
		}
		l.ProductID = productID.String
		d.Lines = append(d.Lines, l)
	}
	return d, rows.Err()
}

func (r *PostgresRepository) Create(ctx context.Context, orgID string, d *domain.Document) error {
	k := r.kind
	d.OrgID = orgID
	return db.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf(`
			INSERT INTO %s (id, org_id, %s, number, %s, due_date, notes, subtotal_cents, tax_cents, total_cents, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`, k.Table, k.PartyColumn, k.DateColumn),
			d.ID, orgID, d.PartyID, d.Number, d.Date, db.NullTime(d.DueDate), db.NullString(d.Notes),
			d.SubtotalCents, d.TaxCents, d.TotalCents, d.CreatedAt); err != nil {
			return fmt.Errorf("insert %s: %w", k.Name, err)
		}
		lineInsert := fmt.Sprintf(`
			INSERT INTO %s (id, org_id, %s, position, product_id, description, qty, unit_price_cents, line_total_cents)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`, k.LineTable, k.LineFK)
		for i, l := range d.Lines {
			if _, err := tx.ExecContext(ctx, lineInsert,
				l.ID, orgID, d.ID, i, db.NullString(l.ProductID), l.Description, l.Qty, l.UnitPriceCents, l.LineTotalCents); err != nil {
				return fmt.Errorf("insert %s line: %w", k.Name, err)
			}
		}
		return nil
	})
}

func (r *PostgresRepository) Delete(ctx context.Context, orgID, id string) error {
	return tenancy.DeleteScoped(ctx, r.db, `DELETE FROM `+r.kind.Table+` WHERE id = $1 AND org_id = $2`, orgID, id)
}

func (r *PostgresRepository) Count(ctx context.Context, orgID string) (int, error) {
	return db.Count(ctx, r.db, `SELECT count(*) FROM `+r.kind.Table+` WHERE org_id = $1`, orgID)
}

type scanner interface {
	Scan(dest ...any) error
}

func (r *PostgresRepository) scanHeader(s scanner) (*domain.Document, error) {
	var (
		d       = domain.Document{Kind: r.kind}
		dueDate sql.NullTime
		notes   sql.NullString
	)
	if err := s.Scan(&d.ID, &d.OrgID, &d.PartyID, &d.PartyName, &d.Number, &d.Date, &dueDate, &notes,
		&d.SubtotalCents, &d.TaxCents, &d.TotalCents, &d.CreatedAt); err != nil {
		return nil, err
	}
	d.DueDate = db.TimePtr(dueDate)
	d.Notes = notes.String
	return &d, nil
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"smallbiz-erp/backend/internal/accounting/domain"
	"smallbiz-erp/backend/internal/db"
	"smallbiz-erp/backend/internal/platform/tenancy"
)

const accountColumns = `id, org_id, code, name, type, created_at`

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an accounting repository that uses the given db for persistence.
func NewPostgresRepository(conn *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: conn}
}

func (r *PostgresRepository) ListAccounts(ctx context.Context, orgID string) ([]*domain.Account, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE org_id = $1 ORDER BY code`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// GetAccount returns the account, or tenancy.ErrNotFound when orgID has no such account.
func (r *PostgresRepository) GetAccount(ctx context.Context, orgID, id string) (*domain.Account, error) {
	if err := tenancy.CheckID(id); err != nil {
		return nil, err
	}
	a, err := scanAccount(r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = $1 AND org_id = $2`, id, orgID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, tenancy.ErrNotFound
	}
	return a, err
}

func (r *PostgresRepository) CountAccounts(ctx context.Context, orgID string) (int, error) {
	return db.Count(ctx, r.db, `SELECT count(*) FROM accounts WHERE org_id = $1`, orgID)
}

func (r *PostgresRepository) CreateAccounts(ctx context.Context, orgID string, accounts []*domain.Account) error {
	return db.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		for _, a := range accounts {
			a.OrgID = orgID
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO accounts (id, org_id, code, name, type, created_at)
				VALUES ($1, $2, $3, $4, $5, $6)`,
				a.ID, orgID, a.Code, a.Name, string(a.Type), a.CreatedAt); err != nil {
				return fmt.Errorf("insert account %s: %w", a.Code, err)
			}
		}
		return nil
	})
}

func (r *PostgresRepository) DeleteAccount(ctx context.Context, orgID, id string) error {
	return tenancy.DeleteScoped(ctx, r.db, `DELETE FROM accounts WHERE id = $1 AND org_id = $2`, orgID, id)
}

func (r *PostgresRepository) ListEntries(ctx context.Context, orgID string, limit int) ([]*domain.JournalEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, org_id, entry_date, memo, subtotal_cents, total_cents, created_at FROM journal_entries
		WHERE org_id = $1 ORDER BY entry_date DESC, created_at DESC LIMIT $2`, orgID, limit)
	if err != nil {
		return nil, err
	}
	var (
		entries []*domain.JournalEntry
		byID    = map[string]*domain.JournalEntry{}
		ids     []string
	)
	for rows.Next() {
		var e domain.JournalEntry
		if err := rows.Scan(&e.ID, &e.OrgID, &e.Date, &e.Memo, &e.SubtotalCents, &e.TotalCents, &e.CreatedAt); err != nil {
			rows.Close()
			return nil, err
		}
		entries = append(entries, &e)
		byID[e.ID] = &e
		ids = append(ids, e.ID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return entries, nil
	}

	lines, err := r.db.QueryContext(ctx, `
		SELECT l.id, l.entry_id, l.account_id, a.code, a.name, l.debit_cents, l.credit_cents
		FROM journal_lines l JOIN accounts a ON a.id = l.account_id
		WHERE l.org_id = $1 AND l.entry_id = ANY($2::uuid[])
		ORDER BY l.debit_cents DESC`, orgID, ids)
	if err != nil {
		return nil, err
	}
	defer lines.Close()
	for lines.Next() {
		var l domain.JournalLine
		if err := lines.Scan(&l.ID, &l.EntryID, &l.AccountID, &l.AccountCode, &l.AccountName, &l.DebitCents, &l.CreditCents); err != nil {
			return nil, err
		}
		if e := byID[l.EntryID]; e != nil {
			e.Lines = append(e.Lines, l)
		}
	}
	return entries, lines.Err()
}

func (r *PostgresRepository) CreateEntry(ctx context.Context, orgID string, e *domain.JournalEntry) error {
	e.OrgID = orgID
	return db.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO journal_entries (id, org_id, entry_date, memo, subtotal_cents, total_cents, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			e.ID, orgID, e.Date, e.Memo, e.SubtotalCents, e.TotalCents, e.CreatedAt); err != nil {
			return fmt.Errorf("insert journal entry: %w", err)
		}
		for _, l := range e.Lines {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO journal_lines (id, org_id, entry_id, account_id, debit_cents, credit_cents)
				VALUES ($1, $2, $3, $4, $5, $6)`,
				l.ID, orgID, e.ID, l.AccountID, l.DebitCents, l.CreditCents); err != nil {
				return fmt.Errorf("insert journal line: %w", err)
			}
		}
		return nil
	})
}

func (r *PostgresRepository) DeleteEntry(ctx context.Context, orgID, id string) error {
	return tenancy.DeleteScoped(ctx, r.db, `DELETE FROM journal_entries WHERE id = $1 AND org_id = $2`, orgID, id)
}

func (r *PostgresRepository) CountEntries(ctx context.Context, orgID string) (int, error) {
	return db.Count(ctx, r.db, `SELECT count(*) FROM journal_entries WHERE org_id = $1`, orgID)
}

func (r *PostgresRepository) AccountTotals(ctx context.Context, orgID string) ([]domain.TrialBalanceRow, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT a.id, a.code, a.name, a.type,
		       COALESCE(SUM(l.debit_cents), 0), COALESCE(SUM(l.credit_cents), 0)
		FROM accounts a
		LEFT JOIN journal_lines l ON l.account_id = a.id AND l.org_id = a.org_id
		WHERE a.org_id = $1
		GROUP BY a.id, a.code, a.name, a.type
		ORDER BY a.code`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.TrialBalanceRow
	for rows.Next() {
		var (
			row domain.TrialBalanceRow
			typ string
		)
		if err := rows.Scan(&row.AccountID, &row.Code, &row.Name, &typ, &row.DebitCents, &row.CreditCents); err != nil {
			return nil, err
		}
		row.Type = domain.AccountType(typ)
		out = append(out, row)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAccount(s scanner) (*domain.Account, error) {
	var (
		a   domain.Account
		typ string
	)
	if err := s.Scan(&a.ID, &a.OrgID, &a.Code, &a.Name, &typ, &a.CreatedAt); err != nil {
		return nil, err
	}
	a.Type = domain.AccountType(typ)
	return &a, nil
}

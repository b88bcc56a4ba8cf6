package repository

import (
	"context"

	"smallbiz-erp/backend/internal/accounting/domain"
)

// AccountCodeConstraint is the unique constraint on (org_id, code).
const AccountCodeConstraint = "accounts_org_code_key"

// Repository defines org-scoped persistence for accounts and journal entries. Every method
// takes the tenant's org id and never touches another org's rows; lookups and deletes of
// foreign or missing ids return tenancy.ErrNotFound.
type Repository interface {
	ListAccounts(ctx context.Context, orgID string) ([]*domain.Account, error)
	GetAccount(ctx context.Context, orgID, id string) (*domain.Account, error)
	CountAccounts(ctx context.Context, orgID string) (int, error)
	// CreateAccounts inserts all accounts in one transaction.
	CreateAccounts(ctx context.Context, orgID string, accounts []*domain.Account) error
	// DeleteAccount returns tenancy.ErrInUse when journal lines still post to the account.
	DeleteAccount(ctx context.Context, orgID, id string) error

	// ListEntries returns the newest entries first, with their lines.
	ListEntries(ctx context.Context, orgID string, limit int) ([]*domain.JournalEntry, error)
	// CreateEntry inserts the entry and its lines in one transaction.
	CreateEntry(ctx context.Context, orgID string, e *domain.JournalEntry) error
	DeleteEntry(ctx context.Context, orgID, id string) error
	CountEntries(ctx context.Context, orgID string) (int, error)

	// AccountTotals returns every account of orgID with the sums of its debit and credit lines.
	AccountTotals(ctx context.Context, orgID string) ([]domain.TrialBalanceRow, error)
}

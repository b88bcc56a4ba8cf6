// Package service validates and posts chart-of-accounts and journal operations for one tenant.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"smallbiz-erp/backend/internal/accounting/domain"
	"smallbiz-erp/backend/internal/accounting/repository"
	"smallbiz-erp/backend/internal/db"
	"smallbiz-erp/backend/internal/platform/money"
	"smallbiz-erp/backend/internal/platform/tenancy"
	"smallbiz-erp/backend/internal/platform/validation"
)

// RecentEntries is how many journal entries the overview returns.
const RecentEntries = 50

// AccountInput is the account form.
type AccountInput struct {
	Code string
	Name string
	Type string
}

// EntryInput is the journal entry form. Date is optional and defaults to today.
type EntryInput struct {
	Date            string
	Memo            string
	DebitAccountID  string
	CreditAccountID string
	Amount          string
}

// Overview is the accounting page: the chart of accounts and the latest entries.
type Overview struct {
	Accounts []*domain.Account      `json:"accounts"`
	Entries  []*domain.JournalEntry `json:"entries"`
}

// Service implements the accounting operations.
type Service struct {
	repo repository.Repository
	now  func() time.Time
}

// NewService returns an accounting service backed by repo.
func NewService(repo repository.Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func (s *Service) Overview(ctx context.Context, orgID string) (*Overview, error) {
	accounts, err := s.repo.ListAccounts(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	entries, err := s.repo.ListEntries(ctx, orgID, RecentEntries)
	if err != nil {
		return nil, fmt.Errorf("list journal entries: %w", err)
	}
	if accounts == nil {
		accounts = []*domain.Account{}
	}
	if entries == nil {
		entries = []*domain.JournalEntry{}
	}
	return &Overview{Accounts: accounts, Entries: entries}, nil
}

// CreateAccount adds an account to the chart. A code already used in the org is a field error.
func (s *Service) CreateAccount(ctx context.Context, orgID string, in AccountInput) (*domain.Account, error) {
	in.Code = strings.TrimSpace(in.Code)
	in.Name = strings.TrimSpace(in.Name)
	fe := validation.FieldErrors{}
	fe.MinLen("code", in.Code, 1, "Code is required")
	fe.MinLen("name", in.Name, 2, "Name must be at least 2 characters")
	fe.OneOf("type", in.Type, domain.AccountTypes...)
	if err := fe.Err(); err != nil {
		return nil, err
	}
	a := &domain.Account{
		ID:        uuid.New().String(),
		Code:      in.Code,
		Name:      in.Name,
		Type:      domain.AccountType(in.Type),
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.CreateAccounts(ctx, orgID, []*domain.Account{a}); err != nil {
		if db.IsUniqueViolation(err, repository.AccountCodeConstraint) {
			fe.Add("code", "An account with this code already exists")
			return nil, fe.Err()
		}
		return nil, fmt.Errorf("create account: %w", err)
	}
	return a, nil
}

func (s *Service) DeleteAccount(ctx context.Context, orgID, id string) error {
	return s.repo.DeleteAccount(ctx, orgID, id)
}

// InitChart seeds the default chart when the org has no accounts yet. It reports whether
// accounts were created; a concurrent init that won the race counts as already initialized.
func (s *Service) InitChart(ctx context.Context, orgID string) (bool, error) {
	n, err := s.repo.CountAccounts(ctx, orgID)
	if err != nil {
		return false, fmt.Errorf("count accounts: %w", err)
	}
	if n > 0 {
		return false, nil
	}
	now := s.now().UTC()
	chart := domain.DefaultChart()
	accounts := make([]*domain.Account, len(chart))
	for i := range chart {
		a := chart[i]
		a.ID = uuid.New().String()
		a.CreatedAt = now
		accounts[i] = &a
	}
	if err := s.repo.CreateAccounts(ctx, orgID, accounts); err != nil {
		if db.IsUniqueViolation(err, repository.AccountCodeConstraint) {
			return false, nil
		}
		return false, fmt.Errorf("init chart of accounts: %w", err)
	}
	return true, nil
}

// PostEntry records a balanced two-line entry: amount debited to one account and credited
// to another, both owned by orgID.
func (s *Service) PostEntry(ctx context.Context, orgID string, in EntryInput) (*domain.JournalEntry, error) {
	fe := validation.FieldErrors{}
	date := fe.OptionalDate("date", strings.TrimSpace(in.Date))
	fe.MinLen("debitAccountId", in.DebitAccountID, 1, "Debit account is required")
	fe.MinLen("creditAccountId", in.CreditAccountID, 1, "Credit account is required")
	amount, err := money.ParseCents(in.Amount)
	switch {
	case err != nil:
		fe.Add("amount", "Invalid amount")
	case amount <= 0:
		fe.Add("amount", "Amount must be greater than zero")
	}
	if !fe.Has("debitAccountId") && in.DebitAccountID == in.CreditAccountID {
		fe.Add("creditAccountId", "Debit and credit accounts must differ")
	}
	for field, id := range map[string]string{"debitAccountId": in.DebitAccountID, "creditAccountId": in.CreditAccountID} {
		if fe.Has(field) {
			continue
		}
		if _, err := s.repo.GetAccount(ctx, orgID, id); err != nil {
			if errors.Is(err, tenancy.ErrNotFound) {
				fe.Add(field, "Unknown account")
				continue
			}
			return nil, fmt.Errorf("get account: %w", err)
		}
	}
	if err := fe.Err(); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	if date == nil {
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		date = &today
	}
	e := &domain.JournalEntry{
		ID:        uuid.New().String(),
		Date:      *date,
		Memo:      strings.TrimSpace(in.Memo),
		CreatedAt: now,
	}
	e.Lines = []domain.JournalLine{
		{ID: uuid.New().String(), EntryID: e.ID, AccountID: in.DebitAccountID, DebitCents: amount},
		{ID: uuid.New().String(), EntryID: e.ID, AccountID: in.CreditAccountID, CreditCents: amount},
	}
	e.ComputeTotals()
	if err := s.repo.CreateEntry(ctx, orgID, e); err != nil {
		return nil, fmt.Errorf("create journal entry: %w", err)
	}
	return e, nil
}

func (s *Service) DeleteEntry(ctx context.Context, orgID, id string) error {
	return s.repo.DeleteEntry(ctx, orgID, id)
}

// TrialBalance totals every account's posted lines.
func (s *Service) TrialBalance(ctx context.Context, orgID string) (*domain.TrialBalance, error) {
	rows, err := s.repo.AccountTotals(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("account totals: %w", err)
	}
	tb := &domain.TrialBalance{Rows: make([]domain.TrialBalanceRow, 0, len(rows))}
	for _, row := range rows {
		row.BalanceCents = row.Type.Balance(row.DebitCents, row.CreditCents)
		tb.TotalDebitCents += row.DebitCents
		tb.TotalCreditCents += row.CreditCents
		tb.Rows = append(tb.Rows, row)
	}
	return tb, nil
}

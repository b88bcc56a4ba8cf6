package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/jackc/pgx/v5/pgconn"

	"smallbiz-erp/backend/internal/accounting/domain"
	"smallbiz-erp/backend/internal/platform/tenancy"
)

// MemoryRepository is an in-memory Repository with the same tenant scoping and constraint
// behaviour as the Postgres one. It backs tests and local tooling.
type MemoryRepository struct {
	mu       sync.Mutex
	accounts map[string]*domain.Account
	entries  map[string]*domain.JournalEntry
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{accounts: map[string]*domain.Account{}, entries: map[string]*domain.JournalEntry{}}
}

func (m *MemoryRepository) ListAccounts(_ context.Context, orgID string) ([]*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Account
	for _, a := range m.accounts {
		if a.OrgID == orgID {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (m *MemoryRepository) GetAccount(_ context.Context, orgID, id string) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok || a.OrgID != orgID {
		return nil, tenancy.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *MemoryRepository) CountAccounts(_ context.Context, orgID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, a := range m.accounts {
		if a.OrgID == orgID {
			n++
		}
	}
	return n, nil
}

func (m *MemoryRepository) CreateAccounts(_ context.Context, orgID string, accounts []*domain.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	codes := map[string]bool{}
	for _, a := range m.accounts {
		if a.OrgID == orgID {
			codes[a.Code] = true
		}
	}
	for _, a := range accounts {
		if codes[a.Code] {
			return &pgconn.PgError{Code: "23505", ConstraintName: AccountCodeConstraint}
		}
		codes[a.Code] = true
	}
	for _, a := range accounts {
		a.OrgID = orgID
		cp := *a
		m.accounts[a.ID] = &cp
	}
	return nil
}

func (m *MemoryRepository) DeleteAccount(_ context.Context, orgID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok || a.OrgID != orgID {
		return tenancy.ErrNotFound
	}
	for _, e := range m.entries {
		for _, l := range e.Lines {
			if l.AccountID == id {
				return tenancy.ErrInUse
			}
		}
	}
	delete(m.accounts, id)
	return nil
}

func (m *MemoryRepository) ListEntries(_ context.Context, orgID string, limit int) ([]*domain.JournalEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.JournalEntry
	for _, e := range m.entries {
		if e.OrgID != orgID {
			continue
		}
		cp := *e
		cp.Lines = append([]domain.JournalLine(nil), e.Lines...)
		for i := range cp.Lines {
			if a := m.accounts[cp.Lines[i].AccountID]; a != nil {
				cp.Lines[i].AccountCode, cp.Lines[i].AccountName = a.Code, a.Name
			}
		}
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryRepository) CreateEntry(_ context.Context, orgID string, e *domain.JournalEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range e.Lines {
		if _, ok := m.accounts[l.AccountID]; !ok {
			return &pgconn.PgError{Code: "23503"}
		}
	}
	e.OrgID = orgID
	cp := *e
	cp.Lines = append([]domain.JournalLine(nil), e.Lines...)
	m.entries[e.ID] = &cp
	return nil
}

func (m *MemoryRepository) DeleteEntry(_ context.Context, orgID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	if !ok || e.OrgID != orgID {
		return tenancy.ErrNotFound
	}
	delete(m.entries, id)
	return nil
}

func (m *MemoryRepository) CountEntries(_ context.Context, orgID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.entries {
		if e.OrgID == orgID {
			n++
		}
	}
	return n, nil
}

func (m *MemoryRepository) AccountTotals(ctx context.Context, orgID string) ([]domain.TrialBalanceRow, error) {
	accounts, _ := m.ListAccounts(ctx, orgID)
	m.mu.Lock()
	defer m.mu.Unlock()
	rows := make([]domain.TrialBalanceRow, 0, len(accounts))
	for _, a := range accounts {
		row := domain.TrialBalanceRow{AccountID: a.ID, Code: a.Code, Name: a.Name, Type: a.Type}
		for _, e := range m.entries {
			if e.OrgID != orgID {
				continue
			}
			for _, l := range e.Lines {
				if l.AccountID == a.ID {
					row.DebitCents += l.DebitCents
					row.CreditCents += l.CreditCents
				}
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

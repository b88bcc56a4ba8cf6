package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/jackc/pgx/v5/pgconn"

	"smallbiz-erp/backend/internal/document/domain"
	"smallbiz-erp/backend/internal/platform/tenancy"
)

// MemoryRepository is an in-memory Repository for tests and local tooling.
type MemoryRepository struct {
	mu   sync.Mutex
	kind domain.Kind
	docs map[string]*domain.Document
}

func NewMemoryRepository(kind domain.Kind) *MemoryRepository {
	return &MemoryRepository{kind: kind, docs: map[string]*domain.Document{}}
}

func (m *MemoryRepository) List(_ context.Context, orgID string) ([]*domain.Document, error) {
	return m.filter(func(d *domain.Document) bool { return d.OrgID == orgID }), nil
}

func (m *MemoryRepository) ListByParty(_ context.Context, orgID, partyID string) ([]*domain.Document, error) {
	return m.filter(func(d *domain.Document) bool { return d.OrgID == orgID && d.PartyID == partyID }), nil
}

func (m *MemoryRepository) filter(keep func(*domain.Document) bool) []*domain.Document {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Document
	for _, d := range m.docs {
		if keep(d) {
			cp := *d
			cp.Lines = nil
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (m *MemoryRepository) Get(_ context.Context, orgID, id string) (*domain.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.docs[id]
	if !ok || d.OrgID != orgID {
		return nil, tenancy.ErrNotFound
	}
	cp := *d
	cp.Lines = append([]domain.Line{}, d.Lines...)
	return &cp, nil
}

func (m *MemoryRepository) Create(_ context.Context, orgID string, d *domain.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.docs {
		if existing.OrgID == orgID && existing.Number == d.Number {
			return &pgconn.PgError{Code: "23505", ConstraintName: m.kind.NumberConstraint}
		}
	}
	d.OrgID = orgID
	cp := *d
	cp.Lines = append([]domain.Line(nil), d.Lines...)
	m.docs[d.ID] = &cp
	return nil
}

func (m *MemoryRepository) Delete(_ context.Context, orgID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.docs[id]
	if !ok || d.OrgID != orgID {
		return tenancy.ErrNotFound
	}
	delete(m.docs, id)
	return nil
}

func (m *MemoryRepository) Count(_ context.Context, orgID string) (int, error) {
	return len(m.filter(func(d *domain.Document) bool { return d.OrgID == orgID })), nil
}

// References reports whether any document points at partyID. It backs the party
// repository's in-use check in tests.
func (m *MemoryRepository) References(partyID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.docs {
		if d.PartyID == partyID {
			return true
		}
	}
	return false
}

package repository

import (
	"context"
	"sort"
	"sync"

	"smallbiz-erp/backend/internal/party/domain"
	"smallbiz-erp/backend/internal/platform/tenancy"
)

// MemoryRepository is an in-memory Repository for tests and local tooling.
type MemoryRepository struct {
	mu      sync.Mutex
	parties map[string]*domain.Party
	// InUse reports whether another record references the party; nil means never.
	InUse func(id string) bool
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{parties: map[string]*domain.Party{}}
}

func (m *MemoryRepository) List(_ context.Context, orgID string) ([]*domain.Party, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Party
	for _, p := range m.parties {
		if p.OrgID == orgID {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryRepository) Get(_ context.Context, orgID, id string) (*domain.Party, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.parties[id]
	if !ok || p.OrgID != orgID {
		return nil, tenancy.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *MemoryRepository) Create(_ context.Context, orgID string, p *domain.Party) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.OrgID = orgID
	cp := *p
	m.parties[p.ID] = &cp
	return nil
}

func (m *MemoryRepository) Delete(_ context.Context, orgID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.parties[id]
	if !ok || p.OrgID != orgID {
		return tenancy.ErrNotFound
	}
	if m.InUse != nil && m.InUse(id) {
		return tenancy.ErrInUse
	}
	delete(m.parties, id)
	return nil
}

func (m *MemoryRepository) Count(_ context.Context, orgID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, p := range m.parties {
		if p.OrgID == orgID {
			n++
		}
	}
	return n, nil
}

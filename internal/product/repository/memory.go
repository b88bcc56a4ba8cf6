package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/jackc/pgx/v5/pgconn"

	"smallbiz-erp/backend/internal/platform/tenancy"
	"smallbiz-erp/backend/internal/product/domain"
)

// MemoryRepository is an in-memory Repository for tests and local tooling.
type MemoryRepository struct {
	mu       sync.Mutex
	products map[string]*domain.Product
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{products: map[string]*domain.Product{}}
}

func (m *MemoryRepository) List(_ context.Context, orgID string) ([]*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Product
	for _, p := range m.products {
		if p.OrgID == orgID {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SKU < out[j].SKU })
	return out, nil
}

func (m *MemoryRepository) Get(_ context.Context, orgID, id string) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok || p.OrgID != orgID {
		return nil, tenancy.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *MemoryRepository) Create(_ context.Context, orgID string, p *domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.products {
		if existing.OrgID == orgID && existing.SKU == p.SKU {
			return &pgconn.PgError{Code: "23505", ConstraintName: SKUConstraint}
		}
	}
	p.OrgID = orgID
	cp := *p
	m.products[p.ID] = &cp
	return nil
}

func (m *MemoryRepository) Delete(_ context.Context, orgID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok || p.OrgID != orgID {
		return tenancy.ErrNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *MemoryRepository) Count(_ context.Context, orgID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, p := range m.products {
		if p.OrgID == orgID {
			n++
		}
	}
	return n, nil
}

package repository

import (
	"context"
	"sort"
	"sync"

	"smallbiz-erp/backend/internal/inventory/domain"
	"smallbiz-erp/backend/internal/platform/tenancy"
)

// MemoryRepository is an in-memory Repository for tests and local tooling. Products are
// registered with AddProduct.
type MemoryRepository struct {
	mu       sync.Mutex
	moves    map[string]*domain.Move
	products map[string][]domain.ProductRef
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{moves: map[string]*domain.Move{}, products: map[string][]domain.ProductRef{}}
}

// AddProduct makes p visible to orgID's stock snapshot.
func (m *MemoryRepository) AddProduct(orgID string, p domain.ProductRef) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products[orgID] = append(m.products[orgID], p)
}

func (m *MemoryRepository) ListMoves(_ context.Context, orgID string, limit int) ([]*domain.Move, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Move
	for _, mv := range m.moves {
		if mv.OrgID == orgID {
			cp := *mv
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryRepository) CreateMove(_ context.Context, orgID string, mv *domain.Move) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	mv.OrgID = orgID
	cp := *mv
	m.moves[mv.ID] = &cp
	return nil
}

func (m *MemoryRepository) DeleteMove(_ context.Context, orgID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	mv, ok := m.moves[id]
	if !ok || mv.OrgID != orgID {
		return tenancy.ErrNotFound
	}
	delete(m.moves, id)
	return nil
}

func (m *MemoryRepository) CountMoves(ctx context.Context, orgID string) (int, error) {
	moves, _ := m.ListMoves(ctx, orgID, 0)
	return len(moves), nil
}

func (m *MemoryRepository) Totals(_ context.Context, orgID string) ([]domain.MoveTotal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.MoveTotal
	for _, mv := range m.moves {
		if mv.OrgID == orgID {
			out = append(out, domain.MoveTotal{ProductID: mv.ProductID, Type: mv.Type, Qty: mv.Qty})
		}
	}
	return out, nil
}

func (m *MemoryRepository) Products(_ context.Context, orgID string) ([]domain.ProductRef, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.ProductRef(nil), m.products[orgID]...), nil
}

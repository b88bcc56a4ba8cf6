// Package service records stock moves and reports stock levels.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"smallbiz-erp/backend/internal/inventory/domain"
	"smallbiz-erp/backend/internal/inventory/repository"
	"smallbiz-erp/backend/internal/platform/tenancy"
	"smallbiz-erp/backend/internal/platform/validation"
	productdomain "smallbiz-erp/backend/internal/product/domain"
)

// RecentMoves is how many moves the inventory overview returns.
const RecentMoves = 200

// ProductLookup finds the product a move refers to.
type ProductLookup interface {
	Get(ctx context.Context, orgID, id string) (*productdomain.Product, error)
}

// MoveInput is the stock move form.
type MoveInput struct {
	ProductID string
	Type      string
	Qty       string
	Note      string
}

// Overview is the inventory page: recent moves and the stock of every product.
type Overview struct {
	Moves []*domain.Move      `json:"moves"`
	Stock []domain.StockLevel `json:"stock"`
}

type Service struct {
	repo     repository.Repository
	products ProductLookup
	now      func() time.Time
}

func NewService(repo repository.Repository, products ProductLookup) *Service {
	return &Service{repo: repo, products: products, now: time.Now}
}

// Overview returns the latest moves and a stock snapshot computed from all moves.
func (s *Service) Overview(ctx context.Context, orgID string) (*Overview, error) {
	moves, err := s.repo.ListMoves(ctx, orgID, RecentMoves)
	if err != nil {
		return nil, fmt.Errorf("list moves: %w", err)
	}
	products, err := s.repo.Products(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	totals, err := s.repo.Totals(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("move totals: %w", err)
	}
	if moves == nil {
		moves = []*domain.Move{}
	}
	return &Overview{Moves: moves, Stock: domain.Snapshot(products, totals)}, nil
}

func (s *Service) CreateMove(ctx context.Context, orgID string, in MoveInput) (*domain.Move, error) {
	fe := validation.FieldErrors{}
	m := &domain.Move{
		ProductID: strings.TrimSpace(in.ProductID),
		Type:      domain.MoveType(strings.TrimSpace(in.Type)),
		Note:      strings.TrimSpace(in.Note),
	}
	fe.MinLen("productId", m.ProductID, 1, "Product is required")
	fe.OneOf("type", string(m.Type), domain.MoveTypes...)
	qty, err := domain.ParseQty(in.Qty)
	switch {
	case err != nil:
		fe.Add("qty", "Qty must be a number")
	case !fe.Has("type") && !m.Type.ValidQty(qty):
		if m.Type == domain.MoveAdjust {
			fe.Add("qty", "Qty must not be zero")
		} else {
			fe.Add("qty", "Qty must be a positive number")
		}
	}
	if !fe.Has("productId") {
		p, err := s.products.Get(ctx, orgID, m.ProductID)
		switch {
		case errors.Is(err, tenancy.ErrNotFound):
			fe.Add("productId", "Unknown product")
		case err != nil:
			return nil, fmt.Errorf("get product: %w", err)
		default:
			m.ProductSKU, m.ProductName = p.SKU, p.Name
		}
	}
	if err := fe.Err(); err != nil {
		return nil, err
	}
	m.ID = uuid.New().String()
	m.Qty = qty
	m.CreatedAt = s.now().UTC()
	if err := s.repo.CreateMove(ctx, orgID, m); err != nil {
		return nil, fmt.Errorf("create move: %w", err)
	}
	return m, nil
}

func (s *Service) DeleteMove(ctx context.Context, orgID, id string) error {
	return s.repo.DeleteMove(ctx, orgID, id)
}

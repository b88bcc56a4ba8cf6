// Package service validates and stores products.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"smallbiz-erp/backend/internal/db"
	"smallbiz-erp/backend/internal/platform/money"
	"smallbiz-erp/backend/internal/platform/validation"
	"smallbiz-erp/backend/internal/product/domain"
	"smallbiz-erp/backend/internal/product/repository"
)

// Input is the product form. Price is a decimal string such as "1,299.50" and may be blank.
type Input struct {
	SKU   string
	Name  string
	Unit  string
	Price string
}

type Service struct {
	repo repository.Repository
	now  func() time.Time
}

func NewService(repo repository.Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func (s *Service) List(ctx context.Context, orgID string) ([]*domain.Product, error) {
	out, err := s.repo.List(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	if out == nil {
		out = []*domain.Product{}
	}
	return out, nil
}

func (s *Service) Create(ctx context.Context, orgID string, in Input) (*domain.Product, error) {
	p := &domain.Product{
		SKU:  strings.TrimSpace(in.SKU),
		Name: strings.TrimSpace(in.Name),
		Unit: strings.TrimSpace(in.Unit),
	}
	fe := validation.FieldErrors{}
	fe.MinLen("sku", p.SKU, 1, "SKU is required")
	fe.MinLen("name", p.Name, 2, "Name is required")
	fe.MinLen("unit", p.Unit, 1, "Unit is required")
	price, err := money.ParseOptionalCents(in.Price)
	switch {
	case err != nil:
		fe.Add("price", "Invalid price")
	case price < 0:
		fe.Add("price", "Price cannot be negative")
	}
	if err := fe.Err(); err != nil {
		return nil, err
	}
	p.ID = uuid.New().String()
	p.PriceCents = price
	p.CreatedAt = s.now().UTC()
	if err := s.repo.Create(ctx, orgID, p); err != nil {
		if db.IsUniqueViolation(err, repository.SKUConstraint) {
			fe.Add("sku", "A product with this SKU already exists")
			return nil, fe.Err()
		}
		return nil, fmt.Errorf("create product: %w", err)
	}
	return p, nil
}

func (s *Service) Delete(ctx context.Context, orgID, id string) error {
	return s.repo.Delete(ctx, orgID, id)
}

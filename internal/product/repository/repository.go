package repository

import (
	"context"

	"smallbiz-erp/backend/internal/product/domain"
)

// SKUConstraint is the unique constraint on (org_id, sku).
const SKUConstraint = "products_org_sku_key"

// Repository stores products. Lookups and deletes outside orgID return tenancy.ErrNotFound.
type Repository interface {
	List(ctx context.Context, orgID string) ([]*domain.Product, error)
	Get(ctx context.Context, orgID, id string) (*domain.Product, error)
	Create(ctx context.Context, orgID string, p *domain.Product) error
	Delete(ctx context.Context, orgID, id string) error
	Count(ctx context.Context, orgID string) (int, error)
}

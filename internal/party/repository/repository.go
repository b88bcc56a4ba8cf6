package repository

import (
	"context"

	"smallbiz-erp/backend/internal/party/domain"
)

// Repository stores the parties of one kind. Lookups and deletes outside orgID return
// tenancy.ErrNotFound.
type Repository interface {
	List(ctx context.Context, orgID string) ([]*domain.Party, error)
	Get(ctx context.Context, orgID, id string) (*domain.Party, error)
	Create(ctx context.Context, orgID string, p *domain.Party) error
	// Delete returns tenancy.ErrInUse while documents still reference the party.
	Delete(ctx context.Context, orgID, id string) error
	Count(ctx context.Context, orgID string) (int, error)
}

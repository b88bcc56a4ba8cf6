package repository

import (
	"context"

	"smallbiz-erp/backend/internal/inventory/domain"
)

// Repository stores stock moves. Deletes outside orgID return tenancy.ErrNotFound.
type Repository interface {
	// ListMoves returns the newest moves first with their product's SKU and name.
	ListMoves(ctx context.Context, orgID string, limit int) ([]*domain.Move, error)
	CreateMove(ctx context.Context, orgID string, m *domain.Move) error
	DeleteMove(ctx context.Context, orgID, id string) error
	CountMoves(ctx context.Context, orgID string) (int, error)
	// Totals sums every move of the org by product and type.
	Totals(ctx context.Context, orgID string) ([]domain.MoveTotal, error)
	// Products lists the org's products for the stock snapshot.
	Products(ctx context.Context, orgID string) ([]domain.ProductRef, error)
}

package repository

import (
	"context"

	"smallbiz-erp/backend/internal/document/domain"
)

// Repository stores the documents of one kind. Lookups and deletes outside orgID return
// tenancy.ErrNotFound.
type Repository interface {
	// List returns the org's documents newest first, with the party name and without lines.
	List(ctx context.Context, orgID string) ([]*domain.Document, error)
	// ListByParty returns the documents of one customer or vendor, without lines.
	ListByParty(ctx context.Context, orgID, partyID string) ([]*domain.Document, error)
	// Get returns the document with its lines.
	Get(ctx context.Context, orgID, id string) (*domain.Document, error)
	// Create inserts the header and lines in one transaction.
	Create(ctx context.Context, orgID string, d *domain.Document) error
	// Delete removes the document; its lines cascade.
	Delete(ctx context.Context, orgID, id string) error
	Count(ctx context.Context, orgID string) (int, error)
}

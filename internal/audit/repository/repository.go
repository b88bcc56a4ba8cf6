package repository

import (
	"context"

	"smallbiz-erp/backend/internal/audit/domain"
)

// Repository defines persistence for audit logs.
type Repository interface {
	Create(ctx context.Context, a *domain.AuditLog) error
	// ListByOrg returns the newest entries of orgID first, at most limit.
	ListByOrg(ctx context.Context, orgID string, limit int) ([]*domain.AuditLog, error)
}

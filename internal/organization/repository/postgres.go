// Package repository writes organizations.
package repository

import (
	"context"

	"smallbiz-erp/backend/internal/db"
	"smallbiz-erp/backend/internal/organization/domain"
)

// Insert writes o with q, which may be a transaction.
func Insert(ctx context.Context, q db.Querier, o *domain.Org) error {
	if err := o.Validate(); err != nil {
		return err
	}
	_, err := q.ExecContext(ctx,
		`INSERT INTO organizations (id, name, status, created_at) VALUES ($1, $2, $3, $4)`,
		o.ID, o.Name, string(o.Status), o.CreatedAt)
	return err
}

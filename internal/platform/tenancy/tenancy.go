// Package tenancy holds the errors shared by org-scoped repositories.
package tenancy

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"smallbiz-erp/backend/internal/db"
)

var (
	// ErrNotFound is returned when no row matched both the id and the caller's org.
	// Missing rows and rows owned by another org are indistinguishable.
	ErrNotFound = errors.New("not found")
	// ErrInUse is returned when a row cannot be deleted because other records reference it.
	ErrInUse = errors.New("record is in use")
)

// RequireAffected returns ErrNotFound when res affected no rows.
func RequireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// CheckID returns ErrNotFound when id is not a well-formed record id, so malformed ids
// from the URL get the same answer as ids that do not exist.
func CheckID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}
	return nil
}

// DeleteScoped runs query with ($1 = id, $2 = orgID). A malformed id or zero affected rows
// gives ErrNotFound; a row still referenced by a RESTRICT foreign key gives ErrInUse.
func DeleteScoped(ctx context.Context, q db.Querier, query, orgID, id string) error {
	if err := CheckID(id); err != nil {
		return err
	}
	res, err := q.ExecContext(ctx, query, id, orgID)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return ErrInUse
		}
		return err
	}
	return RequireAffected(res)
}

package repository

import (
	"context"

	"smallbiz-erp/backend/internal/crm/domain"
)

// Child names a CRM table whose rows hang off a customer.
type Child string

const (
	Contacts      Child = "contacts"
	Opportunities Child = "opportunities"
	Activities    Child = "activities"
	Tasks         Child = "tasks"
)

// Repository stores CRM records. Every mutation is scoped by org and customer; a row outside
// either returns tenancy.ErrNotFound.
type Repository interface {
	// Records returns all CRM rows of one customer. Activities and tasks are newest first.
	Records(ctx context.Context, orgID, customerID string) (*domain.Records, error)

	CreateContact(ctx context.Context, orgID string, c *domain.Contact) error
	CreateOpportunity(ctx context.Context, orgID string, o *domain.Opportunity) error
	CreateActivity(ctx context.Context, orgID string, a *domain.Activity) error
	CreateTask(ctx context.Context, orgID string, t *domain.Task) error

	// UpdateStage moves an opportunity and returns it as committed.
	UpdateStage(ctx context.Context, orgID, customerID, id string, stage domain.Stage) (*domain.Opportunity, error)
	// UpdateTaskStatus sets a task's status and returns it as committed.
	UpdateTaskStatus(ctx context.Context, orgID, customerID, id, status string) (*domain.Task, error)

	Delete(ctx context.Context, child Child, orgID, customerID, id string) error
}

// Package service manages the CRM records of a customer and assembles the customer detail view.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"smallbiz-erp/backend/internal/crm/domain"
	"smallbiz-erp/backend/internal/crm/repository"
	documentdomain "smallbiz-erp/backend/internal/document/domain"
	partydomain "smallbiz-erp/backend/internal/party/domain"
	"smallbiz-erp/backend/internal/platform/money"
	"smallbiz-erp/backend/internal/platform/validation"
)

// CustomerLookup finds a customer of the org; missing or foreign ids give tenancy.ErrNotFound.
type CustomerLookup interface {
	Get(ctx context.Context, orgID, id string) (*partydomain.Party, error)
}

// InvoiceLister lists the invoices issued to a customer.
type InvoiceLister interface {
	ListByParty(ctx context.Context, orgID, partyID string) ([]*documentdomain.Document, error)
}

// CustomerDetail is the customer page.
type CustomerDetail struct {
	Customer *partydomain.Party `json:"customer"`
	*domain.Records
	Invoices []*documentdomain.Document `json:"invoices"`
	Pipeline map[domain.Stage]int64     `json:"pipelineValueCents"`
}

type ContactInput struct {
	FirstName string
	LastName  string
	JobTitle  string
	Email     string
	Phone     string
}

// OpportunityInput is the deal form. Value is a decimal string; Stage defaults to NEW.
type OpportunityInput struct {
	Title       string
	Value       string
	Stage       string
	Description string
}

type ActivityInput struct {
	Type        string
	Subject     string
	Description string
}

// TaskInput is the task form. Priority defaults to MEDIUM.
type TaskInput struct {
	Title    string
	DueDate  string
	Priority string
}

type Service struct {
	repo      repository.Repository
	customers CustomerLookup
	invoices  InvoiceLister
	now       func() time.Time
}

func NewService(repo repository.Repository, customers CustomerLookup, invoices InvoiceLister) *Service {
	return &Service{repo: repo, customers: customers, invoices: invoices, now: time.Now}
}

// Detail returns the customer with its CRM records and invoices.
func (s *Service) Detail(ctx context.Context, orgID, customerID string) (*CustomerDetail, error) {
	c, err := s.customers.Get(ctx, orgID, customerID)
	if err != nil {
		return nil, err
	}
	rec, err := s.repo.Records(ctx, orgID, customerID)
	if err != nil {
		return nil, fmt.Errorf("crm records: %w", err)
	}
	invoices, err := s.invoices.ListByParty(ctx, orgID, customerID)
	if err != nil {
		return nil, fmt.Errorf("customer invoices: %w", err)
	}
	if invoices == nil {
		invoices = []*documentdomain.Document{}
	}
	return &CustomerDetail{Customer: c, Records: rec, Invoices: invoices, Pipeline: rec.PipelineValue()}, nil
}

func (s *Service) CreateContact(ctx context.Context, orgID, customerID string, in ContactInput) (*domain.Contact, error) {
	if _, err := s.customers.Get(ctx, orgID, customerID); err != nil {
		return nil, err
	}
	c := &domain.Contact{
		CustomerID: customerID,
		FirstName:  strings.TrimSpace(in.FirstName),
		LastName:   strings.TrimSpace(in.LastName),
		JobTitle:   strings.TrimSpace(in.JobTitle),
		Email:      strings.TrimSpace(in.Email),
		Phone:      strings.TrimSpace(in.Phone),
	}
	fe := validation.FieldErrors{}
	fe.MinLen("firstName", c.FirstName, 1, "First name is required")
	fe.OptionalEmail("email", c.Email, "Invalid email")
	if err := fe.Err(); err != nil {
		return nil, err
	}
	c.ID = uuid.New().String()
	c.CreatedAt = s.now().UTC()
	if err := s.repo.CreateContact(ctx, orgID, c); err != nil {
		return nil, fmt.Errorf("create contact: %w", err)
	}
	return c, nil
}

func (s *Service) CreateOpportunity(ctx context.Context, orgID, customerID string, in OpportunityInput) (*domain.Opportunity, error) {
	if _, err := s.customers.Get(ctx, orgID, customerID); err != nil {
		return nil, err
	}
	o := &domain.Opportunity{
		CustomerID:  customerID,
		Title:       strings.TrimSpace(in.Title),
		Stage:       domain.Stage(strings.TrimSpace(in.Stage)),
		Description: strings.TrimSpace(in.Description),
	}
	if o.Stage == "" {
		o.Stage = domain.StageNew
	}
	fe := validation.FieldErrors{}
	fe.MinLen("title", o.Title, 1, "Title is required")
	fe.OneOf("stage", string(o.Stage), domain.Stages...)
	value, err := money.ParseOptionalCents(in.Value)
	switch {
	case err != nil:
		fe.Add("value", "Invalid amount")
	case value < 0:
		fe.Add("value", "Value cannot be negative")
	}
	if err := fe.Err(); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	o.ID = uuid.New().String()
	o.ValueCents = value
	o.CreatedAt, o.UpdatedAt = now, now
	if err := s.repo.CreateOpportunity(ctx, orgID, o); err != nil {
		return nil, fmt.Errorf("create opportunity: %w", err)
	}
	return o, nil
}

// UpdateStage moves an opportunity on the pipeline and returns the stored result. When no
// row matched, tenancy.ErrNotFound tells the board to put the card back.
func (s *Service) UpdateStage(ctx context.Context, orgID, customerID, id, stage string) (*domain.Opportunity, error) {
	fe := validation.FieldErrors{}
	fe.OneOf("stage", stage, domain.Stages...)
	if err := fe.Err(); err != nil {
		return nil, err
	}
	return s.repo.UpdateStage(ctx, orgID, customerID, id, domain.Stage(stage))
}

func (s *Service) LogActivity(ctx context.Context, orgID, customerID string, in ActivityInput) (*domain.Activity, error) {
	if _, err := s.customers.Get(ctx, orgID, customerID); err != nil {
		return nil, err
	}
	a := &domain.Activity{
		CustomerID:  customerID,
		Type:        strings.TrimSpace(in.Type),
		Subject:     strings.TrimSpace(in.Subject),
		Description: strings.TrimSpace(in.Description),
	}
	fe := validation.FieldErrors{}
	fe.OneOf("type", a.Type, domain.ActivityTypes...)
	fe.MinLen("subject", a.Subject, 1, "Subject is required")
	if err := fe.Err(); err != nil {
		return nil, err
	}
	a.ID = uuid.New().String()
	a.CreatedAt = s.now().UTC()
	if err := s.repo.CreateActivity(ctx, orgID, a); err != nil {
		return nil, fmt.Errorf("create activity: %w", err)
	}
	return a, nil
}

func (s *Service) CreateTask(ctx context.Context, orgID, customerID string, in TaskInput) (*domain.Task, error) {
	if _, err := s.customers.Get(ctx, orgID, customerID); err != nil {
		return nil, err
	}
	t := &domain.Task{
		CustomerID: customerID,
		Title:      strings.TrimSpace(in.Title),
		Priority:   strings.TrimSpace(in.Priority),
		Status:     domain.DefaultStatus,
	}
	if t.Priority == "" {
		t.Priority = domain.DefaultPriority
	}
	fe := validation.FieldErrors{}
	fe.MinLen("title", t.Title, 1, "Title is required")
	fe.OneOf("priority", t.Priority, domain.Priorities...)
	t.DueDate = fe.OptionalDate("dueDate", strings.TrimSpace(in.DueDate))
	if err := fe.Err(); err != nil {
		return nil, err
	}
	t.ID = uuid.New().String()
	t.CreatedAt = s.now().UTC()
	if err := s.repo.CreateTask(ctx, orgID, t); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return t, nil
}

func (s *Service) UpdateTaskStatus(ctx context.Context, orgID, customerID, id, status string) (*domain.Task, error) {
	fe := validation.FieldErrors{}
	fe.OneOf("status", status, domain.TaskStatuses...)
	if err := fe.Err(); err != nil {
		return nil, err
	}
	return s.repo.UpdateTaskStatus(ctx, orgID, customerID, id, status)
}

// Delete removes one CRM record of the customer.
func (s *Service) Delete(ctx context.Context, child repository.Child, orgID, customerID, id string) error {
	return s.repo.Delete(ctx, child, orgID, customerID, id)
}

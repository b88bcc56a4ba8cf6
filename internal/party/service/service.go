// Package service validates and stores customers and vendors.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"smallbiz-erp/backend/internal/party/domain"
	"smallbiz-erp/backend/internal/party/repository"
	"smallbiz-erp/backend/internal/platform/validation"
)

// Input is the customer and vendor form.
type Input struct {
	Name    string
	Email   string
	Phone   string
	Address string
}

// Service manages the parties of one kind.
type Service struct {
	kind domain.Kind
	repo repository.Repository
	now  func() time.Time
}

func NewService(kind domain.Kind, repo repository.Repository) *Service {
	return &Service{kind: kind, repo: repo, now: time.Now}
}

// Kind returns the kind of party the service manages.
func (s *Service) Kind() domain.Kind { return s.kind }

func (s *Service) List(ctx context.Context, orgID string) ([]*domain.Party, error) {
	out, err := s.repo.List(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("list %ss: %w", s.kind, err)
	}
	if out == nil {
		out = []*domain.Party{}
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, orgID, id string) (*domain.Party, error) {
	return s.repo.Get(ctx, orgID, id)
}

// Create validates in and stores a new party. Blank optional fields are stored as NULL.
func (s *Service) Create(ctx context.Context, orgID string, in Input) (*domain.Party, error) {
	p := &domain.Party{
		Name:    strings.TrimSpace(in.Name),
		Email:   strings.TrimSpace(in.Email),
		Phone:   strings.TrimSpace(in.Phone),
		Address: strings.TrimSpace(in.Address),
	}
	fe := validation.FieldErrors{}
	fe.MinLen("name", p.Name, 2, "Name is required")
	fe.OptionalEmail("email", p.Email, "Invalid email")
	if err := fe.Err(); err != nil {
		return nil, err
	}
	p.ID = uuid.New().String()
	p.CreatedAt = s.now().UTC()
	if err := s.repo.Create(ctx, orgID, p); err != nil {
		return nil, fmt.Errorf("create %s: %w", s.kind, err)
	}
	return p, nil
}

func (s *Service) Delete(ctx context.Context, orgID, id string) error {
	return s.repo.Delete(ctx, orgID, id)
}

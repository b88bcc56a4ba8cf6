// Package service validates and records sales invoices and purchase bills.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"smallbiz-erp/backend/internal/db"
	"smallbiz-erp/backend/internal/document/domain"
	"smallbiz-erp/backend/internal/document/repository"
	partydomain "smallbiz-erp/backend/internal/party/domain"
	"smallbiz-erp/backend/internal/platform/money"
	"smallbiz-erp/backend/internal/platform/tenancy"
	"smallbiz-erp/backend/internal/platform/validation"
	productdomain "smallbiz-erp/backend/internal/product/domain"
)

// PartyLookup finds the customer or vendor a document is issued to.
type PartyLookup interface {
	Get(ctx context.Context, orgID, id string) (*partydomain.Party, error)
}

// ProductLookup finds the product a line refers to.
type ProductLookup interface {
	Get(ctx context.Context, orgID, id string) (*productdomain.Product, error)
}

// Input is the document form. LinesJSON is a JSON array of
// {productId?, description, qty, unitPriceCents}; qty and unitPriceCents may be numbers or numeric strings.
type Input struct {
	PartyID   string
	Number    string
	Date      string
	DueDate   string
	Notes     string
	LinesJSON string
}

type lineInput struct {
	ProductID      *string     `json:"productId"`
	Description    string      `json:"description"`
	Qty            json.Number `json:"qty"`
	UnitPriceCents json.Number `json:"unitPriceCents"`
}

// Service manages the documents of one kind.
type Service struct {
	kind     domain.Kind
	repo     repository.Repository
	parties  PartyLookup
	products ProductLookup
	now      func() time.Time
}

func NewService(kind domain.Kind, repo repository.Repository, parties PartyLookup, products ProductLookup) *Service {
	return &Service{kind: kind, repo: repo, parties: parties, products: products, now: time.Now}
}

// Kind returns the document kind the service manages.
func (s *Service) Kind() domain.Kind { return s.kind }

func (s *Service) List(ctx context.Context, orgID string) ([]*domain.Document, error) {
	out, err := s.repo.List(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("list %ss: %w", s.kind.Name, err)
	}
	if out == nil {
		out = []*domain.Document{}
	}
	return out, nil
}

func (s *Service) ListByParty(ctx context.Context, orgID, partyID string) ([]*domain.Document, error) {
	out, err := s.repo.ListByParty(ctx, orgID, partyID)
	if err != nil {
		return nil, fmt.Errorf("list %ss by party: %w", s.kind.Name, err)
	}
	if out == nil {
		out = []*domain.Document{}
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, orgID, id string) (*domain.Document, error) {
	return s.repo.Get(ctx, orgID, id)
}

// Create validates in and stores the document with its lines. The party and every referenced
// product must belong to orgID; anything else is reported as a field error.
func (s *Service) Create(ctx context.Context, orgID string, in Input) (*domain.Document, error) {
	fe := validation.FieldErrors{}
	partyField := s.kind.PartyField
	d := &domain.Document{
		Kind:    s.kind,
		PartyID: strings.TrimSpace(in.PartyID),
		Number:  strings.TrimSpace(in.Number),
		Notes:   strings.TrimSpace(in.Notes),
	}
	fe.MinLen(partyField, d.PartyID, 1, "Required")
	fe.MinLen("number", d.Number, 1, "Number is required")
	date := fe.OptionalDate(s.kind.DateField, strings.TrimSpace(in.Date))
	d.DueDate = fe.OptionalDate("dueDate", strings.TrimSpace(in.DueDate))

	if !fe.Has(partyField) {
		if _, err := s.parties.Get(ctx, orgID, d.PartyID); err != nil {
			if !errors.Is(err, tenancy.ErrNotFound) {
				return nil, fmt.Errorf("get %s party: %w", s.kind.Name, err)
			}
			fe.Add(partyField, "Unknown "+strings.TrimSuffix(s.kind.PartyTable, "s"))
		}
	}
	lines, err := s.parseLines(ctx, orgID, in.LinesJSON, fe)
	if err != nil {
		return nil, err
	}
	if err := fe.Err(); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	if date == nil {
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		date = &today
	}
	d.ID = uuid.New().String()
	d.Date = *date
	d.CreatedAt = now
	d.Lines = lines
	d.ComputeTotals()
	if err := s.repo.Create(ctx, orgID, d); err != nil {
		if db.IsUniqueViolation(err, s.kind.NumberConstraint) {
			fe.Add("number", "A "+s.kind.Name+" with this number already exists")
			return nil, fe.Err()
		}
		return nil, fmt.Errorf("create %s: %w", s.kind.Name, err)
	}
	return d, nil
}

// parseLines decodes and validates linesJSON, adding problems to fe. It returns an error only
// when a product lookup fails.
func (s *Service) parseLines(ctx context.Context, orgID, linesJSON string, fe validation.FieldErrors) ([]domain.Line, error) {
	var raw []lineInput
	if err := json.Unmarshal([]byte(linesJSON), &raw); err != nil {
		fe.Add("linesJson", "Invalid line items JSON")
		return nil, nil
	}
	if len(raw) == 0 {
		fe.Add("lines", "At least one line is required")
		return nil, nil
	}
	lines := make([]domain.Line, 0, len(raw))
	var subtotal int64
	for i, in := range raw {
		prefix := "Line " + strconv.Itoa(i+1) + ": "
		l := domain.Line{ID: uuid.New().String(), Description: strings.TrimSpace(in.Description)}
		if l.Description == "" {
			fe.Add("lines", prefix+"description is required")
		}
		qty, err := strconv.ParseInt(in.Qty.String(), 10, 32)
		if err != nil || qty <= 0 {
			fe.Add("lines", prefix+"quantity must be a positive whole number")
		}
		price, err := strconv.ParseInt(in.UnitPriceCents.String(), 10, 64)
		switch {
		case err != nil || price < 0:
			fe.Add("lines", prefix+"unit price must be zero or more cents")
		case price > money.MaxCents:
			fe.Add("lines", prefix+"unit price is too large")
		}
		l.Qty, l.UnitPriceCents = qty, price
		if !fe.Has("lines") {
			if total, err := money.MulCents(qty, price); err != nil {
				fe.Add("lines", prefix+"line total is too large")
			} else if subtotal, err = money.AddCents(subtotal, total); err != nil {
				fe.Add("lines", prefix+"document total is too large")
			}
		}
		if in.ProductID != nil && strings.TrimSpace(*in.ProductID) != "" {
			l.ProductID = strings.TrimSpace(*in.ProductID)
			if _, err := s.products.Get(ctx, orgID, l.ProductID); err != nil {
				if !errors.Is(err, tenancy.ErrNotFound) {
					return nil, fmt.Errorf("get line product: %w", err)
				}
				fe.Add("lines", prefix+"unknown product")
			}
		}
		lines = append(lines, l)
	}
	return lines, nil
}

func (s *Service) Delete(ctx context.Context, orgID, id string) error {
	return s.repo.Delete(ctx, orgID, id)
}

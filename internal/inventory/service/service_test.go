package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"smallbiz-erp/backend/internal/inventory/domain"
	"smallbiz-erp/backend/internal/inventory/repository"
	"smallbiz-erp/backend/internal/platform/tenancy"
	"smallbiz-erp/backend/internal/platform/validation"
	productdomain "smallbiz-erp/backend/internal/product/domain"
	productrepo "smallbiz-erp/backend/internal/product/repository"
)

func newTestService(t *testing.T) (*Service, *repository.MemoryRepository) {
	t.Helper()
	products := productrepo.NewMemoryRepository()
	repo := repository.NewMemoryRepository()
	for _, p := range []struct{ org, id, sku string }{{"org-a", "p-a", "W-1"}, {"org-b", "p-b", "W-1"}} {
		if err := products.Create(context.Background(), p.org, &productdomain.Product{ID: p.id, SKU: p.sku, Name: "Widget", Unit: "pcs"}); err != nil {
			t.Fatal(err)
		}
		repo.AddProduct(p.org, domain.ProductRef{ID: p.id, SKU: p.sku, Name: "Widget", Unit: "pcs"})
	}
	svc := NewService(repo, products)
	tick := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { tick = tick.Add(time.Minute); return tick }
	return svc, repo
}

func TestStockFollowsMoves(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	for _, in := range []MoveInput{
		{ProductID: "p-a", Type: "IN", Qty: "10"},
		{ProductID: "p-a", Type: "OUT", Qty: "3"},
		{ProductID: "p-a", Type: "ADJUST", Qty: "-2"},
		{ProductID: "p-a", Type: "ADJUST", Qty: "1"},
	} {
		if _, err := svc.CreateMove(ctx, "org-a", in); err != nil {
			t.Fatalf("CreateMove(%+v): %v", in, err)
		}
	}
	ov, err := svc.Overview(ctx, "org-a")
	if err != nil {
		t.Fatalf("Overview: %v", err)
	}
	if len(ov.Moves) != 4 || ov.Moves[0].Type != domain.MoveAdjust || ov.Moves[0].Qty != 1 {
		t.Errorf("moves = %+v", ov.Moves)
	}
	if len(ov.Stock) != 1 || ov.Stock[0].OnHand != 6 {
		t.Errorf("stock = %+v, want 6 on hand", ov.Stock)
	}

	other, _ := svc.Overview(ctx, "org-b")
	if len(other.Moves) != 0 || other.Stock[0].OnHand != 0 {
		t.Errorf("org B overview = %+v", other)
	}
}

func TestCreateMove_Validation(t *testing.T) {
	svc, _ := newTestService(t)
	testCases := []struct {
		name  string
		in    MoveInput
		field string
	}{
		{"zero adjust", MoveInput{ProductID: "p-a", Type: "ADJUST", Qty: "0"}, "qty"},
		{"negative in", MoveInput{ProductID: "p-a", Type: "IN", Qty: "-1"}, "qty"},
		{"zero out", MoveInput{ProductID: "p-a", Type: "OUT", Qty: "0"}, "qty"},
		{"not a number", MoveInput{ProductID: "p-a", Type: "IN", Qty: "many"}, "qty"},
		{"bad type", MoveInput{ProductID: "p-a", Type: "TRANSFER", Qty: "1"}, "type"},
		{"other org product", MoveInput{ProductID: "p-b", Type: "IN", Qty: "1"}, "productId"},
		{"missing product", MoveInput{Type: "IN", Qty: "1"}, "productId"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateMove(context.Background(), "org-a", tc.in)
			var fe validation.FieldErrors
			if !errors.As(err, &fe) || !fe.Has(tc.field) {
				t.Fatalf("err = %v, want error on %s", err, tc.field)
			}
		})
	}
}

func TestDeleteMove_TenantScoped(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	m, err := svc.CreateMove(ctx, "org-a", MoveInput{ProductID: "p-a", Type: "IN", Qty: "5"})
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.DeleteMove(ctx, "org-b", m.ID); !errors.Is(err, tenancy.ErrNotFound) {
		t.Errorf("cross-tenant delete = %v", err)
	}
	if err := svc.DeleteMove(ctx, "org-a", m.ID); err != nil {
		t.Errorf("delete: %v", err)
	}
}

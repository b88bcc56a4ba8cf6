package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"smallbiz-erp/backend/internal/inventory/domain"
	"smallbiz-erp/backend/internal/inventory/repository"
	"smallbiz-erp/backend/internal/inventory/service"
	productdomain "smallbiz-erp/backend/internal/product/domain"
	productrepo "smallbiz-erp/backend/internal/product/repository"
	"smallbiz-erp/backend/internal/session"
	sessiondomain "smallbiz-erp/backend/internal/session/domain"
)

func TestHandler_Inventory(t *testing.T) {
	products := productrepo.NewMemoryRepository()
	_ = products.Create(context.Background(), "org-a", &productdomain.Product{ID: "p-a", SKU: "W-1", Name: "Widget", Unit: "pcs"})
	repo := repository.NewMemoryRepository()
	repo.AddProduct("org-a", domain.ProductRef{ID: "p-a", SKU: "W-1", Name: "Widget", Unit: "pcs"})

	r := chi.NewRouter()
	NewHandler(service.NewService(repo, products)).Routes(r)
	send := func(method, path, orgID, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req = req.WithContext(session.WithSession(req.Context(), &sessiondomain.Session{ID: "s", UserID: "u", OrgID: orgID}))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	rec := send(http.MethodPost, "/inventory/moves", "org-a", `{"productId":"p-a","type":"IN","qty":"7","note":"initial count"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create = %d %s", rec.Code, rec.Body.String())
	}
	rec = send(http.MethodPost, "/inventory/moves", "org-a", `{"productId":"p-a","type":"OUT","qty":2}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create numeric qty = %d %s", rec.Code, rec.Body.String())
	}

	rec = send(http.MethodGet, "/inventory", "org-a", "")
	var ov service.Overview
	if err := json.Unmarshal(rec.Body.Bytes(), &ov); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(ov.Moves) != 2 || len(ov.Stock) != 1 || ov.Stock[0].OnHand != 5 {
		t.Errorf("overview = %s", rec.Body.String())
	}

	if rec := send(http.MethodDelete, "/inventory/moves/"+ov.Moves[0].ID, "org-b", ""); rec.Code != http.StatusNotFound {
		t.Errorf("cross-tenant delete = %d", rec.Code)
	}
	if rec := send(http.MethodPost, "/inventory/moves", "org-a", `{"productId":"p-a","type":"ADJUST","qty":0}`); rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("zero adjust = %d", rec.Code)
	}
}

package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"smallbiz-erp/backend/internal/accounting/repository"
	"smallbiz-erp/backend/internal/accounting/service"
	"smallbiz-erp/backend/internal/session"
	sessiondomain "smallbiz-erp/backend/internal/session/domain"
)

const (
	orgA = "0b6f6f1e-0000-4000-8000-00000000000a"
	orgB = "0b6f6f1e-0000-4000-8000-00000000000b"
)

func newRouter() http.Handler {
	r := chi.NewRouter()
	NewHandler(service.NewService(repository.NewMemoryRepository())).Routes(r)
	return r
}

func do(t *testing.T, h http.Handler, method, path, orgID string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	body := strings.NewReader("")
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if orgID != "" {
		req = req.WithContext(session.WithSession(req.Context(), &sessiondomain.Session{ID: "sess-" + orgID, UserID: "user-" + orgID, OrgID: orgID}))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func overview(t *testing.T, h http.Handler, orgID string) service.Overview {
	t.Helper()
	rec := do(t, h, http.MethodGet, "/accounting", orgID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /accounting = %d", rec.Code)
	}
	var ov service.Overview
	if err := json.Unmarshal(rec.Body.Bytes(), &ov); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return ov
}

func TestAccounting_RequiresSession(t *testing.T) {
	h := newRouter()
	rec := do(t, h, http.MethodGet, "/accounting", "", nil)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/sign-in" {
		t.Fatalf("status = %d, location = %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestAccounting_Flow(t *testing.T) {
	h := newRouter()

	rec := do(t, h, http.MethodPost, "/accounting/init", orgA, url.Values{})
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"created":true`) {
		t.Fatalf("init = %d %s", rec.Code, rec.Body.String())
	}
	ov := overview(t, h, orgA)
	if len(ov.Accounts) != 9 {
		t.Fatalf("accounts = %d, want 9", len(ov.Accounts))
	}
	cash, sales := ov.Accounts[0], ov.Accounts[5]
	if cash.Code != "1000" || sales.Code != "4000" {
		t.Fatalf("accounts not ordered by code: %s, %s", cash.Code, sales.Code)
	}

	rec = do(t, h, http.MethodPost, "/accounting/entries", orgA, url.Values{
		"date":            {"2025-03-01"},
		"memo":            {"Opening sale"},
		"debitAccountId":  {cash.ID},
		"creditAccountId": {sales.ID},
		"amount":          {"1250.00"},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("post entry = %d %s", rec.Code, rec.Body.String())
	}
	var created struct{ ID string }
	_ = json.Unmarshal(rec.Body.Bytes(), &created)

	ov = overview(t, h, orgA)
	if len(ov.Entries) != 1 || len(ov.Entries[0].Lines) != 2 {
		t.Fatalf("entries = %+v", ov.Entries)
	}
	if ov.Entries[0].SubtotalCents != 125000 || ov.Entries[0].TotalCents != 125000 {
		t.Errorf("entry subtotal/total = %d/%d", ov.Entries[0].SubtotalCents, ov.Entries[0].TotalCents)
	}

	rec = do(t, h, http.MethodGet, "/accounting/trial-balance", orgA, nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"totalDebitCents":125000`) {
		t.Errorf("trial balance = %d %s", rec.Code, rec.Body.String())
	}

	// Another tenant sees nothing and cannot delete.
	if ov := overview(t, h, orgB); len(ov.Accounts) != 0 || len(ov.Entries) != 0 {
		t.Errorf("org B overview = %+v", ov)
	}
	rec = do(t, h, http.MethodDelete, "/accounting/entries/"+created.ID, orgB, nil)
	if rec.Code != http.StatusNotFound || !strings.Contains(rec.Body.String(), `"error":"not found"`) {
		t.Errorf("cross-tenant delete = %d %s", rec.Code, rec.Body.String())
	}
	unknown := do(t, h, http.MethodDelete, "/accounting/entries/not-a-uuid", orgA, nil)
	if unknown.Code != rec.Code || unknown.Body.String() != rec.Body.String() {
		t.Errorf("unknown id answered %d %s, cross-tenant %d %s", unknown.Code, unknown.Body.String(), rec.Code, rec.Body.String())
	}

	rec = do(t, h, http.MethodDelete, "/accounting/accounts/"+cash.ID, orgA, nil)
	if rec.Code != http.StatusConflict {
		t.Errorf("delete used account = %d", rec.Code)
	}
	if rec := do(t, h, http.MethodDelete, "/accounting/entries/"+created.ID, orgA, nil); rec.Code != http.StatusOK {
		t.Errorf("delete entry = %d", rec.Code)
	}
	if rec := do(t, h, http.MethodDelete, "/accounting/accounts/"+cash.ID, orgA, nil); rec.Code != http.StatusOK {
		t.Errorf("delete account = %d", rec.Code)
	}
}

func TestAccounting_ValidationErrors(t *testing.T) {
	h := newRouter()
	rec := do(t, h, http.MethodPost, "/accounting/accounts", orgA, url.Values{"code": {"1000"}, "name": {"C"}, "type": {"CASH"}})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		OK     bool
		Errors map[string][]string
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.OK || len(body.Errors["name"]) == 0 || len(body.Errors["type"]) == 0 {
		t.Errorf("body = %+v", body)
	}
}

package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	auditdomain "smallbiz-erp/backend/internal/audit/domain"
	"smallbiz-erp/backend/internal/dashboard/service"
	"smallbiz-erp/backend/internal/session"
	sessiondomain "smallbiz-erp/backend/internal/session/domain"
)

type auditByOrg map[string][]*auditdomain.AuditLog

func (a auditByOrg) ListByOrg(_ context.Context, orgID string, _ int) ([]*auditdomain.AuditLog, error) {
	return a[orgID], nil
}

func serve(h http.Handler, path, orgID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if orgID != "" {
		req = req.WithContext(session.WithSession(req.Context(), &sessiondomain.Session{ID: "s1", UserID: "u1", OrgID: orgID}))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandler_Dashboard(t *testing.T) {
	counts := map[string]int{"org-a": 2, "org-b": 5}
	svc := service.NewService(map[string]service.CountFunc{
		"customers": func(_ context.Context, orgID string) (int, error) { return counts[orgID], nil },
	}, auditByOrg{
		"org-a": {{ID: "l1", OrgID: "org-a", Action: "create", Resource: "customers"}},
	})
	r := chi.NewRouter()
	NewHandler(svc).Routes(r)

	rec := serve(r, "/dashboard", "org-a")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var summary struct {
		Counts map[string]int `json:"counts"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &summary); err != nil || summary.Counts["customers"] != 2 {
		t.Errorf("summary = %s (%v)", rec.Body.String(), err)
	}

	var trail struct {
		Entries []auditdomain.AuditLog `json:"entries"`
	}
	rec = serve(r, "/dashboard/audit", "org-b")
	if err := json.Unmarshal(rec.Body.Bytes(), &trail); err != nil || len(trail.Entries) != 0 {
		t.Errorf("org-b audit = %s (%v)", rec.Body.String(), err)
	}
	rec = serve(r, "/dashboard/audit", "org-a")
	if err := json.Unmarshal(rec.Body.Bytes(), &trail); err != nil || len(trail.Entries) != 1 || trail.Entries[0].ID != "l1" {
		t.Errorf("org-a audit = %s (%v)", rec.Body.String(), err)
	}
}

func TestHandler_RequiresSession(t *testing.T) {
	r := chi.NewRouter()
	NewHandler(service.NewService(nil, nil)).Routes(r)
	for _, path := range []string{"/dashboard", "/dashboard/audit"} {
		rec := serve(r, path, "")
		if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/sign-in" {
			t.Errorf("%s without session = %d %q", path, rec.Code, rec.Header().Get("Location"))
		}
	}
}

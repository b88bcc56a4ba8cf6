package service

import (
	"context"
	"errors"
	"testing"

	auditdomain "smallbiz-erp/backend/internal/audit/domain"
)

type stubAudit struct {
	logs  []*auditdomain.AuditLog
	orgID string
	limit int
}

func (s *stubAudit) ListByOrg(_ context.Context, orgID string, limit int) ([]*auditdomain.AuditLog, error) {
	s.orgID, s.limit = orgID, limit
	return s.logs, nil
}

func fixed(n int) CountFunc {
	return func(context.Context, string) (int, error) { return n, nil }
}

func TestService_Counts(t *testing.T) {
	var seen string
	svc := NewService(map[string]CountFunc{
		"customers": func(_ context.Context, orgID string) (int, error) { seen = orgID; return 3, nil },
		"products":  fixed(7),
	}, nil)

	counts, err := svc.Counts(context.Background(), "org-a")
	if err != nil {
		t.Fatalf("Counts: %v", err)
	}
	if counts["customers"] != 3 || counts["products"] != 7 || len(counts) != 2 {
		t.Errorf("counts = %v", counts)
	}
	if seen != "org-a" {
		t.Errorf("counter saw org %q", seen)
	}
}

func TestService_CountsError(t *testing.T) {
	boom := errors.New("db down")
	svc := NewService(map[string]CountFunc{
		"bills":    func(context.Context, string) (int, error) { return 0, boom },
		"invoices": fixed(1),
	}, nil)
	if _, err := svc.Counts(context.Background(), "org-a"); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
}

func TestService_AuditTrail(t *testing.T) {
	audit := &stubAudit{}
	svc := NewService(nil, audit)
	logs, err := svc.AuditTrail(context.Background(), "org-a")
	if err != nil {
		t.Fatalf("AuditTrail: %v", err)
	}
	if logs == nil || len(logs) != 0 {
		t.Errorf("logs = %v, want empty slice", logs)
	}
	if audit.orgID != "org-a" || audit.limit != AuditLimit {
		t.Errorf("ListByOrg(%q, %d)", audit.orgID, audit.limit)
	}

	if logs, err := NewService(nil, nil).AuditTrail(context.Background(), "org-a"); err != nil || len(logs) != 0 {
		t.Errorf("nil reader = %v, %v", logs, err)
	}
}

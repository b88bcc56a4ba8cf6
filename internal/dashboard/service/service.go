// Package service builds the dashboard: record counts per area and the tenant's audit trail.
package service

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	auditdomain "smallbiz-erp/backend/internal/audit/domain"
)

// AuditLimit is how many audit entries the dashboard returns.
const AuditLimit = 50

// CountFunc counts one kind of record of an org.
type CountFunc func(ctx context.Context, orgID string) (int, error)

// AuditReader lists an org's audit entries, newest first.
type AuditReader interface {
	ListByOrg(ctx context.Context, orgID string, limit int) ([]*auditdomain.AuditLog, error)
}

type Service struct {
	counters map[string]CountFunc
	audit    AuditReader
}

// NewService returns a dashboard that reports one count per entry of counters, keyed by name.
func NewService(counters map[string]CountFunc, audit AuditReader) *Service {
	return &Service{counters: counters, audit: audit}
}

// Counts runs every counter for orgID concurrently.
func (s *Service) Counts(ctx context.Context, orgID string) (map[string]int, error) {
	var (
		mu  sync.Mutex
		out = make(map[string]int, len(s.counters))
	)
	g, ctx := errgroup.WithContext(ctx)
	for name, count := range s.counters {
		g.Go(func() error {
			n, err := count(ctx, orgID)
			if err != nil {
				return fmt.Errorf("count %s: %w", name, err)
			}
			mu.Lock()
			out[name] = n
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// AuditTrail returns the latest audit entries of orgID.
func (s *Service) AuditTrail(ctx context.Context, orgID string) ([]*auditdomain.AuditLog, error) {
	if s.audit == nil {
		return []*auditdomain.AuditLog{}, nil
	}
	logs, err := s.audit.ListByOrg(ctx, orgID, AuditLimit)
	if err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	if logs == nil {
		logs = []*auditdomain.AuditLog{}
	}
	return logs, nil
}

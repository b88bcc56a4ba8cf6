package repository

import (
	"context"
	"sort"
	"sync"

	"smallbiz-erp/backend/internal/crm/domain"
	"smallbiz-erp/backend/internal/platform/tenancy"
)

// MemoryRepository is an in-memory Repository for tests and local tooling.
type MemoryRepository struct {
	mu            sync.Mutex
	contacts      map[string]*domain.Contact
	opportunities map[string]*domain.Opportunity
	activities    map[string]*domain.Activity
	tasks         map[string]*domain.Task
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		contacts:      map[string]*domain.Contact{},
		opportunities: map[string]*domain.Opportunity{},
		activities:    map[string]*domain.Activity{},
		tasks:         map[string]*domain.Task{},
	}
}

func (m *MemoryRepository) Records(_ context.Context, orgID, customerID string) (*domain.Records, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec := &domain.Records{
		Contacts:      []*domain.Contact{},
		Opportunities: []*domain.Opportunity{},
		Activities:    []*domain.Activity{},
		Tasks:         []*domain.Task{},
	}
	for _, c := range m.contacts {
		if c.OrgID == orgID && c.CustomerID == customerID {
			cp := *c
			rec.Contacts = append(rec.Contacts, &cp)
		}
	}
	for _, o := range m.opportunities {
		if o.OrgID == orgID && o.CustomerID == customerID {
			cp := *o
			rec.Opportunities = append(rec.Opportunities, &cp)
		}
	}
	for _, a := range m.activities {
		if a.OrgID == orgID && a.CustomerID == customerID {
			cp := *a
			rec.Activities = append(rec.Activities, &cp)
		}
	}
	for _, t := range m.tasks {
		if t.OrgID == orgID && t.CustomerID == customerID {
			cp := *t
			rec.Tasks = append(rec.Tasks, &cp)
		}
	}
	sort.Slice(rec.Contacts, func(i, j int) bool { return rec.Contacts[i].FirstName < rec.Contacts[j].FirstName })
	sort.Slice(rec.Opportunities, func(i, j int) bool {
		return rec.Opportunities[i].CreatedAt.Before(rec.Opportunities[j].CreatedAt)
	})
	sort.Slice(rec.Activities, func(i, j int) bool { return rec.Activities[i].CreatedAt.After(rec.Activities[j].CreatedAt) })
	sort.Slice(rec.Tasks, func(i, j int) bool { return rec.Tasks[i].CreatedAt.After(rec.Tasks[j].CreatedAt) })
	return rec, nil
}

func (m *MemoryRepository) CreateContact(_ context.Context, orgID string, c *domain.Contact) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.OrgID = orgID
	cp := *c
	m.contacts[c.ID] = &cp
	return nil
}

func (m *MemoryRepository) CreateOpportunity(_ context.Context, orgID string, o *domain.Opportunity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o.OrgID = orgID
	cp := *o
	m.opportunities[o.ID] = &cp
	return nil
}

func (m *MemoryRepository) CreateActivity(_ context.Context, orgID string, a *domain.Activity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a.OrgID = orgID
	cp := *a
	m.activities[a.ID] = &cp
	return nil
}

func (m *MemoryRepository) CreateTask(_ context.Context, orgID string, t *domain.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t.OrgID = orgID
	cp := *t
	m.tasks[t.ID] = &cp
	return nil
}

func (m *MemoryRepository) UpdateStage(_ context.Context, orgID, customerID, id string, stage domain.Stage) (*domain.Opportunity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.opportunities[id]
	if !ok || o.OrgID != orgID || o.CustomerID != customerID {
		return nil, tenancy.ErrNotFound
	}
	o.Stage = stage
	cp := *o
	return &cp, nil
}

func (m *MemoryRepository) UpdateTaskStatus(_ context.Context, orgID, customerID, id, status string) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok || t.OrgID != orgID || t.CustomerID != customerID {
		return nil, tenancy.ErrNotFound
	}
	t.Status = status
	cp := *t
	return &cp, nil
}

func (m *MemoryRepository) Delete(_ context.Context, child Child, orgID, customerID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	owned := func(org, customer string) bool { return org == orgID && customer == customerID }
	switch child {
	case Contacts:
		if c, ok := m.contacts[id]; ok && owned(c.OrgID, c.CustomerID) {
			delete(m.contacts, id)
			return nil
		}
	case Opportunities:
		if o, ok := m.opportunities[id]; ok && owned(o.OrgID, o.CustomerID) {
			delete(m.opportunities, id)
			return nil
		}
	case Activities:
		if a, ok := m.activities[id]; ok && owned(a.OrgID, a.CustomerID) {
			delete(m.activities, id)
			return nil
		}
	case Tasks:
		if t, ok := m.tasks[id]; ok && owned(t.OrgID, t.CustomerID) {
			delete(m.tasks, id)
			return nil
		}
	}
	return tenancy.ErrNotFound
}

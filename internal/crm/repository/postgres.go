package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"smallbiz-erp/backend/internal/crm/domain"
	"smallbiz-erp/backend/internal/db"
	"smallbiz-erp/backend/internal/platform/tenancy"
)

type PostgresRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewPostgresRepository(conn *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: conn, now: time.Now}
}

func (r *PostgresRepository) Records(ctx context.Context, orgID, customerID string) (*domain.Records, error) {
	rec := &domain.Records{
		Contacts:      []*domain.Contact{},
		Opportunities: []*domain.Opportunity{},
		Activities:    []*domain.Activity{},
		Tasks:         []*domain.Task{},
	}
	if err := tenancy.CheckID(customerID); err != nil {
		return rec, nil
	}
	if err := r.each(ctx, `
		SELECT id, org_id, customer_id, first_name, last_name, job_title, email, phone, created_at
		FROM contacts WHERE org_id = $1 AND customer_id = $2 ORDER BY first_name, last_name`,
		orgID, customerID, func(rows *sql.Rows) error {
			var (
				c                                domain.Contact
				lastName, jobTitle, email, phone sql.NullString
			)
			if err := rows.Scan(&c.ID, &c.OrgID, &c.CustomerID, &c.FirstName, &lastName, &jobTitle, &email, &phone, &c.CreatedAt); err != nil {
				return err
			}
			c.LastName, c.JobTitle, c.Email, c.Phone = lastName.String, jobTitle.String, email.String, phone.String
			rec.Contacts = append(rec.Contacts, &c)
			return nil
		}); err != nil {
		return nil, fmt.Errorf("contacts: %w", err)
	}
	if err := r.each(ctx, `
		SELECT `+opportunityColumns+` FROM opportunities
		WHERE org_id = $1 AND customer_id = $2 ORDER BY created_at`,
		orgID, customerID, func(rows *sql.Rows) error {
			o, err := scanOpportunity(rows)
			if err != nil {
				return err
			}
			rec.Opportunities = append(rec.Opportunities, o)
			return nil
		}); err != nil {
		return nil, fmt.Errorf("opportunities: %w", err)
	}
	if err := r.each(ctx, `
		SELECT id, org_id, customer_id, type, subject, description, created_at
		FROM activities WHERE org_id = $1 AND customer_id = $2 ORDER BY created_at DESC`,
		orgID, customerID, func(rows *sql.Rows) error {
			var (
				a    domain.Activity
				desc sql.NullString
			)
			if err := rows.Scan(&a.ID, &a.OrgID, &a.CustomerID, &a.Type, &a.Subject, &desc, &a.CreatedAt); err != nil {
				return err
			}
			a.Description = desc.String
			rec.Activities = append(rec.Activities, &a)
			return nil
		}); err != nil {
		return nil, fmt.Errorf("activities: %w", err)
	}
	if err := r.each(ctx, `
		SELECT `+taskColumns+` FROM tasks
		WHERE org_id = $1 AND customer_id = $2 ORDER BY created_at DESC`,
		orgID, customerID, func(rows *sql.Rows) error {
			t, err := scanTask(rows)
			if err != nil {
				return err
			}
			rec.Tasks = append(rec.Tasks, t)
			return nil
		}); err != nil {
		return nil, fmt.Errorf("tasks: %w", err)
	}
	return rec, nil
}

func (r *PostgresRepository) each(ctx context.Context, query, orgID, customerID string, fn func(*sql.Rows) error) error {
	rows, err := r.db.QueryContext(ctx, query, orgID, customerID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := fn(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (r *PostgresRepository) CreateContact(ctx context.Context, orgID string, c *domain.Contact) error {
	c.OrgID = orgID
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO contacts (id, org_id, customer_id, first_name, last_name, job_title, email, phone, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		c.ID, orgID, c.CustomerID, c.FirstName, db.NullString(c.LastName), db.NullString(c.JobTitle),
		db.NullString(c.Email), db.NullString(c.Phone), c.CreatedAt)
	return err
}

func (r *PostgresRepository) CreateOpportunity(ctx context.Context, orgID string, o *domain.Opportunity) error {
	o.OrgID = orgID
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO opportunities (id, org_id, customer_id, title, value_cents, stage, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		o.ID, orgID, o.CustomerID, o.Title, o.ValueCents, string(o.Stage), db.NullString(o.Description), o.CreatedAt, o.UpdatedAt)
	return err
}

func (r *PostgresRepository) CreateActivity(ctx context.Context, orgID string, a *domain.Activity) error {
	a.OrgID = orgID
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO activities (id, org_id, customer_id, type, subject, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		a.ID, orgID, a.CustomerID, a.Type, a.Subject, db.NullString(a.Description), a.CreatedAt)
	return err
}

func (r *PostgresRepository) CreateTask(ctx context.Context, orgID string, t *domain.Task) error {
	t.OrgID = orgID
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO tasks (id, org_id, customer_id, title, due_date, priority, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		t.ID, orgID, t.CustomerID, t.Title, db.NullTime(t.DueDate), t.Priority, t.Status, t.CreatedAt)
	return err
}

func (r *PostgresRepository) UpdateStage(ctx context.Context, orgID, customerID, id string, stage domain.Stage) (*domain.Opportunity, error) {
	if err := checkIDs(customerID, id); err != nil {
		return nil, err
	}
	o, err := scanOpportunity(r.db.QueryRowContext(ctx, `
		UPDATE opportunities SET stage = $1, updated_at = $2
		WHERE id = $3 AND org_id = $4 AND customer_id = $5
		RETURNING `+opportunityColumns,
		string(stage), r.now().UTC(), id, orgID, customerID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, tenancy.ErrNotFound
	}
	return o, err
}

func (r *PostgresRepository) UpdateTaskStatus(ctx context.Context, orgID, customerID, id, status string) (*domain.Task, error) {
	if err := checkIDs(customerID, id); err != nil {
		return nil, err
	}
	t, err := scanTask(r.db.QueryRowContext(ctx, `
		UPDATE tasks SET status = $1
		WHERE id = $2 AND org_id = $3 AND customer_id = $4
		RETURNING `+taskColumns,
		status, id, orgID, customerID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, tenancy.ErrNotFound
	}
	return t, err
}

func (r *PostgresRepository) Delete(ctx context.Context, child Child, orgID, customerID, id string) error {
	if err := checkIDs(customerID, id); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM `+string(child)+` WHERE id = $1 AND org_id = $2 AND customer_id = $3`, id, orgID, customerID)
	if err != nil {
		return err
	}
	return tenancy.RequireAffected(res)
}

const (
	opportunityColumns = `id, org_id, customer_id, title, value_cents, stage, description, created_at, updated_at`
	taskColumns        = `id, org_id, customer_id, title, due_date, priority, status, created_at`
)

type scanner interface {
	Scan(dest ...any) error
}

func scanOpportunity(s scanner) (*domain.Opportunity, error) {
	var (
		o     domain.Opportunity
		stage string
		desc  sql.NullString
	)
	if err := s.Scan(&o.ID, &o.OrgID, &o.CustomerID, &o.Title, &o.ValueCents, &stage, &desc, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	o.Stage = domain.Stage(stage)
	o.Description = desc.String
	return &o, nil
}

func scanTask(s scanner) (*domain.Task, error) {
	var (
		t   domain.Task
		due sql.NullTime
	)
	if err := s.Scan(&t.ID, &t.OrgID, &t.CustomerID, &t.Title, &due, &t.Priority, &t.Status, &t.CreatedAt); err != nil {
		return nil, err
	}
	t.DueDate = db.TimePtr(due)
	return &t, nil
}

func checkIDs(ids ...string) error {
	for _, id := range ids {
		if err := tenancy.CheckID(id); err != nil {
			return err
		}
	}
	return nil
}

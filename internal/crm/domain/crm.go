// Package domain defines the CRM records kept against a customer: contacts, opportunities
// on the sales pipeline, logged activities and follow-up tasks.
package domain

import "time"

// Stage is an opportunity's position on the pipeline board.
type Stage string

const (
	StageNew           Stage = "NEW"
	StageQualification Stage = "QUALIFICATION"
	StageProposal      Stage = "PROPOSAL"
	StageNegotiation   Stage = "NEGOTIATION"
	StageWon           Stage = "WON"
	StageLost          Stage = "LOST"
)

// Stages lists the pipeline columns in board order.
var Stages = []string{
	string(StageNew), string(StageQualification), string(StageProposal),
	string(StageNegotiation), string(StageWon), string(StageLost),
}

// ActivityTypes lists the kinds of activity that can be logged.
var ActivityTypes = []string{"CALL", "EMAIL", "MEETING", "NOTE"}

// Task priorities and statuses.
var (
	Priorities      = []string{"LOW", "MEDIUM", "HIGH"}
	TaskStatuses    = []string{"TODO", "DONE"}
	DefaultPriority = "MEDIUM"
	DefaultStatus   = "TODO"
)

type Contact struct {
	ID         string    `json:"id"`
	OrgID      string    `json:"-"`
	CustomerID string    `json:"customerId"`
	FirstName  string    `json:"firstName"`
	LastName   string    `json:"lastName,omitempty"`
	JobTitle   string    `json:"jobTitle,omitempty"`
	Email      string    `json:"email,omitempty"`
	Phone      string    `json:"phone,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

type Opportunity struct {
	ID          string    `json:"id"`
	OrgID       string    `json:"-"`
	CustomerID  string    `json:"customerId"`
	Title       string    `json:"title"`
	ValueCents  int64     `json:"valueCents"`
	Stage       Stage     `json:"stage"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Activity struct {
	ID          string    `json:"id"`
	OrgID       string    `json:"-"`
	CustomerID  string    `json:"customerId"`
	Type        string    `json:"type"`
	Subject     string    `json:"subject"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Task struct {
	ID         string     `json:"id"`
	OrgID      string     `json:"-"`
	CustomerID string     `json:"customerId"`
	Title      string     `json:"title"`
	DueDate    *time.Time `json:"dueDate,omitempty"`
	Priority   string     `json:"priority"`
	Status     string     `json:"status"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// Records is everything the CRM keeps for one customer.
type Records struct {
	Contacts      []*Contact     `json:"contacts"`
	Opportunities []*Opportunity `json:"opportunities"`
	Activities    []*Activity    `json:"activities"`
	Tasks         []*Task        `json:"tasks"`
}

// PipelineValue sums the value of opportunities in each stage.
func (r *Records) PipelineValue() map[Stage]int64 {
	out := make(map[Stage]int64, len(Stages))
	for _, o := range r.Opportunities {
		out[o.Stage] += o.ValueCents
	}
	return out
}

package domain

import "time"

// AuditLog is one recorded mutation or auth event of a tenant.
type AuditLog struct {
	ID        string    `json:"id"`
	OrgID     string    `json:"orgId"`
	UserID    string    `json:"userId,omitempty"`
	Action    string    `json:"action"`
	Resource  string    `json:"resource"`
	IP        string    `json:"ip"`
	Metadata  string    `json:"metadata,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Auth actions recorded by the identity handlers.
const (
	ActionSignUp        = "sign_up"
	ActionSignIn        = "sign_in"
	ActionSignInFailure = "sign_in_failure"
	ActionSignOut       = "sign_out"
)

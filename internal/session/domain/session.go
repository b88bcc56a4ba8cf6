package domain

import "time"

// Session is an authenticated browser session. ID is the jti of the session token;
// Email and Name come from the token and are not persisted.
type Session struct {
	ID         string
	UserID     string
	OrgID      string
	Email      string
	Name       string
	ExpiresAt  time.Time
	RevokedAt  *time.Time // nil when not revoked
	LastSeenAt *time.Time
	IPAddress  string
	CreatedAt  time.Time
}

// Active reports whether the session is neither revoked nor expired at now.
func (s *Session) Active(now time.Time) bool {
	return s != nil && s.RevokedAt == nil && now.Before(s.ExpiresAt)
}

// TenantID returns the org that owns the session's data, falling back to the user
// for sessions issued without an organization.
func (s *Session) TenantID() string {
	if s.OrgID != "" {
		return s.OrgID
	}
	return s.UserID
}

package session

import (
	"context"

	"smallbiz-erp/backend/internal/session/domain"
)

type contextKey struct{ name string }

var sessionKey = contextKey{"session"}

// WithSession returns a context carrying the verified session. Handlers read it via
// FromContext, GetUserID, GetOrgID and GetSessionID.
func WithSession(ctx context.Context, s *domain.Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// FromContext returns the verified session and true if set; otherwise nil, false.
func FromContext(ctx context.Context) (*domain.Session, bool) {
	s, ok := ctx.Value(sessionKey).(*domain.Session)
	return s, ok && s != nil
}

// GetUserID returns the user_id from context and true if set; otherwise "", false.
func GetUserID(ctx context.Context) (string, bool) {
	s, ok := FromContext(ctx)
	if !ok || s.UserID == "" {
		return "", false
	}
	return s.UserID, true
}

// GetOrgID returns the org_id from context and true if set; otherwise "", false.
func GetOrgID(ctx context.Context) (string, bool) {
	s, ok := FromContext(ctx)
	if !ok || s.OrgID == "" {
		return "", false
	}
	return s.OrgID, true
}

// GetSessionID returns the session id (token jti) from context and true if set; otherwise "", false.
func GetSessionID(ctx context.Context) (string, bool) {
	s, ok := FromContext(ctx)
	if !ok || s.ID == "" {
		return "", false
	}
	return s.ID, true
}

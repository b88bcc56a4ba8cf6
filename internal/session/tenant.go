package session

import (
	"context"
	"errors"
)

// ErrUnauthenticated is returned when a tenant-scoped operation runs without a verified session.
var ErrUnauthenticated = errors.New("unauthenticated")

// ResolveTenantID returns the tenant key for the verified session in ctx: the session's
// organization, or the user id when the session carries none. The tenant is only ever
// derived from the session, never from request input.
func ResolveTenantID(ctx context.Context) (string, error) {
	s, ok := FromContext(ctx)
	if !ok || s.UserID == "" {
		return "", ErrUnauthenticated
	}
	return s.TenantID(), nil
}

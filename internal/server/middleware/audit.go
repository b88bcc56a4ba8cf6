package middleware

import (
	"fmt"
	"net/http"

	"smallbiz-erp/backend/internal/audit"
	"smallbiz-erp/backend/internal/session"
)

// ClientIP stores the request's client IP in the context for the audit logger.
func ClientIP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(audit.WithClientIP(r.Context(), audit.ClientIP(r))))
	})
}

// Audit records every successful mutation made under a verified session. It must run after
// the session verifier. Best-effort: the request outcome is never affected.
func Audit(logger audit.AuditLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := recordResponse(w)
			next.ServeHTTP(rec, r)

			if logger == nil || !isMutation(r.Method) || rec.status >= http.StatusBadRequest {
				return
			}
			orgID, err := session.ResolveTenantID(r.Context())
			if err != nil {
				return
			}
			userID, _ := session.GetUserID(r.Context())
			ar := audit.ParseRoute(r.Method, routePattern(r))
			meta := fmt.Sprintf("path=%s status=%d", r.URL.Path, rec.status)
			logger.LogEvent(r.Context(), orgID, userID, ar.Action, ar.Resource, meta)
		})
	}
}

package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"smallbiz-erp/backend/internal/audit"
	"smallbiz-erp/backend/internal/session"
	"smallbiz-erp/backend/internal/telemetry"
	"smallbiz-erp/backend/internal/telemetry/domain"
)

// httpRequestMetadata is the JSON stored in Event.Metadata for http_request events.
type httpRequestMetadata struct {
	Method     string `json:"method"`
	Route      string `json:"route"`
	Path       string `json:"path"`
	Status     int    `json:"status"`
	DurationMs int64  `json:"duration_ms"`
	ClientIP   string `json:"client_ip"`
}

// Telemetry emits an http_request event after each request. Session ids are attached when
// a verified session is in the context. Best-effort: failures are logged and do not fail the
// request. If emitter is nil, the middleware no-ops. skipPaths are not emitted (e.g. /healthz).
func Telemetry(emitter telemetry.EventEmitter, skipPaths map[string]bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := recordResponse(w)
			next.ServeHTTP(rec, r)
			if emitter == nil || skipPaths[r.URL.Path] {
				return
			}
			meta, _ := json.Marshal(httpRequestMetadata{
				Method:     r.Method,
				Route:      routePattern(r),
				Path:       r.URL.Path,
				Status:     rec.status,
				DurationMs: time.Since(start).Milliseconds(),
				ClientIP:   audit.ClientIP(r),
			})
			event := &domain.Event{
				EventType: domain.EventTypeHTTPRequest,
				Source:    "http_middleware",
				Metadata:  meta,
			}
			if orgID, err := session.ResolveTenantID(r.Context()); err == nil {
				event.OrgID = orgID
				event.UserID, _ = session.GetUserID(r.Context())
				event.SessionID, _ = session.GetSessionID(r.Context())
			}
			telemetry.EmitAsync(emitter, r.Context(), event)
		})
	}
}

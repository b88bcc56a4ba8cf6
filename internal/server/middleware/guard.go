// Package middleware holds the HTTP middleware of the application server: the route guard,
// request logging, tracing, audit and telemetry.
package middleware

import (
	"log"
	"net/http"

	"smallbiz-erp/backend/internal/policy/engine"
	"smallbiz-erp/backend/internal/security"
	"smallbiz-erp/backend/internal/session"
)

// RouteGuard redirects before any handler runs: anonymous requests for protected sections go
// to the sign-in page and signed-in requests for the sign-in or sign-up page go to the dashboard.
// A request counts as authenticated when its session cookie decodes; the database is not
// consulted and the cookie is never modified.
func RouteGuard(codec *security.SessionCodec, cookies *session.CookieStore, evaluator engine.Evaluator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			in := engine.RouteInput{Path: r.URL.Path, Authenticated: cookieValid(codec, cookies, r)}
			decision, err := evaluator.Decide(r.Context(), in)
			if err != nil {
				log.Printf("guard: decide %s: %v", in.Path, err)
			}
			if loc := decision.Location(); loc != "" {
				http.Redirect(w, r, loc, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func cookieValid(codec *security.SessionCodec, cookies *session.CookieStore, r *http.Request) bool {
	token, ok := cookies.GetSessionCookie(r)
	if !ok {
		return false
	}
	_, err := codec.Decode(token)
	return err == nil
}

package session

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"smallbiz-erp/backend/internal/security"
	"smallbiz-erp/backend/internal/session/domain"
)

// SignInPath is where unauthenticated requests are sent.
const SignInPath = "/sign-in"

// ErrSessionRevoked is returned when the token is valid but its session was ended at sign-out.
var ErrSessionRevoked = errors.New("session revoked")

// Lookup finds the server-side record of a session by its token jti.
type Lookup interface {
	GetByID(ctx context.Context, id string) (*domain.Session, error)
}

// Verifier authenticates requests from the session cookie.
type Verifier struct {
	codec    *security.SessionCodec
	cookies  *CookieStore
	sessions Lookup
	now      func() time.Time
}

// NewVerifier returns a Verifier. When sessions is nil only the token signature and expiry are checked.
func NewVerifier(codec *security.SessionCodec, cookies *CookieStore, sessions Lookup) *Verifier {
	return &Verifier{codec: codec, cookies: cookies, sessions: sessions, now: time.Now}
}

// Authenticate returns the session for the request's cookie. It returns security.ErrInvalidToken
// for a missing or invalid token and ErrSessionRevoked when the session was ended or is unknown.
// Other errors come from the session lookup.
func (v *Verifier) Authenticate(r *http.Request) (*domain.Session, error) {
	token, ok := v.cookies.GetSessionCookie(r)
	if !ok {
		return nil, security.ErrInvalidToken
	}
	claims, err := v.codec.Decode(token)
	if err != nil {
		return nil, err
	}
	s := &domain.Session{
		ID:        claims.ID,
		UserID:    claims.UserID(),
		OrgID:     claims.OrgID,
		Email:     claims.Email,
		Name:      claims.Name,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		s.CreatedAt = claims.IssuedAt.Time
	}
	if v.sessions == nil {
		return s, nil
	}
	if claims.ID == "" {
		return nil, ErrSessionRevoked
	}
	stored, err := v.sessions.GetByID(r.Context(), claims.ID)
	if err != nil {
		return nil, err
	}
	if stored == nil || stored.UserID != s.UserID || !stored.Active(v.now()) {
		return nil, ErrSessionRevoked
	}
	s.LastSeenAt = stored.LastSeenAt
	s.IPAddress = stored.IPAddress
	return s, nil
}

// Verify returns the request's session. When the cookie is missing, invalid or names an ended
// session it clears the cookie, writes a 303 redirect to the sign-in page and returns false.
// When the session store cannot be reached it answers 503 and keeps the cookie. In both cases
// the caller must stop handling the request.
func (v *Verifier) Verify(w http.ResponseWriter, r *http.Request) (*domain.Session, bool) {
	s, err := v.Authenticate(r)
	if err == nil {
		return s, true
	}
	if !errors.Is(err, security.ErrInvalidToken) && !errors.Is(err, ErrSessionRevoked) {
		log.Printf("session: lookup failed: %v", err)
		writeUnavailable(w)
		return nil, false
	}
	// The route guard only decodes the token, so a cookie left in place would send the
	// sign-in page straight back to the dashboard.
	if _, present := v.cookies.GetSessionCookie(r); present {
		v.cookies.ClearSessionCookie(w)
	}
	http.Redirect(w, r, SignInPath, http.StatusSeeOther)
	return nil, false
}

func writeUnavailable(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Retry-After", "5")
	w.WriteHeader(http.StatusServiceUnavailable)
	_ = json.NewEncoder(w).Encode(map[string]any{"ok": false, "error": "session store unavailable"})
}

// Require wraps next so it only runs with a verified session in the request context.
func (v *Verifier) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, ok := v.Verify(w, r)
		if !ok {
			return
		}
		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), s)))
	})
}

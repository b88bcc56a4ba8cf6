package session

import (
	"net/http"
	"time"
)

// CookieName is the name of the session cookie.
const CookieName = "session"

// CookieStore reads and writes the session cookie.
type CookieStore struct {
	// Secure sets the Secure attribute; enabled in production.
	Secure bool
}

// NewCookieStore returns a CookieStore. secure should be true when serving over HTTPS.
func NewCookieStore(secure bool) *CookieStore {
	return &CookieStore{Secure: secure}
}

// SetSessionCookie writes token as an HttpOnly, SameSite=Lax cookie on path / that expires with the token.
func (c *CookieStore) SetSessionCookie(w http.ResponseWriter, token string, expiresAt time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt.UTC(),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// GetSessionCookie returns the session token and true when the request carries a non-empty session cookie.
func (c *CookieStore) GetSessionCookie(r *http.Request) (string, bool) {
	ck, err := r.Cookie(CookieName)
	if err != nil || ck.Value == "" {
		return "", false
	}
	return ck.Value, true
}

// ClearSessionCookie expires the session cookie in the browser.
func (c *CookieStore) ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

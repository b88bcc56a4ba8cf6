package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	identitydomain "smallbiz-erp/backend/internal/identity/domain"
	"smallbiz-erp/backend/internal/identity/service"
	orgdomain "smallbiz-erp/backend/internal/organization/domain"
	"smallbiz-erp/backend/internal/security"
	"smallbiz-erp/backend/internal/session"
	sessiondomain "smallbiz-erp/backend/internal/session/domain"
	userdomain "smallbiz-erp/backend/internal/user/domain"
)

type memStore struct {
	mu         sync.Mutex
	users      map[string]*userdomain.User
	identities []*identitydomain.Identity
	sessions   map[string]*sessiondomain.Session
}

func newMemStore() *memStore {
	return &memStore{users: map[string]*userdomain.User{}, sessions: map[string]*sessiondomain.Session{}}
}

func (m *memStore) GetByEmail(ctx context.Context, email string) (*userdomain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.users[email], nil
}

func (m *memStore) GetByUserAndProvider(ctx context.Context, userID string, p identitydomain.IdentityProvider) (*identitydomain.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, i := range m.identities {
		if i.UserID == userID && i.Provider == p {
			return i, nil
		}
	}
	return nil, nil
}

func (m *memStore) CreateAccount(ctx context.Context, org *orgdomain.Org, u *userdomain.User, i *identitydomain.Identity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.Email] = u
	m.identities = append(m.identities, i)
	return nil
}

// sessionStore adapts memStore to the session repository methods.
type sessionStore struct{ *memStore }

func (s sessionStore) GetByID(ctx context.Context, id string) (*sessiondomain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[id], nil
}

func (s sessionStore) Create(ctx context.Context, sess *sessiondomain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *sess
	s.sessions[sess.ID] = &cp
	return nil
}

func (s sessionStore) Revoke(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[id]; ok {
		now := time.Now()
		sess.RevokedAt = &now
	}
	return nil
}

type fakeAudit struct {
	mu      sync.Mutex
	actions []string
	orgs    []string
}

func (f *fakeAudit) LogEvent(ctx context.Context, orgID, userID, action, resource, metadata string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.actions = append(f.actions, action)
	f.orgs = append(f.orgs, orgID)
}

func newTestRouter(t *testing.T) (http.Handler, *memStore, *fakeAudit) {
	t.Helper()
	store := newMemStore()
	sessions := sessionStore{store}
	codec := security.NewTestSessionCodec()
	cookies := session.NewCookieStore(false)
	auth := service.NewAuthService(store, store, store, sessions, security.NewHasher(4), codec)
	au := &fakeAudit{}
	h := NewHandler(auth, cookies, session.NewVerifier(codec, cookies, sessions), au, nil)
	r := chi.NewRouter()
	h.Routes(r)
	return r, store, au
}

func postForm(h http.Handler, path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func sessionCookieFrom(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == session.CookieName && c.Value != "" {
			return c
		}
	}
	t.Fatal("no session cookie set")
	return nil
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		OK    bool   `json:"ok"`
		Error string `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return body.Error
}

func TestSignUp_SetsCookieAndRedirects(t *testing.T) {
	h, store, au := newTestRouter(t)
	rec := postForm(h, "/sign-up", url.Values{"name": {"Ada"}, "email": {"ada@example.com"}, "password": {"password123"}})
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/dashboard" {
		t.Fatalf("status %d location %q body %s", rec.Code, rec.Header().Get("Location"), rec.Body.String())
	}
	c := sessionCookieFrom(t, rec)
	if !c.HttpOnly || c.SameSite != http.SameSiteLaxMode || c.Path != "/" {
		t.Errorf("cookie attributes = %+v", c)
	}
	if len(store.sessions) != 1 {
		t.Errorf("sessions = %d, want 1", len(store.sessions))
	}
	if len(au.actions) != 1 || au.actions[0] != "sign_up" {
		t.Errorf("audit = %v", au.actions)
	}
}

func TestSignUp_Duplicate(t *testing.T) {
	h, store, _ := newTestRouter(t)
	form := url.Values{"name": {"Ada"}, "email": {"ada@example.com"}, "password": {"password123"}}
	postForm(h, "/sign-up", form)
	rec := postForm(h, "/sign-up", form)
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
	if msg := errorMessage(t, rec); msg != "User already exists with this email." {
		t.Errorf("error = %q", msg)
	}
	if len(store.users) != 1 {
		t.Errorf("users = %d, want 1", len(store.users))
	}
}

func TestSignUp_Validation(t *testing.T) {
	h, _, _ := newTestRouter(t)
	rec := postForm(h, "/sign-up", url.Values{"name": {"A"}, "email": {"x"}, "password": {"short"}})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	for _, field := range []string{"name", "email", "password"} {
		if !strings.Contains(rec.Body.String(), `"`+field+`"`) {
			t.Errorf("body %s missing field %s", rec.Body.String(), field)
		}
	}
}

func TestSignIn(t *testing.T) {
	h, _, au := newTestRouter(t)
	postForm(h, "/sign-up", url.Values{"name": {"Ada"}, "email": {"ada@example.com"}, "password": {"password123"}})

	rec := postForm(h, "/sign-in", url.Values{"email": {"ada@example.com"}, "password": {"wrong-pass"}})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password status = %d, want 401", rec.Code)
	}
	if msg := errorMessage(t, rec); msg != "Invalid email or password." {
		t.Errorf("error = %q", msg)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Error("failed sign-in must not set a cookie")
	}

	rec = postForm(h, "/sign-in", url.Values{"email": {"nobody@example.com"}, "password": {"password123"}})
	if rec.Code != http.StatusUnauthorized || errorMessage(t, rec) != "Invalid email or password." {
		t.Errorf("unknown email: %d %s", rec.Code, rec.Body.String())
	}

	rec = postForm(h, "/sign-in", url.Values{"email": {"bad"}, "password": {""}})
	if rec.Code != http.StatusUnprocessableEntity || errorMessage(t, rec) != "Invalid input" {
		t.Errorf("invalid input: %d %s", rec.Code, rec.Body.String())
	}

	rec = postForm(h, "/sign-in", url.Values{"email": {"ada@example.com"}, "password": {"password123"}})
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/dashboard" {
		t.Fatalf("sign-in status %d location %q", rec.Code, rec.Header().Get("Location"))
	}
	sessionCookieFrom(t, rec)

	want := []string{"sign_up", "sign_in_failure", "sign_in_failure", "sign_in"}
	if strings.Join(au.actions, ",") != strings.Join(want, ",") {
		t.Errorf("audit actions = %v, want %v", au.actions, want)
	}
	if au.orgs[1] != "" {
		t.Errorf("failed sign-in org = %q, want empty (sentinel applied by the logger)", au.orgs[1])
	}
}

func TestSignOut_RevokesAndClears(t *testing.T) {
	h, store, _ := newTestRouter(t)
	rec := postForm(h, "/sign-up", url.Values{"name": {"Ada"}, "email": {"ada@example.com"}, "password": {"password123"}})
	c := sessionCookieFrom(t, rec)

	home := func(cookie *http.Cookie) bool {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(cookie)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		var body map[string]bool
		_ = json.Unmarshal(rec.Body.Bytes(), &body)
		return body["authenticated"]
	}
	if !home(c) {
		t.Fatal("home should report authenticated before sign-out")
	}

	rec = postForm(h, "/sign-out", nil, c)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/sign-in" {
		t.Fatalf("sign-out status %d location %q", rec.Code, rec.Header().Get("Location"))
	}
	var cleared bool
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == session.CookieName && ck.Value == "" && ck.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("sign-out should clear the cookie")
	}
	for _, s := range store.sessions {
		if s.RevokedAt == nil {
			t.Error("session should be revoked")
		}
	}
	if home(c) {
		t.Error("a revoked token must not count as authenticated")
	}
}

func TestSignOut_WithoutSession(t *testing.T) {
	h, _, _ := newTestRouter(t)
	rec := postForm(h, "/sign-out", nil)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/sign-in" {
		t.Errorf("status %d location %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestForms(t *testing.T) {
	h, _, _ := newTestRouter(t)
	for _, path := range []string{"/sign-in", "/sign-up"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"form":"`+strings.TrimPrefix(path, "/")+`"`) {
			t.Errorf("%s: %d %s", path, rec.Code, rec.Body.String())
		}
	}
}

package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	identitydomain "smallbiz-erp/backend/internal/identity/domain"
	orgdomain "smallbiz-erp/backend/internal/organization/domain"
	"smallbiz-erp/backend/internal/platform/validation"
	"smallbiz-erp/backend/internal/security"
	sessiondomain "smallbiz-erp/backend/internal/session/domain"
	userdomain "smallbiz-erp/backend/internal/user/domain"
)

// memAccounts implements UserRepo, IdentityRepo and AccountStore in memory.
type memAccounts struct {
	mu         sync.Mutex
	orgs       map[string]*orgdomain.Org
	users      map[string]*userdomain.User // by email
	identities map[string]*identitydomain.Identity
	createErr  error
}

func newMemAccounts() *memAccounts {
	return &memAccounts{
		orgs:       map[string]*orgdomain.Org{},
		users:      map[string]*userdomain.User{},
		identities: map[string]*identitydomain.Identity{},
	}
}

func (m *memAccounts) GetByEmail(ctx context.Context, email string) (*userdomain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.users[email], nil
}

func (m *memAccounts) GetByUserAndProvider(ctx context.Context, userID string, provider identitydomain.IdentityProvider) (*identitydomain.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, i := range m.identities {
		if i.UserID == userID && i.Provider == provider {
			return i, nil
		}
	}
	return nil, nil
}

func (m *memAccounts) CreateAccount(ctx context.Context, org *orgdomain.Org, user *userdomain.User, ident *identitydomain.Identity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	if _, ok := m.users[user.Email]; ok {
		return &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}
	}
	m.orgs[org.ID] = org
	m.users[user.Email] = user
	m.identities[ident.ID] = ident
	return nil
}

type memSessionRepo struct {
	mu sync.Mutex
	m  map[string]*sessiondomain.Session
}

func (r *memSessionRepo) Create(ctx context.Context, s *sessiondomain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s2 := *s
	r.m[s.ID] = &s2
	return nil
}

func (r *memSessionRepo) Revoke(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.m[id]; ok {
		t := time.Now()
		s.RevokedAt = &t
	}
	return nil
}

func newTestAuthService() (*AuthService, *memAccounts, *memSessionRepo) {
	accounts := newMemAccounts()
	sessions := &memSessionRepo{m: map[string]*sessiondomain.Session{}}
	svc := NewAuthService(accounts, accounts, accounts, sessions, security.NewHasher(4), security.NewTestSessionCodec())
	return svc, accounts, sessions
}

func TestAuthService_SignUp(t *testing.T) {
	svc, accounts, sessions := newTestAuthService()
	ctx := context.Background()

	res, err := svc.SignUp(ctx, " Ada ", "Ada@Example.com", "password123", "10.0.0.1")
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	user := accounts.users["ada@example.com"]
	if user == nil {
		t.Fatal("user not stored under the normalized email")
	}
	if user.Name != "Ada" || res.UserID != user.ID || res.OrgID != user.OrgID {
		t.Errorf("user = %+v, result = %+v", user, res)
	}
	org := accounts.orgs[user.OrgID]
	if org == nil || org.Name != "Ada's Organization" {
		t.Errorf("org = %+v", org)
	}
	sess := sessions.m[res.SessionID]
	if sess == nil || sess.UserID != user.ID || sess.OrgID != org.ID || sess.IPAddress != "10.0.0.1" {
		t.Errorf("session = %+v", sess)
	}

	claims, err := security.NewTestSessionCodec().Decode(res.Token)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if claims.UserID() != user.ID || claims.OrgID != org.ID || claims.Email != "ada@example.com" || claims.ID != res.SessionID {
		t.Errorf("claims = %+v", claims)
	}
}

func TestAuthService_SignUpDuplicateCreatesNothing(t *testing.T) {
	svc, accounts, _ := newTestAuthService()
	ctx := context.Background()
	if _, err := svc.SignUp(ctx, "Ada", "ada@example.com", "password123", ""); err != nil {
		t.Fatalf("first SignUp: %v", err)
	}
	_, err := svc.SignUp(ctx, "Other", "ADA@example.com", "password456", "")
	if !errors.Is(err, ErrEmailAlreadyRegistered) {
		t.Fatalf("second SignUp err = %v, want ErrEmailAlreadyRegistered", err)
	}
	if len(accounts.users) != 1 || len(accounts.orgs) != 1 || len(accounts.identities) != 1 {
		t.Errorf("rows = %d users, %d orgs, %d identities; want 1 each", len(accounts.users), len(accounts.orgs), len(accounts.identities))
	}
}

func TestAuthService_SignUpRaceMapsUniqueViolation(t *testing.T) {
	svc, accounts, _ := newTestAuthService()
	accounts.createErr = &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}
	_, err := svc.SignUp(context.Background(), "Ada", "ada@example.com", "password123", "")
	if !errors.Is(err, ErrEmailAlreadyRegistered) {
		t.Fatalf("err = %v, want ErrEmailAlreadyRegistered", err)
	}
}

func TestAuthService_SignUpValidation(t *testing.T) {
	testCases := []struct {
		name, user, email, password string
		field                       string
	}{
		{"short name", "A", "a@b.co", "password123", "name"},
		{"bad email", "Ada", "not-an-email", "password123", "email"},
		{"short password", "Ada", "a@b.co", "1234567", "password"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			svc, accounts, _ := newTestAuthService()
			_, err := svc.SignUp(context.Background(), tc.user, tc.email, tc.password, "")
			var fe validation.FieldErrors
			if !errors.As(err, &fe) {
				t.Fatalf("err = %v, want FieldErrors", err)
			}
			if !fe.Has(tc.field) {
				t.Errorf("errors = %v, want field %s", fe, tc.field)
			}
			if len(accounts.users) != 0 {
				t.Error("invalid sign-up must not create a user")
			}
		})
	}
}

func TestAuthService_SignIn(t *testing.T) {
	svc, _, sessions := newTestAuthService()
	ctx := context.Background()
	up, err := svc.SignUp(ctx, "Ada", "ada@example.com", "password123", "")
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}

	testCases := []struct {
		name, email, password string
		wantErr               error
	}{
		{"ok", "ada@example.com", "password123", nil},
		{"case insensitive email", "ADA@example.com", "password123", nil},
		{"wrong password", "ada@example.com", "password124", ErrInvalidCredentials},
		{"unknown email", "bob@example.com", "password123", ErrInvalidCredentials},
		{"empty password", "ada@example.com", "", ErrInvalidInput},
		{"malformed email", "ada", "password123", ErrInvalidInput},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := svc.SignIn(ctx, tc.email, tc.password, "")
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("err = %v, want %v", err, tc.wantErr)
			}
			if tc.wantErr != nil {
				return
			}
			if res.UserID != up.UserID || res.OrgID != up.OrgID || res.SessionID == up.SessionID {
				t.Errorf("result = %+v", res)
			}
			if sessions.m[res.SessionID] == nil {
				t.Error("session row not created")
			}
		})
	}
}

func TestAuthService_SignOut(t *testing.T) {
	svc, _, sessions := newTestAuthService()
	ctx := context.Background()
	res, err := svc.SignUp(ctx, "Ada", "ada@example.com", "password123", "")
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if err := svc.SignOut(ctx, res.SessionID); err != nil {
		t.Fatalf("SignOut: %v", err)
	}
	if sessions.m[res.SessionID].RevokedAt == nil {
		t.Error("session should be revoked")
	}
	if err := svc.SignOut(ctx, ""); err != nil {
		t.Errorf("SignOut without session: %v", err)
	}
}

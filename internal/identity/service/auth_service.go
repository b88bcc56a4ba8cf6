package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"smallbiz-erp/backend/internal/db"
	identitydomain "smallbiz-erp/backend/internal/identity/domain"
	orgdomain "smallbiz-erp/backend/internal/organization/domain"
	"smallbiz-erp/backend/internal/platform/validation"
	"smallbiz-erp/backend/internal/security"
	sessiondomain "smallbiz-erp/backend/internal/session/domain"
	userdomain "smallbiz-erp/backend/internal/user/domain"
	userrepo "smallbiz-erp/backend/internal/user/repository"
)

// Sentinel errors for auth service; the handler maps them to responses.
var (
	ErrEmailAlreadyRegistered = errors.New("email already registered")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrInvalidInput           = errors.New("invalid input")
)

// MinPasswordLen is the shortest password accepted at sign-up.
const MinPasswordLen = 8

// AuthResult is the outcome of SignUp and SignIn: a signed session token for the cookie.
type AuthResult struct {
	Token     string
	SessionID string
	ExpiresAt time.Time
	UserID    string
	OrgID     string
}

// UserRepo is the minimal user repository needed by the auth service.
type UserRepo interface {
	GetByEmail(ctx context.Context, email string) (*userdomain.User, error)
}

// IdentityRepo is the minimal identity repository needed by the auth service.
type IdentityRepo interface {
	GetByUserAndProvider(ctx context.Context, userID string, provider identitydomain.IdentityProvider) (*identitydomain.Identity, error)
}

// AccountStore creates organization, user and identity atomically.
type AccountStore interface {
	CreateAccount(ctx context.Context, org *orgdomain.Org, user *userdomain.User, ident *identitydomain.Identity) error
}

// SessionRepo is the minimal session repository needed by the auth service.
type SessionRepo interface {
	Create(ctx context.Context, s *sessiondomain.Session) error
	Revoke(ctx context.Context, id string) error
}

// AuthService implements password sign-up, sign-in and sign-out.
type AuthService struct {
	userRepo     UserRepo
	identityRepo IdentityRepo
	accounts     AccountStore
	sessionRepo  SessionRepo
	hasher       *security.Hasher
	codec        *security.SessionCodec
	now          func() time.Time
}

// NewAuthService returns an AuthService with the given dependencies.
func NewAuthService(
	userRepo UserRepo,
	identityRepo IdentityRepo,
	accounts AccountStore,
	sessionRepo SessionRepo,
	hasher *security.Hasher,
	codec *security.SessionCodec,
) *AuthService {
	return &AuthService{
		userRepo:     userRepo,
		identityRepo: identityRepo,
		accounts:     accounts,
		sessionRepo:  sessionRepo,
		hasher:       hasher,
		codec:        codec,
		now:          time.Now,
	}
}

// SignUp creates an organization named after the user, the user, and a local identity,
// then opens a session. Invalid input returns validation.FieldErrors; a taken email returns
// ErrEmailAlreadyRegistered and creates nothing.
func (s *AuthService) SignUp(ctx context.Context, name, email, password, ip string) (*AuthResult, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	fe := validation.FieldErrors{}
	fe.MinLen("name", name, 2, "Name must be at least 2 characters")
	if !validation.IsEmail(email) {
		fe.Add("email", "Invalid email")
	}
	if len(password) < MinPasswordLen {
		fe.Add("password", "Password must be at least 8 characters")
	}
	if err := fe.Err(); err != nil {
		return nil, err
	}

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailAlreadyRegistered
	}
	hashed, err := s.hasher.Hash([]byte(password))
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	org := &orgdomain.Org{
		ID:        uuid.New().String(),
		Name:      orgdomain.DefaultName(name),
		Status:    orgdomain.OrgStatusActive,
		CreatedAt: now,
	}
	user := &userdomain.User{
		ID:        uuid.New().String(),
		OrgID:     org.ID,
		Email:     email,
		Name:      name,
		Status:    userdomain.UserStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	ident := &identitydomain.Identity{
		ID:           uuid.New().String(),
		UserID:       user.ID,
		Provider:     identitydomain.IdentityProviderLocal,
		ProviderID:   email,
		PasswordHash: hashed,
		CreatedAt:    now,
	}
	if err := s.accounts.CreateAccount(ctx, org, user, ident); err != nil {
		// Lost a race with a concurrent sign-up for the same email.
		if db.IsUniqueViolation(err, userrepo.EmailConstraint) {
			return nil, ErrEmailAlreadyRegistered
		}
		return nil, fmt.Errorf("create account: %w", err)
	}
	return s.openSession(ctx, user, ip)
}

// SignIn checks email and password and opens a session. Unknown email and wrong password
// both return ErrInvalidCredentials.
func (s *AuthService) SignIn(ctx context.Context, email, password, ip string) (*AuthResult, error) {
	email = normalizeEmail(email)
	if !validation.IsEmail(email) || password == "" {
		return nil, ErrInvalidInput
	}
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil || user.Status != userdomain.UserStatusActive {
		return nil, ErrInvalidCredentials
	}
	ident, err := s.identityRepo.GetByUserAndProvider(ctx, user.ID, identitydomain.IdentityProviderLocal)
	if err != nil {
		return nil, err
	}
	if ident == nil || ident.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if err := s.hasher.Compare(ident.PasswordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.openSession(ctx, user, ip)
}

// SignOut revokes the session. An empty id is a no-op.
func (s *AuthService) SignOut(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return s.sessionRepo.Revoke(ctx, sessionID)
}

func (s *AuthService) openSession(ctx context.Context, user *userdomain.User, ip string) (*AuthResult, error) {
	token, jti, expiresAt, err := s.codec.Encode(user.ID, user.OrgID, user.Email, user.Name)
	if err != nil {
		return nil, err
	}
	sess := &sessiondomain.Session{
		ID:        jti,
		UserID:    user.ID,
		OrgID:     user.OrgID,
		ExpiresAt: expiresAt,
		IPAddress: ip,
		CreatedAt: s.now().UTC(),
	}
	if err := s.sessionRepo.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return &AuthResult{
		Token:     token,
		SessionID: jti,
		ExpiresAt: expiresAt,
		UserID:    user.ID,
		OrgID:     user.OrgID,
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

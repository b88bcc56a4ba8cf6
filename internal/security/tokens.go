package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrInvalidToken is returned when a session token is empty, malformed, expired or not signed with our key.
	ErrInvalidToken = errors.New("invalid token")
	// ErrMissingSecret is returned by NewSessionCodec when no signing secret is configured.
	ErrMissingSecret = errors.New("session secret must be set")
)

// DefaultSessionTTL is the lifetime of a session token when none is configured.
const DefaultSessionTTL = 7 * 24 * time.Hour

// SessionClaims holds the JWT claims carried by the session cookie.
// Subject is the user id and ID (jti) is the server-side session id.
type SessionClaims struct {
	jwt.RegisteredClaims
	OrgID string `json:"org_id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// UserID returns the subject of the token.
func (c *SessionClaims) UserID() string {
	return c.Subject
}

// SessionCodec issues and validates HS256 session tokens with a shared secret.
type SessionCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSessionCodec returns a SessionCodec signing with secret. It never falls back to a default
// key: an empty secret returns ErrMissingSecret. A non-positive ttl uses DefaultSessionTTL.
func NewSessionCodec(secret []byte, ttl time.Duration) (*SessionCodec, error) {
	if len(secret) == 0 {
		return nil, ErrMissingSecret
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	key := make([]byte, len(secret))
	copy(key, secret)
	return &SessionCodec{secret: key, ttl: ttl, now: time.Now}, nil
}

// TTL returns the lifetime given to newly issued tokens.
func (c *SessionCodec) TTL() time.Duration {
	return c.ttl
}

// Encode issues a session token for the user. Returns the token string, its jti
// (stored as the session row id) and the expiration time, which is also used as the cookie expiry.
func (c *SessionCodec) Encode(userID, orgID, email, name string) (token, jti string, expiresAt time.Time, err error) {
	if userID == "" {
		return "", "", time.Time{}, ErrInvalidToken
	}
	jti = uuid.New().String()
	now := c.now().UTC()
	expiresAt = now.Add(c.ttl).Truncate(time.Second)
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		OrgID: orgID,
		Email: email,
		Name:  name,
	}
	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", "", time.Time{}, err
	}
	return token, jti, expiresAt, nil
}

// Decode parses and validates tokenString (HS256 signature, exp). Any failure, including
// an empty string, a different algorithm or an expired token, yields ErrInvalidToken.
func (c *SessionCodec) Decode(tokenString string) (*SessionClaims, error) {
	if tokenString == "" {
		return nil, ErrInvalidToken
	}
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

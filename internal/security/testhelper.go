package security

import "time"

// TestSessionSecret is the HS256 key used by NewTestSessionCodec. For unit tests only.
const TestSessionSecret = "test-session-secret-0123456789abcdef"

// NewTestSessionCodec returns a SessionCodec with a fixed secret and the default TTL.
// For unit tests only. Callers must not use in production.
func NewTestSessionCodec() *SessionCodec {
	c, err := NewSessionCodec([]byte(TestSessionSecret), DefaultSessionTTL)
	if err != nil {
		panic(err)
	}
	return c
}

// WithClock returns a copy of c that reads the current time from now.
// Tests use it to issue or check tokens at a fixed instant.
func (c *SessionCodec) WithClock(now func() time.Time) *SessionCodec {
	cp := *c
	cp.now = now
	return &cp
}

package domain

import (
	"encoding/json"
	"time"
)

// Event is a telemetry event emitted by the HTTP server. It is serialized as JSON onto the
// Kafka topic and shipped to Loki by the worker. OrgID is the tenant key; the other ids are optional.
type Event struct {
	OrgID     string          `json:"orgId,omitempty"`
	UserID    string          `json:"userId,omitempty"`
	SessionID string          `json:"sessionId,omitempty"`
	EventType string          `json:"eventType"`
	Source    string          `json:"source"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

// Event types.
const (
	EventTypeHTTPRequest = "http_request"
	EventTypeSignIn      = "sign_in"
	EventTypeSignUp      = "sign_up"
	EventTypeSignOut     = "sign_out"
	EventTypeSignInFail  = "sign_in_failed"
)

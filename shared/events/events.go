// Package events defines the activity messages the relay emits after each
// request. The same envelope goes to WebSocket clients and to RabbitMQ.
// Payloads never carry prompts, submitted code or generated text.
package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ── Routing keys (RabbitMQ topic exchange: codegenius.events) ────────────────
const (
	RelayGenerated = "relay.generated"
	RelayReviewed  = "relay.reviewed"
	RelayFailed    = "relay.failed"
	RelayRejected  = "relay.rejected"
)

// ── Envelope wraps every message ─────────────────────────────────────────────

type Envelope struct {
	ID         string          `json:"id"`
	RoutingKey string          `json:"routing_key"`
	Timestamp  time.Time       `json:"ts"`
	Payload    json.RawMessage `json:"payload"`
}

func Wrap(routingKey string, payload any) ([]byte, error) {
	p, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{
		ID:         uuid.New().String(),
		RoutingKey: routingKey,
		Timestamp:  time.Now().UTC(),
		Payload:    p,
	})
}

func Unwrap[T any](raw []byte) (*Envelope, *T, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, nil, err
	}
	var t T
	if err := json.Unmarshal(env.Payload, &t); err != nil {
		return &env, nil, err
	}
	return &env, &t, nil
}

// ── Payload types ─────────────────────────────────────────────────────────────

// ActivityPayload summarises one finished API request.
type ActivityPayload struct {
	RequestID  string `json:"request_id"`
	Endpoint   string `json:"endpoint"`
	Language   string `json:"language,omitempty"`
	Provider   string `json:"provider"`
	Model      string `json:"model"`
	Status     int    `json:"status"`
	DurationMS int64  `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
	ErrorKind  string `json:"error_kind,omitempty"`
}

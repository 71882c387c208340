// Package messaging implements the event propagation layer between chatmesh
// services on top of RabbitMQ.
//
// Delivery semantics are at-least-once: a message that is never acked
// (process crash, dropped connection) is returned to the queue by the broker
// and redelivered, so every handler must be idempotent. A message the
// consumer cannot decode or process is nacked without requeue and is either
// dead-lettered or dropped by the broker — it is never retried in a loop.
//
// Publishing is best-effort: Publish reports success as a boolean and the
// calling business operation must never fail because the broker is down.
// There is no local outbox; events attempted during a broker outage are lost.
package messaging

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SchemaVersion is the current envelope payload schema version. Consumers
// tolerate unknown extra fields and missing optional fields within the same
// major version.
const SchemaVersion = 1

const contentTypeJSON = "application/json"

// ErrMalformedEnvelope indicates a message body that cannot be decoded into
// an Envelope. Consumers nack such messages without requeue.
var ErrMalformedEnvelope = errors.New("malformed event envelope")

// Metadata carries envelope metadata alongside the payload.
type Metadata struct {
	Version       int    `json:"version"`
	CorrelationID string `json:"correlationId,omitempty"`
	CausationID   string `json:"causationId,omitempty"`
}

// Envelope is the unit of transmission on the broker: the event type doubles
// as the routing key, the payload shape is type-specific, and occurredAt is
// set by the producer at publish time. An Envelope is immutable once
// constructed.
type Envelope struct {
	Type       string          `json:"type"`
	Payload    json.RawMessage `json:"payload"`
	OccurredAt time.Time       `json:"occurredAt"`
	Metadata   Metadata        `json:"metadata"`
}

// NewEnvelope builds an Envelope for the given event type, marshalling the
// payload and stamping the current UTC time.
func NewEnvelope(eventType string, payload any) (*Envelope, error) {
	if eventType == "" {
		return nil, errors.New("event type is required")
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	return &Envelope{
		Type:       eventType,
		Payload:    raw,
		OccurredAt: time.Now().UTC(),
		Metadata: Metadata{
			Version:       SchemaVersion,
			CorrelationID: uuid.NewString(),
		},
	}, nil
}

// Encode serializes the envelope to its UTF-8 JSON wire form.
func (e *Envelope) Encode() ([]byte, error) {
	body, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("encode envelope: %w", err)
	}
	return body, nil
}

// DecodeEnvelope parses a message body into an Envelope. A body that is not
// valid JSON, or that lacks a type or payload, yields ErrMalformedEnvelope.
func DecodeEnvelope(body []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedEnvelope, err)
	}
	if env.Type == "" {
		return nil, fmt.Errorf("%w: missing type", ErrMalformedEnvelope)
	}
	if len(env.Payload) == 0 {
		return nil, fmt.Errorf("%w: missing payload", ErrMalformedEnvelope)
	}
	return &env, nil
}

// DecodePayload unmarshals the envelope payload into v. Unknown fields in
// the payload are ignored for forward compatibility.
func (e *Envelope) DecodePayload(v any) error {
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return fmt.Errorf("decode %s payload: %w", e.Type, err)
	}
	return nil
}

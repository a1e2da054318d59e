package domain

import (
	"encoding/json"
	"errors"
)

// EventKind is the lifecycle event type pushed by the identity provider.
type EventKind string

const (
	EventUserCreated    EventKind = "user.created"
	EventUserUpdated    EventKind = "user.updated"
	EventUserDeleted    EventKind = "user.deleted"
	EventSessionCreated EventKind = "session.created"
	EventSessionEnded   EventKind = "session.ended"
	// EventUnknown covers kinds the provider may introduce later. They are
	// acknowledged without mutation, never rejected.
	EventUnknown EventKind = ""
)

// ParseEventKind maps the wire value to the enum, EventUnknown for anything
// outside the recognised set.
func ParseEventKind(s string) EventKind {
	switch EventKind(s) {
	case EventUserCreated, EventUserUpdated, EventUserDeleted,
		EventSessionCreated, EventSessionEnded:
		return EventKind(s)
	}
	return EventUnknown
}

var ErrInvalidSignature = errors.New("invalid webhook signature")
var ErrMalformedPayload = errors.New("malformed webhook payload")

// ProviderEvent is a decoded webhook delivery: the event kind plus the
// kind-specific data object, left opaque until the reconciler interprets it.
type ProviderEvent struct {
	MessageID string
	Kind      EventKind
	// RawKind preserves the wire value for logging unrecognised kinds.
	RawKind string
	Data    json.RawMessage
}

// DecodeEvent parses a verified webhook body into a ProviderEvent.
// Structural failures (not JSON, no type field) return ErrMalformedPayload;
// an unrecognised kind is not an error.
func DecodeEvent(body []byte) (ProviderEvent, error) {
	var envelope struct {
		Type string          `json:"type"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return ProviderEvent{}, ErrMalformedPayload
	}
	if envelope.Type == "" {
		return ProviderEvent{}, ErrMalformedPayload
	}
	return ProviderEvent{
		Kind:    ParseEventKind(envelope.Type),
		RawKind: envelope.Type,
		Data:    envelope.Data,
	}, nil
}

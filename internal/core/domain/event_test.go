package domain

import (
	"errors"
	"testing"
)

func TestDecodeEvent_KnownKind(t *testing.T) {
	ev, err := DecodeEvent([]byte(`{"type":"user.created","data":{"id":"ext_1"}}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ev.Kind != EventUserCreated {
		t.Errorf("expected user.created, got %q", ev.Kind)
	}
	if string(ev.Data) != `{"id":"ext_1"}` {
		t.Errorf("data object must pass through untouched, got %s", ev.Data)
	}
}

func TestDecodeEvent_UnknownKindIsNotAnError(t *testing.T) {
	ev, err := DecodeEvent([]byte(`{"type":"organization.created","data":{}}`))
	if err != nil {
		t.Fatalf("unrecognised kinds must decode, got: %v", err)
	}
	if ev.Kind != EventUnknown {
		t.Errorf("expected EventUnknown, got %q", ev.Kind)
	}
	if ev.RawKind != "organization.created" {
		t.Errorf("wire value must be preserved for logging, got %q", ev.RawKind)
	}
}

func TestDecodeEvent_NotJSON(t *testing.T) {
	if _, err := DecodeEvent([]byte(`not json at all`)); !errors.Is(err, ErrMalformedPayload) {
		t.Errorf("expected ErrMalformedPayload, got: %v", err)
	}
}

func TestDecodeEvent_MissingType(t *testing.T) {
	if _, err := DecodeEvent([]byte(`{"data":{"id":"ext_1"}}`)); !errors.Is(err, ErrMalformedPayload) {
		t.Errorf("expected ErrMalformedPayload, got: %v", err)
	}
}

func TestParseEventKind(t *testing.T) {
	if k := ParseEventKind("session.ended"); k != EventSessionEnded {
		t.Errorf("expected session.ended, got %q", k)
	}
	if k := ParseEventKind("email.created"); k != EventUnknown {
		t.Errorf("expected EventUnknown, got %q", k)
	}
}

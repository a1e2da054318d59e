package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
)

func TestClient_FindUserByEmail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("email_address"); got != "ada@example.com" {
			t.Fatalf("unexpected query: %q", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk_test" {
			t.Fatalf("unexpected auth header: %q", got)
		}
		_ = json.NewEncoder(w).Encode([]map[string]string{{"id": "ext_1"}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "sk_test", zerolog.Nop())
	id, err := c.FindUserByEmail(context.Background(), "ada@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "ext_1" {
		t.Errorf("unexpected id: %q", id)
	}
}

func TestClient_FindUserByEmail_Absent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "sk_test", zerolog.Nop())
	id, err := c.FindUserByEmail(context.Background(), "ghost@example.com")
	if err != nil {
		t.Fatalf("absence is not an error, got: %v", err)
	}
	if id != "" {
		t.Errorf("expected empty id, got: %q", id)
	}
}

func TestClient_CreateUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/users" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		if payload["first_name"] != "Ada" || payload["password_enabled"] != true {
			t.Fatalf("unexpected payload: %v", payload)
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "ext_new"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "sk_test", zerolog.Nop())
	id, err := c.CreateUser(context.Background(), "ada@example.com", "Ada", "Lovelace")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "ext_new" {
		t.Errorf("unexpected id: %q", id)
	}
}

func TestClient_ErrorStatusSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "bad_key", zerolog.Nop())
	if _, err := c.FindUserByEmail(context.Background(), "ada@example.com"); err == nil {
		t.Fatal("expected error for non-2xx status")
	}
}

func TestClient_SendPasswordReset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/ext_1/password_reset" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "sk_test", zerolog.Nop())
	if err := c.SendPasswordReset(context.Background(), "ext_1", "ada@example.com"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

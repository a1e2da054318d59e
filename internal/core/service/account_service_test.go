package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/stockdeck/marketplace-system/internal/core/domain"
)

type stubProvider struct {
	byEmail      map[string]string // email -> provider user id
	findErr      error
	createErr    error
	created      []string // emails
	resetsSent   []string // user ids
	magicLinks   []string // emails
	magicLinkErr error
}

func newStubProvider() *stubProvider {
	return &stubProvider{byEmail: make(map[string]string)}
}

func (p *stubProvider) FindUserByEmail(_ context.Context, email string) (string, error) {
	if p.findErr != nil {
		return "", p.findErr
	}
	return p.byEmail[email], nil
}

func (p *stubProvider) CreateUser(_ context.Context, email, _, _ string) (string, error) {
	if p.createErr != nil {
		return "", p.createErr
	}
	id := "ext_new_" + email
	p.byEmail[email] = id
	p.created = append(p.created, email)
	return id, nil
}

func (p *stubProvider) SendPasswordReset(_ context.Context, userID, _ string) error {
	p.resetsSent = append(p.resetsSent, userID)
	return nil
}

func (p *stubProvider) CreateMagicLink(_ context.Context, email, _ string) (string, error) {
	if p.magicLinkErr != nil {
		return "", p.magicLinkErr
	}
	p.magicLinks = append(p.magicLinks, email)
	return "https://provider.example.com/magic", nil
}

func TestAccountService_UserStatus_BothSides(t *testing.T) {
	users := newStubUserRepo()
	users.add(&domain.User{ID: "u1", ExternalID: "ext_1", Email: "ada@example.com", DisplayName: "Ada"})
	provider := newStubProvider()
	provider.byEmail["ada@example.com"] = "ext_1"

	svc := NewAccountService(users, provider, zerolog.Nop())
	result, err := svc.UserStatus(context.Background(), "ada@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.ExistsInStore || !result.ExistsInProvider {
		t.Errorf("expected account on both sides, got: %+v", result)
	}
	if result.NewlyCreated || result.ExternalIDFixed {
		t.Errorf("no reconciliation expected, got: %+v", result)
	}
}

func TestAccountService_UserStatus_UnknownEverywhere(t *testing.T) {
	svc := NewAccountService(newStubUserRepo(), newStubProvider(), zerolog.Nop())

	result, err := svc.UserStatus(context.Background(), "ghost@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ExistsInStore || result.ExistsInProvider {
		t.Errorf("expected absent on both sides, got: %+v", result)
	}
}

func TestAccountService_UserStatus_BackfillsProviderAccount(t *testing.T) {
	users := newStubUserRepo()
	users.add(&domain.User{ID: "u1", Email: "ada@example.com", DisplayName: "Ada Lovelace"})
	provider := newStubProvider()

	svc := NewAccountService(users, provider, zerolog.Nop())
	result, err := svc.UserStatus(context.Background(), "ada@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.NewlyCreated {
		t.Fatal("expected provider account backfilled")
	}
	if len(provider.created) != 1 {
		t.Errorf("expected one provider account created, got: %v", provider.created)
	}
	if users.byID["u1"].ExternalID == "" {
		t.Error("expected external id stored after backfill")
	}
	if len(provider.resetsSent) != 1 {
		t.Error("expected password reset sent so the user can claim the account")
	}
}

func TestAccountService_UserStatus_NoBackfillWhenProviderLookupFails(t *testing.T) {
	users := newStubUserRepo()
	users.add(&domain.User{ID: "u1", Email: "ada@example.com"})
	provider := newStubProvider()
	provider.findErr = errors.New("provider unavailable")

	svc := NewAccountService(users, provider, zerolog.Nop())
	result, err := svc.UserStatus(context.Background(), "ada@example.com")
	if err != nil {
		t.Fatalf("provider failure must not fail the status check, got: %v", err)
	}
	if !result.ExistsInStore {
		t.Error("local answer must still be reported")
	}
	// An inconclusive lookup must not trigger account creation.
	if len(provider.created) != 0 {
		t.Error("backfill must be skipped when the provider answer is unknown")
	}
}

func TestAccountService_UserStatus_RepairsStaleExternalID(t *testing.T) {
	users := newStubUserRepo()
	users.add(&domain.User{ID: "u1", ExternalID: "ext_stale", Email: "ada@example.com"})
	provider := newStubProvider()
	provider.byEmail["ada@example.com"] = "ext_current"

	svc := NewAccountService(users, provider, zerolog.Nop())
	result, err := svc.UserStatus(context.Background(), "ada@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.ExternalIDFixed {
		t.Fatal("expected stale external id repaired")
	}
	if users.byID["u1"].ExternalID != "ext_current" {
		t.Errorf("provider answer must win, got: %q", users.byID["u1"].ExternalID)
	}
}

func TestAccountService_SendMagicLink(t *testing.T) {
	provider := newStubProvider()
	svc := NewAccountService(newStubUserRepo(), provider, zerolog.Nop())

	if err := svc.SendMagicLink(context.Background(), "ada@example.com", "https://app.example.com/home"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(provider.magicLinks) != 1 {
		t.Error("expected magic link created at the provider")
	}

	provider.magicLinkErr = errors.New("provider unavailable")
	if err := svc.SendMagicLink(context.Background(), "ada@example.com", ""); err == nil {
		t.Error("provider failure must surface to the caller")
	}
}

package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/stockdeck/marketplace-system/internal/core/domain"
	"github.com/stockdeck/marketplace-system/internal/core/ports"
)

// AccountService reconciles individual accounts against the identity
// provider on demand (the pull path). Provider failures are warnings: the
// status check still answers from the local store.
type AccountService struct {
	users    ports.UserRepository
	provider ports.IdentityProvider
	log      zerolog.Logger
}

func NewAccountService(users ports.UserRepository, provider ports.IdentityProvider, log zerolog.Logger) *AccountService {
	return &AccountService{users: users, provider: provider, log: log}
}

// UserStatus reports where an account exists, backfills a provider account
// for local-only users, and repairs a stale external id.
func (s *AccountService) UserStatus(ctx context.Context, email string) (*ports.UserStatusResult, error) {
	result := &ports.UserStatusResult{Email: email}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	providerID, provErr := s.provider.FindUserByEmail(ctx, email)
	if provErr != nil {
		s.log.Warn().Err(provErr).Str("email", email).Msg("provider lookup failed")
	}
	result.ExistsInProvider = providerID != ""
	result.ExternalID = providerID

	if user == nil {
		return result, nil
	}
	result.ExistsInStore = true
	result.UserID = user.ID
	result.DisplayName = user.DisplayName

	// Local-only account: backfill a provider identity so the user can use
	// the provider login flow. Failure is non-fatal.
	if providerID == "" && provErr == nil && strings.TrimSpace(user.ExternalID) == "" {
		first, last := splitName(user.DisplayName)
		newID, err := s.provider.CreateUser(ctx, email, first, last)
		if err != nil {
			s.log.Warn().Err(err).Str("email", email).Msg("provider account backfill failed")
			return result, nil
		}
		user.ExternalID = newID
		user.UpdatedAt = time.Now().UTC()
		if err := s.users.Update(ctx, user); err != nil {
			return nil, err
		}
		result.ExternalID = newID
		result.ExistsInProvider = true
		result.NewlyCreated = true

		if err := s.provider.SendPasswordReset(ctx, newID, email); err != nil {
			s.log.Warn().Err(err).Str("email", email).Msg("provider password reset failed")
		}
		return result, nil
	}

	// Stale external id: the provider's answer wins.
	if providerID != "" && user.ExternalID != "" && user.ExternalID != providerID {
		s.log.Warn().
			Str("user_id", user.ID).
			Str("stored", user.ExternalID).
			Str("provider", providerID).
			Msg("external id mismatch, repairing")
		user.ExternalID = providerID
		user.UpdatedAt = time.Now().UTC()
		if err := s.users.Update(ctx, user); err != nil {
			return nil, err
		}
		result.ExternalIDFixed = true
	}

	return result, nil
}

func (s *AccountService) SendMagicLink(ctx context.Context, email, redirectURL string) error {
	if _, err := s.provider.CreateMagicLink(ctx, email, redirectURL); err != nil {
		return err
	}
	s.log.Info().Str("email", email).Msg("magic link sent")
	return nil
}

// splitName separates a display name into first/last on the first space.
func splitName(name string) (string, string) {
	name = strings.TrimSpace(name)
	if i := strings.Index(name, " "); i >= 0 {
		return name[:i], name[i+1:]
	}
	return name, ""
}

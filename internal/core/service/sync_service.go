package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/stockdeck/marketplace-system/internal/core/domain"
	"github.com/stockdeck/marketplace-system/internal/core/ports"
)

// syncService applies identity-provider lifecycle events to the local user
// store. Every handler is idempotent, so at-least-once delivery from the
// provider is safe to replay.
type syncService struct {
	users ports.UserRepository
	roles ports.RoleRepository
	tx    ports.TxManager
	cache ports.UserCache
	dedup ports.MessageDedup
	log   zerolog.Logger
}

// NewSyncService returns a SyncService implementation.
func NewSyncService(
	users ports.UserRepository,
	roles ports.RoleRepository,
	tx ports.TxManager,
	cache ports.UserCache,
	dedup ports.MessageDedup,
	log zerolog.Logger,
) ports.SyncService {
	return &syncService{
		users: users,
		roles: roles,
		tx:    tx,
		cache: cache,
		dedup: dedup,
		log:   log,
	}
}

// userPayload is the provider's user object, of which only a few fields are
// interpreted. Name fields are pointers so an absent field can be told apart
// from an empty one.
type userPayload struct {
	ID             string `json:"id"`
	EmailAddresses []struct {
		EmailAddress string `json:"email_address"`
	} `json:"email_addresses"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	PaidUser  bool    `json:"paid_user"`
}

func (p userPayload) primaryEmail() string {
	if len(p.EmailAddresses) == 0 {
		return ""
	}
	return p.EmailAddresses[0].EmailAddress
}

func (p userPayload) displayName() string {
	var first, last string
	if p.FirstName != nil {
		first = *p.FirstName
	}
	if p.LastName != nil {
		last = *p.LastName
	}
	return strings.TrimSpace(first + " " + last)
}

// hasName reports whether the payload carries any name information at all;
// absent fields must not null out the stored name.
func (p userPayload) hasName() bool {
	return p.FirstName != nil || p.LastName != nil
}

type sessionPayload struct {
	UserID string `json:"user_id"`
}

// Process routes a decoded event to its handler.
func (s *syncService) Process(ctx context.Context, event domain.ProviderEvent) error {
	if event.Kind == domain.EventUnknown {
		s.log.Info().Str("type", event.RawKind).Msg("unhandled event kind, acknowledged")
		return nil
	}

	// 1. Redelivery check — best effort, process anyway on error.
	if event.MessageID != "" {
		seen, err := s.dedup.Seen(ctx, event.MessageID)
		if err != nil {
			s.log.Warn().Err(err).Str("message_id", event.MessageID).Msg("dedup check failed, processing anyway")
		} else if seen {
			s.log.Debug().Str("message_id", event.MessageID).Msg("duplicate delivery skipped")
			return nil
		}
	}

	var err error
	switch event.Kind {
	case domain.EventUserCreated:
		err = s.handleUserCreated(ctx, event.Data)
	case domain.EventUserUpdated:
		err = s.handleUserUpdated(ctx, event.Data)
	case domain.EventUserDeleted:
		err = s.handleUserDeleted(ctx, event.Data)
	case domain.EventSessionCreated:
		err = s.handleSessionCreated(ctx, event.Data)
	case domain.EventSessionEnded:
		// No session bookkeeping yet; acknowledged without mutation.
		s.log.Debug().Msg("session ended, no mutation")
	}
	if err != nil {
		return err
	}

	// 2. Mark only after the mutation committed, so a failed event stays
	// retryable.
	if event.MessageID != "" {
		if markErr := s.dedup.Mark(ctx, event.MessageID); markErr != nil {
			s.log.Warn().Err(markErr).Str("message_id", event.MessageID).Msg("failed to set dedup key")
		}
	}
	return nil
}

// handleUserCreated materialises a provider user locally. Creation is
// idempotent: an existing record with the same external id is left as is.
func (s *syncService) handleUserCreated(ctx context.Context, data json.RawMessage) error {
	p, err := decodeUserPayload(data)
	if err != nil {
		return err
	}

	var user *domain.User
	created := false
	err = s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		existing, err := s.users.FindByExternalID(txCtx, p.ID)
		if err == nil {
			user = existing
			return nil
		}
		if !errors.Is(err, domain.ErrUserNotFound) {
			return fmt.Errorf("user created: %w", err)
		}

		now := time.Now().UTC()
		user = &domain.User{
			ID:            uuid.NewString(),
			ExternalID:    p.ID,
			Email:         p.primaryEmail(),
			DisplayName:   p.displayName(),
			IsActive:      true,
			EmailVerified: true,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := s.users.Create(txCtx, user); err != nil {
			return fmt.Errorf("user created: %w", err)
		}
		if err := s.roles.Grant(txCtx, user.ID, domain.RoleFree); err != nil {
			return fmt.Errorf("user created: grant role: %w", err)
		}
		created = true
		return nil
	})
	if err != nil {
		return err
	}

	if !created {
		s.log.Info().Str("external_id", p.ID).Msg("user already exists, creation skipped")
		return nil
	}

	s.mirror(ctx, user, []domain.Role{domain.RoleFree})
	s.log.Info().Str("external_id", p.ID).Str("user_id", user.ID).Msg("user created from provider event")
	return nil
}

// handleUserUpdated applies present fields only and runs the role policy
// when the event signals a paid upgrade. An unknown external id is a logged
// no-op: the provider may send updates for users never materialised here.
func (s *syncService) handleUserUpdated(ctx context.Context, data json.RawMessage) error {
	p, err := decodeUserPayload(data)
	if err != nil {
		return err
	}

	var user *domain.User
	var roles []domain.Role
	err = s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		u, err := s.users.FindByExternalID(txCtx, p.ID)
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("user updated: %w", err)
		}

		if email := p.primaryEmail(); email != "" {
			u.Email = email
		}
		if p.hasName() {
			u.DisplayName = p.displayName()
		}
		u.UpdatedAt = time.Now().UTC()
		if err := s.users.Update(txCtx, u); err != nil {
			return fmt.Errorf("user updated: %w", err)
		}

		current, err := s.roles.ListByUser(txCtx, u.ID)
		if err != nil {
			return fmt.Errorf("user updated: list roles: %w", err)
		}
		if p.PaidUser {
			changes := domain.UpgradeToPaid(current)
			for _, r := range changes.Revoke {
				if err := s.roles.Revoke(txCtx, u.ID, r); err != nil {
					return fmt.Errorf("user updated: revoke %s: %w", r, err)
				}
			}
			for _, r := range changes.Grant {
				if err := s.roles.Grant(txCtx, u.ID, r); err != nil {
					return fmt.Errorf("user updated: grant %s: %w", r, err)
				}
			}
			if !changes.Empty() {
				current, err = s.roles.ListByUser(txCtx, u.ID)
				if err != nil {
					return fmt.Errorf("user updated: list roles: %w", err)
				}
			}
		}
		user, roles = u, current
		return nil
	})
	if err != nil {
		return err
	}

	if user == nil {
		s.log.Warn().Str("external_id", p.ID).Msg("update for unknown user, skipped")
		return nil
	}

	s.mirror(ctx, user, roles)
	s.log.Info().Str("external_id", p.ID).Str("user_id", user.ID).Msg("user updated from provider event")
	return nil
}

// handleUserDeleted removes role assignments, the user record, and the
// cache entry. An unknown external id counts as already satisfied.
func (s *syncService) handleUserDeleted(ctx context.Context, data json.RawMessage) error {
	p, err := decodeUserPayload(data)
	if err != nil {
		return err
	}

	deleted := false
	err = s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		u, err := s.users.FindByExternalID(txCtx, p.ID)
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("user deleted: %w", err)
		}

		// Roles first, then the user: referential order under cascading
		// constraints. Conceptually atomic inside the transaction.
		if err := s.roles.RevokeAll(txCtx, u.ID); err != nil {
			return fmt.Errorf("user deleted: revoke roles: %w", err)
		}
		if err := s.users.Delete(txCtx, u.ID); err != nil {
			return fmt.Errorf("user deleted: %w", err)
		}
		deleted = true
		return nil
	})
	if err != nil {
		return err
	}

	if !deleted {
		s.log.Info().Str("external_id", p.ID).Msg("delete for unknown user, already satisfied")
		return nil
	}

	if err := s.cache.Invalidate(ctx, p.ID); err != nil {
		s.log.Warn().Err(err).Str("external_id", p.ID).Msg("cache invalidate failed")
	}
	s.log.Info().Str("external_id", p.ID).Msg("user deleted from provider event")
	return nil
}

// handleSessionCreated refreshes the cache projection for the session's
// user. Absent user: logged no-op.
func (s *syncService) handleSessionCreated(ctx context.Context, data json.RawMessage) error {
	var p sessionPayload
	if err := json.Unmarshal(data, &p); err != nil || p.UserID == "" {
		return domain.ErrMalformedPayload
	}

	user, err := s.users.FindByExternalID(ctx, p.UserID)
	if errors.Is(err, domain.ErrUserNotFound) {
		s.log.Warn().Str("external_id", p.UserID).Msg("session for unknown user, skipped")
		return nil
	}
	if err != nil {
		return fmt.Errorf("session created: %w", err)
	}

	roles, err := s.roles.ListByUser(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("session created: list roles: %w", err)
	}
	s.mirror(ctx, user, roles)
	s.log.Debug().Str("external_id", p.UserID).Msg("cache refreshed on session start")
	return nil
}

// mirror writes the user projection through to the cache. Cache failures
// are logged and swallowed: the record store stays authoritative and a miss
// simply falls back to it.
func (s *syncService) mirror(ctx context.Context, u *domain.User, roles []domain.Role) {
	names := make([]string, 0, len(roles))
	for _, r := range roles {
		names = append(names, string(r))
	}
	p := ports.UserProjection{
		ID:          u.ID,
		ExternalID:  u.ExternalID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Roles:       names,
	}
	if err := s.cache.Write(ctx, u.ExternalID, p); err != nil {
		s.log.Warn().Err(err).Str("external_id", u.ExternalID).Msg("cache write failed")
	}
}

func decodeUserPayload(data json.RawMessage) (userPayload, error) {
	var p userPayload
	if err := json.Unmarshal(data, &p); err != nil || p.ID == "" {
		return userPayload{}, domain.ErrMalformedPayload
	}
	return p, nil
}

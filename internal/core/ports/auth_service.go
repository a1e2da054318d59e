package ports

import (
	"context"

	"github.com/stockdeck/marketplace-system/internal/core/domain"
)

// UserProfile is the authenticated-user view returned to clients.
type UserProfile struct {
	ID          string   `json:"id"`
	ExternalID  string   `json:"external_id,omitempty"`
	Email       string   `json:"email"`
	DisplayName string   `json:"display_name,omitempty"`
	Roles       []string `json:"roles"`
}

// AuthService implements the self-hosted password/JWT subsystem.
type AuthService interface {
	Register(ctx context.Context, email, password, displayName string) (*domain.User, error)
	// Login returns a signed access token and the user on success.
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
	Profile(ctx context.Context, userID string) (*UserProfile, error)
	// RequestPasswordReset never reveals whether the email is registered.
	RequestPasswordReset(ctx context.Context, email, resetBaseURL string) error
	UpdatePassword(ctx context.Context, resetToken, newPassword string) error
}

package ports

import "context"

// IdentityProvider is the remote lookup API of the identity provider.
// Network and HTTP failures are an expected failure mode; callers surface
// them as warnings, never as fatal errors for their own request.
type IdentityProvider interface {
	// FindUserByEmail returns the provider's user id, or "" when absent.
	FindUserByEmail(ctx context.Context, email string) (string, error)
	CreateUser(ctx context.Context, email, firstName, lastName string) (string, error)
	SendPasswordReset(ctx context.Context, userID, email string) error
	CreateMagicLink(ctx context.Context, email, redirectURL string) (string, error)
}

// UserStatusResult reports where an account exists and what reconciliation
// the status check performed.
type UserStatusResult struct {
	Email            string `json:"email"`
	ExistsInStore    bool   `json:"exists_in_database"`
	ExistsInProvider bool   `json:"exists_in_provider"`
	UserID           string `json:"user_id,omitempty"`
	DisplayName      string `json:"display_name,omitempty"`
	ExternalID       string `json:"external_id,omitempty"`
	NewlyCreated     bool   `json:"newly_created,omitempty"`
	ExternalIDFixed  bool   `json:"external_id_updated,omitempty"`
}

// AccountService is the pull-based reconciliation path (as opposed to the
// push-based webhook path handled by SyncService).
type AccountService interface {
	UserStatus(ctx context.Context, email string) (*UserStatusResult, error)
	SendMagicLink(ctx context.Context, email, redirectURL string) error
}

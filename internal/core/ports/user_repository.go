package ports

import (
	"context"

	"github.com/stockdeck/marketplace-system/internal/core/domain"
)

// UserRepository defines persistence operations for user records.
// Lookups used by the webhook path are by external id, never by local
// primary key — the provider only knows its own identifier space.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByExternalID(ctx context.Context, externalID string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// Create inserts a new record. Returns domain.ErrUserExists when a
	// unique constraint (external_id, email) is violated.
	Create(ctx context.Context, u *domain.User) error
	// Update replaces the mutable fields of an existing record.
	Update(ctx context.Context, u *domain.User) error
	Delete(ctx context.Context, id string) error
}

// RoleRepository persists role assignments keyed by (user, role).
type RoleRepository interface {
	ListByUser(ctx context.Context, userID string) ([]domain.Role, error)
	// Grant is an upsert: granting an already-held role is a no-op.
	Grant(ctx context.Context, userID string, role domain.Role) error
	Revoke(ctx context.Context, userID string, role domain.Role) error
	// RevokeAll removes every assignment of a user (deletion cascade).
	RevokeAll(ctx context.Context, userID string) error
}

// TxManager wraps a function in a single record-store transaction.
// The ctx passed to fn carries the transaction; repositories invoked with
// it participate in the same all-or-nothing boundary.
type TxManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

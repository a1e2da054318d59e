package ports

import (
	"context"

	"github.com/stockdeck/marketplace-system/internal/core/domain"
)

// SyncService reconciles identity-provider lifecycle events against the
// local user store and mirrors the result into the cache.
//
// Process is idempotent per event: replaying the same delivery leaves the
// store unchanged. A nil return acknowledges the delivery (including
// unrecognised kinds and soft not-found conditions); a non-nil return tells
// the provider to retry.
type SyncService interface {
	Process(ctx context.Context, event domain.ProviderEvent) error
}

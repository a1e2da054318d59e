package ports

import "context"

// UserProjection is the denormalised read replica of a user record mirrored
// into the cache, keyed by external id. Not authoritative; the record store
// always wins.
type UserProjection struct {
	ID          string   `json:"id"`
	ExternalID  string   `json:"external_id"`
	Email       string   `json:"email,omitempty"`
	DisplayName string   `json:"display_name,omitempty"`
	Roles       []string `json:"roles"`
}

// UserCache is a best-effort, TTL-bound mirror of reconciled user state.
// Implementations must bound each operation with a short timeout and never
// block on cache availability; callers treat every error as non-fatal.
type UserCache interface {
	Write(ctx context.Context, externalID string, p UserProjection) error
	// Get returns (nil, nil) on a cache miss.
	Get(ctx context.Context, externalID string) (*UserProjection, error)
	Invalidate(ctx context.Context, externalID string) error
}

// MessageDedup tracks webhook message ids that already completed processing,
// so exact redeliveries can be acknowledged without re-running mutations.
// Best effort: on error the caller processes anyway and relies on handler
// idempotency.
type MessageDedup interface {
	Seen(ctx context.Context, messageID string) (bool, error)
	Mark(ctx context.Context, messageID string) error
}

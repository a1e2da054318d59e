package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const dedupTTL = 24 * time.Hour

// MessageDedup provides webhook redelivery checks backed by Redis.
// Key format: webhook:msg:<message_id>
type MessageDedup struct {
	client *redis.Client
}

func NewMessageDedup(client *redis.Client) *MessageDedup {
	return &MessageDedup{client: client}
}

// Seen reports whether this delivery id has already completed processing.
func (d *MessageDedup) Seen(ctx context.Context, messageID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	n, err := d.client.Exists(ctx, d.key(messageID)).Result()
	if err != nil {
		return false, fmt.Errorf("dedup check: %w", err)
	}
	return n > 0, nil
}

// Mark records a completed delivery (expires after dedupTTL).
func (d *MessageDedup) Mark(ctx context.Context, messageID string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	return d.client.Set(ctx, d.key(messageID), "1", dedupTTL).Err()
}

func (d *MessageDedup) key(messageID string) string {
	return "webhook:msg:" + messageID
}

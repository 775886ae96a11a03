package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers processed event IDs so a redelivered event
// is dropped instead of invalidating caches or mutating state twice.
type IdempotencyStore interface {
	// MarkProcessed records the event ID with a TTL. It returns true when
	// the ID was newly recorded and false when it was already present.
	MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error)

	// IsProcessed reports whether the event ID is still recorded.
	IsProcessed(ctx context.Context, eventID string) (bool, error)

	// Close releases the store's resources.
	Close() error
}

// IdempotencyConfig controls event deduplication.
type IdempotencyConfig struct {
	// TTL bounds how long a processed event ID is remembered. Once it
	// expires, the same ID would be processed again.
	TTL time.Duration

	// Enabled turns deduplication on or off.
	Enabled bool
}

// DefaultIdempotencyConfig remembers processed events for a day.
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     24 * time.Hour,
		Enabled: true,
	}
}

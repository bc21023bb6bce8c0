package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers which events a handler has already processed
type IdempotencyStore interface {
	// MarkProcessed marks an event as processed for ttl.
	// Returns true if the event was newly marked, false if it was already processed.
	MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error)

	// IsProcessed checks if an event has already been processed
	IsProcessed(ctx context.Context, eventID string) (bool, error)

	// Release drops the mark of an event whose processing failed, so the
	// next delivery is processed again
	Release(ctx context.Context, eventID string) error

	Close() error
}

// IdempotencyConfig holds configuration for idempotency handling
type IdempotencyConfig struct {
	// TTL after which the same event ID can be processed again
	TTL time.Duration
	// Enabled toggles duplicate detection
	Enabled bool
}

// DefaultIdempotencyConfig returns the default idempotency configuration
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     24 * time.Hour,
		Enabled: true,
	}
}

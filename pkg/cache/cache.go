package cache

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrInvalidEntry indicates a stored entry could not be decoded.
	ErrInvalidEntry = errors.New("invalid cache entry")

	// ErrInvalidTTL is returned by Set for a non-positive TTL.
	ErrInvalidTTL = errors.New("cache ttl must be positive")
)

// Cache is a concurrency-safe key/value store with per-entry expiry.
type Cache interface {
	// TryGet returns the stored value and true, or false when the key is
	// absent or expired. The returned slice belongs to the caller.
	TryGet(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key for ttl, replacing any previous value.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
}

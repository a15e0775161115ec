package port

import (
	"context"
	"time"
)

// CacheRepository mirrors the durable quantity per SKU. Every mutating call
// must be a single round trip evaluated atomically on the cache server; the
// cache is advisory and never the source of truth.
type CacheRepository interface {
	// GetQuantity returns the cached quantity, false if the key is absent.
	GetQuantity(ctx context.Context, skuID string) (int, bool, error)

	// SetQuantity populates the cache entry with a TTL.
	SetQuantity(ctx context.Context, skuID string, quantity int, ttl time.Duration) error

	// Evict removes the cache entry.
	Evict(ctx context.Context, skuID string) error

	// DecrementIfEnough atomically subtracts amount when the key exists and
	// holds at least amount, returning the new value. Returns false without
	// mutating when the key is absent or the balance is insufficient.
	DecrementIfEnough(ctx context.Context, skuID string, amount int) (int, bool, error)

	// SetIfExists atomically overwrites the entry only when the key exists,
	// reporting whether it did. An absent key is left untouched so the next
	// read primes it from the durable store.
	SetIfExists(ctx context.Context, skuID string, quantity int) (bool, error)
}

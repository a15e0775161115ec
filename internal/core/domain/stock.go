package domain

import "time"

// StockRecord is the durable quantity-on-hand for one SKU. The durable store
// owns its persisted state; the cache holds a derived, possibly stale mirror.
type StockRecord struct {
	ID         string
	SKUID      string
	Quantity   int
	Version    int // optimistic locking
	CreatedAt  time.Time
	ModifiedAt time.Time
}

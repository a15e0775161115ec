package port

import "context"

// EventPublisher is the out-of-band reconciliation hook. When the cache retry
// budget is exhausted the service publishes the committed durable quantity so
// an external consumer can converge the cache later. Operation success never
// depends on this publish.
type EventPublisher interface {
	PublishCacheDrift(ctx context.Context, skuID string, quantity int) error
}

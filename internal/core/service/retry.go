package service

import (
	"context"

	"go.uber.org/zap"
)

// RetryPolicy re-runs a cache mutation a fixed number of times. It only ever
// covers cache-side scripts; durable writes are never retried here. Attempt
// errors are logged and counted, not returned.
type RetryPolicy struct {
	MaxAttempts int
	logger      *zap.Logger
}

func NewRetryPolicy(maxAttempts int, logger *zap.Logger) RetryPolicy {
	return RetryPolicy{MaxAttempts: maxAttempts, logger: logger}
}

// Run invokes attempt until it reports success or the budget is spent,
// returning whether any attempt succeeded.
func (p RetryPolicy) Run(ctx context.Context, name string, attempt func(ctx context.Context) (bool, error)) bool {
	for i := 1; i <= p.MaxAttempts; i++ {
		ok, err := attempt(ctx)
		if err != nil {
			p.logger.Warn("cache mutation attempt failed",
				zap.String("op", name),
				zap.Int("attempt", i),
				zap.Error(err),
			)
			continue
		}
		if ok {
			return true
		}
		p.logger.Warn("cache mutation attempt rejected",
			zap.String("op", name),
			zap.Int("attempt", i),
		)
	}

	return false
}

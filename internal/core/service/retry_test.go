package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestRetryPolicy_FirstAttemptSucceeds(t *testing.T) {
	policy := NewRetryPolicy(3, zap.NewNop())

	attempts := 0
	ok := policy.Run(context.Background(), "test", func(ctx context.Context) (bool, error) {
		attempts++
		return true, nil
	})

	assert.True(t, ok)
	assert.Equal(t, 1, attempts)
}

func TestRetryPolicy_RecoversWithinBudget(t *testing.T) {
	policy := NewRetryPolicy(3, zap.NewNop())

	attempts := 0
	ok := policy.Run(context.Background(), "test", func(ctx context.Context) (bool, error) {
		attempts++
		if attempts < 3 {
			return false, errors.New("transient")
		}
		return true, nil
	})

	assert.True(t, ok)
	assert.Equal(t, 3, attempts)
}

func TestRetryPolicy_Exhausted(t *testing.T) {
	policy := NewRetryPolicy(3, zap.NewNop())

	attempts := 0
	ok := policy.Run(context.Background(), "test", func(ctx context.Context) (bool, error) {
		attempts++
		return false, errors.New("transient")
	})

	assert.False(t, ok)
	assert.Equal(t, 3, attempts)
}

func TestRetryPolicy_RejectionCountsAsFailure(t *testing.T) {
	policy := NewRetryPolicy(2, zap.NewNop())

	attempts := 0
	ok := policy.Run(context.Background(), "test", func(ctx context.Context) (bool, error) {
		attempts++
		return false, nil
	})

	assert.False(t, ok)
	assert.Equal(t, 2, attempts)
}

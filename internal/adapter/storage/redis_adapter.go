package storage

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const stockKeyPrefix = "stock:"

// Both scripts refuse to touch an absent key: an entry the read path never
// primed must stay absent so it cannot resurrect with a stale value.
var decrementIfEnoughScript = redis.NewScript(`
local key = KEYS[1]
local amount = tonumber(ARGV[1])

local current = redis.call('GET', key)
if not current then
	return false
end

current = tonumber(current)
if current >= amount then
	redis.call('SET', key, current - amount, 'KEEPTTL')
	return current - amount
end

return false
`)

var setIfExistsScript = redis.NewScript(`
local key = KEYS[1]

if redis.call('EXISTS', key) == 1 then
	redis.call('SET', key, ARGV[1], 'KEEPTTL')
	return 1
end

return 0
`)

type RedisAdapter struct {
	client *redis.Client
}

func NewRedisAdapter(client *redis.Client) *RedisAdapter {
	return &RedisAdapter{client: client}
}

func (r *RedisAdapter) GetQuantity(ctx context.Context, skuID string) (int, bool, error) {
	quantity, err := r.client.Get(ctx, stockKeyPrefix+skuID).Int()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}

	return quantity, true, nil
}

func (r *RedisAdapter) SetQuantity(ctx context.Context, skuID string, quantity int, ttl time.Duration) error {
	return r.client.Set(ctx, stockKeyPrefix+skuID, quantity, ttl).Err()
}

func (r *RedisAdapter) Evict(ctx context.Context, skuID string) error {
	return r.client.Del(ctx, stockKeyPrefix+skuID).Err()
}

func (r *RedisAdapter) DecrementIfEnough(ctx context.Context, skuID string, amount int) (int, bool, error) {
	result, err := decrementIfEnoughScript.Run(ctx, r.client, []string{stockKeyPrefix + skuID}, amount).Result()
	if errors.Is(err, redis.Nil) {
		// Lua false comes back as a nil reply: key absent or balance too low.
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}

	newValue, ok := result.(int64)
	if !ok {
		return 0, false, errors.New("unexpected reply type from decrement script")
	}

	return int(newValue), true, nil
}

func (r *RedisAdapter) SetIfExists(ctx context.Context, skuID string, quantity int) (bool, error) {
	result, err := setIfExistsScript.Run(ctx, r.client, []string{stockKeyPrefix + skuID}, quantity).Int()
	if err != nil {
		return false, err
	}

	return result == 1, nil
}

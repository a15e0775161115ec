package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 5*time.Minute, cfg.Stock.CacheTTL)
	assert.Equal(t, 3, cfg.Stock.MaxCacheAttempts)
	assert.Equal(t, "stock.cache-drift", cfg.Kafka.Topic)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SERVER_ADDR", ":9090")
	t.Setenv("STOCK_MAX_CACHE_ATTEMPTS", "5")
	t.Setenv("REDIS_ADDR", "redis:6379")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 5, cfg.Stock.MaxCacheAttempts)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alchemix-labs/yieldkit/internal/adapters/yield"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("LISTEN_ADDR", "")
	t.Setenv("REDIS_ENABLED", "")
	t.Setenv("PROVIDERS_FILE", "")
	t.Setenv("FEE_MULTIPLIER", "")
	t.Setenv("CACHE_TTL", "")
	t.Setenv("MEMORY_CACHE_ITEMS", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.True(t, cfg.FeeMultiplier.Equal(yield.DefaultFeeMultiplier))
	assert.Equal(t, time.Minute, cfg.CacheTTL)
	assert.Equal(t, yield.DefaultDefinitions(), cfg.Providers)
	assert.False(t, cfg.RedisEnabled)
	assert.Equal(t, int64(1024), cfg.MemoryCacheItems)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("LISTEN_ADDR", ":9090")
	t.Setenv("FEE_MULTIPLIER", "0.85")
	t.Setenv("CACHE_TTL", "5m")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("RPC_URL_10", "https://optimism.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.ListenAddr)
	assert.Equal(t, "0.85", cfg.FeeMultiplier.String())
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.True(t, cfg.RedisEnabled)
	assert.Equal(t, 3, cfg.RedisDB)

	url, ok := cfg.RPCURL(10)
	assert.True(t, ok)
	assert.Equal(t, "https://optimism.example", url)
	_, ok = cfg.RPCURL(42161)
	assert.False(t, ok)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"FEE_MULTIPLIER", "1.5"},
		{"FEE_MULTIPLIER", "abc"},
		{"CACHE_TTL", "forever"},
		{"REDIS_ENABLED", "maybe"},
		{"REDIS_DB", "one"},
		{"REQUESTS_PER_SECOND", "fast"},
		{"RPC_URL_mainnet", "https://x"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoad_ProvidersFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "providers.yaml")
	content := `fee_multiplier: "0.8"
providers:
  - name: lido
    url: https://eth-api.lido.fi/v1/protocol/steth/apr/sma
    field: data.smaApr
  - name: pool
    kind: defillama
    url: http://localhost:8080/llama
    pool_id: abc
rpc_urls:
  1: https://mainnet.example
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	t.Setenv("PROVIDERS_FILE", path)
	t.Setenv("FEE_MULTIPLIER", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.8", cfg.FeeMultiplier.String())
	require.Len(t, cfg.Providers, 2)
	assert.Equal(t, "pool", cfg.Providers[1].Name)
	assert.Equal(t, yield.KindDefiLlama, cfg.Providers[1].Kind)

	url, ok := cfg.RPCURL(1)
	assert.True(t, ok)
	assert.Equal(t, "https://mainnet.example", url)
}

func TestLoad_ProvidersFileInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "providers.yaml")
	require.NoError(t, os.WriteFile(path, []byte("providers:\n  - name: broken\n"), 0600))
	t.Setenv("PROVIDERS_FILE", path)

	_, err := Load()
	assert.Error(t, err)

	t.Setenv("PROVIDERS_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	_, err = Load()
	assert.Error(t, err)
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/alchemix-labs/yieldkit/internal/adapters/yield"
)

// Config holds process configuration loaded from the environment and an
// optional providers file.
type Config struct {
	ListenAddr        string
	LogLevel          string
	FeeMultiplier     decimal.Decimal
	CacheTTL          time.Duration
	StreamInterval    time.Duration
	RequestsPerSecond float64
	SnapshotPath      string
	LlamaUpstream     string
	AdminJWTSecret    string

	MemoryCacheItems int64

	RedisEnabled   bool
	RedisAddress   string
	RedisUsername  string
	RedisPassword  string
	RedisDB        int
	RedisKeyPrefix string
	RedisUseTLS    bool

	Providers []yield.Definition
	RPCURLs   map[uint64]string
}

// ProvidersFile is the YAML layout of PROVIDERS_FILE.
type ProvidersFile struct {
	FeeMultiplier string             `yaml:"fee_multiplier,omitempty"`
	Providers     []yield.Definition `yaml:"providers"`
	RPCURLs       map[uint64]string  `yaml:"rpc_urls,omitempty"`
}

// LoadEnv loads a .env file if present. Existing variables win.
func LoadEnv(filenames ...string) {
	_ = godotenv.Load(filenames...)
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{
		ListenAddr:     getEnv("LISTEN_ADDR", ":8080"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		SnapshotPath:   getEnv("SNAPSHOT_PATH", ".yieldkit-rates.json"),
		LlamaUpstream:  getEnv("LLAMA_UPSTREAM", yield.DefiLlamaYieldURL),
		AdminJWTSecret: os.Getenv("ADMIN_JWT_SECRET"),
		RedisAddress:   getEnv("REDIS_ADDRESS", "localhost:6379"),
		RedisUsername:  os.Getenv("REDIS_USERNAME"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		RedisKeyPrefix: getEnv("REDIS_KEY_PREFIX", "yieldkit:rates:"),
		FeeMultiplier:  yield.DefaultFeeMultiplier,
		Providers:      yield.DefaultDefinitions(),
		RPCURLs:        make(map[uint64]string),
	}

	var err error
	if v := os.Getenv("FEE_MULTIPLIER"); v != "" {
		if cfg.FeeMultiplier, err = parseFee(v); err != nil {
			return nil, err
		}
	}
	if cfg.CacheTTL, err = getDuration("CACHE_TTL", time.Minute); err != nil {
		return nil, err
	}
	if cfg.StreamInterval, err = getDuration("STREAM_INTERVAL", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.RequestsPerSecond, err = getFloat("REQUESTS_PER_SECOND", 2); err != nil {
		return nil, err
	}
	if cfg.RedisEnabled, err = getBool("REDIS_ENABLED", false); err != nil {
		return nil, err
	}
	if cfg.RedisUseTLS, err = getBool("REDIS_USE_TLS", false); err != nil {
		return nil, err
	}
	if cfg.RedisDB, err = getInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	items, err := getInt("MEMORY_CACHE_ITEMS", 1024)
	if err != nil {
		return nil, err
	}
	cfg.MemoryCacheItems = int64(items)

	if path := os.Getenv("PROVIDERS_FILE"); path != "" {
		if err := cfg.applyProvidersFile(path); err != nil {
			return nil, err
		}
	}

	// RPC_URL_<chainId> overrides the providers file.
	for _, kv := range os.Environ() {
		key, value, _ := strings.Cut(kv, "=")
		suffix, ok := strings.CutPrefix(key, "RPC_URL_")
		if !ok || value == "" {
			continue
		}
		id, err := strconv.ParseUint(suffix, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid chain id in %s", key)
		}
		cfg.RPCURLs[id] = value
	}

	return cfg, nil
}

func (c *Config) applyProvidersFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read providers file: %w", err)
	}

	var file ProvidersFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse providers file: %w", err)
	}

	if file.FeeMultiplier != "" {
		fee, err := parseFee(file.FeeMultiplier)
		if err != nil {
			return err
		}
		c.FeeMultiplier = fee
	}
	if len(file.Providers) > 0 {
		for _, d := range file.Providers {
			if err := d.Validate(); err != nil {
				return fmt.Errorf("providers file: %w", err)
			}
		}
		c.Providers = file.Providers
	}
	for id, url := range file.RPCURLs {
		c.RPCURLs[id] = url
	}
	return nil
}

// RPCURL returns the configured endpoint for chainID.
func (c *Config) RPCURL(chainID uint64) (string, bool) {
	url, ok := c.RPCURLs[chainID]
	return url, ok && url != ""
}

func parseFee(v string) (decimal.Decimal, error) {
	fee, err := decimal.NewFromString(strings.TrimSpace(v))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid fee multiplier %q: %w", v, err)
	}
	if fee.IsNegative() || fee.GreaterThan(decimal.NewFromInt(1)) {
		return decimal.Decimal{}, fmt.Errorf("fee multiplier must be between 0 and 1, got %s", fee)
	}
	return fee, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return i, nil
}

func getBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

package main

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/alchemix-labs/yieldkit/internal/adapters/cache"
	"github.com/alchemix-labs/yieldkit/internal/adapters/yield"
	"github.com/alchemix-labs/yieldkit/internal/core/domain"
	"github.com/alchemix-labs/yieldkit/internal/core/service"
	"github.com/alchemix-labs/yieldkit/pkg/config"
	"github.com/alchemix-labs/yieldkit/pkg/version"
)

// app holds the wired components shared by the subcommands.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	rates   *service.RateService
	closers []func() error
}

func loadConfig() (*config.Config, error) {
	if envFile != "" {
		config.LoadEnv(envFile)
	} else {
		config.LoadEnv()
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = lvl
	return zcfg.Build()
}

func newApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, logger: logger}

	rateCache := a.newRateCache()

	var snapshots domain.SnapshotStore
	if store, err := cache.NewFileStore(cfg.SnapshotPath); err != nil {
		logger.Warn("Snapshot store unavailable, stale fallback disabled", zap.Error(err))
	} else {
		logger.Debug("Snapshot store ready", zap.String("path", store.Path()))
		snapshots = store
	}

	providers, err := yield.Build(cfg.Providers, cfg.FeeMultiplier,
		yield.WithRequestsPerSecond(cfg.RequestsPerSecond),
		yield.WithUserAgent("yieldkit/"+version.Version()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build providers: %w", err)
	}

	fee, _ := cfg.FeeMultiplier.Float64()
	a.rates = service.NewRateService(providers, service.Options{
		Cache:         rateCache,
		Snapshots:     snapshots,
		CacheTTL:      cfg.CacheTTL,
		FeeMultiplier: fee,
		Logger:        logger,
	})
	return a, nil
}

// newRateCache prefers Redis when enabled and falls back to the in-process
// cache, then to no caching at all.
func (a *app) newRateCache() domain.RateCache {
	cfg, logger := a.cfg, a.logger

	if cfg.RedisEnabled {
		rc, err := cache.NewRedisCache(&cache.RedisConfig{
			Address:   cfg.RedisAddress,
			Username:  cfg.RedisUsername,
			Password:  cfg.RedisPassword,
			DB:        cfg.RedisDB,
			KeyPrefix: cfg.RedisKeyPrefix,
			UseTLS:    cfg.RedisUseTLS,
		})
		if err == nil {
			logger.Info("Rate cache enabled", zap.String("backend", "redis"), zap.String("address", cfg.RedisAddress))
			a.closers = append(a.closers, rc.Close)
			return rc
		}
		logger.Warn("Redis unavailable, falling back to memory cache", zap.Error(err))
	}

	if cfg.MemoryCacheItems > 0 {
		mc, err := cache.NewMemoryCache(cfg.MemoryCacheItems)
		if err == nil {
			logger.Debug("Rate cache enabled", zap.String("backend", "memory"), zap.Int64("items", cfg.MemoryCacheItems))
			a.closers = append(a.closers, mc.Close)
			return mc
		}
		logger.Warn("Memory cache unavailable, rate caching disabled", zap.Error(err))
	}

	return cache.NoOpCache{}
}

func (a *app) Close() {
	for _, c := range a.closers {
		if err := c(); err != nil {
			a.logger.Warn("Close failed", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}

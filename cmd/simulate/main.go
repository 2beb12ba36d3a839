// Command simulate fetches every configured provider once and prints the
// snapshot alongside a sample minimum-output calculation.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/alchemix-labs/yieldkit/internal/adapters/yield"
	"github.com/alchemix-labs/yieldkit/internal/core/service"
	"github.com/alchemix-labs/yieldkit/pkg/config"
	"github.com/alchemix-labs/yieldkit/pkg/slippage"
)

func main() {
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	config.LoadEnv()
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	// 1. Build providers from the configured catalog
	providers, err := yield.Build(cfg.Providers, cfg.FeeMultiplier)
	if err != nil {
		logger.Fatal("Failed to build providers", zap.Error(err))
	}
	fee, _ := cfg.FeeMultiplier.Float64()
	rates := service.NewRateService(providers, service.Options{FeeMultiplier: fee, Logger: logger})

	// 2. Aggregate once
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger.Info("Simulating rate aggregation", zap.Strings("providers", rates.Providers()))
	snapshot, err := rates.Aggregate(ctx)
	if err != nil {
		logger.Fatal("Aggregation failed", zap.Error(err))
	}

	// 3. Minimum output for 1 ETH at 0.5%
	amount, _ := slippage.ParseAmount("1000000000000000000")
	minOut, err := slippage.MinOut(amount, 50)
	if err != nil {
		logger.Fatal("Min-out failed", zap.Error(err))
	}

	// 4. Print output
	output, _ := json.MarshalIndent(map[string]interface{}{
		"snapshot": snapshot,
		"min_out": map[string]string{
			"amount":   amount.String(),
			"slippage": slippage.FormatPercent(50),
			"min_out":  minOut.String(),
		},
	}, "", "  ")
	fmt.Fprintln(os.Stdout, string(output))
}

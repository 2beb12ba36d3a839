package domain

import (
	"context"
	"math/big"
	"time"
)

// RateProvider fetches a single yield rate from one third-party endpoint.
type RateProvider interface {
	// Name is the stable identifier used for lookups and cache keys.
	Name() string

	// FetchRate returns the fee-adjusted rate in percent. Failures are
	// reported as *FetchError.
	FetchRate(ctx context.Context) (float64, error)
}

// RateCache stores recent quotes per provider. A miss is (nil, nil).
type RateCache interface {
	Get(ctx context.Context, provider string) (*RateQuote, error)
	Set(ctx context.Context, quote RateQuote, ttl time.Duration) error
	Flush(ctx context.Context) error
}

// SnapshotStore keeps the last aggregated snapshot for stale fallbacks.
type SnapshotStore interface {
	Load() (*RateSnapshot, error)
	Save(snapshot *RateSnapshot) error
}

// TokenConverter converts amounts between static and dynamic accounting units
// of a wrapped token.
type TokenConverter interface {
	StaticToDynamic(ctx context.Context, amount *big.Int) (*big.Int, error)
	DynamicToStatic(ctx context.Context, amount *big.Int) (*big.Int, error)
}

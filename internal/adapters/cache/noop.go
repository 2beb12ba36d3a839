package cache

import (
	"context"
	"time"

	"github.com/alchemix-labs/yieldkit/internal/core/domain"
)

var _ domain.RateCache = NoOpCache{}

// NoOpCache never stores anything. Used when no other backend is available.
type NoOpCache struct{}

func (NoOpCache) Get(context.Context, string) (*domain.RateQuote, error) { return nil, nil }

func (NoOpCache) Set(context.Context, domain.RateQuote, time.Duration) error { return nil }

func (NoOpCache) Flush(context.Context) error { return nil }

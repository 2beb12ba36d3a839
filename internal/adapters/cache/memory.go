package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto"

	"github.com/alchemix-labs/yieldkit/internal/core/domain"
)

var _ domain.RateCache = (*MemoryCache)(nil)

// MemoryCache keeps quotes in process. It is the default when Redis is not
// configured.
type MemoryCache struct {
	cache *ristretto.Cache
}

// NewMemoryCache holds up to maxItems quotes.
func NewMemoryCache(maxItems int64) (*MemoryCache, error) {
	if maxItems <= 0 {
		return nil, fmt.Errorf("memory cache size must be positive, got %d", maxItems)
	}
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: maxItems * 10,
		MaxCost:     maxItems,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create memory cache: %w", err)
	}
	return &MemoryCache{cache: c}, nil
}

func (c *MemoryCache) Get(_ context.Context, provider string) (*domain.RateQuote, error) {
	v, ok := c.cache.Get(provider)
	if !ok {
		return nil, nil
	}
	quote, ok := v.(domain.RateQuote)
	if !ok {
		return nil, fmt.Errorf("unexpected cached value %T for %s", v, provider)
	}
	return &quote, nil
}

// Set stores quote for ttl. The write is visible to Get once Set returns.
func (c *MemoryCache) Set(_ context.Context, quote domain.RateQuote, ttl time.Duration) error {
	if !c.cache.SetWithTTL(quote.Provider, quote, 1, ttl) {
		return fmt.Errorf("memory cache dropped quote for %s", quote.Provider)
	}
	c.cache.Wait()
	return nil
}

func (c *MemoryCache) Flush(context.Context) error {
	c.cache.Clear()
	return nil
}

// Close stops the cache's background goroutines.
func (c *MemoryCache) Close() error {
	c.cache.Close()
	return nil
}

package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/alchemix-labs/yieldkit/internal/core/domain"
)

// Options configures a RateService. Zero values pick defaults.
type Options struct {
	Cache         domain.RateCache
	Snapshots     domain.SnapshotStore
	CacheTTL      time.Duration
	FeeMultiplier float64
	Concurrency   int // parallel fetches; defaults to one per provider
	Logger        *zap.Logger
}

// RateService fans out to every configured provider and assembles a snapshot.
type RateService struct {
	providers     []domain.RateProvider
	byName        map[string]domain.RateProvider
	cache         domain.RateCache
	snapshots     domain.SnapshotStore
	cacheTTL      time.Duration
	feeMultiplier float64
	concurrency   int
	logger        *zap.Logger
	now           func() time.Time
}

func NewRateService(providers []domain.RateProvider, opts Options) *RateService {
	s := &RateService{
		providers:     providers,
		byName:        make(map[string]domain.RateProvider, len(providers)),
		cache:         opts.Cache,
		snapshots:     opts.Snapshots,
		cacheTTL:      opts.CacheTTL,
		feeMultiplier: opts.FeeMultiplier,
		concurrency:   opts.Concurrency,
		logger:        opts.Logger,
		now:           func() time.Time { return time.Now().UTC() },
	}
	for _, p := range providers {
		s.byName[p.Name()] = p
	}
	if s.cache == nil {
		s.cache = nopCache{}
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.concurrency <= 0 {
		s.concurrency = len(providers)
	}
	if s.cacheTTL <= 0 {
		s.cacheTTL = time.Minute
	}
	return s
}

// Providers returns the configured provider names in sorted order.
func (s *RateService) Providers() []string {
	names := make([]string, 0, len(s.providers))
	for _, p := range s.providers {
		names = append(names, p.Name())
	}
	sort.Strings(names)
	return names
}

// Aggregate fetches every provider in parallel. A failing provider never
// aborts the others; its quote carries the error instead.
func (s *RateService) Aggregate(ctx context.Context) (*domain.RateSnapshot, error) {
	prev := s.previous()
	quotes := make([]domain.RateQuote, len(s.providers))

	var g errgroup.Group
	if s.concurrency > 0 {
		g.SetLimit(s.concurrency)
	}
	for i, p := range s.providers {
		g.Go(func() error {
			quotes[i] = s.quote(ctx, p, prev)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("aggregate rates: %w", err)
	}

	sort.Slice(quotes, func(i, j int) bool {
		return quotes[i].Provider < quotes[j].Provider
	})

	snapshot := &domain.RateSnapshot{
		FeeMultiplier: s.feeMultiplier,
		Quotes:        quotes,
		GeneratedAt:   s.now(),
	}
	for _, q := range quotes {
		if q.Error != "" {
			snapshot.Partial = true
			break
		}
	}

	if s.snapshots != nil {
		if err := s.snapshots.Save(snapshot); err != nil {
			s.logger.Warn("Failed to save rate snapshot", zap.Error(err))
		}
	}

	return snapshot, nil
}

// Rate fetches a single provider by name.
func (s *RateService) Rate(ctx context.Context, name string) (domain.RateQuote, error) {
	p, ok := s.byName[name]
	if !ok {
		return domain.RateQuote{}, fmt.Errorf("%w: %s", domain.ErrUnknownProvider, name)
	}
	return s.quote(ctx, p, s.previous()), nil
}

// FlushCache drops all cached quotes.
func (s *RateService) FlushCache(ctx context.Context) error {
	return s.cache.Flush(ctx)
}

func (s *RateService) previous() *domain.RateSnapshot {
	if s.snapshots == nil {
		return nil
	}
	prev, err := s.snapshots.Load()
	if err != nil {
		s.logger.Warn("Failed to load rate snapshot", zap.Error(err))
		return nil
	}
	return prev
}

func (s *RateService) quote(ctx context.Context, p domain.RateProvider, prev *domain.RateSnapshot) domain.RateQuote {
	name := p.Name()

	cached, err := s.cache.Get(ctx, name)
	if err != nil {
		s.logger.Warn("Rate cache read failed", zap.String("provider", name), zap.Error(err))
	} else if cached != nil {
		q := *cached
		q.Cached = true
		return q
	}

	start := time.Now()
	apr, err := p.FetchRate(ctx)
	if err != nil {
		q := domain.RateQuote{
			Provider:  name,
			Error:     err.Error(),
			FetchedAt: s.now(),
		}
		if kind, ok := domain.FetchErrorKindOf(err); ok {
			q.ErrorKind = string(kind)
		}
		if prev != nil {
			if old, ok := prev.Quote(name); ok && old.OK {
				q.APR = old.APR
				q.OK = true
				q.Stale = true
				q.FetchedAt = old.FetchedAt
			}
		}
		s.logger.Warn("Rate fetch failed",
			zap.String("provider", name),
			zap.String("kind", q.ErrorKind),
			zap.Bool("stale_fallback", q.Stale),
			zap.Error(err))
		return q
	}

	q := domain.RateQuote{
		Provider:  name,
		APR:       apr,
		OK:        true,
		FetchedAt: s.now(),
	}
	s.logger.Debug("Rate fetched",
		zap.String("provider", name),
		zap.Float64("apr", apr),
		zap.Duration("took", time.Since(start)))

	if err := s.cache.Set(ctx, q, s.cacheTTL); err != nil {
		s.logger.Warn("Rate cache write failed", zap.String("provider", name), zap.Error(err))
	}
	return q
}

type nopCache struct{}

func (nopCache) Get(context.Context, string) (*domain.RateQuote, error) { return nil, nil }

func (nopCache) Set(context.Context, domain.RateQuote, time.Duration) error { return nil }

func (nopCache) Flush(context.Context) error { return nil }

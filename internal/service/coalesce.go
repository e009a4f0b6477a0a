package service

import (
	"context"
	"strconv"
	"time"

	"github.com/viccon/sturdyc"

	"game_catalog/internal/config"
	"game_catalog/internal/domain"
)

const (
	coalesceShards             = 10
	coalesceEvictionPercentage = 10
	defaultFetchTimeout        = time.Minute
)

// CoalescingCatalog shares one provider call between concurrent identical
// misses and keeps the answer for a short TTL.
type CoalescingCatalog struct {
	inner   Catalog
	cache   *sturdyc.Client[[]domain.Game]
	timeout time.Duration
}

func NewCoalescingCatalog(inner Catalog, cfg config.CacheConfig) *CoalescingCatalog {
	timeout := cfg.FetchTimeout
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	return &CoalescingCatalog{
		inner:   inner,
		timeout: timeout,
		cache:   sturdyc.New[[]domain.Game](
			cfg.Capacity,
			coalesceShards,
			cfg.CoalesceTTL,
			coalesceEvictionPercentage,
		),
	}
}

func (c *CoalescingCatalog) SearchByText(ctx context.Context, query string, limit int) ([]domain.Game, error) {
	return c.fetch(ctx, "search:"+strconv.Itoa(limit)+":"+query, func(ctx context.Context) ([]domain.Game, error) {
		return c.inner.SearchByText(ctx, query, limit)
	})
}

func (c *CoalescingCatalog) GetBySlug(ctx context.Context, slug string) ([]domain.Game, error) {
	return c.fetch(ctx, "slug:"+slug, func(ctx context.Context) ([]domain.Game, error) {
		return c.inner.GetBySlug(ctx, slug)
	})
}

func (c *CoalescingCatalog) GetByGenre(ctx context.Context, genre string, limit int) ([]domain.Game, error) {
	return c.fetch(ctx, "genre:"+strconv.Itoa(limit)+":"+genre, func(ctx context.Context) ([]domain.Game, error) {
		return c.inner.GetByGenre(ctx, genre, limit)
	})
}

func (c *CoalescingCatalog) GetTopRated(ctx context.Context, limit int) ([]domain.Game, error) {
	return c.fetch(ctx, "top_rated:"+strconv.Itoa(limit), func(ctx context.Context) ([]domain.Game, error) {
		return c.inner.GetTopRated(ctx, limit)
	})
}

func (c *CoalescingCatalog) GetUpcoming(ctx context.Context, limit int) ([]domain.Game, error) {
	return c.fetch(ctx, "upcoming:"+strconv.Itoa(limit), func(ctx context.Context) ([]domain.Game, error) {
		return c.inner.GetUpcoming(ctx, limit)
	})
}

func (c *CoalescingCatalog) fetch(ctx context.Context, key string, fn func(context.Context) ([]domain.Game, error)) ([]domain.Game, error) {
	games, err := c.cache.GetOrFetch(ctx, key, func(ctx context.Context) ([]domain.Game, error) {
		// Waiters share this call, so it must not die with the caller that started it.
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()
		return fn(fetchCtx)
	})
	if err != nil {
		return nil, err
	}
	// Callers own the returned slice; the cached one must stay untouched.
	out := make([]domain.Game, len(games))
	copy(out, games)
	return out, nil
}

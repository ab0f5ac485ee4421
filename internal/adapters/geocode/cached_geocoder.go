package geocode

import (
	"context"
	"daily-routine-service/internal/domain"
	"daily-routine-service/internal/ports"
	"fmt"

	"go.uber.org/zap"
)

// CacheObserver receives hit/miss counts per lookup.
type CacheObserver interface {
	ObserveGeocodeCache(hits, misses int)
}

// CachedGeocoder consults a persistent cache before delegating misses to the
// upstream geocoder and writes resolved misses back.
// Cache write failures are logged, not returned.
type CachedGeocoder struct {
	upstream ports.Geocoder
	cache    ports.GeocodeCache
	observer CacheObserver
	logger   *zap.Logger
}

type CachedOption func(*CachedGeocoder)

// WithCacheLogger sets the logger used for cache write failures.
func WithCacheLogger(l *zap.Logger) CachedOption {
	return func(c *CachedGeocoder) {
		if l != nil {
			c.logger = l
		}
	}
}

func NewCachedGeocoder(upstream ports.Geocoder, cache ports.GeocodeCache, observer CacheObserver, opts ...CachedOption) *CachedGeocoder {
	c := &CachedGeocoder{upstream: upstream, cache: cache, observer: observer, logger: zap.L()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *CachedGeocoder) Geocode(ctx context.Context, addresses []string) ([]*domain.Coordinates, error) {
	norms := make([]string, len(addresses))
	for i, a := range addresses {
		norms[i] = Normalize(a)
	}

	hits, err := c.cache.GetMany(ctx, norms)
	if err != nil {
		return nil, fmt.Errorf("cached geocode: read cache: %w", err)
	}
	if hits == nil {
		hits = map[string]domain.Coordinates{}
	}

	var missing []string
	queued := map[string]struct{}{}
	for _, n := range norms {
		if n == "" {
			continue
		}
		if _, ok := hits[n]; ok {
			continue
		}
		if _, ok := queued[n]; ok {
			continue
		}
		queued[n] = struct{}{}
		missing = append(missing, n)
	}

	if c.observer != nil {
		c.observer.ObserveGeocodeCache(len(uniqueNonBlank(norms))-len(missing), len(missing))
	}

	if len(missing) > 0 {
		resolved, err := c.upstream.Geocode(ctx, missing)
		if err != nil {
			return nil, fmt.Errorf("cached geocode: upstream: %w", err)
		}

		fresh := make(map[string]domain.Coordinates, len(missing))
		for i, coords := range resolved {
			if i >= len(missing) || coords == nil {
				continue
			}
			fresh[missing[i]] = *coords
			hits[missing[i]] = *coords
		}

		if err := c.cache.PutMany(ctx, fresh); err != nil {
			c.logger.Warn("geocode cache write failed", zap.Error(err), zap.Int("entries", len(fresh)))
		}
	}

	out := make([]*domain.Coordinates, len(addresses))
	for i, n := range norms {
		if coords, ok := hits[n]; ok {
			out[i] = &coords
		}
	}
	return out, nil
}

func uniqueNonBlank(ss []string) map[string]struct{} {
	out := make(map[string]struct{}, len(ss))
	for _, s := range ss {
		if s != "" {
			out[s] = struct{}{}
		}
	}
	return out
}

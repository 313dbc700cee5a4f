package redis

import (
	"context"
	"time"

	"github.com/astroview/voprod/internal/logger"
	"github.com/astroview/voprod/internal/table"
)

// CachedFetcher wraps a table.Fetcher with the Redis DataLink cache.
// Cache errors never fail a fetch: they degrade to the inner fetcher.
type CachedFetcher struct {
	store *Store
	inner table.Fetcher
	ttl   time.Duration
	log   logger.Logger
}

func NewCachedFetcher(store *Store, inner table.Fetcher, ttl time.Duration, log logger.Logger) *CachedFetcher {
	if ttl <= 0 {
		ttl = DefaultDatalinkTTL
	}
	return &CachedFetcher{store: store, inner: inner, ttl: ttl, log: log}
}

func (f *CachedFetcher) FetchDatalinkTable(ctx context.Context, url string) (*table.TableModel, error) {
	cached, err := f.store.GetCachedDatalinkTable(ctx, url)
	if err != nil {
		f.log.Warn("datalink cache read failed", logger.String("url", url), logger.Error(err))
	} else if cached != nil {
		return cached, nil
	}

	t, err := f.inner.FetchDatalinkTable(ctx, url)
	if err != nil {
		return nil, err
	}
	if err := f.store.CacheDatalinkTable(ctx, url, t, f.ttl); err != nil {
		f.log.Warn("datalink cache write failed", logger.String("url", url), logger.Error(err))
	}
	return t, nil
}

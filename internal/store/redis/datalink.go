package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/astroview/voprod/internal/table"
)

// CacheDatalinkTable stores a fetched DataLink table under its URL.
func (s *Store) CacheDatalinkTable(ctx context.Context, url string, t *table.TableModel, ttl time.Duration) error {
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("failed to marshal datalink table: %w", err)
	}
	if err := s.client.Set(ctx, datalinkKey(url), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache datalink table: %w", err)
	}
	return nil
}

// GetCachedDatalinkTable retrieves a cached DataLink table. A miss
// returns (nil, nil).
func (s *Store) GetCachedDatalinkTable(ctx context.Context, url string) (*table.TableModel, error) {
	data, err := s.client.Get(ctx, datalinkKey(url)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get cached datalink table: %w", err)
	}
	var t table.TableModel
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached datalink table: %w", err)
	}
	// descriptor back-links are not serialized
	for i := range t.Descriptors {
		t.Descriptors[i].Source = &t
	}
	return &t, nil
}

// InvalidateDatalinkTable drops one cached DataLink table.
func (s *Store) InvalidateDatalinkTable(ctx context.Context, url string) error {
	if err := s.client.Del(ctx, datalinkKey(url)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate datalink cache: %w", err)
	}
	return nil
}

// FlushDatalinkCache drops every cached DataLink table.
func (s *Store) FlushDatalinkCache(ctx context.Context) error {
	iter := s.client.Scan(ctx, 0, datalinkPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("failed to delete cache key: %w", err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to flush datalink cache: %w", err)
	}
	return nil
}

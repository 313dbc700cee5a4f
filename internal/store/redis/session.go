package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/astroview/voprod/internal/session"
)

const (
	// DefaultSessionTTL is the default TTL for persisted sessions.
	DefaultSessionTTL = 48 * time.Hour
	// DefaultDatalinkTTL is the default TTL for cached DataLink tables.
	DefaultDatalinkTTL = time.Hour
)

// Store handles Redis persistence for sessions and the DataLink cache.
type Store struct {
	client *redis.Client
}

func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

// SaveSession persists one session record.
func (s *Store) SaveSession(ctx context.Context, rec session.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKey(rec.ID), data, DefaultSessionTTL).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	if err := s.client.SAdd(ctx, sessionsSetKey, rec.ID).Err(); err != nil {
		return fmt.Errorf("failed to add session to set: %w", err)
	}
	return nil
}

// GetSession retrieves one session record. The second return is false on
// a miss.
func (s *Store) GetSession(ctx context.Context, id string) (session.Record, bool, error) {
	data, err := s.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return session.Record{}, false, nil
		}
		return session.Record{}, false, fmt.Errorf("failed to get session: %w", err)
	}
	var rec session.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return session.Record{}, false, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return rec, true, nil
}

// GetAllSessions retrieves every persisted session record. Records that
// cannot be read or parsed are skipped.
func (s *Store) GetAllSessions(ctx context.Context) ([]session.Record, error) {
	ids, err := s.client.SMembers(ctx, sessionsSetKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get session ids: %w", err)
	}
	out := make([]session.Record, 0, len(ids))
	for _, id := range ids {
		rec, ok, err := s.GetSession(ctx, id)
		if err != nil || !ok {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

// DeleteSession removes one persisted session.
func (s *Store) DeleteSession(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if err := s.client.SRem(ctx, sessionsSetKey, id).Err(); err != nil {
		return fmt.Errorf("failed to remove session from set: %w", err)
	}
	return nil
}

// SaveSessionsMany persists multiple session records in one pipeline.
func (s *Store) SaveSessionsMany(ctx context.Context, recs []session.Record) error {
	pipe := s.client.Pipeline()
	for _, rec := range recs {
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to marshal session %s: %w", rec.ID, err)
		}
		pipe.Set(ctx, sessionKey(rec.ID), data, DefaultSessionTTL)
		pipe.SAdd(ctx, sessionsSetKey, rec.ID)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save sessions: %w", err)
	}
	return nil
}

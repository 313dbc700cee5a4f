package scheduler

import (
	"context"

	"github.com/astroview/voprod/internal/logger"
	"github.com/astroview/voprod/internal/session"
	redisstore "github.com/astroview/voprod/internal/store/redis"
)

// SessionSyncer restores persisted sessions into the registry on startup.
type SessionSyncer struct {
	store    *redisstore.Store
	registry *session.Registry
	logger   logger.Logger
}

func NewSessionSyncer(
	store *redisstore.Store,
	registry *session.Registry,
	log logger.Logger,
) *SessionSyncer {
	return &SessionSyncer{
		store:    store,
		registry: registry,
		logger:   log,
	}
}

// Sync loads every persisted session record and installs it in the
// registry.
func (ss *SessionSyncer) Sync(ctx context.Context) error {
	recs, err := ss.store.GetAllSessions(ctx)
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		ss.logger.Info("no sessions found in redis")
		return nil
	}

	for _, rec := range recs {
		ss.registry.Put(session.FromRecord(rec))
	}
	ss.logger.Info("restored sessions from redis", logger.Int("count", len(recs)))
	return nil
}

package scheduler

import (
	"context"
	"time"

	"github.com/astroview/voprod/internal/logger"
	"github.com/astroview/voprod/internal/session"
	redisstore "github.com/astroview/voprod/internal/store/redis"
)

const (
	// DefaultSessionTTL is the idle time after which a session is collected.
	DefaultSessionTTL = 12 * time.Hour
)

// SessionGC drops resolution sessions that have been idle past the TTL,
// from the registry and, best effort, from Redis.
type SessionGC struct {
	registry *session.Registry
	store    *redisstore.Store
	logger   logger.Logger
	interval time.Duration
	ttl      time.Duration
	stopCh   chan struct{}
}

func NewSessionGC(
	registry *session.Registry,
	store *redisstore.Store,
	log logger.Logger,
	interval time.Duration,
	ttl time.Duration,
) *SessionGC {
	if ttl == 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionGC{
		registry: registry,
		store:    store,
		logger:   log,
		interval: interval,
		ttl:      ttl,
		stopCh:   make(chan struct{}),
	}
}

// Start runs one collection immediately, then keeps collecting on the
// interval.
func (gc *SessionGC) Start(ctx context.Context) error {
	gc.Collect(ctx)

	ticker := time.NewTicker(gc.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				gc.Collect(ctx)
			case <-gc.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the collector.
func (gc *SessionGC) Stop() {
	close(gc.stopCh)
}

// Collect removes every session idle past the TTL.
func (gc *SessionGC) Collect(ctx context.Context) int {
	cutoff := time.Now().Add(-gc.ttl)
	idle := gc.registry.IdleSince(cutoff)

	for _, id := range idle {
		gc.registry.Delete(id)
		if gc.store != nil {
			if err := gc.store.DeleteSession(ctx, id); err != nil {
				gc.logger.Warn("failed to delete session from redis",
					logger.String("session_id", id),
					logger.Error(err))
			}
		}
	}

	if len(idle) > 0 {
		gc.logger.Info("collected idle sessions",
			logger.Int("deleted", len(idle)),
			logger.Int("remaining", gc.registry.Count()))
	} else {
		gc.logger.Debug("no idle sessions to collect")
	}
	return len(idle)
}

package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/astroview/voprod/internal/logger"
	"github.com/astroview/voprod/internal/sources/profiles"
)

// ProfileReloader periodically re-reads the archive-profiles file and
// swaps the compiled set.
type ProfileReloader struct {
	loader        *profiles.Loader
	mapper        *profiles.Mapper
	set           *profiles.Set
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	manualTrigger chan struct{}
}

func NewProfileReloader(
	profileFile string,
	set *profiles.Set,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
) *ProfileReloader {
	return &ProfileReloader{
		loader:        profiles.NewLoader(profileFile),
		mapper:        profiles.NewMapper(),
		set:           set,
		logger:        log,
		interval:      interval,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start loads the profiles once, then keeps them fresh on a ticker or a
// manual trigger.
func (pr *ProfileReloader) Start(ctx context.Context) error {
	if err := pr.Reload(); err != nil {
		return fmt.Errorf("initial profile load failed: %w", err)
	}

	ticker := time.NewTicker(pr.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := pr.Reload(); err != nil {
					pr.logger.Error("failed to reload profiles", logger.Error(err))
				}
			case <-pr.manualTrigger:
				pr.logger.Info("manual profile reload triggered")
				if err := pr.Reload(); err != nil {
					pr.logger.Error("failed to reload profiles", logger.Error(err))
				}
			case <-pr.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the reloader.
func (pr *ProfileReloader) Stop() {
	close(pr.stopCh)
}

// Reload re-reads the file and swaps the set. A bad file leaves the
// previous set in place.
func (pr *ProfileReloader) Reload() error {
	config, err := pr.loader.Load()
	if err != nil {
		return fmt.Errorf("failed to load profiles: %w", err)
	}
	compiled, err := pr.mapper.MapProfiles(config)
	if err != nil {
		return fmt.Errorf("failed to map profiles: %w", err)
	}
	pr.set.Replace(compiled)
	pr.logger.Info("archive profiles loaded", logger.Int("count", len(compiled)))
	return nil
}

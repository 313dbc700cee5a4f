package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/astroview/voprod/internal/config"
	"github.com/astroview/voprod/internal/httpserver"
	"github.com/astroview/voprod/internal/httpserver/deps"
	"github.com/astroview/voprod/internal/logger"
	"github.com/astroview/voprod/internal/products"
	"github.com/astroview/voprod/internal/redis"
	"github.com/astroview/voprod/internal/scheduler"
	"github.com/astroview/voprod/internal/session"
	"github.com/astroview/voprod/internal/sources/profiles"
	redisstore "github.com/astroview/voprod/internal/store/redis"
	"github.com/astroview/voprod/internal/table"
	"github.com/astroview/voprod/internal/version"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	redisClient *goredis.Client
	sessions    *session.Registry
	reloader    *scheduler.ProfileReloader
	gc          *scheduler.SessionGC
}

func New() *App {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	// Redis is optional: without it sessions and the DataLink cache are
	// memory-only.
	var redisClient *goredis.Client
	var store *redisstore.Store
	if cfg.RedisAddr != "" {
		loggerClient.Infof("Connecting to Redis at %s", cfg.RedisAddr)
		client, err := redis.New(redis.ConnectOptions{
			Addr:           cfg.RedisAddr,
			User:           cfg.RedisUser,
			Password:       cfg.RedisPassword,
			RedisDB:        cfg.RedisDB,
			DialTimeout:    cfg.RedisDT,
			ReadTimeout:    cfg.RedisRT,
			WriteTimeout:   cfg.RedisWT,
			PoolSize:       cfg.RedisPoolSize,
			ConnectTimeout: cfg.RedisConnectTimeout,
			RetryInterval:  cfg.RedisRetryInterval,
			MaxWait:        cfg.RedisMaxWait,
			PingTimeout:    cfg.RedisPingTimeout,
			WarnThreshold:  cfg.RedisWarnThreshold,
		}, loggerClient)
		if err != nil {
			loggerClient.Errorf("Failed to connect to Redis: %v", err)
			os.Exit(1)
		}
		redisClient = client
		store = redisstore.NewStore(client)
		loggerClient.Info("Redis initialized successfully")
	} else {
		loggerClient.Info("Redis not configured, running memory-only")
	}

	sessions := session.NewRegistry()

	// Restore persisted sessions
	if store != nil {
		syncer := scheduler.NewSessionSyncer(store, sessions, loggerClient)
		if err := syncer.Sync(context.Background()); err != nil {
			loggerClient.Warn("failed to restore sessions from redis",
				logger.Error(err))
		}
	}

	// DataLink fetcher, optionally backed by the Redis cache
	var fetcher table.Fetcher = table.NewHTTPFetcher(cfg.FetchTimeout, loggerClient)
	if store != nil {
		fetcher = redisstore.NewCachedFetcher(store, fetcher, cfg.DatalinkCacheTTL, loggerClient)
	}

	resolver := products.NewResolver(fetcher, loggerClient)
	profileSet := profiles.NewSet()

	var reloader *scheduler.ProfileReloader
	var reloadTrigger chan struct{}
	if cfg.ProfileFile != "" {
		loggerClient.Info("profiles file configured, initializing reloader",
			logger.String("file", cfg.ProfileFile))
		reloadTrigger = make(chan struct{}, 1)
		reloader = scheduler.NewProfileReloader(
			cfg.ProfileFile,
			profileSet,
			loggerClient,
			cfg.ReloadInterval,
			reloadTrigger,
		)
	} else {
		loggerClient.Info("no profiles file configured, using default options")
	}

	gc := scheduler.NewSessionGC(
		sessions,
		store,
		loggerClient,
		cfg.SessionGCInterval,
		cfg.SessionTTL,
	)

	d := deps.Deps{
		Logger:          loggerClient,
		StartTime:       time.Now(),
		Version:         version.Version,
		Commit:          version.Commit,
		BuildDate:       version.BuildDate,
		GoVersion:       version.GoVersion,
		Resolver:        resolver,
		Sessions:        sessions,
		Profiles:        profileSet,
		RedisClient:     redisClient,
		Store:           store,
		AdminCIDRS:      cfg.AdminCIDRS,
		TrustProxy:      cfg.TrustProxy,
		RateLimitBurst:  cfg.RateLimitBurst,
		RateLimitPerMin: cfg.RateLimitPerMin,
		ProfileFile:     cfg.ProfileFile,
		ReloadTrigger:   reloadTrigger,
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      server,
		redisClient: redisClient,
		sessions:    sessions,
		reloader:    reloader,
		gc:          gc,
	}
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting voprod v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("voprod %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if a.reloader != nil {
		if err := a.reloader.Start(ctx); err != nil {
			return fmt.Errorf("failed to start profile reloader: %w", err)
		}
		a.logger.Info("profile reloader started",
			logger.Duration("interval", a.cfg.ReloadInterval))
	}

	if err := a.gc.Start(ctx); err != nil {
		return fmt.Errorf("failed to start session gc: %w", err)
	}
	a.logger.Info("session gc started",
		logger.Duration("interval", a.cfg.SessionGCInterval),
		logger.Duration("ttl", a.cfg.SessionTTL))

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	if a.reloader != nil {
		a.reloader.Stop()
	}
	a.gc.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warnf("failed to close redis: %v", err)
		} else {
			a.logger.Info("✅ Redis closed cleanly")
		}
	}

	a.logger.Info("✅ voprod stopped cleanly")
	return nil
}

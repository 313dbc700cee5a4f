package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s

	AdminCIDRS []string // IPs/CIDRs allowed to hit the admin endpoints (empty = no filter)
	TrustProxy bool     // true when running behind a trusted reverse proxy

	RateLimitBurst  int // per-IP burst for the resolve endpoints
	RateLimitPerMin int // per-IP refill per minute

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	ProfileFile    string        // path to the display-option profiles YAML (optional, empty = defaults only)
	ReloadInterval time.Duration // interval to reload the profiles file (default: 24h)

	FetchTimeout     time.Duration // timeout for a single DataLink table fetch (default: 20s)
	DatalinkCacheTTL time.Duration // TTL for cached DataLink tables in Redis (default: 1h)

	DefaultCutoutDeg float64       // default cutout size in degrees when none is set per session
	SessionTTL       time.Duration // idle time after which a resolution session is collected
	SessionGCInterval time.Duration // interval to run session garbage collection

	// Redis (optional, empty addr = in-memory only)
	RedisAddr           string        // ex: "localhost:6379"
	RedisUser           string        // optional
	RedisPassword       string        // optional
	RedisDB             int           // Redis DB number
	RedisDT             time.Duration // Redis dial timeout (ex: 5s)
	RedisRT             time.Duration // Redis read timeout (ex: 3s)
	RedisWT             time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait        time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout    time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize       int           // Redis connection pool size
	RedisConnectTimeout time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval  time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold  int           // warn after this many attempts
}

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("VOPROD_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("VOPROD_SHUTDOWN_TIMEOUT", 5*time.Second),

		AdminCIDRS: getenvList("VOPROD_ADMIN_CIDRS"),
		TrustProxy: mustBool("VOPROD_TRUST_PROXY", false),

		RateLimitBurst:  getenvInt("VOPROD_RATE_LIMIT_BURST", 30),
		RateLimitPerMin: getenvInt("VOPROD_RATE_LIMIT_PER_MIN", 120),

		// Logging
		LogLevel:  getenv("VOPROD_LOG_LEVEL", "info"),
		PrettyLog: mustBool("VOPROD_PRETTY_LOG", true),

		// Display-option profiles
		ProfileFile:    getenv("VOPROD_PROFILE_FILE", ""),
		ReloadInterval: mustDuration("VOPROD_RELOAD_PROFILE_INTERVAL", 24*time.Hour),

		// DataLink fetch
		FetchTimeout:     mustDuration("VOPROD_FETCH_TIMEOUT", 20*time.Second),
		DatalinkCacheTTL: mustDuration("VOPROD_DATALINK_CACHE_TTL", time.Hour),

		// Resolution sessions
		DefaultCutoutDeg:  mustFloat("VOPROD_DEFAULT_CUTOUT_DEG", 0.0213),
		SessionTTL:        mustDuration("VOPROD_SESSION_TTL", 12*time.Hour),
		SessionGCInterval: mustDuration("VOPROD_SESSION_GC_INTERVAL", time.Hour),

		// Redis settings
		RedisAddr:           getenv("VOPROD_REDIS_ADDR", ""),
		RedisUser:           getenv("VOPROD_REDIS_USERNAME", "default"),
		RedisPassword:       getenv("VOPROD_REDIS_PASSWORD", ""),
		RedisDB:             getenvInt("VOPROD_REDIS_DB", 0),
		RedisDT:             mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:             mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:             mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:        mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:    mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:       getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout: mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:  mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:  getenvInt("REDIS_WARN_THRESHOLD", 3),
	}

	if cfg.DefaultCutoutDeg <= 0 {
		panic(fmt.Sprintf("❌ FATAL: VOPROD_DEFAULT_CUTOUT_DEG must be > 0, got %v", cfg.DefaultCutoutDeg))
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		if cfg.RedisPassword != "" {
			cfgCopy.RedisPassword = "***REDACTED***"
		}
		if cfg.RedisUser != "" {
			cfgCopy.RedisUser = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

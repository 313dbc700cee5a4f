package deps

import (
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/astroview/voprod/internal/logger"
	"github.com/astroview/voprod/internal/products"
	"github.com/astroview/voprod/internal/session"
	"github.com/astroview/voprod/internal/sources/profiles"
	redisstore "github.com/astroview/voprod/internal/store/redis"
)

type Deps struct {
	Logger    logger.Logger
	StartTime time.Time
	Version   string
	Commit    string
	BuildDate string
	GoVersion string

	Resolver *products.Resolver // the resolution engine
	Sessions *session.Registry  // live resolution sessions
	Profiles *profiles.Set      // per-archive display options

	RedisClient *redis.Client     // nil when Redis is not configured
	Store       *redisstore.Store // nil when Redis is not configured

	AdminCIDRS []string // IPs allowed to hit admin endpoints
	TrustProxy bool     // resolve client IPs from proxy headers

	RateLimitBurst  int
	RateLimitPerMin int

	ProfileFile   string        // path to the profiles file ("" = defaults only)
	ReloadTrigger chan struct{} // manual profile reload (nil when no profile file)
}

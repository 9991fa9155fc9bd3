package deps

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/singme/internal/fixtures"
	"github.com/MrSnakeDoc/singme/internal/httpserver/mw"
	"github.com/MrSnakeDoc/singme/internal/logger"
	"github.com/MrSnakeDoc/singme/internal/metrics"
	"github.com/MrSnakeDoc/singme/internal/recommendation"
)

// Pinger reports whether a backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Logger          logger.Logger
	StartTime       time.Time
	Version         string
	Commit          string
	BuildDate       string
	GoVersion       string
	Recommendations *recommendation.Service
	Scenario        *fixtures.Scenario // nil unless running in the test environment
	Metrics         *metrics.Metrics
	Database        Pinger        // checked by /readyz
	RedisClient     *redis.Client // nil when Redis is not configured
	Limiter         mw.Limiter    // nil disables rate limiting
	AllowedHosts    []string      // Host headers allowed on /metrics and /e2e
	AllowedCIDRS    []string      // IPs allowed on /readyz, /metrics and /e2e
	TrustProxy      bool          // true if running behind a trusted reverse proxy
}

package config

import (
	"fmt"
	"log"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	EnvProduction  = "production"
	EnvDevelopment = "development"
	EnvTest        = "test"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	ListenPort      string        // ex: ":5000"
	ShutdownTimeout time.Duration // ex: 5s
	RequestTimeout  time.Duration // per-request deadline applied by the router

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	Env string // "production" | "development" | "test"; test mounts the /e2e routes

	// Database
	DBDriver    string // "postgres" | "sqlite"
	DatabaseURL string // postgres connection string or sqlite DSN
	DBMaxConns  int32  // pgxpool max connections, 0 = pgx default

	StatsInterval time.Duration // interval to refresh the tier population gauge

	// Rate limiting on write routes
	RateLimitBurst     int
	RateLimitPerMinute int

	CORSOrigins []string // allowed CORS origins, "*" by default

	// Redis, optional: when RedisAddr is set the rate limiter is shared through Redis
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

	AllowedHosts []string // optional, restrict /readyz, /metrics and /e2e to specific Host headers
	AllowedCIDRS []string // optional, restrict /readyz, /metrics and /e2e to specific IPs
	TrustProxy   bool     // true => trust X-Forwarded-For headers
}

// IsTest reports whether the e2e scenario routes should be mounted.
func (c *Config) IsTest() bool { return c.Env == EnvTest }

// RedisEnabled reports whether a Redis address was configured.
func (c *Config) RedisEnabled() bool { return c.RedisAddr != "" }

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("SINGME_LISTEN_PORT", ":5000"),
		ShutdownTimeout: mustDuration("SINGME_SHUTDOWN_TIMEOUT", 5*time.Second),
		RequestTimeout:  mustDuration("SINGME_REQUEST_TIMEOUT", 10*time.Second),

		// Logging
		LogLevel:  getenv("SINGME_LOG_LEVEL", "info"),
		PrettyLog: mustBool("SINGME_PRETTY_LOG", false),

		Env: oneOf("SINGME_ENV", EnvProduction, EnvProduction, EnvDevelopment, EnvTest),

		// Database
		DBDriver:    oneOf("SINGME_DB_DRIVER", DriverPostgres, DriverPostgres, DriverSQLite),
		DatabaseURL: requireEnv("SINGME_DATABASE_URL"),
		DBMaxConns:  int32(intInRange("SINGME_DB_MAX_CONNS", 0, 0, math.MaxInt32)),

		StatsInterval: mustDuration("SINGME_STATS_INTERVAL", 30*time.Second),

		RateLimitBurst:     getenvInt("SINGME_RATE_LIMIT_BURST", 20),
		RateLimitPerMinute: getenvInt("SINGME_RATE_LIMIT_PER_MIN", 60),

		CORSOrigins: splitAndTrim(getenv("SINGME_CORS_ORIGINS", "*")),

		// Redis settings
		RedisAddr:           getenv("SINGME_REDIS_ADDR", ""),
		RedisUser:           getenv("SINGME_REDIS_USERNAME", ""),
		RedisPassword:       getenv("SINGME_REDIS_PASSWORD", ""),
		RedisDB:             getenvInt("SINGME_REDIS_DB", 0),
		RedisDT:             mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:             mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:             mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:        mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:    mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:       getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout: mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:  mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:  getenvInt("REDIS_WARN_THRESHOLD", 3),

		// Access restrictions
		AllowedHosts: splitAndTrim(getenv("SINGME_ALLOWED_HOSTS", "")),
		AllowedCIDRS: splitAndTrim(getenv("SINGME_ALLOWED_CIDRS", "")),
		TrustProxy:   mustBool("SINGME_TRUST_PROXY", false),
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		cfgCopy.DatabaseURL = "***REDACTED***"
		cfgCopy.RedisPassword = "***REDACTED***"
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

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

// oneOf returns the value of key, or def when unset. Any value outside allowed panics.
func oneOf(key, def string, allowed ...string) string {
	v := strings.ToLower(getenv(key, def))
	for _, a := range allowed {
		if v == a {
			return v
		}
	}
	panic(fmt.Sprintf("❌ FATAL: Invalid value for %s: %q (allowed: %s)", key, v, strings.Join(allowed, ", ")))
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

// intInRange returns the integer value of key, or def when unset. Values that
// do not parse or fall outside [lo, hi] panic.
func intInRange(key string, def, lo, hi int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil || i < lo || i > hi {
		panic(fmt.Sprintf("❌ FATAL: Invalid value for %s: %q (want an integer in [%d, %d])", key, v, lo, hi))
	}
	return i
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

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}

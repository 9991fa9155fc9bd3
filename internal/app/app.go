package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/singme/internal/config"
	"github.com/MrSnakeDoc/singme/internal/fixtures"
	"github.com/MrSnakeDoc/singme/internal/httpserver"
	"github.com/MrSnakeDoc/singme/internal/httpserver/deps"
	"github.com/MrSnakeDoc/singme/internal/httpserver/mw"
	"github.com/MrSnakeDoc/singme/internal/logger"
	"github.com/MrSnakeDoc/singme/internal/metrics"
	"github.com/MrSnakeDoc/singme/internal/recommendation"
	"github.com/MrSnakeDoc/singme/internal/redis"
	"github.com/MrSnakeDoc/singme/internal/scheduler"
	"github.com/MrSnakeDoc/singme/internal/store/postgres"
	redisstore "github.com/MrSnakeDoc/singme/internal/store/redis"
	"github.com/MrSnakeDoc/singme/internal/store/sqlite"
	"github.com/MrSnakeDoc/singme/internal/version"
)

const startupTimeout = 30 * time.Second

var (
	_ recommendation.Store = (*sqlite.Store)(nil)
	_ recommendation.Store = (*postgres.Store)(nil)
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	store       recommendation.Store
	redisClient *goredis.Client
	stats       *scheduler.StatsCollector
}

func New() (_ *App, err error) {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	var cleanup closers
	defer func() {
		if err != nil {
			if cerr := cleanup.closeAll(); cerr != nil {
				loggerClient.Warnf("failed to release startup resources: %v", cerr)
			}
		}
	}()

	// Database first - fail fast if unavailable
	store, err := openStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.DBDriver, err)
	}
	cleanup.add(store.Close)
	loggerClient.Info("database initialized", logger.String("driver", cfg.DBDriver))

	m := metrics.New()
	svc := recommendation.NewService(store, loggerClient, recommendation.WithMetrics(m))

	// Redis is optional and only backs the shared rate limiter
	var (
		redisClient *goredis.Client
		limiter     mw.Limiter
	)
	if cfg.RedisEnabled() {
		redisClient, err = redis.New(ctx, redis.ConnectOptions{
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
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		cleanup.add(redisClient.Close)
		limiter = redisstore.NewRateLimiter(redisClient, cfg.RateLimitPerMinute, time.Minute)
		loggerClient.Info("rate limiting shared through redis",
			logger.Int("per_minute", cfg.RateLimitPerMinute))
	} else {
		limiter = mw.NewMemoryLimiter(mw.RateLimitConfig{
			Burst:             cfg.RateLimitBurst,
			RefillPerIPPerMin: cfg.RateLimitPerMinute,
			MaxEntries:        10000,
		})
		loggerClient.Info("redis not configured, rate limiting per instance",
			logger.Int("burst", cfg.RateLimitBurst),
			logger.Int("per_minute", cfg.RateLimitPerMinute))
	}

	var scenario *fixtures.Scenario
	if cfg.IsTest() {
		cat, err := fixtures.DefaultCatalogue()
		if err != nil {
			return nil, fmt.Errorf("load fixture catalogue: %w", err)
		}
		scenario = fixtures.NewScenario(store, fixtures.NewFactory(cat, nil), loggerClient)
		loggerClient.Warn("test environment: /e2e routes are mounted")
	}

	d := deps.Deps{
		Logger:          loggerClient,
		StartTime:       time.Now(),
		Version:         version.Version,
		Commit:          version.Commit,
		BuildDate:       version.BuildDate,
		GoVersion:       version.GoVersion,
		Recommendations: svc,
		Scenario:        scenario,
		Metrics:         m,
		Database:        store,
		RedisClient:     redisClient,
		Limiter:         limiter,
		AllowedHosts:    cfg.AllowedHosts,
		AllowedCIDRS:    cfg.AllowedCIDRS,
		TrustProxy:      cfg.TrustProxy,
	}

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      httpserver.New(cfg, d),
		store:       store,
		redisClient: redisClient,
		stats:       scheduler.NewStatsCollector(store, m, loggerClient, cfg.StatsInterval),
	}, nil
}

func openStore(ctx context.Context, cfg *config.Config) (recommendation.Store, error) {
	switch cfg.DBDriver {
	case config.DriverSQLite:
		return sqlite.New(ctx, cfg.DatabaseURL)
	case config.DriverPostgres:
		return postgres.New(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
	default:
		return nil, fmt.Errorf("unsupported driver %q", cfg.DBDriver)
	}
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting singme %s on %s (env=%s)", version.String(), a.cfg.ListenPort, a.cfg.Env)
	defer func() { _ = a.logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.stats.Start(ctx)
	a.logger.Info("stats collector started",
		logger.Duration("interval", a.cfg.StatsInterval))

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case runErr = <-errCh:
	}

	a.stats.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil && runErr == nil {
		runErr = fmt.Errorf("failed to stop server: %w", err)
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warnf("failed to close redis: %v", err)
		} else {
			a.logger.Info("✅ Redis closed cleanly")
		}
	}

	if err := a.store.Close(); err != nil {
		a.logger.Warnf("failed to close database: %v", err)
	} else {
		a.logger.Info("✅ Database closed cleanly")
	}

	if runErr == nil {
		a.logger.Info("✅ singme stopped cleanly")
	}
	return runErr
}

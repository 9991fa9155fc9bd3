package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/MrSnakeDoc/singme/internal/domain"
	"github.com/MrSnakeDoc/singme/internal/logger"
	"github.com/MrSnakeDoc/singme/internal/metrics"
)

// DefaultStatsInterval is used when no interval is configured.
const DefaultStatsInterval = 30 * time.Second

// TierCounter is the store query the collector runs.
type TierCounter interface {
	CountByTier(ctx context.Context, threshold int) (above, atOrBelow int, err error)
}

// StatsCollector periodically publishes how many recommendations sit in each
// tier of the random pick.
type StatsCollector struct {
	store    TierCounter
	metrics  *metrics.Metrics
	logger   logger.Logger
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewStatsCollector creates a new stats collector
func NewStatsCollector(store TierCounter, m *metrics.Metrics, log logger.Logger, interval time.Duration) *StatsCollector {
	if interval <= 0 {
		interval = DefaultStatsInterval
	}
	return &StatsCollector{
		store:    store,
		metrics:  m,
		logger:   log,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start collects once, then keeps collecting every interval until Stop or ctx is done.
func (sc *StatsCollector) Start(ctx context.Context) {
	if err := sc.Collect(ctx); err != nil {
		sc.logger.Warn("initial stats collection failed", logger.Error(err))
	}

	ticker := time.NewTicker(sc.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := sc.Collect(ctx); err != nil {
					sc.logger.Error("stats collection failed", logger.Error(err))
				}
			case <-sc.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the collector. Safe to call more than once.
func (sc *StatsCollector) Stop() {
	sc.stopOnce.Do(func() { close(sc.stopCh) })
}

// Collect counts both tiers and updates the gauge.
func (sc *StatsCollector) Collect(ctx context.Context) error {
	top, rest, err := sc.store.CountByTier(ctx, domain.TopTierThreshold)
	if err != nil {
		return err
	}
	sc.metrics.SetTierPopulation(top, rest)

	sc.logger.Debug("tier population refreshed",
		logger.Int("top", top),
		logger.Int("rest", rest))
	return nil
}

package recorder

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rickgao/kalshi-trader/internal/model"
	"github.com/rickgao/kalshi-trader/internal/tick"
)

// MarketSource lists the markets to snapshot.
type MarketSource interface {
	ActiveMarkets(ctx context.Context, baseTicker string, date time.Time) ([]model.TempMarket, error)
}

// BookSource fetches order books.
type BookSource interface {
	OrderBook(ctx context.Context, ticker string) (model.OrderBook, error)
}

// SnapshotSink receives fetched snapshots.
type SnapshotSink interface {
	RecordSnapshot(at time.Time, book model.OrderBook)
}

// CollectorConfig holds snapshot collector settings.
type CollectorConfig struct {
	BaseTicker  string
	MinuteMarks []int         // Wall-clock minutes to snapshot on
	Concurrency int           // Max concurrent book fetches
	Timeout     time.Duration // Per-fetch timeout
}

// Collector snapshots every active market's order book on fixed minute
// marks. It rides the same tick loop as the strategies; a missed mark is
// skipped, never backfilled.
type Collector struct {
	cfg     CollectorConfig
	markets MarketSource
	books   BookSource
	sink    SnapshotSink
	ticks   *tick.Manager
	loc     *time.Location
	logger  *slog.Logger
}

// NewCollector creates a snapshot collector.
func NewCollector(cfg CollectorConfig, markets MarketSource, books BookSource, sink SnapshotSink, loc *time.Location, logger *slog.Logger) (*Collector, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	ticks, err := tick.New(time.Minute,
		tick.WithLocation(loc),
		tick.WithName("snapshot-collector"),
		tick.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}
	// Validate the marks up front rather than on the first tick.
	if err := ticks.AlignToMinuteMarks(time.Now().In(loc), cfg.MinuteMarks); err != nil {
		return nil, err
	}

	return &Collector{
		cfg:     cfg,
		markets: markets,
		books:   books,
		sink:    sink,
		ticks:   ticks,
		loc:     loc,
		logger:  logger,
	}, nil
}

// OnTick snapshots all active markets when a minute mark has arrived.
func (c *Collector) OnTick(ctx context.Context, now time.Time) {
	if !c.ticks.Ready(now) {
		return
	}
	if err := c.ticks.AlignToMinuteMarks(now, c.cfg.MinuteMarks); err != nil {
		c.logger.Error("align snapshot marks", "error", err)
		return
	}

	c.snapshotAll(ctx, now)
}

// snapshotAll fetches every market's book concurrently, bounded by the
// configured concurrency.
func (c *Collector) snapshotAll(ctx context.Context, now time.Time) {
	start := time.Now()

	markets, err := c.markets.ActiveMarkets(ctx, c.cfg.BaseTicker, now.In(c.loc))
	if err != nil {
		c.logger.Warn("list markets for snapshot", "error", err)
		return
	}
	if len(markets) == 0 {
		c.logger.Debug("no active markets to snapshot")
		return
	}

	// Semaphore for bounded concurrency.
	sem := make(chan struct{}, c.cfg.Concurrency)
	var wg sync.WaitGroup
	var fetched, errors atomic.Int64

	for _, market := range markets {
		wg.Add(1)
		go func(ticker string) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				return
			}

			if err := c.snapshotMarket(ctx, ticker, now); err != nil {
				c.logger.Warn("failed to snapshot market",
					"ticker", ticker,
					"err", err,
				)
				errors.Add(1)
				return
			}

			fetched.Add(1)
		}(market.Ticker)
	}

	wg.Wait()

	c.logger.Info("snapshot cycle complete",
		"markets", len(markets),
		"fetched", fetched.Load(),
		"errors", errors.Load(),
		"duration", time.Since(start),
	)
}

func (c *Collector) snapshotMarket(ctx context.Context, ticker string, now time.Time) error {
	fetchCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	book, err := c.books.OrderBook(fetchCtx, ticker)
	if err != nil {
		return err
	}

	c.sink.RecordSnapshot(now, book)
	return nil
}

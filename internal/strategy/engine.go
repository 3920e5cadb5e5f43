package strategy

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rickgao/kalshi-trader/internal/fees"
	"github.com/rickgao/kalshi-trader/internal/model"
	"github.com/rickgao/kalshi-trader/internal/tick"
)

// Engine runs the resting-order sweep against one event's temperature
// ladder. Each tick it compares the running daily maximum against every
// market's cap strike and sweeps the side that can no longer win; when the
// daily maximum has just pushed past the latest print it additionally bids
// the bracketing market on the expectation of a further new high.
type Engine struct {
	cfg    Config
	venue  Venue
	signal Signal
	fees   fees.Model
	ticks  *tick.Manager
	logger *slog.Logger

	loc *time.Location

	// Market cache, reloaded on the first tick of each local day.
	markets   []model.TempMarket
	cacheDate string
}

// NewEngine builds a sweep engine from its config. The venue supplies
// markets and books, the signal supplies temperatures.
func NewEngine(cfg Config, venue Venue, signal Signal, loc *time.Location, logger *slog.Logger) (*Engine, error) {
	if cfg.BaseTicker == "" {
		return nil, fmt.Errorf("strategy %s: base ticker required", cfg.Name)
	}
	if cfg.MaxNotionalCents <= 0 {
		return nil, fmt.Errorf("strategy %s: max notional must be positive", cfg.Name)
	}

	opts := []tick.Option{
		tick.WithName(cfg.Name),
		tick.WithLocation(loc),
		tick.WithLogger(logger),
	}
	if cfg.Window != nil {
		opts = append(opts, tick.WithWindow(cfg.Window.Start, cfg.Window.End))
	}
	ticks, err := tick.New(cfg.TickInterval, opts...)
	if err != nil {
		return nil, fmt.Errorf("strategy %s: %w", cfg.Name, err)
	}

	return &Engine{
		cfg:    cfg,
		venue:  venue,
		signal: signal,
		fees:   fees.DefaultModel(),
		ticks:  ticks,
		logger: logger.With("strategy", cfg.Name),
		loc:    loc,
	}, nil
}

// Name returns the configured strategy name.
func (e *Engine) Name() string { return e.cfg.Name }

// OnTick evaluates the sweep if the tick interval has elapsed. A nil
// request with nil error means no action this tick.
func (e *Engine) OnTick(ctx context.Context, now time.Time) (*model.ActionRequest, error) {
	if !e.ticks.ReadyWithAdvance(now) {
		return nil, nil
	}

	if err := e.loadMarkets(ctx, now); err != nil {
		return nil, fmt.Errorf("load markets: %w", err)
	}
	if len(e.markets) == 0 {
		return nil, nil
	}

	reference, err := e.signal.ReferenceValue(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("reference value: %w", err)
	}

	candidates := Scan(ctx, e.markets, reference, e.venue.OrderBook, ScanParams{
		Fees:             e.fees,
		UncertaintyCents: e.cfg.UncertaintyCents,
		MaxNotionalCents: e.cfg.MaxNotionalCents,
		Strategy:         e.cfg.Name,
	}, e.logger)

	if peak := e.scanPeak(ctx, now, reference); len(peak) > 0 {
		candidates = append(candidates, peak...)
	}

	if len(candidates) == 0 {
		return nil, nil
	}

	e.logger.Info("sweep produced candidates",
		"count", len(candidates),
		"reference_f", reference.Fahrenheit(),
	)
	return &model.ActionRequest{Strategy: e.cfg.Name, Orders: candidates}, nil
}

// scanPeak bids the bracketing market when the running maximum exceeds the
// latest instantaneous print, meaning the day's high is still climbing.
// Failures here degrade to no peak orders; the sweep result stands.
func (e *Engine) scanPeak(ctx context.Context, now time.Time, reference model.Temperature) []model.CandidateOrder {
	instant, err := e.signal.Instantaneous(ctx, now)
	if err != nil {
		e.logger.Warn("instantaneous reading unavailable", "error", err)
		return nil
	}
	if reference.Fahrenheit() <= instant.Fahrenheit() {
		return nil
	}

	orders, err := ScanPeak(ctx, e.markets, reference, e.venue.OrderBook, ScanParams{
		Fees:             e.fees,
		UncertaintyCents: e.cfg.PeakUncertaintyCents,
		MaxNotionalCents: e.cfg.MaxNotionalCents,
		Strategy:         e.cfg.Name,
	}, e.logger)
	if err != nil {
		e.logger.Warn("peak scan skipped", "error", err)
		return nil
	}
	return orders
}

// loadMarkets refreshes the market cache on the first tick of each local
// day. The event ticker embeds the date, so yesterday's markets are stale
// the moment the day rolls over.
func (e *Engine) loadMarkets(ctx context.Context, now time.Time) error {
	day := now.In(e.loc).Format("2006-01-02")
	if day == e.cacheDate && e.markets != nil {
		return nil
	}

	markets, err := e.venue.ActiveMarkets(ctx, e.cfg.BaseTicker, now.In(e.loc))
	if err != nil {
		return err
	}

	e.markets = markets
	e.cacheDate = day
	e.logger.Info("market set loaded", "date", day, "markets", len(markets))
	return nil
}

package strategy

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rickgao/kalshi-trader/internal/model"
	"github.com/rickgao/kalshi-trader/internal/tick"
)

// StartOfDayPredict logs where the morning reading sits on the day's
// temperature ladder. It places no orders yet; it exists to validate the
// market-selection plumbing against live data before sizing logic lands.
type StartOfDayPredict struct {
	cfg    Config
	venue  Venue
	signal Signal
	ticks  *tick.Manager
	logger *slog.Logger
	loc    *time.Location
}

// NewStartOfDayPredict builds the start-of-day observer.
func NewStartOfDayPredict(cfg Config, venue Venue, signal Signal, loc *time.Location, logger *slog.Logger) (*StartOfDayPredict, error) {
	if cfg.BaseTicker == "" {
		return nil, fmt.Errorf("strategy %s: base ticker required", cfg.Name)
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

	return &StartOfDayPredict{
		cfg:    cfg,
		venue:  venue,
		signal: signal,
		ticks:  ticks,
		logger: logger.With("strategy", cfg.Name),
		loc:    loc,
	}, nil
}

func (s *StartOfDayPredict) Name() string { return s.cfg.Name }

// OnTick records the bracketing market for the current reference value.
func (s *StartOfDayPredict) OnTick(ctx context.Context, now time.Time) (*model.ActionRequest, error) {
	if !s.ticks.ReadyWithAdvance(now) {
		return nil, nil
	}

	reference, err := s.signal.ReferenceValue(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("reference value: %w", err)
	}

	markets, err := s.venue.ActiveMarkets(ctx, s.cfg.BaseTicker, now.In(s.loc))
	if err != nil {
		return nil, fmt.Errorf("load markets: %w", err)
	}

	m, err := MarketContaining(markets, reference)
	if err != nil {
		s.logger.Warn("no bracketing market", "reference_f", reference.Fahrenheit(), "error", err)
		return nil, nil
	}

	s.logger.Info("start-of-day bracket",
		"ticker", m.Ticker,
		"reference_f", reference.Fahrenheit(),
	)
	return nil, nil
}

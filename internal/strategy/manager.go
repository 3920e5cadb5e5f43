package strategy

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rickgao/kalshi-trader/internal/model"
)

// Manager owns the configured strategy set and fans ticks out to each one.
// A failing strategy is logged and skipped; the rest of the set still runs.
type Manager struct {
	strategies []Strategy
	logger     *slog.Logger
}

// NewManager instantiates every enabled strategy in cfgs. Disabled entries
// are skipped and unknown types become inert placeholders so a config typo
// cannot start trading under the wrong logic.
func NewManager(cfgs []Config, venue Venue, signal Signal, loc *time.Location, logger *slog.Logger) (*Manager, error) {
	m := &Manager{logger: logger}

	for _, cfg := range cfgs {
		if !cfg.Enabled {
			logger.Info("strategy disabled", "strategy", cfg.Name)
			continue
		}

		var (
			s   Strategy
			err error
		)
		switch cfg.Type {
		case TypeRestingOrderSweep:
			s, err = NewEngine(cfg, venue, signal, loc, logger)
		case TypeStartOfDayPredict:
			s, err = NewStartOfDayPredict(cfg, venue, signal, loc, logger)
		default:
			logger.Warn("unknown strategy type, running inert", "strategy", cfg.Name)
			s = NewInert(cfg.Name)
		}
		if err != nil {
			return nil, err
		}

		m.strategies = append(m.strategies, s)
		logger.Info("strategy registered", "strategy", s.Name(), "type", cfg.Type.String())
	}

	return m, nil
}

// Len returns the number of active strategies.
func (m *Manager) Len() int {
	return len(m.strategies)
}

// OnTick runs every strategy for this tick and collects the non-empty
// action requests.
func (m *Manager) OnTick(ctx context.Context, now time.Time) []*model.ActionRequest {
	var out []*model.ActionRequest

	for _, s := range m.strategies {
		req, err := m.tickOne(ctx, s, now)
		if err != nil {
			m.logger.Error("strategy tick failed", "strategy", s.Name(), "error", err)
			continue
		}
		if req == nil || req.Empty() {
			continue
		}
		out = append(out, req)
	}

	return out
}

// tickOne runs a single strategy, converting a panic into an error so one
// misbehaving strategy cannot take down the whole set.
func (m *Manager) tickOne(ctx context.Context, s Strategy, now time.Time) (req *model.ActionRequest, err error) {
	defer func() {
		if r := recover(); r != nil {
			req = nil
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return s.OnTick(ctx, now)
}

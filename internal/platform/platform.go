// Package platform drives the trading loop. One second-resolution heartbeat
// fans out to the account refresher, the data collectors, and the strategy
// set; orders flow from strategies through risk validation to execution
// within the same beat. Every stage gates itself on its own interval, so the
// loop stays a plain sequential pass.
package platform

import (
	"context"
	"log/slog"
	"time"

	"github.com/rickgao/kalshi-trader/internal/execution"
	"github.com/rickgao/kalshi-trader/internal/model"
	"github.com/rickgao/kalshi-trader/internal/risk"
	"github.com/rickgao/kalshi-trader/internal/strategy"
)

// HeartbeatInterval is the base cadence of the trading loop.
const HeartbeatInterval = time.Second

// Collector is a tick-gated background task riding the heartbeat.
type Collector interface {
	OnTick(ctx context.Context, now time.Time)
}

// Executor drives admitted batches to the venue.
type Executor interface {
	Process(ctx context.Context, req *model.ActionRequest) []execution.Result
}

// Platform owns the heartbeat and the stage ordering.
type Platform struct {
	risk       *risk.Manager
	strategies *strategy.Manager
	exec       Executor
	collectors []Collector
	logger     *slog.Logger

	beats uint64
}

// New assembles a platform. Collectors may be empty when recording is
// disabled.
func New(riskMgr *risk.Manager, strategies *strategy.Manager, exec Executor, collectors []Collector, logger *slog.Logger) *Platform {
	if logger == nil {
		logger = slog.Default()
	}
	return &Platform{
		risk:       riskMgr,
		strategies: strategies,
		exec:       exec,
		collectors: collectors,
		logger:     logger,
	}
}

// Run beats until ctx is canceled. A beat in flight completes before Run
// returns; cancellation is only observed between beats.
func (p *Platform) Run(ctx context.Context) error {
	ticker := time.NewTicker(HeartbeatInterval)
	defer ticker.Stop()

	p.logger.Info("trading loop started",
		"heartbeat", HeartbeatInterval,
		"strategies", p.strategies.Len(),
	)

	// First beat immediately rather than one interval in.
	p.beat(ctx, time.Now())

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("trading loop stopped", "beats", p.beats)
			return ctx.Err()
		case now := <-ticker.C:
			p.beat(ctx, now)
		}
	}
}

// beat runs one pass: account state first, data collectors next, then
// strategies and execution. Risk must see the freshest snapshot before any
// order is validated.
func (p *Platform) beat(ctx context.Context, now time.Time) {
	p.beats++

	p.risk.OnTick(ctx, now)

	for _, c := range p.collectors {
		c.OnTick(ctx, now)
	}

	requests := p.strategies.OnTick(ctx, now)
	for _, req := range requests {
		results := p.exec.Process(ctx, req)
		p.report(req, results)
	}
}

func (p *Platform) report(req *model.ActionRequest, results []execution.Result) {
	var submitted, rejected, failed int
	for _, r := range results {
		switch {
		case r.Submitted:
			submitted++
		case r.Rejected:
			rejected++
		case r.Err != nil:
			failed++
		}
	}

	p.logger.Info("batch processed",
		"strategy", req.Strategy,
		"orders", len(results),
		"submitted", submitted,
		"rejected", rejected,
		"failed", failed,
	)
}

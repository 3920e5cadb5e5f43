// Package risk validates candidate orders against account state. It keeps a
// periodically refreshed snapshot of balance and positions and enforces
// per-strategy value-at-risk budgets. Before the first successful snapshot
// every order is rejected; trading on unknown account state is never safe.
package risk

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rickgao/kalshi-trader/internal/fees"
	"github.com/rickgao/kalshi-trader/internal/model"
	"github.com/rickgao/kalshi-trader/internal/tick"
)

// DefaultRefreshInterval is how often the account snapshot is refreshed.
const DefaultRefreshInterval = 60 * time.Second

// AccountReader reads balance and positions from the venue.
type AccountReader interface {
	GetBalance(ctx context.Context) (model.Cents, error)
	GetPositions(ctx context.Context) ([]model.Position, error)
}

// Detail is one account snapshot.
type Detail struct {
	Balance   model.Cents
	Positions map[string]model.Position
	At        time.Time
}

// Budget tracks one strategy's value-at-risk allowance. Used capital is
// never released back; a restart resets the ledger from a clean snapshot.
type Budget struct {
	TotalCents model.Cents
	UsedCents  model.Cents
}

// Remaining returns the unspent allowance.
func (b Budget) Remaining() model.Cents {
	return b.TotalCents - b.UsedCents
}

// Manager holds the account snapshot and budget ledger.
type Manager struct {
	account AccountReader
	fees    fees.Model
	ticks   *tick.Manager
	logger  *slog.Logger

	mu      sync.Mutex
	detail  Detail
	haveSnp bool
	budgets map[string]*Budget
}

// Option configures a Manager.
type Option func(*Manager)

// WithRefreshInterval overrides the snapshot refresh cadence. Non-positive
// intervals keep the default.
func WithRefreshInterval(d time.Duration) Option {
	return func(m *Manager) {
		if t, err := tick.New(d, tick.WithName("risk"), tick.WithLogger(m.logger)); err == nil {
			m.ticks = t
		}
	}
}

// NewManager creates a risk manager. Budgets maps strategy name to its
// total value-at-risk allowance in cents.
func NewManager(account AccountReader, budgets map[string]model.Cents, logger *slog.Logger, opts ...Option) (*Manager, error) {
	ticks, err := tick.New(DefaultRefreshInterval, tick.WithName("risk"), tick.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	m := &Manager{
		account: account,
		fees:    fees.DefaultModel(),
		ticks:   ticks,
		logger:  logger,
		budgets: make(map[string]*Budget, len(budgets)),
	}
	for name, total := range budgets {
		if total <= 0 {
			return nil, fmt.Errorf("risk budget for %s must be positive, got %d", name, total)
		}
		m.budgets[name] = &Budget{TotalCents: total}
	}

	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// OnTick refreshes the account snapshot when the refresh interval has
// elapsed. A failed refresh keeps the previous snapshot; validation
// continues against stale but known state.
func (m *Manager) OnTick(ctx context.Context, now time.Time) {
	if !m.ticks.ReadyWithAdvance(now) {
		return
	}
	if err := m.Refresh(ctx, now); err != nil {
		m.logger.Error("account refresh failed", "error", err)
	}
}

// Refresh fetches balance and positions immediately.
func (m *Manager) Refresh(ctx context.Context, now time.Time) error {
	balance, err := m.account.GetBalance(ctx)
	if err != nil {
		return fmt.Errorf("balance: %w", err)
	}
	positions, err := m.account.GetPositions(ctx)
	if err != nil {
		return fmt.Errorf("positions: %w", err)
	}

	byTicker := make(map[string]model.Position, len(positions))
	for _, p := range positions {
		byTicker[p.Ticker] = p
	}

	m.mu.Lock()
	m.detail = Detail{Balance: balance, Positions: byTicker, At: now}
	m.haveSnp = true
	m.mu.Unlock()

	m.logger.Info("account snapshot refreshed",
		"balance", balance.String(),
		"positions", len(positions),
	)
	return nil
}

// Snapshot returns the current account detail and whether one exists yet.
func (m *Manager) Snapshot() (Detail, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.detail, m.haveSnp
}

// RequiredBalance returns the capital an order ties up: notional plus fee
// for buys, nothing for sells.
func (m *Manager) RequiredBalance(order model.CandidateOrder) model.Cents {
	if order.Side == model.SideSell {
		return 0
	}
	return order.Notional() + m.fees.Fee(order.PriceCents, order.Count)
}

// IsTradeValid accepts or rejects one candidate order. An accepted buy
// draws down both the snapshot balance and the strategy's budget, so a
// batch of orders validated in sequence cannot overspend between
// refreshes. Sells require no capital and always pass.
func (m *Manager) IsTradeValid(order model.CandidateOrder) bool {
	required := m.RequiredBalance(order)
	if required == 0 {
		return true
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.haveSnp {
		m.logger.Info("order rejected before first account snapshot", "order", order.String())
		return false
	}
	if m.detail.Balance < required {
		m.logger.Info("order rejected on balance",
			"order", order.String(),
			"required", required.String(),
			"balance", m.detail.Balance.String(),
		)
		return false
	}

	budget, ok := m.budgets[order.Strategy]
	if !ok {
		m.logger.Info("order rejected, no budget for strategy",
			"order", order.String(),
			"strategy", order.Strategy,
		)
		return false
	}
	if budget.Remaining() < required {
		m.logger.Info("order rejected on budget",
			"order", order.String(),
			"strategy", order.Strategy,
			"required", required.String(),
			"remaining", budget.Remaining().String(),
		)
		return false
	}

	m.detail.Balance -= required
	budget.UsedCents += required
	return true
}

// Package execution is the last gate before the venue: it stamps admitted
// orders with client order IDs and submits them, or logs them when live
// trading is switched off. Submission failures are recorded, never retried;
// the book may have moved and the next tick rescans from scratch.
package execution

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/rickgao/kalshi-trader/internal/api"
	"github.com/rickgao/kalshi-trader/internal/model"
)

// IDGenerator produces process-unique client order IDs. IDs embed the
// process start time so two runs never collide on the venue's idempotency
// key.
type IDGenerator struct {
	prefix  int64
	counter atomic.Int64
}

// NewIDGenerator seeds the generator with the current time.
func NewIDGenerator() *IDGenerator {
	return &IDGenerator{prefix: time.Now().Unix()}
}

// Next returns the next client order ID, e.g. "1756400000_0000001".
func (g *IDGenerator) Next() string {
	return fmt.Sprintf("%d_%07d", g.prefix, g.counter.Add(1))
}

// Validator admits or rejects candidate orders.
type Validator interface {
	IsTradeValid(order model.CandidateOrder) bool
}

// Submitter places orders on the venue.
type Submitter interface {
	CreateOrder(ctx context.Context, order model.Order) (*api.CreateOrderResponse, error)
}

// Result records one candidate's outcome through the execution stage.
type Result struct {
	Order     model.Order
	Rejected  bool // Failed risk validation
	Submitted bool
	VenueID   uuid.UUID
	Err       error
}

// Manager drives candidate orders through validation and submission.
type Manager struct {
	submitter Submitter
	validator Validator
	ids       *IDGenerator
	logger    *slog.Logger

	// Orders only reach the venue when enabled; everything upstream runs
	// either way so a dry run exercises the full pipeline.
	enabled bool
}

// NewManager creates an execution manager. Live submission is off unless
// enabled is set.
func NewManager(submitter Submitter, validator Validator, enabled bool, logger *slog.Logger) *Manager {
	return &Manager{
		submitter: submitter,
		validator: validator,
		ids:       NewIDGenerator(),
		logger:    logger,
		enabled:   enabled,
	}
}

// Enabled reports whether orders reach the venue.
func (m *Manager) Enabled() bool { return m.enabled }

// Process runs one strategy's batch. Candidates are validated in the order
// the strategy ranked them; each accepted order is submitted immediately so
// a failure part-way leaves earlier fills standing.
func (m *Manager) Process(ctx context.Context, req *model.ActionRequest) []Result {
	if req.Empty() {
		return nil
	}

	results := make([]Result, 0, len(req.Orders))
	for _, candidate := range req.Orders {
		if !m.enabled {
			m.logger.Info("trading disabled, order not sent", "order", candidate.String())
			results = append(results, Result{Order: model.Order{CandidateOrder: candidate}})
			continue
		}

		if !m.validator.IsTradeValid(candidate) {
			results = append(results, Result{
				Order:    model.Order{CandidateOrder: candidate},
				Rejected: true,
			})
			continue
		}

		order := model.Order{
			CandidateOrder: candidate,
			ClientOrderID:  m.ids.Next(),
		}
		resp, err := m.submitter.CreateOrder(ctx, order)
		if err != nil {
			m.logger.Error("order submission failed",
				"order", order.String(),
				"client_order_id", order.ClientOrderID,
				"error", err,
			)
			results = append(results, Result{Order: order, Err: err})
			continue
		}

		results = append(results, Result{
			Order:     order,
			Submitted: true,
			VenueID:   resp.Order.OrderID,
		})
	}

	return results
}

package execution

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/rickgao/kalshi-trader/internal/api"
	"github.com/rickgao/kalshi-trader/internal/model"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type fakeSubmitter struct {
	orders []model.Order
	err    error
}

func (s *fakeSubmitter) CreateOrder(ctx context.Context, order model.Order) (*api.CreateOrderResponse, error) {
	s.orders = append(s.orders, order)
	if s.err != nil {
		return nil, s.err
	}
	return &api.CreateOrderResponse{
		Order: api.APIOrder{
			OrderID:       uuid.New(),
			ClientOrderID: order.ClientOrderID,
			Status:        "resting",
		},
	}, nil
}

type acceptAll struct{}

func (acceptAll) IsTradeValid(model.CandidateOrder) bool { return true }

type rejectAll struct{}

func (rejectAll) IsTradeValid(model.CandidateOrder) bool { return false }

func request(n int) *model.ActionRequest {
	req := &model.ActionRequest{Strategy: "sweep"}
	for i := 0; i < n; i++ {
		req.Orders = append(req.Orders, model.CandidateOrder{
			Ticker:     "KXHIGHNY-25AUG30-B69.5",
			MarketSide: model.MarketSideNo,
			Side:       model.SideBuy,
			Count:      28,
			PriceCents: 70,
			OrderType:  model.OrderTypeLimit,
			Strategy:   "sweep",
		})
	}
	return req
}

func TestIDGenerator(t *testing.T) {
	g := NewIDGenerator()

	first := g.Next()
	second := g.Next()
	if first == second {
		t.Fatalf("consecutive IDs collide: %s", first)
	}

	prefix, seq, ok := strings.Cut(first, "_")
	if !ok || prefix == "" {
		t.Fatalf("ID %q missing prefix", first)
	}
	if len(seq) != 7 {
		t.Errorf("sequence %q not zero-padded to 7 digits", seq)
	}
	if !strings.HasSuffix(first, "_0000001") || !strings.HasSuffix(second, "_0000002") {
		t.Errorf("sequence not monotonic: %s, %s", first, second)
	}
}

func TestProcess_DisabledNeverSubmits(t *testing.T) {
	submitter := &fakeSubmitter{}
	m := NewManager(submitter, acceptAll{}, false, discard)

	results := m.Process(context.Background(), request(3))
	if len(results) != 3 {
		t.Fatalf("results = %d, want 3", len(results))
	}
	for _, r := range results {
		if r.Submitted || r.Rejected {
			t.Errorf("dry-run result = %+v, want neither submitted nor rejected", r)
		}
	}
	if len(submitter.orders) != 0 {
		t.Errorf("submitter received %d orders while disabled", len(submitter.orders))
	}
}

func TestProcess_SubmitsValidated(t *testing.T) {
	submitter := &fakeSubmitter{}
	m := NewManager(submitter, acceptAll{}, true, discard)

	results := m.Process(context.Background(), request(2))
	if len(results) != 2 {
		t.Fatalf("results = %d, want 2", len(results))
	}
	for i, r := range results {
		if !r.Submitted {
			t.Errorf("result %d not submitted: %+v", i, r)
		}
		if r.VenueID == uuid.Nil {
			t.Errorf("result %d missing venue order ID", i)
		}
		if r.Order.ClientOrderID == "" {
			t.Errorf("result %d missing client order ID", i)
		}
	}
	if results[0].Order.ClientOrderID == results[1].Order.ClientOrderID {
		t.Error("client order IDs collide within a batch")
	}
}

func TestProcess_RejectedSkipsSubmission(t *testing.T) {
	submitter := &fakeSubmitter{}
	m := NewManager(submitter, rejectAll{}, true, discard)

	results := m.Process(context.Background(), request(1))
	if len(results) != 1 || !results[0].Rejected {
		t.Fatalf("results = %+v, want one rejection", results)
	}
	if len(submitter.orders) != 0 {
		t.Errorf("submitter received %d orders for rejected batch", len(submitter.orders))
	}
}

func TestProcess_SubmissionFailureRecordedNotRetried(t *testing.T) {
	submitter := &fakeSubmitter{err: errors.New("insufficient balance")}
	m := NewManager(submitter, acceptAll{}, true, discard)

	results := m.Process(context.Background(), request(2))
	if len(results) != 2 {
		t.Fatalf("results = %d, want 2", len(results))
	}
	for i, r := range results {
		if r.Submitted || r.Err == nil {
			t.Errorf("result %d = %+v, want recorded error", i, r)
		}
	}
	// One attempt per order, no retries.
	if len(submitter.orders) != 2 {
		t.Errorf("submission attempts = %d, want 2", len(submitter.orders))
	}
}

func TestProcess_EmptyRequest(t *testing.T) {
	m := NewManager(&fakeSubmitter{}, acceptAll{}, true, discard)
	if got := m.Process(context.Background(), nil); got != nil {
		t.Errorf("Process(nil) = %v, want nil", got)
	}
	if got := m.Process(context.Background(), &model.ActionRequest{}); got != nil {
		t.Errorf("Process(empty) = %v, want nil", got)
	}
}

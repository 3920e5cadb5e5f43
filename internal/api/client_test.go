package api

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rickgao/kalshi-trader/internal/model"
)

func TestNewClient(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		c := NewClient("https://api.example.com", nil)

		if c.baseURL != "https://api.example.com" {
			t.Errorf("baseURL = %q, want %q", c.baseURL, "https://api.example.com")
		}
		if c.httpClient.Timeout != 30*time.Second {
			t.Errorf("Timeout = %v, want %v", c.httpClient.Timeout, 30*time.Second)
		}
		if c.maxRetries != 3 {
			t.Errorf("maxRetries = %d, want %d", c.maxRetries, 3)
		}
		if c.logger == nil {
			t.Error("logger should not be nil")
		}
	})

	t.Run("with options", func(t *testing.T) {
		c := NewClient("https://api.example.com", nil,
			WithTimeout(5*time.Second),
			WithRetries(5, 2*time.Second),
		)
		if c.httpClient.Timeout != 5*time.Second {
			t.Errorf("Timeout = %v, want %v", c.httpClient.Timeout, 5*time.Second)
		}
		if c.maxRetries != 5 {
			t.Errorf("maxRetries = %d, want %d", c.maxRetries, 5)
		}
		if c.retryBackoff != 2*time.Second {
			t.Errorf("retryBackoff = %v, want %v", c.retryBackoff, 2*time.Second)
		}
	})
}

func TestGetOrderbook(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != APIPrefix+"/markets/KXHIGHNY-25AUG30-B72.5/orderbook" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(`{"orderbook":{"yes":[[30,100],[25,50]],"no":[[65,20]]}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	resp, err := c.GetOrderbook(context.Background(), "KXHIGHNY-25AUG30-B72.5", 0)
	if err != nil {
		t.Fatalf("GetOrderbook failed: %v", err)
	}

	book := resp.ToOrderBook("KXHIGHNY-25AUG30-B72.5")
	if len(book.Yes) != 2 {
		t.Fatalf("len(Yes) = %d, want 2", len(book.Yes))
	}
	if book.Yes[0].PriceCents != 30 || book.Yes[0].Size != 100 {
		t.Errorf("Yes[0] = %+v, want {30 100}", book.Yes[0])
	}
	if len(book.No) != 1 || book.No[0].PriceCents != 65 {
		t.Errorf("No = %+v, want one level at 65", book.No)
	}
}

func TestOrderbookResponse_ToOrderBook_DropsMalformedLevels(t *testing.T) {
	var resp OrderbookResponse
	resp.Orderbook.Yes = [][]int{{30, 100}, {30}, {0, 5}, {100, 5}, {40, 0}}

	book := resp.ToOrderBook("T")
	if len(book.Yes) != 1 {
		t.Errorf("len(Yes) = %d, want 1 (malformed levels dropped)", len(book.Yes))
	}
}

func TestGetEvent_StrikeConversion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("with_nested_markets"); got != "true" {
			t.Errorf("with_nested_markets = %q, want true", got)
		}
		w.Write([]byte(`{
			"event": {"event_ticker": "KXHIGHNY-25AUG30", "series_ticker": "KXHIGHNY"},
			"markets": [
				{"ticker": "KXHIGHNY-25AUG30-T70", "cap_strike": 70},
				{"ticker": "KXHIGHNY-25AUG30-B72.5", "floor_strike": 72, "cap_strike": 73},
				{"ticker": "KXHIGHNY-25AUG30-T90", "floor_strike": 90}
			]
		}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	resp, err := c.GetEvent(context.Background(), "KXHIGHNY-25AUG30")
	if err != nil {
		t.Fatalf("GetEvent failed: %v", err)
	}
	if len(resp.Markets) != 3 {
		t.Fatalf("len(Markets) = %d, want 3", len(resp.Markets))
	}

	below := resp.Markets[0].ToTempMarket()
	if !math.IsInf(below.FloorStrike.Fahrenheit(), -1) {
		t.Errorf("missing floor should be -Inf, got %v", below.FloorStrike)
	}
	if got := below.CapStrike.Fahrenheit(); math.Abs(got-70) > 1e-9 {
		t.Errorf("cap = %vF, want 70", got)
	}

	mid := resp.Markets[1].ToTempMarket()
	if !mid.Contains(model.TempFromFahrenheit(72.5)) {
		t.Error("banded market should contain 72.5F")
	}

	above := resp.Markets[2].ToTempMarket()
	if !math.IsInf(above.CapStrike.Fahrenheit(), 1) {
		t.Errorf("missing cap should be +Inf, got %v", above.CapStrike)
	}
}

func TestGetBalance(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != APIPrefix+"/portfolio/balance" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(`{"balance": 50000}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	balance, err := c.GetBalance(context.Background())
	if err != nil {
		t.Fatalf("GetBalance failed: %v", err)
	}
	if balance != 50000 {
		t.Errorf("balance = %d, want 50000", balance)
	}
}

func TestGetPositions_Pagination(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch calls.Add(1) {
		case 1:
			w.Write([]byte(`{"market_positions":[{"ticker":"A","position":10,"market_exposure":700}],"cursor":"next"}`))
		default:
			if got := r.URL.Query().Get("cursor"); got != "next" {
				t.Errorf("cursor = %q, want next", got)
			}
			w.Write([]byte(`{"market_positions":[{"ticker":"B","position":-5,"market_exposure":250}],"cursor":""}`))
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	positions, err := c.GetPositions(context.Background())
	if err != nil {
		t.Fatalf("GetPositions failed: %v", err)
	}
	if len(positions) != 2 {
		t.Fatalf("len(positions) = %d, want 2", len(positions))
	}
	if positions[1].Ticker != "B" || positions[1].Quantity != -5 {
		t.Errorf("positions[1] = %+v", positions[1])
	}
}

func TestCreateOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %q, want POST", r.Method)
		}
		if r.URL.Path != APIPrefix+"/portfolio/orders" {
			t.Errorf("path = %q", r.URL.Path)
		}

		var req CreateOrderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		if req.Side != "no" || req.Action != "buy" {
			t.Errorf("side/action = %q/%q, want no/buy", req.Side, req.Action)
		}
		if req.NoPrice == nil || *req.NoPrice != 70 {
			t.Errorf("no_price = %v, want 70", req.NoPrice)
		}
		if req.YesPrice != nil {
			t.Error("yes_price should be unset for a NO order")
		}
		if req.ClientOrderID != "12345_0000001" {
			t.Errorf("client_order_id = %q", req.ClientOrderID)
		}

		w.Write([]byte(`{"order":{"order_id":"8a984958-3b12-4e9f-a8f0-5e9ccb370b78","status":"resting","ticker":"T70"}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	order := model.Order{
		CandidateOrder: model.CandidateOrder{
			Ticker:     "T70",
			MarketSide: model.MarketSideNo,
			Side:       model.SideBuy,
			Count:      28,
			PriceCents: 70,
			OrderType:  model.OrderTypeLimit,
		},
		ClientOrderID: "12345_0000001",
	}

	resp, err := c.CreateOrder(context.Background(), order)
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}
	if resp.Order.Status != "resting" {
		t.Errorf("status = %q, want resting", resp.Order.Status)
	}
	if resp.Order.OrderID.String() != "8a984958-3b12-4e9f-a8f0-5e9ccb370b78" {
		t.Errorf("order_id = %q", resp.Order.OrderID)
	}
}

func TestCreateOrder_NoRetryOnServerError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil, WithRetries(3, time.Millisecond))
	_, err := c.CreateOrder(context.Background(), model.Order{
		CandidateOrder: model.CandidateOrder{
			Ticker: "T", MarketSide: model.MarketSideYes, Side: model.SideBuy,
			Count: 1, PriceCents: 50, OrderType: model.OrderTypeLimit,
		},
		ClientOrderID: "x",
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("server called %d times, want exactly 1 (no retry on submission)", got)
	}
}

func TestGet_RetriesOnServerError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"balance": 100}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil, WithRetries(3, time.Millisecond))
	balance, err := c.GetBalance(context.Background())
	if err != nil {
		t.Fatalf("GetBalance failed after retry: %v", err)
	}
	if balance != 100 {
		t.Errorf("balance = %d, want 100", balance)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("server called %d times, want 2", got)
	}
}

func TestGet_NoRetryOnClientError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil, WithRetries(3, time.Millisecond))
	if _, err := c.GetBalance(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("server called %d times, want 1 (404 is not retryable)", got)
	}
}

func TestEventTickerForDate(t *testing.T) {
	date := time.Date(2025, time.August, 30, 12, 0, 0, 0, time.UTC)
	if got := EventTickerForDate("KXHIGHNY", date); got != "KXHIGHNY-25AUG30" {
		t.Errorf("EventTickerForDate = %q, want KXHIGHNY-25AUG30", got)
	}

	jan := time.Date(2026, time.January, 2, 0, 0, 0, 0, time.UTC)
	if got := EventTickerForDate("KXHIGHNY", jan); got != "KXHIGHNY-26JAN02" {
		t.Errorf("EventTickerForDate = %q, want KXHIGHNY-26JAN02", got)
	}
}

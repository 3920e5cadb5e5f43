package api

import "github.com/google/uuid"

// ExchangeStatusResponse from GET /exchange/status
type ExchangeStatusResponse struct {
	ExchangeActive      bool   `json:"exchange_active"`
	TradingActive       bool   `json:"trading_active"`
	EstimatedResumeTime string `json:"exchange_estimated_resume_time,omitempty"`
}

// EventResponse from GET /events/{event_ticker}
type EventResponse struct {
	Event   APIEvent    `json:"event"`
	Markets []APIMarket `json:"markets"`
}

// APIEvent represents an event from the venue.
type APIEvent struct {
	EventTicker  string `json:"event_ticker"`
	SeriesTicker string `json:"series_ticker"`
	Title        string `json:"title"`
	SubTitle     string `json:"sub_title"`
	Category     string `json:"category"`
}

// APIMarket represents a market from the venue. Strike bounds are absent for
// markets open at that end.
type APIMarket struct {
	Ticker      string `json:"ticker"`
	EventTicker string `json:"event_ticker"`
	Title       string `json:"title"`
	Subtitle    string `json:"subtitle"`
	Status      string `json:"status"`
	MarketType  string `json:"market_type"`
	StrikeType  string `json:"strike_type"` // "between", "greater", "less"

	FloorStrike *float64 `json:"floor_strike,omitempty"`
	CapStrike   *float64 `json:"cap_strike,omitempty"`

	// Prices in cents
	YesBid    int `json:"yes_bid"`
	YesAsk    int `json:"yes_ask"`
	NoBid     int `json:"no_bid"`
	NoAsk     int `json:"no_ask"`
	LastPrice int `json:"last_price"`

	Volume       int64 `json:"volume"`
	OpenInterest int64 `json:"open_interest"`

	// Timestamps (ISO 8601)
	OpenTime  string `json:"open_time"`
	CloseTime string `json:"close_time"`
}

// OrderbookResponse from GET /markets/{ticker}/orderbook.
// Levels are [price_cents, size] pairs, best price last.
type OrderbookResponse struct {
	Orderbook struct {
		Yes [][]int `json:"yes"`
		No  [][]int `json:"no"`
	} `json:"orderbook"`
}

// BalanceResponse from GET /portfolio/balance. Balance is in cents.
type BalanceResponse struct {
	Balance int64 `json:"balance"`
}

// PositionsResponse from GET /portfolio/positions
type PositionsResponse struct {
	MarketPositions []APIPosition `json:"market_positions"`
	Cursor          string        `json:"cursor"`
}

// APIPosition represents an open market position.
type APIPosition struct {
	Ticker          string `json:"ticker"`
	Position        int    `json:"position"` // Signed contracts (positive = yes)
	MarketExposure  int64  `json:"market_exposure"`
	TotalTradedCost int64  `json:"total_traded"`
	RestingOrders   int    `json:"resting_orders_count"`
}

// CreateOrderRequest is the POST /portfolio/orders payload.
type CreateOrderRequest struct {
	Ticker        string `json:"ticker"`
	ClientOrderID string `json:"client_order_id"`
	Side          string `json:"side"`   // "yes" or "no"
	Action        string `json:"action"` // "buy" or "sell"
	Count         int    `json:"count"`
	Type          string `json:"type"` // "limit" or "market"
	YesPrice      *int   `json:"yes_price,omitempty"`
	NoPrice       *int   `json:"no_price,omitempty"`
	TimeInForce   string `json:"time_in_force,omitempty"`
	ExpirationTS  *int64 `json:"expiration_ts,omitempty"`
}

// CreateOrderResponse from POST /portfolio/orders
type CreateOrderResponse struct {
	Order APIOrder `json:"order"`
}

// APIOrder is the venue's view of a submitted order.
type APIOrder struct {
	OrderID       uuid.UUID `json:"order_id"`
	ClientOrderID string    `json:"client_order_id"`
	Ticker        string    `json:"ticker"`
	Status        string    `json:"status"` // "resting", "executed", "canceled", "pending"
	Side          string    `json:"side"`
	Action        string    `json:"action"`
	YesPrice      int       `json:"yes_price"`
	NoPrice       int       `json:"no_price"`
	Count         int       `json:"count"`
	RemainingCount int      `json:"remaining_count"`
	CreatedTime   string    `json:"created_time"`
}

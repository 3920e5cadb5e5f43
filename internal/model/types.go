package model

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// -----------------------------------------------------------------------------
// Money
// -----------------------------------------------------------------------------

// Cents is a money amount in hundredths of a dollar.
type Cents int64

// CentsFromDollars converts a dollar amount to Cents, rounding to the
// nearest cent.
func CentsFromDollars(d float64) Cents {
	return Cents(math.Round(d * 100))
}

// Dollars returns the amount as a float dollar value. Display only; all
// arithmetic stays in integer cents.
func (c Cents) Dollars() float64 {
	return float64(c) / 100
}

func (c Cents) String() string {
	neg := ""
	v := int64(c)
	if v < 0 {
		neg = "-"
		v = -v
	}
	return fmt.Sprintf("%s$%d.%02d", neg, v/100, v%100)
}

// -----------------------------------------------------------------------------
// Enums
// -----------------------------------------------------------------------------

// Side is the order action: opening exposure (buy) or closing it (sell).
type Side string

const (
	SideInvalid Side = ""
	SideBuy     Side = "buy"
	SideSell    Side = "sell"
)

// ParseSide maps a string to a Side. Unknown input yields SideInvalid.
func ParseSide(s string) Side {
	switch strings.ToLower(s) {
	case "buy":
		return SideBuy
	case "sell":
		return SideSell
	default:
		return SideInvalid
	}
}

// MarketSide is the contract side of a binary market.
type MarketSide string

const (
	MarketSideInvalid MarketSide = ""
	MarketSideYes     MarketSide = "yes"
	MarketSideNo      MarketSide = "no"
)

// ParseMarketSide maps a string to a MarketSide. Unknown input yields
// MarketSideInvalid.
func ParseMarketSide(s string) MarketSide {
	switch strings.ToLower(s) {
	case "yes":
		return MarketSideYes
	case "no":
		return MarketSideNo
	default:
		return MarketSideInvalid
	}
}

// Opposite returns the other contract side.
func (m MarketSide) Opposite() MarketSide {
	switch m {
	case MarketSideYes:
		return MarketSideNo
	case MarketSideNo:
		return MarketSideYes
	default:
		return MarketSideInvalid
	}
}

// OrderType is the venue order type.
type OrderType string

const (
	OrderTypeInvalid OrderType = ""
	OrderTypeLimit   OrderType = "limit"
	OrderTypeMarket  OrderType = "market"
)

// ParseOrderType maps a string to an OrderType. Unknown input yields
// OrderTypeInvalid.
func ParseOrderType(s string) OrderType {
	switch strings.ToLower(s) {
	case "limit":
		return OrderTypeLimit
	case "market":
		return OrderTypeMarket
	default:
		return OrderTypeInvalid
	}
}

// -----------------------------------------------------------------------------
// Temperature
// -----------------------------------------------------------------------------

// Temperature is a scalar observable in Celsius. Strike bounds use ±Inf for
// markets open at one end.
type Temperature float64

// TempFromFahrenheit converts a Fahrenheit reading.
func TempFromFahrenheit(f float64) Temperature {
	if math.IsInf(f, 0) {
		return Temperature(f)
	}
	return Temperature((f - 32) * 5 / 9)
}

// Celsius returns the value in Celsius.
func (t Temperature) Celsius() float64 {
	return float64(t)
}

// Fahrenheit returns the value in Fahrenheit.
func (t Temperature) Fahrenheit() float64 {
	if math.IsInf(float64(t), 0) {
		return float64(t)
	}
	return float64(t)*9/5 + 32
}

func (t Temperature) String() string {
	return fmt.Sprintf("%.1f°C/%.1f°F", t.Celsius(), t.Fahrenheit())
}

// -----------------------------------------------------------------------------
// Markets & order books
// -----------------------------------------------------------------------------

// TempMarket is a tradeable strike-range market against a temperature
// observable. FloorStrike is -Inf and CapStrike +Inf for markets unbounded
// at that end; at most one end is unbounded.
type TempMarket struct {
	Ticker      string
	FloorStrike Temperature
	CapStrike   Temperature
}

// Contains reports whether t falls inside the strike range (inclusive).
func (m TempMarket) Contains(t Temperature) bool {
	return m.FloorStrike.Fahrenheit() <= t.Fahrenheit() && t.Fahrenheit() <= m.CapStrike.Fahrenheit()
}

func (m TempMarket) String() string {
	return fmt.Sprintf("%s[%s, %s]", m.Ticker, m.FloorStrike, m.CapStrike)
}

// PriceLevel is a resting price level in an order book.
type PriceLevel struct {
	PriceCents int // Price in cents (1-99)
	Size       int // Contracts resting at this price
}

// OrderBook is a point-in-time snapshot of both sides of a market. Books are
// fetched fresh per scan and never persisted in place.
type OrderBook struct {
	Ticker string
	Yes    []PriceLevel
	No     []PriceLevel
}

// Side returns the levels for the requested market side.
func (b OrderBook) Side(side MarketSide) []PriceLevel {
	if side == MarketSideYes {
		return b.Yes
	}
	return b.No
}

// TickerPrint is one top-of-book update from the venue's ticker stream.
type TickerPrint struct {
	Ticker       string
	YesBid       int // Cents, 0 when absent
	YesAsk       int
	LastPrice    int
	Volume       int64
	OpenInterest int64
	At           time.Time
}

// -----------------------------------------------------------------------------
// Orders
// -----------------------------------------------------------------------------

// CandidateOrder is an order proposed by a strategy, pending risk admission.
type CandidateOrder struct {
	Ticker     string
	MarketSide MarketSide
	Side       Side
	Count      int       // Contracts (> 0)
	PriceCents int       // Limit price in cents (1-99)
	OrderType  OrderType
	NetProfit  Cents  // Expected profit after fees at current book
	Strategy   string // Originating strategy name for risk attribution
}

// Notional returns the total exposure of the order in cents.
func (o CandidateOrder) Notional() Cents {
	return Cents(o.Count) * Cents(o.PriceCents)
}

func (o CandidateOrder) String() string {
	return fmt.Sprintf("%s %s %s %dx%d¢ net=%s", o.Ticker, o.Side, o.MarketSide, o.Count, o.PriceCents, o.NetProfit)
}

// Order is an admitted order carrying a process-unique client order ID.
// Immutable once built.
type Order struct {
	CandidateOrder
	ClientOrderID string
}

// ActionRequest is the ordered batch of candidate orders produced by one
// strategy tick. It is consumed exactly once by the execution stage.
type ActionRequest struct {
	Strategy string
	Orders   []CandidateOrder
}

// Empty reports whether the request carries no orders.
func (r *ActionRequest) Empty() bool {
	return r == nil || len(r.Orders) == 0
}

// -----------------------------------------------------------------------------
// Account
// -----------------------------------------------------------------------------

// Position is an open venue position.
type Position struct {
	Ticker   string
	Quantity int   // Signed contract count (positive = yes exposure)
	Exposure Cents // Total resting exposure
}

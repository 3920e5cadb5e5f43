// Package strategy implements signal generation: scanning order books
// against the weather reference value and sizing candidate orders under fee
// and notional constraints.
package strategy

import (
	"context"
	"strings"
	"time"

	"github.com/rickgao/kalshi-trader/internal/model"
	"github.com/rickgao/kalshi-trader/internal/tick"
)

// Type identifies a strategy implementation. The set is closed: unknown
// configuration strings map to TypeInert rather than failing at runtime.
type Type int

const (
	TypeInert Type = iota
	TypeRestingOrderSweep
	TypeStartOfDayPredict
)

func (t Type) String() string {
	switch t {
	case TypeRestingOrderSweep:
		return "resting_order_sweep"
	case TypeStartOfDayPredict:
		return "start_of_day_predict"
	default:
		return "inert"
	}
}

// ParseType maps a configuration string to a Type. Unknown strings yield
// TypeInert.
func ParseType(s string) Type {
	switch strings.ToLower(s) {
	case "resting_order_sweep", "temperature_resting_order_sweep":
		return TypeRestingOrderSweep
	case "start_of_day_predict", "start_of_day_temp_predict":
		return TypeStartOfDayPredict
	default:
		return TypeInert
	}
}

// Venue supplies market data to strategies.
type Venue interface {
	ActiveMarkets(ctx context.Context, baseTicker string, date time.Time) ([]model.TempMarket, error)
	OrderBook(ctx context.Context, ticker string) (model.OrderBook, error)
}

// Signal supplies the reference observable strategies compare against
// market strikes.
type Signal interface {
	// ReferenceValue is the running daily maximum.
	ReferenceValue(ctx context.Context, now time.Time) (model.Temperature, error)
	// Instantaneous is the most recent print.
	Instantaneous(ctx context.Context, now time.Time) (model.Temperature, error)
}

// Strategy produces candidate orders on ticks. A nil request means no
// action.
type Strategy interface {
	Name() string
	OnTick(ctx context.Context, now time.Time) (*model.ActionRequest, error)
}

// Config is one strategy's configuration entry.
type Config struct {
	Name         string
	Type         Type
	TickInterval time.Duration
	Enabled      bool

	BaseTicker           string       // Venue series, e.g. "KXHIGHNY"
	MaxNotionalCents     model.Cents  // Per-order exposure ceiling
	UncertaintyCents     int          // Sweep edge margin
	PeakUncertaintyCents int          // Buy-the-peak edge margin
	Window               *tick.Window // Optional daily trading window
}

// Inert is the safety default for unknown configuration: it never acts.
type Inert struct {
	name string
}

// NewInert creates an inert strategy.
func NewInert(name string) *Inert {
	return &Inert{name: name}
}

func (s *Inert) Name() string {
	return s.name
}

func (s *Inert) OnTick(ctx context.Context, now time.Time) (*model.ActionRequest, error) {
	return nil, nil
}

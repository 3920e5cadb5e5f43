package strategy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rickgao/kalshi-trader/internal/fees"
	"github.com/rickgao/kalshi-trader/internal/model"
)

// ErrAmbiguousContainment is returned when more than one active market
// claims the same reference value. That is a data-integrity fault in the
// cached market set, so callers skip rather than guess.
var ErrAmbiguousContainment = errors.New("multiple markets contain reference value")

// BookFetcher fetches a fresh order book for a ticker.
type BookFetcher func(ctx context.Context, ticker string) (model.OrderBook, error)

// ScanParams carries the sizing inputs shared by the scan functions.
type ScanParams struct {
	Fees             fees.Model
	UncertaintyCents int         // Subtracted from every level's edge
	MaxNotionalCents model.Cents // Per-order exposure ceiling
	Strategy         string      // Attribution for risk budgets
}

// Scan finds profitable NO entries against markets whose cap strike the
// reference value has already surpassed: their YES side is dead money, so
// any resting YES order priced above the uncertainty margin is an edge.
// Fetch failures and empty books skip the market; the scan never fails as
// a whole.
func Scan(
	ctx context.Context,
	markets []model.TempMarket,
	reference model.Temperature,
	fetch BookFetcher,
	p ScanParams,
	logger *slog.Logger,
) []model.CandidateOrder {
	var out []model.CandidateOrder

	for _, m := range markets {
		if m.CapStrike.Fahrenheit() >= reference.Fahrenheit() {
			continue
		}

		book, err := fetch(ctx, m.Ticker)
		if err != nil {
			logger.Warn("order book fetch failed",
				"ticker", m.Ticker,
				"error", err,
			)
			continue
		}

		out = append(out, sweepLevels(m.Ticker, book.Yes, model.MarketSideNo, p)...)
	}

	return out
}

// ScanPeak finds a YES entry in the single market bracketing the reference
// value. Used when the reference has just exceeded the latest print,
// signalling an imminent new high. The caller supplies a larger uncertainty
// margin than the sweep; confidence here is lower.
func ScanPeak(
	ctx context.Context,
	markets []model.TempMarket,
	reference model.Temperature,
	fetch BookFetcher,
	p ScanParams,
	logger *slog.Logger,
) ([]model.CandidateOrder, error) {
	m, err := MarketContaining(markets, reference)
	if err != nil {
		return nil, err
	}

	book, err := fetch(ctx, m.Ticker)
	if err != nil {
		return nil, fmt.Errorf("order book fetch %s: %w", m.Ticker, err)
	}

	return sweepLevels(m.Ticker, book.No, model.MarketSideYes, p), nil
}

// MarketContaining returns the unique market whose strike range brackets t.
func MarketContaining(markets []model.TempMarket, t model.Temperature) (model.TempMarket, error) {
	var found []model.TempMarket
	for _, m := range markets {
		if m.Contains(t) {
			found = append(found, m)
		}
	}

	switch len(found) {
	case 1:
		return found[0], nil
	case 0:
		return model.TempMarket{}, fmt.Errorf("no market contains %s", t)
	default:
		return model.TempMarket{}, fmt.Errorf("%w: %s", ErrAmbiguousContainment, t)
	}
}

// sweepLevels prices entries on takeSide against resting orders on the
// opposite side. Matching a resting order at p cents fills us on takeSide at
// the complementary price (100 - p); the edge per contract is the resting
// price less the uncertainty margin, and the fee applies to our fill price.
// Sizes are capped so notional stays within the ceiling, with edge and fee
// recomputed at the capped size.
func sweepLevels(ticker string, resting []model.PriceLevel, takeSide model.MarketSide, p ScanParams) []model.CandidateOrder {
	var out []model.CandidateOrder

	for _, level := range resting {
		orderPrice := 100 - level.PriceCents
		size := level.Size

		if notional := model.Cents(size) * model.Cents(orderPrice); notional > p.MaxNotionalCents {
			size = int(p.MaxNotionalCents / model.Cents(orderPrice))
		}
		if size <= 0 {
			continue
		}

		edge := model.Cents(size) * model.Cents(level.PriceCents-p.UncertaintyCents)
		fee := p.Fees.Fee(orderPrice, size)
		net := edge - fee
		if net <= 0 {
			continue
		}

		out = append(out, model.CandidateOrder{
			Ticker:     ticker,
			MarketSide: takeSide,
			Side:       model.SideBuy,
			Count:      size,
			PriceCents: orderPrice,
			OrderType:  model.OrderTypeLimit,
			NetProfit:  net,
			Strategy:   p.Strategy,
		})
	}

	return out
}

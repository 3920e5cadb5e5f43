package api

import (
	"math"

	"github.com/rickgao/kalshi-trader/internal/model"
)

// ToTempMarket converts a venue market into a strike-range temperature
// market. Absent strikes map to ±Inf so containment checks need no special
// cases.
func (m APIMarket) ToTempMarket() model.TempMarket {
	floor := math.Inf(-1)
	cap := math.Inf(1)

	if m.FloorStrike != nil {
		floor = *m.FloorStrike
	}
	if m.CapStrike != nil {
		cap = *m.CapStrike
	}

	return model.TempMarket{
		Ticker:      m.Ticker,
		FloorStrike: model.TempFromFahrenheit(floor),
		CapStrike:   model.TempFromFahrenheit(cap),
	}
}

// ToOrderBook converts the venue's [price, size] pair lists to an order
// book snapshot. Malformed pairs are dropped rather than failing the whole
// book.
func (r OrderbookResponse) ToOrderBook(ticker string) model.OrderBook {
	return model.OrderBook{
		Ticker: ticker,
		Yes:    toLevels(r.Orderbook.Yes),
		No:     toLevels(r.Orderbook.No),
	}
}

func toLevels(pairs [][]int) []model.PriceLevel {
	levels := make([]model.PriceLevel, 0, len(pairs))
	for _, p := range pairs {
		if len(p) != 2 {
			continue
		}
		price, size := p[0], p[1]
		if price < 1 || price > 99 || size <= 0 {
			continue
		}
		levels = append(levels, model.PriceLevel{PriceCents: price, Size: size})
	}
	return levels
}

// ToPosition converts a venue position.
func (p APIPosition) ToPosition() model.Position {
	return model.Position{
		Ticker:   p.Ticker,
		Quantity: p.Position,
		Exposure: model.Cents(p.MarketExposure),
	}
}

package api

import (
	"context"
	"time"

	"github.com/rickgao/kalshi-trader/internal/model"
)

// ActiveMarkets fetches today's event for a base series and returns its
// active markets as strike-range temperature markets.
func (c *Client) ActiveMarkets(ctx context.Context, baseTicker string, date time.Time) ([]model.TempMarket, error) {
	resp, err := c.GetEvent(ctx, EventTickerForDate(baseTicker, date))
	if err != nil {
		return nil, err
	}

	markets := make([]model.TempMarket, 0, len(resp.Markets))
	for _, m := range resp.Markets {
		if m.Status != "" && m.Status != "active" && m.Status != "open" {
			continue
		}
		markets = append(markets, m.ToTempMarket())
	}
	return markets, nil
}

// OrderBook fetches the full order book for a market.
func (c *Client) OrderBook(ctx context.Context, ticker string) (model.OrderBook, error) {
	resp, err := c.GetOrderbook(ctx, ticker, 0)
	if err != nil {
		return model.OrderBook{}, err
	}
	return resp.ToOrderBook(ticker), nil
}

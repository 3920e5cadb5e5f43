package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// GetExchangeStatus fetches exchange trading availability.
func (c *Client) GetExchangeStatus(ctx context.Context) (*ExchangeStatusResponse, error) {
	var resp ExchangeStatusResponse
	if err := c.get(ctx, "/exchange/status", nil, &resp); err != nil {
		return nil, fmt.Errorf("get exchange status: %w", err)
	}
	return &resp, nil
}

// GetEvent fetches an event and its nested markets.
func (c *Client) GetEvent(ctx context.Context, eventTicker string) (*EventResponse, error) {
	query := url.Values{}
	query.Set("with_nested_markets", "true")

	var resp EventResponse
	if err := c.get(ctx, "/events/"+eventTicker, query, &resp); err != nil {
		return nil, fmt.Errorf("get event %s: %w", eventTicker, err)
	}
	return &resp, nil
}

// GetOrderbook fetches the order book for a market. depth 0 means full book.
func (c *Client) GetOrderbook(ctx context.Context, ticker string, depth int) (*OrderbookResponse, error) {
	query := url.Values{}
	if depth > 0 {
		query.Set("depth", strconv.Itoa(depth))
	}

	var resp OrderbookResponse
	if err := c.get(ctx, "/markets/"+ticker+"/orderbook", query, &resp); err != nil {
		return nil, fmt.Errorf("get orderbook %s: %w", ticker, err)
	}
	return &resp, nil
}

// EventTickerForDate formats the daily event ticker for a base series,
// e.g. ("KXHIGHNY", Aug 30 2025) -> "KXHIGHNY-25AUG30".
func EventTickerForDate(baseTicker string, date time.Time) string {
	return baseTicker + "-" + strings.ToUpper(date.Format("06Jan02"))
}

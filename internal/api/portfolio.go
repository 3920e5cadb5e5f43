package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/rickgao/kalshi-trader/internal/model"
)

// GetBalance fetches the account balance in cents.
func (c *Client) GetBalance(ctx context.Context) (model.Cents, error) {
	var resp BalanceResponse
	if err := c.get(ctx, "/portfolio/balance", nil, &resp); err != nil {
		return 0, fmt.Errorf("get balance: %w", err)
	}
	return model.Cents(resp.Balance), nil
}

// GetPositions fetches all open market positions, paginating as needed.
func (c *Client) GetPositions(ctx context.Context) ([]model.Position, error) {
	var positions []model.Position
	cursor := ""

	for {
		query := url.Values{}
		query.Set("limit", "1000")
		if cursor != "" {
			query.Set("cursor", cursor)
		}

		var resp PositionsResponse
		if err := c.get(ctx, "/portfolio/positions", query, &resp); err != nil {
			return nil, fmt.Errorf("get positions: %w", err)
		}

		for _, p := range resp.MarketPositions {
			positions = append(positions, p.ToPosition())
		}

		if resp.Cursor == "" {
			break
		}
		cursor = resp.Cursor
	}

	return positions, nil
}

// CreateOrder submits an order. Submission is never retried: on a transport
// or venue error the caller decides, since a blind retry could double-fill.
func (c *Client) CreateOrder(ctx context.Context, order model.Order) (*CreateOrderResponse, error) {
	payload := CreateOrderRequest{
		Ticker:        order.Ticker,
		ClientOrderID: order.ClientOrderID,
		Side:          string(order.MarketSide),
		Action:        string(order.Side),
		Count:         order.Count,
		Type:          string(order.OrderType),
	}

	price := order.PriceCents
	switch order.MarketSide {
	case model.MarketSideYes:
		payload.YesPrice = &price
	case model.MarketSideNo:
		payload.NoPrice = &price
	}

	var resp CreateOrderResponse
	if err := c.post(ctx, "/portfolio/orders", payload, &resp); err != nil {
		return nil, fmt.Errorf("create order %s: %w", order.ClientOrderID, err)
	}

	c.logger.Info("order submitted",
		"client_order_id", order.ClientOrderID,
		"order_id", resp.Order.OrderID,
		"ticker", order.Ticker,
		"status", resp.Order.Status,
	)

	return &resp, nil
}

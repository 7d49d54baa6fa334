// Copyright (c) 2025 fpxbs7777

package shda

import (
	"context"
	"errors"
	"log/slog"

	"github.com/fpxbs7777/HM/exchange"
)

// GetOrderHistory fetches the account's order history.
func (c *Client) GetOrderHistory(ctx context.Context, account string) (*exchange.Table[exchange.OrderRow], error) {
	if err := checkAccount("get-order-history", account); err != nil {
		return nil, err
	}
	addrURL := c.endpoint("/Orders/GetOrderHistory")
	req := &OrderHistoryRequest{Account: account}
	resp := new(OrderHistoryResponse)
	if err := postJSON(ctx, c, "get-order-history", addrURL, "/Orders/History", req, resp); err != nil {
		if !errors.Is(err, context.Canceled) {
			slog.Error("could not fetch order history", "url", addrURL, "err", err)
		}
		return nil, err
	}
	if resp.Result == nil {
		return c.normalizer.Orders("get-order-history", nil)
	}
	return c.normalizer.Orders("get-order-history", resp.Result.Orders)
}

// GetOrdersStatus returns the latest status of the account's orders. The site
// reports current statuses through the order history page.
func (c *Client) GetOrdersStatus(ctx context.Context, account string) (*exchange.Table[exchange.OrderRow], error) {
	return c.GetOrderHistory(ctx, account)
}

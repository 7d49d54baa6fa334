// Copyright (c) 2025 fpxbs7777

package shda

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/fpxbs7777/HM/errs"
	"github.com/fpxbs7777/HM/exchange"
	"github.com/google/uuid"
)

const (
	sideBuy  = "COMPRA"
	sideSell = "VENTA"
)

// SendBuyOrder places a limit buy order and returns the broker's order number.
func (c *Client) SendBuyOrder(ctx context.Context, req *exchange.OrderRequest) (string, error) {
	return c.sendOrder(ctx, "send-buy-order", sideBuy, req)
}

// SendSellOrder places a limit sell order and returns the broker's order
// number.
func (c *Client) SendSellOrder(ctx context.Context, req *exchange.OrderRequest) (string, error) {
	return c.sendOrder(ctx, "send-sell-order", sideSell, req)
}

func checkOrderRequest(op string, req *exchange.OrderRequest) error {
	if req == nil {
		return errs.New(errs.KindConfig, op, errs.WithMessage("order request is required"))
	}
	if err := checkAccount(op, req.Account); err != nil {
		return err
	}
	if strings.TrimSpace(req.Symbol) == "" {
		return errs.New(errs.KindConfig, op, errs.WithMessage("symbol cannot be empty"))
	}
	if req.Settlement == exchange.SettlementNone || !req.Settlement.Valid() {
		return errs.New(errs.KindConfig, op, errs.WithMessage("settlement must be spot, 24hs or 48hs"))
	}
	if !req.Price.IsPositive() {
		return errs.New(errs.KindConfig, op, errs.WithMessage("price must be positive"))
	}
	if !req.Size.IsPositive() {
		return errs.New(errs.KindConfig, op, errs.WithMessage("size must be positive"))
	}
	return nil
}

func (c *Client) sendOrder(ctx context.Context, op, side string, req *exchange.OrderRequest) (string, error) {
	if err := checkOrderRequest(op, req); err != nil {
		return "", err
	}
	clientOrderID := req.ClientOrderID
	if clientOrderID == "" {
		clientOrderID = uuid.New().String()
	}

	addrURL := c.endpoint("/Order/EnviarOrden")
	sreq := &SendOrderRequest{
		Account:       req.Account,
		Symbol:        strings.ToUpper(strings.TrimSpace(req.Symbol)),
		Term:          req.Settlement.TermString(),
		Price:         req.Price.String(),
		Quantity:      req.Size.String(),
		Side:          side,
		ClientOrderID: clientOrderID,
	}
	resp := new(SendOrderResponse)
	if err := postJSON(ctx, c, op, addrURL, "/Order/Operar", sreq, resp); err != nil {
		if !errors.Is(err, context.Canceled) {
			slog.Error("could not send order", "side", side, "symbol", sreq.Symbol, "price", sreq.Price, "size", sreq.Quantity, "url", addrURL, "err", err)
		}
		return "", err
	}
	if !resp.Success {
		msg := strings.Trim(string(bytes.TrimSpace(resp.Error)), `"`)
		if msg == "" || msg == "null" {
			msg = "order was rejected"
		}
		return "", errs.New(errs.KindRejected, op, errs.WithMessage(msg))
	}
	if resp.Result == nil || len(resp.Result.OrderNumber) == 0 {
		return "", errs.New(errs.KindData, op, errs.WithMessage("response has no order number"))
	}
	number := strings.Trim(string(bytes.TrimSpace(resp.Result.OrderNumber)), `"`)
	if number == "" || number == "null" {
		return "", errs.New(errs.KindData, op, errs.WithMessage("response has no order number"))
	}
	slog.Info("order sent", "side", side, "symbol", sreq.Symbol, "price", sreq.Price, "size", sreq.Quantity, "order-number", number, "client-order-id", clientOrderID)
	return number, nil
}

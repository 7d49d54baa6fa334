// Copyright (c) 2025 fpxbs7777

package api

import (
	"github.com/fpxbs7777/HM/exchange"
	"github.com/shopspring/decimal"
)

const (
	HealthPath    = "/health"
	MetricsPath   = "/metrics"
	PanelPath     = "/panels/{panel}"
	OrdersPath    = "/accounts/{account}/orders"
	PortfolioPath = "/accounts/{account}/portfolio"
	HistoryPath   = "/history/{symbol}"

	// SnapshotTimeHeader is set on panel responses served from a stored
	// snapshot. It carries the snapshot time in RFC 3339.
	SnapshotTimeHeader = "X-Snapshot-Time"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

type PanelResponse = exchange.Table[exchange.Quote]

type OrdersResponse = exchange.Table[exchange.OrderRow]

type PortfolioResponse = exchange.Table[exchange.Holding]

type HistoryResponse struct {
	Symbol  string             `json:"symbol"`
	Candles []*exchange.Candle `json:"candles"`
}

// SendOrderRequest is the body of an order placement on OrdersPath.
type SendOrderRequest struct {
	// Side is either "buy" or "sell".
	Side string `json:"side"`

	Symbol     string          `json:"symbol"`
	Settlement string          `json:"settlement"`
	Price      decimal.Decimal `json:"price"`
	Size       decimal.Decimal `json:"size"`

	ClientOrderID string `json:"client_order_id,omitempty"`
}

type SendOrderResponse struct {
	OrderNumber string `json:"order_number"`
}

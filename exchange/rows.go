// Copyright (c) 2025 fpxbs7777

package exchange

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quote is a normalized board row.
type Quote struct {
	Symbol        string              `json:"symbol"`
	Settlement    Settlement          `json:"settlement"`
	BidSize       decimal.NullDecimal `json:"bid_size"`
	Bid           decimal.NullDecimal `json:"bid"`
	Ask           decimal.NullDecimal `json:"ask"`
	AskSize       decimal.NullDecimal `json:"ask_size"`
	Last          decimal.NullDecimal `json:"last"`
	Change        decimal.NullDecimal `json:"change"`
	Open          decimal.NullDecimal `json:"open"`
	High          decimal.NullDecimal `json:"high"`
	Low           decimal.NullDecimal `json:"low"`
	PreviousClose decimal.NullDecimal `json:"previous_close"`
	Turnover      decimal.NullDecimal `json:"turnover"`
	Volume        decimal.NullDecimal `json:"volume"`
	Operations    decimal.NullDecimal `json:"operations"`
	Datetime      *time.Time          `json:"datetime"`
	Group         string              `json:"group"`
}

var QuoteColumns = []string{
	"symbol", "settlement", "bid_size", "bid", "ask", "ask_size", "last",
	"change", "open", "high", "low", "previous_close", "turnover", "volume",
	"operations", "datetime", "group",
}

// QuoteSummary is the price summary of a board row.
type QuoteSummary struct {
	Symbol string              `json:"symbol"`
	Last   decimal.NullDecimal `json:"last"`
	Change decimal.NullDecimal `json:"change"`
	High   decimal.NullDecimal `json:"high"`
	Low    decimal.NullDecimal `json:"low"`
	Group  string              `json:"group"`
}

var QuoteSummaryColumns = []string{"symbol", "last", "change", "high", "low", "group"}

// OrderRow is a normalized order history entry.
type OrderRow struct {
	OrderID   string              `json:"order_id"`
	Symbol    string              `json:"symbol"`
	OrderType string              `json:"order_type"`
	Quantity  decimal.NullDecimal `json:"quantity"`
	Price     decimal.NullDecimal `json:"price"`
	OrderDate *time.Time          `json:"order_date"`
	Status    string              `json:"status"`
}

var OrderColumns = []string{
	"order_id", "symbol", "order_type", "quantity", "price", "order_date", "status",
}

// Holding is a normalized account portfolio position.
type Holding struct {
	Symbol   string              `json:"symbol"`
	Quantity decimal.NullDecimal `json:"quantity"`
	Price    decimal.NullDecimal `json:"price"`
	Can0     decimal.NullDecimal `json:"can0"`
	Can2     decimal.NullDecimal `json:"can2"`
	Can3     decimal.NullDecimal `json:"can3"`
}

var HoldingColumns = []string{"symbol", "quantity", "price", "can0", "can2", "can3"}

// Candle is one daily bar of a symbol's price history.
type Candle struct {
	Date   time.Time       `json:"date"`
	Open   decimal.Decimal `json:"open"`
	High   decimal.Decimal `json:"high"`
	Low    decimal.Decimal `json:"low"`
	Close  decimal.Decimal `json:"close"`
	Volume decimal.Decimal `json:"volume"`
}

// OptionQuote is a realtime options board row.
type OptionQuote struct {
	Symbol          string              `json:"symbol"`
	BidSize         decimal.NullDecimal `json:"bid_size"`
	Bid             decimal.NullDecimal `json:"bid"`
	Ask             decimal.NullDecimal `json:"ask"`
	AskSize         decimal.NullDecimal `json:"ask_size"`
	Last            decimal.NullDecimal `json:"last"`
	Change          decimal.NullDecimal `json:"change"`
	Open            decimal.NullDecimal `json:"open"`
	High            decimal.NullDecimal `json:"high"`
	Low             decimal.NullDecimal `json:"low"`
	PreviousClose   decimal.NullDecimal `json:"previous_close"`
	Turnover        decimal.NullDecimal `json:"turnover"`
	Volume          decimal.NullDecimal `json:"volume"`
	Operations      decimal.NullDecimal `json:"operations"`
	Datetime        *time.Time          `json:"datetime"`
	Expiration      string              `json:"expiration"`
	Strike          decimal.NullDecimal `json:"strike"`
	Kind            string              `json:"kind"`
	UnderlyingAsset string              `json:"underlying_asset"`
	Close           decimal.NullDecimal `json:"close"`
}

var OptionColumns = []string{
	"symbol", "bid_size", "bid", "ask", "ask_size", "last", "change", "open",
	"high", "low", "previous_close", "turnover", "volume", "operations",
	"datetime", "expiration", "strike", "kind", "underlying_asset", "close",
}

// RepoQuote is a realtime repo (caución) board row.
type RepoQuote struct {
	Symbol        string              `json:"symbol"`
	Days          decimal.NullDecimal `json:"days"`
	Settlement    Settlement          `json:"settlement"`
	BidAmount     decimal.NullDecimal `json:"bid_amount"`
	BidRate       decimal.NullDecimal `json:"bid_rate"`
	AskRate       decimal.NullDecimal `json:"ask_rate"`
	AskAmount     decimal.NullDecimal `json:"ask_amount"`
	Last          decimal.NullDecimal `json:"last"`
	Change        decimal.NullDecimal `json:"change"`
	Open          decimal.NullDecimal `json:"open"`
	High          decimal.NullDecimal `json:"high"`
	Low           decimal.NullDecimal `json:"low"`
	PreviousClose decimal.NullDecimal `json:"previous_close"`
	Turnover      decimal.NullDecimal `json:"turnover"`
	Volume        decimal.NullDecimal `json:"volume"`
	Operations    decimal.NullDecimal `json:"operations"`
	Datetime      *time.Time          `json:"datetime"`
	Close         decimal.NullDecimal `json:"close"`
}

var RepoColumns = []string{
	"symbol", "days", "settlement", "bid_amount", "bid_rate", "ask_rate",
	"ask_amount", "last", "change", "open", "high", "low", "previous_close",
	"turnover", "volume", "operations", "datetime", "close",
}

// BookLevel is one price level of a symbol's order book.
type BookLevel struct {
	Position int                 `json:"position"`
	BidSize  decimal.NullDecimal `json:"bid_size"`
	Bid      decimal.NullDecimal `json:"bid"`
	Ask      decimal.NullDecimal `json:"ask"`
	AskSize  decimal.NullDecimal `json:"ask_size"`
}

// OrderRequest carries the parameters of a limit order.
type OrderRequest struct {
	Account    string
	Symbol     string
	Settlement Settlement
	Price      decimal.Decimal
	Size       decimal.Decimal

	// ClientOrderID is an optional caller generated identifier.
	ClientOrderID string
}

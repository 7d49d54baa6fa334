// Copyright (c) 2025 fpxbs7777

package shda

import (
	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"
)

type PanelRequest struct {
	Panel string `json:"panel"`

	// Term is the numeric settlement code, encoded as a string.
	Term string `json:"term"`
}

type PanelResponse struct {
	Result *struct {
		Stocks []json.RawMessage `json:"Stocks"`
	} `json:"Result"`
}

type OrderHistoryRequest struct {
	Account string `json:"comitente"`
}

type OrderHistoryResponse struct {
	Result *struct {
		Orders []json.RawMessage `json:"Orders"`
	} `json:"Result"`
}

// PortfolioRequest is the account statement query for current holdings.
type PortfolioRequest struct {
	Account       string  `json:"comitente"`
	Consolidate   string  `json:"consolida"`
	Process       string  `json:"proceso"`
	FromDate      *string `json:"fechaDesde"`
	ToDate        *string `json:"fechaHasta"`
	Type          *string `json:"tipo"`
	Symbol        *string `json:"especie"`
	ManagedAcount *string `json:"comitenteMana"`
}

type PortfolioResponse struct {
	Result *struct {
		Assets []*struct {
			Subtotal []json.RawMessage `json:"Subtotal"`
		} `json:"Activos"`
	} `json:"Result"`
}

// HistoryResponse is a daily bars response in the charting library's UDF
// format.
type HistoryResponse struct {
	Status       string            `json:"s"`
	ErrorMessage string            `json:"errmsg"`
	Times        []int64           `json:"t"`
	Open         []decimal.Decimal `json:"o"`
	High         []decimal.Decimal `json:"h"`
	Low          []decimal.Decimal `json:"l"`
	Close        []decimal.Decimal `json:"c"`
	Volume       []decimal.Decimal `json:"v"`
}

type SendOrderRequest struct {
	Account       string `json:"Comitente"`
	Symbol        string `json:"Especie"`
	Term          string `json:"Plazo"`
	Price         string `json:"Precio"`
	Quantity      string `json:"Cantidad"`
	Side          string `json:"Tipo"`
	ClientOrderID string `json:"IdOrdenCliente"`
}

type SendOrderResponse struct {
	Success bool            `json:"Success"`
	Error   json.RawMessage `json:"Error"`
	Result  *struct {
		OrderNumber json.RawMessage `json:"NumeroOrden"`
	} `json:"Result"`
}

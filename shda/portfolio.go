// Copyright (c) 2025 fpxbs7777

package shda

import (
	"context"
	"errors"
	"log/slog"

	"github.com/fpxbs7777/HM/exchange"
	json "github.com/goccy/go-json"
)

// GetPortfolio fetches the account's current holdings.
func (c *Client) GetPortfolio(ctx context.Context, account string) (*exchange.Table[exchange.Holding], error) {
	if err := checkAccount("get-portfolio", account); err != nil {
		return nil, err
	}
	addrURL := c.endpoint("/Consultas/GetConsulta")
	req := &PortfolioRequest{
		Account:     account,
		Consolidate: "0",
		Process:     "22",
	}
	resp := new(PortfolioResponse)
	if err := postJSON(ctx, c, "get-portfolio", addrURL, "/Consultas/Tenencia", req, resp); err != nil {
		if !errors.Is(err, context.Canceled) {
			slog.Error("could not fetch portfolio", "url", addrURL, "err", err)
		}
		return nil, err
	}

	var raw []json.RawMessage
	if resp.Result != nil {
		for _, asset := range resp.Result.Assets {
			if asset != nil {
				raw = append(raw, asset.Subtotal...)
			}
		}
	}
	return c.normalizer.Holdings("get-portfolio", raw)
}

// Copyright (c) 2025 fpxbs7777

package shda

import (
	"context"
	"errors"
	"log/slog"

	"github.com/fpxbs7777/HM/errs"
	"github.com/fpxbs7777/HM/exchange"
	json "github.com/goccy/go-json"
)

// GetPanel fetches a board's quotes for the settlement term. Every row is
// stamped with the requested settlement.
func (c *Client) GetPanel(ctx context.Context, panel exchange.Panel, settlement exchange.Settlement) (*exchange.Table[exchange.Quote], error) {
	if panel.GroupName() == "" {
		return nil, errs.New(errs.KindConfig, "get-panel", errs.WithMessage("unknown panel "+string(panel)))
	}
	raw, err := c.getPanelEntries(ctx, panel, settlement)
	if err != nil {
		return nil, err
	}
	return c.normalizer.Quotes("get-panel", raw, settlement)
}

// GetPanelSummary fetches a board's quotes and keeps only the price summary
// columns.
func (c *Client) GetPanelSummary(ctx context.Context, panel exchange.Panel, settlement exchange.Settlement) (*exchange.Table[exchange.QuoteSummary], error) {
	if panel.GroupName() == "" {
		return nil, errs.New(errs.KindConfig, "get-panel-summary", errs.WithMessage("unknown panel "+string(panel)))
	}
	raw, err := c.getPanelEntries(ctx, panel, settlement)
	if err != nil {
		return nil, err
	}
	return c.normalizer.Summaries("get-panel-summary", raw)
}

func (c *Client) getPanelEntries(ctx context.Context, panel exchange.Panel, settlement exchange.Settlement) ([]json.RawMessage, error) {
	if !settlement.Valid() {
		return nil, errs.New(errs.KindConfig, "get-panel", errs.WithMessage("unknown settlement "+string(settlement)))
	}
	addrURL := c.endpoint("/Prices/GetByPanel")
	req := &PanelRequest{
		Panel: string(panel),
		Term:  settlement.TermString(),
	}
	resp := new(PanelResponse)
	if err := postJSON(ctx, c, "get-panel", addrURL, "/Prices/Stocks", req, resp); err != nil {
		if !errors.Is(err, context.Canceled) {
			slog.Error("could not fetch panel", "panel", panel, "settlement", settlement, "url", addrURL, "err", err)
		}
		return nil, err
	}
	if resp.Result == nil {
		return nil, nil
	}
	return resp.Result.Stocks, nil
}

func (c *Client) GetBluechips(ctx context.Context, settlement exchange.Settlement) (*exchange.Table[exchange.Quote], error) {
	return c.GetPanel(ctx, exchange.Bluechips, settlement)
}

func (c *Client) GetGeneralBoard(ctx context.Context, settlement exchange.Settlement) (*exchange.Table[exchange.Quote], error) {
	return c.GetPanel(ctx, exchange.GeneralBoard, settlement)
}

func (c *Client) GetCedears(ctx context.Context, settlement exchange.Settlement) (*exchange.Table[exchange.Quote], error) {
	return c.GetPanel(ctx, exchange.Cedears, settlement)
}

func (c *Client) GetGovernmentBonds(ctx context.Context, settlement exchange.Settlement) (*exchange.Table[exchange.Quote], error) {
	return c.GetPanel(ctx, exchange.GovernmentBonds, settlement)
}

func (c *Client) GetShortTermGovernmentBonds(ctx context.Context, settlement exchange.Settlement) (*exchange.Table[exchange.Quote], error) {
	return c.GetPanel(ctx, exchange.ShortTermGovernmentBonds, settlement)
}

func (c *Client) GetCorporateBonds(ctx context.Context, settlement exchange.Settlement) (*exchange.Table[exchange.Quote], error) {
	return c.GetPanel(ctx, exchange.CorporateBonds, settlement)
}

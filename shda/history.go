// Copyright (c) 2025 fpxbs7777

package shda

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/fpxbs7777/HM/errs"
	"github.com/fpxbs7777/HM/exchange"
)

// GetDailyHistory fetches daily bars for the symbol between the from and to
// dates, both inclusive.
func (c *Client) GetDailyHistory(ctx context.Context, symbol string, from, to time.Time) ([]*exchange.Candle, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, errs.New(errs.KindConfig, "get-daily-history", errs.WithMessage("symbol cannot be empty"))
	}
	if to.Before(from) {
		return nil, errs.New(errs.KindConfig, "get-daily-history", errs.WithMessage("from date must not be after to date"))
	}

	values := make(url.Values)
	values.Set("symbol", symbol)
	values.Set("resolution", "D")
	values.Set("from", strconv.FormatInt(dateToEpoch(from), 10))
	values.Set("to", strconv.FormatInt(dateToEpoch(to), 10))

	addrURL := c.endpoint("/HistoricoPrecios/history")
	addrURL.RawQuery = values.Encode()

	resp := new(HistoryResponse)
	if err := getJSON(ctx, c, "get-daily-history", addrURL, "/HistoricoPrecios", resp); err != nil {
		if !errors.Is(err, context.Canceled) {
			slog.Error("could not fetch daily history", "symbol", symbol, "url", addrURL, "err", err)
		}
		return nil, err
	}

	switch resp.Status {
	case "no_data":
		return []*exchange.Candle{}, nil
	case "ok":
	default:
		return nil, errs.New(errs.KindData, "get-daily-history", errs.WithMessage(fmt.Sprintf("history status %q: %s", resp.Status, resp.ErrorMessage)))
	}

	n := len(resp.Times)
	if len(resp.Open) != n || len(resp.High) != n || len(resp.Low) != n || len(resp.Close) != n {
		return nil, errs.New(errs.KindData, "get-daily-history", errs.WithMessage("history columns have different lengths"))
	}
	candles := make([]*exchange.Candle, 0, n)
	for i, t := range resp.Times {
		candle := &exchange.Candle{
			Date:  time.Unix(t, 0).In(c.opts.Location),
			Open:  resp.Open[i],
			High:  resp.High[i],
			Low:   resp.Low[i],
			Close: resp.Close[i],
		}
		if i < len(resp.Volume) {
			candle.Volume = resp.Volume[i]
		}
		candles = append(candles, candle)
	}
	return candles, nil
}

// dateToEpoch returns the seconds from the unix epoch to the start of t's
// calendar date.
func dateToEpoch(t time.Time) int64 {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix()
}

// Copyright (c) 2025 fpxbs7777

package api

import (
	"errors"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/fpxbs7777/HM/errs"
	"github.com/fpxbs7777/HM/exchange"
	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
)

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, &HealthResponse{Status: "ok"})
}

func (s *Server) getPanel(w http.ResponseWriter, r *http.Request) {
	panel, err := exchange.ParsePanel(chi.URLParam(r, "panel"))
	if err != nil {
		writeError(w, r, badRequest("api-get-panel", "%v", err))
		return
	}
	settlement := exchange.Hours48
	if v := r.URL.Query().Get("settlement"); v != "" {
		if settlement, err = exchange.ParseSettlement(v); err != nil || settlement == exchange.SettlementNone {
			writeError(w, r, badRequest("api-get-panel", "invalid settlement %q", v))
			return
		}
	}

	key := string(panel) + "/" + string(settlement)
	if s.cache != nil {
		if v, ok := s.cache.Get(key); ok {
			writeJSON(w, http.StatusOK, v)
			return
		}
	}
	table, err := s.broker.GetPanel(r.Context(), panel, settlement)
	if err != nil {
		if errs.IsKind(err, errs.KindTransport) && s.opts.Snapshots != nil {
			at, quotes, serr := s.opts.Snapshots.LatestQuotes(r.Context(), panel, settlement)
			if serr == nil {
				slog.Warn("serving stored panel snapshot", "panel", panel, "settlement", settlement, "taken", at, "err", err)
				stored := exchange.NewTable[exchange.Quote](exchange.QuoteColumns)
				stored.Rows = append(stored.Rows, quotes...)
				w.Header().Set(SnapshotTimeHeader, at.UTC().Format(time.RFC3339))
				writeJSON(w, http.StatusOK, stored)
				return
			}
			if !errors.Is(serr, os.ErrNotExist) {
				slog.Error("could not load stored panel snapshot", "panel", panel, "settlement", settlement, "err", serr)
			}
		}
		writeError(w, r, err)
		return
	}
	if s.opts.Snapshots != nil {
		if err := s.opts.Snapshots.SaveQuotes(r.Context(), panel, settlement, time.Now(), table.Rows); err != nil {
			slog.Warn("could not save panel snapshot (ignored)", "panel", panel, "settlement", settlement, "err", err)
		}
	}
	if s.cache != nil {
		s.cache.SetWithTTL(key, table, 1, s.opts.CacheTTL)
		s.cache.Wait()
	}
	writeJSON(w, http.StatusOK, table)
}

func (s *Server) getOrders(w http.ResponseWriter, r *http.Request) {
	table, err := s.broker.GetOrderHistory(r.Context(), chi.URLParam(r, "account"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, table)
}

func (s *Server) getPortfolio(w http.ResponseWriter, r *http.Request) {
	table, err := s.broker.GetPortfolio(r.Context(), chi.URLParam(r, "account"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, table)
}

func parseDay(op, name, v string, def time.Time) (time.Time, error) {
	if v == "" {
		return def, nil
	}
	t, err := time.ParseInLocation("2006-01-02", v, exchange.DefaultLocation)
	if err != nil {
		return time.Time{}, badRequest(op, "invalid %s date %q (want YYYY-MM-DD)", name, v)
	}
	return t, nil
}

func (s *Server) getHistory(w http.ResponseWriter, r *http.Request) {
	const op = "api-get-history"
	symbol := strings.ToUpper(chi.URLParam(r, "symbol"))
	now := time.Now().In(exchange.DefaultLocation)

	to, err := parseDay(op, "to", r.URL.Query().Get("to"), now)
	if err != nil {
		writeError(w, r, err)
		return
	}
	from, err := parseDay(op, "from", r.URL.Query().Get("from"), to.AddDate(-1, 0, 0))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if to.Before(from) {
		writeError(w, r, badRequest(op, "from date is after the to date"))
		return
	}

	candles, err := s.broker.GetDailyHistory(r.Context(), symbol, from, to)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if candles == nil {
		candles = []*exchange.Candle{}
	}
	writeJSON(w, http.StatusOK, &HistoryResponse{Symbol: symbol, Candles: candles})
}

func (s *Server) sendOrder(w http.ResponseWriter, r *http.Request) {
	const op = "api-send-order"
	req := new(SendOrderRequest)
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		writeError(w, r, badRequest(op, "could not decode request body: %v", err))
		return
	}
	settlement, err := exchange.ParseSettlement(req.Settlement)
	if err != nil {
		writeError(w, r, badRequest(op, "%v", err))
		return
	}
	oreq := &exchange.OrderRequest{
		Account:       chi.URLParam(r, "account"),
		Symbol:        req.Symbol,
		Settlement:    settlement,
		Price:         req.Price,
		Size:          req.Size,
		ClientOrderID: req.ClientOrderID,
	}

	var number string
	switch strings.ToLower(req.Side) {
	case "buy":
		number, err = s.broker.SendBuyOrder(r.Context(), oreq)
	case "sell":
		number, err = s.broker.SendSellOrder(r.Context(), oreq)
	default:
		err = badRequest(op, "invalid order side %q (want buy or sell)", req.Side)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, &SendOrderResponse{OrderNumber: number})
}

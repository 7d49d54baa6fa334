// Copyright (c) 2025 fpxbs7777

package online

import (
	"bytes"
	"context"
	"strconv"

	"github.com/fpxbs7777/HM/errs"
	"github.com/fpxbs7777/HM/exchange"
	json "github.com/goccy/go-json"
)

// firstArg decodes the first push argument into v.
func firstArg(op string, args []json.RawMessage, v any) error {
	if len(args) == 0 {
		return errs.New(errs.KindData, op, errs.WithMessage("push has no arguments"))
	}
	if err := json.Unmarshal(args[0], v); err != nil {
		return errs.New(errs.KindData, op, errs.WithMessage("could not decode push argument"), errs.WithCause(err))
	}
	return nil
}

func termSettlement(raw json.RawMessage) exchange.Settlement {
	term, err := strconv.Atoi(string(bytes.Trim(bytes.TrimSpace(raw), `"`)))
	if err != nil {
		return exchange.SettlementNone
	}
	s, _ := exchange.SettlementFromTerm(term)
	return s
}

func (f *Feed) onSecurities(ctx context.Context, args []json.RawMessage) error {
	var rows []json.RawMessage
	if err := firstArg("feed-securities", args, &rows); err != nil {
		return err
	}
	table, err := f.normalizer.FeedQuotes("feed-securities", rows)
	if err != nil {
		return err
	}
	f.publish(&exchange.SecuritiesEvent{Quotes: table.Rows})
	return nil
}

func (f *Feed) onOptions(ctx context.Context, args []json.RawMessage) error {
	var rows []json.RawMessage
	if err := firstArg("feed-options", args, &rows); err != nil {
		return err
	}
	table, err := f.normalizer.Options("feed-options", rows)
	if err != nil {
		return err
	}
	f.publish(&exchange.OptionsEvent{Quotes: table.Rows})
	return nil
}

func (f *Feed) onRepos(ctx context.Context, args []json.RawMessage) error {
	var rows []json.RawMessage
	if err := firstArg("feed-repos", args, &rows); err != nil {
		return err
	}
	table, err := f.normalizer.Repos("feed-repos", rows)
	if err != nil {
		return err
	}
	f.publish(&exchange.ReposEvent{Quotes: table.Rows})
	return nil
}

func (f *Feed) bookEvent(op string, push *BookPush) (*exchange.OrderBookEvent, error) {
	levels, err := f.normalizer.BookLevels(op, push.Levels)
	if err != nil {
		return nil, err
	}
	return &exchange.OrderBookEvent{
		Symbol:     push.Symbol,
		Settlement: termSettlement(push.Term),
		Levels:     levels,
	}, nil
}

func (f *Feed) onOrderBook(ctx context.Context, args []json.RawMessage) error {
	push := new(BookPush)
	if err := firstArg("feed-order-book", args, push); err != nil {
		return err
	}
	ev, err := f.bookEvent("feed-order-book", push)
	if err != nil {
		return err
	}
	f.publish(ev)
	return nil
}

func (f *Feed) onPortfolio(ctx context.Context, args []json.RawMessage) error {
	push := new(PortfolioPush)
	if err := firstArg("feed-portfolio", args, push); err != nil {
		return err
	}
	quotes, err := f.normalizer.FeedQuotes("feed-portfolio", push.Quotes)
	if err != nil {
		return err
	}
	ev := &exchange.PortfolioEvent{Quotes: quotes.Rows}
	for _, book := range push.OrderBooks {
		if book == nil {
			continue
		}
		bev, err := f.bookEvent("feed-portfolio", book)
		if err != nil {
			return err
		}
		ev.OrderBooks = append(ev.OrderBooks, bev)
	}
	f.publish(ev)
	return nil
}

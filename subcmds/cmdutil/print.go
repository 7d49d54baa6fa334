// Copyright (c) 2025 fpxbs7777

package cmdutil

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fpxbs7777/HM/exchange"
	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"
)

func PrintJSON(w io.Writer, v any) error {
	js, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n", js)
	return err
}

// PrintTable writes the table rows as aligned columns. Dropped entries are
// listed after the rows.
func PrintTable[T any](w io.Writer, table *exchange.Table[T], row func(*T) []string) error {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, strings.ToUpper(strings.Join(table.Columns, "\t")))
	for _, r := range table.Rows {
		fmt.Fprintln(tw, strings.Join(row(r), "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	for _, issue := range table.Issues {
		fmt.Fprintf(w, "dropped %s\n", issue)
	}
	return nil
}

func Num(d decimal.NullDecimal) string {
	if !d.Valid {
		return "-"
	}
	return d.Decimal.String()
}

func Time(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format(time.DateTime)
}

func QuoteRow(q *exchange.Quote) []string {
	return []string{
		q.Symbol, string(q.Settlement), Num(q.BidSize), Num(q.Bid), Num(q.Ask),
		Num(q.AskSize), Num(q.Last), Num(q.Change), Num(q.Open), Num(q.High),
		Num(q.Low), Num(q.PreviousClose), Num(q.Turnover), Num(q.Volume),
		Num(q.Operations), Time(q.Datetime), q.Group,
	}
}

func OrderRow(o *exchange.OrderRow) []string {
	return []string{
		o.OrderID, o.Symbol, o.OrderType, Num(o.Quantity), Num(o.Price), Time(o.OrderDate), o.Status,
	}
}

func HoldingRow(h *exchange.Holding) []string {
	return []string{h.Symbol, Num(h.Quantity), Num(h.Price), Num(h.Can0), Num(h.Can2), Num(h.Can3)}
}

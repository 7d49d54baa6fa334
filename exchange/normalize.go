// Copyright (c) 2025 fpxbs7777

package exchange

import (
	"bytes"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/fpxbs7777/HM/errs"
	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"
)

// Source field names used by the site in board entries.
var stockFields = []string{
	"Symbol", "Term", "BuyQuantity", "BuyPrice", "SellPrice", "SellQuantity",
	"LastPrice", "VariationRate", "StartPrice", "MaxPrice", "MinPrice",
	"PreviousClose", "TotalAmountTraded", "TotalQuantityTraded", "Trades",
	"TradeDate", "Panel",
}

var summaryFields = []string{"Symbol", "LastPrice", "VariationRate", "MaxPrice", "MinPrice", "Panel"}

var orderFields = []string{
	"OrderID", "Symbol", "OrderType", "Quantity", "Price", "OrderDate", "Status",
}

var holdingFields = []string{"TICK", "CANT", "PCIO", "CAN0", "CAN2", "CAN3"}

var optionFields = []string{
	"Symbol", "BuyQuantity", "BuyPrice", "SellPrice", "SellQuantity",
	"LastPrice", "VariationRate", "StartPrice", "MaxPrice", "MinPrice",
	"PreviousClose", "TotalAmountTraded", "TotalQuantityTraded", "Trades",
	"TradeDate", "ExpirationDate", "StrikePrice", "CallPut", "Underlying",
	"ClosePrice",
}

var repoFields = []string{
	"Symbol", "Days", "Term", "BuyQuantity", "BuyPrice", "SellPrice",
	"SellQuantity", "LastPrice", "VariationRate", "StartPrice", "MaxPrice",
	"MinPrice", "PreviousClose", "TotalAmountTraded", "TotalQuantityTraded",
	"Trades", "TradeDate", "ClosePrice",
}

var bookFields = []string{"Position", "BuyQuantity", "BuyPrice", "SellPrice", "SellQuantity"}

var callPut = map[string]string{
	"0": "",
	"1": "CALL",
	"2": "PUT",
}

// Normalizer converts raw upstream entries into typed rows. The same input
// always produces the same output.
type Normalizer struct {
	// Location is the timezone of the site's dates and hours.
	Location *time.Location

	Policy DataPolicy
}

// DefaultLocation is the Buenos Aires timezone, which has no daylight saving
// time.
var DefaultLocation = time.FixedZone("ART", -3*60*60)

func (n *Normalizer) location() *time.Location {
	if n == nil || n.Location == nil {
		return DefaultLocation
	}
	return n.Location
}

type entry map[string]json.RawMessage

// Quotes normalizes board entries and stamps every row with the settlement.
func (n *Normalizer) Quotes(op string, raw []json.RawMessage, settlement Settlement) (*Table[Quote], error) {
	return n.quotes(op, raw, func(entry) Settlement { return settlement })
}

// FeedQuotes normalizes board entries and takes the settlement from each
// entry's term code.
func (n *Normalizer) FeedQuotes(op string, raw []json.RawMessage) (*Table[Quote], error) {
	return n.quotes(op, raw, func(e entry) Settlement { return e.settlement("Term") })
}

func (n *Normalizer) quotes(op string, raw []json.RawMessage, settlef func(entry) Settlement) (*Table[Quote], error) {
	return normalize(n, op, raw, QuoteColumns, stockFields, false, func(e entry) *Quote {
		return &Quote{
			Symbol:        e.str("Symbol"),
			Settlement:    settlef(e),
			BidSize:       e.num("BuyQuantity"),
			Bid:           e.num("BuyPrice"),
			Ask:           e.num("SellPrice"),
			AskSize:       e.num("SellQuantity"),
			Last:          e.num("LastPrice"),
			Change:        e.num("VariationRate"),
			Open:          e.num("StartPrice"),
			High:          e.num("MaxPrice"),
			Low:           e.num("MinPrice"),
			PreviousClose: e.num("PreviousClose"),
			Turnover:      e.num("TotalAmountTraded"),
			Volume:        e.num("TotalQuantityTraded"),
			Operations:    e.num("Trades"),
			Datetime:      e.timestamp("TradeDate", "Hour", n.location()),
			Group:         GroupName(e.str("Panel")),
		}
	})
}

// Summaries normalizes board entries into price summaries.
func (n *Normalizer) Summaries(op string, raw []json.RawMessage) (*Table[QuoteSummary], error) {
	return normalize(n, op, raw, QuoteSummaryColumns, summaryFields, false, func(e entry) *QuoteSummary {
		return &QuoteSummary{
			Symbol: e.str("Symbol"),
			Last:   e.num("LastPrice"),
			Change: e.num("VariationRate"),
			High:   e.num("MaxPrice"),
			Low:    e.num("MinPrice"),
			Group:  GroupName(e.str("Panel")),
		}
	})
}

// Orders normalizes order history entries.
func (n *Normalizer) Orders(op string, raw []json.RawMessage) (*Table[OrderRow], error) {
	return normalize(n, op, raw, OrderColumns, orderFields, false, func(e entry) *OrderRow {
		return &OrderRow{
			OrderID:   e.str("OrderID"),
			Symbol:    e.str("Symbol"),
			OrderType: e.str("OrderType"),
			Quantity:  e.num("Quantity"),
			Price:     e.num("Price"),
			OrderDate: e.timestamp("OrderDate", "Hour", n.location()),
			Status:    e.str("Status"),
		}
	})
}

// Holdings normalizes portfolio entries. Entries with a missing or null field
// are dropped and repeated positions are reported once.
func (n *Normalizer) Holdings(op string, raw []json.RawMessage) (*Table[Holding], error) {
	table, err := normalize(n, op, raw, HoldingColumns, holdingFields, true, func(e entry) *Holding {
		return &Holding{
			Symbol:   e.str("TICK"),
			Quantity: e.num("CANT"),
			Price:    e.num("PCIO"),
			Can0:     e.num("CAN0"),
			Can2:     e.num("CAN2"),
			Can3:     e.num("CAN3"),
		}
	})
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	rows := table.Rows[:0]
	for _, h := range table.Rows {
		key := strings.Join([]string{h.Symbol, nullString(h.Quantity), nullString(h.Price), nullString(h.Can0), nullString(h.Can2), nullString(h.Can3)}, "\x00")
		if seen[key] {
			continue
		}
		seen[key] = true
		rows = append(rows, h)
	}
	table.Rows = rows
	return table, nil
}

// Options normalizes options board entries.
func (n *Normalizer) Options(op string, raw []json.RawMessage) (*Table[OptionQuote], error) {
	return normalize(n, op, raw, OptionColumns, optionFields, false, func(e entry) *OptionQuote {
		return &OptionQuote{
			Symbol:          e.str("Symbol"),
			BidSize:         e.num("BuyQuantity"),
			Bid:             e.num("BuyPrice"),
			Ask:             e.num("SellPrice"),
			AskSize:         e.num("SellQuantity"),
			Last:            e.num("LastPrice"),
			Change:          e.num("VariationRate"),
			Open:            e.num("StartPrice"),
			High:            e.num("MaxPrice"),
			Low:             e.num("MinPrice"),
			PreviousClose:   e.num("PreviousClose"),
			Turnover:        e.num("TotalAmountTraded"),
			Volume:          e.num("TotalQuantityTraded"),
			Operations:      e.num("Trades"),
			Datetime:        e.timestamp("TradeDate", "Hour", n.location()),
			Expiration:      e.str("ExpirationDate"),
			Strike:          e.num("StrikePrice"),
			Kind:            callPut[e.str("CallPut")],
			UnderlyingAsset: e.str("Underlying"),
			Close:           e.num("ClosePrice"),
		}
	})
}

// Repos normalizes repo board entries.
func (n *Normalizer) Repos(op string, raw []json.RawMessage) (*Table[RepoQuote], error) {
	return normalize(n, op, raw, RepoColumns, repoFields, false, func(e entry) *RepoQuote {
		return &RepoQuote{
			Symbol:        e.str("Symbol"),
			Days:          e.num("Days"),
			Settlement:    e.settlement("Term"),
			BidAmount:     e.num("BuyQuantity"),
			BidRate:       e.num("BuyPrice"),
			AskRate:       e.num("SellPrice"),
			AskAmount:     e.num("SellQuantity"),
			Last:          e.num("LastPrice"),
			Change:        e.num("VariationRate"),
			Open:          e.num("StartPrice"),
			High:          e.num("MaxPrice"),
			Low:           e.num("MinPrice"),
			PreviousClose: e.num("PreviousClose"),
			Turnover:      e.num("TotalAmountTraded"),
			Volume:        e.num("TotalQuantityTraded"),
			Operations:    e.num("Trades"),
			Datetime:      e.timestamp("TradeDate", "Hour", n.location()),
			Close:         e.num("ClosePrice"),
		}
	})
}

// BookLevels normalizes order book levels.
func (n *Normalizer) BookLevels(op string, raw []json.RawMessage) ([]*BookLevel, error) {
	table, err := normalize(n, op, raw, nil, bookFields, false, func(e entry) *BookLevel {
		pos, _ := strconv.Atoi(e.str("Position"))
		return &BookLevel{
			Position: pos,
			BidSize:  e.num("BuyQuantity"),
			Bid:      e.num("BuyPrice"),
			Ask:      e.num("SellPrice"),
			AskSize:  e.num("SellQuantity"),
		}
	})
	if err != nil {
		return nil, err
	}
	return table.Rows, nil
}

func normalize[T any](n *Normalizer, op string, raw []json.RawMessage, columns, required []string, nullIsMissing bool, convert func(entry) *T) (*Table[T], error) {
	table := NewTable[T](columns)
	for i, r := range raw {
		var e entry
		if err := json.Unmarshal(r, &e); err != nil || e == nil {
			if err := n.drop(op, &table.Issues, &DataIssue{Index: i, Reason: "entry is not a json object"}); err != nil {
				return nil, err
			}
			continue
		}
		if missing := e.missing(required, nullIsMissing); len(missing) > 0 {
			if err := n.drop(op, &table.Issues, &DataIssue{Index: i, Missing: missing}); err != nil {
				return nil, err
			}
			continue
		}
		table.Rows = append(table.Rows, convert(e))
	}
	return table, nil
}

func (n *Normalizer) drop(op string, issues *[]*DataIssue, issue *DataIssue) error {
	if n != nil && n.Policy == Strict {
		return errs.New(errs.KindData, op, errs.WithMessage(issue.String()))
	}
	slog.Warn("dropped malformed upstream entry", "op", op, "issue", issue)
	*issues = append(*issues, issue)
	return nil
}

func (e entry) missing(keys []string, nullIsMissing bool) []string {
	var missing []string
	for _, k := range keys {
		v, ok := e[k]
		if !ok || (nullIsMissing && isNull(v)) {
			missing = append(missing, k)
		}
	}
	return missing
}

func isNull(v json.RawMessage) bool {
	v = bytes.TrimSpace(v)
	return len(v) == 0 || bytes.Equal(v, []byte("null"))
}

// str returns strings unquoted and other scalars in their literal form.
func (e entry) str(key string) string {
	v := bytes.TrimSpace(e[key])
	if isNull(v) {
		return ""
	}
	if v[0] == '"' {
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return ""
		}
		return strings.TrimSpace(s)
	}
	return string(v)
}

// num coerces the field to a decimal; non-numeric values become null.
func (e entry) num(key string) decimal.NullDecimal {
	s := e.str(key)
	if s == "" {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}

func (e entry) settlement(key string) Settlement {
	term, err := strconv.Atoi(e.str(key))
	if err != nil {
		return SettlementNone
	}
	s, _ := SettlementFromTerm(term)
	return s
}

// timestamp combines a YYYYMMDD date field with an HH:MM:SS hour field. It
// returns nil when either part cannot be parsed.
func (e entry) timestamp(dateKey, hourKey string, loc *time.Location) *time.Time {
	day, err := time.ParseInLocation("20060102", e.str(dateKey), loc)
	if err != nil {
		return nil
	}
	offset, ok := parseClock(e.str(hourKey))
	if !ok {
		return nil
	}
	t := day.Add(offset)
	return &t
}

func parseClock(s string) (time.Duration, bool) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, false
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 {
		return 0, false
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, false
	}
	var seconds float64
	if len(parts) == 3 {
		seconds, err = strconv.ParseFloat(parts[2], 64)
		if err != nil || seconds < 0 || seconds >= 60 {
			return 0, false
		}
	}
	d := time.Duration(hours)*time.Hour + time.Duration(minutes)*time.Minute + time.Duration(seconds*float64(time.Second))
	return d, true
}

func nullString(d decimal.NullDecimal) string {
	if !d.Valid {
		return "null"
	}
	return d.Decimal.String()
}

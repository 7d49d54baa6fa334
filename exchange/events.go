// Copyright (c) 2025 fpxbs7777

package exchange

import "time"

type EventKind int

const (
	EventOpen EventKind = iota + 1
	EventClose
	EventError
	EventPortfolio
	EventSecurities
	EventOptions
	EventRepos
	EventOrderBook
)

var eventKindNames = map[EventKind]string{
	EventOpen:       "open",
	EventClose:      "close",
	EventError:      "error",
	EventPortfolio:  "portfolio",
	EventSecurities: "securities",
	EventOptions:    "options",
	EventRepos:      "repos",
	EventOrderBook:  "order_book",
}

func (k EventKind) String() string {
	if s, ok := eventKindNames[k]; ok {
		return s
	}
	return "unknown"
}

// Event is a feed event. Consumers switch on the concrete type.
type Event interface {
	Kind() EventKind
}

type OpenEvent struct {
	Time time.Time
}

type CloseEvent struct {
	Time time.Time
}

type ErrorEvent struct {
	Err error

	// ConnectionLost is true when the error dropped the connection.
	ConnectionLost bool
}

// PortfolioEvent carries the account's watched symbols and their books.
type PortfolioEvent struct {
	Quotes []*Quote

	OrderBooks []*OrderBookEvent
}

type SecuritiesEvent struct {
	Quotes []*Quote
}

type OptionsEvent struct {
	Quotes []*OptionQuote
}

type ReposEvent struct {
	Quotes []*RepoQuote
}

type OrderBookEvent struct {
	Symbol     string
	Settlement Settlement

	Levels []*BookLevel
}

func (*OpenEvent) Kind() EventKind       { return EventOpen }
func (*CloseEvent) Kind() EventKind      { return EventClose }
func (*ErrorEvent) Kind() EventKind      { return EventError }
func (*PortfolioEvent) Kind() EventKind  { return EventPortfolio }
func (*SecuritiesEvent) Kind() EventKind { return EventSecurities }
func (*OptionsEvent) Kind() EventKind    { return EventOptions }
func (*ReposEvent) Kind() EventKind      { return EventRepos }
func (*OrderBookEvent) Kind() EventKind  { return EventOrderBook }

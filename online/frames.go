// Copyright (c) 2025 fpxbs7777

package online

import (
	"strings"

	"github.com/fpxbs7777/HM/exchange"
	json "github.com/goccy/go-json"
)

// Invocation is a client to server hub call.
type Invocation struct {
	Hub    string   `json:"H"`
	Method string   `json:"M"`
	Args   []string `json:"A"`
	ID     int64    `json:"I"`
}

// Frame is a server to client message. Pushes carry Messages; replies to
// invocations carry the invocation id and an optional error.
type Frame struct {
	Cursor   string          `json:"C,omitempty"`
	Messages []*HubMessage   `json:"M,omitempty"`
	ID       json.RawMessage `json:"I,omitempty"`
	Error    string          `json:"E,omitempty"`
}

type HubMessage struct {
	Hub    string            `json:"H"`
	Method string            `json:"M"`
	Args   []json.RawMessage `json:"A"`
}

// BookPush is the payload of an order book push.
type BookPush struct {
	Symbol string            `json:"Symbol"`
	Term   json.RawMessage   `json:"Term"`
	Levels []json.RawMessage `json:"Levels"`
}

// PortfolioPush is the payload of a personal portfolio push.
type PortfolioPush struct {
	Quotes     []json.RawMessage `json:"Quotes"`
	OrderBooks []*BookPush       `json:"OrderBooks"`
}

const (
	methodJoinGroup = "JoinGroup"
	methodQuitGroup = "QuitGroup"
)

func securitiesChannel(panel exchange.Panel, settlement exchange.Settlement) string {
	return "md_" + panel.GroupName() + "_" + string(settlement)
}

func optionsChannel() string { return "md_options" }

func reposChannel() string { return "md_repos" }

func orderBookChannel(symbol string, settlement exchange.Settlement) string {
	return "book_" + strings.ToUpper(symbol) + "_" + string(settlement)
}

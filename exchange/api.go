// Copyright (c) 2025 fpxbs7777

package exchange

import (
	"context"
	"io"
	"time"

	"github.com/visvasity/topic"
)

// Broker is the request/response surface of a logged-in home-broker session.
type Broker interface {
	io.Closer

	GetPanel(ctx context.Context, panel Panel, settlement Settlement) (*Table[Quote], error)

	GetOrderHistory(ctx context.Context, account string) (*Table[OrderRow], error)

	// GetOrdersStatus returns the current status of the account's orders.
	GetOrdersStatus(ctx context.Context, account string) (*Table[OrderRow], error)

	GetPortfolio(ctx context.Context, account string) (*Table[Holding], error)

	GetDailyHistory(ctx context.Context, symbol string, from, to time.Time) ([]*Candle, error)

	// SendBuyOrder and SendSellOrder place limit orders and return the order
	// number assigned by the broker.
	SendBuyOrder(ctx context.Context, req *OrderRequest) (string, error)
	SendSellOrder(ctx context.Context, req *OrderRequest) (string, error)
}

// Subscription is a handle to an active feed channel.
type Subscription interface {
	// Channel returns the name of the upstream channel.
	Channel() string

	// Cancel stops the upstream channel. Events already queued are still
	// delivered.
	Cancel(ctx context.Context) error
}

// Feed is a realtime market data connection.
type Feed interface {
	io.Closer

	// Events returns a new receiver for all feed events.
	Events() (*topic.Receiver[Event], error)

	SubscribeSecurities(ctx context.Context, panel Panel, settlement Settlement) (Subscription, error)
	SubscribeOptions(ctx context.Context) (Subscription, error)
	SubscribeRepos(ctx context.Context) (Subscription, error)
	SubscribeOrderBook(ctx context.Context, symbol string, settlement Settlement) (Subscription, error)
}

// Copyright (c) 2025 fpxbs7777

package subcmds

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/fpxbs7777/HM/exchange"
	"github.com/fpxbs7777/HM/subcmds/cmdutil"
	"github.com/shopspring/decimal"
	"github.com/visvasity/cli"
)

type orderFlags struct {
	cmdutil.Flags

	account    string
	settlement string
	price      string
	size       string
	clientID   string
}

func (c *orderFlags) setFlags(fset *flag.FlagSet) {
	c.Flags.SetFlags(fset)
	fset.StringVar(&c.account, "account", "", "account (comitente) number")
	fset.StringVar(&c.settlement, "settlement", "48hs", "settlement term (spot, 24hs or 48hs)")
	fset.StringVar(&c.price, "price", "", "limit price")
	fset.StringVar(&c.size, "size", "", "number of units")
	fset.StringVar(&c.clientID, "client-order-id", "", "client order id (default random uuid)")
}

func (c *orderFlags) send(ctx context.Context, args []string, buy bool) error {
	if len(args) != 1 {
		return fmt.Errorf("this command takes one (symbol) argument")
	}
	settlement, err := exchange.ParseSettlement(c.settlement)
	if err != nil {
		return err
	}
	price, err := decimal.NewFromString(c.price)
	if err != nil {
		return fmt.Errorf("could not parse -price value: %w", err)
	}
	size, err := decimal.NewFromString(c.size)
	if err != nil {
		return fmt.Errorf("could not parse -size value: %w", err)
	}
	defer c.SetupLogging()()

	client, secrets, err := c.NewClient(ctx, nil)
	if err != nil {
		return err
	}
	defer client.Close()

	account, err := cmdutil.Account(c.account, secrets)
	if err != nil {
		return err
	}
	req := &exchange.OrderRequest{
		Account:       account,
		Symbol:        strings.ToUpper(args[0]),
		Settlement:    settlement,
		Price:         price,
		Size:          size,
		ClientOrderID: c.clientID,
	}
	send := client.SendSellOrder
	if buy {
		send = client.SendBuyOrder
	}
	number, err := send(ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.Stdout(ctx), "order %s accepted\n", number)
	return nil
}

type Buy struct {
	orderFlags
}

func (c *Buy) Purpose() string {
	return "Places a limit buy order"
}

func (c *Buy) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("buy", flag.ContinueOnError)
	c.setFlags(fset)
	return "buy", fset, cli.CmdFunc(func(ctx context.Context, args []string) error {
		return c.send(ctx, args, true)
	})
}

type Sell struct {
	orderFlags
}

func (c *Sell) Purpose() string {
	return "Places a limit sell order"
}

func (c *Sell) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("sell", flag.ContinueOnError)
	c.setFlags(fset)
	return "sell", fset, cli.CmdFunc(func(ctx context.Context, args []string) error {
		return c.send(ctx, args, false)
	})
}

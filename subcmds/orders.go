// Copyright (c) 2025 fpxbs7777

package subcmds

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fpxbs7777/HM/exchange"
	"github.com/fpxbs7777/HM/subcmds/cmdutil"
	"github.com/fpxbs7777/HM/watcher"
	"github.com/visvasity/cli"
)

type SyncOrders struct {
	cmdutil.Flags

	account string
}

func (c *SyncOrders) Purpose() string {
	return "Saves the current order statuses in the local database"
}

func (c *SyncOrders) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("sync-orders", flag.ContinueOnError)
	c.Flags.SetFlags(fset)
	fset.StringVar(&c.account, "account", "", "account (comitente) number")
	return "sync-orders", fset, cli.CmdFunc(c.run)
}

func (c *SyncOrders) run(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("this command takes no arguments")
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
	ds, closer, err := c.OpenDatastore()
	if err != nil {
		return err
	}
	defer closer()

	table, err := client.GetOrdersStatus(ctx, account)
	if err != nil {
		return err
	}
	changes, err := ds.SaveOrders(ctx, account, table.Rows)
	if err != nil {
		return err
	}
	stdout := cli.Stdout(ctx)
	for _, ch := range changes {
		fmt.Fprintln(stdout, watcher.Message(ch))
	}
	fmt.Fprintf(stdout, "saved %d orders (%d changed)\n", len(table.Rows), len(changes))
	return nil
}

type ListOrders struct {
	cmdutil.Flags

	account   string
	printJSON bool
}

func (c *ListOrders) Purpose() string {
	return "Prints the orders saved in the local database"
}

func (c *ListOrders) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("list-orders", flag.ContinueOnError)
	c.Flags.SetFlags(fset)
	fset.StringVar(&c.account, "account", "", "account (comitente) number")
	fset.BoolVar(&c.printJSON, "json", false, "when true, prints the table as json")
	return "list-orders", fset, cli.CmdFunc(c.run)
}

func (c *ListOrders) run(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("this command takes no arguments")
	}
	defer c.SetupLogging()()

	secrets, err := c.Secrets()
	if err != nil {
		return err
	}
	account, err := cmdutil.Account(c.account, secrets)
	if err != nil {
		return err
	}
	ds, closer, err := c.OpenDatastore()
	if err != nil {
		return err
	}
	defer closer()

	table := exchange.NewTable[exchange.OrderRow](exchange.OrderColumns)
	collect := func(o *exchange.OrderRow) error {
		table.Rows = append(table.Rows, o)
		return nil
	}
	if err := ds.ScanOrders(ctx, account, collect); err != nil {
		return err
	}
	if c.printJSON {
		return cmdutil.PrintJSON(cli.Stdout(ctx), table)
	}
	return cmdutil.PrintTable(cli.Stdout(ctx), table, cmdutil.OrderRow)
}

type WatchOrders struct {
	cmdutil.Flags

	account string
}

func (c *WatchOrders) Purpose() string {
	return "Polls order statuses and notifies about changes"
}

func (c *WatchOrders) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("watch-orders", flag.ContinueOnError)
	c.Flags.SetFlags(fset)
	fset.StringVar(&c.account, "account", "", "account (comitente) number")
	return "watch-orders", fset, cli.CmdFunc(c.run)
}

func (c *WatchOrders) Description() string {
	return `

Command "watch-orders" polls the order statuses of an account at the
configured poll_interval, saves them in the local database and sends a
notification for every new order or status change. Notifications go to the
log and to the Telegram and Pushover keys in the secrets file, if any.

`
}

func (c *WatchOrders) run(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("this command takes no arguments")
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer c.SetupLogging()()

	cfg, err := c.Config()
	if err != nil {
		return err
	}
	client, secrets, err := c.NewClient(ctx, nil)
	if err != nil {
		return err
	}
	defer client.Close()

	account, err := cmdutil.Account(c.account, secrets)
	if err != nil {
		return err
	}
	notifier, err := secrets.Notifiers()
	if err != nil {
		return err
	}
	ds, closer, err := c.OpenDatastore()
	if err != nil {
		return err
	}
	defer closer()

	w, err := watcher.New(client, ds, notifier, account, &watcher.Options{Interval: cfg.PollInterval})
	if err != nil {
		return err
	}
	defer w.Close()

	w.Start()
	<-ctx.Done()
	return nil
}

// Copyright (c) 2025 fpxbs7777

package subcmds

import (
	"context"
	"flag"
	"fmt"

	"github.com/fpxbs7777/HM/subcmds/cmdutil"
	"github.com/visvasity/cli"
)

type Orders struct {
	cmdutil.Flags

	account   string
	printJSON bool
}

func (c *Orders) Purpose() string {
	return "Prints the order history of an account"
}

func (c *Orders) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("orders", flag.ContinueOnError)
	c.Flags.SetFlags(fset)
	fset.StringVar(&c.account, "account", "", "account (comitente) number")
	fset.BoolVar(&c.printJSON, "json", false, "when true, prints the table as json")
	return "orders", fset, cli.CmdFunc(c.run)
}

func (c *Orders) run(ctx context.Context, args []string) error {
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
	table, err := client.GetOrderHistory(ctx, account)
	if err != nil {
		return err
	}
	if c.printJSON {
		return cmdutil.PrintJSON(cli.Stdout(ctx), table)
	}
	return cmdutil.PrintTable(cli.Stdout(ctx), table, cmdutil.OrderRow)
}

type Portfolio struct {
	cmdutil.Flags

	account   string
	printJSON bool
}

func (c *Portfolio) Purpose() string {
	return "Prints the holdings of an account"
}

func (c *Portfolio) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("portfolio", flag.ContinueOnError)
	c.Flags.SetFlags(fset)
	fset.StringVar(&c.account, "account", "", "account (comitente) number")
	fset.BoolVar(&c.printJSON, "json", false, "when true, prints the table as json")
	return "portfolio", fset, cli.CmdFunc(c.run)
}

func (c *Portfolio) run(ctx context.Context, args []string) error {
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
	table, err := client.GetPortfolio(ctx, account)
	if err != nil {
		return err
	}
	if c.printJSON {
		return cmdutil.PrintJSON(cli.Stdout(ctx), table)
	}
	return cmdutil.PrintTable(cli.Stdout(ctx), table, cmdutil.HoldingRow)
}

// Copyright (c) 2025 fpxbs7777

package subcmds

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/fpxbs7777/HM/exchange"
	"github.com/fpxbs7777/HM/subcmds/cmdutil"
	"github.com/visvasity/cli"
)

type Panel struct {
	cmdutil.Flags

	settlement string
	summary    bool
	save       bool
	cached     bool
	printJSON  bool
}

func (c *Panel) Purpose() string {
	return "Prints the quotes of a market panel"
}

func (c *Panel) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("panel", flag.ContinueOnError)
	c.Flags.SetFlags(fset)
	fset.StringVar(&c.settlement, "settlement", "48hs", "settlement term (spot, 24hs or 48hs)")
	fset.BoolVar(&c.summary, "summary", false, "when true, prints only the price summary columns")
	fset.BoolVar(&c.save, "save", false, "when true, saves the quotes in the local database")
	fset.BoolVar(&c.cached, "cached", false, "when true, prints the last saved quotes without contacting the site")
	fset.BoolVar(&c.printJSON, "json", false, "when true, prints the table as json")
	return "panel", fset, cli.CmdFunc(c.run)
}

func (c *Panel) Description() string {
	return `

Command "panel" fetches one market panel from the broker site. The panel is
named by its group name or by its site code:

  bluechips (accionesLideres), general_board (panelGeneral), cedears,
  government_bonds (rentaFija), short_term_government_bonds (letes),
  corporate_bonds (obligaciones)

Example:

  $ hmbroker panel -settlement=spot bluechips

With -cached the last snapshot saved by -save (or by the serve command) is
printed instead, so no login is needed.

`
}

func (c *Panel) run(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("this command takes one (panel name) argument")
	}
	panel, err := exchange.ParsePanel(args[0])
	if err != nil {
		return err
	}
	settlement, err := exchange.ParseSettlement(c.settlement)
	if err != nil {
		return err
	}
	defer c.SetupLogging()()

	if c.cached {
		return c.printCached(ctx, panel, settlement)
	}

	client, _, err := c.NewClient(ctx, nil)
	if err != nil {
		return err
	}
	defer client.Close()

	stdout := cli.Stdout(ctx)
	if c.summary {
		table, err := client.GetPanelSummary(ctx, panel, settlement)
		if err != nil {
			return err
		}
		if c.printJSON {
			return cmdutil.PrintJSON(stdout, table)
		}
		return cmdutil.PrintTable(stdout, table, func(q *exchange.QuoteSummary) []string {
			return []string{q.Symbol, cmdutil.Num(q.Last), cmdutil.Num(q.Change), cmdutil.Num(q.High), cmdutil.Num(q.Low), q.Group}
		})
	}

	table, err := client.GetPanel(ctx, panel, settlement)
	if err != nil {
		return err
	}
	if c.save {
		ds, closer, err := c.OpenDatastore()
		if err != nil {
			return err
		}
		defer closer()
		if err := ds.SaveQuotes(ctx, panel, settlement, time.Now(), table.Rows); err != nil {
			return err
		}
	}
	if c.printJSON {
		return cmdutil.PrintJSON(stdout, table)
	}
	return cmdutil.PrintTable(stdout, table, cmdutil.QuoteRow)
}

func (c *Panel) printCached(ctx context.Context, panel exchange.Panel, settlement exchange.Settlement) error {
	ds, closer, err := c.OpenDatastore()
	if err != nil {
		return err
	}
	defer closer()

	at, quotes, err := ds.LatestQuotes(ctx, panel, settlement)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("no saved quotes for panel %s with settlement %q", panel.GroupName(), settlement)
		}
		return err
	}
	table := exchange.NewTable[exchange.Quote](exchange.QuoteColumns)
	table.Rows = append(table.Rows, quotes...)

	stdout := cli.Stdout(ctx)
	if c.printJSON {
		return cmdutil.PrintJSON(stdout, table)
	}
	fmt.Fprintf(stdout, "saved at %s\n", at.Format(time.DateTime))
	return cmdutil.PrintTable(stdout, table, cmdutil.QuoteRow)
}

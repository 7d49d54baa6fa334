// Copyright (c) 2025 fpxbs7777

package subcmds

import (
	"context"
	"flag"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fpxbs7777/HM/exchange"
	"github.com/fpxbs7777/HM/subcmds/cmdutil"
	"github.com/visvasity/cli"
)

type History struct {
	cmdutil.Flags

	from, to  string
	printJSON bool
}

func (c *History) Purpose() string {
	return "Prints the daily price history of a symbol"
}

func (c *History) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("history", flag.ContinueOnError)
	c.Flags.SetFlags(fset)
	fset.StringVar(&c.from, "from", "", "first day in YYYY-MM-DD format (default one year before -to)")
	fset.StringVar(&c.to, "to", "", "last day in YYYY-MM-DD format (default today)")
	fset.BoolVar(&c.printJSON, "json", false, "when true, prints the candles as json")
	return "history", fset, cli.CmdFunc(c.run)
}

func (c *History) run(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("this command takes one (symbol) argument")
	}
	symbol := strings.ToUpper(args[0])

	to := time.Now().In(exchange.DefaultLocation)
	if c.to != "" {
		v, err := time.ParseInLocation(time.DateOnly, c.to, exchange.DefaultLocation)
		if err != nil {
			return fmt.Errorf("could not parse -to date: %w", err)
		}
		to = v
	}
	from := to.AddDate(-1, 0, 0)
	if c.from != "" {
		v, err := time.ParseInLocation(time.DateOnly, c.from, exchange.DefaultLocation)
		if err != nil {
			return fmt.Errorf("could not parse -from date: %w", err)
		}
		from = v
	}
	defer c.SetupLogging()()

	client, _, err := c.NewClient(ctx, nil)
	if err != nil {
		return err
	}
	defer client.Close()

	candles, err := client.GetDailyHistory(ctx, symbol, from, to)
	if err != nil {
		return err
	}
	if c.printJSON {
		return cmdutil.PrintJSON(cli.Stdout(ctx), candles)
	}
	tw := tabwriter.NewWriter(cli.Stdout(ctx), 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tOPEN\tHIGH\tLOW\tCLOSE\tVOLUME")
	for _, v := range candles {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", v.Date.Format(time.DateOnly), v.Open, v.High, v.Low, v.Close, v.Volume)
	}
	return tw.Flush()
}

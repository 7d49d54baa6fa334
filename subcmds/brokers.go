// Copyright (c) 2025 fpxbs7777

package subcmds

import (
	"context"
	"flag"
	"fmt"
	"text/tabwriter"

	"github.com/fpxbs7777/HM/subcmds/cmdutil"
	"github.com/visvasity/cli"
)

type Brokers struct {
	cmdutil.Flags
}

func (c *Brokers) Purpose() string {
	return "Prints the supported brokers"
}

func (c *Brokers) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("brokers", flag.ContinueOnError)
	c.Flags.SetFlags(fset)
	return "brokers", fset, cli.CmdFunc(c.run)
}

func (c *Brokers) run(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("this command takes no arguments")
	}
	cfg, err := c.Config()
	if err != nil {
		return err
	}
	table, err := cfg.BrokerTable()
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(cli.Stdout(ctx), 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tHOST\tNAME")
	for _, b := range table.List() {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", b.ID, b.Host, b.Name)
	}
	return tw.Flush()
}

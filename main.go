// Copyright (c) 2025 fpxbs7777

package main

import (
	"context"
	"log"
	"os"

	"github.com/fpxbs7777/HM/subcmds"
	"github.com/visvasity/cli"
)

func main() {
	marketCmds := []cli.Command{
		new(subcmds.Panel),
		new(subcmds.History),
		new(subcmds.Online),
	}

	accountCmds := []cli.Command{
		new(subcmds.Orders),
		new(subcmds.Portfolio),
		new(subcmds.Buy),
		new(subcmds.Sell),
	}

	ordersCmds := []cli.Command{
		new(subcmds.SyncOrders),
		new(subcmds.ListOrders),
		new(subcmds.WatchOrders),
	}

	cmds := []cli.Command{
		new(subcmds.Brokers),
		new(subcmds.Serve),
		new(subcmds.EncryptPassword),
		cli.CommandGroup("market", "View market panels and quotes", marketCmds...),
		cli.CommandGroup("account", "View account orders and holdings or trade", accountCmds...),
		cli.CommandGroup("orders", "Save and watch order statuses locally", ordersCmds...),
	}
	if err := cli.Run(context.Background(), cmds, os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}

// Copyright (c) 2025 fpxbs7777

package subcmds

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fpxbs7777/HM/exchange"
	"github.com/fpxbs7777/HM/online"
	"github.com/fpxbs7777/HM/subcmds/cmdutil"
	"github.com/visvasity/cli"
)

type Online struct {
	cmdutil.Flags

	settlement string
	options    bool
	repos      bool
	books      string
}

func (c *Online) Purpose() string {
	return "Streams realtime quotes of market panels"
}

func (c *Online) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("online", flag.ContinueOnError)
	c.Flags.SetFlags(fset)
	fset.StringVar(&c.settlement, "settlement", "48hs", "settlement term of the panels and order books")
	fset.BoolVar(&c.options, "options", false, "when true, subscribes to the options board")
	fset.BoolVar(&c.repos, "repos", false, "when true, subscribes to the repo (caución) board")
	fset.StringVar(&c.books, "books", "", "comma separated symbols to receive order books for")
	return "online", fset, cli.CmdFunc(c.run)
}

func (c *Online) Description() string {
	return `

Command "online" logs into the broker site and streams realtime quotes for
the panels named in the arguments. Every quote update is printed as one json
line. Stop it with Ctrl-C.

Example:

  $ hmbroker online -books=GGAL,YPFD bluechips cedears

`
}

func (c *Online) run(ctx context.Context, args []string) error {
	settlement, err := exchange.ParseSettlement(c.settlement)
	if err != nil {
		return err
	}
	var panels []exchange.Panel
	for _, arg := range args {
		p, err := exchange.ParsePanel(arg)
		if err != nil {
			return err
		}
		panels = append(panels, p)
	}
	var books []string
	if c.books != "" {
		books = strings.Split(c.books, ",")
	}
	if len(panels) == 0 && len(books) == 0 && !c.options && !c.repos {
		return fmt.Errorf("nothing to subscribe (name panels or use -books, -options or -repos)")
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer c.SetupLogging()()

	client, _, err := c.NewClient(ctx, nil)
	if err != nil {
		return err
	}
	defer client.Close()

	cfg, err := c.Config()
	if err != nil {
		return err
	}
	opts, err := cfg.FeedOptions()
	if err != nil {
		return err
	}
	feed, err := online.New(client, opts)
	if err != nil {
		return err
	}
	defer feed.Close()

	receiver, err := feed.Events()
	if err != nil {
		return err
	}
	defer receiver.Close()

	for _, p := range panels {
		if _, err := feed.SubscribeSecurities(ctx, p, settlement); err != nil {
			return err
		}
	}
	for _, symbol := range books {
		if _, err := feed.SubscribeOrderBook(ctx, strings.TrimSpace(symbol), settlement); err != nil {
			return err
		}
	}
	if c.options {
		if _, err := feed.SubscribeOptions(ctx); err != nil {
			return err
		}
	}
	if c.repos {
		if _, err := feed.SubscribeRepos(ctx); err != nil {
			return err
		}
	}
	if err := feed.Connect(); err != nil {
		return err
	}

	// Closing the feed closes the receiver, which unblocks Receive.
	context.AfterFunc(ctx, func() { feed.Close() })

	stdout := cli.Stdout(ctx)
	for {
		ev, err := receiver.Receive()
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, os.ErrClosed) || ctx.Err() != nil {
				return nil
			}
			return err
		}
		if err := printEvent(stdout, ev); err != nil {
			return err
		}
	}
}

func printEvent(w io.Writer, ev exchange.Event) error {
	switch v := ev.(type) {
	case *exchange.OpenEvent:
		slog.Info("realtime feed is connected", "at", v.Time)
		return nil
	case *exchange.CloseEvent:
		slog.Info("realtime feed is disconnected", "at", v.Time)
		return nil
	case *exchange.ErrorEvent:
		slog.Warn("realtime feed error", "connection-lost", v.ConnectionLost, "err", v.Err)
		return nil
	}
	type line struct {
		Kind  string         `json:"kind"`
		Event exchange.Event `json:"event"`
	}
	return cmdutil.PrintJSON(w, &line{Kind: ev.Kind().String(), Event: ev})
}

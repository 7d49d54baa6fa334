// Copyright (c) 2025 fpxbs7777

package subcmds

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fpxbs7777/HM/api"
	"github.com/fpxbs7777/HM/shda"
	"github.com/fpxbs7777/HM/subcmds/cmdutil"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/visvasity/cli"
)

type Serve struct {
	cmdutil.Flags

	listen string
}

func (c *Serve) Purpose() string {
	return "Serves the broker session over a local JSON HTTP API"
}

func (c *Serve) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("serve", flag.ContinueOnError)
	c.Flags.SetFlags(fset)
	fset.StringVar(&c.listen, "listen", "", "listen address (default listen_address from the config)")
	return "serve", fset, cli.CmdFunc(c.run)
}

func (c *Serve) run(ctx context.Context, args []string) error {
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
	addr := cfg.ListenAddress
	if c.listen != "" {
		addr = c.listen
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	client, _, err := c.NewClient(ctx, shda.NewMetrics(reg))
	if err != nil {
		return err
	}
	defer client.Close()

	ds, closer, err := c.OpenDatastore()
	if err != nil {
		return err
	}
	defer closer()

	handler, err := api.New(client, &api.Options{CacheTTL: cfg.CacheTTL, Gatherer: reg, Snapshots: ds})
	if err != nil {
		return err
	}
	defer handler.Close()

	server := &http.Server{
		Addr:    addr,
		Handler: handler,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}
	errc := make(chan error, 1)
	go func() {
		errc <- server.ListenAndServe()
	}()
	slog.Info("started hmbroker api server", "address", addr, "broker", client.Broker())

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	slog.Info("hmbroker api server is shutting down")
	sctx, scancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer scancel()
	if err := server.Shutdown(sctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

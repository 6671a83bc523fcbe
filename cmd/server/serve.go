package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/subcommands"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/kanakk/internal/web"
)

const shutdownTimeout = 10 * time.Second

type serveCmd struct {
	seed bool
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "run the HTTP server" }
func (*serveCmd) Usage() string {
	return `serve [-seed]

  Serves the web interface on the configured address until SIGINT or
  SIGTERM, then drains in-flight requests.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.seed, "seed", false, "create the demo company first if the database is empty")
}

func (c *serveCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := newApp()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer a.close()

	if c.seed {
		if err := a.seed(ctx); err != nil {
			a.logger.Error("Failed to seed", "error", err)
			return subcommands.ExitFailure
		}
	}

	srv, err := web.New(web.Options{
		Store:        a.store,
		Accounts:     a.accounts,
		Ledgers:      a.ledgers,
		Entries:      a.entries,
		Sessions:     a.sessions,
		Metrics:      a.metrics,
		Gatherer:     a.registry,
		CookieSecure: a.cfg.CookieSecure,
		Logger:       a.logger,
	})
	if err != nil {
		a.logger.Error("Failed to initialize handlers", "error", err)
		return subcommands.ExitFailure
	}

	httpServer := &http.Server{
		Addr: a.cfg.Addr,
		// h2c serves HTTP/2 without TLS for proxies that speak it.
		Handler:      h2c.NewHandler(srv.Handler(), &http2.Server{}),
		ReadTimeout:  a.cfg.ReadTimeout,
		WriteTimeout: a.cfg.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		a.logger.Info("Server starting", "address", a.cfg.Addr)
		errc <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("Server failed", "error", err)
			return subcommands.ExitFailure
		}
	case <-ctx.Done():
		a.logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			a.logger.Error("Shutdown failed", "error", err)
			return subcommands.ExitFailure
		}
	}
	return subcommands.ExitSuccess
}

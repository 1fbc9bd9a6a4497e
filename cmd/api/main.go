package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/httplog"
	"github.com/marcelsud/wallet-connector/auth"
	"github.com/marcelsud/wallet-connector/config"
	"github.com/marcelsud/wallet-connector/internal/bootstrap"
	"github.com/marcelsud/wallet-connector/internal/http/chi"
	"github.com/marcelsud/wallet-connector/metrics"
)

const TIMEOUT = 30 * time.Second

/* api is the entry point of the connector: it wires configuration, the wallet backend,
 * the request manager and the HTTP layer, then serves until a termination signal arrives.
 * Imports only flow downwards: the binary imports the domain packages, which import storage.
 */

func main() {
	cfg, err := config.GetConfig()
	if err != nil {
		fmt.Println(err)
		return
	}
	if err := cfg.Validate(); err != nil {
		fmt.Println(err)
		return
	}

	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT,
	)
	defer stop()

	logger := httplog.NewLogger("wallet-connector", httplog.Options{
		JSON: true,
	})

	connector, err := bootstrap.NewConnector(ctx, cfg, logger)
	if err != nil {
		fmt.Println(err)
		return
	}

	exporter, err := metrics.NewOTelExporter(
		metrics.NewConnectorCollector(connector.Manager, connector.Callback),
		cfg.ConnectorVersion,
		nil,
	)
	if err != nil {
		fmt.Println(err)
		return
	}

	r := chi.Handlers(ctx, chi.Dependencies{
		Requests: connector.Manager,
		Auth:     auth.NewStaticTokens(cfg.GetAPITokens()...),
		Metrics:  exporter.ServeHTTP(),
		Logger:   &logger,
		Timeout:  2 * cfg.GetUpstreamTimeout(),
	})
	srv := &http.Server{
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 3 * cfg.GetUpstreamTimeout(),
		Addr:         ":" + cfg.Port,
		Handler:      r,
	}

	errShutdown := make(chan error, 1)
	go shutdown(srv, ctx, errShutdown, func(ctx context.Context) error {
		if err := connector.Close(ctx); err != nil {
			return err
		}
		return exporter.Shutdown(ctx)
	})
	fmt.Printf("Listening on port %s\n", cfg.Port)
	err = srv.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		fmt.Println(err)
		return
	}
	err = <-errShutdown
	if err != nil {
		fmt.Println(err)
		return
	}
}

// shutdown stops the HTTP server first, then drains background jobs
func shutdown(server *http.Server, ctxShutdown context.Context, errShutdown chan error, drain func(context.Context) error) {
	<-ctxShutdown.Done()

	ctxTimeout, stop := context.WithTimeout(context.Background(), TIMEOUT)
	defer stop()

	if err := server.Shutdown(ctxTimeout); err != nil {
		errShutdown <- fmt.Errorf("forcing closing the server: %w", err)
		return
	}
	fmt.Printf("\nShutting down server...\n")
	if err := drain(ctxTimeout); err != nil {
		errShutdown <- fmt.Errorf("draining background jobs: %w", err)
		return
	}
	errShutdown <- nil
}

// Command server runs the vantage matching engine: it loads an instrument
// config, starts the request transport, and exposes metrics and a live
// trade feed on their own ports.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"vantage/internal/dispatcher"
	"vantage/internal/domain"
	"vantage/internal/feed"
	"vantage/internal/handler"
	"vantage/internal/instrument"
	"vantage/internal/metrics"
	"vantage/internal/transport"
)

func main() {
	os.Exit(run())
}

func run() int {
	addr := flag.String("address", "0.0.0.0", "address to bind the request transport to")
	port := flag.Int("port", 9001, "port to bind the request transport to")
	configPath := flag.String("config", "", "path to the instrument config JSON file (compulsory)")
	metricsAddr := flag.String("metrics-address", "0.0.0.0:9002", "address:port to serve /metrics on")
	feedAddr := flag.String("feed-address", "0.0.0.0:9003", "address:port to serve the live trade feed websocket on")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	flag.Parse()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	if *configPath == "" {
		fmt.Println("Error: -config is compulsory.")
		flag.Usage()
		return 1
	}

	registry, err := instrument.Load(*configPath)
	if err != nil {
		log.Error().Err(err).Msg("failed to load instrument config")
		return 1
	}

	disp := dispatcher.New(registry)
	m := metrics.New()
	feedSrv := feed.NewServer(log.Logger)

	for _, symbol := range registry.Symbols() {
		b, err := disp.Book(symbol)
		if err != nil {
			log.Error().Err(err).Str("symbol", symbol).Msg("failed to resolve book at startup")
			return 1
		}
		sym := symbol
		b.SetTradeCallback(func(t domain.Trade) {
			feedSrv.Publish(sym, t)
		})
	}

	h := &handler.Handler{
		Registry:   registry,
		Dispatcher: disp,
		Metrics:    m,
		Logger:     log.Logger,
	}

	srv := transport.New(*addr, *port, h)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metricsServer := &http.Server{Addr: *metricsAddr, Handler: m.Handler()}
	feedServer := &http.Server{Addr: *feedAddr, Handler: feedSrv.Handler()}

	go func() {
		log.Info().Str("address", *metricsAddr).Msg("metrics server listening")
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("metrics server failed")
		}
	}()

	go func() {
		log.Info().Str("address", *feedAddr).Msg("trade feed server listening")
		if err := feedServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("trade feed server failed")
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run(ctx)
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("transport server exited with error")
			return 1
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	metricsServer.Shutdown(shutdownCtx)
	feedServer.Shutdown(shutdownCtx)

	return 0
}

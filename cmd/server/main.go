package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/paperscan/paperscan/config"
	"github.com/paperscan/paperscan/pkg/document/pdf"
	"github.com/paperscan/paperscan/pkg/ledger"
	"github.com/paperscan/paperscan/pkg/otel"
	"github.com/paperscan/paperscan/pkg/pipeline"
	"github.com/paperscan/paperscan/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "paperscan.yaml", "YAML config file")
	address := flag.String("address", "", "listen address (overrides config)")

	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	if otel.Enabled() {
		handler, shutdown, err := otel.Setup(ctx, "paperscan-server")

		if err != nil {
			return err
		}

		defer shutdown(context.WithoutCancel(ctx))

		logger = slog.New(handler)
	}

	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)

	if err != nil {
		return err
	}

	if *address != "" {
		cfg.Address = *address
	}

	completer, err := cfg.Completer("")

	if err != nil {
		return err
	}

	store, closeStore, err := cfg.OpenStore(ctx)

	if err != nil {
		return err
	}

	defer closeStore()

	var parserOptions []pdf.Option

	if renderer, err := pdf.NewPoppler(pdf.DefaultDPI); err == nil {
		parserOptions = append(parserOptions, pdf.WithRenderer(renderer))
	} else {
		logger.Warn("page rendering disabled", "error", err)
	}

	book := ledger.NewBook(ledger.WithPricing(cfg.Pricing), ledger.WithLogger(logger))

	p := pipeline.New(completer, pdf.NewParser(parserOptions...), cfg.Pipeline,
		pipeline.WithBook(book),
		pipeline.WithStore(store),
		pipeline.WithLogger(logger),
	)

	s := server.New(p, book, cfg.Authorizer,
		server.WithAddress(cfg.Address),
		server.WithLogger(logger),
	)

	return s.ListenAndServe(ctx)
}

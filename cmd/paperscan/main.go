package main

import (
	"context"
	"errors"
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
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	output := flag.String("o", "output", "output directory")
	key := flag.String("k", os.Getenv("GEMINI_API_KEY"), "Gemini API key (default $GEMINI_API_KEY)")
	configPath := flag.String("config", "", "YAML config file")
	model := flag.String("model", "", "model or router id to extract with")
	noDiagrams := flag.Bool("no-diagrams", false, "skip diagram detection")
	noAnswers := flag.Bool("no-answers", false, "skip answer key extraction")
	parallel := flag.Bool("parallel", false, "process documents in parallel")
	concurrency := flag.Int("concurrency", 0, "oracle calls in flight per document phase")
	verbose := flag.Bool("v", false, "verbose logging")

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: paperscan [flags] <file.pdf|dir|glob>...\n\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	level := slog.LevelInfo

	if *verbose {
		level = slog.LevelDebug
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if otel.Enabled() {
		handler, shutdown, err := otel.Setup(ctx, "paperscan")

		if err != nil {
			return fmt.Errorf("failed to set up telemetry: %w", err)
		}

		defer shutdown(context.WithoutCancel(ctx))

		logger = slog.New(handler)
	}

	slog.SetDefault(logger)

	cfg, err := loadConfig(*configPath, *key, *model)

	if err != nil {
		return err
	}

	if isFlagSet("o") || *configPath == "" {
		cfg.Output = *output
	}

	if *noDiagrams {
		cfg.Pipeline.ExtractDiagrams = false
	}

	if *noAnswers {
		cfg.Pipeline.ExtractAnswers = false
	}

	if *concurrency > 0 {
		cfg.Pipeline.PageConcurrency = *concurrency
	}

	cfg.Parallel = cfg.Parallel || *parallel

	files, err := expand(flag.Args())

	if err != nil {
		return err
	}

	if len(files) == 0 {
		flag.Usage()
		return errors.New("no PDF files found")
	}

	completer, err := cfg.Completer("")

	if err != nil {
		return err
	}

	store, closeStore, err := cfg.OpenStore(ctx)

	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}

	defer closeStore()

	var parserOptions []pdf.Option

	if renderer, err := pdf.NewPoppler(pdf.DefaultDPI); err == nil {
		parserOptions = append(parserOptions, pdf.WithRenderer(renderer))
	} else {
		logger.Warn("page rendering disabled, extracting from text only", "error", err)
	}

	parserOptions = append(parserOptions, pdf.WithLogger(logger))

	book := ledger.NewBook(ledger.WithPricing(cfg.Pricing), ledger.WithLogger(logger))

	p := pipeline.New(completer, pdf.NewParser(parserOptions...), cfg.Pipeline,
		pipeline.WithBook(book),
		pipeline.WithStore(store),
		pipeline.WithLogger(logger),
	)

	logger.Info("processing documents", "files", len(files), "model", cfg.Model, "parallel", cfg.Parallel)

	papers, failures := p.ProcessAll(ctx, files, cfg.Parallel)

	printSummary(os.Stdout, papers, failures, book)

	if len(failures) > 0 {
		return fmt.Errorf("%d of %d documents failed", len(failures), len(files))
	}

	return nil
}

func loadConfig(path, key, model string) (*config.Config, error) {
	if path == "" {
		if key == "" {
			return nil, errors.New("API key required: set GEMINI_API_KEY or pass -k")
		}

		return config.Default(key, model)
	}

	cfg, err := config.Load(path)

	if err != nil {
		return nil, err
	}

	if model != "" {
		if _, err := cfg.Completer(model); err != nil {
			return nil, err
		}

		cfg.Model = model
		cfg.Pipeline.Model = model
	}

	if len(cfg.Completers()) == 0 {
		return nil, config.ErrNoCompleter
	}

	return cfg, nil
}

func isFlagSet(name string) bool {
	set := false

	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})

	return set
}

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"SmartRecover/internal/app"
	"SmartRecover/internal/config"
	"SmartRecover/internal/logging"
	"SmartRecover/internal/usecase"
)

type cliOptions struct {
	batchSize    int
	threshold    float64
	dryRun       bool
	topK         int
	jsonOutput   bool
	ledgerPath   string
	ledgerFormat string
	schedule     string
	concurrency  int
}

func main() {
	cfg := config.Load()
	opts := parseFlags(cfg)
	applyOptions(&cfg, opts)

	// Reports go to stdout, so logs go to stderr.
	logger := logging.NewWithWriter(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("application init failed", "error", err)
		os.Exit(1)
	}
	defer application.Close()

	if opts.schedule != "" {
		if err := application.Serve(ctx); err != nil {
			logger.Error("scheduler stopped", "error", err)
			application.Close()
			os.Exit(1)
		}
		return
	}

	report, err := application.RunOnce(ctx, opts.dryRun)
	if err != nil {
		logger.Error("run failed", "error", err)
		application.Close()
		os.Exit(1)
	}

	render := usecase.RenderText
	if opts.jsonOutput {
		render = usecase.RenderJSON
	}
	if err := render(os.Stdout, report); err != nil {
		logger.Error("render report", "error", err)
		application.Close()
		os.Exit(1)
	}
}

func parseFlags(cfg config.Config) cliOptions {
	var opts cliOptions
	flag.IntVar(&opts.batchSize, "batch-size", cfg.Processing.BatchSize, "Debtors extracted from the priority queue per batch")
	flag.Float64Var(&opts.threshold, "threshold", cfg.Processing.HighPriorityThreshold, "Priority above which a debtor is sent to partner sync")
	flag.BoolVar(&opts.dryRun, "dry-run", false, "Only rank debtors and print the highest priorities")
	flag.IntVar(&opts.topK, "top-k", cfg.Processing.TopK, "Entries shown by --dry-run")
	flag.BoolVar(&opts.jsonOutput, "json", false, "Print the report as JSON")
	flag.StringVar(&opts.ledgerPath, "ledger", cfg.Ledger.Path, "HTML or YAML ledger file used instead of the database")
	flag.StringVar(&opts.ledgerFormat, "ledger-format", cfg.Ledger.Format, "Ledger format (html, yaml); guessed from the extension when empty")
	flag.StringVar(&opts.schedule, "schedule", "", "Run repeatedly at this interval (e.g. 6h) instead of once")
	flag.IntVar(&opts.concurrency, "concurrency", cfg.Processing.Concurrency, "Workers per batch")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [options]\n\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	opts.ledgerPath = strings.TrimSpace(opts.ledgerPath)
	opts.schedule = strings.TrimSpace(opts.schedule)
	return opts
}

func applyOptions(cfg *config.Config, opts cliOptions) {
	cfg.Processing.BatchSize = opts.batchSize
	cfg.Processing.HighPriorityThreshold = opts.threshold
	cfg.Processing.TopK = opts.topK
	cfg.Processing.Concurrency = opts.concurrency
	cfg.Ledger.Path = opts.ledgerPath
	cfg.Ledger.Format = opts.ledgerFormat
	if opts.schedule != "" {
		if _, err := time.ParseDuration(opts.schedule); err == nil {
			cfg.Schedule.Interval = opts.schedule
		} else {
			fmt.Fprintf(os.Stderr, "smartrecover: invalid --schedule %q, using %s\n", opts.schedule, cfg.Schedule.Every())
		}
	}
}

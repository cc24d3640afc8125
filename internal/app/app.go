package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"SmartRecover/internal/config"
	"SmartRecover/internal/domain"
	"SmartRecover/internal/infrastructure/ledger"
	"SmartRecover/internal/infrastructure/messaging"
	"SmartRecover/internal/infrastructure/scheduler"
	"SmartRecover/internal/infrastructure/storage"
	"SmartRecover/internal/infrastructure/telegram"
	"SmartRecover/internal/logging"
	"SmartRecover/internal/metrics"
	"SmartRecover/internal/ports"
	"SmartRecover/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	pipeline *usecase.Pipeline
	ledgers  *ledger.Registry
	closers  []func()
}

// New builds a runnable application instance. Debtors come from the ledger file when
// one is configured, otherwise from Postgres.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}
	a := &Application{
		cfg:     cfg,
		logger:  baseLogger.With("component", "app"),
		ledgers: ledger.NewRegistry(),
	}

	var repo ports.DebtorRepository
	switch {
	case cfg.Ledger.Path != "":
		a.logger.Info("using ledger file", "path", cfg.Ledger.Path, "format", cfg.Ledger.Format)
	case cfg.Database.DSN != "":
		pool, err := storage.NewPool(ctx, cfg.Database.DSN, cfg.Database.MaxConns)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrRepositoryUnavailable, err)
		}
		a.closers = append(a.closers, pool.Close)
		pg := storage.NewPostgresRepository(pool)
		if cfg.Database.WeightedScores {
			pg.WithWeightedScores()
		}
		repo = pg
	default:
		return nil, errors.New("no debtor source configured: set database.dsn or ledger.path")
	}

	var publisher ports.HighPriorityPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		kp := messaging.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, baseLogger.With("component", "messaging.kafka"))
		a.closers = append(a.closers, func() {
			if err := kp.Close(); err != nil {
				a.logger.Warn("close kafka publisher", "error", err)
			}
		})
		publisher = kp
	}

	var notifier ports.Notifier
	if tg := cfg.Notifications.Telegram; tg.BotToken != "" && tg.ChatID != "" {
		notifier = telegram.NewNotifier(tg.BotToken, tg.ChatID)
	}

	registry := prometheus.NewRegistry()
	recorder, err := metrics.New(registry)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("register metrics: %w", err)
	}

	var pushMetrics func(context.Context) error
	if url := cfg.Metrics.PushgatewayURL; url != "" {
		pushMetrics = func(ctx context.Context) error {
			return metrics.Push(ctx, url, cfg.Metrics.Job, registry)
		}
	}

	a.pipeline = usecase.NewPipeline(usecase.PipelineDeps{
		Repository:  repo,
		Publisher:   publisher,
		Notifier:    notifier,
		Metrics:     recorder,
		PushMetrics: pushMetrics,
		Concurrency: cfg.Processing.Concurrency,
		SampleSize:  cfg.Processing.SampleSize,
		Logger:      baseLogger.With("component", "pipeline"),
	})
	return a, nil
}

// RunOnce performs a single engine invocation.
func (a *Application) RunOnce(ctx context.Context, dryRun bool) (domain.Report, error) {
	req, err := a.request(ctx, dryRun)
	if err != nil {
		return domain.Report{}, err
	}
	return a.pipeline.Run(ctx, req)
}

// Serve runs the pipeline on the configured interval until ctx is done.
func (a *Application) Serve(ctx context.Context) error {
	driver := scheduler.NewIntervalScheduler(a.cfg.Schedule.Every(), a.cfg.Schedule.Location())

	sched := usecase.NewScheduler(driver, a.pipeline, func(trigger time.Time) (usecase.Request, bool) {
		req, err := a.request(ctx, false)
		if err != nil {
			a.logger.Error("prepare scheduled run", "trigger", trigger, "error", err)
			return usecase.Request{}, false
		}
		return req, true
	}, a.logger)

	a.logger.Info("scheduler started", "every", a.cfg.Schedule.Every(), "timezone", a.cfg.Schedule.Location().String())
	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := sched.Stop(stopCtx); err != nil {
		return fmt.Errorf("stop scheduler: %w", err)
	}
	return nil
}

// Close releases pooled connections and flushes writers.
func (a *Application) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func (a *Application) request(ctx context.Context, dryRun bool) (usecase.Request, error) {
	req := usecase.Request{
		BatchSize:             a.cfg.Processing.BatchSize,
		HighPriorityThreshold: a.cfg.Processing.HighPriorityThreshold,
		DryRun:                dryRun,
		TopK:                  a.cfg.Processing.TopK,
	}
	if a.cfg.Ledger.Path == "" {
		return req, nil
	}

	debtors, rejected, err := a.ledgers.Load(ctx, a.cfg.Ledger.Format, a.cfg.Ledger.Path)
	if err != nil {
		return usecase.Request{}, fmt.Errorf("%w: %w", domain.ErrRepositoryUnavailable, err)
	}
	if len(rejected) > 0 {
		a.logger.Warn("ledger rows rejected", "path", a.cfg.Ledger.Path, "rejected", len(rejected))
	}
	if debtors == nil {
		debtors = []domain.Debtor{}
	}
	req.Debtors = debtors
	req.Rejected = rejected
	return req, nil
}

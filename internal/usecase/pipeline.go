package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"SmartRecover/internal/domain"
	"SmartRecover/internal/infrastructure/storage"
	"SmartRecover/internal/metrics"
	"SmartRecover/internal/ports"
	"SmartRecover/internal/processing"
	"SmartRecover/internal/scoring"
)

// Request carries the per-run parameters of one engine invocation.
type Request struct {
	BatchSize             int
	HighPriorityThreshold float64
	DryRun                bool
	TopK                  int
	// Debtors is an explicit record set for the run; nil means the whole repository.
	Debtors []domain.Debtor
	// Rejected lists records dropped before the run, e.g. ledger rows that failed to parse.
	Rejected []domain.ErrorRecord
}

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Repository  ports.DebtorRepository
	Scorer      *scoring.Scorer
	Publisher   ports.HighPriorityPublisher
	Notifier    ports.Notifier
	Metrics     *metrics.Recorder
	PushMetrics func(ctx context.Context) error
	Concurrency int
	SampleSize  int
	Logger      *slog.Logger
	Now         func() time.Time
}

// Pipeline implements the debtor recovery workflow.
type Pipeline struct {
	repository  ports.DebtorRepository
	scorer      *scoring.Scorer
	publisher   ports.HighPriorityPublisher
	notifier    ports.Notifier
	metrics     *metrics.Recorder
	pushMetrics func(ctx context.Context) error
	concurrency int
	sampleSize  int
	logger      *slog.Logger
	now         func() time.Time
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	p := &Pipeline{
		repository:  deps.Repository,
		scorer:      deps.Scorer,
		publisher:   deps.Publisher,
		notifier:    deps.Notifier,
		metrics:     deps.Metrics,
		pushMetrics: deps.PushMetrics,
		concurrency: deps.Concurrency,
		sampleSize:  deps.SampleSize,
		logger:      deps.Logger,
		now:         deps.Now,
	}
	if p.scorer == nil {
		p.scorer = scoring.NewScorer()
	}
	if p.logger == nil {
		p.logger = slog.New(slog.DiscardHandler)
	}
	return p
}

// Run executes one engine invocation. Every run gets a fresh processor so no state
// carries over between runs. Digest and metrics delivery failures are only logged.
func (p *Pipeline) Run(ctx context.Context, req Request) (domain.Report, error) {
	repo := p.repository
	var src ports.DebtorSource
	if req.Debtors != nil {
		src = storage.Collection(req.Debtors)
		if repo == nil {
			repo = storage.NewMemoryRepository(req.Debtors...)
		}
	}
	if repo == nil {
		return domain.Report{}, fmt.Errorf("%w: no debtor repository configured", domain.ErrInvalidRequest)
	}

	proc, err := processing.NewProcessor(processing.Deps{
		Repository: repo,
		Scorer:     p.scorer,
		Publisher:  p.publisher,
		Metrics:    p.metrics,
		Logger:     p.logger,
		Now:        p.now,
	}, processing.Config{
		BatchSize:             req.BatchSize,
		HighPriorityThreshold: req.HighPriorityThreshold,
		Concurrency:           p.concurrency,
		SampleSize:            p.sampleSize,
	})
	if err != nil {
		return domain.Report{}, fmt.Errorf("configure run: %w", err)
	}

	if req.DryRun {
		report, err := proc.Preview(ctx, src, req.TopK)
		if err != nil {
			return domain.Report{}, fmt.Errorf("preview: %w", err)
		}
		return processing.MergeRejected(report, req.Rejected), nil
	}

	report, err := proc.ProcessAll(ctx, src)
	if err != nil {
		return domain.Report{}, fmt.Errorf("process debtors: %w", err)
	}
	for range req.Rejected {
		p.metrics.ObserveError(domain.StagePriorityCalculation)
	}
	report = processing.MergeRejected(report, req.Rejected)

	p.deliver(ctx, report)
	return report, nil
}

func (p *Pipeline) deliver(ctx context.Context, report domain.Report) {
	logger := p.logger.With("run_id", report.Summary.RunID)

	if p.notifier != nil {
		if err := p.notifier.PublishDigest(ctx, Digest(report)); err != nil {
			logger.Warn("publish run digest", "error", err)
		}
	}

	if p.pushMetrics != nil {
		if err := p.pushMetrics(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("push run metrics", "error", err)
		}
	}
}

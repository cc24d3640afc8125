// Package processing drains the priority index in bounded batches and reports on the run.
package processing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"SmartRecover/internal/domain"
	"SmartRecover/internal/metrics"
	"SmartRecover/internal/ports"
	"SmartRecover/internal/priority"
	"SmartRecover/internal/scoring"
)

const (
	DefaultBatchSize             = 100
	DefaultHighPriorityThreshold = 500000
	DefaultTopK                  = 10
)

// Config tunes one processor.
type Config struct {
	BatchSize             int
	HighPriorityThreshold float64
	// Concurrency bounds the per-batch workers; values below 2 process sequentially.
	Concurrency int
	SampleSize  int
}

// Validate rejects configurations that cannot drive a run.
func (c Config) Validate() error {
	if c.BatchSize <= 0 {
		return fmt.Errorf("%w: batch size must be positive, got %d", domain.ErrInvalidRequest, c.BatchSize)
	}
	if c.Concurrency < 0 {
		return fmt.Errorf("%w: concurrency must not be negative, got %d", domain.ErrInvalidRequest, c.Concurrency)
	}
	return nil
}

// Deps wires the collaborators of the batch processor.
type Deps struct {
	Repository ports.DebtorRepository
	Scorer     *scoring.Scorer
	Publisher  ports.HighPriorityPublisher
	Metrics    *metrics.Recorder
	Logger     *slog.Logger
	Now        func() time.Time
}

// Processor implements the Init → BuildIndex → BatchLoop → Finalize run.
type Processor struct {
	repo      ports.DebtorRepository
	scorer    *scoring.Scorer
	publisher ports.HighPriorityPublisher
	metrics   *metrics.Recorder
	logger    *slog.Logger
	now       func() time.Time
	cfg       Config
}

// NewProcessor validates cfg and builds a processor.
func NewProcessor(deps Deps, cfg Config) (*Processor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if deps.Repository == nil {
		return nil, errors.New("debtor repository is required")
	}

	p := &Processor{
		repo:      deps.Repository,
		scorer:    deps.Scorer,
		publisher: deps.Publisher,
		metrics:   deps.Metrics,
		logger:    deps.Logger,
		now:       deps.Now,
		cfg:       cfg,
	}
	if p.scorer == nil {
		p.scorer = scoring.NewScorer()
	}
	if p.logger == nil {
		p.logger = slog.New(slog.DiscardHandler)
	}
	if p.now == nil {
		p.now = time.Now
	}
	return p, nil
}

// ProcessAll runs the full pipeline over src, or over the whole repository when src is nil.
// Only a failure to read the initial collection is returned as an error; every per-debtor
// failure ends up in the report. Cancellation is honoured between batches and yields a
// partial report.
func (p *Processor) ProcessAll(ctx context.Context, src ports.DebtorSource) (domain.Report, error) {
	runID := uuid.NewString()
	stats := NewStats(p.now())
	logger := p.logger.With("run_id", runID)

	if src == nil {
		src = p.repo
	}

	idx, buildErrs, err := priority.Build(ctx, src, p.scorer, logger)
	if err != nil {
		return domain.Report{}, fmt.Errorf("build priority index: %w", err)
	}
	for range buildErrs {
		stats.recordError(domain.StagePriorityCalculation)
		p.metrics.ObserveError(domain.StagePriorityCalculation)
	}

	indexed := idx.Len()
	logger.Info("priority index built", "indexed", indexed, "rejected", len(buildErrs))

	var (
		results   []domain.ProcessingResult
		errs      = append([]domain.ErrorRecord(nil), buildErrs...)
		cancelled bool
	)

	for batchNumber := 1; idx.Len() > 0; batchNumber++ {
		if ctx.Err() != nil {
			cancelled = true
			logger.Warn("run cancelled", "remaining", idx.Len(), "error", ctx.Err())
			break
		}

		logger.Debug("processing batch", "batch", batchNumber, "remaining", idx.Len())

		// A batch that has started runs to completion; cancellation only stops the next one.
		started := p.now()
		batch := p.ProcessBatch(context.WithoutCancel(ctx), idx.PopN(p.cfg.BatchSize), stats)
		stats.recordBatch()
		p.metrics.ObserveBatch(p.now().Sub(started))

		for _, r := range batch {
			if !r.Succeeded() {
				errs = append(errs, domain.ErrorRecord{
					DebtorID:     r.DebtorID,
					Stage:        r.Stage,
					ErrorMessage: r.ErrorMessage,
				})
			}
		}
		results = append(results, batch...)

		p.notifyHighPriority(ctx, batch, stats, logger)
	}

	snapshot := stats.Snapshot(p.now())
	snapshot.Indexed = int64(indexed)
	snapshot.Remaining = int64(idx.Len())
	snapshot.Cancelled = cancelled
	p.metrics.ObserveRun(snapshot)

	report := GenerateReport(runID, results, errs, snapshot, p.cfg.SampleSize)
	logger.Info("run finished",
		"processed", report.Summary.Processed,
		"high_priority", report.Summary.HighPriority,
		"errors", report.Summary.ErrorsCount,
		"batches", report.Summary.Batches,
		"elapsed", snapshot.Elapsed,
	)
	return report, nil
}

// Preview builds the index and returns its top-k entries without fetching, rescoring,
// touching run statistics or publishing anything.
func (p *Processor) Preview(ctx context.Context, src ports.DebtorSource, topK int) (domain.Report, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}
	if src == nil {
		src = p.repo
	}

	started := p.now()
	idx, buildErrs, err := priority.Build(ctx, src, p.scorer, p.logger)
	if err != nil {
		return domain.Report{}, fmt.Errorf("build priority index: %w", err)
	}

	report := GenerateReport(uuid.NewString(), nil, buildErrs, domain.RunStatistics{
		Indexed:       int64(idx.Len()),
		Remaining:     int64(idx.Len()),
		ScoringErrors: int64(len(buildErrs)),
		Elapsed:       p.now().Sub(started),
	}, p.cfg.SampleSize)
	report.Summary.DryRun = true
	report.Top = idx.Top(topK)
	return report, nil
}

// ProcessBatch re-fetches and rescores every extracted entry. Results keep the extraction
// order of entries even when workers run concurrently.
func (p *Processor) ProcessBatch(ctx context.Context, entries []domain.PriorityEntry, stats *Stats) []domain.ProcessingResult {
	results := make([]domain.ProcessingResult, len(entries))

	if p.cfg.Concurrency < 2 {
		for i, e := range entries {
			results[i] = p.processEntry(ctx, e, stats)
		}
		return results
	}

	var g errgroup.Group
	g.SetLimit(p.cfg.Concurrency)
	for i, e := range entries {
		g.Go(func() error {
			results[i] = p.processEntry(ctx, e, stats)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (p *Processor) processEntry(ctx context.Context, e domain.PriorityEntry, stats *Stats) domain.ProcessingResult {
	d, err := p.repo.FetchByID(ctx, e.DebtorID)
	if err != nil {
		return p.failure(e.DebtorID, e.Priority, &domain.FetchError{DebtorID: e.DebtorID, Err: err}, stats)
	}

	assessment, err := p.scorer.Score(d)
	if err != nil {
		return p.failure(d.ID, bestPriority(d, e), err, stats)
	}

	amount := d.TotalDebt.InexactFloat64()
	fresh := assessment.Total * amount
	high := fresh > p.cfg.HighPriorityThreshold

	stats.recordProcessed(high)
	p.metrics.ObserveProcessed(high)

	return domain.ProcessingResult{
		DebtorID:      d.ID,
		Status:        domain.StatusSuccess,
		DebtorName:    d.Name,
		Priority:      fresh,
		RiskScore:     assessment.Total,
		RiskLevel:     assessment.Level,
		DebtAmount:    amount,
		PaymentStatus: d.PaymentStatus,
		HighPriority:  high,
		ProcessedAt:   p.now().UTC(),
	}
}

func (p *Processor) failure(id int64, prio float64, err error, stats *Stats) domain.ProcessingResult {
	stats.recordError(domain.StageDebtorProcessing)
	p.metrics.ObserveError(domain.StageDebtorProcessing)
	p.logger.Debug("debtor processing failed", "debtor_id", id, "error", err)

	return domain.ProcessingResult{
		DebtorID:     id,
		Status:       domain.StatusError,
		Priority:     prio,
		Stage:        domain.StageDebtorProcessing,
		ErrorMessage: err.Error(),
		ProcessedAt:  p.now().UTC(),
	}
}

// bestPriority prefers the stored score of the fetched debtor over the index snapshot.
func bestPriority(d domain.Debtor, e domain.PriorityEntry) float64 {
	if d.Score == nil {
		return e.Priority
	}
	return d.Score.Total * d.TotalDebt.InexactFloat64()
}

func (p *Processor) notifyHighPriority(ctx context.Context, batch []domain.ProcessingResult, stats *Stats, logger *slog.Logger) {
	if p.publisher == nil {
		return
	}

	var high []domain.ProcessingResult
	for _, r := range batch {
		if r.Succeeded() && r.HighPriority {
			high = append(high, r)
		}
	}
	if len(high) == 0 {
		return
	}

	count, err := p.publisher.PublishHighPriority(ctx, high)
	if err != nil {
		logger.Warn("publish high-priority batch", "debtors", len(high), "error", err)
		return
	}
	stats.recordMessages(count)
}

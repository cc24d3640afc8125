package priority

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"SmartRecover/internal/domain"
	"SmartRecover/internal/ports"
	"SmartRecover/internal/scoring"
)

var errInvalidCachedScore = errors.New("cached risk score out of range")

// Builder turns a debtor stream into an Index, isolating per-debtor failures.
type Builder struct {
	scorer  *scoring.Scorer
	logger  *slog.Logger
	entries []domain.PriorityEntry
	errors  []domain.ErrorRecord
}

// NewBuilder wires the scorer used when a debtor has no cached score.
func NewBuilder(scorer *scoring.Scorer, logger *slog.Logger) *Builder {
	return &Builder{scorer: scorer, logger: logger}
}

// Add computes the debtor's priority and keeps only the (priority, id) pair.
// A failure is recorded under the priority_calculation stage and the debtor is skipped.
func (b *Builder) Add(d domain.Debtor) {
	p, err := b.Priority(d)
	if err != nil {
		b.errors = append(b.errors, domain.ErrorRecord{
			DebtorID:     d.ID,
			Stage:        domain.StagePriorityCalculation,
			ErrorMessage: err.Error(),
		})
		if b.logger != nil {
			b.logger.Debug("priority calculation failed", "debtor_id", d.ID, "error", err)
		}
		return
	}
	b.entries = append(b.entries, domain.PriorityEntry{Priority: p, DebtorID: d.ID})
}

// Priority returns basis × amount, where the basis is the cached score when present.
func (b *Builder) Priority(d domain.Debtor) (float64, error) {
	if d.ID <= 0 {
		return 0, &domain.ScoringError{DebtorID: d.ID, Err: fmt.Errorf("invalid debtor id %d", d.ID)}
	}

	var basis float64
	if d.Score != nil {
		basis = d.Score.Total
		if math.IsNaN(basis) || basis < 0 || basis > scoring.MaxScore {
			return 0, &domain.ScoringError{DebtorID: d.ID, Err: fmt.Errorf("%w: %v", errInvalidCachedScore, basis)}
		}
	} else {
		a, err := b.scorer.Score(d)
		if err != nil {
			return 0, err
		}
		basis = a.Total
	}

	if d.TotalDebt.IsNegative() {
		return 0, &domain.ScoringError{DebtorID: d.ID, Err: fmt.Errorf("negative debt amount %s", d.TotalDebt.String())}
	}

	p := basis * d.TotalDebt.InexactFloat64()
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return 0, &domain.ScoringError{DebtorID: d.ID, Err: fmt.Errorf("priority is not finite")}
	}
	return p, nil
}

// Index heapifies everything added so far. The builder must not be reused afterwards.
func (b *Builder) Index() *Index {
	idx := NewIndex(b.entries)
	b.entries = nil
	return idx
}

// Errors returns the priority_calculation failures recorded so far.
func (b *Builder) Errors() []domain.ErrorRecord {
	return b.errors
}

// Build streams the source once and returns the resulting index with isolated failures.
// A source error aborts the build and is reported as domain.ErrRepositoryUnavailable.
func Build(ctx context.Context, src ports.DebtorSource, scorer *scoring.Scorer, logger *slog.Logger) (*Index, []domain.ErrorRecord, error) {
	b := NewBuilder(scorer, logger)
	err := src.FetchAll(ctx, func(d domain.Debtor) error {
		b.Add(d)
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", domain.ErrRepositoryUnavailable, err)
	}
	return b.Index(), b.Errors(), nil
}

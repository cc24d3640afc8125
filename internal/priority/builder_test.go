package priority

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SmartRecover/internal/domain"
	"SmartRecover/internal/infrastructure/storage"
	"SmartRecover/internal/scoring"
)

func cached(id, amount int64, score float64) domain.Debtor {
	return domain.Debtor{
		ID:        id,
		TotalDebt: decimal.NewFromInt(amount),
		Score:     &domain.RiskScore{Total: score},
	}
}

type failingSource struct{}

func (failingSource) FetchAll(context.Context, func(domain.Debtor) error) error {
	return errors.New("connection refused")
}

func TestBuildUsesCachedScore(t *testing.T) {
	t.Parallel()

	src := storage.Collection{
		cached(1, 100, 2),
		cached(2, 50, 10),
		cached(3, 1000, 1),
	}

	idx, errs, err := Build(context.Background(), src, scoring.NewScorer(), nil)
	require.NoError(t, err)
	assert.Empty(t, errs)

	got := idx.PopN(3)
	assert.Equal(t, []int64{3, 2, 1}, ids(got))
	assert.Equal(t, []float64{1000, 500, 200}, []float64{got[0].Priority, got[1].Priority, got[2].Priority})
}

func TestBuildFallsBackToScorer(t *testing.T) {
	t.Parallel()

	d := domain.Debtor{
		ID:            5,
		TotalDebt:     decimal.NewFromInt(900),
		MonthlyIncome: decimal.NewFromInt(1000),
	}
	scorer := scoring.NewScorer()
	want, err := scorer.Score(d)
	require.NoError(t, err)

	b := NewBuilder(scorer, nil)
	b.Add(d)
	idx := b.Index()

	e, ok := idx.Pop()
	require.True(t, ok)
	assert.InDelta(t, want.Total*900, e.Priority, 1e-6)
}

func TestBuildIsolatesInvalidDebtors(t *testing.T) {
	t.Parallel()

	src := storage.Collection{
		cached(1, 100, 2),
		cached(2, 100, -4),
		cached(3, 100, math.NaN()),
		{ID: 4, TotalDebt: decimal.NewFromInt(10), LatePayments: -2},
		cached(5, 100, 3),
	}

	idx, errs, err := Build(context.Background(), src, scoring.NewScorer(), nil)
	require.NoError(t, err)

	assert.Equal(t, 2, idx.Len())
	require.Len(t, errs, 3)
	for i, id := range []int64{2, 3, 4} {
		assert.Equal(t, id, errs[i].DebtorID)
		assert.Equal(t, domain.StagePriorityCalculation, errs[i].Stage)
		assert.NotEmpty(t, errs[i].ErrorMessage)
	}
}

func TestBuildSourceFailureIsFatal(t *testing.T) {
	t.Parallel()

	idx, errs, err := Build(context.Background(), failingSource{}, scoring.NewScorer(), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrRepositoryUnavailable))
	assert.Nil(t, idx)
	assert.Nil(t, errs)
}

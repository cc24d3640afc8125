package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SmartRecover/internal/config"
	"SmartRecover/internal/domain"
)

const ledgerDoc = `
debtors:
  - id: 1
    name: Ana
    total_debt: 900000
    monthly_income: 1000
    late_payments: 6
    employment_status: unemployed
  - id: 2
    name: Bruno
    total_debt: 100
    monthly_income: 5000
    employment_status: government
    contract_type: permanent
  - id: 3
    name: Broken
    total_debt: -5
`

func testConfig(t *testing.T) config.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "debtors.yaml")
	require.NoError(t, os.WriteFile(path, []byte(ledgerDoc), 0o600))

	cfg, err := config.Parse([]byte(`
processing:
  batchSize: 2
  highPriorityThreshold: 500000
`))
	require.NoError(t, err)
	cfg.Ledger.Path = path
	cfg.Metrics.Job = "smartrecover-test"
	return cfg
}

func TestRunOnceFromLedger(t *testing.T) {
	t.Parallel()

	var pushes atomic.Int32
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		pushes.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer gateway.Close()

	cfg := testConfig(t)
	cfg.Metrics.PushgatewayURL = gateway.URL

	a, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer a.Close()

	report, err := a.RunOnce(context.Background(), false)
	require.NoError(t, err)

	assert.Equal(t, int64(2), report.Summary.Indexed)
	assert.Equal(t, int64(2), report.Summary.Processed)
	assert.Equal(t, int64(1), report.Summary.HighPriority)
	assert.Equal(t, int64(1), report.Summary.ScoringErrors)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, int64(3), report.Errors[0].DebtorID)
	assert.Equal(t, domain.StagePriorityCalculation, report.Errors[0].Stage)
	assert.Equal(t, int32(1), pushes.Load())
}

func TestRunOnceDryRun(t *testing.T) {
	t.Parallel()

	a, err := New(context.Background(), testConfig(t), nil)
	require.NoError(t, err)
	defer a.Close()

	report, err := a.RunOnce(context.Background(), true)
	require.NoError(t, err)
	assert.True(t, report.Summary.DryRun)
	require.NotEmpty(t, report.Top)
	assert.Equal(t, int64(1), report.Top[0].DebtorID)
}

func TestRunOnceIsolatesUnparseableLedgerRow(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	cfg.Ledger.Path = filepath.Join(t.TempDir(), "mixed.yaml")
	require.NoError(t, os.WriteFile(cfg.Ledger.Path, []byte(`
debtors:
  - id: 1
    total_debt: 100
  - id: 2
    total_debt: 12x
  - id: 3
    total_debt: 300
`), 0o600))

	a, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer a.Close()

	report, err := a.RunOnce(context.Background(), false)
	require.NoError(t, err)

	assert.Equal(t, int64(2), report.Summary.Processed)
	assert.Equal(t, int64(1), report.Summary.ScoringErrors)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, int64(2), report.Errors[0].DebtorID)
	assert.Equal(t, domain.StagePriorityCalculation, report.Errors[0].Stage)
}

func TestRunOnceMissingLedger(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	cfg.Ledger.Path = filepath.Join(t.TempDir(), "absent.yaml")

	a, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)

	_, err = a.RunOnce(context.Background(), false)
	assert.ErrorIs(t, err, domain.ErrRepositoryUnavailable)
}

func TestNewRequiresSource(t *testing.T) {
	t.Parallel()

	_, err := New(context.Background(), config.Config{}, nil)
	assert.Error(t, err)
}

func TestServeStopsWithContext(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	cfg.Schedule.Interval = "1h"

	a, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.NoError(t, a.Serve(ctx))
}

package processing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"SmartRecover/internal/domain"
)

func TestGenerateReportSamplesResultsKeepsAllErrors(t *testing.T) {
	t.Parallel()

	results := make([]domain.ProcessingResult, 25)
	for i := range results {
		results[i] = domain.ProcessingResult{DebtorID: int64(i + 1), Status: domain.StatusSuccess}
	}
	errs := make([]domain.ErrorRecord, 30)

	report := GenerateReport("run-1", results, errs, domain.RunStatistics{
		Processed: 25,
		Batches:   3,
		Elapsed:   5 * time.Second,
	}, 0)

	assert.Len(t, report.DetailedResults, DefaultSampleSize)
	assert.Equal(t, int64(1), report.DetailedResults[0].DebtorID)
	assert.Len(t, report.Errors, 30)
	assert.Equal(t, 30, report.Summary.ErrorsCount)
	assert.InDelta(t, 5.0, report.Summary.Throughput, 1e-9)
	assert.Equal(t, "run-1", report.Summary.RunID)
}

func TestGenerateReportEmpty(t *testing.T) {
	t.Parallel()

	report := GenerateReport("", nil, nil, domain.RunStatistics{}, 3)

	assert.Zero(t, report.Summary.Processed)
	assert.Zero(t, report.Summary.Throughput)
	assert.NotNil(t, report.DetailedResults)
	assert.Empty(t, report.DetailedResults)
	assert.NotNil(t, report.Errors)
}

func TestStatsConcurrentUpdates(t *testing.T) {
	t.Parallel()

	stats := NewStats(time.Unix(0, 0))
	done := make(chan struct{})
	for w := 0; w < 8; w++ {
		go func() {
			for i := 0; i < 1000; i++ {
				stats.recordProcessed(i%2 == 0)
				stats.recordError(domain.StageDebtorProcessing)
			}
			done <- struct{}{}
		}()
	}
	for w := 0; w < 8; w++ {
		<-done
	}

	snap := stats.Snapshot(time.Unix(10, 0))
	assert.Equal(t, int64(8000), snap.Processed)
	assert.Equal(t, int64(4000), snap.HighPriority)
	assert.Equal(t, int64(8000), snap.ProcessingErrors)
	assert.Equal(t, 10*time.Second, snap.Elapsed)
}

func TestMergeRejectedLeadsErrorList(t *testing.T) {
	t.Parallel()

	report := GenerateReport("run", nil, []domain.ErrorRecord{
		{DebtorID: 4, Stage: domain.StageDebtorProcessing, ErrorMessage: "gone"},
	}, domain.RunStatistics{ProcessingErrors: 1}, 0)

	merged := MergeRejected(report, []domain.ErrorRecord{{DebtorID: 2, ErrorMessage: "bad amount"}})

	assert.Equal(t, 2, merged.Summary.ErrorsCount)
	assert.Equal(t, int64(1), merged.Summary.ScoringErrors)
	assert.Equal(t, int64(2), merged.Errors[0].DebtorID)
	assert.Equal(t, domain.StagePriorityCalculation, merged.Errors[0].Stage)
	assert.Equal(t, int64(4), merged.Errors[1].DebtorID)

	assert.Equal(t, report, MergeRejected(report, nil))
}

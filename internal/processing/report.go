package processing

import "SmartRecover/internal/domain"

// DefaultSampleSize caps the detailed results kept in a report.
const DefaultSampleSize = 10

// GenerateReport aggregates outcomes and frozen statistics. It never fails: empty
// inputs yield zero counts and empty lists. Results are sampled, errors are kept in full.
func GenerateReport(runID string, results []domain.ProcessingResult, errs []domain.ErrorRecord, stats domain.RunStatistics, sampleSize int) domain.Report {
	if sampleSize <= 0 {
		sampleSize = DefaultSampleSize
	}
	if sampleSize > len(results) {
		sampleSize = len(results)
	}

	sample := make([]domain.ProcessingResult, sampleSize)
	copy(sample, results[:sampleSize])

	allErrors := make([]domain.ErrorRecord, len(errs))
	copy(allErrors, errs)

	seconds := stats.Elapsed.Seconds()
	var throughput float64
	if seconds > 0 {
		throughput = float64(stats.Processed) / seconds
	}

	return domain.Report{
		Summary: domain.Summary{
			RunID:             runID,
			Processed:         stats.Processed,
			HighPriority:      stats.HighPriority,
			ProcessingSeconds: seconds,
			Throughput:        throughput,
			Batches:           stats.Batches,
			ErrorsCount:       len(allErrors),
			ScoringErrors:     stats.ScoringErrors,
			ProcessingErrors:  stats.ProcessingErrors,
			Indexed:           stats.Indexed,
			MessagesSent:      stats.MessagesSent,
			MessagedDebtors:   stats.MessagedDebtors,
			Cancelled:         stats.Cancelled,
			Remaining:         stats.Remaining,
		},
		DetailedResults: sample,
		Errors:          allErrors,
	}
}

// MergeRejected folds debtors rejected before indexing, such as unparseable ledger rows,
// into a report. They count as scoring errors and lead the error list.
func MergeRejected(report domain.Report, rejected []domain.ErrorRecord) domain.Report {
	if len(rejected) == 0 {
		return report
	}

	errs := make([]domain.ErrorRecord, 0, len(rejected)+len(report.Errors))
	for _, r := range rejected {
		r.Stage = domain.StagePriorityCalculation
		errs = append(errs, r)
	}
	report.Errors = append(errs, report.Errors...)
	report.Summary.ErrorsCount = len(report.Errors)
	report.Summary.ScoringErrors += int64(len(rejected))
	return report
}

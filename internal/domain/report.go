package domain

import "time"

// RunStatistics is a frozen snapshot of the counters of a single run.
type RunStatistics struct {
	Processed        int64
	HighPriority     int64
	Batches          int64
	MessagesSent     int64
	MessagedDebtors  int64
	Indexed          int64
	Remaining        int64
	Cancelled        bool
	Elapsed          time.Duration
	ScoringErrors    int64
	ProcessingErrors int64
}

// Summary aggregates the counts of a run.
type Summary struct {
	RunID             string  `json:"run_id"`
	DryRun            bool    `json:"dry_run"`
	Processed         int64   `json:"total_debtors_successfully_processed"`
	HighPriority      int64   `json:"high_priority_debtors_successfully_processed"`
	ProcessingSeconds float64 `json:"processing_time_seconds"`
	Throughput        float64 `json:"throughput_per_second"`
	Batches           int64   `json:"batches_processed"`
	ErrorsCount       int     `json:"errors_count"`
	ScoringErrors     int64   `json:"scoring_errors"`
	ProcessingErrors  int64   `json:"processing_errors"`
	Indexed           int64   `json:"indexed_debtors"`
	MessagesSent      int64   `json:"messages_sent"`
	MessagedDebtors   int64   `json:"total_messaged_debtors"`
	Cancelled         bool    `json:"cancelled"`
	Remaining         int64   `json:"remaining"`
}

// Report is the outcome of one engine invocation.
type Report struct {
	Summary         Summary            `json:"summary"`
	DetailedResults []ProcessingResult `json:"detailed_results"`
	Errors          []ErrorRecord      `json:"errors"`
	Top             []PriorityEntry    `json:"top,omitempty"`
}

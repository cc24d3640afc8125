package domain

import "time"

// Stage names the pipeline step where a per-debtor failure happened.
type Stage string

const (
	StagePriorityCalculation Stage = "priority_calculation"
	StageDebtorProcessing    Stage = "debtor_processing"
)

// ResultStatus tells success and failure outcomes apart.
type ResultStatus string

const (
	StatusSuccess ResultStatus = "success"
	StatusError   ResultStatus = "error"
)

// PriorityEntry is a transient (priority, debtor id) pair held by the priority index.
type PriorityEntry struct {
	Priority float64 `json:"priority"`
	DebtorID int64   `json:"debtor_id"`
}

// ProcessingResult is the immutable outcome of processing one extracted entry.
type ProcessingResult struct {
	DebtorID      int64         `json:"debtor_id"`
	Status        ResultStatus  `json:"status"`
	DebtorName    string        `json:"debtor_name,omitempty"`
	Priority      float64       `json:"priority_score"`
	RiskScore     float64       `json:"risk_score,omitempty"`
	RiskLevel     RiskLevel     `json:"risk_level,omitempty"`
	DebtAmount    float64       `json:"debt_amount,omitempty"`
	PaymentStatus PaymentStatus `json:"payment_status,omitempty"`
	HighPriority  bool          `json:"high_priority"`
	Stage         Stage         `json:"stage,omitempty"`
	ErrorMessage  string        `json:"error_message,omitempty"`
	ProcessedAt   time.Time     `json:"processed_at"`
}

// Succeeded reports whether the result is a success outcome.
func (r ProcessingResult) Succeeded() bool {
	return r.Status == StatusSuccess
}

// ErrorRecord is the structured entry kept in a report's error list.
type ErrorRecord struct {
	DebtorID     int64  `json:"debtor_id"`
	Stage        Stage  `json:"stage"`
	ErrorMessage string `json:"error_message"`
}

package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by repositories when a debtor does not exist.
	ErrNotFound = errors.New("debtor not found")
	// ErrRepositoryUnavailable aborts a run before any batch work starts.
	ErrRepositoryUnavailable = errors.New("debtor repository unavailable")
	// ErrInvalidRequest marks run parameters rejected before any work.
	ErrInvalidRequest = errors.New("invalid run request")
)

// ScoringError reports a debtor whose priority basis could not be computed.
type ScoringError struct {
	DebtorID int64
	Err      error
}

func (e *ScoringError) Error() string {
	return fmt.Sprintf("score debtor %d: %v", e.DebtorID, e.Err)
}

func (e *ScoringError) Unwrap() error {
	return e.Err
}

// FetchError reports a debtor that could not be re-read at processing time.
type FetchError struct {
	DebtorID int64
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch debtor %d: %v", e.DebtorID, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

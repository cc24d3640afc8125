package ports

import (
	"context"
	"time"

	"SmartRecover/internal/domain"
)

// DebtorSource streams debtors, optionally with their cached score joined.
// Returning a non-nil error from visit stops the stream and is returned as is.
type DebtorSource interface {
	FetchAll(ctx context.Context, visit func(domain.Debtor) error) error
}

// DebtorRepository is the record store consulted during processing.
// FetchByID returns an error wrapping domain.ErrNotFound when the debtor is absent.
type DebtorRepository interface {
	DebtorSource
	FetchByID(ctx context.Context, id int64) (domain.Debtor, error)
}

// HighPriorityPublisher forwards high-priority results to downstream partner sync.
type HighPriorityPublisher interface {
	PublishHighPriority(ctx context.Context, results []domain.ProcessingResult) (int, error)
}

// Notifier streams run digests to Telegram or other channels.
type Notifier interface {
	PublishDigest(ctx context.Context, digest string) error
}

// LedgerLoader reads an explicit debtor set from an exported file. Rows that cannot be
// parsed are returned as priority_calculation rejects; only an unreadable or undecodable
// file is an error.
type LedgerLoader interface {
	Format() string
	Load(ctx context.Context, path string) ([]domain.Debtor, []domain.ErrorRecord, error)
}

// Scheduler controls when recurring runs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}

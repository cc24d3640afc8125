package processing

import (
	"sync/atomic"
	"time"

	"SmartRecover/internal/domain"
)

// Stats holds the counters of one run. It is created per run and passed explicitly
// through the batch loop; all updates are atomic so batch workers may share it.
type Stats struct {
	startedAt time.Time

	processed        atomic.Int64
	highPriority     atomic.Int64
	batches          atomic.Int64
	messagesSent     atomic.Int64
	messagedDebtors  atomic.Int64
	scoringErrors    atomic.Int64
	processingErrors atomic.Int64
}

// NewStats starts the run clock.
func NewStats(startedAt time.Time) *Stats {
	return &Stats{startedAt: startedAt}
}

func (s *Stats) recordProcessed(highPriority bool) {
	s.processed.Add(1)
	if highPriority {
		s.highPriority.Add(1)
	}
}

func (s *Stats) recordError(stage domain.Stage) {
	switch stage {
	case domain.StagePriorityCalculation:
		s.scoringErrors.Add(1)
	default:
		s.processingErrors.Add(1)
	}
}

func (s *Stats) recordBatch() {
	s.batches.Add(1)
}

func (s *Stats) recordMessages(debtors int) {
	s.messagesSent.Add(1)
	s.messagedDebtors.Add(int64(debtors))
}

// Snapshot freezes the counters at now.
func (s *Stats) Snapshot(now time.Time) domain.RunStatistics {
	return domain.RunStatistics{
		Processed:        s.processed.Load(),
		HighPriority:     s.highPriority.Load(),
		Batches:          s.batches.Load(),
		MessagesSent:     s.messagesSent.Load(),
		MessagedDebtors:  s.messagedDebtors.Load(),
		ScoringErrors:    s.scoringErrors.Load(),
		ProcessingErrors: s.processingErrors.Load(),
		Elapsed:          now.Sub(s.startedAt),
	}
}

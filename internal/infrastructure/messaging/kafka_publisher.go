package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"SmartRecover/internal/domain"
	"SmartRecover/internal/ports"
)

// maxLoggedDebtorIDs bounds the id preview written to logs per batch.
const maxLoggedDebtorIDs = 5

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// PartnerSyncItem is the normalized payload item consumed by partner sync.
type PartnerSyncItem struct {
	DebtorID        int64                `json:"debtor_id"`
	InternalBalance float64              `json:"internal_balance"`
	InternalStatus  domain.PaymentStatus `json:"internal_status"`
	ProcessedAt     string               `json:"processed_at"`
}

// KafkaPublisher sends each batch of high-priority debtors as one Kafka message.
type KafkaPublisher struct {
	writer messageWriter
	topic  string
	logger *slog.Logger
	now    func() time.Time
}

var _ ports.HighPriorityPublisher = (*KafkaPublisher)(nil)

// NewKafkaPublisher creates a publisher writing to topic on the given brokers.
func NewKafkaPublisher(brokers []string, topic string, logger *slog.Logger) *KafkaPublisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafkago.RequireAll,
	}
	return newKafkaPublisher(w, topic, logger)
}

func newKafkaPublisher(w messageWriter, topic string, logger *slog.Logger) *KafkaPublisher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &KafkaPublisher{writer: w, topic: topic, logger: logger, now: time.Now}
}

// PublishHighPriority serialises the results and returns how many debtors were sent.
func (p *KafkaPublisher) PublishHighPriority(ctx context.Context, results []domain.ProcessingResult) (int, error) {
	sentAt := p.now().UTC().Format(time.RFC3339)
	items := make([]PartnerSyncItem, 0, len(results))
	for _, r := range results {
		if r.DebtorID == 0 {
			p.logger.Warn("skipping result with missing debtor id")
			continue
		}
		items = append(items, PartnerSyncItem{
			DebtorID:        r.DebtorID,
			InternalBalance: r.DebtAmount,
			InternalStatus:  r.PaymentStatus,
			ProcessedAt:     sentAt,
		})
	}
	if len(items) == 0 {
		return 0, nil
	}

	payload, err := json.Marshal(items)
	if err != nil {
		return 0, fmt.Errorf("marshal high-priority batch: %w", err)
	}

	firstIDs := make([]int64, 0, maxLoggedDebtorIDs)
	for _, item := range items {
		if len(firstIDs) == maxLoggedDebtorIDs {
			break
		}
		firstIDs = append(firstIDs, item.DebtorID)
	}
	p.logger.InfoContext(ctx, "sending high-priority debtors to partner sync",
		"count", len(items),
		"first_ids", firstIDs,
		"topic", p.topic,
	)

	msg := kafkago.Message{
		Value: payload,
		Headers: []kafkago.Header{
			{Key: "content-type", Value: []byte("application/json")},
			{Key: "item_count", Value: []byte(strconv.Itoa(len(items)))},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return 0, fmt.Errorf("kafka publish to %s: %w", p.topic, err)
	}
	return len(items), nil
}

// Close flushes and closes the underlying writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

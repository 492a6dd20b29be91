package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go-medical-booking/config"
	"go-medical-booking/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// MessageWriter is the subset of *kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// DefaultTopic carries every appointment event when none is configured.
const DefaultTopic = "appointment.events"

// OutboxPublisher relays committed outbox events to Kafka. Every event goes
// to one topic keyed by the appointment id, so the events of one appointment
// share a partition and keep their outbox order. The event type travels in
// the event_type header.
type OutboxPublisher struct {
	db         *gorm.DB
	log        *logrus.Logger
	outboxRepo repository.OutboxRepository
	writer     MessageWriter
	topic      string
	pollEvery  time.Duration
	batchSize  int
	now        func() time.Time
}

func NewOutboxPublisher(db *gorm.DB, log *logrus.Logger, outboxRepo repository.OutboxRepository, cfg config.KafkaConfig) *OutboxPublisher {
	var writer MessageWriter
	if brokers := SplitBrokers(cfg.Brokers); len(brokers) > 0 {
		writer = &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Balancer:               &kafka.Hash{},
			AllowAutoTopicCreation: true,
			RequiredAcks:           kafka.RequireAll,
		}
	}
	return NewOutboxPublisherWithWriter(db, log, outboxRepo, writer, cfg.Topic, cfg.PollEvery, cfg.BatchSize)
}

func NewOutboxPublisherWithWriter(db *gorm.DB, log *logrus.Logger, outboxRepo repository.OutboxRepository, writer MessageWriter, topic string, pollEvery time.Duration, batchSize int) *OutboxPublisher {
	if topic == "" {
		topic = DefaultTopic
	}
	if pollEvery <= 0 {
		pollEvery = 2 * time.Second
	}
	if batchSize <= 0 {
		batchSize = 50
	}
	return &OutboxPublisher{
		db:         db,
		log:        log,
		outboxRepo: outboxRepo,
		writer:     writer,
		topic:      topic,
		pollEvery:  pollEvery,
		batchSize:  batchSize,
		now:        time.Now,
	}
}

func (p *OutboxPublisher) Enabled() bool {
	return p.writer != nil
}

// Run polls the outbox until ctx is cancelled.
func (p *OutboxPublisher) Run(ctx context.Context) {
	if !p.Enabled() {
		p.log.Warn("Outbox publisher disabled (no kafka brokers configured)")
		return
	}
	defer func() {
		if err := p.writer.Close(); err != nil {
			p.log.Warnf("Failed to close kafka writer: %+v", err)
		}
	}()

	ticker := time.NewTicker(p.pollEvery)
	defer ticker.Stop()

	p.log.Infof("Outbox publisher started: poll=%v batch=%d", p.pollEvery, p.batchSize)
	for {
		select {
		case <-ctx.Done():
			p.log.Info("Outbox publisher stopped")
			return
		case <-ticker.C:
			if _, err := p.PublishBatch(ctx); err != nil {
				p.log.Errorf("Outbox publish failed: %+v", err)
			}
		}
	}
}

// PublishBatch sends one batch of pending events and marks them published
// in the same transaction that locked them. It returns the number sent.
func (p *OutboxPublisher) PublishBatch(ctx context.Context) (int, error) {
	if !p.Enabled() {
		return 0, nil
	}

	tx := p.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return 0, tx.Error
	}
	defer tx.Rollback()

	events, err := p.outboxRepo.FetchUnpublished(tx, p.batchSize)
	if err != nil {
		return 0, fmt.Errorf("fetch outbox events: %w", err)
	}
	if len(events) == 0 {
		return 0, tx.Commit().Error
	}

	msgs := make([]kafka.Message, 0, len(events))
	ids := make([]uuid.UUID, 0, len(events))
	for _, e := range events {
		payload, err := json.Marshal(e.Payload)
		if err != nil {
			return 0, fmt.Errorf("encode outbox event %s: %w", e.ID, err)
		}
		msgs = append(msgs, kafka.Message{
			Topic: p.topic,
			Key:   []byte(e.AggregateID.String()),
			Value: payload,
			Headers: []kafka.Header{
				{Key: "event_id", Value: []byte(e.ID.String())},
				{Key: "event_type", Value: []byte(e.EventType)},
			},
			Time: e.CreatedAt,
		})
		ids = append(ids, e.ID)
	}

	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return 0, fmt.Errorf("write %d outbox events: %w", len(msgs), err)
	}
	if err := p.outboxRepo.MarkPublished(tx, ids, p.now()); err != nil {
		return 0, fmt.Errorf("mark outbox events published: %w", err)
	}
	if err := tx.Commit().Error; err != nil {
		return 0, err
	}

	p.log.Debugf("Published %d outbox events", len(msgs))
	return len(msgs), nil
}

// SplitBrokers parses a comma separated broker list, skipping blanks.
func SplitBrokers(raw string) []string {
	var brokers []string
	for _, b := range strings.Split(raw, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

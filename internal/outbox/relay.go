package outbox

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

const defaultBatchSize = 100

// PendingStore is the part of Store the relay needs.
type PendingStore interface {
	FetchPending(ctx context.Context, limit int) ([]Record, error)
	MarkSent(ctx context.Context, ids []int64) error
}

// Publisher delivers records to the broker.
type Publisher interface {
	Publish(ctx context.Context, records []Record) error
	Close() error
}

// KafkaPublisher writes records with kafka-go. Each record goes to its own
// topic, keyed so one order's events stay on one partition.
type KafkaPublisher struct {
	writer *kafka.Writer
}

// NewKafkaPublisher creates a publisher for brokers.
func NewKafkaPublisher(brokers []string) *KafkaPublisher {
	return &KafkaPublisher{writer: &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
	}}
}

// Publish writes all records in one batch.
func (p *KafkaPublisher) Publish(ctx context.Context, records []Record) error {
	msgs := make([]kafka.Message, len(records))
	for i, rec := range records {
		msgs[i] = kafka.Message{
			Topic: rec.Topic,
			Key:   []byte(rec.Key),
			Value: rec.Payload,
			Time:  rec.CreatedAt,
			Headers: []kafka.Header{
				{Key: "event_id", Value: []byte(rec.EventID.String())},
			},
		}
	}
	return p.writer.WriteMessages(ctx, msgs...)
}

// Close flushes and closes the writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// Relay moves pending outbox events to the publisher. Delivery is at least
// once: a crash between Publish and MarkSent republishes the batch.
type Relay struct {
	store     PendingStore
	publisher Publisher
	interval  time.Duration
	batchSize int
	logger    zerolog.Logger
}

// NewRelay creates a relay polling every interval.
func NewRelay(store PendingStore, publisher Publisher, interval time.Duration, logger zerolog.Logger) *Relay {
	return &Relay{
		store:     store,
		publisher: publisher,
		interval:  interval,
		batchSize: defaultBatchSize,
		logger:    logger.With().Str("component", "outbox-relay").Logger(),
	}
}

// Run polls until ctx is cancelled.
func (r *Relay) Run(ctx context.Context) {
	r.logger.Info().Dur("interval", r.interval).Msg("outbox relay started")

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info().Msg("outbox relay stopped")
			return
		case <-ticker.C:
			for {
				n, err := r.RunOnce(ctx)
				if err != nil {
					if !errors.Is(err, context.Canceled) {
						r.logger.Error().Err(err).Msg("outbox relay pass failed")
					}
					break
				}
				if n < r.batchSize {
					break
				}
			}
		}
	}
}

// RunOnce publishes one batch and returns how many events were sent.
func (r *Relay) RunOnce(ctx context.Context) (int, error) {
	records, err := r.store.FetchPending(ctx, r.batchSize)
	if err != nil {
		return 0, err
	}
	if len(records) == 0 {
		return 0, nil
	}

	if err := r.publisher.Publish(ctx, records); err != nil {
		return 0, err
	}

	ids := make([]int64, len(records))
	for i, rec := range records {
		ids[i] = rec.ID
	}
	if err := r.store.MarkSent(ctx, ids); err != nil {
		return 0, err
	}

	r.logger.Debug().Int("events", len(records)).Msg("outbox events published")
	return len(records), nil
}

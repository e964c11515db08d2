package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"

	"enrolld/internal/enrollment/models"
)

// Kafka publishes enrollment events to a Kafka topic, keyed by token+term so
// per-enrollment ordering is preserved.
type Kafka struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

// NewKafka connects a producer to the given brokers.
func NewKafka(brokers []string, topic string, logger *slog.Logger) (*Kafka, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka client: %w", err)
	}
	return &Kafka{client: client, topic: topic, logger: logger}, nil
}

func (k *Kafka) EnrollmentSaved(ctx context.Context, rec models.EnrollmentRecord, created bool) {
	event := NewEvent(rec, created)
	value, err := json.Marshal(event)
	if err != nil {
		k.logger.ErrorContext(ctx, "marshal enrollment event", "error", err)
		return
	}

	record := &kgo.Record{
		Topic: k.topic,
		Key:   []byte(rec.Token + "/" + rec.Term),
		Value: value,
	}
	k.client.Produce(ctx, record, func(_ *kgo.Record, err error) {
		if err != nil {
			k.logger.Error("publish enrollment event",
				"type", event.Type,
				"term", event.Term,
				"error", err,
			)
		}
	})
}

// Close flushes pending records and releases the client.
func (k *Kafka) Close() {
	k.client.Close()
}

// Package kafka publishes completed snapshots to the sink topic for
// downstream consumers (dashboards, archival).
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/waterbody-recon/internal/config"
	"github.com/couchcryptid/waterbody-recon/internal/domain"
)

// Writer produces snapshot messages to a Kafka topic.
// It implements pipeline.SnapshotPublisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// Publish serializes and writes one snapshot message.
func (w *Writer) Publish(ctx context.Context, snap domain.Snapshot) error {
	msg, err := serializeSnapshot(snap)
	if err != nil {
		return err
	}
	return w.writer.WriteMessages(ctx, msg)
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeSnapshot marshals a snapshot into a Kafka message, keyed by
// generation time so replays stay ordered and idempotent per recomputation.
func serializeSnapshot(snap domain.Snapshot) (kafkago.Message, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize snapshot: %w", err)
	}
	generatedAt := snap.GeneratedAt.Format(time.RFC3339)
	return kafkago.Message{
		Key:   []byte(generatedAt),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "states_loaded", Value: []byte(strconv.Itoa(snap.StatesLoaded))},
			{Key: "generated_at", Value: []byte(generatedAt)},
		},
	}, nil
}

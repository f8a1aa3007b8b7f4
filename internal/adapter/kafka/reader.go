// Package kafka consumes the upstream ETL's crash-records topic so decks can
// be built from a live feed instead of a pre-exported file.
package kafka

import (
	"context"
	"errors"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/crash-map-deck/internal/config"
	"github.com/couchcryptid/crash-map-deck/internal/domain"
)

// Reader consumes raw crash-record messages from Kafka.
type Reader struct {
	reader      *kafkago.Reader
	idleTimeout time.Duration
	logger      *slog.Logger
}

// NewReader creates a Kafka consumer for the configured source topic.
func NewReader(cfg *config.Config, logger *slog.Logger) *Reader {
	r := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers: cfg.KafkaBrokers,
		GroupID: cfg.KafkaGroupID,
		Topic:   cfg.KafkaSourceTopic,
		MaxWait: 500 * time.Millisecond,
	})
	return &Reader{reader: r, idleTimeout: cfg.IngestIdleTimeout, logger: logger}
}

// ExtractBatch reads up to maxMessages from the topic. It returns early with
// whatever it has when the topic stays idle for the configured timeout, so a
// one-shot ingest run terminates once the feed is drained.
func (r *Reader) ExtractBatch(ctx context.Context, maxMessages int) ([]domain.RawMessage, error) {
	batch := make([]domain.RawMessage, 0, maxMessages)

	for len(batch) < maxMessages {
		fetchCtx, cancel := context.WithTimeout(ctx, r.idleTimeout)
		msg, err := r.reader.FetchMessage(fetchCtx)
		cancel()

		if err != nil {
			// Idle timeout drains the run; a cancelled parent context
			// or broker failure is the caller's problem.
			if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
				r.logger.Debug("topic idle, batch complete", "messages", len(batch))
				return batch, nil
			}
			return batch, err
		}

		batch = append(batch, mapMessageToRaw(r.reader, msg))
	}

	return batch, nil
}

func (r *Reader) Close() error {
	return r.reader.Close()
}

// mapMessageToRaw converts a Kafka message into the transport-neutral form
// the ingest pipeline consumes. Commit is deferred to the caller so rows are
// only acknowledged after they have been written out.
func mapMessageToRaw(reader *kafkago.Reader, msg kafkago.Message) domain.RawMessage {
	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	return domain.RawMessage{
		Key:       msg.Key,
		Value:     msg.Value,
		Headers:   headers,
		Topic:     msg.Topic,
		Partition: msg.Partition,
		Offset:    msg.Offset,
		Timestamp: msg.Time,
		Commit: func(ctx context.Context) error {
			return reader.CommitMessages(ctx, msg)
		},
	}
}

// Command ingest drains the upstream crash-records Kafka topic into a local
// JSON dataset file that the build command can consume. It reads until the
// topic stays idle for the configured timeout, validates each row, and only
// commits offsets for rows that made it into the output file.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	kafkaadapter "github.com/couchcryptid/crash-map-deck/internal/adapter/kafka"
	"github.com/couchcryptid/crash-map-deck/internal/config"
	"github.com/couchcryptid/crash-map-deck/internal/domain"
	"github.com/couchcryptid/crash-map-deck/internal/observability"
)

// extractor pulls batches of raw messages from the crash-records topic.
type extractor interface {
	ExtractBatch(ctx context.Context, maxMessages int) ([]domain.RawMessage, error)
}

func main() {
	outPath := flag.String("out", "crashes.json", "path for the ingested dataset")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	reader := kafkaadapter.NewReader(cfg, logger)
	defer reader.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	written, err := ingest(ctx, reader, *outPath, cfg.IngestBatchSize, metrics, logger)
	if err != nil {
		logger.Error("ingest failed", "error", err)
		os.Exit(1)
	}
	if written == 0 {
		logger.Warn("topic empty, nothing written", "topic", cfg.KafkaSourceTopic)
		return
	}

	logger.Info("dataset written", "path", *outPath, "rows", written)
}

// ingest drains the topic, writes the dataset file, and only then commits the
// offsets of the accepted rows. A write failure leaves those offsets
// uncommitted so a re-run sees the same rows again. Rejected rows are
// committed as soon as they are seen; they never reach the output file.
func ingest(ctx context.Context, src extractor, outPath string, batchSize int, metrics *observability.Metrics, logger *slog.Logger) (int, error) {
	rows, commits, err := drain(ctx, src, batchSize, metrics, logger)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}

	if err := writeDataset(outPath, rows); err != nil {
		return 0, err
	}

	for _, commit := range commits {
		if err := commit(ctx); err != nil {
			return 0, err
		}
	}
	return len(rows), nil
}

// drain reads batches until the topic goes idle, keeping only rows that parse
// as valid crash records. The accepted rows' commit closures are returned for
// the caller to invoke after the rows are safely written out.
func drain(ctx context.Context, src extractor, batchSize int, metrics *observability.Metrics, logger *slog.Logger) ([]domain.RawCrashRow, []func(context.Context) error, error) {
	var rows []domain.RawCrashRow
	var commits []func(context.Context) error

	for {
		batch, err := src.ExtractBatch(ctx, batchSize)
		if err != nil {
			return nil, nil, err
		}
		if len(batch) == 0 {
			return rows, commits, nil
		}
		metrics.MessagesConsumed.Add(float64(len(batch)))

		for _, msg := range batch {
			var row domain.RawCrashRow
			if err := json.Unmarshal(msg.Value, &row); err != nil {
				metrics.RowsRejected.Inc()
				logger.Warn("rejecting malformed row",
					"topic", msg.Topic,
					"partition", msg.Partition,
					"offset", msg.Offset,
					"error", err,
				)
				if err := commitRejected(ctx, msg); err != nil {
					return nil, nil, err
				}
				continue
			}
			if _, err := domain.ParseRawRow(row); err != nil {
				metrics.RowsRejected.Inc()
				logger.Warn("rejecting unparseable row", "case_id", row.CaseID, "error", err)
				if err := commitRejected(ctx, msg); err != nil {
					return nil, nil, err
				}
				continue
			}

			rows = append(rows, row)
			if msg.Commit != nil {
				commits = append(commits, msg.Commit)
			}
		}
	}
}

func commitRejected(ctx context.Context, msg domain.RawMessage) error {
	if msg.Commit == nil {
		return nil
	}
	return msg.Commit(ctx)
}

func writeDataset(path string, rows []domain.RawCrashRow) error {
	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all service settings, populated from environment variables.
// The deck definition itself lives in the TOML file passed on the command
// line; environment variables only configure the ambient infrastructure.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Boundary provider configuration.
	BoundaryBaseURL   string
	BoundaryToken     string
	BoundaryTimeout   time.Duration
	BoundaryCacheSize int

	// Ingest configuration.
	KafkaBrokers      []string
	KafkaSourceTopic  string
	KafkaGroupID      string
	IngestBatchSize   int
	IngestIdleTimeout time.Duration
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	boundaryTimeout, err := parseDuration("BOUNDARY_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	idleTimeout, err := parseDuration("INGEST_IDLE_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}

	cacheSize, err := parsePositiveInt("BOUNDARY_CACHE_SIZE", 8)
	if err != nil {
		return nil, err
	}

	batchSize, err := parsePositiveInt("INGEST_BATCH_SIZE", 500)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		BoundaryBaseURL:   envOrDefault("BOUNDARY_BASE_URL", "https://boundaries.example.com/v1"),
		BoundaryToken:     os.Getenv("BOUNDARY_TOKEN"),
		BoundaryTimeout:   boundaryTimeout,
		BoundaryCacheSize: cacheSize,

		KafkaBrokers:      parseBrokers(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic:  envOrDefault("KAFKA_SOURCE_TOPIC", "crash-records"),
		KafkaGroupID:      envOrDefault("KAFKA_GROUP_ID", "crash-map-deck"),
		IngestBatchSize:   batchSize,
		IngestIdleTimeout: idleTimeout,
	}

	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaSourceTopic == "" {
		return nil, errors.New("KAFKA_SOURCE_TOPIC is required")
	}
	if cfg.BoundaryBaseURL == "" {
		return nil, errors.New("BOUNDARY_BASE_URL is required")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// parseBrokers splits a comma-separated broker list, dropping empty entries.
func parseBrokers(s string) []string {
	parts := strings.Split(s, ",")
	brokers := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			brokers = append(brokers, p)
		}
	}
	return brokers
}

func parseDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, errors.New("invalid " + key)
	}
	return d, nil
}

func parsePositiveInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, errors.New("invalid " + key)
	}
	return n, nil
}

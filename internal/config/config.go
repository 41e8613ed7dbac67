package config

import (
	"errors"
	"os"
	"strings"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Registry and provider inputs.
	RegistryPath   string
	FlowScoresPath string
	FlowEnabled    bool

	// ATTAINS bulk-data polling.
	AttainsBaseURL string
	AttainsTimeout time.Duration
	PollInterval   time.Duration
	PollMaxBackoff time.Duration

	// Kafka snapshot publishing.
	KafkaBrokers   []string
	KafkaSinkTopic string
	KafkaEnabled   bool
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	attainsTimeout, err := parseDuration("ATTAINS_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}
	pollInterval, err := parseDuration("POLL_INTERVAL", "15m")
	if err != nil {
		return nil, err
	}
	pollMaxBackoff, err := parseDuration("POLL_MAX_BACKOFF", "5m")
	if err != nil {
		return nil, err
	}

	flowPath := os.Getenv("FLOW_SCORES_PATH")
	flowEnabled := flowPath != ""
	if v := os.Getenv("FLOW_ENABLED"); v != "" {
		flowEnabled = v == "true"
	}

	kafkaEnabled := os.Getenv("KAFKA_ENABLED") == "true"

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		RegistryPath:   os.Getenv("REGISTRY_PATH"),
		FlowScoresPath: flowPath,
		FlowEnabled:    flowEnabled,

		AttainsBaseURL: envOrDefault("ATTAINS_BASE_URL", "https://attains.epa.gov/attains-public/api"),
		AttainsTimeout: attainsTimeout,
		PollInterval:   pollInterval,
		PollMaxBackoff: pollMaxBackoff,

		KafkaBrokers:   parseBrokers(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSinkTopic: envOrDefault("KAFKA_SINK_TOPIC", "waterbody-snapshots"),
		KafkaEnabled:   kafkaEnabled,
	}

	if cfg.RegistryPath == "" {
		return nil, errors.New("REGISTRY_PATH is required")
	}
	if cfg.AttainsBaseURL == "" {
		return nil, errors.New("ATTAINS_BASE_URL is required")
	}
	if cfg.PollInterval < pollMaxBackoff {
		return nil, errors.New("POLL_INTERVAL must be at least POLL_MAX_BACKOFF")
	}
	if cfg.FlowEnabled && cfg.FlowScoresPath == "" {
		return nil, errors.New("FLOW_ENABLED is true but FLOW_SCORES_PATH is not set")
	}
	if cfg.KafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required")
		}
		if cfg.KafkaSinkTopic == "" {
			return nil, errors.New("KAFKA_SINK_TOPIC is required")
		}
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// parseDuration reads a positive duration from the environment, falling back
// to the default when unset.
func parseDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, errors.New("invalid " + key)
	}
	return d, nil
}

// parseBrokers splits a comma-separated broker list, dropping empty entries.
func parseBrokers(s string) []string {
	var brokers []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

package kafka_config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"lodging/pkg/logger"
)

// Config holds the settings of the booking events producer.
type Config struct {
	Brokers  []string
	ClientID string

	MaxAttempts  int
	BatchTimeout time.Duration
	WriteTimeout time.Duration
	RequiredAcks int    // -1 = all, 0 = none, 1 = leader only
	Compression  string // "none", "gzip", "snappy", "lz4", "zstd"
	Async        bool

	LogPublishes bool
}

func Load() (*Config, error) {
	cfg := &Config{
		Brokers:  parseBrokers(getEnvStr(EnvKafkaBrokers, DefaultBrokers)),
		ClientID: getEnvStr(EnvKafkaClientID, DefaultClientID),

		MaxAttempts:  getEnvInt(EnvKafkaMaxAttempts, DefaultMaxAttempts),
		BatchTimeout: getEnvDuration(EnvKafkaBatchTimeout, DefaultBatchTimeout),
		WriteTimeout: getEnvDuration(EnvKafkaWriteTimeout, DefaultWriteTimeout),
		RequiredAcks: getEnvInt(EnvKafkaRequiredAcks, DefaultRequiredAcks),
		Compression:  getEnvStr(EnvKafkaCompression, DefaultCompression),
		Async:        getEnvBool(EnvKafkaAsync, DefaultAsync),

		LogPublishes: getEnvBool(EnvKafkaLogPublishes, DefaultLogPublishes),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func parseBrokers(raw string) []string {
	brokers := strings.Split(raw, ",")
	for i, broker := range brokers {
		brokers[i] = strings.TrimSpace(broker)
	}
	return brokers
}

// Validate reports every invalid setting at once.
func (cfg *Config) Validate() error {
	var errors []string

	if len(cfg.Brokers) == 0 {
		errors = append(errors, "At least one Kafka broker is required")
	}

	for i, broker := range cfg.Brokers {
		if broker == "" {
			errors = append(errors, fmt.Sprintf("Broker %d cannot be empty", i))
		}
	}

	if strings.TrimSpace(cfg.ClientID) == "" {
		errors = append(errors, "ClientID cannot be empty")
	}

	if cfg.MaxAttempts <= 0 {
		errors = append(errors, fmt.Sprintf("MaxAttempts must be positive, got: %d", cfg.MaxAttempts))
	}

	if cfg.BatchTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("BatchTimeout must be positive, got: %s", cfg.BatchTimeout))
	}

	if cfg.WriteTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("WriteTimeout must be positive, got: %s", cfg.WriteTimeout))
	}

	switch cfg.Compression {
	case "none", "gzip", "snappy", "lz4", "zstd":
	default:
		errors = append(errors, fmt.Sprintf("Compression must be one of [none, gzip, snappy, lz4, zstd], got: %s", cfg.Compression))
	}

	if cfg.RequiredAcks < -1 || cfg.RequiredAcks > 1 {
		errors = append(errors, fmt.Sprintf("RequiredAcks must be -1, 0, or 1, got: %d", cfg.RequiredAcks))
	}

	// async with no acks never surfaces a failed write
	if cfg.Async && cfg.RequiredAcks == 0 {
		errors = append(errors, "Async producer requires RequiredAcks of -1 or 1")
	}

	if len(errors) > 0 {
		errMsg := "Kafka configuration validation failed:\n"
		for i, err := range errors {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func (cfg *Config) LogConfiguration(log *logger.Logger) {
	if log == nil {
		return
	}

	log.Info("Kafka producer configuration loaded",
		"brokers", cfg.Brokers,
		"client_id", cfg.ClientID,
		"max_attempts", cfg.MaxAttempts,
		"batch_timeout", cfg.BatchTimeout,
		"write_timeout", cfg.WriteTimeout,
		"required_acks", cfg.RequiredAcks,
		"compression", cfg.Compression,
		"async", cfg.Async,
		"log_publishes", cfg.LogPublishes,
	)
}

func getEnvStr(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Package config provides configuration loading and management for batchq.
// It supports loading configuration from YAML files with sensible defaults
// for any unset values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// BackendMode selects the host backend batches are consumed from and
// messages are produced to.
type BackendMode string

const (
	// BackendModeMemory uses the in-process broker. No external services.
	BackendModeMemory BackendMode = "memory"
	// BackendModeKafka consumes and produces via Kafka.
	BackendModeKafka BackendMode = "kafka"
	// BackendModeRedis consumes and produces via Redis Streams.
	BackendModeRedis BackendMode = "redis"
)

// IsValid returns true if the backend mode is valid.
func (m BackendMode) IsValid() bool {
	return m == BackendModeMemory || m == BackendModeKafka || m == BackendModeRedis
}

// Config represents the complete application configuration.
type Config struct {
	Backend  BackendConfig  `yaml:"backend"`
	Server   ServerConfig   `yaml:"server"`
	Consumer ConsumerConfig `yaml:"consumer"`
	Producer ProducerConfig `yaml:"producer"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Redis    RedisConfig    `yaml:"redis"`
	Postgres PostgresConfig `yaml:"postgres"`
	Logger   LoggerConfig   `yaml:"logger"`
}

// BackendConfig holds the backend mode configuration.
type BackendConfig struct {
	Mode BackendMode `yaml:"mode"`
}

// ConsumerConfig holds settings for the inbound queue binding.
type ConsumerConfig struct {
	// Queue is the name of the queue batches are consumed from. For the
	// Kafka backend this is the topic; for Redis it is the stream key.
	Queue string `yaml:"queue"`

	// Group names the consumer group sharing the queue.
	Group string `yaml:"group"`

	// BatchSize caps how many messages one batch may carry.
	BatchSize int `yaml:"batch_size"`

	// MaxWait bounds how long the backend may hold back a partial batch.
	MaxWait time.Duration `yaml:"max_wait"`
}

// ProducerConfig holds settings for the outbound queue binding.
type ProducerConfig struct {
	// Queue is the name of the queue outgoing messages are sent to.
	Queue string `yaml:"queue"`

	// Outbox, when true, routes sends through the PostgreSQL outbox table
	// instead of the backend transport.
	Outbox bool `yaml:"outbox"`
}

// ServerConfig holds ops HTTP server settings.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
}

// KafkaConfig holds Kafka connection settings.
type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// PostgresConfig holds PostgreSQL connection settings for the outbox.
type PostgresConfig struct {
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	User         string `yaml:"user"`
	Password     string `yaml:"password"`
	Database     string `yaml:"database"`
	SSLMode      string `yaml:"ssl_mode"`
	MaxOpenConns int32  `yaml:"max_open_conns"`
}

// LoggerConfig holds logging settings.
type LoggerConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "json" or "text"
}

// Load reads configuration from the specified YAML file path.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	// Clean the path to prevent path traversal attacks
	cleanPath := filepath.Clean(path)
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(cfg)

	if !cfg.Backend.Mode.IsValid() {
		return nil, fmt.Errorf("invalid backend mode %q", cfg.Backend.Mode)
	}

	return cfg, nil
}

// applyDefaults sets sensible default values for configuration fields
// that are not explicitly set in the config file.
func applyDefaults(cfg *Config) {
	if cfg.Backend.Mode == "" {
		cfg.Backend.Mode = BackendModeMemory
	}

	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 10 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 10 * time.Second
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = 120 * time.Second
	}

	if cfg.Consumer.Queue == "" {
		cfg.Consumer.Queue = "batchq-in"
	}
	if cfg.Consumer.Group == "" {
		cfg.Consumer.Group = "batchq-workers"
	}
	if cfg.Consumer.BatchSize == 0 {
		cfg.Consumer.BatchSize = 100
	}
	if cfg.Consumer.MaxWait == 0 {
		cfg.Consumer.MaxWait = 500 * time.Millisecond
	}

	if cfg.Producer.Queue == "" {
		cfg.Producer.Queue = "batchq-out"
	}

	if len(cfg.Kafka.Brokers) == 0 {
		cfg.Kafka.Brokers = []string{"localhost:9092"}
	}

	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}

	if cfg.Postgres.Host == "" {
		cfg.Postgres.Host = "localhost"
	}
	if cfg.Postgres.Port == 0 {
		cfg.Postgres.Port = 5432
	}
	if cfg.Postgres.SSLMode == "" {
		cfg.Postgres.SSLMode = "disable"
	}
	if cfg.Postgres.MaxOpenConns == 0 {
		cfg.Postgres.MaxOpenConns = 25
	}

	if cfg.Logger.Level == "" {
		cfg.Logger.Level = "info"
	}
	if cfg.Logger.Format == "" {
		cfg.Logger.Format = "json"
	}
}

// Address returns the full server address in host:port format.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DSN returns the PostgreSQL connection string.
func (c *PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// RedisAddr returns the Redis address in host:port format.
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

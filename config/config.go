package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"

	"github.com/Ramsey-B/clover/internal/tracing/exporters"
	"github.com/Ramsey-B/clover/pkg/kafka"
)

type Config struct {
	AppName    string `env:"APP_NAME" env-default:"clover"`
	LogLevel   string `env:"LOG_LEVEL" env-default:"info"`
	PrettyLogs bool   `env:"PRETTY_LOGS" env-default:"false"`

	// Matching
	MultiFieldDelimiter      string  `env:"MULTI_FIELD_DELIMITER" env-default:";"`
	IdentifierPrefix         string  `env:"IDENTIFIER_PREFIX" env-default:"(Identifier)"`
	InterchangeableThreshold float64 `env:"INTERCHANGEABLE_THRESHOLD" env-default:"0.85"`
	NullFieldPenalty         float64 `env:"NULL_FIELD_PENALTY" env-default:"0"` // 0 disables the modifier

	// Processing
	BatchWorkerCount int `env:"BATCH_WORKER_COUNT" env-default:"4"`

	// Observability
	MetricsEnabled  bool   `env:"METRICS_ENABLED" env-default:"true"`
	TracingEnabled  bool   `env:"TRACING_ENABLED" env-default:"false"`
	TracingExporter string `env:"TRACING_EXPORTER" env-default:"console"` // console or otlp
	OTLPEndpoint    string `env:"OTLP_ENDPOINT" env-default:"localhost:4317"`
	OTLPProtocol    string `env:"OTLP_PROTOCOL" env-default:"grpc"`
	OTLPInsecure    bool   `env:"OTLP_INSECURE" env-default:"true"`

	// Kafka Producer settings
	KafkaEnabled      bool     `env:"KAFKA_ENABLED" env-default:"false"`
	KafkaBrokers      []string `env:"KAFKA_BROKERS" env-default:"localhost:9092"`
	KafkaOutputTopic  string   `env:"KAFKA_OUTPUT_TOPIC" env-default:"pair-scores"`
	KafkaBatchSize    int      `env:"KAFKA_BATCH_SIZE" env-default:"100"`
	KafkaBatchTimeout int      `env:"KAFKA_BATCH_TIMEOUT_MS" env-default:"100"`
	KafkaRequiredAcks int      `env:"KAFKA_REQUIRED_ACKS" env-default:"1"`
	KafkaCompression  string   `env:"KAFKA_COMPRESSION" env-default:"snappy"`
}

// Load reads an optional .env file from the working directory and then
// binds the environment onto a Config
func Load() (*Config, error) {
	return LoadFile(".env")
}

// LoadFile is Load with an explicit dotenv path. A missing file is not an error.
func LoadFile(path string) (*Config, error) {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	return &cfg, nil
}

// KafkaProducerConfig returns the producer settings
func (c *Config) KafkaProducerConfig() kafka.ProducerConfig {
	return kafka.ProducerConfig{
		Brokers:      c.KafkaBrokers,
		Topic:        c.KafkaOutputTopic,
		BatchSize:    c.KafkaBatchSize,
		BatchTimeout: time.Duration(c.KafkaBatchTimeout) * time.Millisecond,
		RequiredAcks: c.KafkaRequiredAcks,
		Compression:  c.KafkaCompression,
	}
}

// OTLPConfig returns the collector settings used when TracingExporter is otlp
func (c *Config) OTLPConfig() exporters.OTLPConfig {
	return exporters.OTLPConfig{
		Endpoint: c.OTLPEndpoint,
		Protocol: c.OTLPProtocol,
		Insecure: c.OTLPInsecure,
	}
}

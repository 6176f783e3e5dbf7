package app

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/vladislavdragonenkov/bakeshop/internal/messaging/kafka"
)

// StorageDriver выбирает реализацию хранилища.
type StorageDriver string

const (
	// StorageDriverMemory — встроенное in-memory хранилище (по умолчанию).
	StorageDriverMemory StorageDriver = "memory"
	// StorageDriverPostgres — PostgreSQL через pgx stdlib драйвер.
	StorageDriverPostgres StorageDriver = "postgres"
)

// Config описывает настройки запуска приложения.
type Config struct {
	MetricsAddr string

	StorageDriver       StorageDriver
	PostgresDSN         string
	PostgresAutoMigrate bool

	KafkaBrokers string
	KafkaTopic   string

	OutboxPollInterval time.Duration
	OutboxBatchSize    int
	OutboxMaxAttempts  int
	OutboxRetryDelay   time.Duration
	OutboxMaxPending   int
}

// DefaultConfig возвращает конфигурацию для локального запуска без внешних
// зависимостей: память вместо Postgres, Kafka выключена.
func DefaultConfig() Config {
	return Config{
		MetricsAddr:         ":9090",
		StorageDriver:       StorageDriverMemory,
		PostgresAutoMigrate: true,
		KafkaTopic:          kafka.TopicOrderEvents,
		OutboxPollInterval:  time.Second,
		OutboxBatchSize:     100,
		OutboxMaxAttempts:   3,
		OutboxRetryDelay:    100 * time.Millisecond,
		OutboxMaxPending:    1000,
	}
}

// LoadConfig строит конфигурацию из окружения поверх значений по умолчанию.
// Заданный BAKESHOP_POSTGRES_DSN автоматически переключает драйвер на postgres.
func LoadConfig() Config {
	cfg := DefaultConfig()

	cfg.MetricsAddr = envString("BAKESHOP_METRICS_ADDR", cfg.MetricsAddr)
	cfg.PostgresDSN = envString("BAKESHOP_POSTGRES_DSN", cfg.PostgresDSN)
	if driver := envString("BAKESHOP_STORAGE_DRIVER", ""); driver != "" {
		cfg.StorageDriver = StorageDriver(strings.ToLower(driver))
	} else if cfg.PostgresDSN != "" {
		cfg.StorageDriver = StorageDriverPostgres
	}
	cfg.PostgresAutoMigrate = envBool("BAKESHOP_POSTGRES_AUTO_MIGRATE", cfg.PostgresAutoMigrate)

	cfg.KafkaBrokers = envString("BAKESHOP_KAFKA_BROKERS", cfg.KafkaBrokers)
	cfg.KafkaTopic = envString("BAKESHOP_KAFKA_TOPIC", cfg.KafkaTopic)

	cfg.OutboxPollInterval = envDuration("BAKESHOP_OUTBOX_POLL_INTERVAL", cfg.OutboxPollInterval)
	cfg.OutboxBatchSize = envInt("BAKESHOP_OUTBOX_BATCH_SIZE", cfg.OutboxBatchSize)
	cfg.OutboxMaxAttempts = envInt("BAKESHOP_OUTBOX_MAX_ATTEMPTS", cfg.OutboxMaxAttempts)
	cfg.OutboxRetryDelay = envDuration("BAKESHOP_OUTBOX_RETRY_DELAY", cfg.OutboxRetryDelay)
	cfg.OutboxMaxPending = envInt("BAKESHOP_OUTBOX_MAX_PENDING", cfg.OutboxMaxPending)

	return cfg
}

func envString(name, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		return v
	}
	return fallback
}

func envBool(name string, fallback bool) bool {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func envInt(name string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(v)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func envDuration(name string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(v)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

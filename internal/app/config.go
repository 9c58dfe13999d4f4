package app

import "os"

// Драйверы хранилища товаров.
const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

// Config описывает минимальные настройки запуска приложения.
type Config struct {
	// HTTPAddr — адрес товарного REST API.
	HTTPAddr string
	// MetricsAddr — адрес служебного HTTP-сервера (/metrics, /healthz).
	MetricsAddr string
	// StorageDriver — memory или postgres.
	StorageDriver string
	// PostgresDSN используется только при StorageDriver=postgres.
	PostgresDSN string
	// PostgresAutoMigrate применяет встроенные миграции при старте.
	PostgresAutoMigrate bool
	// KafkaBrokers — список брокеров через запятую; пустой — Kafka выключен.
	KafkaBrokers string
	// OrderTopic — топик для публикуемых заказов.
	OrderTopic string
}

// DefaultConfig возвращает базовые адреса и in-memory хранилище.
func DefaultConfig() Config {
	return Config{
		HTTPAddr:      ":8080",
		MetricsAddr:   ":9090",
		StorageDriver: StorageMemory,
	}
}

// ConfigFromEnv накладывает переменные окружения поверх DefaultConfig.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	if v := os.Getenv("INVENTORY_HTTP_ADDR"); v != "" {
		cfg.HTTPAddr = v
	}
	if v := os.Getenv("INVENTORY_METRICS_ADDR"); v != "" {
		cfg.MetricsAddr = v
	}
	if v := os.Getenv("INVENTORY_STORAGE"); v != "" {
		cfg.StorageDriver = v
	}
	if v := os.Getenv("INVENTORY_POSTGRES_DSN"); v != "" {
		cfg.PostgresDSN = v
	}
	if v := os.Getenv("INVENTORY_POSTGRES_AUTO_MIGRATE"); v == "1" || v == "true" {
		cfg.PostgresAutoMigrate = true
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		cfg.KafkaBrokers = v
	}
	if v := os.Getenv("KAFKA_ORDER_TOPIC"); v != "" {
		cfg.OrderTopic = v
	}
	return cfg
}

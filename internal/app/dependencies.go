package app

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/inventory/internal/domain"
	"github.com/vladislavdragonenkov/inventory/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/inventory/internal/metrics"
	"github.com/vladislavdragonenkov/inventory/internal/storage/memory"
	"github.com/vladislavdragonenkov/inventory/internal/storage/postgres"
)

// Dependencies содержит все зависимости приложения.
type Dependencies struct {
	Repo      domain.ProductRepository
	Publisher domain.OrderPublisher
	Producer  *kafka.Producer
	Store     *postgres.Store
	Metrics   *metrics.InventoryMetrics
	Logger    *log.Entry
}

// NewDependencies создаёт и инициализирует все зависимости приложения
// согласно конфигурации: хранилище товаров, Kafka-издателя и метрики.
func NewDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*Dependencies, error) {
	if logger == nil {
		logger = log.WithField("component", "app")
	}

	repo, store, err := initStorage(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	producer, err := initKafkaProducer(cfg.KafkaBrokers, logger)
	if err != nil {
		// Producer не поднялся: сервис продолжает работать без Kafka,
		// заказы публикуются только в лог.
		producer = nil
	}

	var publisher domain.OrderPublisher
	if producer != nil {
		publisher = kafka.NewOrderPublisher(producer, cfg.OrderTopic)
	} else {
		publisher = &logPublisher{logger: logger}
	}

	return &Dependencies{
		Repo:      repo,
		Publisher: publisher,
		Producer:  producer,
		Store:     store,
		Metrics:   metrics.NewInventoryMetrics(),
		Logger:    logger,
	}, nil
}

// Close освобождает внешние ресурсы (Kafka, PostgreSQL).
func (d *Dependencies) Close() {
	closeKafka(d.Producer, d.Logger)
	if d.Store != nil {
		if err := d.Store.Close(); err != nil {
			d.Logger.WithError(err).Warn("failed to close postgres store")
		}
	}
}

// initStorage выбирает реализацию ProductRepository по драйверу.
func initStorage(ctx context.Context, cfg Config, logger *log.Entry) (domain.ProductRepository, *postgres.Store, error) {
	switch cfg.StorageDriver {
	case "", StorageMemory:
		logger.Info("using in-memory product storage")
		return memory.NewProductRepository(), nil, nil
	case StoragePostgres:
		if cfg.PostgresDSN == "" {
			return nil, nil, fmt.Errorf("postgres storage requires INVENTORY_POSTGRES_DSN")
		}
		store, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres store: %w", err)
		}
		if cfg.PostgresAutoMigrate {
			if err := store.EnsureSchema(ctx); err != nil {
				_ = store.Close()
				return nil, nil, fmt.Errorf("apply migrations: %w", err)
			}
			logger.Info("postgres schema is up to date")
		}
		logger.Info("using postgres product storage")
		return postgres.NewProductRepository(store), store, nil
	default:
		return nil, nil, fmt.Errorf("unsupported storage driver: %s", cfg.StorageDriver)
	}
}

// logPublisher — заглушка для запуска без Kafka: заказ попадает только в лог.
type logPublisher struct {
	logger *log.Entry
}

func (p *logPublisher) Publish(order domain.Order) error {
	p.logger.WithFields(log.Fields{
		"order_id": order.ID,
		"items":    len(order.Items),
	}).Info("kafka disabled, order logged only")
	return nil
}

var _ domain.OrderPublisher = (*logPublisher)(nil)

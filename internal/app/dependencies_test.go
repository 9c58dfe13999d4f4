package app

import (
	"context"
	"strings"
	"testing"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/inventory/internal/domain"
)

func testLogger() *log.Entry {
	logger := log.New()
	logger.SetLevel(log.PanicLevel)
	return log.NewEntry(logger)
}

func TestInitStorageMemory(t *testing.T) {
	repo, store, err := initStorage(context.Background(), Config{StorageDriver: StorageMemory}, testLogger())
	if err != nil {
		t.Fatalf("initStorage: %v", err)
	}
	if repo == nil {
		t.Fatal("expected repository")
	}
	if store != nil {
		t.Fatal("memory driver must not open postgres")
	}
}

func TestInitStorageEmptyDriverDefaultsToMemory(t *testing.T) {
	repo, _, err := initStorage(context.Background(), Config{}, testLogger())
	if err != nil {
		t.Fatalf("initStorage: %v", err)
	}
	if repo == nil {
		t.Fatal("expected repository")
	}
}

func TestInitStoragePostgresRequiresDSN(t *testing.T) {
	_, _, err := initStorage(context.Background(), Config{StorageDriver: StoragePostgres}, testLogger())
	if err == nil {
		t.Fatal("expected error without DSN")
	}
	if !strings.Contains(err.Error(), "INVENTORY_POSTGRES_DSN") {
		t.Errorf("error should name the missing setting, got: %v", err)
	}
}

func TestInitStorageUnknownDriver(t *testing.T) {
	_, _, err := initStorage(context.Background(), Config{StorageDriver: "cassandra"}, testLogger())
	if err == nil {
		t.Fatal("expected error for unsupported driver")
	}
	if !strings.Contains(err.Error(), "unsupported storage driver") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestNewDependenciesMemoryWithoutKafka(t *testing.T) {
	deps, err := NewDependencies(context.Background(), Config{StorageDriver: StorageMemory}, testLogger())
	if err != nil {
		t.Fatalf("NewDependencies: %v", err)
	}
	defer deps.Close()

	if deps.Repo == nil {
		t.Fatal("expected repository")
	}
	if deps.Publisher == nil {
		t.Fatal("expected publisher fallback")
	}
	if deps.Producer != nil {
		t.Fatal("producer must be nil without brokers")
	}
	if deps.Metrics == nil {
		t.Fatal("expected metrics")
	}
}

func TestLogPublisherAcceptsOrder(t *testing.T) {
	publisher := &logPublisher{logger: testLogger()}

	err := publisher.Publish(domain.Order{ID: "ord-1"})
	if err != nil {
		t.Fatalf("log publisher should not fail: %v", err)
	}
}

func TestInitKafkaProducerEmptyBrokers(t *testing.T) {
	producer, err := initKafkaProducer("", testLogger())
	if err != nil {
		t.Fatalf("empty brokers should not error: %v", err)
	}
	if producer != nil {
		t.Fatal("empty brokers should yield nil producer")
	}
}

func TestCloseKafkaNilProducer(t *testing.T) {
	// Не должно паниковать.
	closeKafka(nil, testLogger())
}

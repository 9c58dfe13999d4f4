package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// InventoryMetrics содержит метрики операций склада.
type InventoryMetrics struct {
	// Счётчики списаний остатков
	quantityDecrements prometheus.Counter
	insufficientStock  prometheus.Counter

	// Счётчики публикации заказов
	ordersPublished prometheus.Counter
	publishFailures prometheus.Counter

	// Коды конвертов по операциям
	responseCodes *prometheus.CounterVec

	// Гистограмма времени списания под мьютексом
	decrementDuration prometheus.Histogram
}

// NewInventoryMetrics создаёт новый экземпляр метрик склада.
func NewInventoryMetrics() *InventoryMetrics {
	return newInventoryMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newInventoryMetricsWithRegisterer(registerer prometheus.Registerer) *InventoryMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &InventoryMetrics{
		quantityDecrements: registerCounter(registerer, prometheus.CounterOpts{
			Name: "inventory_quantity_decrements_total",
			Help: "Total number of successful product quantity decrements",
		}),
		insufficientStock: registerCounter(registerer, prometheus.CounterOpts{
			Name: "inventory_insufficient_stock_total",
			Help: "Total number of decrements rejected due to insufficient stock",
		}),
		ordersPublished: registerCounter(registerer, prometheus.CounterOpts{
			Name: "inventory_orders_published_total",
			Help: "Total number of orders published to the message queue",
		}),
		publishFailures: registerCounter(registerer, prometheus.CounterOpts{
			Name: "inventory_order_publish_failures_total",
			Help: "Total number of failed order publish attempts",
		}),
		responseCodes: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "inventory_response_codes_total",
			Help: "Response envelope codes returned by core operations",
		}, []string{"operation", "code"}),
		decrementDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "inventory_decrement_duration_seconds",
			Help:    "Duration of quantity decrement operations in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogram(registerer prometheus.Registerer, opts prometheus.HistogramOpts) prometheus.Histogram {
	collector := prometheus.NewHistogram(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Histogram)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram %q: %v", opts.Name, err))
	}
	return collector
}

// RecordQuantityDecrement увеличивает счётчик успешных списаний.
func (m *InventoryMetrics) RecordQuantityDecrement() {
	m.quantityDecrements.Inc()
}

// RecordInsufficientStock увеличивает счётчик отказов по остаткам.
func (m *InventoryMetrics) RecordInsufficientStock() {
	m.insufficientStock.Inc()
}

// RecordOrderPublished увеличивает счётчик опубликованных заказов.
func (m *InventoryMetrics) RecordOrderPublished() {
	m.ordersPublished.Inc()
}

// RecordPublishFailure увеличивает счётчик неудачных публикаций.
func (m *InventoryMetrics) RecordPublishFailure() {
	m.publishFailures.Inc()
}

// RecordResponseCode фиксирует код конверта, возвращённый операцией.
func (m *InventoryMetrics) RecordResponseCode(operation, code string) {
	m.responseCodes.WithLabelValues(operation, code).Inc()
}

// RecordDecrementDuration записывает время списания.
func (m *InventoryMetrics) RecordDecrementDuration(duration time.Duration) {
	m.decrementDuration.Observe(duration.Seconds())
}

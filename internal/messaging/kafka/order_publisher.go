package kafka

import (
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/inventory/internal/domain"
)

// DefaultOrderTopic — топик заказов по умолчанию.
const DefaultOrderTopic = "inventory.orders"

// OrderPublisher отправляет заказы в именованный топик.
// Доставка fire-and-forget: вызов возвращается после приёма брокером.
type OrderPublisher struct {
	producer *Producer
	topic    string
	logger   *log.Entry
}

// NewOrderPublisher создаёт publisher заказов поверх Kafka producer-а.
// Пустой topic заменяется на DefaultOrderTopic.
func NewOrderPublisher(producer *Producer, topic string) *OrderPublisher {
	if topic == "" {
		topic = DefaultOrderTopic
	}
	return &OrderPublisher{
		producer: producer,
		topic:    topic,
		logger:   log.WithField("component", "order-publisher"),
	}
}

// Publish сериализует заказ и отправляет его в топик с ключом order id,
// чтобы заказы с одним id попадали в одну партицию.
func (p *OrderPublisher) Publish(order domain.Order) error {
	p.logger.WithFields(log.Fields{
		"order_id": order.ID,
		"topic":    p.topic,
		"items":    len(order.Items),
	}).Info("publishing order")

	return p.producer.PublishEvent(p.topic, order.ID, order)
}

var _ domain.OrderPublisher = (*OrderPublisher)(nil)

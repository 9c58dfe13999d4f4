package domain

import "time"

// OrderProduct представляет одну позицию заказа.
type OrderProduct struct {
	// ProductID — внешний идентификатор товара.
	ProductID string `json:"product_id"`
	// Name и Description дублируются из каталога на момент заказа.
	Name        string `json:"name"`
	Description string `json:"description"`
	// Price — цена за единицу на момент заказа.
	Price float64 `json:"price"`
	// Quantity — запрошенное количество единиц.
	Quantity int `json:"quantity"`
}

// Order агрегирует заказ покупателя. Сервис склада заказы не хранит:
// заказ только проверяется и пересылается в Kafka.
type Order struct {
	ID              string         `json:"id"`
	Items           []OrderProduct `json:"items"`
	Total           float64        `json:"total"`
	OrderDate       time.Time      `json:"order_date"`
	DeliveryDate    time.Time      `json:"delivery_date"`
	DeliveryAddress string         `json:"delivery_address"`
	CustomerName    string         `json:"customer_name"`
	CustomerEmail   string         `json:"customer_email"`
	CustomerPhone   string         `json:"customer_phone"`
	// Fulfilled выставляется downstream-консьюмером, здесь только переносится.
	Fulfilled bool `json:"fulfilled"`
}

// ValidateInvariants проверяет базовые инварианты заказа и возвращает список замечаний.
func (o *Order) ValidateInvariants() []error {
	var errs []error

	if len(o.Items) == 0 {
		errs = append(errs, ErrOrderItemsRequired)
	}
	if o.Total < 0 {
		errs = append(errs, ErrOrderTotalNegative)
	}
	for _, item := range o.Items {
		if item.ProductID == "" {
			errs = append(errs, ErrOrderItemProductRequired)
		}
		if item.Quantity <= 0 {
			errs = append(errs, ErrOrderItemQtyInvalid)
		}
		if item.Price < 0 {
			errs = append(errs, ErrOrderItemPriceInvalid)
		}
	}

	return errs
}

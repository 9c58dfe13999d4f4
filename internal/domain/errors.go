package domain

import "errors"

var (
	// Ошибка отсутствующего идентификатора товара.
	ErrProductIDRequired = errors.New("product id is required")
	// Ошибка отсутствующего названия товара.
	ErrProductNameRequired = errors.New("product name is required")
	// Ошибка отрицательной цены товара.
	ErrPriceNegative = errors.New("price must be non-negative")
	// Ошибка отрицательного остатка.
	ErrQuantityNegative = errors.New("quantity must be non-negative")
	// Ошибка отсутствия хотя бы одной позиции в заказе.
	ErrOrderItemsRequired = errors.New("order must contain at least one item")
	// Ошибка отрицательной суммы заказа.
	ErrOrderTotalNegative = errors.New("order total must be non-negative")
	// Ошибка отсутствующего товара в позиции заказа.
	ErrOrderItemProductRequired = errors.New("order item product_id is required")
	// Ошибка некорректного количества в позиции заказа (<= 0).
	ErrOrderItemQtyInvalid = errors.New("order item quantity must be greater than zero")
	// Ошибка отрицательной цены позиции заказа.
	ErrOrderItemPriceInvalid = errors.New("order item price must be non-negative")
	// ErrProductNotFound возвращается, если товар не найден в хранилище.
	ErrProductNotFound = errors.New("product not found")
	// ErrProductVersionConflict сигнализирует о конфликте версий при сохранении.
	ErrProductVersionConflict = errors.New("product version conflict")
	// ErrInsufficientStock — бизнес-ошибка списания: запрошено не меньше, чем есть на складе.
	ErrInsufficientStock = errors.New("the purchase quantity is higher than available products")
	// ErrPublishFailed — ошибка при отправке заказа в очередь.
	ErrPublishFailed = errors.New("order publish failed")
)

// IsVersionConflict проверяет, является ли ошибка конфликтом версий.
func IsVersionConflict(err error) bool {
	return errors.Is(err, ErrProductVersionConflict)
}

// IsInsufficientStock проверяет, является ли ошибка отказом по остаткам.
func IsInsufficientStock(err error) bool {
	return errors.Is(err, ErrInsufficientStock)
}

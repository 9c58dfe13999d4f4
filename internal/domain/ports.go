package domain

import "context"

// ProductRepository описывает требования к хранилищу товаров.
type ProductRepository interface {
	// FindByID возвращает товар по идентификатору или ErrProductNotFound, если его нет.
	FindByID(ctx context.Context, id string) (Product, error)
	// Save сохраняет товар (insert-or-update по ID) и возвращает сохранённое состояние.
	// Может вернуть ErrProductVersionConflict при конкурентной перезаписи.
	Save(ctx context.Context, product Product) (Product, error)
	// FindAll возвращает страницу товаров; нумерация страниц с нуля.
	FindAll(ctx context.Context, page, size int) (ProductPage, error)
	// FindAvailable возвращает товары с остатком строго больше minQty.
	FindAvailable(ctx context.Context, page, size, minQty int) ([]Product, error)
}

// OrderPublisher публикует заказ во внешнюю очередь. Вызов возвращается
// после постановки сообщения в клиент, без гарантий доставки downstream.
type OrderPublisher interface {
	Publish(order Order) error
}

package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/vladislavdragonenkov/inventory/internal/domain"
)

// productRepositoryInMemory — простая in-memory реализация ProductRepository.
type productRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.Product
}

// NewProductRepository возвращает in-memory репозиторий для локальной разработки и тестов.
func NewProductRepository() domain.ProductRepository {
	return &productRepositoryInMemory{
		items: make(map[string]domain.Product),
	}
}

// FindByID возвращает товар или ErrProductNotFound, если его нет.
func (r *productRepositoryInMemory) FindByID(_ context.Context, id string) (domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.items[id]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return product, nil
}

// Save вставляет или перезаписывает товар, проверяя версию (optimistic locking).
func (r *productRepositoryInMemory) Save(_ context.Context, product domain.Product) (domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, exists := r.items[product.ID]
	if exists && current.Version != product.Version {
		return domain.Product{}, domain.ErrProductVersionConflict
	}
	if exists {
		// Инкрементируем версию перед сохранением.
		product.Version++
	}
	r.items[product.ID] = product
	return product, nil
}

// FindAll возвращает страницу товаров в стабильном порядке по ID.
func (r *productRepositoryInMemory) FindAll(_ context.Context, page, size int) (domain.ProductPage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = defaultPageSize
	}

	all := make([]domain.Product, 0, len(r.items))
	for _, product := range r.items {
		all = append(all, product)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	total := int64(len(all))
	totalPages := int((total + int64(size) - 1) / int64(size))

	start := page * size
	if start > len(all) {
		start = len(all)
	}
	end := start + size
	if end > len(all) {
		end = len(all)
	}

	return domain.ProductPage{
		Items:      all[start:end],
		Page:       page,
		Size:       size,
		TotalItems: total,
		TotalPages: totalPages,
	}, nil
}

// FindAvailable возвращает товары с остатком строго больше minQty.
func (r *productRepositoryInMemory) FindAvailable(_ context.Context, page, size, minQty int) ([]domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = defaultPageSize
	}

	matching := make([]domain.Product, 0, len(r.items))
	for _, product := range r.items {
		if product.Quantity > minQty {
			matching = append(matching, product)
		}
	}
	sort.Slice(matching, func(i, j int) bool { return matching[i].ID < matching[j].ID })

	start := page * size
	if start > len(matching) {
		start = len(matching)
	}
	end := start + size
	if end > len(matching) {
		end = len(matching)
	}

	return matching[start:end], nil
}

const defaultPageSize = 20

var _ domain.ProductRepository = (*productRepositoryInMemory)(nil)

package inventory

import (
	"context"
	"errors"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/inventory/internal/domain"
	"github.com/vladislavdragonenkov/inventory/internal/metrics"
)

// Имена операций для метрик и логов.
const (
	opUpdateQuantity   = "update_product_quantity"
	opFindAll          = "find_all"
	opFindAllAvailable = "find_all_available"
	opUpdatePrice      = "update_price"
	opUpdate           = "update"
	opMakeOrder        = "make_order"
)

// Service реализует операции ядра склада поверх репозитория товаров
// и publisher-а заказов.
//
// Политика ошибок по операциям различается намеренно и сохраняется:
// UpdateProductQuantity и UpdatePrice пробрасывают ошибки хранилища наружу,
// Update и MakeOrder всегда деградируют до конверта с кодом "99".
type Service struct {
	repo      domain.ProductRepository
	publisher domain.OrderPublisher
	logger    *log.Entry
	metrics   *metrics.InventoryMetrics

	// locks выдаёт мьютекс на товар; сериализуются только конкурентные
	// списания одного и того же product id.
	locks *keyedMutex
}

// NewService конструирует сервис с зависимостями. Metrics может быть nil.
func NewService(
	repo domain.ProductRepository,
	publisher domain.OrderPublisher,
	invMetrics *metrics.InventoryMetrics,
	logger *log.Entry,
) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "inventory-service")
	}
	return &Service{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		metrics:   invMetrics,
		locks:     newKeyedMutex(),
	}
}

// UpdateProductQuantity списывает requestedQty единиц товара под мьютексом,
// покрывающим всю последовательность lookup-compute-persist.
//
// Отсутствующий товар — тихий no-op. Списание в ровно ноль запрещено:
// сравнение строгое, current > requestedQty, иначе ErrInsufficientStock.
// Мьютекс освобождается на каждом пути выхода, включая ошибочные.
func (s *Service) UpdateProductQuantity(ctx context.Context, productID string, requestedQty int) error {
	start := time.Now()
	unlock := s.locks.Lock(productID)
	defer unlock()
	defer func() {
		s.recordDecrementDuration(time.Since(start))
	}()

	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			s.logger.WithField("product_id", productID).Debug("quantity update skipped: product not found")
			return nil
		}
		return err
	}

	current := product.Quantity
	if current <= requestedQty {
		s.logger.WithFields(log.Fields{
			"product_id": productID,
			"available":  current,
			"requested":  requestedQty,
		}).Warn("quantity update rejected: insufficient stock")
		s.recordInsufficientStock()
		return domain.ErrInsufficientStock
	}

	product.Quantity = current - requestedQty
	product.UpdatedAt = time.Now().UTC()
	if _, err := s.repo.Save(ctx, product); err != nil {
		return err
	}

	s.recordQuantityDecrement()
	s.logger.WithFields(log.Fields{
		"product_id": productID,
		"requested":  requestedQty,
		"remaining":  product.Quantity,
	}).Debug("product quantity decremented")
	return nil
}

// FindAll возвращает страницу товаров, всегда как успех, даже если она пустая.
// Ошибка хранилища пробрасывается наружу.
func (s *Service) FindAll(ctx context.Context, page, size int) (Response, error) {
	result, err := s.repo.FindAll(ctx, page, size)
	if err != nil {
		return Response{}, err
	}

	resp := OK("Search Completed", result)
	s.recordResponseCode(opFindAll, resp.Code)
	return resp, nil
}

// FindAllAvailable возвращает товары с остатком строго больше minQty.
// Пустая выборка — различимый не-ошибочный результат с кодом "11"
// и пустым списком в качестве полезной нагрузки.
func (s *Service) FindAllAvailable(ctx context.Context, page, size, minQty int) (Response, error) {
	available, err := s.repo.FindAvailable(ctx, page, size, minQty)
	if err != nil {
		return Response{}, err
	}
	if available == nil {
		available = []domain.Product{}
	}

	var resp Response
	if len(available) > 0 {
		resp = OK("Products returned successfully", available)
	} else {
		resp = NoContent("NO PRODUCTS AVAILABLE!", available)
	}
	s.recordResponseCode(opFindAllAvailable, resp.Code)
	return resp, nil
}

// FindByID возвращает товар или ErrProductNotFound.
func (s *Service) FindByID(ctx context.Context, id string) (domain.Product, error) {
	return s.repo.FindByID(ctx, id)
}

// UpdatePrice назначает товару новую цену. Отсутствующий товар — конверт "99"
// с пустой полезной нагрузкой; ошибка сохранения пробрасывается наружу без
// преобразования, в отличие от Update.
func (s *Service) UpdatePrice(ctx context.Context, productID string, price float64) (Response, error) {
	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			resp := Failure(http.StatusExpectationFailed, "No Product found with the ID", nil)
			s.recordResponseCode(opUpdatePrice, resp.Code)
			return resp, nil
		}
		return Response{}, err
	}

	product.Price = price
	product.UpdatedAt = time.Now().UTC()
	updated, err := s.repo.Save(ctx, product)
	if err != nil {
		return Response{}, err
	}

	resp := OK("Product price updated successfully", updated)
	s.recordResponseCode(opUpdatePrice, resp.Code)
	return resp, nil
}

// Update безусловно сохраняет товар (insert-or-update по ID). Ошибка
// хранилища не пробрасывается: она превращается в конверт "99", где
// полезная нагрузка — текст ошибки.
func (s *Service) Update(ctx context.Context, product domain.Product) Response {
	updated, err := s.repo.Save(ctx, product)
	if err != nil {
		s.logger.WithError(err).WithField("product_id", product.ID).Error("failed to update product")
		resp := Failure(http.StatusExpectationFailed, "Error updating product", err.Error())
		s.recordResponseCode(opUpdate, resp.Code)
		return resp
	}

	resp := OK("Product updated successfully", updated)
	s.recordResponseCode(opUpdate, resp.Code)
	return resp
}

// MakeOrder публикует заказ в очередь. Никакой проверки остатков и записи
// в хранилище здесь нет: списание и размещение заказа транзакционно не
// связаны. Ошибка публикации превращается в конверт "99" с текстом ошибки
// в Message и пустой полезной нагрузкой.
func (s *Service) MakeOrder(order domain.Order) Response {
	if err := s.publisher.Publish(order); err != nil {
		s.logger.WithError(err).WithField("order_id", order.ID).Error("failed to publish order")
		s.recordPublishFailure()
		resp := Failure(http.StatusExpectationFailed, err.Error(), nil)
		s.recordResponseCode(opMakeOrder, resp.Code)
		return resp
	}

	s.recordOrderPublished()
	resp := OK("Order sent successfully", order)
	s.recordResponseCode(opMakeOrder, resp.Code)
	return resp
}

func (s *Service) recordQuantityDecrement() {
	if s.metrics != nil {
		s.metrics.RecordQuantityDecrement()
	}
}

func (s *Service) recordInsufficientStock() {
	if s.metrics != nil {
		s.metrics.RecordInsufficientStock()
	}
}

func (s *Service) recordOrderPublished() {
	if s.metrics != nil {
		s.metrics.RecordOrderPublished()
	}
}

func (s *Service) recordPublishFailure() {
	if s.metrics != nil {
		s.metrics.RecordPublishFailure()
	}
}

func (s *Service) recordResponseCode(operation, code string) {
	if s.metrics != nil {
		s.metrics.RecordResponseCode(operation, code)
	}
}

func (s *Service) recordDecrementDuration(d time.Duration) {
	if s.metrics != nil {
		s.metrics.RecordDecrementDuration(d)
	}
}

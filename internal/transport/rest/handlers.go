package rest

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/inventory/internal/domain"
	"github.com/vladislavdragonenkov/inventory/internal/service/inventory"
)

const (
	defaultPage = 0
	defaultSize = 20
)

// Handler переводит HTTP-запросы в вызовы ядра склада и конверты —
// в HTTP-ответы. HTTP-статус ответа берётся из конверта; ошибки,
// проброшенные ядром (insufficient stock, ошибки хранилища),
// транслируются в статус здесь.
type Handler struct {
	svc    *inventory.Service
	logger *log.Entry
}

// NewHandler конструирует HTTP-обработчик поверх ядра склада.
func NewHandler(svc *inventory.Service, logger *log.Entry) *Handler {
	if logger == nil {
		logger = log.New().WithField("component", "rest")
	}
	return &Handler{svc: svc, logger: logger}
}

// All обрабатывает GET /products/all.
func (h *Handler) All(c *gin.Context) {
	page, size := pageParams(c)

	resp, err := h.svc.FindAll(c.Request.Context(), page, size)
	if err != nil {
		h.writeError(c, err)
		return
	}
	writeEnvelope(c, resp)
}

// Available обрабатывает GET /products/available.
func (h *Handler) Available(c *gin.Context) {
	page, size := pageParams(c)
	minQty := intQuery(c, "qty", 0)

	resp, err := h.svc.FindAllAvailable(c.Request.Context(), page, size, minQty)
	if err != nil {
		h.writeError(c, err)
		return
	}
	writeEnvelope(c, resp)
}

// ByID обрабатывает GET /products/id/:product_id.
func (h *Handler) ByID(c *gin.Context) {
	id := c.Param("product_id")

	product, err := h.svc.FindByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			writeEnvelope(c, inventory.Failure(http.StatusNotFound, "No such product found", nil))
			return
		}
		h.writeError(c, err)
		return
	}
	writeEnvelope(c, inventory.OK("Product found", product))
}

// Create обрабатывает POST /products/new. Ошибка хранилища не пробрасывается:
// создание деградирует до конверта "99", как и Update.
func (h *Handler) Create(c *gin.Context) {
	var product domain.Product
	if err := c.ShouldBindJSON(&product); err != nil {
		writeEnvelope(c, inventory.Failure(http.StatusBadRequest, "invalid product payload: "+err.Error(), nil))
		return
	}

	now := time.Now().UTC()
	if product.ID == "" {
		product.ID = uuid.NewString()
	}
	if product.CreatedAt.IsZero() {
		product.CreatedAt = now
	}
	product.UpdatedAt = now

	if errs := product.ValidateInvariants(); len(errs) > 0 {
		writeEnvelope(c, inventory.Failure(http.StatusBadRequest, joinErrors(errs), nil))
		return
	}

	writeEnvelope(c, h.svc.Update(c.Request.Context(), product))
}

// Update обрабатывает PUT /products/update.
func (h *Handler) Update(c *gin.Context) {
	var product domain.Product
	if err := c.ShouldBindJSON(&product); err != nil {
		writeEnvelope(c, inventory.Failure(http.StatusBadRequest, "invalid product payload: "+err.Error(), nil))
		return
	}
	if product.ID == "" {
		writeEnvelope(c, inventory.Failure(http.StatusBadRequest, domain.ErrProductIDRequired.Error(), nil))
		return
	}
	product.UpdatedAt = time.Now().UTC()

	writeEnvelope(c, h.svc.Update(c.Request.Context(), product))
}

// UpdatePrice обрабатывает PUT /products/update-price/:product_id/:price.
func (h *Handler) UpdatePrice(c *gin.Context) {
	id := c.Param("product_id")
	price, err := strconv.ParseFloat(c.Param("price"), 64)
	if err != nil {
		writeEnvelope(c, inventory.Failure(http.StatusBadRequest, "invalid price: "+c.Param("price"), nil))
		return
	}
	if price < 0 {
		writeEnvelope(c, inventory.Failure(http.StatusBadRequest, domain.ErrPriceNegative.Error(), nil))
		return
	}

	resp, err := h.svc.UpdatePrice(c.Request.Context(), id, price)
	if err != nil {
		h.writeError(c, err)
		return
	}
	writeEnvelope(c, resp)
}

// UpdateQuantity обрабатывает PUT /products/update-quantity/:product_id/:qty.
// Единственный маршрут, за которым стоит списание под мьютексом.
func (h *Handler) UpdateQuantity(c *gin.Context) {
	id := c.Param("product_id")
	qty, err := strconv.Atoi(c.Param("qty"))
	if err != nil || qty <= 0 {
		writeEnvelope(c, inventory.Failure(http.StatusBadRequest, "quantity must be a positive integer", nil))
		return
	}

	if err := h.svc.UpdateProductQuantity(c.Request.Context(), id, qty); err != nil {
		h.writeError(c, err)
		return
	}
	writeEnvelope(c, inventory.OK("Product quantity updated successfully", nil))
}

// PlaceOrder обрабатывает POST /products/place-order.
func (h *Handler) PlaceOrder(c *gin.Context) {
	var order domain.Order
	if err := c.ShouldBindJSON(&order); err != nil {
		writeEnvelope(c, inventory.Failure(http.StatusBadRequest, "invalid order payload: "+err.Error(), nil))
		return
	}

	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	if order.OrderDate.IsZero() {
		order.OrderDate = time.Now().UTC()
	}

	if errs := order.ValidateInvariants(); len(errs) > 0 {
		writeEnvelope(c, inventory.Failure(http.StatusBadRequest, joinErrors(errs), nil))
		return
	}

	writeEnvelope(c, h.svc.MakeOrder(order))
}

// writeError транслирует проброшенную из ядра ошибку в HTTP-ответ.
func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case domain.IsInsufficientStock(err):
		writeEnvelope(c, inventory.Failure(http.StatusConflict, err.Error(), nil))
	case domain.IsVersionConflict(err):
		writeEnvelope(c, inventory.Failure(http.StatusConflict, err.Error(), nil))
	default:
		h.logger.WithError(err).WithField("path", c.FullPath()).Error("request failed")
		writeEnvelope(c, inventory.Failure(http.StatusInternalServerError, "internal error", nil))
	}
}

func writeEnvelope(c *gin.Context, resp inventory.Response) {
	c.JSON(resp.HTTPStatus, resp)
}

func pageParams(c *gin.Context) (int, int) {
	return intQuery(c, "page", defaultPage), intQuery(c, "size", defaultSize)
}

func intQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}

func joinErrors(errs []error) string {
	joined := ""
	for i, err := range errs {
		if i > 0 {
			joined += "; "
		}
		joined += err.Error()
	}
	return joined
}

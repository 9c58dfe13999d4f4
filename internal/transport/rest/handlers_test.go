package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/inventory/internal/domain"
	"github.com/vladislavdragonenkov/inventory/internal/service/inventory"
	"github.com/vladislavdragonenkov/inventory/internal/storage/memory"
)

type stubPublisher struct {
	err    error
	orders []domain.Order
}

func (p *stubPublisher) Publish(order domain.Order) error {
	if p.err != nil {
		return p.err
	}
	p.orders = append(p.orders, order)
	return nil
}

func newTestRouter(t *testing.T, repo domain.ProductRepository, publisher domain.OrderPublisher) http.Handler {
	t.Helper()
	svc := inventory.NewService(repo, publisher, nil, nil)
	return NewRouter(NewHandler(svc, nil), nil)
}

func seedProduct(t *testing.T, repo domain.ProductRepository, id string, qty int) domain.Product {
	t.Helper()
	product, err := repo.Save(context.Background(), domain.Product{
		ID:       id,
		Name:     "product " + id,
		Price:    9.99,
		Quantity: qty,
	})
	require.NoError(t, err)
	return product
}

func doRequest(t *testing.T, router http.Handler, method, target, body string) (*httptest.ResponseRecorder, inventory.Response) {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var resp inventory.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec, resp
}

func TestAllReturnsPage(t *testing.T) {
	repo := memory.NewProductRepository()
	seedProduct(t, repo, "p-1", 3)
	seedProduct(t, repo, "p-2", 0)
	router := newTestRouter(t, repo, &stubPublisher{})

	rec, resp := doRequest(t, router, http.MethodGet, "/products/all?page=0&size=10", "")

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, inventory.CodeSuccess, resp.Code)
	require.Equal(t, "Search Completed", resp.Message)
}

func TestAvailableEmptyGivesNoContentCode(t *testing.T) {
	repo := memory.NewProductRepository()
	seedProduct(t, repo, "p-1", 0)
	router := newTestRouter(t, repo, &stubPublisher{})

	rec, resp := doRequest(t, router, http.MethodGet, "/products/available", "")

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, inventory.CodeNoContent, resp.Code)
}

func TestAvailableNonEmpty(t *testing.T) {
	repo := memory.NewProductRepository()
	seedProduct(t, repo, "p-1", 5)
	router := newTestRouter(t, repo, &stubPublisher{})

	rec, resp := doRequest(t, router, http.MethodGet, "/products/available", "")

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, inventory.CodeSuccess, resp.Code)
}

func TestByIDFoundAndMissing(t *testing.T) {
	repo := memory.NewProductRepository()
	seedProduct(t, repo, "p-1", 5)
	router := newTestRouter(t, repo, &stubPublisher{})

	rec, resp := doRequest(t, router, http.MethodGet, "/products/id/p-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, inventory.CodeSuccess, resp.Code)

	rec, resp = doRequest(t, router, http.MethodGet, "/products/id/ghost", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, inventory.CodeFailure, resp.Code)
}

func TestCreateAssignsIDAndStores(t *testing.T) {
	repo := memory.NewProductRepository()
	router := newTestRouter(t, repo, &stubPublisher{})

	rec, resp := doRequest(t, router, http.MethodPost, "/products/new",
		`{"name":"keyboard","price":49.9,"quantity":12}`)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, inventory.CodeSuccess, resp.Code)

	stored, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	require.NotEmpty(t, stored["id"])

	_, err := repo.FindByID(context.Background(), stored["id"].(string))
	require.NoError(t, err)
}

func TestCreateRejectsInvalidPayload(t *testing.T) {
	router := newTestRouter(t, memory.NewProductRepository(), &stubPublisher{})

	rec, resp := doRequest(t, router, http.MethodPost, "/products/new",
		`{"name":"","price":-1}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, inventory.CodeFailure, resp.Code)
}

func TestUpdateRequiresID(t *testing.T) {
	router := newTestRouter(t, memory.NewProductRepository(), &stubPublisher{})

	rec, resp := doRequest(t, router, http.MethodPut, "/products/update",
		`{"name":"keyboard","price":49.9,"quantity":12}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, inventory.CodeFailure, resp.Code)
}

func TestUpdatePriceMissingProduct(t *testing.T) {
	router := newTestRouter(t, memory.NewProductRepository(), &stubPublisher{})

	rec, resp := doRequest(t, router, http.MethodPut, "/products/update-price/ghost/10.5", "")

	require.Equal(t, http.StatusExpectationFailed, rec.Code)
	require.Equal(t, inventory.CodeFailure, resp.Code)
	require.Equal(t, "No Product found with the ID", resp.Message)
}

func TestUpdatePriceSuccess(t *testing.T) {
	repo := memory.NewProductRepository()
	seedProduct(t, repo, "p-1", 5)
	router := newTestRouter(t, repo, &stubPublisher{})

	rec, resp := doRequest(t, router, http.MethodPut, "/products/update-price/p-1/99.5", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, inventory.CodeSuccess, resp.Code)

	stored, err := repo.FindByID(context.Background(), "p-1")
	require.NoError(t, err)
	require.Equal(t, 99.5, stored.Price)
}

func TestUpdatePriceRejectsGarbage(t *testing.T) {
	router := newTestRouter(t, memory.NewProductRepository(), &stubPublisher{})

	rec, _ := doRequest(t, router, http.MethodPut, "/products/update-price/p-1/not-a-number", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateQuantityDecrements(t *testing.T) {
	repo := memory.NewProductRepository()
	seedProduct(t, repo, "p-1", 10)
	router := newTestRouter(t, repo, &stubPublisher{})

	rec, resp := doRequest(t, router, http.MethodPut, "/products/update-quantity/p-1/3", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, inventory.CodeSuccess, resp.Code)

	stored, err := repo.FindByID(context.Background(), "p-1")
	require.NoError(t, err)
	require.Equal(t, 7, stored.Quantity)
}

func TestUpdateQuantityInsufficientStockIsConflict(t *testing.T) {
	repo := memory.NewProductRepository()
	seedProduct(t, repo, "p-1", 3)
	router := newTestRouter(t, repo, &stubPublisher{})

	rec, resp := doRequest(t, router, http.MethodPut, "/products/update-quantity/p-1/3", "")

	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, inventory.CodeFailure, resp.Code)
	require.Equal(t, domain.ErrInsufficientStock.Error(), resp.Message)
}

func TestUpdateQuantityRejectsNonPositive(t *testing.T) {
	router := newTestRouter(t, memory.NewProductRepository(), &stubPublisher{})

	rec, _ := doRequest(t, router, http.MethodPut, "/products/update-quantity/p-1/0", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPlaceOrderPublishes(t *testing.T) {
	publisher := &stubPublisher{}
	router := newTestRouter(t, memory.NewProductRepository(), publisher)

	rec, resp := doRequest(t, router, http.MethodPost, "/products/place-order",
		`{"items":[{"product_id":"p-1","name":"keyboard","price":49.9,"quantity":2}],"total":99.8,"customer_name":"Ivan"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, inventory.CodeSuccess, resp.Code)
	require.Equal(t, "Order sent successfully", resp.Message)
	require.Len(t, publisher.orders, 1)
	require.NotEmpty(t, publisher.orders[0].ID)
}

func TestPlaceOrderPublishFailure(t *testing.T) {
	publisher := &stubPublisher{err: errors.New("broker unavailable")}
	router := newTestRouter(t, memory.NewProductRepository(), publisher)

	rec, resp := doRequest(t, router, http.MethodPost, "/products/place-order",
		`{"items":[{"product_id":"p-1","name":"keyboard","price":49.9,"quantity":2}],"total":99.8}`)

	require.Equal(t, http.StatusExpectationFailed, rec.Code)
	require.Equal(t, inventory.CodeFailure, resp.Code)
}

func TestPlaceOrderRejectsEmptyItems(t *testing.T) {
	router := newTestRouter(t, memory.NewProductRepository(), &stubPublisher{})

	rec, resp := doRequest(t, router, http.MethodPost, "/products/place-order", `{"items":[],"total":0}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, inventory.CodeFailure, resp.Code)
}

package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/vladislavdragonenkov/inventory/internal/domain"
	"github.com/vladislavdragonenkov/inventory/internal/service/inventory"
	"github.com/vladislavdragonenkov/inventory/internal/storage/memory"
	"github.com/vladislavdragonenkov/inventory/internal/transport/rest"
)

type capturingPublisher struct {
	mu     sync.Mutex
	orders []domain.Order
}

func (p *capturingPublisher) Publish(order domain.Order) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.orders = append(p.orders, order)
	return nil
}

func (p *capturingPublisher) published() []domain.Order {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.Order(nil), p.orders...)
}

// ProductLifecycleTestSuite тестирует полный жизненный цикл товара
// через HTTP-поверхность: создание, выборки, цена, списание, заказ.
type ProductLifecycleTestSuite struct {
	suite.Suite
	repo      domain.ProductRepository
	publisher *capturingPublisher
	server    *httptest.Server
}

func (s *ProductLifecycleTestSuite) SetupTest() {
	baseLogger := log.New()
	baseLogger.SetLevel(log.WarnLevel) // Уменьшаем шум в тестах
	logger := baseLogger.WithField("component", "integration-test")

	s.repo = memory.NewProductRepository()
	s.publisher = &capturingPublisher{}

	svc := inventory.NewService(s.repo, s.publisher, nil, logger)
	router := rest.NewRouter(rest.NewHandler(svc, logger), nil)
	s.server = httptest.NewServer(router)
}

func (s *ProductLifecycleTestSuite) TearDownTest() {
	s.server.Close()
}

type envelope struct {
	Code       string          `json:"code"`
	HTTPStatus int             `json:"http_status"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
}

func (s *ProductLifecycleTestSuite) call(method, path, body string) (int, envelope) {
	req, err := http.NewRequest(method, s.server.URL+path, strings.NewReader(body))
	require.NoError(s.T(), err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.server.Client().Do(req)
	require.NoError(s.T(), err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(s.T(), json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func (s *ProductLifecycleTestSuite) createProduct(id string, qty int) {
	body := fmt.Sprintf(`{"id":%q,"name":"product %s","price":10.5,"quantity":%d}`, id, id, qty)
	status, env := s.call(http.MethodPost, "/products/new", body)
	require.Equal(s.T(), http.StatusOK, status)
	require.Equal(s.T(), inventory.CodeSuccess, env.Code)
}

func (s *ProductLifecycleTestSuite) TestFullLifecycle() {
	s.createProduct("lamp", 10)

	// Выборки видят созданный товар.
	status, env := s.call(http.MethodGet, "/products/all", "")
	s.Require().Equal(http.StatusOK, status)
	s.Require().Equal(inventory.CodeSuccess, env.Code)

	status, env = s.call(http.MethodGet, "/products/available", "")
	s.Require().Equal(http.StatusOK, status)
	s.Require().Equal(inventory.CodeSuccess, env.Code)

	// Смена цены отражается в хранилище.
	status, env = s.call(http.MethodPut, "/products/update-price/lamp/20.0", "")
	s.Require().Equal(http.StatusOK, status)
	s.Require().Equal(inventory.CodeSuccess, env.Code)

	stored, err := s.repo.FindByID(context.Background(), "lamp")
	s.Require().NoError(err)
	s.Require().Equal(20.0, stored.Price)

	// Списание уменьшает остаток.
	status, env = s.call(http.MethodPut, "/products/update-quantity/lamp/4", "")
	s.Require().Equal(http.StatusOK, status)
	s.Require().Equal(inventory.CodeSuccess, env.Code)

	stored, err = s.repo.FindByID(context.Background(), "lamp")
	s.Require().NoError(err)
	s.Require().Equal(6, stored.Quantity)

	// Заказ уходит издателю.
	orderBody := `{"items":[{"product_id":"lamp","name":"lamp","price":20.0,"quantity":2}],"total":40.0,"customer_name":"Ivan"}`
	status, env = s.call(http.MethodPost, "/products/place-order", orderBody)
	s.Require().Equal(http.StatusOK, status)
	s.Require().Equal(inventory.CodeSuccess, env.Code)
	s.Require().Len(s.publisher.published(), 1)
}

func (s *ProductLifecycleTestSuite) TestAvailableFiltersSoldOut() {
	s.createProduct("in-stock", 5)
	s.createProduct("sold-out", 0)

	status, env := s.call(http.MethodGet, "/products/available", "")
	s.Require().Equal(http.StatusOK, status)
	s.Require().Equal(inventory.CodeSuccess, env.Code)

	var items []domain.Product
	s.Require().NoError(json.Unmarshal(env.Data, &items))
	s.Require().Len(items, 1)
	s.Require().Equal("in-stock", items[0].ID)
}

func (s *ProductLifecycleTestSuite) TestDecrementNeverOversells() {
	s.createProduct("scarce", 11)

	const workers = 30
	var wg sync.WaitGroup
	results := make(chan int, workers)

	url := s.server.URL + "/products/update-quantity/scarce/1"
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req, err := http.NewRequest(http.MethodPut, url, nil)
			if err != nil {
				results <- 0
				return
			}
			resp, err := s.server.Client().Do(req)
			if err != nil {
				results <- 0
				return
			}
			resp.Body.Close()
			results <- resp.StatusCode
		}()
	}
	wg.Wait()
	close(results)

	granted := 0
	for status := range results {
		if status == http.StatusOK {
			granted++
		} else {
			s.Require().Equal(http.StatusConflict, status)
		}
	}

	// Остаток 11 позволяет выдать ровно 10 единиц: списание в ноль запрещено.
	s.Require().Equal(10, granted)

	stored, err := s.repo.FindByID(context.Background(), "scarce")
	s.Require().NoError(err)
	s.Require().Equal(1, stored.Quantity)
}

func (s *ProductLifecycleTestSuite) TestOrderForUnknownProductStillPublishes() {
	// Сервис не проверяет остатки при заказе: проверка — на стороне консьюмера.
	orderBody := `{"items":[{"product_id":"ghost","name":"ghost","price":1.0,"quantity":1}],"total":1.0}`
	status, env := s.call(http.MethodPost, "/products/place-order", orderBody)
	s.Require().Equal(http.StatusOK, status)
	s.Require().Equal(inventory.CodeSuccess, env.Code)
	s.Require().Len(s.publisher.published(), 1)
}

func TestProductLifecycleTestSuite(t *testing.T) {
	suite.Run(t, new(ProductLifecycleTestSuite))
}

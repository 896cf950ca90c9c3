package services_test

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"parfum/internal/models"
	"parfum/internal/services"
	"parfum/pkg/sheets"
)

// MockOrderGateway is a mock implementation of services.OrderGateway.
type MockOrderGateway struct {
	mock.Mock
}

func (m *MockOrderGateway) PlaceOrder(ctx context.Context, info models.CustomerInfo, items []models.OrderLine, totalPrice float64) (string, error) {
	args := m.Called(ctx, info, items, totalPrice)
	return args.String(0), args.Error(1)
}

func (m *MockOrderGateway) RequestStock(ctx context.Context, req models.StockRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

// MockOrderRepository is a mock implementation of repositories.OrderRepository.
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) GetAll() ([]models.Order, error) {
	args := m.Called()
	return args.Get(0).([]models.Order), args.Error(1)
}

func (m *MockOrderRepository) GetByID(id string) (*models.Order, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderRepository) Create(order *models.Order) error {
	args := m.Called(order)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of services.EventPublisher.
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(exchange, routingKey string, body []byte) error {
	args := m.Called(exchange, routingKey, body)
	return args.Error(0)
}

var validCustomer = models.CustomerInfo{
	Name:    "Ada Lovelace",
	Email:   "ada@example.com",
	Phone:   "555-0100",
	Address: "1 Analytical Engine Way",
}

func cartWith(items ...models.CartItem) []models.CartItem { return items }

func lineA(qty int) models.CartItem {
	return models.CartItem{
		Product:  models.Product{ID: "1", Name: "Chanel No. 5", Price: 150, InStock: true},
		Quantity: qty,
	}
}

func lineB(qty int) models.CartItem {
	return models.CartItem{
		Product:  models.Product{ID: "2", Name: "Dior Sauvage", Price: 120, InStock: true},
		Quantity: qty,
	}
}

func TestSubmitOrder_Success(t *testing.T) {
	gateway := new(MockOrderGateway)
	archive := new(MockOrderRepository)
	events := new(MockEventPublisher)
	service := services.NewOrderService(gateway, archive, events)

	gateway.On("PlaceOrder", mock.Anything, validCustomer, mock.MatchedBy(func(lines []models.OrderLine) bool {
		return len(lines) == 2 && lines[0].ProductID == "1" && lines[0].Quantity == 2
	}), 420.0).Return("ORD-ABC123", nil).Once()

	archive.On("Create", mock.MatchedBy(func(order *models.Order) bool {
		var lines []models.OrderLine
		if err := json.Unmarshal([]byte(order.ItemsJSON), &lines); err != nil {
			return false
		}
		return order.ID == "ORD-ABC123" &&
			order.Status == "acknowledged" &&
			order.TotalPrice == 420.0 &&
			len(lines) == 2
	})).Return(nil).Once()

	events.On("Publish", "order", "order.placed", mock.Anything).Return(nil).Once()

	orderID, err := service.SubmitOrder(context.Background(), "sess-1", validCustomer, cartWith(lineA(2), lineB(1)))

	require.NoError(t, err)
	assert.Equal(t, "ORD-ABC123", orderID)
	gateway.AssertExpectations(t)
	archive.AssertExpectations(t)
	events.AssertExpectations(t)
}

func TestSubmitOrder_ValidationFailuresNeverReachTheNetwork(t *testing.T) {
	cases := []struct {
		name  string
		info  models.CustomerInfo
		items []models.CartItem
		field string
	}{
		{"empty email", models.CustomerInfo{Name: "Ada", Phone: "555", Address: "x"}, cartWith(lineA(1)), "email"},
		{"email without at sign", models.CustomerInfo{Name: "Ada", Email: "nope", Phone: "555", Address: "x"}, cartWith(lineA(1)), "email"},
		{"empty name", models.CustomerInfo{Email: "a@b", Phone: "555", Address: "x"}, cartWith(lineA(1)), "name"},
		{"empty phone", models.CustomerInfo{Name: "Ada", Email: "a@b", Address: "x"}, cartWith(lineA(1)), "phone"},
		{"empty address", models.CustomerInfo{Name: "Ada", Email: "a@b", Phone: "555"}, cartWith(lineA(1)), "address"},
		{"empty cart", validCustomer, nil, "cart"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gateway := new(MockOrderGateway)
			service := services.NewOrderService(gateway, nil, nil)

			_, err := service.SubmitOrder(context.Background(), "sess-1", tc.info, tc.items)

			var verr *services.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
			gateway.AssertNotCalled(t, "PlaceOrder", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestSubmitOrder_BackendErrorPropagatesUnchanged(t *testing.T) {
	gateway := new(MockOrderGateway)
	service := services.NewOrderService(gateway, nil, nil)

	gateway.On("PlaceOrder", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("", &sheets.BackendError{Message: "rate limited"}).Once()

	_, err := service.SubmitOrder(context.Background(), "sess-1", validCustomer, cartWith(lineA(1)))

	var berr *sheets.BackendError
	require.ErrorAs(t, err, &berr)
	assert.Equal(t, "rate limited", berr.Message)
}

func TestSubmitOrder_ArchiveAndPublishFailuresAreNotOrderFailures(t *testing.T) {
	gateway := new(MockOrderGateway)
	archive := new(MockOrderRepository)
	events := new(MockEventPublisher)
	service := services.NewOrderService(gateway, archive, events)

	gateway.On("PlaceOrder", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("ORD-XYZ", nil).Once()
	archive.On("Create", mock.Anything).Return(fmt.Errorf("disk full")).Once()
	events.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(fmt.Errorf("broker down")).Once()

	orderID, err := service.SubmitOrder(context.Background(), "sess-1", validCustomer, cartWith(lineA(1)))

	require.NoError(t, err, "the backend already accepted the order")
	assert.Equal(t, "ORD-XYZ", orderID)
}

func TestSubmitOrder_RejectsConcurrentSubmitForSameSession(t *testing.T) {
	gateway := new(MockOrderGateway)
	service := services.NewOrderService(gateway, nil, nil)

	started := make(chan struct{})
	release := make(chan struct{})
	gateway.On("PlaceOrder", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			close(started)
			<-release
		}).
		Return("ORD-FIRST", nil).Once()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		orderID, err := service.SubmitOrder(context.Background(), "sess-1", validCustomer, cartWith(lineA(1)))
		assert.NoError(t, err)
		assert.Equal(t, "ORD-FIRST", orderID)
	}()

	<-started
	_, err := service.SubmitOrder(context.Background(), "sess-1", validCustomer, cartWith(lineA(1)))
	assert.ErrorIs(t, err, services.ErrSubmissionInFlight)

	close(release)
	wg.Wait()

	// Once the first submission resolves, the session may submit again.
	gateway.On("PlaceOrder", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("ORD-SECOND", nil).Once()
	orderID, err := service.SubmitOrder(context.Background(), "sess-1", validCustomer, cartWith(lineA(1)))
	require.NoError(t, err)
	assert.Equal(t, "ORD-SECOND", orderID)
}

func TestSubmitOrder_DistinctSessionsSubmitIndependently(t *testing.T) {
	gateway := new(MockOrderGateway)
	service := services.NewOrderService(gateway, nil, nil)

	started := make(chan struct{})
	release := make(chan struct{})
	gateway.On("PlaceOrder", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			close(started)
			<-release
		}).
		Return("ORD-A", nil).Once()
	gateway.On("PlaceOrder", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("ORD-B", nil).Once()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := service.SubmitOrder(context.Background(), "sess-a", validCustomer, cartWith(lineA(1)))
		assert.NoError(t, err)
	}()

	<-started
	orderID, err := service.SubmitOrder(context.Background(), "sess-b", validCustomer, cartWith(lineB(1)))
	require.NoError(t, err)
	assert.Equal(t, "ORD-B", orderID)

	close(release)
	wg.Wait()
}

func TestRequestStock_SendsRequestWithTimestamp(t *testing.T) {
	gateway := new(MockOrderGateway)
	service := services.NewOrderService(gateway, nil, nil)

	gateway.On("RequestStock", mock.Anything, mock.MatchedBy(func(req models.StockRequest) bool {
		return req.ProductID == "3" &&
			req.ProductName == "Tom Ford Black Orchid" &&
			time.Since(req.Timestamp) < time.Minute
	})).Return(nil).Once()

	err := service.RequestStock(context.Background(), "3", "Tom Ford Black Orchid")

	require.NoError(t, err)
	gateway.AssertExpectations(t)
}

func TestRequestStock_ValidatesIdentifyingFields(t *testing.T) {
	gateway := new(MockOrderGateway)
	service := services.NewOrderService(gateway, nil, nil)

	var verr *services.ValidationError
	require.ErrorAs(t, service.RequestStock(context.Background(), "", "Name"), &verr)
	require.ErrorAs(t, service.RequestStock(context.Background(), "3", "  "), &verr)
	gateway.AssertNotCalled(t, "RequestStock", mock.Anything, mock.Anything)
}

func TestRequestStock_BackendFailureCarriesMessage(t *testing.T) {
	gateway := new(MockOrderGateway)
	service := services.NewOrderService(gateway, nil, nil)

	gateway.On("RequestStock", mock.Anything, mock.Anything).
		Return(&sheets.BackendError{Message: "rate limited"}).Once()

	err := service.RequestStock(context.Background(), "3", "Tom Ford Black Orchid")

	var berr *sheets.BackendError
	require.ErrorAs(t, err, &berr)
	assert.Equal(t, "rate limited", berr.Message)
}

func TestGetOrders_DelegatesToArchive(t *testing.T) {
	archive := new(MockOrderRepository)
	service := services.NewOrderService(new(MockOrderGateway), archive, nil)

	archived := []models.Order{{ID: "ORD-1", Status: "acknowledged"}}
	archive.On("GetAll").Return(archived, nil).Once()
	archive.On("GetByID", "ORD-1").Return(&archived[0], nil).Once()
	archive.On("GetByID", "missing").Return(nil, fmt.Errorf("order with ID missing not found")).Once()

	orders, err := service.GetAllOrders()
	require.NoError(t, err)
	assert.Equal(t, archived, orders)

	order, err := service.GetOrderByID("ORD-1")
	require.NoError(t, err)
	assert.Equal(t, "ORD-1", order.ID)

	_, err = service.GetOrderByID("missing")
	assert.ErrorContains(t, err, "not found")
}

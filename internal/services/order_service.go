package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"parfum/internal/models"
	"parfum/internal/repositories"
)

// ErrSubmissionInFlight is returned when a session tries to submit a
// second order while one is still being processed.
var ErrSubmissionInFlight = errors.New("an order submission is already in progress")

// ValidationError is a locally detected input problem. It never causes
// a network call and the caller's state is left untouched.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

// OrderGateway is the slice of the sheets client the order pipeline needs.
type OrderGateway interface {
	PlaceOrder(ctx context.Context, info models.CustomerInfo, items []models.OrderLine, totalPrice float64) (string, error)
	RequestStock(ctx context.Context, req models.StockRequest) error
}

// EventPublisher publishes shop events to the message broker.
type EventPublisher interface {
	Publish(exchange, routingKey string, body []byte) error
}

// OrderService runs the order submission pipeline: validate, serialize,
// one outbound write, interpret the result. At most one submission is in
// flight per session; a concurrent second submit is rejected before any
// validation or network work.
type OrderService struct {
	gateway  OrderGateway
	archive  repositories.OrderRepository
	events   EventPublisher
	validate *validator.Validate

	mu       sync.Mutex
	inFlight map[string]bool
}

// NewOrderService creates a new OrderService. events may be nil, in which
// case no order events are published.
func NewOrderService(gateway OrderGateway, archive repositories.OrderRepository, events EventPublisher) *OrderService {
	validate := validator.New()
	// The sheet only needs something that looks like an email.
	_ = validate.RegisterValidation("emailish", func(fl validator.FieldLevel) bool {
		return strings.Contains(fl.Field().String(), "@")
	})

	return &OrderService{
		gateway:  gateway,
		archive:  archive,
		events:   events,
		validate: validate,
		inFlight: make(map[string]bool),
	}
}

// GetAllOrders lists the locally archived orders.
func (s *OrderService) GetAllOrders() ([]models.Order, error) {
	if s.archive == nil {
		return []models.Order{}, nil
	}
	return s.archive.GetAll()
}

// GetOrderByID retrieves a single archived order.
func (s *OrderService) GetOrderByID(id string) (*models.Order, error) {
	if s.archive == nil {
		return nil, fmt.Errorf("order with ID %s not found", id)
	}
	return s.archive.GetByID(id)
}

// SubmitOrder validates the customer info and cart, then performs a single
// write to the order backend. On success the returned id is the backend's
// acknowledgement and the caller must clear the session's cart; on failure
// the cart and form state are untouched so the user can retry.
func (s *OrderService) SubmitOrder(ctx context.Context, sessionID string, info models.CustomerInfo, items []models.CartItem) (string, error) {
	if err := s.acquire(sessionID); err != nil {
		return "", err
	}
	defer s.release(sessionID)

	if err := s.validateCustomer(info); err != nil {
		return "", err
	}
	if len(items) == 0 {
		return "", &ValidationError{Field: "cart", Message: "is empty"}
	}

	// Serialize the lines and recompute the total here rather than trust
	// whatever the cart reported.
	lines := make([]models.OrderLine, 0, len(items))
	var totalPrice float64
	for _, item := range items {
		lines = append(lines, models.OrderLine{
			ProductID:   item.Product.ID,
			ProductName: item.Product.Name,
			UnitPrice:   item.Product.Price,
			Quantity:    item.Quantity,
		})
		totalPrice += item.Product.Price * float64(item.Quantity)
	}

	orderID, err := s.gateway.PlaceOrder(ctx, info, lines, totalPrice)
	if err != nil {
		return "", err
	}

	s.archiveOrder(orderID, info, lines, totalPrice)
	s.publishOrderPlaced(orderID, totalPrice)

	return orderID, nil
}

// RequestStock sends a single restock request for an out-of-stock product.
// Fire-and-forget: nothing is stored locally and there is no retry.
func (s *OrderService) RequestStock(ctx context.Context, productID, productName string) error {
	if strings.TrimSpace(productID) == "" {
		return &ValidationError{Field: "product id", Message: "is required"}
	}
	if strings.TrimSpace(productName) == "" {
		return &ValidationError{Field: "product name", Message: "is required"}
	}

	return s.gateway.RequestStock(ctx, models.StockRequest{
		ProductID:   productID,
		ProductName: productName,
		Timestamp:   time.Now(),
	})
}

// acquire marks a session's submission as in flight.
func (s *OrderService) acquire(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight[sessionID] {
		return ErrSubmissionInFlight
	}
	s.inFlight[sessionID] = true
	return nil
}

func (s *OrderService) release(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, sessionID)
}

func (s *OrderService) validateCustomer(info models.CustomerInfo) error {
	err := s.validate.Struct(info)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		msg := "is invalid"
		switch fe.Tag() {
		case "required":
			msg = "is required"
		case "emailish":
			msg = "must be a valid email address"
		}
		return &ValidationError{Field: strings.ToLower(fe.Field()), Message: msg}
	}
	return &ValidationError{Field: "customer info", Message: "is invalid"}
}

// archiveOrder records the acknowledged order locally. Best effort: the
// backend already accepted the order, so a failed archive write is only
// logged, never surfaced as an order failure.
func (s *OrderService) archiveOrder(orderID string, info models.CustomerInfo, lines []models.OrderLine, totalPrice float64) {
	if s.archive == nil {
		return
	}

	itemsJSON, err := json.Marshal(lines)
	if err != nil {
		log.Printf("Warning: failed to serialize items for order %s archive: %v", orderID, err)
		return
	}

	order := &models.Order{
		ID:              orderID,
		CustomerName:    info.Name,
		CustomerEmail:   info.Email,
		CustomerPhone:   info.Phone,
		CustomerAddress: info.Address,
		ItemsJSON:       string(itemsJSON),
		TotalPrice:      totalPrice,
		Status:          "acknowledged",
		CreatedAt:       time.Now(),
	}
	if err := s.archive.Create(order); err != nil {
		log.Printf("Warning: failed to archive order %s: %v", orderID, err)
	}
}

// publishOrderPlaced emits an order.placed event for downstream consumers
// (notifications, fulfillment). Best effort, same as the archive write.
func (s *OrderService) publishOrderPlaced(orderID string, totalPrice float64) {
	if s.events == nil {
		return
	}

	body, err := json.Marshal(map[string]interface{}{
		"orderId":  orderID,
		"total":    totalPrice,
		"placedAt": time.Now().Format(time.RFC3339),
	})
	if err != nil {
		log.Printf("Warning: failed to marshal order.placed event for %s: %v", orderID, err)
		return
	}

	if err := s.events.Publish("order", "order.placed", body); err != nil {
		log.Printf("Warning: failed to publish order.placed event for %s: %v", orderID, err)
	} else {
		log.Printf("Published order.placed event for order %s", orderID)
	}
}

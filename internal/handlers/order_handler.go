package handlers

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	"parfum/internal/cart"
	"parfum/internal/middleware"
	"parfum/internal/models"
	"parfum/internal/services"
	"parfum/pkg/sheets"
)

// OrderHandler handles checkout, stock requests, and the order archive.
type OrderHandler struct {
	service *services.OrderService
	carts   *cart.Manager
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService, carts *cart.Manager) *OrderHandler {
	return &OrderHandler{
		service: service,
		carts:   carts,
	}
}

// RegisterRoutes registers the order routes with the Fiber app.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/checkout", h.HandleCheckout)
	router.Post("/stock-requests", h.HandleStockRequest)

	orderRoutes := router.Group("/orders")
	orderRoutes.Get("/", h.HandleGetOrders)
	orderRoutes.Get("/:id", h.HandleGetOrderByID)
}

// HandleCheckout submits the session's cart as an order. A successful
// submission ends the cart session: the cart is dropped and the next
// request starts an empty one. On any failure the cart is left untouched
// so the shopper can fix the form and retry.
func (h *OrderHandler) HandleCheckout(c *fiber.Ctx) error {
	var info models.CustomerInfo
	if err := c.BodyParser(&info); err != nil {
		log.Printf("Error parsing checkout body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	sessionID := middleware.SessionID(c)
	store := h.carts.Get(sessionID)

	orderID, err := h.service.SubmitOrder(c.Context(), sessionID, info, store.Items())
	if err != nil {
		return h.submissionError(c, "checkout", err)
	}

	h.carts.Drop(sessionID)
	return c.JSON(fiber.Map{
		"order_id": orderID,
		"message":  "Order submitted successfully! We will contact you soon for payment and shipping details.",
	})
}

// HandleStockRequest forwards a restock request for an out-of-stock
// product to the backend.
func (h *OrderHandler) HandleStockRequest(c *fiber.Ctx) error {
	var body struct {
		ProductID   string `json:"product_id"`
		ProductName string `json:"product_name"`
	}
	if err := c.BodyParser(&body); err != nil {
		log.Printf("Error parsing stock-request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.service.RequestStock(c.Context(), body.ProductID, body.ProductName); err != nil {
		return h.submissionError(c, "stock request", err)
	}

	return c.JSON(fiber.Map{
		"message": "Stock request submitted successfully! We will notify you when the item is back in stock.",
	})
}

// HandleGetOrders lists locally archived orders.
func (h *OrderHandler) HandleGetOrders(c *fiber.Ctx) error {
	orders, err := h.service.GetAllOrders()
	if err != nil {
		log.Printf("Error getting archived orders: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve orders",
			"error":   err.Error(),
		})
	}
	return c.JSON(orders)
}

// HandleGetOrderByID retrieves a single archived order by its ID.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	orderID := c.Params("id")
	order, err := h.service.GetOrderByID(orderID)
	if err != nil {
		log.Printf("Error getting order by ID %s: %v", orderID, err)
		if strings.Contains(err.Error(), "not found") {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": fmt.Sprintf("Order with ID %s not found", orderID),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve order",
			"error":   err.Error(),
		})
	}
	return c.JSON(order)
}

// submissionError maps pipeline error kinds to HTTP statuses: validation
// problems are the shopper's to fix, a re-entrant submit is a conflict,
// and anything that involved the backend is a bad gateway.
func (h *OrderHandler) submissionError(c *fiber.Ctx, op string, err error) error {
	var verr *services.ValidationError
	if errors.As(err, &verr) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": fmt.Sprintf("Invalid %s: %s", op, verr.Error()),
		})
	}
	if errors.Is(err, services.ErrSubmissionInFlight) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": "An order submission is already in progress for this session.",
		})
	}

	log.Printf("Error submitting %s: %v", op, err)

	var berr *sheets.BackendError
	if errors.As(err, &berr) {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"message": berr.Message,
		})
	}

	var nerr *sheets.NetworkError
	var merr *sheets.MalformedResponseError
	if errors.As(err, &nerr) || errors.As(err, &merr) {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"message": fmt.Sprintf("Failed to submit %s. Please try again.", op),
		})
	}

	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": fmt.Sprintf("Could not submit %s", op),
		"error":   err.Error(),
	})
}

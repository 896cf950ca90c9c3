package handlers

import (
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"

	"parfum/internal/cart"
	"parfum/internal/middleware"
	"parfum/internal/services"
)

// CartHandler handles HTTP requests for the session's shopping cart.
type CartHandler struct {
	carts   *cart.Manager
	catalog *services.CatalogService
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(carts *cart.Manager, catalog *services.CatalogService) *CartHandler {
	return &CartHandler{
		carts:   carts,
		catalog: catalog,
	}
}

// RegisterRoutes registers the cart routes with the Fiber app.
func (h *CartHandler) RegisterRoutes(router fiber.Router) {
	cartRoutes := router.Group("/cart")
	cartRoutes.Get("/", h.HandleGetCart)
	cartRoutes.Delete("/", h.HandleClearCart)
	cartRoutes.Post("/items", h.HandleAddItem)
	cartRoutes.Put("/items/:id", h.HandleUpdateQuantity)
	cartRoutes.Delete("/items/:id", h.HandleRemoveItem)
}

// cartView is the response body for every cart mutation, so the client
// always sees the resulting lines and the freshly computed total.
func cartView(store *cart.Store) fiber.Map {
	return fiber.Map{
		"items":       store.Items(),
		"total_price": store.TotalPrice(),
	}
}

func (h *CartHandler) store(c *fiber.Ctx) *cart.Store {
	return h.carts.Get(middleware.SessionID(c))
}

// HandleGetCart returns the session's cart lines and total.
func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	return c.JSON(cartView(h.store(c)))
}

// HandleAddItem adds one unit of a product to the cart. Adding a product
// already in the cart increments its line instead of duplicating it.
func (h *CartHandler) HandleAddItem(c *fiber.Ctx) error {
	var body struct {
		ProductID string `json:"product_id"`
	}
	if err := c.BodyParser(&body); err != nil {
		log.Printf("Error parsing add-item body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if body.ProductID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "product_id is required.",
		})
	}

	product, ok := h.catalog.Lookup(body.ProductID)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": fmt.Sprintf("Product with ID %s not found in the catalog", body.ProductID),
		})
	}

	store := h.store(c)
	store.Add(product)
	return c.Status(fiber.StatusCreated).JSON(cartView(store))
}

// HandleUpdateQuantity sets a line's quantity. A quantity of zero or less
// removes the line.
func (h *CartHandler) HandleUpdateQuantity(c *fiber.Ctx) error {
	var body struct {
		Quantity int `json:"quantity"`
	}
	if err := c.BodyParser(&body); err != nil {
		log.Printf("Error parsing update-quantity body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	store := h.store(c)
	store.UpdateQuantity(c.Params("id"), body.Quantity)
	return c.JSON(cartView(store))
}

// HandleRemoveItem deletes a line. Removing an absent product is a no-op.
func (h *CartHandler) HandleRemoveItem(c *fiber.Ctx) error {
	store := h.store(c)
	store.Remove(c.Params("id"))
	return c.JSON(cartView(store))
}

// HandleClearCart empties the session's cart.
func (h *CartHandler) HandleClearCart(c *fiber.Ctx) error {
	store := h.store(c)
	store.Clear()
	return c.JSON(cartView(store))
}

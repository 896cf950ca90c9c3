package handlers

import (
	"github.com/gofiber/fiber/v2"

	"parfum/internal/services"
)

// CatalogHandler handles HTTP requests for the product catalog.
type CatalogHandler struct {
	service *services.CatalogService
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(service *services.CatalogService) *CatalogHandler {
	return &CatalogHandler{
		service: service,
	}
}

// RegisterRoutes registers the catalog routes with the Fiber app.
func (h *CatalogHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/products", h.HandleGetProducts)
}

// HandleGetProducts loads the catalog. This always answers 200: when the
// spreadsheet backend is unreachable the sample catalog is served instead,
// so the storefront never shows an empty shelf.
func (h *CatalogHandler) HandleGetProducts(c *fiber.Ctx) error {
	products := h.service.Load(c.Context())
	return c.JSON(products)
}

package services

import (
	"context"
	"log"
	"sync"

	"parfum/internal/models"
)

// CatalogGateway is the slice of the sheets client the catalog needs.
type CatalogGateway interface {
	FetchProducts(ctx context.Context) ([]models.Product, error)
}

// CatalogService loads the product catalog from the spreadsheet backend.
// Load can never fail from the caller's point of view: any fetch or parse
// problem is absorbed and masked by the built-in sample catalog. The last
// loaded snapshot is kept for product lookups by the cart handlers.
type CatalogService struct {
	gateway CatalogGateway

	mu       sync.RWMutex
	snapshot map[string]models.Product
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(gateway CatalogGateway) *CatalogService {
	return &CatalogService{
		gateway:  gateway,
		snapshot: make(map[string]models.Product),
	}
}

// Load fetches the catalog, replacing the snapshot wholesale. One attempt,
// no retry; on any failure the fixed fallback catalog is returned instead
// and the failure never surfaces past this method.
func (s *CatalogService) Load(ctx context.Context) []models.Product {
	products, err := s.gateway.FetchProducts(ctx)
	if err != nil {
		log.Printf("Catalog load failed, serving sample catalog: %v", err)
		products = models.FallbackCatalog()
	}

	snapshot := make(map[string]models.Product, len(products))
	for _, p := range products {
		snapshot[p.ID] = p
	}

	s.mu.Lock()
	s.snapshot = snapshot
	s.mu.Unlock()

	return products
}

// Lookup returns a product from the last loaded snapshot.
func (s *CatalogService) Lookup(id string) (models.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.snapshot[id]
	return p, ok
}

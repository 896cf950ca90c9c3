package cart

import (
	"sync"

	"parfum/internal/models"
)

// Store holds one session's cart in memory. Instances are created per
// session and injected where needed; nothing in the package is global, so
// tests can spin up isolated carts. Quantities are always >= 1: a line
// that would reach zero is removed instead of stored.
type Store struct {
	mu    sync.RWMutex
	items map[string]models.CartItem
	order []string // product ids in insertion order, for stable listings
}

// NewStore creates an empty cart store.
func NewStore() *Store {
	return &Store{
		items: make(map[string]models.CartItem),
	}
}

// Add inserts a new line with quantity one, or increments the existing
// line for the same product id.
func (s *Store) Add(product models.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if item, ok := s.items[product.ID]; ok {
		item.Quantity++
		s.items[product.ID] = item
		return
	}
	s.items[product.ID] = models.CartItem{Product: product, Quantity: 1}
	s.order = append(s.order, product.ID)
}

// Remove deletes the line for the given product id. Removing an absent
// id is a no-op.
func (s *Store) Remove(productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(productID)
}

func (s *Store) removeLocked(productID string) {
	if _, ok := s.items[productID]; !ok {
		return
	}
	delete(s.items, productID)
	for i, id := range s.order {
		if id == productID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// UpdateQuantity sets the quantity for an existing line. A quantity of
// zero or less removes the line.
func (s *Store) UpdateQuantity(productID string, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if quantity <= 0 {
		s.removeLocked(productID)
		return
	}
	item, ok := s.items[productID]
	if !ok {
		return
	}
	item.Quantity = quantity
	s.items[productID] = item
}

// Clear empties the cart. Called after a successful order submission.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[string]models.CartItem)
	s.order = nil
}

// Items returns a snapshot copy of the cart lines in insertion order.
func (s *Store) Items() []models.CartItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.CartItem, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.items[id])
	}
	return out
}

// TotalPrice sums unit price times quantity over all lines. Computed
// fresh on every call so it can never go stale relative to mutations.
func (s *Store) TotalPrice() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total float64
	for _, item := range s.items {
		total += item.Product.Price * float64(item.Quantity)
	}
	return total
}

// Len returns the number of distinct lines in the cart.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

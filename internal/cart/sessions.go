package cart

import (
	"sync"

	"github.com/google/uuid"
)

// Manager maps session ids to their cart stores. Carts live only as long
// as the process; persistence across restarts is an external concern.
type Manager struct {
	mu     sync.RWMutex
	stores map[string]*Store
}

// NewManager creates an empty session registry.
func NewManager() *Manager {
	return &Manager{
		stores: make(map[string]*Store),
	}
}

// NewSessionID issues a fresh session identifier.
func NewSessionID() string {
	return uuid.New().String()
}

// Get returns the cart for a session, creating it on first use.
func (m *Manager) Get(sessionID string) *Store {
	m.mu.RLock()
	store, ok := m.stores[sessionID]
	m.mu.RUnlock()
	if ok {
		return store
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if store, ok := m.stores[sessionID]; ok {
		return store
	}
	store = NewStore()
	m.stores[sessionID] = store
	return store
}

// Drop discards a session's cart entirely.
func (m *Manager) Drop(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.stores, sessionID)
}

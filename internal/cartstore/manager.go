package cartstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/aurelia-atelier/aurelia-backend/internal/durable"
	"github.com/aurelia-atelier/aurelia-backend/pkg/logger"
)

// KeyPrefix namespaces persisted carts in the durable store.
const KeyPrefix = "cart:"

// Key returns the durable store key for a cart session.
func Key(sessionID string) string {
	return KeyPrefix + sessionID
}

// Manager hands out one initialized Store per cart session, creating and
// rehydrating it on first use.
type Manager struct {
	durable durable.Store

	mu     sync.Mutex
	stores map[string]*Store
}

func NewManager(d durable.Store) *Manager {
	return &Manager{
		durable: d,
		stores:  make(map[string]*Store),
	}
}

// Get returns the store for the session, initializing it if needed.
func (m *Manager) Get(ctx context.Context, sessionID string) (*Store, error) {
	m.mu.Lock()
	if st, ok := m.stores[sessionID]; ok {
		m.mu.Unlock()
		return st, nil
	}
	m.mu.Unlock()

	st := New(m.durable, Key(sessionID))
	if err := st.Init(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize cart store: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// Another request may have won the race; keep the first one.
	if existing, ok := m.stores[sessionID]; ok {
		go st.Close()
		return existing, nil
	}
	m.stores[sessionID] = st

	logger.Debug("Cart store opened", map[string]interface{}{
		"session_id": sessionID,
	})
	return st, nil
}

// Close shuts down every open store.
func (m *Manager) Close() {
	m.mu.Lock()
	stores := make([]*Store, 0, len(m.stores))
	for _, st := range m.stores {
		stores = append(stores, st)
	}
	m.stores = make(map[string]*Store)
	m.mu.Unlock()

	for _, st := range stores {
		st.Close()
	}
}

// Package websocket fans cart state out to every connected context of a
// cart session. It is the broadcast channel that keeps multiple tabs of the
// same browser in step: the cart engine itself knows nothing about tabs.
package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/aurelia-atelier/aurelia-backend/internal/cart"
	"github.com/aurelia-atelier/aurelia-backend/internal/cartstore"
	"github.com/aurelia-atelier/aurelia-backend/pkg/logger"
)

// Client is one WebSocket connection belonging to a cart session.
type Client struct {
	Hub       *Hub
	Conn      *Conn
	SessionID string
	Send      chan []byte
}

type sessionUpdate struct {
	SessionID string
	Message   []byte
}

// Hub manages WebSocket connections per cart session and forwards every
// state change of the session's cart store to all of them.
type Hub struct {
	manager *cartstore.Manager

	// Session -> connected clients (multi-tab support).
	clients map[string][]*Client
	// Session -> cancel for the cart store subscription feed.
	feeds map[string]context.CancelFunc

	register   chan *Client
	unregister chan *Client
	broadcast  chan *sessionUpdate

	mu sync.RWMutex
}

func NewHub(manager *cartstore.Manager) *Hub {
	return &Hub{
		manager:    manager,
		clients:    make(map[string][]*Client),
		feeds:      make(map[string]context.CancelFunc),
		register:   make(chan *Client, 256),
		unregister: make(chan *Client, 256),
		broadcast:  make(chan *sessionUpdate, 1024),
	}
}

// Run processes registrations and broadcasts until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return

		case client := <-h.register:
			h.addClient(ctx, client)

		case client := <-h.unregister:
			h.removeClient(client)

		case update := <-h.broadcast:
			h.deliver(update)
		}
	}
}

func (h *Hub) addClient(ctx context.Context, client *Client) {
	h.mu.Lock()
	h.clients[client.SessionID] = append(h.clients[client.SessionID], client)
	first := len(h.clients[client.SessionID]) == 1
	sessions := len(h.clients)
	h.mu.Unlock()

	logger.Info("Cart sync client registered", map[string]interface{}{
		"session_id":     client.SessionID,
		"total_sessions": sessions,
	})

	if first {
		h.startFeed(ctx, client.SessionID)
	}
}

// startFeed subscribes to the session's cart store and forwards every state
// change into the broadcast channel.
func (h *Hub) startFeed(ctx context.Context, sessionID string) {
	store, err := h.manager.Get(ctx, sessionID)
	if err != nil {
		logger.Error("Failed to open cart store for sync feed", err, map[string]interface{}{
			"session_id": sessionID,
		})
		return
	}

	feedCtx, cancel := context.WithCancel(ctx)
	h.mu.Lock()
	h.feeds[sessionID] = cancel
	h.mu.Unlock()

	states := store.Subscribe()
	go func() {
		for {
			select {
			case <-feedCtx.Done():
				return
			case state, ok := <-states:
				if !ok {
					return
				}
				h.pushState(sessionID, state)
			}
		}
	}()
}

func (h *Hub) pushState(sessionID string, state cart.State) {
	message, err := json.Marshal(map[string]interface{}{
		"type": "cart_updated",
		"cart": state,
	})
	if err != nil {
		logger.Error("Failed to marshal cart update", err, nil)
		return
	}

	select {
	case h.broadcast <- &sessionUpdate{SessionID: sessionID, Message: message}:
	default:
		// Dropped updates are tolerable: the next one carries the full state.
		logger.Warn("Cart sync broadcast channel full, update dropped", map[string]interface{}{
			"session_id": sessionID,
		})
	}
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	clientList := h.clients[client.SessionID]
	newList := make([]*Client, 0, len(clientList))
	removed := false
	for _, c := range clientList {
		if c != client {
			newList = append(newList, c)
		} else {
			removed = true
		}
	}
	if len(newList) == 0 {
		delete(h.clients, client.SessionID)
		if cancel, ok := h.feeds[client.SessionID]; ok {
			cancel()
			delete(h.feeds, client.SessionID)
		}
	} else {
		h.clients[client.SessionID] = newList
	}
	h.mu.Unlock()

	if removed {
		close(client.Send)
		logger.Info("Cart sync client unregistered", map[string]interface{}{
			"session_id": client.SessionID,
		})
	}
}

func (h *Hub) deliver(update *sessionUpdate) {
	h.mu.RLock()
	clients := append([]*Client(nil), h.clients[update.SessionID]...)
	h.mu.RUnlock()

	for _, client := range clients {
		select {
		case client.Send <- update.Message:
		default:
			// Send buffer full; drop the connection and let it reconnect.
			go h.Unregister(client)
			logger.Warn("Client send buffer full, disconnecting", map[string]interface{}{
				"session_id": update.SessionID,
			})
		}
	}
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for session, cancel := range h.feeds {
		cancel()
		delete(h.feeds, session)
	}
	for session, clients := range h.clients {
		for _, client := range clients {
			close(client.Send)
		}
		delete(h.clients, session)
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes a client from the hub.
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/aurelia-atelier/aurelia-backend/internal/errors"
	"github.com/aurelia-atelier/aurelia-backend/internal/middleware"
	ws "github.com/aurelia-atelier/aurelia-backend/internal/websocket"
)

// SyncController upgrades cart sync connections. Each browser tab opens one
// and receives the session's full cart state whenever any tab changes it.
type SyncController struct {
	hub      *ws.Hub
	upgrader websocket.Upgrader
}

func NewSyncController(hub *ws.Hub, allowedOrigins []string) *SyncController {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = true
	}

	return &SyncController{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				// Same-host clients send no Origin header.
				if origin == "" {
					return true
				}
				return allowed[origin] || allowed["*"]
			},
		},
	}
}

// Connect handles WebSocket upgrades.
// GET /api/v1/cart/sync
func (ctrl *SyncController) Connect(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	sessionID, ok := middleware.GetCartSession(c)
	if !ok {
		errors.BadRequest(c, errors.CartSessionMissing, "Cart session cookie is required")
		return
	}

	conn, err := ctrl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("Failed to upgrade to WebSocket", err)
		return
	}

	client := &ws.Client{
		Hub:       ctrl.hub,
		Conn:      &ws.Conn{Conn: conn},
		SessionID: sessionID,
		Send:      make(chan []byte, 256),
	}

	ctrl.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()

	log.Info("Cart sync connection established", map[string]interface{}{
		"session_id": sessionID,
	})
}

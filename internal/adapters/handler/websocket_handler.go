package handler

import (
	"net/http"

	"github.com/IANDYI/maternal-dashboard-service/internal/adapters/middleware"
	"github.com/IANDYI/maternal-dashboard-service/internal/adapters/websocket"
	"github.com/rs/zerolog/log"
)

// WebSocketHandler serves the live risk-alert feed
type WebSocketHandler struct {
	hub            *websocket.Hub
	authMiddleware *middleware.AuthMiddleware
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(hub *websocket.Hub, authMiddleware *middleware.AuthMiddleware) *WebSocketHandler {
	return &WebSocketHandler{
		hub:            hub,
		authMiddleware: authMiddleware,
	}
}

// HandleWebSocket handles GET /ws/alerts
// Browsers cannot set headers on a websocket handshake, so the token may also come as ?token=
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	tokenString, ok := middleware.BearerToken(r.Header.Get("Authorization"))
	if !ok {
		tokenString = r.URL.Query().Get("token")
	}
	if tokenString == "" {
		log.Debug().Msg("websocket connection rejected: missing token")
		http.Error(w, "unauthorized: missing token", http.StatusUnauthorized)
		return
	}

	principal, ok := h.authenticate(tokenString)
	if !ok {
		http.Error(w, "unauthorized: invalid token", http.StatusUnauthorized)
		return
	}
	if !principal.IsStaff() {
		log.Warn().Str("user_id", principal.UserID).Str("role", principal.Role).Msg("websocket connection rejected: not staff")
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	conn, err := websocket.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	identity := websocket.Identity{
		UserID: principal.UserID,
		Role:   principal.Role,
		Email:  principal.Email,
		Name:   principal.DisplayName(),
	}
	h.hub.Register(websocket.NewClient(h.hub, conn, identity))
}

func (h *WebSocketHandler) authenticate(tokenString string) (middleware.Principal, bool) {
	if h.authMiddleware == nil {
		return middleware.Principal{}, false
	}

	principal, err := h.authMiddleware.Authenticate(tokenString)
	if err != nil {
		log.Warn().Err(err).Msg("websocket token validation failed")
		return middleware.Principal{}, false
	}
	return principal, true
}

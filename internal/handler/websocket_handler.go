package handler

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	ledgerws "github.com/mrmbilling/royalty-ledger/internal/websocket"
	"github.com/rs/zerolog/log"
)

// JWTValidator validates a JWT and returns the session it grants
type JWTValidator interface {
	ValidateToken(ctx context.Context, token string) (ledgerws.Session, error)
}

// WebSocketHandler handles WebSocket connections
type WebSocketHandler struct {
	hub            *ledgerws.Hub
	validator      JWTValidator
	allowedOrigins map[string]bool
	upgrader       websocket.Upgrader
}

// NewWebSocketHandler creates a new WebSocketHandler
func NewWebSocketHandler(hub *ledgerws.Hub, validator JWTValidator, allowedOrigins []string) *WebSocketHandler {
	originMap := make(map[string]bool)
	for _, origin := range allowedOrigins {
		originMap[origin] = true
	}

	h := &WebSocketHandler{
		hub:            hub,
		validator:      validator,
		allowedOrigins: originMap,
	}

	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}

	return h
}

// checkOrigin validates the request origin against allowed origins
func (h *WebSocketHandler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		// Non-browser clients send no Origin
		return true
	}

	if h.allowedOrigins[origin] {
		return true
	}

	log.Warn().
		Str("origin", origin).
		Msg("WebSocket connection rejected: origin not allowed")
	return false
}

// HandleWS handles WebSocket connection requests at GET /ws.
// ?clientId=MRM-1 subscribes to one client's ledger; without it the socket receives every event.
func (h *WebSocketHandler) HandleWS(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		log.Debug().Msg("WebSocket connection rejected: missing token")
		return echo.NewHTTPError(http.StatusUnauthorized, "missing token")
	}

	session, err := h.validator.ValidateToken(c.Request().Context(), token)
	if err != nil {
		log.Debug().Err(err).Msg("WebSocket connection rejected: invalid token")
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}

	room := c.QueryParam("clientId")
	if room == "" {
		room = ledgerws.AllClientsRoom
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		log.Error().Err(err).Msg("WebSocket upgrade failed")
		return err
	}

	client := ledgerws.NewClient(conn, room, session, h.hub)
	h.hub.Register(client)

	log.Info().
		Str("room", room).
		Str("subject", session.Subject).
		Time("expires_at", session.ExpiresAt).
		Str("connection_id", client.ID()).
		Msg("WebSocket client connected")

	go client.WritePump()
	go client.ReadPump()

	return nil
}

package handler

import (
	"log/slog"
	"net/http"

	"github.com/Relay-py/rulu-arya-and-the-sheep/internal/api/middleware"
	"github.com/Relay-py/rulu-arya-and-the-sheep/internal/services/auth"
	"github.com/Relay-py/rulu-arya-and-the-sheep/internal/ws"
)

// WSHandler upgrades authenticated players onto the game websocket
type WSHandler struct {
	authService *auth.Service
	hub         *ws.Hub
	dispatcher  *ws.Dispatcher
	logger      *slog.Logger
}

// NewWSHandler creates a new websocket handler
func NewWSHandler(authService *auth.Service, hub *ws.Hub, dispatcher *ws.Dispatcher, logger *slog.Logger) *WSHandler {
	return &WSHandler{
		authService: authService,
		hub:         hub,
		dispatcher:  dispatcher,
		logger:      logger,
	}
}

// Connect handles GET /api/v1/ws
func (h *WSHandler) Connect(w http.ResponseWriter, r *http.Request) {
	token := middleware.ExtractToken(r)
	if token == "" {
		WriteError(w, NewUnauthorizedError())
		return
	}

	session, err := h.authService.ValidateSession(token)
	if err != nil {
		WriteError(w, err)
		return
	}

	ws.ServeWS(w, r, h.hub, h.dispatcher, session.PlayerID, h.logger)
}

package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/Relay-py/rulu-arya-and-the-sheep/internal/api/handler"
	"github.com/Relay-py/rulu-arya-and-the-sheep/internal/api/middleware"
	"github.com/Relay-py/rulu-arya-and-the-sheep/internal/services/auth"
	"github.com/Relay-py/rulu-arya-and-the-sheep/internal/services/matchmaking"
	"github.com/Relay-py/rulu-arya-and-the-sheep/internal/ws"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger                *slog.Logger
	AuthService           *auth.Service
	MatchmakingController matchmaking.ControllerInterface
	Hub                   *ws.Hub
	Dispatcher            *ws.Dispatcher
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	playerHandler := handler.NewPlayerHandler(cfg.AuthService)
	queueHandler := handler.NewQueueHandler(cfg.MatchmakingController)
	wsHandler := handler.NewWSHandler(cfg.AuthService, cfg.Hub, cfg.Dispatcher, cfg.Logger)

	authMiddleware := middleware.Auth(cfg.AuthService)
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	// Auth routes (no session required)
	api.HandleFunc("/players/guest", playerHandler.CreateGuest).Methods(http.MethodPost)
	api.HandleFunc("/staff/register", playerHandler.RegisterStaff).Methods(http.MethodPost)
	api.HandleFunc("/staff/login", playerHandler.Login).Methods(http.MethodPost)

	// Protected player routes
	playerProtected := api.PathPrefix("/players").Subrouter()
	playerProtected.Use(authMiddleware)
	playerProtected.HandleFunc("/me", playerHandler.GetMe).Methods(http.MethodGet)

	// Queue status (staff supervision)
	queueProtected := api.PathPrefix("/queue").Subrouter()
	queueProtected.Use(authMiddleware)
	queueProtected.HandleFunc("", queueHandler.Status).Methods(http.MethodGet)

	// The game websocket does its own token check so it can accept the
	// token as a query parameter
	api.HandleFunc("/ws", wsHandler.Connect).Methods(http.MethodGet)

	// Health check endpoint (no auth)
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

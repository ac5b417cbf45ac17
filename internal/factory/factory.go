package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/Relay-py/rulu-arya-and-the-sheep/internal/dependencies/clock"
	"github.com/Relay-py/rulu-arya-and-the-sheep/internal/dependencies/random"
	"github.com/Relay-py/rulu-arya-and-the-sheep/internal/services/auth"
	"github.com/Relay-py/rulu-arya-and-the-sheep/internal/services/generator"
	"github.com/Relay-py/rulu-arya-and-the-sheep/internal/services/matchmaking"
	"github.com/Relay-py/rulu-arya-and-the-sheep/internal/services/phrases"
	"github.com/Relay-py/rulu-arya-and-the-sheep/internal/services/session"
	"github.com/Relay-py/rulu-arya-and-the-sheep/internal/storage"
	"github.com/Relay-py/rulu-arya-and-the-sheep/internal/storage/memory"
	redisstorage "github.com/Relay-py/rulu-arya-and-the-sheep/internal/storage/redis"
	"github.com/Relay-py/rulu-arya-and-the-sheep/internal/ws"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Transport
	Hub        *ws.Hub
	Dispatcher *ws.Dispatcher

	// Services
	AuthService           *auth.Service
	GeneratorService      *generator.Service
	SessionController     *session.Controller
	MatchmakingController *matchmaking.Controller
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// AuthConfig holds configuration for the auth service (optional)
	AuthConfig auth.Config
	// GeneratorConfig holds the text generation bridge settings (optional)
	GeneratorConfig generator.Config
	// SessionConfig holds the session-lifecycle delays (optional)
	SessionConfig session.Config
	// MatchmakingConfig holds the matchmaking delays (optional)
	MatchmakingConfig matchmaking.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	clk := clock.New()
	rnd := random.New()

	authCfg := cfg.AuthConfig
	if authCfg.SessionDuration == 0 {
		authCfg = auth.DefaultConfig()
	}

	generatorCfg := cfg.GeneratorConfig
	if generatorCfg.BaseURL == "" {
		apiKey := generatorCfg.APIKey
		generatorCfg = generator.DefaultConfig()
		generatorCfg.APIKey = apiKey
	}

	// The hub doubles as the engine's event relay, so it is built before
	// the controllers that emit through it
	hub := ws.NewHub(logger)

	generatorService := generator.New(generatorCfg, phrases.NewBank(), rnd, logger)
	sessionController := session.NewController(store, hub, generatorService, clk, rnd, cfg.SessionConfig, logger)
	matchmakingController := matchmaking.NewController(store, sessionController, hub, clk, rnd, cfg.MatchmakingConfig, logger)
	authService := auth.New(store, clk, authCfg)
	dispatcher := ws.NewDispatcher(store, matchmakingController, sessionController, hub, logger)

	return &App{
		Storage:               store,
		Clock:                 clk,
		Random:                rnd,
		Hub:                   hub,
		Dispatcher:            dispatcher,
		AuthService:           authService,
		GeneratorService:      generatorService,
		SessionController:     sessionController,
		MatchmakingController: matchmakingController,
	}, nil
}

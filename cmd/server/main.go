package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/Relay-py/rulu-arya-and-the-sheep/internal/api"
	"github.com/Relay-py/rulu-arya-and-the-sheep/internal/factory"
	"github.com/Relay-py/rulu-arya-and-the-sheep/internal/services/generator"
	"github.com/Relay-py/rulu-arya-and-the-sheep/internal/services/matchmaking"
	"github.com/Relay-py/rulu-arya-and-the-sheep/internal/services/session"
	redisstorage "github.com/Relay-py/rulu-arya-and-the-sheep/internal/storage/redis"
)

type config struct {
	bind           string
	port           int
	storageType    string
	redisURL       string
	openaiAPIKey   string
	openaiBaseURL  string
	openaiModel    string
	searchDelayMin time.Duration
	searchDelayMax time.Duration
	typingDelayMin time.Duration
	typingDelayMax time.Duration
	settleDelay    time.Duration
	verbose        bool
}

func (c *config) validate() error {
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if c.storageType == factory.StorageTypeRedis && c.redisURL == "" {
		return fmt.Errorf("--redis-url is required when --storage is redis")
	}
	if c.searchDelayMax < c.searchDelayMin {
		return fmt.Errorf("--search-delay-max must be >= --search-delay-min")
	}
	if c.typingDelayMax < c.typingDelayMin {
		return fmt.Errorf("--typing-delay-max must be >= --typing-delay-min")
	}
	return nil
}

func newCmd(cfg *config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("SHEEP")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "sheep-server",
		Short:         "Matchmaking and game session server for the waiting-room guessing game.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.bind, "bind", "b", "", "address to bind to (env: SHEEP_BIND)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: SHEEP_PORT)")
	fs.StringVar(&cfg.storageType, "storage", factory.StorageTypeMemory, "storage backend: memory or redis (env: SHEEP_STORAGE)")
	fs.StringVar(&cfg.redisURL, "redis-url", "", "redis connection url (env: SHEEP_REDIS_URL)")
	fs.StringVar(&cfg.openaiAPIKey, "openai-api-key", "", "api key for the reply generator; canned phrases when unset (env: SHEEP_OPENAI_API_KEY)")
	fs.StringVar(&cfg.openaiBaseURL, "openai-base-url", "", "override the generator api base url (env: SHEEP_OPENAI_BASE_URL)")
	fs.StringVar(&cfg.openaiModel, "openai-model", "", "override the generator model (env: SHEEP_OPENAI_MODEL)")
	fs.DurationVar(&cfg.searchDelayMin, "search-delay-min", 2*time.Second, "minimum simulated partner search delay (env: SHEEP_SEARCH_DELAY_MIN)")
	fs.DurationVar(&cfg.searchDelayMax, "search-delay-max", 5*time.Second, "maximum simulated partner search delay (env: SHEEP_SEARCH_DELAY_MAX)")
	fs.DurationVar(&cfg.typingDelayMin, "typing-delay-min", 1*time.Second, "minimum simulated typing delay (env: SHEEP_TYPING_DELAY_MIN)")
	fs.DurationVar(&cfg.typingDelayMax, "typing-delay-max", 3*time.Second, "maximum simulated typing delay (env: SHEEP_TYPING_DELAY_MAX)")
	fs.DurationVar(&cfg.settleDelay, "settle-delay", 4*time.Second, "pause between a resolved guess and the restart signal (env: SHEEP_SETTLE_DELAY)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "debug logging (env: SHEEP_VERBOSE)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})

	return cmd
}

func run(ctx context.Context, cfg *config) error {
	level := slog.LevelInfo
	if cfg.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	generatorCfg := generator.DefaultConfig()
	generatorCfg.APIKey = cfg.openaiAPIKey
	if cfg.openaiBaseURL != "" {
		generatorCfg.BaseURL = cfg.openaiBaseURL
	}
	if cfg.openaiModel != "" {
		generatorCfg.Model = cfg.openaiModel
	}

	factoryCfg := factory.Config{
		Logger:          logger,
		StorageType:     cfg.storageType,
		GeneratorConfig: generatorCfg,
		SessionConfig: session.Config{
			TypingDelayMin: cfg.typingDelayMin,
			TypingDelayMax: cfg.typingDelayMax,
			SettleDelay:    cfg.settleDelay,
		},
		MatchmakingConfig: matchmaking.Config{
			SearchDelayMin: cfg.searchDelayMin,
			SearchDelayMax: cfg.searchDelayMax,
		},
	}

	if cfg.storageType == factory.StorageTypeRedis {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.redisURL
		factoryCfg.RedisConfig = &redisCfg
	}

	app, err := factory.New(factoryCfg)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}

	router := api.NewRouter(api.RouterConfig{
		Logger:                logger,
		AuthService:           app.AuthService,
		MatchmakingController: app.MatchmakingController,
		Hub:                   app.Hub,
		Dispatcher:            app.Dispatcher,
	})

	serverConfig := api.DefaultServerConfig()
	serverConfig.Host = cfg.bind
	serverConfig.Port = cfg.port
	server := api.NewServer(router, serverConfig, logger)

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started", slog.String("addr", server.Addr()))

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		if err := server.Shutdown(context.Background()); err != nil {
			return err
		}
	}

	logger.Info("server stopped")
	return nil
}

func main() {
	// Local development reads settings from a .env file when present
	_ = godotenv.Load()

	cfg := &config{}
	if err := newCmd(cfg).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

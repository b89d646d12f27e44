// Package main is the entry point of the application
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/tecu23/match-server/internal/auth"
	"github.com/tecu23/match-server/pkg/accounts"
	"github.com/tecu23/match-server/pkg/config"
	"github.com/tecu23/match-server/pkg/events"
	"github.com/tecu23/match-server/pkg/game"
	"github.com/tecu23/match-server/pkg/server"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,

	CheckOrigin: func(r *http.Request) bool {
		path := os.Getenv("FRONTEND_PATH")
		if path == "" {
			return true
		}
		return path == r.Header.Get("Origin")
	},
}

// App encapsulates global dependencies
type application struct {
	Auth        *auth.APIKeyAuth
	Tokens      *auth.TokenIssuer // nil when logins are disabled
	Logger      *zap.Logger
	Config      *config.Config
	Publisher   *events.Publisher
	Store       accounts.Store
	Leaderboard *accounts.LeaderboardCache // nil without Redis
	Registry    *game.Registry
	Hub         *server.Hub
	Server      *http.Server

	StartTime time.Time
}

func main() {
	debug := flag.Bool("debug", false, "enable debug logging")
	port := flag.String("port", "8080", "server port")
	flag.Parse()

	// Initialize logger
	logger := initLogger(*debug)
	defer logger.Sync()

	if err := godotenv.Load(); err != nil {
		logger.Info("no .env file, using process environment")
	}

	cfg := config.Load(*port, *debug)

	// Initialize event publisher
	publisher := events.NewPublisher()

	// Account store: Postgres when configured, in-memory otherwise
	var store accounts.Store
	if cfg.DatabaseURL != "" {
		pg, err := accounts.NewPostgresStore(cfg.DatabaseURL, logger)
		if err != nil {
			logger.Fatal("connecting to database", zap.Error(err))
		}
		store = pg
	} else {
		logger.Warn("DATABASE_URL not set, accounts live in memory only")
		store = accounts.NewMemoryStore(logger)
	}

	var tokens *auth.TokenIssuer
	if cfg.JWTSecret != "" {
		tokens = auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	} else {
		logger.Warn("JWT_SECRET not set, logins are disabled and all games are guest games")
	}

	var leaderboard *accounts.LeaderboardCache
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Fatal("parsing REDIS_URL", zap.Error(err))
		}
		rdb := redis.NewClient(opt)
		leaderboard = accounts.NewLeaderboardCache(store, rdb, cfg.LeaderboardTTL, logger)

		// Rating writes make the cached snapshot stale.
		publisher.Subscribe(events.EventRatingApplied, func(events.Event) {
			leaderboard.Invalidate(context.Background())
		})
	}

	trigger := game.NewRatingTrigger(store, publisher, logger)
	registry := game.NewRegistry(cfg.DefaultClockMs, trigger, publisher, logger)
	turns := game.NewTurnController(registry, logger)

	hub := server.NewHub(registry, turns, tokens, publisher, logger)

	app := &application{
		Auth:        auth.NewAPIKeyAuth(cfg.APIKeys),
		Tokens:      tokens,
		Logger:      logger,
		Config:      cfg,
		Publisher:   publisher,
		Store:       store,
		Leaderboard: leaderboard,
		Registry:    registry,
		Hub:         hub,
		StartTime:   time.Now(),
	}

	go app.Hub.Run()

	if err := app.serve(); err != nil {
		logger.Fatal("error serving", zap.Error(err))
	}
}

func initLogger(debug bool) *zap.Logger {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}

	logger, err := cfg.Build()
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	return logger
}

// Shutdown cleans up resources
func (app *application) Shutdown() {
	if app.Hub != nil {
		app.Hub.Shutdown()
	}

	app.Logger.Info("All components shut down successfully")
}

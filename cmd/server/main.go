package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/swirlhq/aio-assistant/internal/api"
	"github.com/swirlhq/aio-assistant/internal/config"
	"github.com/swirlhq/aio-assistant/internal/domain"
	"github.com/swirlhq/aio-assistant/internal/repository/memory"
	"github.com/swirlhq/aio-assistant/internal/repository/mongo"
	"github.com/swirlhq/aio-assistant/internal/repository/redis"
	"github.com/swirlhq/aio-assistant/internal/security"
)

func main() {
	// Load .env file - try multiple locations
	envPaths := []string{".env", "../.env", "../../.env"}
	for _, p := range envPaths {
		if err := godotenv.Load(p); err == nil {
			fmt.Printf("Loaded .env from: %s\n", p)
			break
		}
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	setupLogger(cfg.Logging)

	log.Info().
		Str("host", cfg.Server.Host).
		Int("port", cfg.Server.Port).
		Msg("Starting assistant API server")

	// The store connects lazily on first use; a cold ping here only warns so
	// the server still comes up while the cluster is unreachable.
	mongoClient := mongo.NewClient(cfg.Mongo)
	pingCtx, cancelPing := context.WithTimeout(context.Background(), cfg.Mongo.ConnectTimeout)
	if err := mongoClient.Ping(pingCtx); err != nil {
		log.Warn().Err(err).Msg("MongoDB not reachable at startup, continuing")
	}
	cancelPing()
	defer mongoClient.Close(context.Background())

	sessions, redisClient := buildSessionStore(cfg)
	if redisClient != nil {
		defer redisClient.Close()
	}

	// Initialize router
	router := api.NewRouter(cfg, mongoClient, sessions, redisClient)

	// Create HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Msgf("Server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}

// buildSessionStore prefers the durable encrypted Redis store; without a
// session key or reachable Redis it falls back to the in-memory store, which
// loses sessions on restart.
func buildSessionStore(cfg *config.Config) (domain.SessionStore, *redis.Client) {
	if cfg.Auth.SessionKey == "" {
		log.Warn().Msg("SESSION_ENCRYPTION_KEY not set, using in-memory session store")
		return memory.NewSessionStore(), nil
	}

	encryptor, err := security.NewEncryptorFromBase64(cfg.Auth.SessionKey)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid SESSION_ENCRYPTION_KEY")
	}

	redisClient, err := redis.NewClient(cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("Redis not reachable, using in-memory session store")
		return memory.NewSessionStore(), nil
	}

	return redis.NewSessionStore(redisClient, encryptor), redisClient
}

func setupLogger(cfg config.LoggingConfig) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	var writers []io.Writer
	if os.Getenv("ENV") != "production" {
		writers = append(writers, zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		writers = append(writers, os.Stderr)
	}

	if cfg.File != "" {
		rotator, err := rotatelogs.New(
			cfg.File,
			rotatelogs.WithMaxAge(time.Duration(cfg.MaxAgeDays)*24*time.Hour),
			rotatelogs.WithRotationTime(time.Duration(cfg.RotateHours)*time.Hour),
		)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to open rotated log file, console only")
		} else {
			writers = append(writers, rotator)
		}
	}

	log.Logger = log.Output(zerolog.MultiLevelWriter(writers...))
}

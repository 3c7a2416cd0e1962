package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"

	"github.com/swirlhq/aio-assistant/internal/api/handler"
	custommw "github.com/swirlhq/aio-assistant/internal/api/middleware"
	"github.com/swirlhq/aio-assistant/internal/assistant/gemini"
	"github.com/swirlhq/aio-assistant/internal/auth"
	"github.com/swirlhq/aio-assistant/internal/config"
	"github.com/swirlhq/aio-assistant/internal/domain"
	"github.com/swirlhq/aio-assistant/internal/repository/mongo"
	"github.com/swirlhq/aio-assistant/internal/repository/redis"
	"github.com/swirlhq/aio-assistant/internal/service"
	"github.com/swirlhq/aio-assistant/internal/speech"
	"github.com/swirlhq/aio-assistant/internal/speech/elevenlabs"
)

// NewRouter creates and configures the HTTP router
func NewRouter(cfg *config.Config, mongoClient *mongo.Client, sessions domain.SessionStore, redisClient *redis.Client) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommw.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.Server.MiddlewareTimeout))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", custommw.SessionHeader},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Repositories
	contextRepo := mongo.NewContextRepository(mongoClient)

	// Collaborators: the assistant and speech backends register only when
	// their credentials are configured.
	geminiAssistant := gemini.New(cfg.Assistant.Gemini)
	if !geminiAssistant.IsConfigured() {
		log.Warn().Msg("Gemini API key is empty, query commands will fail upstream")
	}

	var synthesizer speech.Synthesizer = speech.Disabled{}
	if cfg.Speech.APIKey != "" {
		synthesizer = elevenlabs.New(cfg.Speech)
	} else {
		log.Warn().Msg("ElevenLabs API key is empty, text-to-speech disabled")
	}

	exchanger := auth.NewGoogleExchanger(cfg.Auth)

	// Services
	dispatcher := service.NewDispatcher(contextRepo, sessions, geminiAssistant)
	authService := service.NewAuthService(exchanger, sessions)

	// Handlers
	commandHandler := handler.NewCommandHandler(dispatcher)
	queryHandler := handler.NewQueryHandler(dispatcher)
	authHandler := handler.NewAuthHandler(authService, cfg.Auth.FrontendURL)
	speechHandler := handler.NewSpeechHandler(synthesizer)
	debugHandler := handler.NewDebugHandler(contextRepo)

	sessionMiddleware := custommw.NewSessionMiddleware(sessions)

	var limit func(http.Handler) http.Handler
	if redisClient != nil {
		rateLimiter := redis.NewRateLimiter(
			redisClient,
			cfg.Security.RateLimit.RequestsPerMinute,
			cfg.Security.RateLimit.Burst,
		)
		limit = custommw.NewRateLimitMiddleware(rateLimiter).Limit
	} else {
		limit = func(next http.Handler) http.Handler { return next }
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Health
		r.Get("/health", handler.HealthCheck)
		r.Get("/ready", handler.ReadyCheck(contextRepo))

		// Auth routes (public)
		r.Route("/auth", func(r chi.Router) {
			r.Get("/login", authHandler.Login)
			r.Get("/callback", authHandler.Callback)
		})

		// Command protocol: the session id travels in the envelope, so the
		// dispatcher does its own credential check.
		r.With(limit).Post("/execute", commandHandler.Execute)

		// Session-guarded routes
		r.Group(func(r chi.Router) {
			r.Use(sessionMiddleware.Require)
			r.Use(limit)

			r.Post("/query", queryHandler.Ask)
			r.Post("/auth/logout", authHandler.Logout)

			r.Route("/speech", func(r chi.Router) {
				r.Post("/tts", speechHandler.Synthesize)
				r.Get("/status", speechHandler.Status)
			})

			r.Get("/debug/context/{sessionID}", debugHandler.Context)
		})
	})

	return r
}

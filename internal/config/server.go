package config

import (
	"GutAssistant/database/postgres"
	chatHandler "GutAssistant/internal/api/chat/handler"
	chatRepository "GutAssistant/internal/api/chat/repository"
	chatService "GutAssistant/internal/api/chat/service"
	"GutAssistant/internal/assistant"
	"GutAssistant/internal/metrics"
	"GutAssistant/internal/middleware"
	contextPkg "GutAssistant/pkg/context"
	"GutAssistant/pkg/nlp"
	"GutAssistant/pkg/redis"
	"GutAssistant/pkg/utils"
	"context"
	"fmt"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"time"
)

type ServerOption func(*Server) error

type Server struct {
	engine      *fiber.App
	db          *sqlx.DB
	log         *logrus.Logger
	settings    Settings
	middleware  middleware.Middleware
	validator   *validator.Validate
	utils       utils.IUtils
	handlers    []handler
	redisServer redis.IRedis
	registry    *prometheus.Registry
	store       assistant.Store
}

type handler interface {
	Start(srv fiber.Router)
}

func NewServer(options ...ServerOption) (*Server, error) {
	server := &Server{settings: LoadSettings()}

	for _, option := range options {
		if err := option(server); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if server.engine == nil {
		return nil, fmt.Errorf("fiber app is required")
	}
	if server.log == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if server.validator == nil {
		server.validator = NewValidator()
	}
	if server.utils == nil {
		server.utils = utils.New()
	}
	if server.middleware == nil {
		server.middleware = middleware.New(server.log, server.settings.RateLimitRPS, server.settings.RateLimitBurst)
	}

	return server, nil
}

func WithFiber(fiberApp *fiber.App) ServerOption {
	return func(s *Server) error {
		s.engine = fiberApp
		return nil
	}
}

func WithLogger(logger *logrus.Logger) ServerOption {
	return func(s *Server) error {
		s.log = logger
		return nil
	}
}

func WithSettings(settings Settings) ServerOption {
	return func(s *Server) error {
		s.settings = settings
		return nil
	}
}

func WithValidator(validator *validator.Validate) ServerOption {
	return func(s *Server) error {
		s.validator = validator
		return nil
	}
}

// WithDatabase connects to Postgres unless the memory store is configured.
func WithDatabase() ServerOption {
	return func(s *Server) error {
		if s.settings.FeedbackStore == StoreMemory {
			return nil
		}
		db, err := postgres.New()
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to connect to database: %v", err)
			}
			return fmt.Errorf("failed to create database connection: %w", err)
		}
		s.db = db
		return nil
	}
}

func WithRedisServer(redisServer redis.IRedis) ServerOption {
	return func(s *Server) error {
		s.redisServer = redisServer
		return nil
	}
}

func WithMiddleware() ServerOption {
	return func(s *Server) error {
		if s.log == nil {
			return fmt.Errorf("logger must be initialized before middleware")
		}
		s.middleware = middleware.New(s.log, s.settings.RateLimitRPS, s.settings.RateLimitBurst)
		return nil
	}
}

func WithMetrics(registry *prometheus.Registry) ServerOption {
	return func(s *Server) error {
		if err := metrics.Register(registry); err != nil {
			return fmt.Errorf("failed to register metrics: %w", err)
		}
		s.registry = registry
		return nil
	}
}

func WithUtils() ServerOption {
	return func(s *Server) error {
		s.utils = utils.New()
		return nil
	}
}

func (s *Server) RegisterHandler() error {
	store, err := s.newStore()
	if err != nil {
		return err
	}
	s.store = store

	s.engine.Use(s.middleware.NewRequestIDMiddleware())
	s.engine.Use(s.middleware.NewMetricsMiddleware())
	s.engine.Use(middleware.LoggerConfig())

	processor := nlp.NewProcessor(nlp.NewConfidenceEstimator())
	gutAssistant := assistant.New(s.log, processor, store, s.utils)

	// Chat Domain
	chatServices := chatService.New(s.log, gutAssistant)
	chatHandlers := chatHandler.New(s.log, s.validator, s.middleware, chatServices)

	s.setupHealthCheck()
	s.setupMetrics()
	s.handlers = append(s.handlers, chatHandlers)

	router := s.engine.Group("/api/v1")
	for _, h := range s.handlers {
		h.Start(router)
	}
	return nil
}

func (s *Server) newStore() (assistant.Store, error) {
	if s.db == nil {
		s.log.Warn("Using in-memory feedback store; learned overrides are lost on restart")
		return assistant.NewMemoryStore(), nil
	}

	chatRepo := chatRepository.New(s.db, s.log)
	store := chatService.NewPersistentStore(s.log, chatRepo, s.redisServer, s.settings.OverrideCacheTTL)

	ctx, cancel := context.WithTimeout(contextPkg.WithRequestID(context.Background(), "startup"), 30*time.Second)
	defer cancel()

	if _, err := store.RebuildIndex(ctx); err != nil {
		return nil, fmt.Errorf("rebuild override index: %w", err)
	}
	return store, nil
}

func (s *Server) Run() error {
	if err := s.engine.Listen(fmt.Sprintf(":%s", s.settings.Port)); err != nil {
		return err
	}

	return nil
}

func (s *Server) Shutdown() error {
	if err := s.engine.ShutdownWithTimeout(10 * time.Second); err != nil {
		return err
	}
	if s.redisServer != nil {
		if err := s.redisServer.Close(); err != nil {
			s.log.Warnf("Error closing Redis client: %v", err)
		}
	}
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Server) setupHealthCheck() {
	s.engine.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.JSON(fiber.Map{
			"message": "Server is Healthy!",
		})
	})
}

func (s *Server) setupMetrics() {
	if s.registry == nil {
		return
	}
	s.engine.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))
}

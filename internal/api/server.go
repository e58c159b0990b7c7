package api

import (
	"context"
	"fmt"
	"net/http"

	"slotbook/internal/cache"
	"slotbook/internal/config"
	"slotbook/internal/database"
	"slotbook/internal/handlers"
	"slotbook/internal/logger"
	"slotbook/internal/messaging"
	"slotbook/internal/metrics"
	"slotbook/internal/middleware"
	"slotbook/internal/repository"
	"slotbook/internal/search"
	"slotbook/internal/service"

	"github.com/gin-gonic/gin"
)

// Server представляет HTTP сервер API
type Server struct {
	router   *gin.Engine
	config   *config.Config
	db       *database.DB
	nats     *messaging.NATSClient
	sessions *cache.ValkeyClient
	search   *search.ElasticsearchClient
	metrics  *metrics.Metrics
	services *service.Services
}

// NewServer подключает хранилища и собирает роутер
func NewServer(cfg *config.Config) (*Server, error) {
	gin.SetMode(cfg.GinMode)

	s := &Server{config: cfg, metrics: metrics.New()}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	s.db = db

	if err := db.RunMigrations(); err != nil {
		s.Cleanup()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	s.nats, err = messaging.NewNATSClient(cfg.NATS)
	if err != nil {
		s.Cleanup()
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	s.sessions, err = cache.NewValkeyClient(cfg.Valkey)
	if err != nil {
		s.Cleanup()
		return nil, err
	}

	// поиск необязателен: без ES расписание ищется перебором
	var index service.FlightIndex
	if cfg.Elasticsearch.URL != "" {
		s.search, err = search.NewElasticsearchClient(cfg.Elasticsearch)
		if err != nil {
			logger.Get().Warn("Elasticsearch unavailable, search falls back to database", "error", err)
		} else {
			index = s.search
		}
	}

	repos := repository.NewRepositories(db)
	s.services = service.NewServices(service.StoresFrom(repos), s.nats, index, s.metrics)

	s.router = newRouter(cfg, s.services, s.sessions, s.metrics)
	var searchCheck pinger
	if s.search != nil {
		searchCheck = s.search
	}
	s.router.GET("/health", healthHandler(s.db, s.sessions, searchCheck))

	return s, nil
}

// newRouter builds the engine without any network dependency
func newRouter(cfg *config.Config, services *service.Services, sessions middleware.SessionLookup, m *metrics.Metrics) *gin.Engine {
	router := gin.New()
	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.CORS(),
		middleware.Logger(),
		middleware.Metrics(m),
		middleware.Timeout(cfg.RequestTimeout),
	)

	if cfg.MetricsEnabled {
		router.GET("/metrics", gin.WrapH(m.Handler()))
	}

	h := handlers.NewHandlers(services)
	api := router.Group("/api", middleware.SessionAuth(sessions, services.Users, cfg.SessionCookie))
	h.RegisterRoutes(api)

	return router
}

type databaseHealth interface {
	Health(ctx context.Context) database.Health
}

type pinger interface {
	HealthCheck(ctx context.Context) error
}

// healthHandler - GET /health
// База и сессии обязательны, поиск только сообщается: без него работает перебор.
func healthHandler(db databaseHealth, sessions pinger, search pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		dbHealth := db.Health(ctx)

		status := http.StatusOK
		body := gin.H{
			"status":   "ok",
			"service":  "slotbook-api",
			"database": dbHealth,
			"sessions": "ok",
			"search":   "disabled",
		}
		if !dbHealth.Healthy() {
			status = http.StatusServiceUnavailable
			body["status"] = "degraded"
		}

		if err := sessions.HealthCheck(ctx); err != nil {
			status = http.StatusServiceUnavailable
			body["status"] = "degraded"
			body["sessions"] = err.Error()
		}

		if search != nil {
			body["search"] = "ok"
			if err := search.HealthCheck(ctx); err != nil {
				body["search"] = err.Error()
			}
		}

		c.JSON(status, body)
	}
}

// GetRouter возвращает роутер для тестирования
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}

// Cleanup закрывает соединения
func (s *Server) Cleanup() error {
	log := logger.Get()

	if s.nats != nil {
		if err := s.nats.Close(); err != nil {
			log.Error("Error closing NATS connection", "error", err)
		}
	}

	if s.sessions != nil {
		if err := s.sessions.Close(); err != nil {
			log.Error("Error closing Valkey connection", "error", err)
		}
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			log.Error("Error closing database connection", "error", err)
			return err
		}
	}

	return nil
}

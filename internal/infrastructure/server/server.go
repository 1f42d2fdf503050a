package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	_ "github.com/unifyhub/core/docs"
	httpHandlers "github.com/unifyhub/core/internal/adapters/http"
	"github.com/unifyhub/core/internal/adapters/recordstore"
	"github.com/unifyhub/core/internal/adapters/repository"
	"github.com/unifyhub/core/internal/application/services"
	"github.com/unifyhub/core/internal/infrastructure/config"
	"github.com/unifyhub/core/internal/infrastructure/database"
	"github.com/unifyhub/core/internal/infrastructure/logger"
)

// Server represents the HTTP server
type Server struct {
	echo      *echo.Echo
	config    *config.Config
	logger    *logger.Logger
	db        *database.DB
	scheduler *services.Scheduler
}

// CustomValidator wraps the validator
type CustomValidator struct {
	validator *validator.Validate
}

// Validate validates structs
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// New creates a new server instance. The record store backend is chosen
// by cfg.Store.Mode: "postgres" opens a local database connection,
// "remote" talks to an external record backend over HTTP.
func New(cfg *config.Config, appLogger *logger.Logger) (*Server, error) {
	e := echo.New()

	// Set custom validator
	e.Validator = &CustomValidator{validator: validator.New()}

	// Configure Echo
	e.HideBanner = true
	e.HidePort = true

	// Custom error handler
	e.HTTPErrorHandler = customErrorHandler(appLogger)

	// Initialize the record store
	var (
		store recordstore.Store
		db    *database.DB
	)
	switch cfg.Store.Mode {
	case "postgres":
		var err error
		db, err = database.New(cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		store = recordstore.NewPostgresStore(db.DB)
	case "remote":
		store = recordstore.NewRemoteStore(cfg.Store.BaseURL, cfg.Store.ProjectID, cfg.Store.PublicKey, cfg.Store.Timeout)
	default:
		return nil, fmt.Errorf("unknown store mode %q", cfg.Store.Mode)
	}

	// Initialize repositories
	messageRepo := repository.NewMessageRepository(store, appLogger)
	eventRepo := repository.NewEventRepository(store, appLogger)
	taskRepo := repository.NewTaskRepository(store, appLogger)
	projectRepo := repository.NewProjectRepository(store, appLogger)
	ruleRepo := repository.NewRuleRepository(store, appLogger)
	connectionRepo := repository.NewConnectionRepository(store, appLogger)

	// Initialize services
	scheduler := services.NewScheduler(appLogger)
	authService := services.NewAuthService(cfg.Auth, appLogger)
	messageService := services.NewMessageService(messageRepo, appLogger)
	eventService := services.NewEventService(eventRepo, appLogger)
	taskService := services.NewTaskService(taskRepo, appLogger)
	projectService := services.NewProjectService(projectRepo, appLogger)
	ruleService := services.NewRuleService(ruleRepo, appLogger)
	connectionService := services.NewConnectionService(connectionRepo, scheduler, cfg.Sync, appLogger)

	// Initialize handlers
	authHandler := httpHandlers.NewAuthHandler(authService, appLogger)
	messageHandler := httpHandlers.NewMessageHandler(messageService, appLogger)
	eventHandler := httpHandlers.NewEventHandler(eventService, appLogger)
	taskHandler := httpHandlers.NewTaskHandler(taskService, appLogger)
	projectHandler := httpHandlers.NewProjectHandler(projectService, appLogger)
	ruleHandler := httpHandlers.NewRuleHandler(ruleService, appLogger)
	connectionHandler := httpHandlers.NewConnectionHandler(connectionService, appLogger)

	server := &Server{
		echo:      e,
		config:    cfg,
		logger:    appLogger,
		db:        db,
		scheduler: scheduler,
	}

	// Setup middleware
	server.setupMiddleware()

	// Setup routes
	server.setupRoutes(routeHandlers{
		auth:       authHandler,
		message:    messageHandler,
		event:      eventHandler,
		task:       taskHandler,
		project:    projectHandler,
		rule:       ruleHandler,
		connection: connectionHandler,
	}, authService)

	// Setup metrics
	if cfg.Metrics.Enabled {
		server.setupMetrics()
	}

	return server, nil
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware() {
	// Recovery middleware
	s.echo.Use(middleware.Recover())

	// Logger middleware
	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogError:     true,
		LogRemoteIP:  true,
		LogUserAgent: true,
		LogValuesFunc: func(c echo.Context, values middleware.RequestLoggerValues) error {
			fields := []interface{}{
				"method", values.Method,
				"uri", values.URI,
				"status", values.Status,
				"latency_ms", float64(values.Latency.Nanoseconds()) / 1000000,
				"remote_ip", values.RemoteIP,
				"user_agent", values.UserAgent,
			}

			if values.Error != nil {
				fields = append(fields, "error", values.Error.Error())
				s.logger.Errorw("HTTP request failed", fields...)
			} else {
				s.logger.Infow("HTTP request", fields...)
			}

			return nil
		},
	}))

	// CORS middleware
	s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: strings.Split(s.config.Security.CORSAllowedOrigins, ","),
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowMethods: []string{echo.GET, echo.HEAD, echo.PUT, echo.PATCH, echo.POST, echo.DELETE},
	}))

	// Rate limiting middleware
	s.echo.Use(middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{Rate: rate.Limit(s.config.Security.RateLimitRequests), Burst: s.config.Security.RateLimitRequests, ExpiresIn: s.config.Security.RateLimitWindow},
		),
		IdentifierExtractor: func(ctx echo.Context) (string, error) {
			return ctx.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(http.StatusForbidden, map[string]string{"message": "rate limit exceeded"})
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return c.JSON(http.StatusTooManyRequests, map[string]string{"message": "rate limit exceeded"})
		},
	}))

	// Security headers
	s.echo.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            31536000,
		ContentSecurityPolicy: "default-src 'self'",
	}))

	// Request ID middleware
	s.echo.Use(middleware.RequestID())

	// Timeout middleware
	s.echo.Use(middleware.TimeoutWithConfig(middleware.TimeoutConfig{
		Timeout: 30 * time.Second,
	}))
}

type routeHandlers struct {
	auth       *httpHandlers.AuthHandler
	message    *httpHandlers.MessageHandler
	event      *httpHandlers.EventHandler
	task       *httpHandlers.TaskHandler
	project    *httpHandlers.ProjectHandler
	rule       *httpHandlers.RuleHandler
	connection *httpHandlers.ConnectionHandler
}

// setupRoutes configures all routes
func (s *Server) setupRoutes(h routeHandlers, authService *services.AuthService) {
	// Health check routes
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/health/detailed", s.detailedHealthCheck)
	s.echo.GET("/ready", s.readinessCheck)

	// Swagger documentation
	s.echo.GET("/swagger/*", echoSwagger.WrapHandler)

	// API v1 routes
	v1 := s.echo.Group("/api/v1")

	// Auth routes (public)
	authGroup := v1.Group("/auth")
	authGroup.POST("/token", h.auth.Token)

	auth := s.authMiddleware(authService)

	// Message routes (authenticated)
	messageGroup := v1.Group("/messages", auth)
	messageGroup.GET("", h.message.ListMessages)
	messageGroup.POST("", h.message.CreateMessage)
	messageGroup.GET("/search", h.message.SearchMessages)
	messageGroup.GET("/:id", h.message.GetMessage)
	messageGroup.PATCH("/:id", h.message.UpdateMessage)
	messageGroup.POST("/:id/read", h.message.MarkRead)
	messageGroup.DELETE("/:id", h.message.DeleteMessage)

	// Task routes (authenticated)
	taskGroup := v1.Group("/tasks", auth)
	taskGroup.GET("", h.task.ListTasks)
	taskGroup.POST("", h.task.CreateTask)
	taskGroup.GET("/:id", h.task.GetTask)
	taskGroup.PATCH("/:id", h.task.UpdateTask)
	taskGroup.POST("/:id/toggle", h.task.ToggleTask)
	taskGroup.DELETE("/:id", h.task.DeleteTask)

	// Event routes (authenticated)
	eventGroup := v1.Group("/events", auth)
	eventGroup.GET("", h.event.ListEvents)
	eventGroup.POST("", h.event.CreateEvent)
	eventGroup.GET("/:id", h.event.GetEvent)
	eventGroup.PATCH("/:id", h.event.UpdateEvent)
	eventGroup.DELETE("/:id", h.event.DeleteEvent)

	// Calendar views (authenticated)
	calendarGroup := v1.Group("/calendar", auth)
	calendarGroup.GET("/grid", h.event.MonthGrid)
	calendarGroup.GET("/day", h.event.Day)

	// Project routes (authenticated)
	projectGroup := v1.Group("/projects", auth)
	projectGroup.GET("", h.project.ListProjects)
	projectGroup.POST("", h.project.CreateProject)
	projectGroup.GET("/:id", h.project.GetProject)
	projectGroup.PATCH("/:id", h.project.UpdateProject)
	projectGroup.DELETE("/:id", h.project.DeleteProject)

	// Rule routes (authenticated)
	ruleGroup := v1.Group("/rules", auth)
	ruleGroup.GET("", h.rule.ListRules)
	ruleGroup.POST("", h.rule.CreateRule)
	ruleGroup.GET("/:id", h.rule.GetRule)
	ruleGroup.PATCH("/:id", h.rule.UpdateRule)
	ruleGroup.POST("/:id/toggle", h.rule.ToggleRule)
	ruleGroup.DELETE("/:id", h.rule.DeleteRule)

	// Connection routes (authenticated)
	connectionGroup := v1.Group("/connections", auth)
	connectionGroup.GET("", h.connection.ListConnections)
	connectionGroup.POST("", h.connection.Connect)
	connectionGroup.GET("/available", h.connection.AvailableServices)
	connectionGroup.GET("/:id", h.connection.GetConnection)
	connectionGroup.POST("/:id/sync", h.connection.Sync)
	connectionGroup.DELETE("/:id", h.connection.Disconnect)
}

// setupMetrics configures Prometheus metrics
func (s *Server) setupMetrics() {
	registry := prometheus.NewRegistry()

	requestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	registry.MustRegister(requestsTotal, requestDuration)

	// Custom metrics middleware
	s.echo.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			duration := time.Since(start)
			status := c.Response().Status

			requestsTotal.WithLabelValues(
				c.Request().Method,
				c.Path(),
				fmt.Sprintf("%d", status),
			).Inc()

			requestDuration.WithLabelValues(
				c.Request().Method,
				c.Path(),
			).Observe(duration.Seconds())

			return err
		}
	})

	// Metrics endpoint
	metricsHandler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	s.echo.GET("/metrics", echo.WrapHandler(metricsHandler))
}

// authMiddleware validates JWT tokens
func (s *Server) authMiddleware(authService *services.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing authorization header")
			}

			// Extract token from "Bearer <token>"
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid authorization header format")
			}

			claims, err := authService.ValidateToken(parts[1])
			if err != nil {
				s.logger.Warn("Invalid token", "error", err, "ip", c.RealIP())
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}

			c.Set("token_subject", claims.Subject)

			return next(c)
		}
	}
}

// Health check handlers
func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) detailedHealthCheck(c echo.Context) error {
	status := "ok"
	checks := make(map[string]interface{})

	// The database check only applies in postgres mode. A remote record
	// backend has no local connection to probe.
	if s.db != nil {
		if err := s.db.HealthCheck(); err != nil {
			status = "error"
			checks["database"] = map[string]interface{}{
				"status": "error",
				"error":  err.Error(),
			}
		} else {
			checks["database"] = map[string]interface{}{
				"status": "ok",
				"stats":  s.db.GetConnectionInfo(),
			}
		}
	} else {
		checks["store"] = map[string]interface{}{
			"status": "ok",
			"mode":   s.config.Store.Mode,
		}
	}

	response := map[string]interface{}{
		"status": status,
		"time":   time.Now().UTC().Format(time.RFC3339),
		"checks": checks,
		"version": map[string]string{
			"app": s.config.App.Version,
			"go":  "1.21",
		},
	}

	if status == "ok" {
		return c.JSON(http.StatusOK, response)
	}
	return c.JSON(http.StatusServiceUnavailable, response)
}

func (s *Server) readinessCheck(c echo.Context) error {
	if s.db != nil {
		if err := s.db.Ping(); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{
				"status": "not_ready",
				"reason": "database_not_ready",
			})
		}
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status": "ready",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// Start starts the HTTP server
func (s *Server) Start(address string) error {
	s.logger.Info("Starting server", "address", address)
	return s.echo.Start(address)
}

// Shutdown gracefully shuts down the server, cancelling any scheduled
// background work before closing the database connection.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server")

	s.scheduler.Shutdown()

	if err := s.echo.Shutdown(ctx); err != nil {
		return err
	}

	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// customErrorHandler handles HTTP errors
func customErrorHandler(logger *logger.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		var (
			code = http.StatusInternalServerError
			msg  interface{}
		)

		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			msg = he.Message
			if he.Internal != nil {
				err = fmt.Errorf("%v, %v", err, he.Internal)
			}
		} else if ve, ok := err.(validator.ValidationErrors); ok {
			code = http.StatusBadRequest
			msg = map[string]string{"message": "validation failed", "details": ve.Error()}
		} else {
			msg = map[string]string{"message": http.StatusText(code)}
		}

		if code == http.StatusInternalServerError {
			logger.Error("Internal server error", "error", err, "path", c.Request().URL.Path)
		}

		if m, ok := msg.(string); ok {
			msg = map[string]string{"message": m}
		}

		if !c.Response().Committed {
			if c.Request().Method == echo.HEAD {
				err = c.NoContent(code)
			} else {
				err = c.JSON(code, msg)
			}
			if err != nil {
				logger.Error("Error sending response", "error", err)
			}
		}
	}
}

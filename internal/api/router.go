package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/staffdesk/personnel-directory/docs"
	"github.com/staffdesk/personnel-directory/internal/api/handler"
	"github.com/staffdesk/personnel-directory/internal/api/middleware"
	"github.com/staffdesk/personnel-directory/internal/core/ports"
)

// Dependencies carries everything NewRouter wires into the routes.
type Dependencies struct {
	Accounts ports.AccountService
	Tokens   ports.TokenService
	// Limiter throttles /api/login. Nil disables throttling.
	Limiter ports.LoginLimiter
	// RegisterLimit caps registrations per client IP within RegisterWindow.
	// Zero disables the limit.
	RegisterLimit  int
	RegisterWindow time.Duration
	// Checks are pinged by the readiness probe.
	Checks []handler.DependencyCheck
	Log    zerolog.Logger
	// Registry receives the HTTP request metrics and backs /metrics.
	// Nil uses the prometheus default registry.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)
	// X-Forwarded-For is only honoured from loopback and private-network
	// proxies, so clients cannot pick their own throttle key.
	e.IPExtractor = echo.ExtractIPFromXFFHeader()

	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if deps.Registry != nil {
		registerer, gatherer = deps.Registry, deps.Registry
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	// Metrics wrap the logger so they observe the status written by the
	// error handler instead of the raw handler error.
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "personnel",
		Subsystem:  "http",
		Registerer: registerer,
	}))
	e.Use(requestLogger(deps.Log))
	e.Use(echomiddleware.BodyLimit("1M"))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.Accounts)
	accountHandler := handler.NewAccountHandler(deps.Accounts)
	healthHandler := handler.NewHealthHandler(deps.Checks...)

	authGate := middleware.AuthGate(deps.Tokens)

	// --- Auth routes ---
	registerChain := []echo.MiddlewareFunc{middleware.OptionalAuth(deps.Tokens)}
	if deps.RegisterLimit > 0 && deps.RegisterWindow > 0 {
		registerChain = append([]echo.MiddlewareFunc{
			middleware.RegisterRateLimit(deps.RegisterLimit, deps.RegisterWindow),
		}, registerChain...)
	}
	e.POST("/api/register", authHandler.Register, registerChain...)
	if deps.Limiter != nil {
		e.POST("/api/login", authHandler.Login, middleware.LoginThrottle(deps.Limiter, deps.Log))
	} else {
		e.POST("/api/login", authHandler.Login)
	}

	// --- Protected routes ---
	e.GET("/api/users", accountHandler.List, authGate)
	e.DELETE("/api/users/:id", accountHandler.Delete, authGate, middleware.AdminGate())
	e.GET("/api/dashboard", accountHandler.Dashboard, authGate)

	// --- Health probes (no auth required) ---
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthHandler.Readiness)

	// --- Operations ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

// requestLogger forwards echo's access log to zerolog.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics" || c.Path() == "/health"
		},
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil || v.Status >= 500 {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("request_id", v.RequestID).
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	})
}

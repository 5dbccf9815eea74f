package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/smartcare/smartcare-api/docs"
	"github.com/smartcare/smartcare-api/internal/api/handler"
	"github.com/smartcare/smartcare-api/internal/api/middleware"
	"github.com/smartcare/smartcare-api/internal/core/domain"
	"github.com/smartcare/smartcare-api/internal/core/ports"
)

// Services are the core ports the HTTP layer drives.
type Services struct {
	Auth       ports.AuthService
	Simulation ports.SimulationService
	Auto       ports.AutoSimulator
	Vitals     ports.VitalsService
	Link       ports.LinkService
	Bmi        ports.BmiService
}

type Options struct {
	JWTSecret   string
	RequireAuth bool
	CORSOrigins []string
	// AutoInterval is only used to word the start response.
	AutoInterval time.Duration
	// Checks feed the readiness probe, keyed by dependency name.
	Checks map[string]handler.Check
	// Registry receives the HTTP metrics and serves /metrics. Nil means the
	// default Prometheus registry.
	Registry *prometheus.Registry
	Log      zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(svc Services, opts Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(opts.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(opts.Log))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{AllowOrigins: opts.CORSOrigins}))

	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if opts.Registry != nil {
		registerer, gatherer = opts.Registry, opts.Registry
	}
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "http",
		Registerer: registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics" || c.Path() == "/health" || c.Path() == "/health/ready"
		},
	}))

	authMiddleware := middleware.Auth(opts.JWTSecret)

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(svc.Auth)
	simHandler := handler.NewSimulationHandler(svc.Simulation, svc.Auto, opts.AutoInterval)
	vitalsHandler := handler.NewVitalsHandler(svc.Vitals)
	linkHandler := handler.NewLinkHandler(svc.Link)
	bmiHandler := handler.NewBmiHandler(svc.Bmi)
	healthHandler := handler.NewHealthHandler(opts.Checks)

	// --- Ops (no auth required) ---
	e.GET("/health", healthHandler.Liveness)        // liveness  – is the process alive?
	e.GET("/health/ready", healthHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// --- Auth ---
	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.GET("/me", authHandler.Me, authMiddleware)

	// Core groups are public unless RequireAuth is set.
	var protect []echo.MiddlewareFunc
	if opts.RequireAuth {
		protect = append(protect, authMiddleware)
	}

	api.GET("/health-data", simHandler.CurrentReading, protect...)

	health := api.Group("/health", protect...)
	health.POST("/simulate", simHandler.Simulate)
	health.POST("/simulate/start", simHandler.Start)
	health.POST("/simulate/stop", simHandler.Stop)
	health.GET("/latest/:userId", vitalsHandler.Latest)
	health.GET("/export/:userId", vitalsHandler.Export)

	// Admin-only regardless of RequireAuth.
	api.GET("/health/simulate/active", simHandler.Active,
		authMiddleware, middleware.RBAC(string(domain.RoleAdmin)))

	link := api.Group("/link", protect...)
	link.POST("/request-link", linkHandler.RequestLink)
	link.GET("/pending-requests/:userId", linkHandler.Pending)
	link.POST("/approve-request", linkHandler.Approve)
	link.GET("/linked-patients/:userId", linkHandler.Linked)
	link.GET("/approved/:caregiverId", linkHandler.Approved)

	bmi := api.Group("/bmi", protect...)
	bmi.POST("/save", bmiHandler.Save)
	bmi.GET("/:userId", bmiHandler.Get)

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Error != nil || v.Status >= 500 {
				evt = log.Error().Err(v.Error)
			}
			evt.
				Str("request_id", v.RequestID).
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	})
}

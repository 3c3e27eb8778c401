package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/hirehub/jobboard/docs"
	"github.com/hirehub/jobboard/internal/api/handler"
	"github.com/hirehub/jobboard/internal/api/middleware"
	"github.com/hirehub/jobboard/internal/core/domain"
	"github.com/hirehub/jobboard/internal/core/ports"
	"github.com/hirehub/jobboard/internal/infrastructure/http/handlers"
)

const defaultBodyLimit = "6M"

// Dependencies is everything the router needs from the application context.
type Dependencies struct {
	Sessions  ports.SessionService
	Views     ports.ViewService
	Mutations ports.MutationService
	Profiles  ports.ProfileRepository
	Blobs     ports.BlobStore
	Health    *handlers.HealthHandler
	Readiness *handlers.HealthDependenciesHandler

	APIKey      string
	CORSOrigins []string
	BodyLimit   string
	// Registry receives the HTTP metrics; nil uses the default registry.
	Registry *prometheus.Registry
	Log      zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if d.Registry != nil {
		registerer, gatherer = d.Registry, d.Registry
	}
	bodyLimit := d.BodyLimit
	if bodyLimit == "" {
		bodyLimit = defaultBodyLimit
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: d.CORSOrigins,
		AllowHeaders: []string{
			echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization,
			middleware.HeaderAPIKey, handler.HeaderClientID, "Idempotency-Key",
		},
		ExposeHeaders: []string{handler.HeaderClientID, echo.HeaderXRequestID},
	}))
	e.Use(echomiddleware.BodyLimit(bodyLimit))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "jobboard",
		Registerer: registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics" || c.Path() == "/health"
		},
	}))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(d.Sessions)
	jobHandler := handler.NewJobHandler(d.Views, d.Mutations)
	applicationHandler := handler.NewApplicationHandler(d.Views, d.Mutations)
	profileHandler := handler.NewProfileHandler(d.Profiles, d.Mutations, d.Sessions, d.Log)
	fileHandler := handler.NewFileHandler(d.Mutations, d.Blobs, d.Sessions, d.Log)
	companyHandler := handler.NewCompanyHandler(d.Views)

	requireAuth := middleware.Auth(d.Sessions)
	optionalAuth := middleware.OptionalAuth(d.Sessions)
	employerOnly := middleware.RBAC(domain.RoleEmployer)
	seekerOnly := middleware.RBAC(domain.RoleJobSeeker)

	// --- Probes, metrics, docs and stored files (no API key) ---
	e.GET("/health", d.Health.Liveness)
	e.GET("/health/ready", d.Readiness.Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	e.GET("/files/*", fileHandler.Download)

	// --- Auth routes ---
	auth := e.Group("/auth", middleware.APIKey(d.APIKey))
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/federated", authHandler.Federated)
	auth.POST("/restore", authHandler.Restore)
	auth.POST("/logout", authHandler.Logout, optionalAuth)
	auth.POST("/refresh", authHandler.Refresh, requireAuth)
	auth.GET("/me", authHandler.Me, requireAuth)

	// --- API v1 ---
	v1 := e.Group("/v1", middleware.APIKey(d.APIKey))

	v1.GET("/jobs", jobHandler.List)
	v1.GET("/jobs/:id", jobHandler.Get, optionalAuth)
	v1.POST("/jobs", jobHandler.Create, requireAuth, employerOnly)
	v1.PUT("/jobs/:id", jobHandler.Update, requireAuth, employerOnly)
	v1.PATCH("/jobs/:id/status", jobHandler.SetStatus, requireAuth, employerOnly)
	v1.DELETE("/jobs/:id", jobHandler.Delete, requireAuth, employerOnly)
	v1.GET("/jobs/:id/applicants", jobHandler.Applicants, requireAuth, employerOnly)
	v1.GET("/employer/jobs", jobHandler.Mine, requireAuth, employerOnly)

	v1.POST("/applications", applicationHandler.Submit, requireAuth, seekerOnly)
	v1.GET("/applications/mine", applicationHandler.Mine, requireAuth, seekerOnly)
	v1.PATCH("/applications/:id/status", applicationHandler.SetStatus, requireAuth, employerOnly)
	v1.PATCH("/applications/:id/cover-letter", applicationHandler.UpdateCoverLetter, requireAuth, seekerOnly)

	v1.GET("/profile", profileHandler.Get, requireAuth)
	v1.PATCH("/profile", profileHandler.Update, requireAuth)

	v1.POST("/files", fileHandler.Upload, requireAuth)
	v1.GET("/files", fileHandler.List, requireAuth)
	v1.DELETE("/files", fileHandler.Delete, requireAuth)

	v1.GET("/companies", companyHandler.List)
	v1.GET("/companies/:id", companyHandler.Get)

	return e
}

// requestLogger writes one zerolog line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Status >= 500 {
				ev = log.Error().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}

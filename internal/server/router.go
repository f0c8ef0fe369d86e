package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/clientdesk/clientdesk/internal/handler"
	"github.com/clientdesk/clientdesk/internal/metrics"
	"github.com/clientdesk/clientdesk/internal/middleware"
	"github.com/clientdesk/clientdesk/internal/service"
)

// API route paths that are served without a bearer token.
const (
	registerPath = "/api/v1/accounts"
	loginPath    = "/api/v1/auth/login"
	refreshPath  = "/api/v1/auth/refresh"
)

// Deps are the collaborators the router wires into handlers and middleware.
type Deps struct {
	Logger   *slog.Logger
	Version  string
	Accounts *service.AccountService
	Projects *service.ProjectService
	Tokens   middleware.TokenVerifier

	// Limiter throttles the public auth routes; nil disables throttling.
	Limiter        middleware.LoginLimiter
	RateLimitLogin bool
	RateLimitRPS   int
	RateLimitBurst int

	// Metrics may be nil. Snapshotter backs GET /metrics.
	Metrics     metrics.Recorder
	Snapshotter metrics.Snapshotter

	// HealthChecks are reported by /readyz; a nil entry reads "not configured".
	HealthChecks map[string]handler.HealthChecker

	IsDevelopment      bool
	MaxRequestBodySize int64
	CORSOrigins        []string

	// TrustProxyHeaders takes the client address from X-Forwarded-For or
	// X-Real-IP. Enable only behind a proxy that overwrites them.
	TrustProxyHeaders bool

	// Now overrides the clock used for token verification.
	Now func() time.Time
}

// NewRouter configures the chi router with all routes and middleware.
func NewRouter(deps Deps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	recorder := deps.Metrics
	if recorder == nil {
		recorder = metrics.NewNoop()
	}

	h := handler.New(deps.Version)
	healthHandler := handler.NewHealthHandler(logger, deps.HealthChecks)
	metricsHandler := handler.NewMetricsHandler(deps.Snapshotter)
	accountHandler := handler.NewAccountHandler(deps.Accounts, logger)
	authHandler := handler.NewAuthHandler(deps.Accounts, logger)
	projectHandler := handler.NewProjectHandler(deps.Projects, logger)

	r := chi.NewRouter()

	// Global middleware
	if deps.TrustProxyHeaders {
		r.Use(chimiddleware.RealIP)
	}
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger, recorder))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.Security(middleware.SecurityConfig{IsDevelopment: deps.IsDevelopment}))
	r.Use(middleware.CORS(middleware.DefaultCORSConfig(deps.CORSOrigins)))
	if deps.MaxRequestBodySize > 0 {
		r.Use(middleware.MaxBodySize(deps.MaxRequestBodySize))
	}

	// Operational endpoints (no auth required)
	r.Get("/", h.Info)
	r.Get("/healthz", healthHandler.Healthz)
	r.Get("/readyz", healthHandler.Readyz)
	r.Get("/metrics", metricsHandler.Metrics)

	authCfg := middleware.AuthConfig{
		Logger: logger,
		Tokens: deps.Tokens,
		Now:    deps.Now,
		Public: []middleware.PublicRoute{
			{Method: http.MethodPost, Path: registerPath},
			{Method: http.MethodPost, Path: loginPath},
			{Method: http.MethodPost, Path: refreshPath},
		},
	}

	throttle := middleware.RateLimitLogin(middleware.RateLimitConfig{
		Logger:  logger,
		Limiter: deps.Limiter,
		Metrics: recorder,
		Enabled: deps.RateLimitLogin,
		RPS:     deps.RateLimitRPS,
		Burst:   deps.RateLimitBurst,
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(authCfg))

		r.Route("/auth", func(r chi.Router) {
			r.Use(throttle)
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.Refresh)
		})

		r.Route("/accounts", func(r chi.Router) {
			r.Post("/", accountHandler.Register)
			r.Get("/{id}", accountHandler.Get)
			r.Put("/{id}", accountHandler.Update)
			r.Delete("/{id}", accountHandler.Deactivate)
			r.Put("/{id}/password", accountHandler.ChangePassword)
			r.Get("/{id}/projects", projectHandler.ListByAccount)
		})

		r.Route("/projects", func(r chi.Router) {
			r.Post("/", projectHandler.Create)
			r.Put("/{id}/cancel", projectHandler.Cancel)
			r.Delete("/{id}", projectHandler.Delete)
		})
	})

	// 404 and 405 handlers
	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	return r
}

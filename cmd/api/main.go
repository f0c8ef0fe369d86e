// Package main is the entrypoint for the clientdesk API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/clientdesk/clientdesk/internal/auth"
	"github.com/clientdesk/clientdesk/internal/cache"
	"github.com/clientdesk/clientdesk/internal/config"
	"github.com/clientdesk/clientdesk/internal/handler"
	"github.com/clientdesk/clientdesk/internal/metrics"
	"github.com/clientdesk/clientdesk/internal/repository"
	"github.com/clientdesk/clientdesk/internal/server"
	"github.com/clientdesk/clientdesk/internal/service"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

// storeHandle is a collaborator store that can be probed and released.
type storeHandle interface {
	repository.Store
	handler.HealthChecker
}

func main() {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Error(
			"failed to open store",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}

	healthChecks := map[string]handler.HealthChecker{
		"database": store,
		"redis":    nil,
	}

	recorder := metrics.NewInMemory()
	tokens := auth.NewTokenService([]byte(cfg.TokenSigningSecret), cfg.AccessTokenTTL(), cfg.RefreshTokenTTL())

	deps := server.Deps{
		Logger:             logger,
		Version:            version,
		Accounts:           service.NewAccountService(store, auth.NewHasher(auth.DefaultArgon2Params), tokens, service.WithMetrics(recorder)),
		Projects:           service.NewProjectService(store, service.WithMetrics(recorder)),
		Tokens:             tokens,
		RateLimitLogin:     cfg.RateLimitLoginEnabled,
		RateLimitRPS:       cfg.RateLimitLoginRPS,
		RateLimitBurst:     cfg.RateLimitLoginBurst,
		Metrics:            recorder,
		Snapshotter:        recorder,
		HealthChecks:       healthChecks,
		IsDevelopment:      cfg.IsDevelopment(),
		MaxRequestBodySize: cfg.MaxRequestBodySize,
		CORSOrigins:        cfg.GetCORSAllowedOrigins(),
		TrustProxyHeaders:  cfg.TrustProxyHeaders,
	}

	// Cache is optional; without it login throttling is off.
	var cacheClient *cache.Cache
	if cfg.RedisURL != "" {
		cacheClient, err = cache.New(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error(
				"failed to connect to Redis",
				slog.String("error", sanitizeError(err, cfg.RedisURL)),
				slog.String("redis_url", redactURL(cfg.RedisURL)),
			)
			closeStore()
			os.Exit(1)
		}
		logger.Info("connected to Redis")
		healthChecks["redis"] = cacheClient
		deps.Limiter = cacheClient
	} else {
		logger.Warn("REDIS_URL not set, login throttling disabled")
	}

	srv := server.New(
		server.NewRouter(deps),
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)

	srv.OnShutdown("store", func(ctx context.Context) error {
		closeStore()
		return nil
	})
	if cacheClient != nil {
		srv.OnShutdown("redis", func(ctx context.Context) error {
			return cacheClient.Close()
		})
	}

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"version", version,
		"store", storeKind(cfg),
	)

	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// openStore connects the collaborator store selected by DATABASE_URL and
// applies migrations when enabled.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (storeHandle, func(), error) {
	if cfg.UsesMemoryStore() {
		logger.Warn("using in-memory store, data is lost on restart")
		store := repository.NewMemoryStore()
		return store, store.Close, nil
	}

	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("connected to database")

	if cfg.RunMigrations {
		if err := repo.Migrate(ctx, logger); err != nil {
			repo.Close()
			return nil, nil, err
		}
	}

	return repo, repo.Close, nil
}

func storeKind(cfg *config.Config) string {
	if cfg.UsesMemoryStore() {
		return "memory"
	}
	return "postgres"
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	level := parseLogLevel(cfg.LogLevel)

	opts := &slog.HandlerOptions{
		Level: level,
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}
	if parsed.User == nil {
		return raw
	}

	if username := parsed.User.Username(); username == "" {
		parsed.User = url.User("redacted")
	} else {
		parsed.User = url.User(username)
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}

// Package main is the entrypoint for the authentication API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"regexp"
	"strings"
	"syscall"

	"github.com/carepredict/authapi/internal/auth"
	"github.com/carepredict/authapi/internal/config"
	"github.com/carepredict/authapi/internal/handler"
	"github.com/carepredict/authapi/internal/metrics"
	"github.com/carepredict/authapi/internal/server"
	"github.com/carepredict/authapi/internal/service"
	"github.com/carepredict/authapi/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	if cfg.UsesDefaultSecret() {
		logger.Warn("SECRET_KEY is not set; tokens are signed with the public fallback key and can be forged",
			"env", cfg.AppEnv,
		)
	}

	opened, err := store.Open(ctx, cfg, logger)
	if err != nil {
		logger.Error(
			"failed to open user store",
			slog.String("driver", cfg.StoreDriver),
			slog.String("error", sanitizeError(err, cfg.DatabaseURL, cfg.RedisURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		os.Exit(1)
	}
	logger.Info("user store ready", "driver", opened.Driver)

	var (
		recorder    metrics.Recorder = metrics.NewNoop()
		snapshotter metrics.Snapshotter
	)
	if cfg.MetricsEnabled {
		inMemory := metrics.NewInMemory()
		recorder, snapshotter = inMemory, inMemory
	}

	hasher := auth.NewHasher(auth.HashParams{
		Time:    cfg.HashIterations,
		Memory:  cfg.HashMemoryKiB,
		Threads: cfg.HashThreads,
	})

	codec, err := auth.NewTokenCodec([]byte(cfg.SecretKey))
	if err != nil {
		logger.Error("failed to create token codec", "error", err)
		os.Exit(1)
	}

	authService, err := service.NewAuthService(opened.Store, hasher, codec,
		service.WithTokenTTL(cfg.AccessTokenTTL),
		service.WithLogger(logger),
		service.WithMetrics(recorder),
	)
	if err != nil {
		logger.Error("failed to create auth service", "error", err)
		os.Exit(1)
	}

	router := server.NewRouter(server.RouterConfig{
		Logger:         logger,
		Handler:        handler.New(),
		Health:         handler.NewHealthHandler(logger).WithCheck(opened.Driver, opened.Store),
		Auth:           handler.NewAuthHandler(authService, int64(cfg.AccessTokenTTL.Seconds()), logger),
		Metrics:        handler.NewMetricsHandler(snapshotter),
		Sessions:       authService,
		IsDevelopment:  cfg.IsDevelopment(),
		AllowedOrigins: cfg.GetCORSAllowedOrigins(),
		MaxBodySize:    cfg.MaxRequestBodySize,
	})

	srv := server.New(router, server.Options{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)
	srv.OnShutdown("user store", server.ShutdownFunc(opened.Close))

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"store", opened.Driver,
		"token_ttl", cfg.AccessTokenTTL.String(),
	)

	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h).With("service", "authapi")
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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

// redactURL strips the password from a connection URL for logging.
func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

// sanitizeError replaces any connection URL embedded in err with its
// redacted form.
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

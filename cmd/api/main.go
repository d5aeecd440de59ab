// Package main is the entrypoint for the Mealdeck API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/mealdeck/mealdeck/internal/cache"
	"github.com/mealdeck/mealdeck/internal/config"
	"github.com/mealdeck/mealdeck/internal/handler"
	"github.com/mealdeck/mealdeck/internal/metrics"
	"github.com/mealdeck/mealdeck/internal/middleware"
	"github.com/mealdeck/mealdeck/internal/repository"
	"github.com/mealdeck/mealdeck/internal/server"
	"github.com/mealdeck/mealdeck/internal/service"
	"github.com/mealdeck/mealdeck/internal/upload"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	repo, err := waitForDB(ctx, cfg, logger)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	defer repo.Close()
	logger.Info("connected to database")

	if err := repository.Migrate(ctx, cfg.DatabaseURL); err != nil {
		logger.Error("failed to run migrations", slog.String("error", sanitizeError(err, cfg.DatabaseURL)))
		os.Exit(1)
	}
	logger.Info("migrations applied")

	cacheClient, err := cache.New(ctx, cfg.RedisURL, cache.Options{
		PoolSize:     cfg.RedisPoolSize,
		MinIdleConns: cfg.RedisMinIdleConns,
	})
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		os.Exit(1)
	}
	defer cacheClient.Close()
	logger.Info("connected to Redis")

	storage, err := upload.NewStorage(cfg.MediaDir)
	if err != nil {
		logger.Error("failed to initialize media storage", "error", err)
		os.Exit(1)
	}

	metricsRecorder := metrics.NewNoop()
	userService := service.NewUserService(repo, []byte(cfg.JWTSecret), cfg.TokenTTL, metricsRecorder)
	tagService := service.NewTagService(repo, metricsRecorder)
	ingredientService := service.NewIngredientService(repo, metricsRecorder)
	recipeService := service.NewRecipeService(repo, storage, metricsRecorder)

	h := handler.New()
	healthHandler := handler.NewHealthHandler(repo, cacheClient)
	userHandler := handler.NewUserHandler(userService, cacheClient, logger)
	tagHandler := handler.NewTagHandler(tagService, logger)
	ingredientHandler := handler.NewIngredientHandler(ingredientService, logger)
	recipeHandler := handler.NewRecipeHandler(recipeService, logger, cfg.BaseURL+"/media", cfg.MaxUploadSize)

	r := setupRouter(routerDeps{
		handler:     h,
		health:      healthHandler,
		users:       userHandler,
		tags:        tagHandler,
		ingredients: ingredientHandler,
		recipes:     recipeHandler,
		repo:        repo,
		cache:       cacheClient,
		metrics:     metricsRecorder,
		cfg:         cfg,
		logger:      logger,
	})

	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)

	logger.Info("starting server",
		"port", cfg.AppPort,
		"base_url", cfg.BaseURL,
		"env", cfg.AppEnv,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// waitForDB retries the database connection until it succeeds or the
// configured wait timeout elapses. Lets the API start before the
// database in container environments.
func waitForDB(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*repository.Repository, error) {
	deadline := time.Now().Add(cfg.DBWaitTimeout)

	for {
		repo, err := repository.New(ctx, cfg.DatabaseURL)
		if err == nil {
			return repo, nil
		}
		if time.Now().After(deadline) {
			return nil, err
		}
		logger.Info("database unavailable, waiting 1 second")
		time.Sleep(time.Second)
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

type routerDeps struct {
	handler     *handler.Handler
	health      *handler.HealthHandler
	users       *handler.UserHandler
	tags        *handler.TagHandler
	ingredients *handler.IngredientHandler
	recipes     *handler.RecipeHandler
	repo        *repository.Repository
	cache       *cache.Cache
	metrics     metrics.Recorder
	cfg         *config.Config
	logger      *slog.Logger
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(deps routerDeps) *chi.Mux {
	cfg := deps.cfg
	logger := deps.logger

	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.Security(middleware.SecurityConfig{IsDevelopment: cfg.IsDevelopment()}))

	corsCfg := middleware.DefaultCORSConfig()
	if origins := cfg.GetCORSAllowedOrigins(); len(origins) > 0 {
		corsCfg.AllowedOrigins = origins
	}
	r.Use(middleware.CORS(corsCfg))

	// Health endpoints (no auth required)
	r.Get("/healthz", deps.health.Healthz)
	r.Get("/readyz", deps.health.Readyz)

	// Root info endpoint
	r.Get("/", deps.handler.Hello)

	// Stored media (recipe images)
	r.Handle("/media/*", handler.Media(cfg.MediaDir))

	authCfg := middleware.AuthConfig{
		Logger:  logger,
		Secret:  []byte(cfg.JWTSecret),
		Users:   deps.repo,
		Cache:   deps.cache,
		Metrics: deps.metrics,
	}

	rateLimitCfg := middleware.RateLimitConfig{
		Logger:            logger,
		Limiter:           deps.cache,
		Enabled:           cfg.RateLimitAPIEnabled,
		RequestsPerMinute: cfg.RateLimitAPIRPM,
		Burst:             cfg.RateLimitAPIBurst,
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Public account endpoints
		r.Group(func(r chi.Router) {
			r.Use(middleware.MaxBodySize(cfg.MaxRequestBodySize))
			r.Post("/users", deps.users.Create)
			r.Post("/users/token", deps.users.Token)
		})

		// Authenticated endpoints
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(authCfg))
			r.Use(middleware.RateLimitAPI(rateLimitCfg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.MaxBodySize(cfg.MaxRequestBodySize))

				r.Get("/users/me", deps.users.Me)
				r.Patch("/users/me", deps.users.UpdateMe)
				r.Put("/users/me", deps.users.UpdateMe)

				r.Route("/recipes", func(r chi.Router) {
					r.Get("/", deps.recipes.List)
					r.Post("/", deps.recipes.Create)
					r.Get("/{id}", deps.recipes.Get)
					r.Patch("/{id}", deps.recipes.Update)
					r.Put("/{id}", deps.recipes.Update)
					r.Delete("/{id}", deps.recipes.Delete)
				})

				r.Route("/tags", func(r chi.Router) {
					r.Get("/", deps.tags.List)
					r.Post("/", deps.tags.Create)
					r.Get("/{id}", deps.tags.Get)
					r.Patch("/{id}", deps.tags.Update)
					r.Put("/{id}", deps.tags.Update)
					r.Delete("/{id}", deps.tags.Delete)
				})

				r.Route("/ingredients", func(r chi.Router) {
					r.Get("/", deps.ingredients.List)
					r.Post("/", deps.ingredients.Create)
					r.Get("/{id}", deps.ingredients.Get)
					r.Patch("/{id}", deps.ingredients.Update)
					r.Put("/{id}", deps.ingredients.Update)
					r.Delete("/{id}", deps.ingredients.Delete)
				})
			})

			// Image uploads carry a larger body limit.
			r.With(middleware.MaxBodySize(cfg.MaxUploadSize)).
				Post("/recipes/{id}/upload-image", deps.recipes.UploadImage)
		})
	})

	r.NotFound(deps.handler.NotFound)
	r.MethodNotAllowed(deps.handler.MethodNotAllowed)

	return r
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

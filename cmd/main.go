package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"movie-recommendation-service/internal/config"
	"movie-recommendation-service/internal/database"
	"movie-recommendation-service/internal/handler"
	"movie-recommendation-service/internal/middleware"
	"movie-recommendation-service/internal/repository"
	"movie-recommendation-service/internal/service"
	"movie-recommendation-service/internal/supervisor"
)

func main() {
	slogger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	slog.SetDefault(slogger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Connect to PostgreSQL
	db, err := database.NewPostgres(cfg.DB)
	if err != nil {
		slog.Error("failed to connect to PostgreSQL", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Connect to Redis
	rdb, err := database.NewRedis(cfg.Redis)
	if err != nil {
		slog.Error("failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	if rdb != nil {
		defer rdb.Close()
	}

	// Initialize layers
	userRepo := repository.NewUserRepository(db)
	movieRepo := repository.NewMovieRepository(db)
	interactionRepo := repository.NewInteractionRepository(db)
	prefRepo := repository.NewPreferenceRepository(db)

	rc := cfg.Recommender
	cache := service.NewResponseCache(rdb, rc.CacheTTL)
	snapshots := service.NewSnapshotStore(movieRepo, interactionRepo, service.SnapshotConfig{
		ModelNeighbors: rc.ModelNeighbors,
		MaxAge:         rc.SnapshotMaxAge,
		RebuildDelta:   rc.SnapshotDelta,
		BuildTimeout:   rc.SnapshotTimeout,
	})

	userSvc := service.NewUserService(userRepo)
	prefSvc := service.NewPreferenceService(prefRepo, userRepo)
	interactionSvc := service.NewInteractionService(interactionRepo, movieRepo, prefSvc, snapshots, cache)
	movieSvc := service.NewMovieService(movieRepo, userRepo, interactionRepo, snapshots, cache)
	strategies := service.NewStrategies(snapshots, interactionRepo, prefRepo, movieRepo, rc)
	recSvc := service.NewRecommendationService(userRepo, movieRepo, interactionRepo, strategies, snapshots, cache, rc)

	// Load swagger document
	swaggerYAML, err := os.ReadFile(cfg.SwaggerPath)
	if err != nil {
		slog.Warn("swagger document not found, swagger UI will be unavailable", "error", err)
	}

	app := newApp(cfg, rdb, swaggerYAML, func(api fiber.Router) {
		handler.RegisterRoutes(api,
			handler.NewUserHandler(userSvc, prefSvc),
			handler.NewInteractionHandler(interactionSvc),
			handler.NewMovieHandler(movieSvc),
			handler.NewRecommendationHandler(recSvc),
		)
	})

	// Supervise the server and the snapshot refresher
	tree := supervisor.NewTree(slogger, supervisor.DefaultTreeConfig())
	tree.AddModelService(supervisor.NewSnapshotRefresher(snapshots, rc.RefreshInterval))
	tree.AddAPIService(supervisor.NewHTTPServerService(app, ":"+cfg.Port, 0))

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("movie-recommendation-service starting", "port", cfg.Port)
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("supervisor stopped", "error", err)
	}
	slog.Info("shutting down movie-recommendation-service")
}

// newApp builds the Fiber app with its middleware, the operational routes
// and the rate-limited /api/v1 group populated by register.
func newApp(cfg *config.Config, rdb *redis.Client, swaggerYAML []byte, register func(api fiber.Router)) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "movie-recommendation-service",
		ServerHeader: "movie-recommendation-service",
	})

	// Middleware
	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(logger.New())
	app.Use(cors.New())

	// Swagger
	if swaggerYAML != nil {
		handler.RegisterSwagger(app, swaggerYAML)
	}

	// Routes
	app.Get("/health", handler.Health)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api/v1", middleware.NewRateLimiter(rdb, cfg.RateLimit.MaxRequests, cfg.RateLimit.WindowSec).Handler())
	register(api)
	return app
}

package main

import (
	"context"
	"database/sql"
	"os/signal"
	"syscall"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	jwtware "github.com/gofiber/jwt/v2"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/wichananm65/shop-for-outcomes/internal/apiclient"
	"github.com/wichananm65/shop-for-outcomes/internal/config"
	"github.com/wichananm65/shop-for-outcomes/internal/goal"
	"github.com/wichananm65/shop-for-outcomes/internal/logging"
	"github.com/wichananm65/shop-for-outcomes/internal/product"
	"github.com/wichananm65/shop-for-outcomes/internal/recommended"
	"github.com/wichananm65/shop-for-outcomes/internal/results"
	"github.com/wichananm65/shop-for-outcomes/internal/scene"
)

func main() {
	cfg := config.Load()
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if cfg.UsesDevSecret() {
		logging.Warn().Msg("JWT_SECRET is not set, scene tokens are signed with the development secret")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := fiber.New(fiber.Config{
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
		Immutable:             true,
		DisableStartupMessage: true,
	})
	setupCORS(app)
	app.Use(requestLogger)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	client := apiclient.New(apiclient.Config{
		RecommendURL: cfg.RecommendAPIURL,
		SearchURL:    cfg.SearchAPIURL,
		Timeout:      cfg.APITimeout,
	})

	recommendedService := recommended.NewService(client)
	productService := product.NewService(client)

	sceneService := scene.NewService(recommendedService, productService, scene.NewInMemoryRepository(), cfg.SceneTTL)
	sceneHandler := scene.NewHandler(sceneService, scene.NewTokens(cfg.JWTSecret, cfg.SceneTTL))

	resultsService := results.NewService(resultsRepository(ctx, cfg.DatabaseURL), cfg.HandoffGrace, cfg.HandoffTTL)

	go sceneService.RunJanitor(ctx, time.Minute)
	go resultsService.RunJanitor(ctx, time.Minute)

	goal.NewHandler().RegisterPublicRoutes(app)
	recommended.NewHandler(recommendedService).RegisterPublicRoutes(app)
	product.NewHandler(productService).RegisterPublicRoutes(app)
	results.NewHandler(resultsService).RegisterPublicRoutes(app)
	sceneHandler.RegisterPublicRoutes(app)

	app.Use("/api/v1/scene", jwtware.New(jwtware.Config{
		SigningKey:   []byte(cfg.JWTSecret),
		ErrorHandler: scene.RedirectOnAuthError,
	}))
	sceneHandler.RegisterProtectedRoutes(app)

	go func() {
		<-ctx.Done()
		if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
			logging.Error().Err(err).Msg("shutdown failed")
		}
	}()

	logging.Info().Str("addr", cfg.Addr).Msg("listening")
	if err := app.Listen(cfg.Addr); err != nil {
		logging.Error().Err(err).Msg("server stopped")
	}
}

func setupCORS(app *fiber.App) {
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,HEAD,DELETE",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
}

// resultsRepository uses Postgres when DATABASE_URL is set so a handoff
// survives restarts and is shared between replicas.
func resultsRepository(ctx context.Context, dbURL string) results.Repository {
	if dbURL == "" {
		logging.Info().Msg("DATABASE_URL is not set, keeping result snapshots in memory")
		return results.NewInMemoryRepository()
	}
	repo := results.NewPostgresRepository(mustOpenDB(dbURL))
	if err := repo.EnsureSchema(ctx); err != nil {
		panic(err)
	}
	return repo
}

func mustOpenDB(dbURL string) *sql.DB {
	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		panic(err)
	}

	if err := db.Ping(); err != nil {
		panic(err)
	}

	return db
}

func requestLogger(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	logging.Debug().
		Str("method", c.Method()).
		Str("url", c.OriginalURL()).
		Int("status", c.Response().StatusCode()).
		Dur("took", time.Since(start)).
		Msg("request")
	return err
}

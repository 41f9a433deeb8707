package bootstrap

import (
	"context"
	"os"
	"time"

	"triage_server/adapter/in/http"
	"triage_server/config"
	"triage_server/core/service/digest"
	"triage_server/infra/middleware"
	"triage_server/pkg/logger"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/rs/zerolog"
)

// NewAPI builds the Fiber app serving the triage surface. Gmail is optional
// here: without a session the store-side routes still work.
func NewAPI(cfg *config.Config) (*fiber.App, func(), error) {
	// main has already initialized the logger; only the level depends on
	// config, which was not loaded yet at that point.
	if cfg.IsDevelopment() {
		logger.SetLevel(logger.LevelDebug)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	deps, cleanup, err := NewDependencies(ctx, cfg, false)
	if err != nil {
		logger.WithError(err).Error("Failed to initialize dependencies")
		return nil, nil, err
	}

	return buildApp(cfg, deps), cleanup, nil
}

// NewAll wires one dependency set serving both halves of the combined mode:
// the digest pipeline that runs first, then the API over the same adapters.
// Gmail is mandatory here since the digest half needs it.
func NewAll(cfg *config.Config) (*fiber.App, *digest.Service, func(), error) {
	if cfg.IsDevelopment() {
		logger.SetLevel(logger.LevelDebug)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	deps, cleanup, err := NewDependencies(ctx, cfg, true)
	if err != nil {
		logger.WithError(err).Error("Failed to initialize dependencies")
		return nil, nil, nil, err
	}

	return buildApp(cfg, deps), deps.DigestService, cleanup, nil
}

func buildApp(cfg *config.Config, deps *Dependencies) *fiber.App {
	zlog := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).
		With().Timestamp().Str("component", "api").Logger()

	app := fiber.New(fiber.Config{
		ErrorHandler:          middleware.ErrorHandler(),
		DisableStartupMessage: cfg.IsProduction(),
		ReadBufferSize:        16384,
		WriteBufferSize:       16384,
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
		BodyLimit:             1 * 1024 * 1024,
	})

	app.Use(middleware.Recover())
	app.Use(middleware.RequestID())
	app.Use(middleware.RequestLogger())
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,X-Request-ID",
	}))

	healthHandler := http.NewHealthHandler(deps.DB)
	healthHandler.Register(app)

	api := app.Group("/api/v1")
	triageHandler := http.NewTriageHandler(deps.TriageService, deps.DigestService, cfg.DigestUserID)
	triageHandler.Register(api)

	zlog.Info().Str("port", cfg.Port).Msg("API routes registered")

	return app
}

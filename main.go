package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"triage_server/config"
	"triage_server/internal/bootstrap"
	"triage_server/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"
)

const (
	shutdownTimeout = 30 * time.Second // Maximum time to wait for graceful shutdown
)

// runModes maps the -mode flag to its entrypoint.
var runModes = map[string]func(*config.Config){
	"digest": runDigest,
	"api":    runAPI,
	"all":    runAll,
}

func main() {
	// Initialize logger early
	logger.Init(logger.Config{
		Level:   logger.LevelInfo,
		Service: "triage",
	})

	// Load .env file if exists (for local development)
	if err := godotenv.Load(); err != nil {
		logger.Debug("No .env file found, using environment variables")
	}

	mode := flag.String("mode", "digest", "Run mode: digest, api, all")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config: %v", err)
	}

	run, ok := runModes[*mode]
	if !ok {
		logger.Fatal("Unknown mode: %s", *mode)
	}
	run(cfg)
}

// runDigest executes one fetch/summarize/persist cycle and prints the
// morning report. Partial failures show up in the report, not as a
// non-zero exit.
func runDigest(cfg *config.Config) {
	if cfg.DigestUserID == "" {
		logger.Fatal("DIGEST_USER_ID is required in digest mode")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc, cleanup, err := bootstrap.NewDigest(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize digest pipeline: %v", err)
	}
	defer cleanup()

	report := svc.Run(ctx, cfg.DigestUserID, cfg.DigestLookback)
	fmt.Print(report.Render())
}

func runAPI(cfg *config.Config) {
	app, cleanup, err := bootstrap.NewAPI(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize API: %v", err)
	}
	defer cleanup()

	serve(cfg, app)
}

// runAll executes one digest cycle, then keeps serving the API over the
// same dependency set.
func runAll(cfg *config.Config) {
	if cfg.DigestUserID == "" {
		logger.Fatal("DIGEST_USER_ID is required in all mode")
	}

	app, digestSvc, cleanup, err := bootstrap.NewAll(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize: %v", err)
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	report := digestSvc.Run(ctx, cfg.DigestUserID, cfg.DigestLookback)
	stop()
	fmt.Print(report.Render())

	serve(cfg, app)
}

// serve runs the Fiber app until SIGINT/SIGTERM, with graceful shutdown.
func serve(cfg *config.Config, app *fiber.App) {
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down API server (timeout: %v)...", shutdownTimeout)

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		done := make(chan error, 1)
		go func() {
			done <- app.Shutdown()
		}()

		select {
		case err := <-done:
			if err != nil {
				logger.Error("Error shutting down: %v", err)
			} else {
				logger.Info("API server shut down gracefully")
			}
		case <-ctx.Done():
			logger.Warn("API shutdown timed out, forcing exit")
		}
	}()

	addr := ":" + cfg.Port
	logger.Info("Starting API server on %s", addr)
	if err := app.Listen(addr); err != nil {
		logger.Fatal("Failed to start server: %v", err)
	}
}

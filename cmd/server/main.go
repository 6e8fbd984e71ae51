package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/smartcity/aqi/internal/bootstrap"
	"github.com/smartcity/aqi/internal/config"
	"github.com/smartcity/aqi/internal/delivery/http"
	"github.com/smartcity/aqi/internal/logging"
)

func main() {
	cfg, err := config.Load(nil)
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	if err := logging.Setup(cfg.LogLevel, cfg.LogFormat); err != nil {
		slog.Error("Invalid logging configuration", "error", err)
		os.Exit(1)
	}

	// Tables are validated and the model loaded before accepting requests
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	predictionSvc, cleanup, err := bootstrap.NewPredictionService(ctx, cfg)
	cancel()
	if err != nil {
		slog.Error("Startup failed", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	// Fiber App
	app := fiber.New(fiber.Config{
		AppName:      "AQI Predictor v1.0",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorHandler: http.ErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	// Routes
	http.SetupRoutes(app, predictionSvc)

	// Graceful shutdown
	go func() {
		slog.Info("Server starting", "port", cfg.Port, "env", cfg.Env)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server...")
	if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
		slog.Warn("Server forced to shutdown", "error", err)
	}
	predictionSvc.WaitBackground()
	slog.Info("Server exited gracefully")
}

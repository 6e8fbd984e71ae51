package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/smartcity/aqi/internal/service"
)

// SetupRoutes configures all HTTP routes
func SetupRoutes(app *fiber.App, predictionSvc *service.PredictionService) {
	handler := NewHandler(predictionSvc)

	// Health check
	app.Get("/health", handler.HealthCheck)

	// API v1 routes
	api := app.Group("/api/v1")
	{
		// Form description
		api.Get("/catalog", handler.GetCatalog)

		api.Post("/predict", handler.Predict)
		api.Post("/classify", handler.Classify)
		api.Get("/predictions", handler.GetPredictions)
	}
}

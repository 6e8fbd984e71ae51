package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/smartcity/aqi/internal/domain"
	"github.com/smartcity/aqi/internal/service"
	"github.com/smartcity/aqi/pkg/utils"
)

// Handler contains all HTTP handlers
type Handler struct {
	predictionSvc *service.PredictionService
}

// NewHandler creates a new handler
func NewHandler(predictionSvc *service.PredictionService) *Handler {
	return &Handler{predictionSvc: predictionSvc}
}

// HealthCheck returns service health status
func (h *Handler) HealthCheck(c *fiber.Ctx) error {
	status, storage, model := "ok", "ok", "ok"
	if err := h.predictionSvc.Health(c.Context()); err != nil {
		status, storage = "degraded", err.Error()
	}
	if err := h.predictionSvc.ModelHealth(c.Context()); err != nil {
		status, model = "degraded", err.Error()
	}

	return c.JSON(fiber.Map{
		"status":       status,
		"service":      "aqi-predictor",
		"version":      "1.0.0",
		"model":        h.predictionSvc.ModelName(),
		"model_status": model,
		"storage":      storage,
	})
}

type formField struct {
	domain.Feature
	Min float64 `json:"min"`
}

// GetCatalog describes the form: inputs in model order, cities and AQI bands
func (h *Handler) GetCatalog(c *fiber.Ctx) error {
	catalog := h.predictionSvc.Catalog()

	fields := make([]formField, 0, len(catalog.Features))
	for _, f := range catalog.Features {
		fields = append(fields, formField{Feature: f})
	}

	data := fiber.Map{
		"variant":  catalog.Variant,
		"features": fields,
		"bands":    h.predictionSvc.Bands(),
	}
	if cities := h.predictionSvc.Cities(); cities != nil {
		data["cities"] = cities.Names()
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}

// Predict accepts a JSON body or a url-encoded form
func (h *Handler) Predict(c *fiber.Ctx) error {
	req, err := h.parsePredictionRequest(c)
	if err != nil {
		return err
	}

	prediction, err := h.predictionSvc.Predict(c.UserContext(), req)
	if err != nil {
		return predictionError(err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    prediction,
	})
}

func (h *Handler) parsePredictionRequest(c *fiber.Ctx) (domain.PredictionRequest, error) {
	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEApplicationForm) {
		req := domain.PredictionRequest{
			City:   c.FormValue("city"),
			Inputs: make(map[string]any),
		}
		for _, f := range h.predictionSvc.Catalog().Features {
			if v := c.FormValue(f.Name); v != "" {
				req.Inputs[f.Name] = v
			}
		}
		return req, nil
	}

	var req domain.PredictionRequest
	if err := c.BodyParser(&req); err != nil {
		return req, fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	return req, nil
}

type classifyRequest struct {
	Value *float64 `json:"value"`
}

// Classify maps a raw AQI value onto its band
func (h *Handler) Classify(c *fiber.Ctx) error {
	var req classifyRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if req.Value == nil {
		return &FieldError{Field: "value", Message: "value is required"}
	}

	class := h.predictionSvc.Classify(*req.Value)
	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"value":          *req.Value,
			"classification": class,
			"message":        service.FormatMessage(*req.Value, class),
		},
	})
}

// GetPredictions returns recently logged predictions
func (h *Handler) GetPredictions(c *fiber.Ctx) error {
	limit := utils.ClampLimit(c.QueryInt("limit", 20), 20, 100)

	data, err := h.predictionSvc.RecentPredictions(c.UserContext(), limit)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch prediction history")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    data,
		"count":   len(data),
	})
}

package http

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/smartcity/aqi/internal/domain"
)

// FieldError is a 400 naming the input field the user has to correct
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return e.Message
}

// ErrorHandler renders every error as {"error": true, "message": ...}
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	body := fiber.Map{
		"error":   true,
		"message": "Internal Server Error",
	}

	var fe *FieldError
	var e *fiber.Error
	switch {
	case errors.As(err, &fe):
		code = fiber.StatusBadRequest
		body["message"] = fe.Message
		body["field"] = fe.Field
	case errors.As(err, &e):
		code = e.Code
		body["message"] = e.Message
	default:
		slog.Error("Unhandled request error", "path", c.Path(), "error", err)
	}

	return c.Status(code).JSON(body)
}

// predictionError maps service errors onto HTTP errors
func predictionError(err error) error {
	var fe *domain.FieldError
	switch {
	case errors.As(err, &fe):
		return &FieldError{Field: fe.Field, Message: fe.Error()}
	case errors.Is(err, domain.ErrUnknownCity):
		return &FieldError{Field: domain.CityFeatureName, Message: "Unknown city; choose one of the listed cities"}
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrRateLimited):
		slog.Warn("Prediction rate limited", "error", err)
		return fiber.NewError(fiber.StatusTooManyRequests, "Too many prediction requests, try again later")
	default:
		slog.Error("Prediction failed", "error", err)
		return fiber.NewError(fiber.StatusBadGateway, "Failed to get prediction")
	}
}

package domain

import (
	"context"
	"time"
)

// InputRecord maps feature name to a measured concentration. It lives for one request.
type InputRecord map[string]float64

// PredictionRequest represents a submitted form
type PredictionRequest struct {
	City string `json:"city,omitempty"`
	// Inputs is loosely typed so a bad value can be reported by field name
	Inputs map[string]any `json:"inputs"`
}

// InputEcho is one row of the submitted-values table
type InputEcho struct {
	Feature string  `json:"feature"`
	Label   string  `json:"label"`
	Value   float64 `json:"value"`
}

// PredictionResponse represents a classified model output
type PredictionResponse struct {
	ID             string         `json:"id"`
	Prediction     float64        `json:"prediction"`
	Classification Classification `json:"classification"`
	Message        string         `json:"message"`
	City           string         `json:"city,omitempty"`
	CityCode       *int           `json:"city_code,omitempty"`
	Inputs         []InputEcho    `json:"inputs"`
	Model          string         `json:"model"`
	Timestamp      time.Time      `json:"timestamp"`
}

// PredictionLog is the persisted form of a prediction
type PredictionLog struct {
	ID         string      `json:"id"`
	Variant    Variant     `json:"variant"`
	City       string      `json:"city,omitempty"`
	Inputs     InputRecord `json:"inputs"`
	Vector     []float64   `json:"vector"`
	Prediction float64     `json:"prediction"`
	Category   string      `json:"category"`
	Model      string      `json:"model"`
	CreatedAt  time.Time   `json:"created_at"`
}

// PredictionRepository defines the interface for prediction log persistence
type PredictionRepository interface {
	// SavePrediction persists a prediction log entry
	SavePrediction(ctx context.Context, entry PredictionLog) error

	// RecentPredictions returns up to limit entries, newest first
	RecentPredictions(ctx context.Context, limit int) ([]PredictionLog, error)

	// Health checks storage connectivity
	Health(ctx context.Context) error
}

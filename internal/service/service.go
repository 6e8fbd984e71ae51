package service

import (
	"github.com/smartcity/aqi/internal/domain"
)

// PredictionRepository is re-exported from domain for convenience
type PredictionRepository = domain.PredictionRepository

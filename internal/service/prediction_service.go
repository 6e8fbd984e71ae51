package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/smartcity/aqi/internal/domain"
	"github.com/smartcity/aqi/pkg/utils"
)

// PredictionService runs assemble → predict → classify and logs the result
type PredictionService struct {
	assembler  *Assembler
	predictor  Predictor
	classifier *Classifier
	repo       PredictionRepository

	wgBg sync.WaitGroup // tracks background log writes for graceful shutdown
}

// NewPredictionService creates a new prediction service
func NewPredictionService(
	assembler *Assembler,
	predictor Predictor,
	classifier *Classifier,
	repo PredictionRepository,
) *PredictionService {
	return &PredictionService{
		assembler:  assembler,
		predictor:  predictor,
		classifier: classifier,
		repo:       repo,
	}
}

// WaitBackground blocks until all background log writes complete.
// Call during graceful shutdown to avoid dropped writes.
func (s *PredictionService) WaitBackground() {
	s.wgBg.Wait()
}

// Predict validates the request, runs the model and classifies its output.
// Input errors are returned before the model is called.
func (s *PredictionService) Predict(ctx context.Context, req domain.PredictionRequest) (domain.PredictionResponse, error) {
	record, err := ParseInputs(req.Inputs)
	if err != nil {
		return domain.PredictionResponse{}, err
	}

	// Callers may pass strings backed by reused request buffers and the log
	// entry outlives the call.
	city := strings.Clone(strings.TrimSpace(req.City))

	vector, err := s.assembler.Assemble(record, city)
	if err != nil {
		return domain.PredictionResponse{}, err
	}

	prediction, err := s.predictor.Predict(ctx, vector)
	if err != nil {
		return domain.PredictionResponse{}, fmt.Errorf("prediction: model %s failed: %w", s.predictor.Name(), err)
	}

	class := s.classifier.Classify(prediction)
	if !class.Known() {
		slog.Warn("Prediction outside AQI bands", "prediction", prediction, "model", s.predictor.Name())
	}

	resp := domain.PredictionResponse{
		ID:             uuid.NewString(),
		Prediction:     prediction,
		Classification: class,
		Message:        FormatMessage(prediction, class),
		Inputs:         s.assembler.Echo(record),
		Model:          s.predictor.Name(),
		Timestamp:      time.Now().UTC(),
	}
	if s.assembler.Catalog().CityAware {
		code := int(vector[0])
		resp.City = city
		resp.CityCode = &code
	}

	s.logPrediction(domain.PredictionLog{
		ID:         resp.ID,
		Variant:    s.assembler.Catalog().Variant,
		City:       resp.City,
		Inputs:     record,
		Vector:     vector,
		Prediction: prediction,
		Category:   class.Label,
		Model:      resp.Model,
		CreatedAt:  resp.Timestamp,
	})

	return resp, nil
}

// logPrediction persists asynchronously; failures are logged, never returned
func (s *PredictionService) logPrediction(entry domain.PredictionLog) {
	s.wgBg.Add(1)
	go func() {
		defer s.wgBg.Done()
		bgCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.repo.SavePrediction(bgCtx, entry); err != nil {
			slog.Error("Failed to save prediction log", "id", entry.ID, "error", err)
		}
	}()
}

// Classify exposes the classifier for raw values
func (s *PredictionService) Classify(p float64) domain.Classification {
	return s.classifier.Classify(p)
}

// RecentPredictions returns logged predictions, newest first
func (s *PredictionService) RecentPredictions(ctx context.Context, limit int) ([]domain.PredictionLog, error) {
	return s.repo.RecentPredictions(ctx, limit)
}

// Health checks the prediction log storage
func (s *PredictionService) Health(ctx context.Context) error {
	return s.repo.Health(ctx)
}

// ModelHealth checks the predictor when it can report its own health.
// Local models always report healthy.
func (s *PredictionService) ModelHealth(ctx context.Context) error {
	hc, ok := s.predictor.(HealthChecker)
	if !ok {
		return nil
	}
	return hc.Health(ctx)
}

// Catalog returns the active feature catalog
func (s *PredictionService) Catalog() domain.FeatureCatalog {
	return s.assembler.Catalog()
}

// Cities returns the city lookup, nil for the standard variant
func (s *PredictionService) Cities() domain.CityLookup {
	return s.assembler.Cities()
}

// Bands returns the AQI band table
func (s *PredictionService) Bands() domain.BandTable {
	return s.classifier.Bands()
}

// ModelName returns the name of the active predictor
func (s *PredictionService) ModelName() string {
	return s.predictor.Name()
}

// FormatMessage renders the user-facing prediction sentence
func FormatMessage(prediction float64, class domain.Classification) string {
	value := strconv.FormatFloat(utils.RoundTo(prediction, 2), 'f', -1, 64)
	return fmt.Sprintf("The predicted AQI is: %s, which falls in the category of '%s' %s.",
		value, class.Label, class.Indicator)
}

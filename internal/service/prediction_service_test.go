package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartcity/aqi/internal/domain"
	"github.com/smartcity/aqi/internal/repository/memory"
)

// stubPredictor returns a fixed value and records the vectors it saw
type stubPredictor struct {
	mu      sync.Mutex
	value   float64
	err     error
	vectors [][]float64
}

func (s *stubPredictor) Predict(_ context.Context, vector []float64) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vectors = append(s.vectors, vector)
	return s.value, s.err
}

func (s *stubPredictor) Name() string { return "stub" }

func (s *stubPredictor) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.vectors)
}

func newTestService(t *testing.T, catalog domain.FeatureCatalog, predictor Predictor) (*PredictionService, *memory.Repository) {
	t.Helper()
	assembler, err := NewAssembler(catalog, domain.DefaultCities())
	require.NoError(t, err)
	classifier, err := NewClassifier(domain.DefaultBands())
	require.NoError(t, err)
	repo := memory.NewRepository(10)
	return NewPredictionService(assembler, predictor, classifier, repo), repo
}

func toRaw(record domain.InputRecord) map[string]any {
	raw := make(map[string]any, len(record))
	for k, v := range record {
		raw[k] = v
	}
	return raw
}

func TestPredictionService_EndToEnd(t *testing.T) {
	stub := &stubPredictor{value: 42}
	svc, repo := newTestService(t, domain.StandardCatalog(), stub)
	ctx := context.Background()

	resp, err := svc.Predict(ctx, domain.PredictionRequest{Inputs: toRaw(standardRecord())})
	require.NoError(t, err)

	assert.Equal(t, 42.0, resp.Prediction)
	assert.Equal(t, "Good", resp.Classification.Label)
	assert.Equal(t, "😊", resp.Classification.Indicator)
	assert.Equal(t, "The predicted AQI is: 42, which falls in the category of 'Good' 😊.", resp.Message)
	assert.Len(t, resp.Inputs, 11)
	assert.Nil(t, resp.CityCode)
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, "stub", resp.Model)

	svc.WaitBackground()
	logs, err := repo.RecentPredictions(ctx, 5)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, resp.ID, logs[0].ID)
	assert.Equal(t, domain.VariantStandard, logs[0].Variant)
	assert.Equal(t, "Good", logs[0].Category)
	assert.Equal(t, []float64{10, 20, 5, 15, 20, 2, 1, 3, 30, 0, 0}, logs[0].Vector)
}

func TestPredictionService_CityVariant(t *testing.T) {
	stub := &stubPredictor{value: 180}
	svc, _ := newTestService(t, domain.CityCatalog(), stub)

	resp, err := svc.Predict(context.Background(), domain.PredictionRequest{
		City:   "Delhi",
		Inputs: toRaw(cityRecord()),
	})
	require.NoError(t, err)
	svc.WaitBackground()

	require.Equal(t, 1, stub.calls())
	assert.Equal(t, float64(10), stub.vectors[0][0])
	require.NotNil(t, resp.CityCode)
	assert.Equal(t, 10, *resp.CityCode)
	assert.Equal(t, "Delhi", resp.City)
	assert.Equal(t, "Unhealthy", resp.Classification.Label)
}

func TestPredictionService_InputErrorsSkipModel(t *testing.T) {
	stub := &stubPredictor{value: 42}
	svc, _ := newTestService(t, domain.CityCatalog(), stub)
	ctx := context.Background()

	_, err := svc.Predict(ctx, domain.PredictionRequest{City: "Atlantis", Inputs: toRaw(cityRecord())})
	assert.ErrorIs(t, err, domain.ErrUnknownCity)

	raw := toRaw(cityRecord())
	raw["CO"] = "lots"
	_, err = svc.Predict(ctx, domain.PredictionRequest{City: "Delhi", Inputs: raw})
	var fe *domain.FieldError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "CO", fe.Field)

	assert.Zero(t, stub.calls())
}

func TestPredictionService_OutOfRangeIsUnknown(t *testing.T) {
	svc, _ := newTestService(t, domain.StandardCatalog(), &stubPredictor{value: 612.3})

	resp, err := svc.Predict(context.Background(), domain.PredictionRequest{Inputs: toRaw(standardRecord())})
	require.NoError(t, err)
	svc.WaitBackground()

	assert.Equal(t, "Unknown", resp.Classification.Label)
	assert.Equal(t, domain.UnknownIndicator, resp.Classification.Indicator)
	assert.Contains(t, resp.Message, "612.3")
}

func TestPredictionService_ModelFailure(t *testing.T) {
	stub := &stubPredictor{err: domain.ErrModelUnavailable}
	svc, repo := newTestService(t, domain.StandardCatalog(), stub)

	_, err := svc.Predict(context.Background(), domain.PredictionRequest{Inputs: toRaw(standardRecord())})
	assert.ErrorIs(t, err, domain.ErrModelUnavailable)

	svc.WaitBackground()
	logs, err := repo.RecentPredictions(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func TestPredictionService_ConcurrentRequests(t *testing.T) {
	svc, repo := newTestService(t, domain.StandardCatalog(), &stubPredictor{value: 75})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := svc.Predict(context.Background(), domain.PredictionRequest{Inputs: toRaw(standardRecord())})
			assert.NoError(t, err)
			assert.Equal(t, "Moderate", resp.Classification.Label)
		}()
	}
	wg.Wait()
	svc.WaitBackground()

	logs, err := repo.RecentPredictions(context.Background(), 100)
	require.NoError(t, err)
	assert.Len(t, logs, 8)
}

func TestRateLimitedPredictor(t *testing.T) {
	stub := &stubPredictor{value: 1}
	limited := NewRateLimitedPredictor(stub, 1, 1)
	assert.Equal(t, "stub [Rate Limited]", limited.Name())

	ctx := context.Background()
	_, err := limited.Predict(ctx, []float64{1})
	require.NoError(t, err)

	// The bucket is empty now; a short deadline cannot be met.
	short, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()
	_, err = limited.Predict(short, []float64{1})
	assert.ErrorIs(t, err, domain.ErrRateLimited)
	assert.Equal(t, 1, stub.calls())
}

type healthyStub struct {
	stubPredictor
	err error
}

func (h *healthyStub) Health(context.Context) error { return h.err }

func TestPredictionService_ModelHealth(t *testing.T) {
	svc, _ := newTestService(t, domain.StandardCatalog(), &stubPredictor{})
	assert.NoError(t, svc.ModelHealth(context.Background()))

	down := &healthyStub{err: domain.ErrModelUnavailable}
	svc, _ = newTestService(t, domain.StandardCatalog(), NewRateLimitedPredictor(down, 10, 1))
	assert.ErrorIs(t, svc.ModelHealth(context.Background()), domain.ErrModelUnavailable)

	down.err = nil
	assert.NoError(t, svc.ModelHealth(context.Background()))
}

func TestPredictionService_CityIsTrimmed(t *testing.T) {
	svc, repo := newTestService(t, domain.CityCatalog(), &stubPredictor{value: 80})
	ctx := context.Background()

	resp, err := svc.Predict(ctx, domain.PredictionRequest{City: "  Delhi\t", Inputs: toRaw(cityRecord())})
	require.NoError(t, err)
	assert.Equal(t, "Delhi", resp.City)
	require.NotNil(t, resp.CityCode)
	assert.Equal(t, 10, *resp.CityCode)

	svc.WaitBackground()
	logs, err := repo.RecentPredictions(ctx, 1)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "Delhi", logs[0].City)

	_, err = svc.Predict(ctx, domain.PredictionRequest{City: "   ", Inputs: toRaw(cityRecord())})
	var fe *domain.FieldError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, domain.CityFeatureName, fe.Field)
	assert.Equal(t, "is required", fe.Reason)
}

func TestPredictionService_LoggedCityOwnsItsMemory(t *testing.T) {
	svc, repo := newTestService(t, domain.CityCatalog(), &stubPredictor{value: 80})
	ctx := context.Background()

	// Reuse one buffer the way fasthttp does between requests.
	buf := []byte("Patna")
	city := unsafe.String(&buf[0], len(buf))
	_, err := svc.Predict(ctx, domain.PredictionRequest{City: city, Inputs: toRaw(cityRecord())})
	require.NoError(t, err)
	svc.WaitBackground()
	copy(buf, "Kochi")

	logs, err := repo.RecentPredictions(ctx, 1)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "Patna", logs[0].City)
}

func TestFormatMessage(t *testing.T) {
	msg := FormatMessage(123.456, domain.Classification{Label: "Unhealthy for Sensitive Groups", Indicator: "😷"})
	assert.Equal(t, "The predicted AQI is: 123.46, which falls in the category of 'Unhealthy for Sensitive Groups' 😷.", msg)
}

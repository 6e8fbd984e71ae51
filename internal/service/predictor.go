package service

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/smartcity/aqi/internal/domain"
)

// Predictor is a regression model: feature vector in, AQI out.
// Implementations must be safe for concurrent use.
type Predictor interface {
	Predict(ctx context.Context, vector []float64) (float64, error)
	Name() string
}

// HealthChecker is implemented by predictors backed by a remote service
type HealthChecker interface {
	Health(ctx context.Context) error
}

// RateLimitedPredictor wraps a Predictor with a token bucket
type RateLimitedPredictor struct {
	predictor Predictor
	limiter   *rate.Limiter
	name      string
}

// NewRateLimitedPredictor creates a rate limited predictor.
// rps may be fractional; burst is the maximum burst size.
func NewRateLimitedPredictor(predictor Predictor, rps float64, burst int) *RateLimitedPredictor {
	return &RateLimitedPredictor{
		predictor: predictor,
		limiter:   rate.NewLimiter(rate.Limit(rps), burst),
		name:      fmt.Sprintf("%s [Rate Limited]", predictor.Name()),
	}
}

// Predict waits for a token, then forwards to the wrapped predictor
func (r *RateLimitedPredictor) Predict(ctx context.Context, vector []float64) (float64, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return 0, fmt.Errorf("%w: wait canceled: %v", domain.ErrRateLimited, err)
	}
	return r.predictor.Predict(ctx, vector)
}

// Health forwards to the wrapped predictor when it reports health
func (r *RateLimitedPredictor) Health(ctx context.Context) error {
	if hc, ok := r.predictor.(HealthChecker); ok {
		return hc.Health(ctx)
	}
	return nil
}

// Name returns the predictor name
func (r *RateLimitedPredictor) Name() string {
	return r.name
}

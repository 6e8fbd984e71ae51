package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/smartcity/aqi/internal/domain"
)

const healthTimeout = 5 * time.Second

// MLBridge handles communication with an external model server
type MLBridge struct {
	serviceURL string
	httpClient *http.Client
}

// NewMLBridge creates a new ML bridge
func NewMLBridge(serviceURL string) *MLBridge {
	return &MLBridge{
		serviceURL: serviceURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type bridgeRequest struct {
	Features []float64 `json:"features"`
}

type bridgeResponse struct {
	Prediction *float64 `json:"prediction"`
}

// Predict calls the model server with a single feature vector
func (b *MLBridge) Predict(ctx context.Context, vector []float64) (float64, error) {
	body, err := json.Marshal(bridgeRequest{Features: vector})
	if err != nil {
		return 0, fmt.Errorf("ml_bridge: failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/predict", b.serviceURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("ml_bridge: failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := b.httpClient.Do(httpReq)
	if err != nil {
		return 0, fmt.Errorf("ml_bridge: %w: %v", domain.ErrModelUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("ml_bridge: %w: status %d", domain.ErrModelUnavailable, resp.StatusCode)
	}

	var prediction bridgeResponse
	if err := json.NewDecoder(resp.Body).Decode(&prediction); err != nil {
		return 0, fmt.Errorf("ml_bridge: failed to decode response: %w", err)
	}
	if prediction.Prediction == nil {
		return 0, fmt.Errorf("ml_bridge: %w: response has no prediction", domain.ErrModelUnavailable)
	}

	return *prediction.Prediction, nil
}

// Health reports whether the model server answers its health endpoint.
// /health is served with a 503 while the server is down.
func (b *MLBridge) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.serviceURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("ml_bridge: %w: %v", domain.ErrModelUnavailable, err)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ml_bridge: %w: %v", domain.ErrModelUnavailable, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ml_bridge: %w: health status %d", domain.ErrModelUnavailable, resp.StatusCode)
	}
	return nil
}

// Name returns the model server URL
func (b *MLBridge) Name() string {
	return b.serviceURL
}

package memory

import (
	"context"
	"sync"

	"github.com/smartcity/aqi/internal/domain"
)

// DefaultCapacity bounds how many predictions are retained
const DefaultCapacity = 1000

// Repository implements domain.PredictionRepository in process memory.
// It backs demo mode when no database is configured.
type Repository struct {
	mu       sync.RWMutex
	entries  []domain.PredictionLog
	capacity int
}

// NewRepository creates a repository retaining at most capacity entries
func NewRepository(capacity int) *Repository {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	return &Repository{capacity: capacity}
}

// SavePrediction appends an entry, evicting the oldest once full
func (r *Repository) SavePrediction(ctx context.Context, entry domain.PredictionLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = append(r.entries, entry)
	if over := len(r.entries) - r.capacity; over > 0 {
		r.entries = append(r.entries[:0:0], r.entries[over:]...)
	}
	return nil
}

// RecentPredictions returns up to limit entries, newest first
func (r *Repository) RecentPredictions(ctx context.Context, limit int) ([]domain.PredictionLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := len(r.entries)
	if limit < n {
		n = limit
	}
	out := make([]domain.PredictionLog, 0, n)
	for i := len(r.entries) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, r.entries[i])
	}
	return out, nil
}

// Health always returns nil in memory mode
func (r *Repository) Health(ctx context.Context) error {
	return nil
}

package memory

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartcity/aqi/internal/domain"
)

func TestRepository_RecentPredictions(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(3)

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.SavePrediction(ctx, domain.PredictionLog{ID: fmt.Sprintf("p%d", i)}))
	}

	got, err := repo.RecentPredictions(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "p4", got[0].ID)
	assert.Equal(t, "p2", got[2].ID)

	got, err = repo.RecentPredictions(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "p4", got[0].ID)

	assert.NoError(t, repo.Health(ctx))
}

func TestNewRepository_DefaultCapacity(t *testing.T) {
	assert.Equal(t, DefaultCapacity, NewRepository(0).capacity)
}

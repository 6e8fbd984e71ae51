package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/smartcity/aqi/internal/domain"
)

const schema = `
	CREATE TABLE IF NOT EXISTS prediction_logs (
		id          UUID PRIMARY KEY,
		variant     TEXT NOT NULL,
		city        TEXT,
		inputs      JSONB NOT NULL,
		vector      DOUBLE PRECISION[] NOT NULL,
		prediction  DOUBLE PRECISION NOT NULL,
		category    TEXT NOT NULL,
		model       TEXT NOT NULL,
		created_at  TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS prediction_logs_created_at_idx ON prediction_logs (created_at DESC);
`

// PostgresRepository implements domain.PredictionRepository
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Migrate creates the prediction_logs table if it does not exist
func (r *PostgresRepository) Migrate(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("postgres: failed to migrate: %w", err)
	}
	return nil
}

// SavePrediction persists a prediction to PostgreSQL
func (r *PostgresRepository) SavePrediction(ctx context.Context, entry domain.PredictionLog) error {
	query := `
		INSERT INTO prediction_logs (
			id, variant, city, inputs, vector, prediction, category, model, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	inputs, err := json.Marshal(entry.Inputs)
	if err != nil {
		return fmt.Errorf("postgres: failed to encode inputs: %w", err)
	}

	// NULL rather than empty string for the standard variant
	var city interface{}
	if entry.City != "" {
		city = entry.City
	}

	_, err = r.pool.Exec(ctx, query,
		entry.ID, string(entry.Variant), city, inputs, entry.Vector,
		entry.Prediction, entry.Category, entry.Model, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: failed to save prediction log: %w", err)
	}

	return nil
}

// RecentPredictions retrieves the newest prediction logs
func (r *PostgresRepository) RecentPredictions(ctx context.Context, limit int) ([]domain.PredictionLog, error) {
	query := `
		SELECT id::text, variant, COALESCE(city, ''), inputs, vector,
			   prediction, category, model, created_at
		FROM prediction_logs
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query prediction logs: %w", err)
	}
	defer rows.Close()

	var results []domain.PredictionLog
	for rows.Next() {
		var (
			p       domain.PredictionLog
			variant string
			inputs  []byte
		)
		err := rows.Scan(
			&p.ID, &variant, &p.City, &inputs, &p.Vector,
			&p.Prediction, &p.Category, &p.Model, &p.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("postgres: failed to scan prediction row: %w", err)
		}
		p.Variant = domain.Variant(variant)
		if err := json.Unmarshal(inputs, &p.Inputs); err != nil {
			return nil, fmt.Errorf("postgres: failed to decode inputs: %w", err)
		}
		results = append(results, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: failed to iterate prediction rows: %w", err)
	}

	return results, nil
}

// Health checks database connectivity
func (r *PostgresRepository) Health(ctx context.Context) error {
	if err := r.pool.Ping(ctx); err != nil {
		return fmt.Errorf("postgres: health check failed: %w", err)
	}
	return nil
}

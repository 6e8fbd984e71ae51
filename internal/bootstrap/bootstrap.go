// Package bootstrap wires configuration into a ready prediction service.
// Lookup tables are validated and the model is loaded here, once per process.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/smartcity/aqi/internal/config"
	"github.com/smartcity/aqi/internal/domain"
	"github.com/smartcity/aqi/internal/repository/memory"
	"github.com/smartcity/aqi/internal/repository/postgres"
	"github.com/smartcity/aqi/internal/repository/sqlite"
	"github.com/smartcity/aqi/internal/service"
)

// NewPredictor returns the model bridge when ML_SERVICE_URL is set, otherwise
// the local artifact. Either is rate limited when PREDICT_RATE_LIMIT > 0.
func NewPredictor(cfg *config.Config, catalog domain.FeatureCatalog) (service.Predictor, error) {
	var predictor service.Predictor
	if cfg.MLServiceURL != "" {
		predictor = service.NewMLBridge(cfg.MLServiceURL)
	} else {
		model, err := service.LoadForestModel(cfg.ModelPath, catalog)
		if err != nil {
			return nil, err
		}
		predictor = model
	}

	if cfg.RateLimit > 0 {
		predictor = service.NewRateLimitedPredictor(predictor, cfg.RateLimit, cfg.RateBurst)
	}
	return predictor, nil
}

// NewRepository opens the prediction log backend selected by DATABASE_URL.
// An unreachable Postgres falls back to memory so predictions keep working.
func NewRepository(ctx context.Context, cfg *config.Config) (service.PredictionRepository, func(), error) {
	kind, dsn := cfg.Storage()
	switch kind {
	case config.StorageSQLite:
		repo, err := sqlite.Open(ctx, dsn)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("Using SQLite prediction log", "path", dsn)
		return repo, func() { _ = repo.Close() }, nil

	case config.StoragePostgres:
		pool, err := pgxpool.New(ctx, dsn)
		if err == nil {
			err = pool.Ping(ctx)
		}
		if err != nil {
			if pool != nil {
				pool.Close()
			}
			slog.Warn("Could not connect to database, using in-memory prediction log", "error", err)
			return memory.NewRepository(memory.DefaultCapacity), func() {}, nil
		}
		repo := postgres.NewPostgresRepository(pool)
		if err := repo.Migrate(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		slog.Info("Connected to PostgreSQL")
		return repo, pool.Close, nil
	}

	return memory.NewRepository(memory.DefaultCapacity), func() {}, nil
}

// NewPredictionService validates the static tables, loads the model and
// opens storage. The returned cleanup closes storage.
func NewPredictionService(ctx context.Context, cfg *config.Config) (*service.PredictionService, func(), error) {
	catalog, err := domain.CatalogFor(cfg.Variant)
	if err != nil {
		return nil, nil, err
	}

	assembler, err := service.NewAssembler(catalog, domain.DefaultCities())
	if err != nil {
		return nil, nil, err
	}
	classifier, err := service.NewClassifier(domain.DefaultBands())
	if err != nil {
		return nil, nil, err
	}

	predictor, err := NewPredictor(cfg, catalog)
	if err != nil {
		return nil, nil, fmt.Errorf("bootstrap: failed to load model: %w", err)
	}
	slog.Info("Model ready", "model", predictor.Name(), "variant", catalog.Variant, "features", catalog.VectorLen())

	repo, cleanup, err := NewRepository(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("bootstrap: failed to open storage: %w", err)
	}

	svc := service.NewPredictionService(assembler, predictor, classifier, repo)
	if err := svc.ModelHealth(ctx); err != nil {
		slog.Warn("Model server not healthy, predictions will fail until it recovers", "error", err)
	}
	return svc, cleanup, nil
}

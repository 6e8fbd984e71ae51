package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/smartcity/aqi/internal/domain"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// timeLayout is fixed-width so created_at sorts lexically
const timeLayout = "2006-01-02T15:04:05.000000000Z"

const schema = `
	CREATE TABLE IF NOT EXISTS prediction_logs (
		id          TEXT PRIMARY KEY,
		variant     TEXT NOT NULL,
		city        TEXT NOT NULL DEFAULT '',
		inputs      TEXT NOT NULL,
		vector      TEXT NOT NULL,
		prediction  REAL NOT NULL,
		category    TEXT NOT NULL,
		model       TEXT NOT NULL,
		created_at  TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_prediction_logs_created_at ON prediction_logs (created_at);
`

// Repository implements domain.PredictionRepository using SQLite
type Repository struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at dbPath and migrates it.
// ":memory:" opens a private in-memory database.
func Open(ctx context.Context, dbPath string) (*Repository, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("sqlite: database path is empty")
	}

	dsn := dbPath
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0750); err != nil {
			return nil, fmt.Errorf("sqlite: failed to create database directory: %w", err)
		}
		dsn = dbPath + "?_journal_mode=WAL&_busy_timeout=5000"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to open database: %w", err)
	}

	// SQLite doesn't benefit from multiple connections; one also keeps :memory: shared
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: failed to ping database: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: failed to migrate: %w", err)
	}

	return &Repository{db: db}, nil
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.db.Close()
}

// SavePrediction persists a prediction log entry
func (r *Repository) SavePrediction(ctx context.Context, entry domain.PredictionLog) error {
	inputs, err := json.Marshal(entry.Inputs)
	if err != nil {
		return fmt.Errorf("sqlite: failed to encode inputs: %w", err)
	}
	vector, err := json.Marshal(entry.Vector)
	if err != nil {
		return fmt.Errorf("sqlite: failed to encode vector: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO prediction_logs (
			id, variant, city, inputs, vector, prediction, category, model, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, string(entry.Variant), entry.City, string(inputs), string(vector),
		entry.Prediction, entry.Category, entry.Model, entry.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("sqlite: failed to save prediction log: %w", err)
	}
	return nil
}

// RecentPredictions returns up to limit entries, newest first
func (r *Repository) RecentPredictions(ctx context.Context, limit int) ([]domain.PredictionLog, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, variant, city, inputs, vector, prediction, category, model, created_at
		FROM prediction_logs
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to query prediction logs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []domain.PredictionLog
	for rows.Next() {
		var (
			p                                  domain.PredictionLog
			variant, inputs, vector, createdAt string
		)
		if err := rows.Scan(&p.ID, &variant, &p.City, &inputs, &vector,
			&p.Prediction, &p.Category, &p.Model, &createdAt); err != nil {
			return nil, fmt.Errorf("sqlite: failed to scan prediction row: %w", err)
		}
		p.Variant = domain.Variant(variant)
		if err := json.Unmarshal([]byte(inputs), &p.Inputs); err != nil {
			return nil, fmt.Errorf("sqlite: failed to decode inputs: %w", err)
		}
		if err := json.Unmarshal([]byte(vector), &p.Vector); err != nil {
			return nil, fmt.Errorf("sqlite: failed to decode vector: %w", err)
		}
		if p.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
			return nil, fmt.Errorf("sqlite: failed to parse created_at: %w", err)
		}
		results = append(results, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: failed to iterate prediction rows: %w", err)
	}

	return results, nil
}

// Health checks database connectivity
func (r *Repository) Health(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("sqlite: health check failed: %w", err)
	}
	return nil
}

package store

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/lib/pq"

	"github.com/Krimson/neorisk-monitor/neorisk/internal/models"
)

const postgresSchema = `
	CREATE TABLE IF NOT EXISTS prediction_history (
		id                   TEXT PRIMARY KEY,
		ts                   TIMESTAMPTZ NOT NULL,
		baby_name            TEXT NOT NULL DEFAULT '',
		baby_gender          TEXT NOT NULL DEFAULT '',
		baby_age             INTEGER NOT NULL DEFAULT 0,
		models_used          JSONB NOT NULL DEFAULT '[]',
		consensus            TEXT NOT NULL,
		consensus_confidence DOUBLE PRECISION NOT NULL,
		healthy_count        INTEGER NOT NULL,
		at_risk_count        INTEGER NOT NULL,
		avg_response_time    DOUBLE PRECISION NOT NULL,
		risk_factors_count   INTEGER NOT NULL DEFAULT 0,
		notes                TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_prediction_history_ts ON prediction_history(ts DESC);
`

// PostgresStore keeps the history in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore wraps an open connection and creates the schema.
func NewPostgresStore(ctx context.Context, db *sql.DB) (*PostgresStore, error) {
	if _, err := db.ExecContext(ctx, postgresSchema); err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// NewPostgresStoreFromDSN opens, pings and migrates the database.
func NewPostgresStoreFromDSN(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	s, err := NewPostgresStore(ctx, db)
	if err != nil {
		db.Close()
		return nil, err
	}
	log.Printf("[INFO] [STORE] Connected to PostgreSQL")
	return s, nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) Create(ctx context.Context, entry models.HistoryEntry) (string, error) {
	assignID(&entry)

	modelsJSON, err := marshalModels(entry.ModelsUsed)
	if err != nil {
		return "", err
	}

	query := `
		INSERT INTO prediction_history (id, ts, baby_name, baby_gender, baby_age, models_used,
			consensus, consensus_confidence, healthy_count, at_risk_count, avg_response_time,
			risk_factors_count, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err = s.db.ExecContext(ctx, query,
		entry.ID,
		entry.Timestamp.UTC(),
		entry.BabyName,
		entry.BabyGender,
		entry.BabyAge,
		modelsJSON,
		string(entry.Consensus),
		entry.ConsensusConfidence,
		entry.HealthyCount,
		entry.AtRiskCount,
		entry.AvgResponseTime,
		entry.RiskFactorsCount,
		entry.Notes,
	)
	if err != nil {
		return "", fmt.Errorf("failed to create history entry: %w", err)
	}

	return entry.ID, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]models.HistoryEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM prediction_history ORDER BY ts DESC, id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	return scanEntries(rows)
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM prediction_history WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete history entry: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return notFound(id)
	}
	return nil
}

func (s *PostgresStore) DeleteAll(ctx context.Context) (int, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM prediction_history`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear history: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return int(rowsAffected), nil
}

package store

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	_ "github.com/mattn/go-sqlite3"

	"github.com/Krimson/neorisk-monitor/neorisk/internal/models"
)

const sqliteSchema = `
	CREATE TABLE IF NOT EXISTS prediction_history (
		id                   TEXT PRIMARY KEY,
		ts                   DATETIME NOT NULL,
		baby_name            TEXT NOT NULL DEFAULT '',
		baby_gender          TEXT NOT NULL DEFAULT '',
		baby_age             INTEGER NOT NULL DEFAULT 0,
		models_used          TEXT NOT NULL DEFAULT '[]',
		consensus            TEXT NOT NULL,
		consensus_confidence REAL NOT NULL,
		healthy_count        INTEGER NOT NULL,
		at_risk_count        INTEGER NOT NULL,
		avg_response_time    REAL NOT NULL,
		risk_factors_count   INTEGER NOT NULL DEFAULT 0,
		notes                TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_prediction_history_ts ON prediction_history(ts);
`

// SQLiteStore keeps the history in a local SQLite file for development and tests.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens path and creates the schema.
func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite %s: %w", path, err)
	}
	// single writer keeps SQLite out of "database is locked"
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	log.Printf("[INFO] [STORE] Using SQLite at %s", path)
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Create(ctx context.Context, entry models.HistoryEntry) (string, error) {
	assignID(&entry)

	modelsJSON, err := marshalModels(entry.ModelsUsed)
	if err != nil {
		return "", err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO prediction_history (id, ts, baby_name, baby_gender, baby_age, models_used,
			consensus, consensus_confidence, healthy_count, at_risk_count, avg_response_time,
			risk_factors_count, notes)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.Timestamp.UTC(),
		entry.BabyName,
		entry.BabyGender,
		entry.BabyAge,
		string(modelsJSON),
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

func (s *SQLiteStore) List(ctx context.Context) ([]models.HistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+entryColumns+` FROM prediction_history ORDER BY ts DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	return scanEntries(rows)
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM prediction_history WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete history entry: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return notFound(id)
	}
	return nil
}

func (s *SQLiteStore) DeleteAll(ctx context.Context) (int, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM prediction_history`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear history: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return int(n), nil
}

// Package store persists history entries as an ordered append/read/delete log.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/Krimson/neorisk-monitor/neorisk/internal/models"
)

// HistoryStore is the persistence contract of the prediction log.
type HistoryStore interface {
	// Create stores entry and returns its id. An empty entry.ID is replaced
	// by a generated one.
	Create(ctx context.Context, entry models.HistoryEntry) (string, error)
	// List returns every entry, newest first.
	List(ctx context.Context) ([]models.HistoryEntry, error)
	// Delete removes one entry or returns models.ErrNotFound.
	Delete(ctx context.Context, id string) error
	// DeleteAll removes every entry and reports how many were removed.
	DeleteAll(ctx context.Context) (int, error)
	Close() error
}

func assignID(entry *models.HistoryEntry) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
}

func notFound(id string) error {
	return fmt.Errorf("%w: history entry %s", models.ErrNotFound, id)
}

// scanner is satisfied by *sql.Rows and *sql.Row.
type scanner interface {
	Scan(dest ...any) error
}

// entryColumns is the select list shared by both SQL backends.
const entryColumns = `id, ts, baby_name, baby_gender, baby_age, models_used, consensus,
		consensus_confidence, healthy_count, at_risk_count, avg_response_time,
		risk_factors_count, notes`

func scanEntry(s scanner) (models.HistoryEntry, error) {
	var e models.HistoryEntry
	var modelsJSON []byte
	var consensus string

	err := s.Scan(
		&e.ID,
		&e.Timestamp,
		&e.BabyName,
		&e.BabyGender,
		&e.BabyAge,
		&modelsJSON,
		&consensus,
		&e.ConsensusConfidence,
		&e.HealthyCount,
		&e.AtRiskCount,
		&e.AvgResponseTime,
		&e.RiskFactorsCount,
		&e.Notes,
	)
	if err != nil {
		return e, fmt.Errorf("failed to scan history entry: %w", err)
	}

	if err := json.Unmarshal(modelsJSON, &e.ModelsUsed); err != nil {
		return e, fmt.Errorf("failed to unmarshal models_used of %s: %w", e.ID, err)
	}
	e.Consensus = models.Verdict(consensus)
	return e, nil
}

func scanEntries(rows *sql.Rows) ([]models.HistoryEntry, error) {
	defer rows.Close()

	entries := []models.HistoryEntry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate history entries: %w", err)
	}
	return entries, nil
}

func marshalModels(used []models.ModelID) ([]byte, error) {
	if used == nil {
		used = []models.ModelID{}
	}
	data, err := json.Marshal(used)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal models_used: %w", err)
	}
	return data, nil
}

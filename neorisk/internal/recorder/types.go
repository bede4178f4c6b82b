package recorder

import (
	"context"
	"log"

	"github.com/Krimson/neorisk-monitor/neorisk/internal/models"
)

// Writer persists one entry and returns its id. store.HistoryStore satisfies it.
type Writer interface {
	Create(ctx context.Context, entry models.HistoryEntry) (string, error)
}

// Sink receives every entry after it has been written, id included.
type Sink interface {
	Consume(ctx context.Context, entry models.HistoryEntry) error
}

// Stats are the recorder counters since start.
type Stats struct {
	Queued  int64 `json:"queued"`
	Written int64 `json:"written"`
	Failed  int64 `json:"failed"`
	Dropped int64 `json:"dropped"`
}

// LogSink logs each written entry.
type LogSink struct{}

func (ls *LogSink) Consume(ctx context.Context, e models.HistoryEntry) error {
	log.Printf("[RECORD] id=%s consensus=%s confidence=%.1f models=%d ts=%s",
		e.ID,
		e.Consensus,
		e.ConsensusConfidence,
		len(e.ModelsUsed),
		e.Timestamp.Format("2006-01-02T15:04:05Z07:00"))
	return nil
}

package stats

import (
	"time"

	"github.com/Krimson/neorisk-monitor/neorisk/internal/models"
)

// TrendDirection describes how the Healthy rate moved week over week.
type TrendDirection string

const (
	TrendImproving TrendDirection = "improving"
	TrendStable    TrendDirection = "stable"
	TrendDeclining TrendDirection = "declining"
)

// TrendThreshold is the Healthy-rate delta (as a fraction) needed to leave stable.
const TrendThreshold = 0.10

// Trend compares the Healthy rate of [now-7d, now] with [now-14d, now-7d).
// An empty window counts as rate 0.
func Trend(entries []models.HistoryEntry, now time.Time) TrendDirection {
	recentStart := now.Add(-window)
	previousStart := now.Add(-2 * window)

	var recent, previous rate
	for _, e := range entries {
		switch {
		case !e.Timestamp.Before(recentStart):
			recent.add(e)
		case !e.Timestamp.Before(previousStart):
			previous.add(e)
		}
	}

	return Classify(recent.value(), previous.value())
}

// Classify maps two Healthy rates in [0,1] to a direction.
func Classify(recent, previous float64) TrendDirection {
	switch {
	case recent > previous+TrendThreshold:
		return TrendImproving
	case recent < previous-TrendThreshold:
		return TrendDeclining
	}
	return TrendStable
}

type rate struct {
	healthy, total int
}

func (r *rate) add(e models.HistoryEntry) {
	r.total++
	if e.Consensus == models.Healthy {
		r.healthy++
	}
}

func (r rate) value() float64 {
	if r.total == 0 {
		return 0
	}
	return float64(r.healthy) / float64(r.total)
}

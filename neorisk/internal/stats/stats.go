// Package stats derives per-model and dashboard statistics from the history log.
// Everything here is recomputed from scratch on each call.
package stats

import (
	"math"
	"sort"
	"time"

	"github.com/Krimson/neorisk-monitor/neorisk/internal/models"
)

const (
	// SuccessThreshold is the consensus confidence counted as a confident prediction.
	SuccessThreshold = 80.0

	// RecentLimit is the size of the dashboard's recent predictions list.
	RecentLimit = 10

	window = 7 * 24 * time.Hour
)

// ModelPerformances returns one entry per deployed model in display order.
// Static metrics are copied verbatim; observed metrics come from entries
// whose ModelsUsed contains the model.
func ModelPerformances(entries []models.HistoryEntry) []models.ModelPerformance {
	perfs := make([]models.ModelPerformance, 0, len(models.AllModels()))
	for _, m := range models.AllModels() {
		perfs = append(perfs, performanceFor(m, entries))
	}
	return perfs
}

func performanceFor(m models.ModelID, entries []models.HistoryEntry) models.ModelPerformance {
	info := m.Info()
	perf := models.ModelPerformance{
		Model:       m,
		ModelName:   info.Name,
		DisplayName: info.DisplayName,
		Color:       info.Color,
		Icon:        info.Icon,
		Accuracy:    info.Static.Accuracy,
		Precision:   info.Static.Precision,
		Recall:      info.Static.Recall,
		F1Score:     info.Static.F1Score,
	}

	var total, confident int
	var latency float64
	for _, e := range entries {
		if !e.UsesModel(m) {
			continue
		}
		total++
		latency += e.AvgResponseTime
		if e.ConsensusConfidence >= SuccessThreshold {
			confident++
		}
	}

	perf.TotalPredictions = total
	if total > 0 {
		perf.AvgResponseTime = math.Round(latency / float64(total))
		perf.SuccessRate = math.Round(float64(confident)/float64(total)*1000) / 10
	}
	return perf
}

// DashboardStats is the global rollup shown on the landing page.
type DashboardStats struct {
	TotalPredictions  int                   `json:"totalPredictions"`
	HealthyRate       float64               `json:"healthyRate"`
	ActiveAlerts      int                   `json:"activeAlerts"`
	AvgAccuracy       float64               `json:"avgAccuracy"`
	RecentPredictions []models.HistoryEntry `json:"recentPredictions"`
}

// Dashboard computes the rollup relative to now.
func Dashboard(entries []models.HistoryEntry, now time.Time) DashboardStats {
	ds := DashboardStats{
		TotalPredictions:  len(entries),
		AvgAccuracy:       AverageStaticAccuracy(),
		RecentPredictions: Newest(entries, RecentLimit),
	}

	cutoff := now.Add(-window)
	healthy := 0
	for _, e := range entries {
		if e.Consensus == models.Healthy {
			healthy++
		} else if e.Consensus == models.AtRisk && !e.Timestamp.Before(cutoff) {
			ds.ActiveAlerts++
		}
	}
	if len(entries) > 0 {
		ds.HealthyRate = float64(healthy) / float64(len(entries)) * 100
	}
	return ds
}

// AverageStaticAccuracy is the unweighted mean accuracy of all deployed models.
func AverageStaticAccuracy() float64 {
	all := models.AllModels()
	var sum float64
	for _, m := range all {
		sum += m.Info().Static.Accuracy
	}
	return sum / float64(len(all))
}

// Newest returns up to limit entries ordered by timestamp, newest first.
// The input slice is left untouched.
func Newest(entries []models.HistoryEntry, limit int) []models.HistoryEntry {
	sorted := make([]models.HistoryEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.After(sorted[j].Timestamp)
	})
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}

package stats

import (
	"fmt"
	"sort"
	"time"

	"github.com/Krimson/neorisk-monitor/neorisk/internal/models"
)

// NoModel is reported as the most used model of an empty history.
const NoModel = "Aucun"

// HistoryStats summarises the whole log for the history view.
type HistoryStats struct {
	TotalPredictions   int            `json:"totalPredictions"`
	HealthyPredictions int            `json:"healthyPredictions"`
	AtRiskPredictions  int            `json:"atRiskPredictions"`
	AvgConfidence      float64        `json:"avgConfidence"`
	MostUsedModel      string         `json:"mostUsedModel"`
	RecentTrend        TrendDirection `json:"recentTrend"`
}

// Summary computes HistoryStats. Ties on usage keep the model seen first.
func Summary(entries []models.HistoryEntry, now time.Time) HistoryStats {
	hs := HistoryStats{MostUsedModel: NoModel, RecentTrend: TrendStable}
	if len(entries) == 0 {
		return hs
	}

	hs.TotalPredictions = len(entries)

	var confidence float64
	counts := make(map[models.ModelID]int)
	var order []models.ModelID
	for _, e := range entries {
		if e.Consensus == models.Healthy {
			hs.HealthyPredictions++
		}
		confidence += e.ConsensusConfidence
		for _, m := range e.ModelsUsed {
			if _, seen := counts[m]; !seen {
				order = append(order, m)
			}
			counts[m]++
		}
	}
	hs.AtRiskPredictions = hs.TotalPredictions - hs.HealthyPredictions
	hs.AvgConfidence = confidence / float64(len(entries))

	best := 0
	for _, m := range order {
		if counts[m] > best {
			best = counts[m]
			hs.MostUsedModel = string(m)
		}
	}

	hs.RecentTrend = Trend(entries, now)
	return hs
}

// ComparisonStats names the leading model for each headline metric.
type ComparisonStats struct {
	BestAccuracy models.ModelPerformance `json:"bestAccuracy"`
	FastestModel models.ModelPerformance `json:"fastestModel"`
	MostUsed     models.ModelPerformance `json:"mostUsed"`
	BestF1Score  models.ModelPerformance `json:"bestF1Score"`
}

// Compare picks the leaders among perfs. On ties the earlier entry wins.
// It returns false for an empty slice.
func Compare(perfs []models.ModelPerformance) (ComparisonStats, bool) {
	if len(perfs) == 0 {
		return ComparisonStats{}, false
	}

	cs := ComparisonStats{
		BestAccuracy: perfs[0],
		FastestModel: perfs[0],
		MostUsed:     perfs[0],
		BestF1Score:  perfs[0],
	}
	for _, p := range perfs[1:] {
		if p.Accuracy > cs.BestAccuracy.Accuracy {
			cs.BestAccuracy = p
		}
		if p.AvgResponseTime < cs.FastestModel.AvgResponseTime {
			cs.FastestModel = p
		}
		if p.TotalPredictions > cs.MostUsed.TotalPredictions {
			cs.MostUsed = p
		}
		if p.F1Score > cs.BestF1Score.F1Score {
			cs.BestF1Score = p
		}
	}
	return cs, true
}

// Criterion is a performance sort key.
type Criterion string

const (
	ByAccuracy  Criterion = "accuracy"
	BySpeed     Criterion = "speed"
	ByF1Score   Criterion = "f1score"
	ByPrecision Criterion = "precision"
	ByRecall    Criterion = "recall"
)

// ParseCriterion validates a sort key from a query string.
func ParseCriterion(s string) (Criterion, error) {
	switch Criterion(s) {
	case ByAccuracy, BySpeed, ByF1Score, ByPrecision, ByRecall:
		return Criterion(s), nil
	}
	return "", fmt.Errorf("%w: unknown comparison criterion %q", models.ErrInvalidInput, s)
}

func (c Criterion) value(p models.ModelPerformance) float64 {
	switch c {
	case BySpeed:
		return p.AvgResponseTime
	case ByF1Score:
		return p.F1Score
	case ByPrecision:
		return p.Precision
	case ByRecall:
		return p.Recall
	}
	return p.Accuracy
}

// SortPerformances returns a sorted copy of perfs.
func SortPerformances(perfs []models.ModelPerformance, by Criterion, ascending bool) []models.ModelPerformance {
	sorted := make([]models.ModelPerformance, len(perfs))
	copy(sorted, perfs)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := by.value(sorted[i]), by.value(sorted[j])
		if ascending {
			return a < b
		}
		return a > b
	})
	return sorted
}

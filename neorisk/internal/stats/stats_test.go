package stats

import (
	"testing"
	"time"

	"github.com/Krimson/neorisk-monitor/neorisk/internal/models"
)

var now = time.Date(2026, 5, 20, 12, 0, 0, 0, time.UTC)

func entry(daysAgo float64, v models.Verdict, conf float64, latency float64, used ...models.ModelID) models.HistoryEntry {
	return models.HistoryEntry{
		Timestamp:           now.Add(-time.Duration(daysAgo * float64(24*time.Hour))),
		Consensus:           v,
		ConsensusConfidence: conf,
		AvgResponseTime:     latency,
		ModelsUsed:          used,
	}
}

func windowEntries(daysAgo float64, healthy, total int) []models.HistoryEntry {
	out := make([]models.HistoryEntry, 0, total)
	for i := 0; i < total; i++ {
		v := models.AtRisk
		if i < healthy {
			v = models.Healthy
		}
		out = append(out, entry(daysAgo, v, 75, 100, models.KNN))
	}
	return out
}

func TestModelPerformancesEmptyHistory(t *testing.T) {
	perfs := ModelPerformances(nil)
	if len(perfs) != 4 {
		t.Fatalf("Expected 4 performances, got %d", len(perfs))
	}
	for i, p := range perfs {
		if p.Model != models.AllModels()[i] {
			t.Errorf("Expected %s at position %d, got %s", models.AllModels()[i], i, p.Model)
		}
		if p.TotalPredictions != 0 || p.AvgResponseTime != 0 || p.SuccessRate != 0 {
			t.Errorf("Expected zero dynamic metrics for %s, got %+v", p.Model, p)
		}
		if p.Accuracy != p.Model.Info().Static.Accuracy || p.F1Score != p.Model.Info().Static.F1Score {
			t.Errorf("Static metrics not copied for %s", p.Model)
		}
	}
}

func TestModelPerformances(t *testing.T) {
	entries := []models.HistoryEntry{
		entry(1, models.Healthy, 100, 120, models.DecisionTree, models.KNN),
		entry(2, models.AtRisk, 75, 200, models.DecisionTree),
		entry(3, models.Healthy, 80, 151, models.DecisionTree, models.NaiveBayes),
	}

	perfs := ModelPerformances(entries)
	byModel := make(map[models.ModelID]models.ModelPerformance)
	for _, p := range perfs {
		byModel[p.Model] = p
	}

	dt := byModel[models.DecisionTree]
	if dt.TotalPredictions != 3 {
		t.Errorf("Expected 3 decision tree predictions, got %d", dt.TotalPredictions)
	}
	if dt.AvgResponseTime != 157 {
		t.Errorf("Expected rounded latency 157, got %f", dt.AvgResponseTime)
	}
	if dt.SuccessRate != 66.7 {
		t.Errorf("Expected success rate 66.7, got %f", dt.SuccessRate)
	}

	knn := byModel[models.KNN]
	if knn.TotalPredictions != 1 || knn.SuccessRate != 100 || knn.AvgResponseTime != 120 {
		t.Errorf("Unexpected KNN performance: %+v", knn)
	}

	if rf := byModel[models.RandomForest]; rf.TotalPredictions != 0 || rf.SuccessRate != 0 {
		t.Errorf("Expected unused random forest to be empty, got %+v", rf)
	}
}

func TestDashboard(t *testing.T) {
	entries := []models.HistoryEntry{
		entry(1, models.AtRisk, 75, 100, models.KNN),
		entry(6.9, models.AtRisk, 75, 100, models.KNN),
		entry(8, models.AtRisk, 75, 100, models.KNN),
		entry(0.5, models.Healthy, 100, 100, models.KNN),
	}
	for i := 0; i < 12; i++ {
		entries = append(entries, entry(20+float64(i), models.Healthy, 100, 100, models.KNN))
	}

	ds := Dashboard(entries, now)
	if ds.TotalPredictions != 16 {
		t.Errorf("Expected 16 predictions, got %d", ds.TotalPredictions)
	}
	if ds.ActiveAlerts != 2 {
		t.Errorf("Expected 2 active alerts, got %d", ds.ActiveAlerts)
	}
	if ds.HealthyRate != 13.0/16*100 {
		t.Errorf("Unexpected healthy rate %f", ds.HealthyRate)
	}
	if ds.AvgAccuracy != (91.3+94.2+97.0+95.0)/4 {
		t.Errorf("Unexpected average accuracy %f", ds.AvgAccuracy)
	}
	if len(ds.RecentPredictions) != RecentLimit {
		t.Fatalf("Expected %d recent predictions, got %d", RecentLimit, len(ds.RecentPredictions))
	}
	if !ds.RecentPredictions[0].Timestamp.Equal(entries[3].Timestamp) {
		t.Errorf("Expected newest entry first, got %v", ds.RecentPredictions[0].Timestamp)
	}
	for i := 1; i < len(ds.RecentPredictions); i++ {
		if ds.RecentPredictions[i].Timestamp.After(ds.RecentPredictions[i-1].Timestamp) {
			t.Errorf("Recent predictions not ordered at %d", i)
		}
	}
}

func TestDashboardEmpty(t *testing.T) {
	ds := Dashboard(nil, now)
	if ds.TotalPredictions != 0 || ds.HealthyRate != 0 || ds.ActiveAlerts != 0 {
		t.Errorf("Expected zero rollup, got %+v", ds)
	}
	if len(ds.RecentPredictions) != 0 {
		t.Errorf("Expected no recent predictions, got %d", len(ds.RecentPredictions))
	}
}

func TestTrend(t *testing.T) {
	tests := []struct {
		name     string
		recent   []models.HistoryEntry
		previous []models.HistoryEntry
		want     TrendDirection
	}{
		{"improving", windowEntries(2, 19, 20), windowEntries(10, 7, 10), TrendImproving},
		{"declining", windowEntries(2, 2, 5), windowEntries(10, 4, 5), TrendDeclining},
		{"stable", windowEntries(2, 3, 6), windowEntries(10, 5, 10), TrendStable},
		{"empty previous window counts as zero", windowEntries(2, 1, 1), nil, TrendImproving},
		{"both empty", nil, nil, TrendStable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries := append(append([]models.HistoryEntry{}, tt.recent...), tt.previous...)
			// older than both windows, must be ignored
			entries = append(entries, windowEntries(30, 0, 5)...)
			if got := Trend(entries, now); got != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestClassifyThreshold(t *testing.T) {
	if got := Classify(0.75, 0.70); got != TrendStable {
		t.Errorf("Expected stable for a small delta, got %s", got)
	}
	if got := Classify(0.95, 0.70); got != TrendImproving {
		t.Errorf("Expected improving, got %s", got)
	}
	if got := Classify(0.40, 0.80); got != TrendDeclining {
		t.Errorf("Expected declining, got %s", got)
	}
}

func TestSummary(t *testing.T) {
	empty := Summary(nil, now)
	if empty.MostUsedModel != NoModel || empty.RecentTrend != TrendStable || empty.TotalPredictions != 0 {
		t.Errorf("Unexpected empty summary %+v", empty)
	}

	entries := []models.HistoryEntry{
		entry(1, models.Healthy, 100, 100, models.NaiveBayes, models.KNN),
		entry(2, models.AtRisk, 50, 100, models.KNN),
		entry(3, models.Healthy, 75, 100, models.NaiveBayes),
	}
	hs := Summary(entries, now)
	if hs.TotalPredictions != 3 || hs.HealthyPredictions != 2 || hs.AtRiskPredictions != 1 {
		t.Errorf("Unexpected counts %+v", hs)
	}
	if hs.AvgConfidence != 75 {
		t.Errorf("Expected average confidence 75, got %f", hs.AvgConfidence)
	}
	// two-way tie, first seen wins
	if hs.MostUsedModel != string(models.NaiveBayes) {
		t.Errorf("Expected naive_bayes, got %s", hs.MostUsedModel)
	}
	if hs.RecentTrend != TrendImproving {
		t.Errorf("Expected improving trend, got %s", hs.RecentTrend)
	}
}

func TestCompareAndSort(t *testing.T) {
	entries := []models.HistoryEntry{
		entry(1, models.Healthy, 100, 300, models.DecisionTree, models.RandomForest),
		entry(1, models.Healthy, 100, 90, models.NaiveBayes),
		entry(1, models.Healthy, 100, 300, models.DecisionTree),
	}
	perfs := ModelPerformances(entries)

	cs, ok := Compare(perfs)
	if !ok {
		t.Fatal("Expected comparison for non-empty performances")
	}
	if cs.BestAccuracy.Model != models.RandomForest {
		t.Errorf("Expected random forest most accurate, got %s", cs.BestAccuracy.Model)
	}
	if cs.BestF1Score.Model != models.NaiveBayes {
		t.Errorf("Expected naive bayes best F1, got %s", cs.BestF1Score.Model)
	}
	if cs.MostUsed.Model != models.DecisionTree {
		t.Errorf("Expected decision tree most used, got %s", cs.MostUsed.Model)
	}
	// KNN is unused so its latency is 0
	if cs.FastestModel.Model != models.KNN {
		t.Errorf("Expected knn fastest, got %s", cs.FastestModel.Model)
	}

	if _, ok := Compare(nil); ok {
		t.Error("Expected no comparison for empty input")
	}

	desc := SortPerformances(perfs, ByAccuracy, false)
	want := []models.ModelID{models.RandomForest, models.KNN, models.NaiveBayes, models.DecisionTree}
	for i, m := range want {
		if desc[i].Model != m {
			t.Errorf("Position %d: expected %s, got %s", i, m, desc[i].Model)
		}
	}
	if perfs[0].Model != models.DecisionTree {
		t.Error("SortPerformances must not mutate its input")
	}

	asc := SortPerformances(perfs, ByRecall, true)
	if asc[0].Model != models.KNN || asc[3].Model != models.NaiveBayes {
		t.Errorf("Unexpected recall order: %s .. %s", asc[0].Model, asc[3].Model)
	}

	if _, err := ParseCriterion("latency"); err == nil {
		t.Error("Expected error for unknown criterion")
	}
}

package consensus

import (
	"errors"
	"testing"
	"time"

	"github.com/Krimson/neorisk-monitor/neorisk/internal/models"
)

func results(verdicts ...models.Verdict) []models.SingleModelResult {
	ids := models.AllModels()
	out := make([]models.SingleModelResult, len(verdicts))
	for i, v := range verdicts {
		out[i] = models.SingleModelResult{Model: ids[i%len(ids)], Prediction: v, Confidence: 90}
	}
	return out
}

func TestCalculate(t *testing.T) {
	h, r := models.Healthy, models.AtRisk

	tests := []struct {
		name       string
		in         []models.SingleModelResult
		verdict    models.Verdict
		confidence float64
		healthy    int
	}{
		{"single healthy", results(h), h, 100, 1},
		{"single at risk", results(r), r, 100, 0},
		{"two-two tie favors healthy", results(h, h, r, r), h, 50, 2},
		{"three at risk", results(r, r, r, h), r, 75, 1},
		{"unanimous healthy", results(h, h, h, h), h, 100, 4},
		{"one of two", results(r, h), h, 50, 1},
		{"two of three at risk", results(r, h, r), r, 200.0 / 3, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Calculate(tt.in)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got.Consensus != tt.verdict {
				t.Errorf("Expected consensus %s, got %s", tt.verdict, got.Consensus)
			}
			if got.Confidence != tt.confidence {
				t.Errorf("Expected confidence %f, got %f", tt.confidence, got.Confidence)
			}
			if got.HealthyCount != tt.healthy {
				t.Errorf("Expected %d healthy, got %d", tt.healthy, got.HealthyCount)
			}
			if got.HealthyCount+got.AtRiskCount != len(tt.in) {
				t.Errorf("Counts %d+%d do not add up to %d", got.HealthyCount, got.AtRiskCount, len(tt.in))
			}
		})
	}
}

func TestCalculateConfidenceBounds(t *testing.T) {
	verdicts := []models.Verdict{models.Healthy, models.AtRisk}
	// every prediction combination for 1..4 models
	for n := 1; n <= 4; n++ {
		for mask := 0; mask < 1<<n; mask++ {
			in := make([]models.Verdict, n)
			for i := range in {
				in[i] = verdicts[(mask>>i)&1]
			}
			got, err := Calculate(results(in...))
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got.Confidence < 50 || got.Confidence > 100 {
				t.Errorf("n=%d mask=%b: confidence %f out of [50,100]", n, mask, got.Confidence)
			}
		}
	}
}

func TestCalculateEmpty(t *testing.T) {
	_, err := Calculate(nil)
	if !errors.Is(err, ErrNoResults) {
		t.Errorf("Expected ErrNoResults, got %v", err)
	}
	if !errors.Is(err, models.ErrInvalidInput) {
		t.Errorf("Expected error to wrap ErrInvalidInput, got %v", err)
	}
}

func TestBuild(t *testing.T) {
	in := []models.SingleModelResult{
		{Model: models.DecisionTree, Prediction: models.Healthy, Confidence: 92, ResponseTimeMs: 100},
		{Model: models.KNN, Prediction: models.AtRisk, Confidence: 0, ResponseTimeMs: 300, Failed: true},
	}
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	got, err := Build(in, "Emma", at)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got.AverageResponseTime != 200 {
		t.Errorf("Expected average response time 200, got %f", got.AverageResponseTime)
	}
	if got.Consensus != models.Healthy || got.ConsensusConfidence != 50 {
		t.Errorf("Unexpected consensus %s/%f", got.Consensus, got.ConsensusConfidence)
	}
	if !got.Timestamp.Equal(at) || got.BabyName != "Emma" || len(got.Models) != 2 {
		t.Errorf("Unexpected result metadata: %+v", got)
	}

	if _, err := Build(nil, "", at); !errors.Is(err, ErrNoResults) {
		t.Errorf("Expected ErrNoResults, got %v", err)
	}
}

func TestCompare(t *testing.T) {
	in := []models.SingleModelResult{
		{Model: models.DecisionTree, Prediction: models.Healthy, Confidence: 80, ResponseTimeMs: 150},
		{Model: models.NaiveBayes, Prediction: models.Healthy, Confidence: 95, ResponseTimeMs: 90},
		{Model: models.RandomForest, Prediction: models.AtRisk, Confidence: 60, ResponseTimeMs: 210},
	}

	stats := Compare(in)
	if stats.FastestModel != "Naive Bayes" {
		t.Errorf("Expected fastest Naive Bayes, got %s", stats.FastestModel)
	}
	if stats.SlowestModel != "Forêt Aléatoire" {
		t.Errorf("Expected slowest Forêt Aléatoire, got %s", stats.SlowestModel)
	}
	if stats.MostConfidentModel != "Naive Bayes" {
		t.Errorf("Expected most confident Naive Bayes, got %s", stats.MostConfidentModel)
	}
	if stats.AvgConfidence != 235.0/3 {
		t.Errorf("Unexpected average confidence %f", stats.AvgConfidence)
	}
	if stats.Agreement != 200.0/3 {
		t.Errorf("Unexpected agreement %f", stats.Agreement)
	}

	if got := Compare(nil); got != (ComparisonStats{}) {
		t.Errorf("Expected zero stats for empty input, got %+v", got)
	}
}

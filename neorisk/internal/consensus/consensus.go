// Package consensus turns per-classifier answers into a single verdict.
package consensus

import (
	"fmt"
	"time"

	"github.com/Krimson/neorisk-monitor/neorisk/internal/models"
)

// ErrNoResults is returned when there is nothing to vote on.
var ErrNoResults = fmt.Errorf("%w: consensus needs at least one model result", models.ErrInvalidInput)

// Outcome is the majority vote over a result set.
type Outcome struct {
	Consensus    models.Verdict `json:"consensus"`
	Confidence   float64        `json:"confidence"`
	HealthyCount int            `json:"healthyCount"`
	AtRiskCount  int            `json:"atRiskCount"`
}

// Calculate applies the majority-or-tie-favors-Healthy policy.
// Confidence is the share of models agreeing with the majority, in percent.
func Calculate(results []models.SingleModelResult) (Outcome, error) {
	n := len(results)
	if n == 0 {
		return Outcome{}, ErrNoResults
	}

	healthy := 0
	for _, r := range results {
		if r.Prediction == models.Healthy {
			healthy++
		}
	}
	atRisk := n - healthy

	verdict := models.AtRisk
	// healthy >= n/2 without float division
	if 2*healthy >= n {
		verdict = models.Healthy
	}

	agreement := float64(max(healthy, atRisk)) / float64(n)

	return Outcome{
		Consensus:    verdict,
		Confidence:   agreement * 100,
		HealthyCount: healthy,
		AtRiskCount:  atRisk,
	}, nil
}

// Build assembles the full PredictionResult for one submission.
func Build(results []models.SingleModelResult, babyName string, at time.Time) (models.PredictionResult, error) {
	outcome, err := Calculate(results)
	if err != nil {
		return models.PredictionResult{}, err
	}

	var totalMs int64
	for _, r := range results {
		totalMs += r.ResponseTimeMs
	}

	return models.PredictionResult{
		Timestamp:           at,
		BabyName:            babyName,
		Models:              results,
		Consensus:           outcome.Consensus,
		ConsensusConfidence: outcome.Confidence,
		AverageResponseTime: float64(totalMs) / float64(len(results)),
		HealthyCount:        outcome.HealthyCount,
		AtRiskCount:         outcome.AtRiskCount,
	}, nil
}

// ComparisonStats summarises how the classifiers behaved on one submission.
type ComparisonStats struct {
	Agreement          float64 `json:"agreement"`
	AvgConfidence      float64 `json:"avgConfidence"`
	FastestModel       string  `json:"fastestModel"`
	SlowestModel       string  `json:"slowestModel"`
	MostConfidentModel string  `json:"mostConfidentModel"`
}

// Compare computes per-submission comparison stats. Ties keep the first model.
func Compare(results []models.SingleModelResult) ComparisonStats {
	if len(results) == 0 {
		return ComparisonStats{}
	}

	outcome, _ := Calculate(results)
	stats := ComparisonStats{Agreement: outcome.Confidence}

	fastest, slowest, confident := results[0], results[0], results[0]
	var sum float64
	for _, r := range results {
		sum += r.Confidence
		if r.ResponseTimeMs < fastest.ResponseTimeMs {
			fastest = r
		}
		if r.ResponseTimeMs >= slowest.ResponseTimeMs {
			slowest = r
		}
		if r.Confidence > confident.Confidence {
			confident = r
		}
	}

	stats.AvgConfidence = sum / float64(len(results))
	stats.FastestModel = displayName(fastest)
	stats.SlowestModel = displayName(slowest)
	stats.MostConfidentModel = displayName(confident)
	return stats
}

func displayName(r models.SingleModelResult) string {
	if r.DisplayName != "" {
		return r.DisplayName
	}
	if r.Model.Valid() {
		return r.Model.Info().DisplayName
	}
	return string(r.Model)
}

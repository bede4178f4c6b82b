package models

import (
	"fmt"
	"time"
)

// ModelID identifies one of the deployed classifiers.
type ModelID string

const (
	DecisionTree ModelID = "decision_tree"
	NaiveBayes   ModelID = "naive_bayes"
	RandomForest ModelID = "random_forest"
	KNN          ModelID = "knn"

	// ModelAll is only meaningful as a history filter value.
	ModelAll ModelID = "All"
)

// AllModels returns every deployed classifier in display order.
func AllModels() []ModelID {
	return []ModelID{DecisionTree, NaiveBayes, RandomForest, KNN}
}

// ParseModelID converts a wire value into a ModelID.
func ParseModelID(s string) (ModelID, error) {
	id := ModelID(s)
	if !id.Valid() {
		return "", fmt.Errorf("%w: unknown model %q", ErrInvalidInput, s)
	}
	return id, nil
}

// Valid reports whether m names a deployed classifier.
func (m ModelID) Valid() bool {
	switch m {
	case DecisionTree, NaiveBayes, RandomForest, KNN:
		return true
	}
	return false
}

// StaticMetrics come from offline evaluation and are never recomputed.
type StaticMetrics struct {
	Accuracy  float64 `json:"accuracy"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1Score   float64 `json:"f1Score"`
}

// ModelInfo is the fixed per-classifier metadata.
type ModelInfo struct {
	ID          ModelID       `json:"model"`
	Name        string        `json:"modelName"`
	DisplayName string        `json:"displayName"`
	Color       string        `json:"color"`
	Icon        string        `json:"icon"`
	Description string        `json:"description"`
	Static      StaticMetrics `json:"staticMetrics"`
}

// Info returns the metadata of m. It panics for IDs outside the closed set.
func (m ModelID) Info() ModelInfo {
	switch m {
	case DecisionTree:
		return ModelInfo{
			ID:          DecisionTree,
			Name:        "Decision Tree",
			DisplayName: "Arbre de Décision",
			Color:       "#667eea",
			Icon:        "bi-diagram-3",
			Description: "Classification par arbre de décision",
			Static:      StaticMetrics{Accuracy: 91.3, Precision: 90.8, Recall: 90.5, F1Score: 90.6},
		}
	case NaiveBayes:
		return ModelInfo{
			ID:          NaiveBayes,
			Name:        "Naive Bayes",
			DisplayName: "Naive Bayes",
			Color:       "#f5576c",
			Icon:        "bi-graph-up",
			Description: "Classification probabiliste bayésienne",
			Static:      StaticMetrics{Accuracy: 94.2, Precision: 94.5, Recall: 94.2, F1Score: 94.3},
		}
	case RandomForest:
		return ModelInfo{
			ID:          RandomForest,
			Name:        "Random Forest",
			DisplayName: "Forêt Aléatoire",
			Color:       "#00f2fe",
			Icon:        "bi-tree",
			Description: "Ensemble d'arbres de décision",
			Static:      StaticMetrics{Accuracy: 97.0, Precision: 87.0, Recall: 93.0, F1Score: 90.0},
		}
	case KNN:
		return ModelInfo{
			ID:          KNN,
			Name:        "K-Nearest Neighbors",
			DisplayName: "KPPV",
			Color:       "#38f9d7",
			Icon:        "bi-bullseye",
			Description: "Classification par proximité",
			Static:      StaticMetrics{Accuracy: 95.0, Precision: 84.0, Recall: 74.0, F1Score: 79.0},
		}
	}
	panic(fmt.Sprintf("models: no metadata for model %q", string(m)))
}

// Verdict is a binary classifier outcome.
type Verdict string

const (
	Healthy Verdict = "Healthy"
	AtRisk  Verdict = "At Risk"

	// VerdictAll is only meaningful as a history filter value.
	VerdictAll Verdict = "All"
)

// ParseVerdict accepts the classifier wire strings.
func ParseVerdict(s string) (Verdict, error) {
	switch Verdict(s) {
	case Healthy, AtRisk:
		return Verdict(s), nil
	}
	return "", fmt.Errorf("%w: unknown prediction %q", ErrInvalidInput, s)
}

// SingleModelResult is one classifier's answer to one request.
type SingleModelResult struct {
	Model          ModelID `json:"model"`
	DisplayName    string  `json:"displayName"`
	Prediction     Verdict `json:"prediction"`
	Confidence     float64 `json:"confidence"`
	ResponseTimeMs int64   `json:"responseTime"`
	// Failed marks a synthesized result for an unreachable or broken classifier.
	Failed bool `json:"failed,omitempty"`
}

// PredictionResult is the consensus over every selected classifier.
type PredictionResult struct {
	Timestamp           time.Time           `json:"timestamp"`
	BabyName            string              `json:"babyName,omitempty"`
	Models              []SingleModelResult `json:"models"`
	Consensus           Verdict             `json:"consensus"`
	ConsensusConfidence float64             `json:"consensusConfidence"`
	AverageResponseTime float64             `json:"averageResponseTime"`
	HealthyCount        int                 `json:"healthyCount"`
	AtRiskCount         int                 `json:"atRiskCount"`
}

// HistoryEntry is the persisted projection of a PredictionResult.
type HistoryEntry struct {
	ID                  string    `json:"id"`
	Timestamp           time.Time `json:"timestamp"`
	BabyName            string    `json:"babyName,omitempty"`
	BabyGender          string    `json:"babyGender"`
	BabyAge             int       `json:"babyAge"`
	ModelsUsed          []ModelID `json:"modelsUsed"`
	Consensus           Verdict   `json:"consensus"`
	ConsensusConfidence float64   `json:"consensusConfidence"`
	HealthyCount        int       `json:"healthyCount"`
	AtRiskCount         int       `json:"atRiskCount"`
	AvgResponseTime     float64   `json:"avgResponseTime"`
	RiskFactorsCount    int       `json:"riskFactorsCount"`
	Notes               string    `json:"notes,omitempty"`
}

// UsesModel reports whether m took part in the prediction.
func (e HistoryEntry) UsesModel(m ModelID) bool {
	for _, used := range e.ModelsUsed {
		if used == m {
			return true
		}
	}
	return false
}

// ModelPerformance merges static metrics with statistics observed in history.
type ModelPerformance struct {
	Model            ModelID `json:"model"`
	ModelName        string  `json:"modelName"`
	DisplayName      string  `json:"displayName"`
	Color            string  `json:"color"`
	Icon             string  `json:"icon"`
	Accuracy         float64 `json:"accuracy"`
	Precision        float64 `json:"precision"`
	Recall           float64 `json:"recall"`
	F1Score          float64 `json:"f1Score"`
	AvgResponseTime  float64 `json:"avgResponseTime"`
	TotalPredictions int     `json:"totalPredictions"`
	SuccessRate      float64 `json:"successRate"`
}

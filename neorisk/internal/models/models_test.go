package models

import (
	"errors"
	"testing"
)

func TestAllModelsHaveMetadata(t *testing.T) {
	seen := make(map[ModelID]bool)
	for _, m := range AllModels() {
		if seen[m] {
			t.Fatalf("Duplicate model %s", m)
		}
		seen[m] = true

		info := m.Info()
		if info.ID != m {
			t.Errorf("Expected info for %s, got %s", m, info.ID)
		}
		if info.Name == "" || info.DisplayName == "" || info.Color == "" {
			t.Errorf("Incomplete metadata for %s: %+v", m, info)
		}
		for name, v := range map[string]float64{
			"accuracy":  info.Static.Accuracy,
			"precision": info.Static.Precision,
			"recall":    info.Static.Recall,
			"f1":        info.Static.F1Score,
		} {
			if v < 0 || v > 100 {
				t.Errorf("%s %s out of range: %f", m, name, v)
			}
		}
	}
	if len(seen) != 4 {
		t.Errorf("Expected 4 models, got %d", len(seen))
	}
}

func TestInfoPanicsOnUnknownModel(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Expected panic for unknown model")
		}
	}()
	ModelID("svm").Info()
}

func TestParseModelID(t *testing.T) {
	for _, m := range AllModels() {
		got, err := ParseModelID(string(m))
		if err != nil || got != m {
			t.Errorf("ParseModelID(%q) = %q, %v", m, got, err)
		}
	}

	if _, err := ParseModelID("All"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for filter value, got %v", err)
	}
}

func TestParseVerdict(t *testing.T) {
	cases := map[string]bool{
		"Healthy": true,
		"At Risk": true,
		"AtRisk":  false,
		"":        false,
	}
	for in, ok := range cases {
		_, err := ParseVerdict(in)
		if ok && err != nil {
			t.Errorf("ParseVerdict(%q) unexpected error: %v", in, err)
		}
		if !ok && err == nil {
			t.Errorf("ParseVerdict(%q) expected error", in)
		}
	}
}

func TestHistoryEntryUsesModel(t *testing.T) {
	e := HistoryEntry{ModelsUsed: []ModelID{KNN, NaiveBayes}}
	if !e.UsesModel(KNN) {
		t.Error("Expected entry to use KNN")
	}
	if e.UsesModel(DecisionTree) {
		t.Error("Did not expect entry to use DecisionTree")
	}
}

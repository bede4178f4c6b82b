package history

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/Krimson/neorisk-monitor/neorisk/internal/models"
)

// SampleDays is how far back generated entries may be dated.
const SampleDays = 60

var sampleNames = []string{
	"Emma", "Liam", "Olivia", "Noah", "Ava", "Ethan",
	"Sophia", "Lucas", "Mia", "Logan", "Isabella", "Mason",
	"Charlotte", "Elijah", "Amelia", "James", "Harper", "Benjamin",
	"Evelyn", "William", "Abigail", "Alexander", "Emily", "Michael",
}

// SampleEntries generates n plausible entries dated within SampleDays of now,
// newest first. Consensus fields obey the same majority rule as live
// predictions and confidence tracks the level of agreement.
func SampleEntries(n int, now time.Time, rng *rand.Rand) []models.HistoryEntry {
	if n <= 0 {
		return []models.HistoryEntry{}
	}

	entries := make([]models.HistoryEntry, 0, n)
	for i := 0; i < n; i++ {
		entries = append(entries, sampleEntry(now, rng))
	}
	return Sort(entries, models.SortByDate, models.Descending)
}

func sampleEntry(now time.Time, rng *rand.Rand) models.HistoryEntry {
	day := now.AddDate(0, 0, -rng.IntN(SampleDays))
	ts := time.Date(day.Year(), day.Month(), day.Day(), rng.IntN(24), rng.IntN(60), 0, 0, day.Location())
	if ts.After(now) {
		ts = now
	}

	all := models.AllModels()
	rng.Shuffle(len(all), func(i, j int) { all[i], all[j] = all[j], all[i] })
	used := all[:rng.IntN(len(all))+1]

	n := len(used)
	healthy := rng.IntN(n + 1)
	atRisk := n - healthy
	consensus := models.AtRisk
	if 2*healthy >= n {
		consensus = models.Healthy
	}

	riskFactors := rng.IntN(3)
	if consensus == models.AtRisk {
		riskFactors = rng.IntN(5) + 1
	}

	e := models.HistoryEntry{
		ID:                  uuid.NewString(),
		Timestamp:           ts,
		BabyGender:          "Male",
		BabyAge:             int(rng.Float64() * rng.Float64() * 30),
		ModelsUsed:          used,
		Consensus:           consensus,
		ConsensusConfidence: sampleConfidence(float64(max(healthy, atRisk))/float64(n), rng),
		HealthyCount:        healthy,
		AtRiskCount:         atRisk,
		AvgResponseTime:     float64(80 + rng.IntN(170)),
		RiskFactorsCount:    riskFactors,
	}
	if rng.Float64() > 0.2 {
		e.BabyName = sampleNames[rng.IntN(len(sampleNames))]
	}
	if rng.Float64() > 0.5 {
		e.BabyGender = "Female"
	}
	if riskFactors > 3 {
		e.Notes = "Surveillance recommandée"
	}
	return e
}

// sampleConfidence draws a confidence band matching the agreement level,
// rounded to one decimal.
func sampleConfidence(agreement float64, rng *rand.Rand) float64 {
	var c float64
	switch {
	case agreement == 1:
		c = 90 + rng.Float64()*10
	case agreement >= 0.75:
		c = 75 + rng.Float64()*20
	case agreement >= 0.66:
		c = 65 + rng.Float64()*20
	default:
		c = 50 + rng.Float64()*20
	}
	return math.Min(100, math.Round(c*10)/10)
}

// Package assessment derives clinical risk factors and follow-up
// recommendations from a measurement set and its consensus.
package assessment

import (
	"fmt"

	"github.com/Krimson/neorisk-monitor/neorisk/internal/models"
)

type Severity string

const (
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// RiskFactor flags one measurement outside its normal band.
type RiskFactor struct {
	Category string   `json:"category"`
	Field    string   `json:"field"`
	Value    any      `json:"value"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	Icon     string   `json:"icon"`
	Color    string   `json:"color"`
}

const (
	categoryVitals       = "Signes Vitaux"
	categoryObservations = "Observations"

	colorDanger  = "#E74C3C"
	colorWarning = "#F5A623"
)

// RiskFactors lists abnormal measurements in a fixed order:
// temperature, heart rate, SpO2, jaundice, reflexes.
func RiskFactors(d models.BabyHealthData) []RiskFactor {
	factors := []RiskFactor{}

	if d.TemperatureC < 36.5 || d.TemperatureC > 37.5 {
		sev := SeverityMedium
		if d.TemperatureC < 36 || d.TemperatureC > 38 {
			sev = SeverityHigh
		}
		factors = append(factors, RiskFactor{
			Category: categoryVitals,
			Field:    "Température",
			Value:    d.TemperatureC,
			Severity: sev,
			Message:  "Température en dehors de la normale",
			Icon:     "bi-thermometer",
			Color:    colorDanger,
		})
	}

	if d.HeartRateBpm < 120 || d.HeartRateBpm > 160 {
		factors = append(factors, RiskFactor{
			Category: categoryVitals,
			Field:    "Fréquence cardiaque",
			Value:    d.HeartRateBpm,
			Severity: SeverityMedium,
			Message:  "Fréquence cardiaque anormale",
			Icon:     "bi-heart-pulse",
			Color:    colorDanger,
		})
	}

	if d.OxygenSaturation < 95 {
		sev := SeverityMedium
		if d.OxygenSaturation < 90 {
			sev = SeverityHigh
		}
		factors = append(factors, RiskFactor{
			Category: categoryVitals,
			Field:    "Saturation O2",
			Value:    d.OxygenSaturation,
			Severity: sev,
			Message:  "Saturation en oxygène basse",
			Icon:     "bi-droplet",
			Color:    colorDanger,
		})
	}

	if d.JaundiceLevelMgDl > 10 {
		sev := SeverityMedium
		if d.JaundiceLevelMgDl > 15 {
			sev = SeverityHigh
		}
		factors = append(factors, RiskFactor{
			Category: categoryObservations,
			Field:    "Jaunisse",
			Value:    d.JaundiceLevelMgDl,
			Severity: sev,
			Message:  "Niveau de jaunisse élevé",
			Icon:     "bi-exclamation-triangle",
			Color:    colorWarning,
		})
	}

	if d.ReflexesNormal == "No" {
		factors = append(factors, RiskFactor{
			Category: categoryObservations,
			Field:    "Réflexes",
			Value:    "Anormaux",
			Severity: SeverityHigh,
			Message:  "Réflexes anormaux détectés",
			Icon:     "bi-activity",
			Color:    colorDanger,
		})
	}

	return factors
}

type Priority string

const (
	PriorityUrgent Priority = "urgent"
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Recommendation is one follow-up action for the care team.
type Recommendation struct {
	Priority    Priority `json:"priority"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Icon        string   `json:"icon"`
	Color       string   `json:"color"`
}

// Recommendations orders actions from most to least urgent.
func Recommendations(consensus models.Verdict, factors []RiskFactor, d models.BabyHealthData) []Recommendation {
	recs := []Recommendation{}

	if consensus == models.AtRisk {
		recs = append(recs, Recommendation{
			Priority:    PriorityUrgent,
			Title:       "Consultation médicale urgente",
			Description: "Le système a détecté des signes préoccupants. Consultez un pédiatre immédiatement.",
			Icon:        "bi-hospital",
			Color:       colorDanger,
		})
	}

	if len(factors) > 0 {
		recs = append(recs, Recommendation{
			Priority:    PriorityHigh,
			Title:       "Surveillance rapprochée",
			Description: Summary(len(factors)) + ". Surveillez attentivement les signes vitaux.",
			Icon:        "bi-eye",
			Color:       colorWarning,
		})
	}

	if d.ImmunizationsDone == "No" {
		recs = append(recs, Recommendation{
			Priority:    PriorityMedium,
			Title:       "Vaccinations en attente",
			Description: "Assurez-vous que le calendrier vaccinal est à jour.",
			Icon:        "bi-shield-check",
			Color:       "#4A90E2",
		})
	}

	if consensus == models.Healthy && len(factors) == 0 {
		recs = append(recs, Recommendation{
			Priority:    PriorityLow,
			Title:       "Suivi régulier",
			Description: "Continuez les consultations de routine et le suivi habituel.",
			Icon:        "bi-check-circle",
			Color:       "#5FCF80",
		})
	}

	return recs
}

// Summary is the short note stored with a history entry.
func Summary(count int) string {
	return fmt.Sprintf("%d facteur(s) de risque détecté(s)", count)
}

// Notes returns the history note for the given factors, empty when none.
func Notes(factors []RiskFactor) string {
	if len(factors) == 0 {
		return ""
	}
	return Summary(len(factors))
}

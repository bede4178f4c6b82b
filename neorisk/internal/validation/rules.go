package validation

// Rule is the accepted range of one numeric measurement.
type Rule struct {
	Field string  `json:"field"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Label string  `json:"label"`
	Unit  string  `json:"unit"`
}

var rules = []Rule{
	{Field: "gestational_age_weeks", Min: 24, Max: 44, Label: "Âge gestationnel", Unit: "semaines"},
	{Field: "birth_weight_kg", Min: 0.5, Max: 6, Label: "Poids de naissance", Unit: "kg"},
	{Field: "birth_length_cm", Min: 30, Max: 65, Label: "Taille de naissance", Unit: "cm"},
	{Field: "birth_head_circumference_cm", Min: 25, Max: 40, Label: "Périmètre crânien naissance", Unit: "cm"},
	{Field: "apgar_score", Min: 0, Max: 10, Label: "Score APGAR"},
	{Field: "age_days", Min: 0, Max: 365, Label: "Âge", Unit: "jours"},
	{Field: "weight_kg", Min: 0.5, Max: 15, Label: "Poids actuel", Unit: "kg"},
	{Field: "length_cm", Min: 30, Max: 100, Label: "Taille actuelle", Unit: "cm"},
	{Field: "head_circumference_cm", Min: 25, Max: 50, Label: "Périmètre crânien actuel", Unit: "cm"},
	{Field: "temperature_c", Min: 35, Max: 42, Label: "Température", Unit: "°C"},
	{Field: "heart_rate_bpm", Min: 80, Max: 200, Label: "Fréquence cardiaque", Unit: "bpm"},
	{Field: "respiratory_rate_bpm", Min: 20, Max: 80, Label: "Fréquence respiratoire", Unit: "bpm"},
	{Field: "oxygen_saturation", Min: 80, Max: 100, Label: "Saturation en oxygène", Unit: "%"},
	{Field: "feeding_frequency_per_day", Min: 1, Max: 20, Label: "Fréquence alimentation", Unit: "fois/jour"},
	{Field: "urine_output_count", Min: 0, Max: 20, Label: "Nombre de mictions"},
	{Field: "stool_count", Min: 0, Max: 15, Label: "Nombre de selles"},
	{Field: "jaundice_level_mg_dl", Min: 0, Max: 25, Label: "Niveau de jaunisse", Unit: "mg/dL"},
}

// Rules returns a copy of the measurement range table in form order.
func Rules() []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules)
	return out
}

// RuleFor looks up the rule of a JSON field name.
func RuleFor(field string) (Rule, bool) {
	for _, r := range rules {
		if r.Field == field {
			return r, true
		}
	}
	return Rule{}, false
}

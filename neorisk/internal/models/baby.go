package models

// BabyHealthData is the measurement payload sent to every classifier.
// BabyName stays on the dashboard side and is never forwarded.
type BabyHealthData struct {
	BabyName string `json:"-"`
	Gender   string `json:"gender" validate:"required,oneof=Male Female"`

	GestationalAgeWeeks      float64 `json:"gestational_age_weeks" validate:"gte=24,lte=44"`
	BirthWeightKg            float64 `json:"birth_weight_kg" validate:"gte=0.5,lte=6"`
	BirthLengthCm            float64 `json:"birth_length_cm" validate:"gte=30,lte=65"`
	BirthHeadCircumferenceCm float64 `json:"birth_head_circumference_cm" validate:"gte=25,lte=40"`
	ApgarScore               float64 `json:"apgar_score" validate:"gte=0,lte=10"`

	AgeDays             int     `json:"age_days" validate:"gte=0,lte=365"`
	WeightKg            float64 `json:"weight_kg" validate:"gte=0.5,lte=15"`
	LengthCm            float64 `json:"length_cm" validate:"gte=30,lte=100"`
	HeadCircumferenceCm float64 `json:"head_circumference_cm" validate:"gte=25,lte=50"`

	TemperatureC       float64 `json:"temperature_c" validate:"gte=35,lte=42"`
	HeartRateBpm       float64 `json:"heart_rate_bpm" validate:"gte=80,lte=200"`
	RespiratoryRateBpm float64 `json:"respiratory_rate_bpm" validate:"gte=20,lte=80"`
	OxygenSaturation   float64 `json:"oxygen_saturation" validate:"gte=80,lte=100"`

	FeedingType            string  `json:"feeding_type" validate:"required,oneof=Breastfeeding Formula Mixed"`
	FeedingFrequencyPerDay float64 `json:"feeding_frequency_per_day" validate:"gte=1,lte=20"`

	UrineOutputCount float64 `json:"urine_output_count" validate:"gte=0,lte=20"`
	StoolCount       float64 `json:"stool_count" validate:"gte=0,lte=15"`

	JaundiceLevelMgDl float64 `json:"jaundice_level_mg_dl" validate:"gte=0,lte=25"`
	ImmunizationsDone string  `json:"immunizations_done" validate:"required,oneof=Yes No"`
	ReflexesNormal    string  `json:"reflexes_normal" validate:"required,oneof=Yes No"`
}

// DefaultBabyData returns the form defaults of a healthy five-day-old.
func DefaultBabyData() BabyHealthData {
	return BabyHealthData{
		Gender:                   "Female",
		GestationalAgeWeeks:      40,
		BirthWeightKg:            3.3,
		BirthLengthCm:            50,
		BirthHeadCircumferenceCm: 32,
		ApgarScore:               9,
		AgeDays:                  5,
		WeightKg:                 3.4,
		LengthCm:                 50.5,
		HeadCircumferenceCm:      32.1,
		TemperatureC:             37.0,
		HeartRateBpm:             140,
		RespiratoryRateBpm:       40,
		OxygenSaturation:         98,
		FeedingType:              "Breastfeeding",
		FeedingFrequencyPerDay:   8,
		UrineOutputCount:         6,
		StoolCount:               3,
		JaundiceLevelMgDl:        3.0,
		ImmunizationsDone:        "Yes",
		ReflexesNormal:           "Yes",
	}
}

// PredictionRequest is the body of a prediction submission.
type PredictionRequest struct {
	BabyName string         `json:"baby_name,omitempty"`
	Data     BabyHealthData `json:"data"`
	Models   []ModelID      `json:"models"`
}

package risk

import "math"

// SugarTier is the severity bucket for a blood sugar reading
type SugarTier string

const (
	SugarNormal       SugarTier = "NORMAL"
	SugarHigh         SugarTier = "HIGH"
	SugarEmergencyLow SugarTier = "EMERGENCY_LOW"
)

// BPTier is the severity bucket for a blood pressure reading
type BPTier string

const (
	BPNormal       BPTier = "NORMAL"
	BPElevated     BPTier = "ELEVATED"
	BPEmergencyLow BPTier = "EMERGENCY_LOW"
)

// BMITier is the bucket for a body mass index value
type BMITier string

const (
	BMILow    BMITier = "LOW"
	BMINormal BMITier = "NORMAL"
	BMIHigh   BMITier = "HIGH"
)

// Level is the aggregate risk across all vital categories
type Level string

const (
	LevelStable   Level = "STABLE"
	LevelMedium   Level = "MEDIUM"
	LevelHigh     Level = "HIGH"
	LevelCritical Level = "CRITICAL"
)

// severity orders levels so callers can compare them
func (l Level) severity() int {
	switch l {
	case LevelCritical:
		return 3
	case LevelHigh:
		return 2
	case LevelMedium:
		return 1
	default:
		return 0
	}
}

// AtLeast reports whether l is as severe as other or more
func (l Level) AtLeast(other Level) bool {
	return l.severity() >= other.severity()
}

// Vital categories reported in Assessment.Missing
const (
	VitalBloodSugar    = "blood_sugar"
	VitalBloodPressure = "blood_pressure"
	VitalBMI           = "bmi"
)

// Routine tags recommended from the tiers
const (
	RoutineDiabetesPrevention = "diabetes-prevention"
	RoutineHeartHealth        = "heart-health"
	RoutineWeightGain         = "weight-gain"
	RoutineWeightLoss         = "weight-loss"
)

// Vitals is one snapshot of user-entered measurements.
// Every numeric field is optional; nil means "not recorded".
type Vitals struct {
	BloodSugarMgDl *float64 `json:"blood_sugar_mg_dl,omitempty"`
	SystolicMmHg   *float64 `json:"systolic_mm_hg,omitempty"`
	DiastolicMmHg  *float64 `json:"diastolic_mm_hg,omitempty"`
	BMI            *float64 `json:"bmi,omitempty"`
	PregnancyWeek  *int     `json:"pregnancy_week,omitempty"`
	SymptomsText   string   `json:"symptoms_text,omitempty"`
	Age            *int     `json:"age,omitempty"`
	WeightKg       *float64 `json:"weight_kg,omitempty"`
	HeightCm       *float64 `json:"height_cm,omitempty"`
	FetalKicks     *int     `json:"fetal_kicks,omitempty"`
	BodyPart       string   `json:"body_part,omitempty"`
}

// HasReadings reports whether any classified vital is present
func (v Vitals) HasReadings() bool {
	_, s := positive(v.BloodSugarMgDl)
	_, sys := positive(v.SystolicMmHg)
	_, dia := positive(v.DiastolicMmHg)
	_, b := positive(v.BMI)
	return s || sys || dia || b
}

// Merge returns v with every field that is set in update overwritten
func (v Vitals) Merge(update Vitals) Vitals {
	out := v
	if update.BloodSugarMgDl != nil {
		out.BloodSugarMgDl = update.BloodSugarMgDl
	}
	if update.SystolicMmHg != nil {
		out.SystolicMmHg = update.SystolicMmHg
	}
	if update.DiastolicMmHg != nil {
		out.DiastolicMmHg = update.DiastolicMmHg
	}
	if update.BMI != nil {
		out.BMI = update.BMI
	}
	if update.PregnancyWeek != nil {
		out.PregnancyWeek = update.PregnancyWeek
	}
	if update.SymptomsText != "" {
		out.SymptomsText = update.SymptomsText
	}
	if update.Age != nil {
		out.Age = update.Age
	}
	if update.WeightKg != nil {
		out.WeightKg = update.WeightKg
	}
	if update.HeightCm != nil {
		out.HeightCm = update.HeightCm
	}
	if update.FetalKicks != nil {
		out.FetalKicks = update.FetalKicks
	}
	if update.BodyPart != "" {
		out.BodyPart = update.BodyPart
	}
	return out
}

// ExternalNarrative is the optional language-model opinion merged into an assessment
type ExternalNarrative struct {
	Prediction string   `json:"prediction"`
	Steps      []string `json:"steps"`
	Specialist string   `json:"specialist"`
}

// Request carries everything the engine needs; no state is read from anywhere else.
type Request struct {
	Vitals     Vitals             `json:"vitals"`
	PriorScore *int               `json:"prior_score,omitempty"`
	External   *ExternalNarrative `json:"external,omitempty"`
}

// Labels are the short per-vital strings shown on dashboard badges
type Labels struct {
	BloodSugar    string `json:"blood_sugar"`
	BloodPressure string `json:"blood_pressure"`
	BMI           string `json:"bmi"`
}

// Assessment is derived from a snapshot on every call and never stored as-is
type Assessment struct {
	SugarTier             SugarTier `json:"sugar_tier"`
	BPTier                BPTier    `json:"bp_tier"`
	BMITier               BMITier   `json:"bmi_tier"`
	OverallRisk           Level     `json:"overall_risk"`
	HealthScore           int       `json:"health_score"`
	Narrative             []string  `json:"narrative"`
	RecommendedSpecialist string    `json:"recommended_specialist"`
	Prediction            string    `json:"prediction"`
	Guidance              []string  `json:"guidance"`
	StatusHeadline        string    `json:"status_headline"`
	Tags                  []string  `json:"tags"`
	GaugePercent          int       `json:"gauge_percent"`
	Labels                Labels    `json:"labels"`
	RecommendedRoutines   []string  `json:"recommended_routines"`
	Missing               []string  `json:"missing,omitempty"`
	Emergency             bool      `json:"emergency"`
}

// Float returns a pointer to v, for building snapshots in code
func Float(v float64) *float64 {
	return &v
}

// Int returns a pointer to v
func Int(v int) *int {
	return &v
}

// positive unwraps an optional reading; zero, negative and NaN count as absent
func positive(p *float64) (float64, bool) {
	if p == nil {
		return 0, false
	}
	v := *p
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, false
	}
	return v, true
}

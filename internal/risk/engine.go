package risk

// Thresholds holds the numeric cut-offs used for classification.
// Ranges are half-open as documented on each field.
type Thresholds struct {
	SugarEmergencyBelow    float64 // (0, x) is EMERGENCY_LOW
	SugarHighAbove         float64 // (x, inf) is HIGH
	SystolicEmergencyBelow float64 // (0, x) is EMERGENCY_LOW
	SystolicElevatedAt     float64 // [x, inf) is ELEVATED
	DiastolicElevatedAt    float64 // [x, inf) is ELEVATED
	BMILowBelow            float64
	BMIHighAbove           float64
}

// DefaultThresholds returns the clinical defaults
func DefaultThresholds() Thresholds {
	return Thresholds{
		SugarEmergencyBelow:    70,
		SugarHighAbove:         140,
		SystolicEmergencyBelow: 90,
		SystolicElevatedAt:     130,
		DiastolicElevatedAt:    90,
		BMILowBelow:            18.5,
		BMIHighAbove:           25,
	}
}

const (
	ScoreCritical = 20
	ScoreHigh     = 42
	ScoreBaseline = 82

	DefaultSpecialist = "Obstetrician/Gynecologist"
	SugarSpecialist   = "ER Endocrinologist"
	BPSpecialist      = "Cardiologist (ER)"
)

// Engine classifies vitals into risk tiers. It holds no mutable state and
// is safe to share between goroutines.
type Engine struct {
	thresholds Thresholds
}

// NewEngine creates an engine with the default thresholds
func NewEngine() *Engine {
	return &Engine{thresholds: DefaultThresholds()}
}

// NewEngineWithThresholds creates an engine with custom thresholds
func NewEngineWithThresholds(t Thresholds) *Engine {
	return &Engine{thresholds: t}
}

// Thresholds returns the cut-offs this engine uses
func (e *Engine) Thresholds() Thresholds {
	return e.thresholds
}

// Assess classifies a snapshot with no prior score and no external narrative
func (e *Engine) Assess(v Vitals) Assessment {
	return e.AssessRequest(Request{Vitals: v})
}

// AssessRequest classifies a snapshot together with caller-supplied context
func (e *Engine) AssessRequest(req Request) Assessment {
	v := req.Vitals

	sugar, sugarKnown := e.ClassifySugar(v.BloodSugarMgDl)
	bp, bpKnown := e.ClassifyBloodPressure(v.SystolicMmHg, v.DiastolicMmHg)
	bmi, bmiKnown := e.ClassifyBMI(v.BMI)

	a := Assessment{
		SugarTier: sugar,
		BPTier:    bp,
		BMITier:   bmi,
		Labels: Labels{
			BloodSugar:    sugarLabel(sugar, sugarKnown),
			BloodPressure: bpLabel(bp, bpKnown),
			BMI:           bmiLabel(bmi, bmiKnown),
		},
	}

	if !sugarKnown {
		a.Missing = append(a.Missing, VitalBloodSugar)
	}
	if !bpKnown {
		a.Missing = append(a.Missing, VitalBloodPressure)
	}
	if !bmiKnown {
		a.Missing = append(a.Missing, VitalBMI)
	}

	a.OverallRisk = overall(sugar, bp, bmi)
	a.Emergency = a.OverallRisk == LevelCritical
	a.HealthScore = healthScore(a.OverallRisk, req.PriorScore)
	a.GaugePercent = gaugePercent(a.OverallRisk)
	a.RecommendedSpecialist = specialist(sugar, bp, req.External)
	a.Prediction, a.Guidance = outlook(sugar, bp, a.OverallRisk, req.External)
	a.Tags = tags(sugar, bp, bmi)
	a.RecommendedRoutines = routines(sugar, bp, bmi)

	if !sugarKnown && !bpKnown && !bmiKnown {
		a.Narrative = []string{NoDataNarrative}
		a.StatusHeadline = headlineNoData
		return a
	}

	a.StatusHeadline = headline(a.OverallRisk)
	a.Narrative = narrative(sugar, sugarKnown, bp, bpKnown, bmi, bmiKnown, v.PregnancyWeek)
	return a
}

// ClassifySugar buckets a blood sugar reading in mg/dL. The second result is
// false when the reading is absent; absent readings display as NORMAL.
func (e *Engine) ClassifySugar(mgdl *float64) (SugarTier, bool) {
	v, ok := positive(mgdl)
	if !ok {
		return SugarNormal, false
	}
	switch {
	case v < e.thresholds.SugarEmergencyBelow:
		return SugarEmergencyLow, true
	case v > e.thresholds.SugarHighAbove:
		return SugarHigh, true
	default:
		return SugarNormal, true
	}
}

// ClassifyBloodPressure buckets a reading; the most severe rule wins.
func (e *Engine) ClassifyBloodPressure(systolic, diastolic *float64) (BPTier, bool) {
	sys, sysOK := positive(systolic)
	dia, diaOK := positive(diastolic)
	if !sysOK && !diaOK {
		return BPNormal, false
	}

	if sysOK && sys < e.thresholds.SystolicEmergencyBelow {
		return BPEmergencyLow, true
	}
	if (sysOK && sys >= e.thresholds.SystolicElevatedAt) || (diaOK && dia >= e.thresholds.DiastolicElevatedAt) {
		return BPElevated, true
	}
	return BPNormal, true
}

// ClassifyBMI buckets a body mass index
func (e *Engine) ClassifyBMI(bmi *float64) (BMITier, bool) {
	v, ok := positive(bmi)
	if !ok {
		return BMINormal, false
	}
	switch {
	case v < e.thresholds.BMILowBelow:
		return BMILow, true
	case v > e.thresholds.BMIHighAbove:
		return BMIHigh, true
	default:
		return BMINormal, true
	}
}

func overall(sugar SugarTier, bp BPTier, bmi BMITier) Level {
	switch {
	case sugar == SugarEmergencyLow || bp == BPEmergencyLow:
		return LevelCritical
	case sugar == SugarHigh || bp == BPElevated:
		return LevelHigh
	case bmi == BMILow || bmi == BMIHigh:
		return LevelMedium
	default:
		return LevelStable
	}
}

func healthScore(level Level, prior *int) int {
	switch level {
	case LevelCritical:
		return ScoreCritical
	case LevelHigh:
		return ScoreHigh
	}
	// A stored zero is a missing score, not a real one.
	if prior != nil && *prior > 0 && *prior <= 100 {
		return *prior
	}
	return ScoreBaseline
}

func gaugePercent(level Level) int {
	switch level {
	case LevelCritical, LevelHigh:
		return 92
	case LevelMedium:
		return 45
	default:
		return 20
	}
}

func specialist(sugar SugarTier, bp BPTier, ext *ExternalNarrative) string {
	switch {
	case sugar == SugarEmergencyLow:
		return SugarSpecialist
	case bp == BPEmergencyLow:
		return BPSpecialist
	case ext != nil && ext.Specialist != "":
		return ext.Specialist
	default:
		return DefaultSpecialist
	}
}

func outlook(sugar SugarTier, bp BPTier, level Level, ext *ExternalNarrative) (string, []string) {
	switch {
	case sugar == SugarEmergencyLow:
		return sugarEmergency.prediction, cloneStrings(sugarEmergency.steps)
	case bp == BPEmergencyLow:
		return bpEmergency.prediction, cloneStrings(bpEmergency.steps)
	case ext != nil && ext.Prediction != "":
		return ext.Prediction, cloneStrings(ext.Steps)
	}
	o := defaultOutlook[level]
	return o.prediction, cloneStrings(o.steps)
}

func tags(sugar SugarTier, bp BPTier, bmi BMITier) []string {
	out := []string{TagMonitorDaily}
	if sugar == SugarHigh {
		out = append(out, TagReduceSugar)
	}
	if bp == BPElevated {
		out = append(out, TagReduceSalt)
	}
	switch bmi {
	case BMILow:
		out = append(out, TagProteinRich)
	case BMIHigh:
		out = append(out, TagBalancedPortions)
	}
	return out
}

func routines(sugar SugarTier, bp BPTier, bmi BMITier) []string {
	out := make([]string, 0, 3)
	if sugar == SugarHigh {
		out = append(out, RoutineDiabetesPrevention)
	}
	if bp == BPElevated {
		out = append(out, RoutineHeartHealth)
	}
	switch bmi {
	case BMILow:
		out = append(out, RoutineWeightGain)
	case BMIHigh:
		out = append(out, RoutineWeightLoss)
	}
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

package risk

import "fmt"

// NoDataNarrative is the only advisory line when nothing has been recorded
const NoDataNarrative = "Please enter your vitals to monitor your pregnancy journey."

const (
	TagMonitorDaily     = "Monitor Daily"
	TagReduceSugar      = "Reduce Sugar Intake"
	TagReduceSalt       = "Reduce Salt Intake"
	TagProteinRich      = "Protein Rich Diet"
	TagBalancedPortions = "Balanced Portions"
)

const headlineNoData = "Awaiting Vitals"

var headlines = map[Level]string{
	LevelCritical: "Immediate Intervention Required",
	LevelHigh:     "High Risk Detected - Immediate Action Needed",
	LevelMedium:   "Attention Required",
	LevelStable:   "Health is Stable",
}

var sugarAdvice = map[SugarTier]string{
	SugarEmergencyLow: "EMERGENCY: Low blood sugar detected. Eat fast sugar immediately (15g sugar, honey or fruit juice), lie down, and call an ambulance if dizzy.",
	SugarHigh:         "GESTATIONAL SUGAR: Your blood sugar is above the pregnancy target. Focus on protein-rich snacks and cut added sugar.",
	SugarNormal:       "Blood sugar is stable for baby's growth.",
}

var bpAdvice = map[BPTier]string{
	BPEmergencyLow: "EMERGENCY: Critically low blood pressure. Lie on your left side, do not stand up suddenly, and call your doctor.",
	BPElevated:     "BP ALERT: Blood pressure is elevated. This could be a preeclampsia sign; rest, avoid salt, and book an urgent OB-GYN consult.",
	BPNormal:       "Blood pressure is optimal for placental flow.",
}

var bmiAdvice = map[BMITier]string{
	BMILow:    "BMI indicates underweight status. Add calorie-dense, protein-rich meals.",
	BMIHigh:   "BMI is above the healthy range. Favour balanced, fibre-rich meals and light daily activity.",
	BMINormal: "BMI is within the healthy range.",
}

const (
	sugarMissing = "No blood sugar reading yet. Log one to complete your daily check."
	bpMissing    = "No blood pressure reading yet. Log one to complete your daily check."
	bmiMissing   = "No BMI yet. Add your weight and height to calculate it."
)

type outlookText struct {
	prediction string
	steps      []string
}

var sugarEmergency = outlookText{
	prediction: "HYPOGLYCEMIC SHOCK RISK",
	steps:      []string{"Eat 15g sugar/honey immediately", "Lie down with feet elevated", "Call ambulance if dizzy"},
}

var bpEmergency = outlookText{
	prediction: "HYPOTENSIVE CRISIS",
	steps:      []string{"Drink 500ml ORS/salt water", "Do not stand up suddenly", "Check heart rate"},
}

var defaultOutlook = map[Level]outlookText{
	LevelCritical: {
		prediction: "Critical readings detected",
		steps:      []string{"Contact your obstetrician now", "Do not stay alone", "Go to the nearest emergency room if symptoms worsen"},
	},
	LevelHigh: {
		prediction: "Elevated risk of gestational complications",
		steps:      []string{"Book an urgent OB-GYN consult", "Re-check your readings within 24 hours", "Rest on your left side and limit salt and sugar"},
	},
	LevelMedium: {
		prediction: "Weight outside the healthy range for pregnancy",
		steps:      []string{"Review your meal plan with your doctor", "Follow the recommended weight routine", "Track your weight weekly"},
	},
	LevelStable: {
		prediction: "Vitals are within the expected range",
		steps:      []string{"Keep tracking your vitals daily", "Maintain hydration", "Don't miss your prenatal vitamins"},
	},
}

func headline(level Level) string {
	return headlines[level]
}

// narrative builds one advisory line per vital category, in a fixed order
func narrative(sugar SugarTier, sugarKnown bool, bp BPTier, bpKnown bool, bmi BMITier, bmiKnown bool, week *int) []string {
	lines := make([]string, 0, 4)

	if sugarKnown {
		lines = append(lines, sugarAdvice[sugar])
	} else {
		lines = append(lines, sugarMissing)
	}

	if bpKnown {
		lines = append(lines, bpAdvice[bp])
	} else {
		lines = append(lines, bpMissing)
	}

	if bmiKnown {
		lines = append(lines, bmiAdvice[bmi])
	} else {
		lines = append(lines, bmiMissing)
	}

	if week != nil && *week > 0 {
		lines = append(lines, fmt.Sprintf("You are in week %d. Make sure you feel baby movements regularly.", *week))
	}

	return lines
}

func sugarLabel(t SugarTier, known bool) string {
	if !known {
		return "No Data"
	}
	switch t {
	case SugarEmergencyLow:
		return "CRITICAL LOW"
	case SugarHigh:
		return "High"
	default:
		return "Normal"
	}
}

func bpLabel(t BPTier, known bool) string {
	if !known {
		return "No Data"
	}
	switch t {
	case BPEmergencyLow:
		return "CRITICAL LOW"
	case BPElevated:
		return "Elevated"
	default:
		return "Normal"
	}
}

func bmiLabel(t BMITier, known bool) string {
	if !known {
		return "No Data"
	}
	switch t {
	case BMILow:
		return "Low"
	case BMIHigh:
		return "High"
	default:
		return "Normal"
	}
}

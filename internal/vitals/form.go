package vitals

import (
	"math"
	"strconv"
	"strings"

	"github.com/themobileprof/momvitals-be/internal/risk"
)

// FormInput is the raw health form as submitted by the client. Every field is
// free text; nothing is trusted until ParseForm has run.
type FormInput struct {
	BloodSugar    string `json:"sugar" form:"sugar"`
	Systolic      string `json:"systolic" form:"systolic"`
	Diastolic     string `json:"diastolic" form:"diastolic"`
	BMI           string `json:"bmi" form:"bmi"`
	Weight        string `json:"weight" form:"weight"`
	Height        string `json:"height" form:"height"`
	PregnancyWeek string `json:"week" form:"week"`
	FetalKicks    string `json:"kicks" form:"kicks"`
	Age           string `json:"age" form:"age"`
	Symptoms      string `json:"symptoms" form:"symptoms"`
	BodyPart      string `json:"body_part" form:"body_part"`
}

// ParseForm converts the form into a snapshot. Blank, non-numeric and
// non-positive values become absent. A systolic field written as "120/80"
// fills both pressure readings.
func ParseForm(in FormInput) risk.Vitals {
	v := risk.Vitals{
		BloodSugarMgDl: parseFloat(in.BloodSugar),
		SystolicMmHg:   parseFloat(in.Systolic),
		DiastolicMmHg:  parseFloat(in.Diastolic),
		BMI:            parseFloat(in.BMI),
		WeightKg:       parseFloat(in.Weight),
		HeightCm:       parseFloat(in.Height),
		PregnancyWeek:  parseInt(in.PregnancyWeek),
		FetalKicks:     parseInt(in.FetalKicks),
		Age:            parseInt(in.Age),
		SymptomsText:   strings.TrimSpace(in.Symptoms),
		BodyPart:       strings.TrimSpace(in.BodyPart),
	}

	if sys, dia, ok := splitPressure(in.Systolic); ok {
		v.SystolicMmHg = sys
		if v.DiastolicMmHg == nil {
			v.DiastolicMmHg = dia
		}
	}

	return WithDerivedBMI(v)
}

// WithDerivedBMI recomputes BMI whenever both weight and height are known.
// The derived value replaces any BMI typed in directly.
func WithDerivedBMI(v risk.Vitals) risk.Vitals {
	if bmi := ComputeBMI(v.WeightKg, v.HeightCm); bmi != nil {
		v.BMI = bmi
	}
	return v
}

// ComputeBMI returns weight / (height in metres)^2 rounded to one decimal,
// or nil when either input is missing or outside an adult's plausible range.
func ComputeBMI(weightKg, heightCm *float64) *float64 {
	if weightKg == nil || heightCm == nil {
		return nil
	}
	if !weightRange.contains(*weightKg) || !heightRange.contains(*heightCm) {
		return nil
	}
	w, h := *weightKg, *heightCm/100
	bmi := math.Round(w/(h*h)*10) / 10
	return &bmi
}

func parseFloat(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f <= 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

func parseInt(s string) *int {
	f := parseFloat(s)
	if f == nil {
		return nil
	}
	n := int(math.Round(*f))
	if n <= 0 {
		return nil
	}
	return &n
}

func splitPressure(s string) (*float64, *float64, bool) {
	parts := strings.SplitN(s, "/", 2)
	if len(parts) != 2 {
		return nil, nil, false
	}
	sys := parseFloat(parts[0])
	if sys == nil {
		return nil, nil, false
	}
	return sys, parseFloat(parts[1]), true
}

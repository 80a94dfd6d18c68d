package assistant

import (
	"strings"
)

// Danger sign types
const (
	SignBleeding      = "bleeding"
	SignHeadache      = "severe_headache"
	SignVision        = "blurred_vision"
	SignSwelling      = "swelling"
	SignReducedKicks  = "reduced_kicks"
	SignDizziness     = "dizziness"
	SignAbdominalPain = "abdominal_pain"
	SignFluidLeak     = "fluid_leak"
)

const (
	SeveritySevere   = "severe"
	SeverityModerate = "moderate"
	SeverityMild     = "mild"
)

// Sign is a pregnancy danger sign found in a message
type Sign struct {
	Type     string `json:"type"`
	Severity string `json:"severity"`
	Advice   string `json:"advice"`
}

type signPattern struct {
	signType string
	keywords []string
	urgent   bool // always escalated regardless of wording
	advice   string
}

// DangerDetector finds danger signs by keyword
type DangerDetector struct {
	patterns []signPattern
}

// NewDangerDetector creates a detector with the built-in sign list
func NewDangerDetector() *DangerDetector {
	return &DangerDetector{
		patterns: []signPattern{
			{
				signType: SignBleeding,
				keywords: []string{"bleed", "bleeding", "spotting", "blood clots"},
				urgent:   true,
				advice:   "Any vaginal bleeding needs to be checked by a doctor straight away.",
			},
			{
				signType: SignHeadache,
				keywords: []string{"severe headache", "bad headache", "headache won't go", "migraine", "pounding head"},
				advice:   "A strong headache can be a sign of high blood pressure. Check your BP and call your doctor.",
			},
			{
				signType: SignVision,
				keywords: []string{"blurred vision", "blurry", "seeing spots", "flashing lights", "can't see"},
				urgent:   true,
				advice:   "Vision changes can signal pre-eclampsia. Seek care immediately.",
			},
			{
				signType: SignSwelling,
				keywords: []string{"swollen face", "swelling", "swollen hands", "puffy face", "swollen"},
				advice:   "Sudden swelling of the face or hands should be reviewed by your doctor today.",
			},
			{
				signType: SignReducedKicks,
				keywords: []string{"less kicks", "fewer kicks", "reduced kicks", "baby not moving", "no movement", "stopped moving", "not kicking"},
				urgent:   true,
				advice:   "Lie on your left side and count kicks for two hours. Fewer than 10 means you should go to hospital now.",
			},
			{
				signType: SignDizziness,
				keywords: []string{"dizzy", "dizziness", "lightheaded", "fainted", "faint"},
				advice:   "Sit or lie down, drink water and check your sugar and blood pressure.",
			},
			{
				signType: SignAbdominalPain,
				keywords: []string{"severe stomach pain", "abdominal pain", "severe cramps", "belly pain"},
				advice:   "Strong or constant belly pain needs to be checked by your doctor.",
			},
			{
				signType: SignFluidLeak,
				keywords: []string{"water broke", "waters broke", "leaking fluid", "fluid leaking"},
				urgent:   true,
				advice:   "Leaking fluid may mean your waters have broken. Go to your maternity unit.",
			},
		},
	}
}

// Detect returns the danger signs in message, in a stable order
func (d *DangerDetector) Detect(message string) []Sign {
	lower := strings.ToLower(message)
	severity := extractSeverity(lower)

	signs := make([]Sign, 0)
	for _, p := range d.patterns {
		if !containsAny(lower, p.keywords) {
			continue
		}
		s := Sign{Type: p.signType, Severity: severity, Advice: p.advice}
		if p.urgent {
			s.Severity = SeveritySevere
		}
		signs = append(signs, s)
	}
	return signs
}

// Urgent reports whether any sign needs same-hour care
func Urgent(signs []Sign) bool {
	for _, s := range signs {
		if s.Severity == SeveritySevere {
			return true
		}
	}
	return false
}

// extractSeverity determines severity from message
func extractSeverity(message string) string {
	switch {
	case containsAny(message, []string{"severe", "really bad", "terrible", "excruciating", "unbearable", "can't handle", "worst"}):
		return SeveritySevere
	case containsAny(message, []string{"mild", "slight", "little", "bit of"}):
		return SeverityMild
	default:
		return SeverityModerate
	}
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

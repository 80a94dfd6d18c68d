package reminder

import (
	"regexp"
	"strings"
	"time"

	"github.com/themobileprof/momvitals-be/internal/classifier"
)

// Suggestion types
const (
	TypeMedication      = "medication"
	TypeSymptomFollowUp = "symptom_followup"
)

// Suggestion is a reminder the chat offers to create. Time is a daily
// wall-clock time "15:04", the same shape stored reminders use.
type Suggestion struct {
	Type     string `json:"type"`
	Name     string `json:"name"`
	Time     string `json:"time"`
	Priority string `json:"priority"` // "urgent", "high", "medium"
}

const defaultMedicationTime = "08:00"

// Suggester decides when a chat message deserves a reminder
type Suggester struct {
	urgentKeywords  []string
	medicationWords []string
	requestPattern  *regexp.Regexp
	medNamePattern  *regexp.Regexp
	clockPattern    *regexp.Regexp
	meridiemPattern *regexp.Regexp
}

// NewSuggester creates a new reminder suggester
func NewSuggester() *Suggester {
	return &Suggester{
		urgentKeywords: []string{
			"severe", "bleeding", "emergency", "urgent",
			"intense pain", "can't breathe", "contractions",
		},
		medicationWords: []string{
			"tablet", "tablets", "pill", "pills", "medicine", "medication",
			"supplement", "supplements", "vitamin", "vitamins", "dose",
		},
		requestPattern:  regexp.MustCompile(`\b(remind|reminder|take|taking|took|forgot|forget)\b`),
		medNamePattern:  regexp.MustCompile(`\b(iron|folic acid|calcium|vitamin d|insulin|metformin|aspirin|prenatal vitamins?)\b`),
		clockPattern:    regexp.MustCompile(`\b([01]?\d|2[0-3]):([0-5]\d)\b`),
		meridiemPattern: regexp.MustCompile(`\b(1[0-2]|0?[1-9])(?::([0-5]\d))?\s*(am|pm)\b`),
	}
}

// Suggest returns a reminder for medication requests and symptom reports.
// Follow-ups are set for the same time tomorrow, which as a daily reminder is
// the current wall-clock time.
func (s *Suggester) Suggest(intent classifier.Intent, message string, now time.Time) (Suggestion, bool) {
	lower := strings.ToLower(message)

	medName := s.medNamePattern.FindString(lower)
	if s.requestPattern.MatchString(lower) && (medName != "" || containsAny(lower, s.medicationWords)) {
		name := "Medication"
		if medName != "" {
			name = strings.ToUpper(medName[:1]) + medName[1:]
		}
		clock, ok := s.parseClock(lower)
		if !ok {
			clock = defaultMedicationTime
		}
		return Suggestion{Type: TypeMedication, Name: name, Time: clock, Priority: "medium"}, true
	}

	if intent != classifier.IntentSymptom {
		return Suggestion{}, false
	}

	priority := "high"
	if containsAny(lower, s.urgentKeywords) {
		priority = "urgent"
	}
	return Suggestion{
		Type:     TypeSymptomFollowUp,
		Name:     "Check how the symptom feels",
		Time:     now.Format("15:04"),
		Priority: priority,
	}, true
}

// parseClock finds "21:00" or "8pm" / "8:30 am" in text
func (s *Suggester) parseClock(text string) (string, bool) {
	if m := s.meridiemPattern.FindStringSubmatch(text); m != nil {
		layout := "3pm"
		value := m[1] + m[3]
		if m[2] != "" {
			layout = "3:04pm"
			value = m[1] + ":" + m[2] + m[3]
		}
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format("15:04"), true
		}
	}
	if m := s.clockPattern.FindStringSubmatch(text); m != nil {
		if t, err := time.Parse("15:04", m[1]+":"+m[2]); err == nil {
			return t.Format("15:04"), true
		}
	}
	return "", false
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

package classifier

import (
	"testing"
)

func TestClassifier_Classify(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantIntent Intent
		minConf    float64
	}{
		// Vitals
		{name: "sugar reading", input: "my sugar is 55", wantIntent: IntentVitals, minConf: 0.8},
		{name: "bp reading", input: "bp 118/76", wantIntent: IntentVitals, minConf: 0.8},
		{name: "greeting with vitals", input: "hi doctor, glucose 180 mg/dl today", wantIntent: IntentVitals, minConf: 0.8},
		{name: "weight", input: "I weigh 62 kg now", wantIntent: IntentVitals, minConf: 0.8},

		// Symptoms
		{name: "headache", input: "I have a bad headache", wantIntent: IntentSymptom, minConf: 0.75},
		{name: "swollen feet", input: "my feet are swollen", wantIntent: IntentSymptom, minConf: 0.75},
		{name: "spotting", input: "I noticed some spotting", wantIntent: IntentSymptom, minConf: 0.75},
		{name: "fewer kicks", input: "baby kicks are less than yesterday", wantIntent: IntentSymptom, minConf: 0.75},

		// Documents
		{name: "pdf", input: "report.pdf", wantIntent: IntentDocument, minConf: 0.8},
		{name: "lab report", input: "here is my lab report", wantIntent: IntentDocument, minConf: 0.8},

		// Small talk
		{name: "hello", input: "hello", wantIntent: IntentSmallTalk, minConf: 0.8},
		{name: "how are you", input: "how are you doing?", wantIntent: IntentSmallTalk, minConf: 0.8},
		{name: "thank you", input: "thank you so much", wantIntent: IntentGratitude, minConf: 0.8},

		// Pregnancy questions
		{name: "food question", input: "what foods should I avoid during pregnancy?", wantIntent: IntentPregnancyQ, minConf: 0.7},
		{name: "exercise question", input: "is yoga safe for me", wantIntent: IntentPregnancyQ, minConf: 0.7},

		// Unclear
		{name: "single word", input: "help", wantIntent: IntentUnclear, minConf: 0.1},
		{name: "gibberish", input: "xyz abc", wantIntent: IntentUnclear, minConf: 0.1},
	}

	c := NewClassifier()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := c.Classify(tt.input)

			if result.Intent != tt.wantIntent {
				t.Errorf("Classify() intent = %v, want %v", result.Intent, tt.wantIntent)
			}
			if result.Confidence < tt.minConf {
				t.Errorf("Classify() confidence = %v, want >= %v", result.Confidence, tt.minConf)
			}
			if result.Confidence > 0.95 {
				t.Errorf("Classify() confidence = %v exceeds cap", result.Confidence)
			}
		})
	}
}

func TestClassifier_NormalizeText(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: "  hello world  ", want: "hello world"},
		{input: "HELLO World", want: "hello world"},
		{input: "hello    world", want: "hello world"},
		{input: "hello world!", want: "hello world"},
	}

	c := NewClassifier()
	for _, tt := range tests {
		if got := c.normalizeText(tt.input); got != tt.want {
			t.Errorf("normalizeText(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestClassifier_EmptyInput(t *testing.T) {
	c := NewClassifier()
	result := c.Classify("   ")

	if result.Intent != IntentUnclear {
		t.Errorf("Expected IntentUnclear for empty input, got %v", result.Intent)
	}
}

package classifier

import (
	"regexp"
	"strings"
)

// Intent represents the classified intent of a chat message
type Intent string

const (
	IntentVitals     Intent = "vitals_report"
	IntentSymptom    Intent = "symptom_report"
	IntentSmallTalk  Intent = "small_talk"
	IntentGratitude  Intent = "gratitude"
	IntentPregnancyQ Intent = "pregnancy_question"
	IntentDocument   Intent = "document_upload"
	IntentUnclear    Intent = "unclear"
)

// ClassifierResult contains the classification result
type ClassifierResult struct {
	Intent     Intent  `json:"intent"`
	Confidence float64 `json:"confidence"`
}

// Classifier performs rule-based intent classification
type Classifier struct {
	vitalsPatterns    []*regexp.Regexp
	symptomPatterns   []*regexp.Regexp
	greetingPatterns  []*regexp.Regexp
	thanksPatterns    []*regexp.Regexp
	pregnancyPatterns []*regexp.Regexp
	documentPatterns  []*regexp.Regexp
	spaceNormalizer   *regexp.Regexp
}

// NewClassifier creates a new intent classifier
func NewClassifier() *Classifier {
	return &Classifier{
		spaceNormalizer: regexp.MustCompile(`\s+`),
		vitalsPatterns: compilePatterns([]string{
			`\b(sugar|glucose)\b\D{0,20}\d`,
			`\b(bp|blood pressure)\b\D{0,20}\d`,
			`\b\d{2,3}\s*(/|over)\s*\d{2,3}\b`,
			`\bbmi\b\D{0,10}\d`,
			`\b(weight|weigh|height)\b\D{0,10}\d`,
			`\d\s*(kg|cm|mg/dl)\b`,
		}),
		symptomPatterns: compilePatterns([]string{
			`\b(pain|hurt|hurting|ache|aching|cramp|cramps|cramping)\b`,
			`\b(nausea|nauseous|vomit|vomiting|sick)\b`,
			`\b(headache|migraine)\b`,
			`\b(swelling|swollen|puffy)\b`,
			`\b(bleeding|blood loss|spotting)\b`,
			`\b(dizzy|dizziness|faint|lightheaded)\b`,
			`\b(blurred|blurry)\b`,
			`\b(tired|fatigue|exhausted)\b`,
			`\b(fever|temperature)\b`,
			`\b(kicks?|movements?)\b.*\b(less|fewer|reduced|stopped|not)\b`,
			`\bi('m| am| have).*\b(experiencing|feeling|having|noticing|noticed)\b`,
		}),
		greetingPatterns: compilePatterns([]string{
			`^(hi|hello|hey|namaste|good morning|good afternoon|good evening)\b`,
			`\bhow are you\b`,
		}),
		thanksPatterns: compilePatterns([]string{
			`\b(thanks|thank you|thx|dhanyavad)\b`,
			`\bappreciate it\b`,
		}),
		pregnancyPatterns: compilePatterns([]string{
			`\b(baby|fetus|pregnancy|pregnant|trimester)\b`,
			`\b(diet|food|foods|eat|eating|exercise|yoga)\b`,
			`\b(safe|safety|avoid)\b`,
			`\b(ultrasound|scan|checkup|check-up)\b`,
		}),
		documentPatterns: compilePatterns([]string{
			`\.(pdf|jpg|jpeg|png)\b`,
			`\b(uploaded|attached|attachment)\b`,
			`\b(lab report|test report|prescription)\b`,
		}),
	}
}

// Classify determines the intent of the input message. Vitals and symptoms
// are checked before small talk so "hi, my sugar is 55" is never answered
// with a greeting.
func (c *Classifier) Classify(input string) ClassifierResult {
	normalized := c.normalizeText(input)

	if normalized == "" {
		return ClassifierResult{Intent: IntentUnclear, Confidence: 0.1}
	}

	if n := c.countMatches(normalized, c.vitalsPatterns); n > 0 {
		return ClassifierResult{Intent: IntentVitals, Confidence: scaled(0.8, n)}
	}

	if n := c.countMatches(normalized, c.symptomPatterns); n > 0 {
		return ClassifierResult{Intent: IntentSymptom, Confidence: scaled(0.75, n)}
	}

	if c.matchesPatterns(normalized, c.documentPatterns) {
		return ClassifierResult{Intent: IntentDocument, Confidence: 0.85}
	}

	if c.matchesPatterns(normalized, c.thanksPatterns) {
		return ClassifierResult{Intent: IntentGratitude, Confidence: 0.9}
	}

	if c.matchesPatterns(normalized, c.greetingPatterns) {
		return ClassifierResult{Intent: IntentSmallTalk, Confidence: 0.9}
	}

	if n := c.countMatches(normalized, c.pregnancyPatterns); n > 0 {
		return ClassifierResult{Intent: IntentPregnancyQ, Confidence: scaled(0.7, n)}
	}

	return ClassifierResult{Intent: IntentUnclear, Confidence: 0.3}
}

func scaled(base float64, matches int) float64 {
	confidence := base + float64(matches)*0.05
	if confidence > 0.95 {
		confidence = 0.95
	}
	return confidence
}

// normalizeText preprocesses input text for classification
func (c *Classifier) normalizeText(input string) string {
	text := strings.ToLower(input)
	text = strings.TrimSpace(text)
	text = c.spaceNormalizer.ReplaceAllString(text, " ")
	return strings.TrimRight(text, "!?.,;:")
}

// matchesPatterns checks if any pattern matches
func (c *Classifier) matchesPatterns(text string, patterns []*regexp.Regexp) bool {
	for _, pattern := range patterns {
		if pattern.MatchString(text) {
			return true
		}
	}
	return false
}

// countMatches counts how many patterns match
func (c *Classifier) countMatches(text string, patterns []*regexp.Regexp) int {
	count := 0
	for _, pattern := range patterns {
		if pattern.MatchString(text) {
			count++
		}
	}
	return count
}

// compilePatterns compiles a slice of regex patterns
func compilePatterns(patterns []string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		compiled = append(compiled, regexp.MustCompile(p))
	}
	return compiled
}

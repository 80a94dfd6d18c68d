package privacy

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	maxLogChars = 200
	maxAPIChars = 600
)

var (
	emailRegex = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)

	// Matches: 555-123-4567, (555) 123-4567, +1-555-123-4567, 555-1234
	phoneRegex = regexp.MustCompile(`(\+\d{1,3}[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]\d{4}|\b\d{3}[-.\s]\d{4}\b`)

	// Ten-digit mobile numbers written without separators
	mobileRegex = regexp.MustCompile(`\b(?:\+?91[-\s]?)?[6-9]\d{9}\b`)

	ssnRegex = regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`)

	// National ID written as three groups of four digits
	nationalIDRegex = regexp.MustCompile(`\b\d{4}\s\d{4}\s\d{4}\b`)

	creditCardRegex = regexp.MustCompile(`\b\d{4}[-\s]\d{4}[-\s]\d{4}[-\s]\d{4}\b`)

	medicalIDRegex = regexp.MustCompile(`\b(MRN|Medical Record|Patient ID)[-:\s]*[A-Z0-9]{6,}\b`)

	spaceRegex = regexp.MustCompile(`\s+`)
)

// RedactSensitiveData removes PII from text. Vital readings such as
// "120/80" or "24 weeks" are left untouched.
func RedactSensitiveData(text string) string {
	text = emailRegex.ReplaceAllString(text, "[EMAIL]")
	// Cards before phones so a card number is not split into phone fragments
	text = creditCardRegex.ReplaceAllString(text, "[CARD]")
	text = nationalIDRegex.ReplaceAllString(text, "[ID]")
	text = ssnRegex.ReplaceAllString(text, "[SSN]")
	text = phoneRegex.ReplaceAllString(text, "[PHONE]")
	text = mobileRegex.ReplaceAllString(text, "[PHONE]")
	text = medicalIDRegex.ReplaceAllString(text, "[MEDICAL_ID]")
	return text
}

// SanitizeForLogging prepares text for safe logging
func SanitizeForLogging(text string) string {
	return truncate(RedactSensitiveData(text), maxLogChars)
}

// SanitizeForAPI removes PII and collapses whitespace before text is sent to
// a language model provider
func SanitizeForAPI(text string) string {
	sanitized := RedactSensitiveData(text)
	sanitized = strings.TrimSpace(spaceRegex.ReplaceAllString(sanitized, " "))
	return truncate(sanitized, maxAPIChars)
}

// ContainsPII checks if text contains potential PII
func ContainsPII(text string) bool {
	return emailRegex.MatchString(text) ||
		phoneRegex.MatchString(text) ||
		mobileRegex.MatchString(text) ||
		ssnRegex.MatchString(text) ||
		nationalIDRegex.MatchString(text) ||
		creditCardRegex.MatchString(text) ||
		medicalIDRegex.MatchString(text)
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max-3]) + "..."
}

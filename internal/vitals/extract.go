package vitals

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/themobileprof/momvitals-be/internal/risk"
)

// Plausible ranges for readings typed into chat. Numbers outside them are
// treated as something else (a time, a count, a change) and ignored.
var (
	sugarRange     = bounds{20, 600}
	mmolRange      = bounds{1, 35}
	systolicRange  = bounds{50, 260}
	diastolicRange = bounds{30, 160}
	bmiRange       = bounds{10, 70}
	weightRange    = bounds{30, 250}
	heightRange    = bounds{100, 230}
)

// mgPerMmol converts a glucose reading from mmol/L to mg/dL
const mgPerMmol = 18.0

type bounds struct{ min, max float64 }

func (b bounds) contains(f float64) bool {
	return f >= b.min && f <= b.max
}

// Extractor pulls vitals out of free-text chat messages using rule-based
// patterns. It is safe for concurrent use after construction.
type Extractor struct {
	sugarKeyword     *regexp.Regexp
	clauseEnd        *regexp.Regexp
	sugarNumber      *regexp.Regexp
	sugarUnitPattern []*regexp.Regexp
	pressurePatterns []*regexp.Regexp
	bmiPatterns      []*regexp.Regexp
	weekPatterns     []*regexp.Regexp
	agePatterns      []*regexp.Regexp
	weightPatterns   []*regexp.Regexp
	heightPatterns   []*regexp.Regexp
	spaceNormalizer  *regexp.Regexp
}

// NewExtractor creates an extractor with the default English patterns.
// Patterns name the number group "value"; a match whose "skip" group is set
// describes a change or a time rather than a reading.
func NewExtractor() *Extractor {
	return &Extractor{
		spaceNormalizer: regexp.MustCompile(`\s+`),
		sugarKeyword:    regexp.MustCompile(`\b(?:sugar|glucose)\b`),
		clauseEnd:       regexp.MustCompile(`[,;!?]|\.(?:\s|$)|\b(?:and|but)\b`),
		sugarNumber: regexp.MustCompile(`\b(?P<value>\d{1,3}(?:\.\d+)?)\s*` +
			`(?P<unit>mg\s*/\s*dl\b|mmol(?:\s*/\s*l)?\b|` +
			`(?P<skip>[ap]m\b|[ap]\.m\.?|o'?clock\b|hours?\b|hrs?\b|h\b|min(?:ute)?s?\b|days?\b|weeks?\b|months?\b|times?\b|%|:\d{2}))?`),
		sugarUnitPattern: compilePatterns([]string{
			`\b(?P<value>\d{1,3}(?:\.\d+)?)\s*(?P<unit>mg\s*/\s*dl|mmol\s*/\s*l)\b`,
		}),
		pressurePatterns: compilePatterns([]string{
			`\b(?:bp|blood\s+pressure)\b\D{0,12}(\d{2,3})\s*(?:/|over)\s*(\d{2,3})`,
			`\b(\d{2,3})\s*/\s*(\d{2,3})\s*mm\s*hg\b`,
		}),
		bmiPatterns: compilePatterns([]string{
			`\bbmi\b\D{0,10}(?P<value>\d{1,2}(?:\.\d+)?)`,
		}),
		weekPatterns: compilePatterns([]string{
			`\b(?P<value>\d{1,2})\s*(?:weeks?|wks?)\s+(?:pregnant|along|gestation)`,
			`\b(?:week|wk)\s*(?P<value>\d{1,2})\b`,
		}),
		agePatterns: compilePatterns([]string{
			`\b(?P<value>\d{2})\s*(?:years?|yrs?)\s*old\b`,
			`\bage\s*(?:is|:)?\s*(?P<value>\d{2})\b`,
		}),
		weightPatterns: compilePatterns([]string{
			`\bweigh(?:t|s|ed|ing)?\s*(?:is|was|of|now|:)?\s*(?:is\s+|was\s+|now\s+)?(?P<value>\d{2,3}(?:\.\d+)?)`,
			`(?:\b(?P<skip>gained|gain|gaining|lost|lose|losing|put\s+on|dropped|down|up|by|extra|more)\s+` +
				`(?:about\s+|around\s+|nearly\s+|almost\s+|over\s+|another\s+)?)?` +
				`\b(?P<value>\d{2,3}(?:\.\d+)?)\s*(?:kg|kgs|kilos?)\b`,
		}),
		heightPatterns: compilePatterns([]string{
			`\bheight\s*(?:is|of|:)?\s*(?P<value>\d{3}(?:\.\d+)?)`,
			`\b(?P<value>\d{3}(?:\.\d+)?)\s*cm\b`,
		}),
	}
}

// Extract returns the vitals found in text and whether anything was found.
// Numbers that read as times, durations, counts or weight changes are left
// out, as are values outside plausible ranges.
func (e *Extractor) Extract(text string) (risk.Vitals, bool) {
	normalized := e.normalizeText(text)
	var v risk.Vitals
	if normalized == "" {
		return v, false
	}

	if sys, dia := e.firstPair(normalized, e.pressurePatterns); sys != nil {
		v.SystolicMmHg = sys
		v.DiastolicMmHg = dia
	}
	v.BloodSugarMgDl = e.sugar(normalized)
	v.BMI = e.firstNumber(normalized, e.bmiPatterns, bmiRange)
	v.WeightKg = e.firstNumber(normalized, e.weightPatterns, weightRange)
	v.HeightCm = e.firstNumber(normalized, e.heightPatterns, heightRange)

	if week := e.firstNumber(normalized, e.weekPatterns, bounds{1, 42}); week != nil {
		v.PregnancyWeek = risk.Int(int(*week))
	}
	if age := e.firstNumber(normalized, e.agePatterns, bounds{12, 60}); age != nil {
		v.Age = risk.Int(int(*age))
	}

	found := v.BloodSugarMgDl != nil || v.SystolicMmHg != nil || v.BMI != nil ||
		v.WeightKg != nil || v.HeightCm != nil || v.PregnancyWeek != nil || v.Age != nil

	return WithDerivedBMI(v), found
}

// sugar reads the first glucose value in mg/dL. After "sugar" or "glucose"
// the rest of the clause is scanned for a number that is not a time or a
// duration; otherwise any number written with a glucose unit is used.
func (e *Extractor) sugar(text string) *float64 {
	for _, loc := range e.sugarKeyword.FindAllStringIndex(text, -1) {
		clause := text[loc[1]:]
		if end := e.clauseEnd.FindStringIndex(clause); end != nil {
			clause = clause[:end[0]]
		}
		for _, m := range e.sugarNumber.FindAllStringSubmatch(clause, -1) {
			if group(e.sugarNumber, m, "skip") != "" {
				continue
			}
			if f := glucose(group(e.sugarNumber, m, "value"), group(e.sugarNumber, m, "unit")); f != nil {
				return f
			}
		}
	}

	for _, p := range e.sugarUnitPattern {
		for _, m := range p.FindAllStringSubmatch(text, -1) {
			if f := glucose(group(p, m, "value"), group(p, m, "unit")); f != nil {
				return f
			}
		}
	}
	return nil
}

// glucose converts a matched value to mg/dL, or nil when it is implausible
func glucose(value, unit string) *float64 {
	f := parseFloat(value)
	if f == nil {
		return nil
	}
	if strings.HasPrefix(unit, "mmol") {
		if !mmolRange.contains(*f) {
			return nil
		}
		mg := math.Round(*f * mgPerMmol)
		return &mg
	}
	if !sugarRange.contains(*f) {
		return nil
	}
	return f
}

// normalizeText lowercases and collapses whitespace
func (e *Extractor) normalizeText(input string) string {
	text := strings.ToLower(strings.TrimSpace(input))
	return e.spaceNormalizer.ReplaceAllString(text, " ")
}

func (e *Extractor) firstNumber(text string, patterns []*regexp.Regexp, within bounds) *float64 {
	for _, p := range patterns {
		for _, m := range p.FindAllStringSubmatch(text, -1) {
			if group(p, m, "skip") != "" {
				continue
			}
			if f := parseFloat(group(p, m, "value")); f != nil && within.contains(*f) {
				return f
			}
		}
	}
	return nil
}

func (e *Extractor) firstPair(text string, patterns []*regexp.Regexp) (*float64, *float64) {
	for _, p := range patterns {
		for _, m := range p.FindAllStringSubmatch(text, -1) {
			sys, dia := parseFloat(m[1]), parseFloat(m[2])
			if sys == nil || dia == nil || !systolicRange.contains(*sys) || !diastolicRange.contains(*dia) || *dia >= *sys {
				continue
			}
			return sys, dia
		}
	}
	return nil, nil
}

// group returns the named submatch, or "" when the pattern has no such group
// or it did not participate
func group(p *regexp.Regexp, m []string, name string) string {
	i := p.SubexpIndex(name)
	if i < 0 || i >= len(m) {
		return ""
	}
	return m[i]
}

// compilePatterns compiles a slice of regex patterns
func compilePatterns(patterns []string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		compiled = append(compiled, regexp.MustCompile(p))
	}
	return compiled
}

// FormatReading renders an optional number for chat replies
func FormatReading(f *float64) string {
	if f == nil {
		return "-"
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}

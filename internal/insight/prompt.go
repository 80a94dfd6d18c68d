package insight

import (
	"fmt"
	"strings"

	"github.com/themobileprof/momvitals-be/internal/privacy"
	"github.com/themobileprof/momvitals-be/internal/risk"
	"github.com/themobileprof/momvitals-be/internal/vitals"
	"github.com/themobileprof/momvitals-be/pkg/llm"
)

// PromptRequest contains everything the model sees about one snapshot
type PromptRequest struct {
	Vitals     risk.Vitals
	Assessment risk.Assessment
}

// Builder constructs clinical insight prompts
type Builder struct{}

// NewBuilder creates a new prompt builder
func NewBuilder() *Builder {
	return &Builder{}
}

// BuildPrompt returns the system and user messages for one insight request.
// Symptom text is sanitized before it leaves the process.
func (b *Builder) BuildPrompt(req PromptRequest) []llm.ChatMessage {
	return []llm.ChatMessage{
		{Role: "system", Content: b.buildSystemPrompt()},
		{Role: "user", Content: b.buildUserPrompt(req)},
	}
}

func (b *Builder) buildSystemPrompt() string {
	var sb strings.Builder
	sb.Grow(1024)

	sb.WriteString("You are a maternal health diagnostic assistant. ")
	sb.WriteString("From a pregnant patient's vitals and reported symptoms, predict the most likely serious condition to watch for and the next steps.\n\n")

	sb.WriteString("OUTPUT FORMAT:\n")
	sb.WriteString(`Return only a JSON object: {"prediction": "...", "steps": ["..."], "specialist": "..."}`)
	sb.WriteString("\n\n")

	sb.WriteString("GUIDELINES:\n")
	sb.WriteString("1. prediction: one short phrase naming the possible condition, not a diagnosis\n")
	sb.WriteString("2. steps: 2-4 short, concrete actions the patient can take today\n")
	sb.WriteString("3. specialist: the doctor type to consult; default to Obstetrician/Gynecologist\n")
	sb.WriteString("4. Consider pregnancy-specific risks such as gestational diabetes and preeclampsia\n")
	sb.WriteString("5. Avoid medication names and dosages\n")
	sb.WriteString("6. Use simple, everyday language\n")

	return sb.String()
}

func (b *Builder) buildUserPrompt(req PromptRequest) string {
	v := req.Vitals

	symptoms := privacy.SanitizeForAPI(v.SymptomsText)
	if symptoms == "" {
		symptoms = "None reported"
	}
	if v.BodyPart != "" {
		symptoms += " (area: " + privacy.SanitizeForAPI(v.BodyPart) + ")"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Sugar: %s mg/dL, ", vitals.FormatReading(v.BloodSugarMgDl)))
	sb.WriteString(fmt.Sprintf("BP: %s/%s mmHg, ", vitals.FormatReading(v.SystolicMmHg), vitals.FormatReading(v.DiastolicMmHg)))
	sb.WriteString(fmt.Sprintf("BMI: %s, ", vitals.FormatReading(v.BMI)))
	sb.WriteString(fmt.Sprintf("Pregnancy week: %s, ", optionalInt(v.PregnancyWeek)))
	sb.WriteString(fmt.Sprintf("Age: %s, ", optionalInt(v.Age)))
	sb.WriteString(fmt.Sprintf("Symptoms: %s. ", symptoms))
	sb.WriteString(fmt.Sprintf("Rule-based risk: %s.", req.Assessment.OverallRisk))

	return sb.String()
}

// BuildQuestionPrompt returns the messages for a free-form pregnancy question
func (b *Builder) BuildQuestionPrompt(question string, week *int) []llm.ChatMessage {
	var sb strings.Builder
	sb.WriteString("You are a friendly maternal health assistant for pregnant women. ")
	sb.WriteString("Answer in at most three short sentences of plain language. ")
	sb.WriteString("Never diagnose or name medication doses. ")
	sb.WriteString("If the question describes bleeding, severe pain, vision changes or reduced baby movements, tell her to contact her doctor now.")

	user := privacy.SanitizeForAPI(question)
	if week != nil {
		user = fmt.Sprintf("(Pregnancy week %d) %s", *week, user)
	}

	return []llm.ChatMessage{
		{Role: "system", Content: sb.String()},
		{Role: "user", Content: user},
	}
}

func optionalInt(p *int) string {
	if p == nil {
		return "unknown"
	}
	return fmt.Sprintf("%d", *p)
}

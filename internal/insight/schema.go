package insight

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/themobileprof/momvitals-be/internal/risk"
)

// ErrInvalidNarrative is returned when the model reply is not a usable narrative
var ErrInvalidNarrative = errors.New("invalid narrative")

const narrativeSchema = `{
	"type": "object",
	"required": ["prediction", "steps"],
	"properties": {
		"prediction": {"type": "string", "minLength": 1, "maxLength": 300},
		"steps": {
			"type": "array",
			"maxItems": 8,
			"items": {"type": "string", "minLength": 1, "maxLength": 300}
		},
		"specialist": {"type": "string", "maxLength": 120}
	}
}`

const maxSteps = 5

// Parser validates and decodes model replies
type Parser struct {
	schema *gojsonschema.Schema
}

// NewParser compiles the narrative schema
func NewParser() (*Parser, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(narrativeSchema))
	if err != nil {
		return nil, fmt.Errorf("compile narrative schema: %w", err)
	}
	return &Parser{schema: schema}, nil
}

// Parse turns raw model output into a narrative. Code fences around the JSON
// are tolerated.
func (p *Parser) Parse(raw string) (*risk.ExternalNarrative, error) {
	doc := stripFences(raw)
	if doc == "" {
		return nil, fmt.Errorf("%w: empty reply", ErrInvalidNarrative)
	}

	result, err := p.schema.Validate(gojsonschema.NewStringLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidNarrative, err)
	}
	if !result.Valid() {
		problems := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			problems = append(problems, e.String())
		}
		return nil, fmt.Errorf("%w: %s", ErrInvalidNarrative, strings.Join(problems, "; "))
	}

	var n risk.ExternalNarrative
	if err := json.Unmarshal([]byte(doc), &n); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidNarrative, err)
	}
	return normalize(&n), nil
}

func normalize(n *risk.ExternalNarrative) *risk.ExternalNarrative {
	n.Prediction = strings.TrimSpace(n.Prediction)
	n.Specialist = strings.TrimSpace(n.Specialist)
	if strings.EqualFold(n.Specialist, "n/a") {
		n.Specialist = ""
	}

	steps := make([]string, 0, len(n.Steps))
	for _, s := range n.Steps {
		if s = strings.TrimSpace(s); s != "" {
			steps = append(steps, s)
		}
		if len(steps) == maxSteps {
			break
		}
	}
	n.Steps = steps
	return n
}

func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(s, "```")
	}
	return strings.TrimSpace(s)
}

package api

import (
	"context"

	"go.uber.org/zap"

	"github.com/themobileprof/momvitals-be/internal/audit"
	"github.com/themobileprof/momvitals-be/internal/insight"
	"github.com/themobileprof/momvitals-be/internal/risk"
	"github.com/themobileprof/momvitals-be/internal/routine"
)

// Insighter produces a model narrative for an assessed snapshot
type Insighter interface {
	Generate(ctx context.Context, req insight.PromptRequest) insight.Result
}

// Outcome is what every assessing endpoint returns
type Outcome struct {
	Assessment risk.Assessment   `json:"assessment"`
	Insight    insight.Result    `json:"insight"`
	Routines   []routine.Routine `json:"routines"`
	Audit      *audit.Summary    `json:"audit,omitempty"`
}

// Assessor runs the rule engine, asks the model for a narrative on top of the
// rule-based result and records the outcome in the audit trail.
type Assessor struct {
	engine  *risk.Engine
	insight Insighter
	catalog *routine.Catalog
	audit   audit.Store
	logger  *zap.Logger
}

// NewAssessor creates an assessor. insighter and store may be nil.
func NewAssessor(engine *risk.Engine, insighter Insighter, catalog *routine.Catalog, store audit.Store, logger *zap.Logger) *Assessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Assessor{
		engine:  engine,
		insight: insighter,
		catalog: catalog,
		audit:   store,
		logger:  logger,
	}
}

// Assess classifies req. A narrative already present on req is used as is;
// otherwise the model is asked when the snapshot has readings.
func (a *Assessor) Assess(ctx context.Context, userID, origin string, req risk.Request) Outcome {
	result := insight.Result{Source: insight.SourceDisabled}
	if req.External == nil && a.insight != nil && req.Vitals.HasReadings() {
		base := a.engine.AssessRequest(req)
		result = a.insight.Generate(ctx, insight.PromptRequest{Vitals: req.Vitals, Assessment: base})
		req.External = result.Narrative
	}

	assessment := a.engine.AssessRequest(req)
	out := Outcome{
		Assessment: assessment,
		Insight:    result,
		Routines:   a.catalog.Recommend(assessment),
	}

	if a.audit != nil {
		summary, err := a.audit.Insert(ctx, audit.FromAssessment(userID, origin, assessment, string(result.Source)))
		if err != nil {
			a.logger.Warn("audit insert failed", zap.String("origin", origin), zap.Error(err))
		} else {
			out.Audit = &summary
		}
	}
	return out
}

// Preview classifies req without the model or the audit trail
func (a *Assessor) Preview(req risk.Request) Outcome {
	assessment := a.engine.AssessRequest(req)
	return Outcome{
		Assessment: assessment,
		Insight:    insight.Result{Source: insight.SourceDisabled},
		Routines:   a.catalog.Recommend(assessment),
	}
}

// Record writes an already computed assessment to the audit trail
func (a *Assessor) Record(ctx context.Context, userID, origin string, assessment risk.Assessment) {
	if a.audit == nil {
		return
	}
	if _, err := a.audit.Insert(ctx, audit.FromAssessment(userID, origin, assessment, "")); err != nil {
		a.logger.Warn("audit insert failed", zap.String("origin", origin), zap.Error(err))
	}
}

// Engine exposes the rule engine for cheap recomputation without the model
func (a *Assessor) Engine() *risk.Engine {
	return a.engine
}

// Catalog exposes the routine catalog
func (a *Assessor) Catalog() *routine.Catalog {
	return a.catalog
}

package activities

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/meridianlabs-ai/deepresearch/internal/metrics"
	"github.com/meridianlabs-ai/deepresearch/internal/research"
)

// Capabilities is the boundary to the hosted text-generation, search, and
// delivery services. Satisfied by *llm.Client; narrowed here so tests can
// substitute fakes.
type Capabilities interface {
	Classify(ctx context.Context, query string) (research.Route, error)
	Clarify(ctx context.Context, contextStr string) (research.ClarificationRound, error)
	Plan(ctx context.Context, query string, numSearches int) (research.SearchPlan, error)
	Write(ctx context.Context, query string, results []string, feedback string) (research.ReportDraft, error)
	Evaluate(ctx context.Context, query, markdown string, results []string) (research.EvaluationVerdict, error)
	Search(ctx context.Context, input string) (string, error)
	Deliver(ctx context.Context, markdown string) error
}

// Activities bundles the research pipeline activities and their
// dependencies for worker registration.
type Activities struct {
	caps   Capabilities
	logger *zap.Logger
}

// NewActivities creates the activity set. A nil logger is replaced with a
// nop logger.
func NewActivities(caps Capabilities, logger *zap.Logger) *Activities {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Activities{caps: caps, logger: logger}
}

// observeStage records one stage's wall-clock duration.
func observeStage(stage string, start time.Time) {
	metrics.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

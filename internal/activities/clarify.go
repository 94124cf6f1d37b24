package activities

import (
	"context"
	"fmt"
	"time"

	"go.temporal.io/sdk/activity"

	"github.com/meridianlabs-ai/deepresearch/internal/metrics"
	"github.com/meridianlabs-ai/deepresearch/internal/research"
)

// GenerateClarifyingQuestion asks the generation capability for one new,
// non-generic question that builds on prior answers. Failures propagate;
// the clarification stage has no retry of its own.
func (a *Activities) GenerateClarifyingQuestion(ctx context.Context, in ClarifyInput) (ClarifyResult, error) {
	logger := activity.GetLogger(ctx)
	defer observeStage("clarify", time.Now())

	if len(in.Rounds) >= research.MaxClarifyingQuestions {
		return ClarifyResult{}, fmt.Errorf("clarification limit reached: %d rounds", len(in.Rounds))
	}

	round, err := a.caps.Clarify(ctx, research.ClarifyContext(in.Query, in.Rounds))
	if err != nil {
		metrics.CapabilityCalls.WithLabelValues("clarify", "error").Inc()
		return ClarifyResult{}, fmt.Errorf("generate clarifying question: %w", err)
	}
	metrics.CapabilityCalls.WithLabelValues("clarify", "ok").Inc()
	metrics.ClarifyingQuestions.Inc()

	logger.Info("Clarifying question generated", "round", len(in.Rounds)+1)
	return ClarifyResult{Question: round.Question, WhyAsking: round.WhyAsking}, nil
}

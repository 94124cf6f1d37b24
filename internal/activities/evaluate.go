package activities

import (
	"context"
	"fmt"
	"time"

	"go.temporal.io/sdk/activity"

	"github.com/meridianlabs-ai/deepresearch/internal/metrics"
)

// EvaluateReport scores a draft on accuracy, completeness, coherence, and
// relevance. The caller passes only a sample of search results; showing the
// evaluator everything is a context-size cost with no correctness benefit.
func (a *Activities) EvaluateReport(ctx context.Context, in EvaluateReportInput) (EvaluateReportResult, error) {
	logger := activity.GetLogger(ctx)
	defer observeStage("evaluate", time.Now())

	verdict, err := a.caps.Evaluate(ctx, in.Query, in.Report, in.Results)
	if err != nil {
		metrics.CapabilityCalls.WithLabelValues("evaluate", "error").Inc()
		return EvaluateReportResult{}, fmt.Errorf("evaluate report: %w", err)
	}
	metrics.CapabilityCalls.WithLabelValues("evaluate", "ok").Inc()

	if verdict.IsAcceptable {
		metrics.EvaluationVerdicts.WithLabelValues("acceptable").Inc()
	} else {
		metrics.EvaluationVerdicts.WithLabelValues("rejected").Inc()
	}

	logger.Info("Report evaluated",
		"acceptable", verdict.IsAcceptable,
		"score", verdict.Score,
		"issues", len(verdict.Issues),
	)
	return EvaluateReportResult{Verdict: verdict}, nil
}

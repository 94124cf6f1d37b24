package workflows

import (
	"fmt"

	"go.temporal.io/sdk/workflow"

	"github.com/meridianlabs-ai/deepresearch/internal/activities"
	"github.com/meridianlabs-ai/deepresearch/internal/constants"
	"github.com/meridianlabs-ai/deepresearch/internal/research"
)

// writeWithEvaluation runs the write/evaluate revision loop and returns
// the final draft plus how the loop ended and how many writer attempts it
// took.
//
// Routes that skip evaluation get exactly one writer call. Otherwise each
// draft is scored, and a rejected draft is rewritten with the evaluator's
// feedback, up to research.MaxRevisionAttempts writer calls in total. The
// draft produced on the last allowed attempt is kept without being scored:
// at that point a verdict could not change anything, so the evaluator call
// would be pure cost.
func writeWithEvaluation(ctx workflow.Context, runID, query string, summaries []string, route research.Route) (research.ReportDraft, research.RevisionOutcome, int, error) {
	logger := workflow.GetLogger(ctx)

	// Evaluation only ever sees a fixed-size sample of the evidence.
	sample := summaries
	if len(sample) > research.EvaluatorSampleSize {
		sample = sample[:research.EvaluatorSampleSize]
	}

	feedback := ""
	for attempt := 1; attempt <= research.MaxRevisionAttempts; attempt++ {
		if attempt > 1 {
			emitProgress(ctx, activities.EmitProgressInput{
				RunID: runID, EventType: activities.EventProgress, Stage: "writing",
				Message: fmt.Sprintf("Revising report (attempt %d/%d)...", attempt, research.MaxRevisionAttempts),
			})
		}

		var written activities.WriteReportResult
		if err := workflow.ExecuteActivity(ctx, constants.WriteReportActivity, activities.WriteReportInput{
			Query:    query,
			Results:  summaries,
			Feedback: feedback,
		}).Get(ctx, &written); err != nil {
			return research.ReportDraft{}, "", attempt, fmt.Errorf("write report: %w", err)
		}

		if route.SkipsEvaluation() {
			logger.Info("Evaluation skipped for route", "route", string(route.Kind))
			return written.Draft, research.OutcomeQuickPath, attempt, nil
		}
		if attempt == research.MaxRevisionAttempts {
			logger.Info("Revision budget exhausted, keeping final draft", "attempts", attempt)
			return written.Draft, research.OutcomeExhausted, attempt, nil
		}

		var evaluated activities.EvaluateReportResult
		if err := workflow.ExecuteActivity(ctx, constants.EvaluateReportActivity, activities.EvaluateReportInput{
			Query:   query,
			Report:  written.Draft.MarkdownReport,
			Results: sample,
		}).Get(ctx, &evaluated); err != nil {
			return research.ReportDraft{}, "", attempt, fmt.Errorf("evaluate report: %w", err)
		}

		verdict := evaluated.Verdict
		if verdict.IsAcceptable {
			logger.Info("Report approved", "attempt", attempt, "score", verdict.Score)
			return written.Draft, research.OutcomeApproved, attempt, nil
		}

		logger.Info("Report rejected, revising",
			"attempt", attempt, "score", verdict.Score, "issues", len(verdict.Issues))
		feedback = research.RevisionFeedback(verdict)
	}

	// Unreachable: the final loop iteration always returns.
	return research.ReportDraft{}, "", research.MaxRevisionAttempts, fmt.Errorf("revision loop ended without a draft")
}

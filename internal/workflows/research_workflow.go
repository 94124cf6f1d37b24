package workflows

import (
	"fmt"
	"strings"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/meridianlabs-ai/deepresearch/internal/activities"
	"github.com/meridianlabs-ai/deepresearch/internal/constants"
	"github.com/meridianlabs-ai/deepresearch/internal/research"
	"github.com/meridianlabs-ai/deepresearch/internal/tracing"
)

// ResearchWorkflow runs the full research pipeline: optional query
// enrichment, routing, search planning, concurrent search execution, the
// write/evaluate revision loop, and delivery. Progress is streamed as
// ordered human-readable status messages; the final payload is the
// report's markdown body.
func ResearchWorkflow(ctx workflow.Context, input ResearchInput) (ResearchResult, error) {
	logger := workflow.GetLogger(ctx)
	if strings.TrimSpace(input.Query) == "" {
		return ResearchResult{}, temporal.NewNonRetryableApplicationError(
			"query must not be empty", "InvalidInput", nil)
	}

	runID := workflow.GetInfo(ctx).WorkflowExecution.ID
	startedAt := workflow.Now(ctx)

	logger.Info("Starting research run", "run_id", runID, "override", input.RouteOverride)

	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 2 * time.Minute,
		RetryPolicy:         &temporal.RetryPolicy{MaximumAttempts: 2},
	})

	// Trace identifier is requested once at run start and surfaces as the
	// first progress message; the core logic never reads it again.
	var traceID string
	if err := workflow.SideEffect(ctx, func(workflow.Context) interface{} {
		return tracing.NewRunTraceID()
	}).Get(&traceID); err != nil {
		return ResearchResult{}, fmt.Errorf("generate trace id: %w", err)
	}

	traceMsg := "Trace ID: " + traceID
	if input.TraceURLTemplate != "" {
		traceMsg = "View trace: " + fmt.Sprintf(input.TraceURLTemplate, traceID)
	}
	emitProgress(ctx, activities.EmitProgressInput{
		RunID: runID, EventType: activities.EventRunStarted,
		Stage: "start", Message: traceMsg,
	})

	query := research.EnrichQuery(input.Query, input.ClarifyingRounds)

	// Routing. A manual override is resolved locally so the classifier is
	// never invoked for it.
	var route research.Route
	if override := strings.TrimSpace(input.RouteOverride); override != "" && override != "auto" {
		if !research.KnownRoute(override) {
			logger.Warn("Unknown route override, using default search count", "override", override)
		}
		emitProgress(ctx, activities.EmitProgressInput{
			RunID: runID, EventType: activities.EventProgress,
			Stage: "routing", Message: "Using manual route: " + override,
		})
		route = research.ManualRoute(override)
	} else {
		emitProgress(ctx, activities.EmitProgressInput{
			RunID: runID, EventType: activities.EventProgress,
			Stage: "routing", Message: "Analyzing query type (auto-routing)...",
		})
		var routed activities.RouteQueryResult
		if err := workflow.ExecuteActivity(ctx, constants.RouteQueryActivity,
			activities.RouteQueryInput{Query: query}).Get(ctx, &routed); err != nil {
			return failRun(ctx, runID, "routing", fmt.Errorf("route query: %w", err))
		}
		route = routed.Route
	}
	emitProgress(ctx, activities.EmitProgressInput{
		RunID: runID, EventType: activities.EventProgress, Stage: "routing",
		Message: fmt.Sprintf("Route: %s (%s)", route.Kind, route.Reasoning),
	})

	// Planning.
	var planned activities.PlanSearchesResult
	if err := workflow.ExecuteActivity(ctx, constants.PlanSearchesActivity,
		activities.PlanSearchesInput{Query: query, NumSearches: route.NumSearches}).Get(ctx, &planned); err != nil {
		return failRun(ctx, runID, "planning", fmt.Errorf("plan searches: %w", err))
	}
	emitProgress(ctx, activities.EmitProgressInput{
		RunID: runID, EventType: activities.EventProgress, Stage: "planning",
		Message: "Searches planned, starting to search...",
	})

	// Concurrent search execution, individual failures tolerated.
	results := executeSearches(ctx, runID, planned.Plan.Searches, input.MaxConcurrentSearches)
	emitProgress(ctx, activities.EmitProgressInput{
		RunID: runID, EventType: activities.EventProgress, Stage: "searching",
		Message: "Searches complete, writing report...",
	})

	summaries := make([]string, 0, len(results))
	for _, r := range results {
		summaries = append(summaries, r.Summary)
	}

	// Write/evaluate revision loop.
	draft, outcome, attempts, err := writeWithEvaluation(ctx, runID, query, summaries, route)
	if err != nil {
		return failRun(ctx, runID, "writing", err)
	}
	emitProgress(ctx, activities.EmitProgressInput{
		RunID: runID, EventType: activities.EventProgress, Stage: "writing",
		Message: "Report finalized, delivering...",
	})

	// Delivery is fire-and-forget from the pipeline's perspective, but a
	// failed handoff still fails the run.
	if err := workflow.ExecuteActivity(ctx, constants.DeliverReportActivity,
		activities.DeliverReportInput{MarkdownReport: draft.MarkdownReport}).Get(ctx, nil); err != nil {
		return failRun(ctx, runID, "delivery", fmt.Errorf("deliver report: %w", err))
	}
	emitProgress(ctx, activities.EmitProgressInput{
		RunID: runID, EventType: activities.EventProgress, Stage: "delivery",
		Message: "Report delivered, research complete",
	})

	emitProgress(ctx, activities.EmitProgressInput{
		RunID: runID, EventType: activities.EventFinalReport, Stage: "done",
		Message: draft.MarkdownReport,
	})
	emitProgress(ctx, activities.EmitProgressInput{
		RunID: runID, EventType: activities.EventRunCompleted, Stage: "done",
		Route:          string(route.Kind),
		Attempts:       attempts,
		ElapsedSeconds: workflow.Now(ctx).Sub(startedAt).Seconds(),
	})

	logger.Info("Research run completed",
		"run_id", runID,
		"route", string(route.Kind),
		"outcome", string(outcome),
		"writer_attempts", attempts,
		"searches_succeeded", len(results),
	)

	return ResearchResult{
		MarkdownReport:    draft.MarkdownReport,
		ShortSummary:      draft.ShortSummary,
		FollowUpQuestions: draft.FollowUpQuestions,
		Route:             route,
		Outcome:           outcome,
		WriterAttempts:    attempts,
		SearchesPlanned:   len(planned.Plan.Searches),
		SearchesSucceeded: len(results),
		TraceID:           traceID,
	}, nil
}

// emitProgress publishes one status event, waiting for the append so the
// stream stays ordered. Emission failures never fail the run.
func emitProgress(ctx workflow.Context, in activities.EmitProgressInput) {
	in.Timestamp = workflow.Now(ctx)
	emitCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 10 * time.Second,
		RetryPolicy:         &temporal.RetryPolicy{MaximumAttempts: 3},
	})
	if err := workflow.ExecuteActivity(emitCtx, constants.EmitProgressActivity, in).Get(ctx, nil); err != nil {
		workflow.GetLogger(ctx).Warn("Progress emission failed", "error", err)
	}
}

// failRun emits an explicit terminal error event before surfacing the
// failure. The source design let the stream silently stall; an explicit
// terminal status keeps consumers and tests out of guessing games.
func failRun(ctx workflow.Context, runID, stage string, err error) (ResearchResult, error) {
	emitProgress(ctx, activities.EmitProgressInput{
		RunID: runID, EventType: activities.EventError, Stage: stage,
		Message: fmt.Sprintf("Research failed during %s: %v", stage, err),
	})
	return ResearchResult{}, err
}

package workflows

import (
	"fmt"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/meridianlabs-ai/deepresearch/internal/activities"
	"github.com/meridianlabs-ai/deepresearch/internal/constants"
	"github.com/meridianlabs-ai/deepresearch/internal/research"
)

const (
	defaultMaxConcurrentSearches = 5
	maxConcurrentSearchesCap     = 20
)

// executeSearches fans the planned items out as concurrent search
// activities and collects results in completion order. A failed item is
// dropped from the results rather than failing the run, so the returned
// slice may be shorter than the plan.
func executeSearches(ctx workflow.Context, runID string, items []research.SearchItem, maxConcurrent int) []research.SearchResult {
	logger := workflow.GetLogger(ctx)
	if len(items) == 0 {
		return nil
	}

	if maxConcurrent <= 0 {
		maxConcurrent = defaultMaxConcurrentSearches
	}
	if maxConcurrent > maxConcurrentSearchesCap {
		maxConcurrent = maxConcurrentSearchesCap
	}

	searchCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 90 * time.Second,
		RetryPolicy:         &temporal.RetryPolicy{MaximumAttempts: 2},
	})

	resultCh := workflow.NewChannel(ctx)
	active := 0
	launched := 0

	launch := func(item research.SearchItem) {
		workflow.Go(ctx, func(gCtx workflow.Context) {
			var out activities.ExecuteSearchResult
			err := workflow.ExecuteActivity(searchCtx, constants.ExecuteSearchActivity,
				activities.ExecuteSearchInput{Item: item}).Get(gCtx, &out)
			if err != nil {
				logger.Warn("Search failed, dropping result", "term", item.Term, "error", err)
				resultCh.Send(gCtx, (*research.SearchResult)(nil))
				return
			}
			resultCh.Send(gCtx, &out.Result)
		})
	}

	results := make([]research.SearchResult, 0, len(items))
	completed := 0
	for completed < len(items) {
		for launched < len(items) && active < maxConcurrent {
			launch(items[launched])
			launched++
			active++
		}

		var r *research.SearchResult
		resultCh.Receive(ctx, &r)
		completed++
		active--
		if r != nil {
			results = append(results, *r)
		}

		emitProgress(ctx, activities.EmitProgressInput{
			RunID: runID, EventType: activities.EventProgress, Stage: "searching",
			Message: fmt.Sprintf("Searching... %d/%d completed", completed, len(items)),
		})
	}

	logger.Info("Search fan-out complete",
		"planned", len(items), "succeeded", len(results))
	return results
}

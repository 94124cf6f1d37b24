package activities

import (
	"context"
	"fmt"
	"time"

	"go.temporal.io/sdk/activity"

	"github.com/meridianlabs-ai/deepresearch/internal/metrics"
	"github.com/meridianlabs-ai/deepresearch/internal/research"
)

// ExecuteSearch runs one planned search item against the search capability.
// Errors are returned to the workflow, which treats a failed unit as
// absence rather than aborting the batch.
func (a *Activities) ExecuteSearch(ctx context.Context, in ExecuteSearchInput) (ExecuteSearchResult, error) {
	logger := activity.GetLogger(ctx)
	defer observeStage("search", time.Now())
	metrics.SearchesExecuted.Inc()

	summary, err := a.caps.Search(ctx, research.SearchInput(in.Item))
	if err != nil {
		metrics.SearchesFailed.Inc()
		metrics.CapabilityCalls.WithLabelValues("search", "error").Inc()
		logger.Warn("Search unit failed", "term", in.Item.Term, "error", err)
		return ExecuteSearchResult{}, fmt.Errorf("search %q: %w", in.Item.Term, err)
	}
	metrics.CapabilityCalls.WithLabelValues("search", "ok").Inc()

	return ExecuteSearchResult{
		Result: research.SearchResult{Term: in.Item.Term, Summary: summary},
	}, nil
}

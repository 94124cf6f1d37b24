package activities

import (
	"context"
	"fmt"
	"time"

	"go.temporal.io/sdk/activity"

	"github.com/meridianlabs-ai/deepresearch/internal/metrics"
)

// PlanSearches requests NumSearches diverse search items for the query.
// The capability owns the final count; the plan is passed through without
// truncation or padding.
func (a *Activities) PlanSearches(ctx context.Context, in PlanSearchesInput) (PlanSearchesResult, error) {
	logger := activity.GetLogger(ctx)
	defer observeStage("plan", time.Now())

	plan, err := a.caps.Plan(ctx, in.Query, in.NumSearches)
	if err != nil {
		metrics.CapabilityCalls.WithLabelValues("plan", "error").Inc()
		return PlanSearchesResult{}, fmt.Errorf("plan searches: %w", err)
	}
	metrics.CapabilityCalls.WithLabelValues("plan", "ok").Inc()

	if len(plan.Searches) != in.NumSearches {
		logger.Warn("Planner returned a different search count than requested",
			"requested", in.NumSearches,
			"returned", len(plan.Searches),
		)
	}
	return PlanSearchesResult{Plan: plan}, nil
}

package activities

import (
	"context"
	"fmt"
	"time"

	"go.temporal.io/sdk/activity"

	"github.com/meridianlabs-ai/deepresearch/internal/metrics"
)

// RouteQuery classifies a query into a research route. The classifier's
// search count is authoritative; it may disagree with the canonical
// per-route table.
func (a *Activities) RouteQuery(ctx context.Context, in RouteQueryInput) (RouteQueryResult, error) {
	logger := activity.GetLogger(ctx)
	defer observeStage("route", time.Now())

	route, err := a.caps.Classify(ctx, in.Query)
	if err != nil {
		metrics.CapabilityCalls.WithLabelValues("classify", "error").Inc()
		return RouteQueryResult{}, fmt.Errorf("classify query: %w", err)
	}
	metrics.CapabilityCalls.WithLabelValues("classify", "ok").Inc()

	logger.Info("Route selected",
		"route", string(route.Kind),
		"num_searches", route.NumSearches,
		"reasoning", route.Reasoning,
	)
	return RouteQueryResult{Route: route}, nil
}

package activities

import (
	"context"
	"fmt"
	"time"

	"go.temporal.io/sdk/activity"

	"github.com/meridianlabs-ai/deepresearch/internal/metrics"
)

// DeliverReport hands the final markdown report to the delivery
// collaborator. Errors surface to the workflow and fail the run.
func (a *Activities) DeliverReport(ctx context.Context, in DeliverReportInput) error {
	logger := activity.GetLogger(ctx)
	defer observeStage("deliver", time.Now())

	if err := a.caps.Deliver(ctx, in.MarkdownReport); err != nil {
		metrics.CapabilityCalls.WithLabelValues("deliver", "error").Inc()
		return fmt.Errorf("deliver report: %w", err)
	}
	metrics.CapabilityCalls.WithLabelValues("deliver", "ok").Inc()

	logger.Info("Report delivered", "report_len", len(in.MarkdownReport))
	return nil
}

package activities

import (
	"context"
	"fmt"
	"time"

	"go.temporal.io/sdk/activity"

	"github.com/meridianlabs-ai/deepresearch/internal/metrics"
)

// WriteReport synthesizes a report draft from the query and search
// summaries. When Feedback is set the capability is instructed to address
// each listed issue. One generation call per invocation; retries belong to
// the revision loop, not here.
func (a *Activities) WriteReport(ctx context.Context, in WriteReportInput) (WriteReportResult, error) {
	logger := activity.GetLogger(ctx)
	defer observeStage("write", time.Now())

	draft, err := a.caps.Write(ctx, in.Query, in.Results, in.Feedback)
	if err != nil {
		metrics.CapabilityCalls.WithLabelValues("write", "error").Inc()
		return WriteReportResult{}, fmt.Errorf("write report: %w", err)
	}
	metrics.CapabilityCalls.WithLabelValues("write", "ok").Inc()

	logger.Info("Report draft written",
		"report_len", len(draft.MarkdownReport),
		"revision", in.Feedback != "",
	)
	return WriteReportResult{Draft: draft}, nil
}

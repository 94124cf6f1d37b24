package activities

import (
	"context"

	"go.temporal.io/sdk/activity"

	"github.com/meridianlabs-ai/deepresearch/internal/metrics"
	"github.com/meridianlabs-ai/deepresearch/internal/streaming"
)

// Progress event types published to the run's stream.
const (
	EventRunStarted   = "RUN_STARTED"
	EventProgress     = "PROGRESS"
	EventRunCompleted = "RUN_COMPLETED"
	EventError        = "ERROR_OCCURRED"
	EventFinalReport  = "FINAL_REPORT"
)

// EmitProgress publishes one status event to the run's append-only stream.
// Registered as a standalone function activity; it has no dependencies
// beyond the process-wide stream manager.
func EmitProgress(ctx context.Context, in EmitProgressInput) error {
	logger := activity.GetLogger(ctx)
	logger.Info("progress event",
		"run_id", in.RunID,
		"type", in.EventType,
		"stage", in.Stage,
		"message", in.Message,
	)
	streaming.Get().Publish(in.RunID, streaming.Event{
		RunID:     in.RunID,
		Type:      in.EventType,
		Stage:     in.Stage,
		Message:   in.Message,
		Timestamp: in.Timestamp,
	})

	switch in.EventType {
	case EventRunStarted:
		metrics.RunsStarted.Inc()
	case EventRunCompleted:
		metrics.RunsCompleted.WithLabelValues(in.Route, "success").Inc()
		if in.ElapsedSeconds > 0 {
			metrics.RunDuration.WithLabelValues(in.Route).Observe(in.ElapsedSeconds)
		}
		if in.Attempts > 0 {
			metrics.RevisionAttempts.Observe(float64(in.Attempts))
		}
	case EventError:
		metrics.RunsCompleted.WithLabelValues(in.Route, "error").Inc()
	}
	return nil
}

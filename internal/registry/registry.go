package registry

import (
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/worker"
	"go.uber.org/zap"

	"github.com/meridianlabs-ai/deepresearch/internal/activities"
	"github.com/meridianlabs-ai/deepresearch/internal/constants"
	"github.com/meridianlabs-ai/deepresearch/internal/workflows"
)

// Registry wires workflows and activities onto a Temporal worker.
type Registry struct {
	acts   *activities.Activities
	logger *zap.Logger
}

func New(acts *activities.Activities, logger *zap.Logger) *Registry {
	return &Registry{acts: acts, logger: logger}
}

// RegisterAll registers every workflow and activity this worker serves.
// Activity names are pinned explicitly so workflow code can schedule them
// by string without depending on Go method naming.
func (r *Registry) RegisterAll(w worker.Worker) {
	w.RegisterWorkflow(workflows.ResearchWorkflow)
	w.RegisterWorkflow(workflows.ClarificationWorkflow)

	w.RegisterActivityWithOptions(r.acts.RouteQuery, activity.RegisterOptions{Name: constants.RouteQueryActivity})
	w.RegisterActivityWithOptions(r.acts.GenerateClarifyingQuestion, activity.RegisterOptions{Name: constants.GenerateClarifyingQuestionActivity})
	w.RegisterActivityWithOptions(r.acts.PlanSearches, activity.RegisterOptions{Name: constants.PlanSearchesActivity})
	w.RegisterActivityWithOptions(r.acts.ExecuteSearch, activity.RegisterOptions{Name: constants.ExecuteSearchActivity})
	w.RegisterActivityWithOptions(r.acts.WriteReport, activity.RegisterOptions{Name: constants.WriteReportActivity})
	w.RegisterActivityWithOptions(r.acts.EvaluateReport, activity.RegisterOptions{Name: constants.EvaluateReportActivity})
	w.RegisterActivityWithOptions(r.acts.DeliverReport, activity.RegisterOptions{Name: constants.DeliverReportActivity})

	// Standalone event emitter, safe under replay.
	w.RegisterActivityWithOptions(activities.EmitProgress, activity.RegisterOptions{Name: constants.EmitProgressActivity})

	r.logger.Info("Workflows and activities registered")
}

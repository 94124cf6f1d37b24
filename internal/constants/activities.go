package constants

// Activity names used for workflow registration and execution.
// Using constants eliminates magic strings and ensures consistency.
const (
	// Pipeline activities
	RouteQueryActivity     = "RouteQuery"
	PlanSearchesActivity   = "PlanSearches"
	ExecuteSearchActivity  = "ExecuteSearch"
	WriteReportActivity    = "WriteReport"
	EvaluateReportActivity = "EvaluateReport"
	DeliverReportActivity  = "DeliverReport"

	// Clarification activities
	GenerateClarifyingQuestionActivity = "GenerateClarifyingQuestion"

	// Streaming activities
	EmitProgressActivity = "EmitProgress"
)

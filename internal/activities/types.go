package activities

import (
	"time"

	"github.com/meridianlabs-ai/deepresearch/internal/research"
)

// RouteQueryInput asks the classifier to pick a route for a query.
// Manual overrides never reach this activity; the workflow resolves them
// locally so the classifier is provably not called.
type RouteQueryInput struct {
	Query string `json:"query"`
}

type RouteQueryResult struct {
	Route research.Route `json:"route"`
}

// ClarifyInput requests the next clarifying question given the original
// query and all prior rounds.
type ClarifyInput struct {
	Query  string                        `json:"query"`
	Rounds []research.ClarificationRound `json:"rounds"`
}

type ClarifyResult struct {
	Question  string `json:"question"`
	WhyAsking string `json:"why_asking"`
}

// PlanSearchesInput requests a search plan of NumSearches items.
type PlanSearchesInput struct {
	Query       string `json:"query"`
	NumSearches int    `json:"num_searches"`
}

type PlanSearchesResult struct {
	Plan research.SearchPlan `json:"plan"`
}

// ExecuteSearchInput runs one planned search item.
type ExecuteSearchInput struct {
	Item research.SearchItem `json:"item"`
}

type ExecuteSearchResult struct {
	Result research.SearchResult `json:"result"`
}

// WriteReportInput synthesizes a draft, optionally with revision feedback.
type WriteReportInput struct {
	Query    string   `json:"query"`
	Results  []string `json:"results"`
	Feedback string   `json:"feedback,omitempty"`
}

type WriteReportResult struct {
	Draft research.ReportDraft `json:"draft"`
}

// EvaluateReportInput scores a draft. Results should already be truncated
// to the evaluator sample size by the caller.
type EvaluateReportInput struct {
	Query   string   `json:"query"`
	Report  string   `json:"report"`
	Results []string `json:"results"`
}

type EvaluateReportResult struct {
	Verdict research.EvaluationVerdict `json:"verdict"`
}

// DeliverReportInput hands the final markdown to the delivery collaborator.
type DeliverReportInput struct {
	MarkdownReport string `json:"markdown_report"`
}

// EmitProgressInput publishes one progress event for a run. Terminal
// events carry route/attempt/elapsed details so run metrics are recorded
// activity-side, where replay cannot double count.
type EmitProgressInput struct {
	RunID     string    `json:"run_id"`
	EventType string    `json:"event_type"`
	Stage     string    `json:"stage,omitempty"`
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`

	Route          string  `json:"route,omitempty"`
	Attempts       int     `json:"attempts,omitempty"`
	ElapsedSeconds float64 `json:"elapsed_seconds,omitempty"`
}

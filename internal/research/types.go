package research

// RouteKind classifies a query into a fixed research-depth category.
type RouteKind string

const (
	RouteQuick       RouteKind = "quick"
	RouteDeep        RouteKind = "deep"
	RouteTechnical   RouteKind = "technical"
	RouteComparative RouteKind = "comparative"
)

// MaxRevisionAttempts bounds the write/evaluate loop per run.
const MaxRevisionAttempts = 2

// MaxClarifyingQuestions bounds the clarification stage per run.
const MaxClarifyingQuestions = 3

// EvaluatorSampleSize is how many search summaries the evaluator sees.
// A cost/context-size tradeoff, not a correctness requirement.
const EvaluatorSampleSize = 3

// defaultOverrideSearches is used when a manual override names an unknown
// route label. Unknown labels are accepted, not rejected.
const defaultOverrideSearches = 5

// canonicalSearches is the per-route search budget for manual overrides.
// Auto-routing trusts the classifier's count instead (see Route).
var canonicalSearches = map[RouteKind]int{
	RouteQuick:       3,
	RouteDeep:        5,
	RouteTechnical:   5,
	RouteComparative: 6,
}

// Route is the result of classifying (or manually selecting) a research
// approach for a query.
type Route struct {
	Kind        RouteKind `json:"route"`
	Reasoning   string    `json:"reasoning"`
	NumSearches int       `json:"num_searches"`
}

// SkipsEvaluation reports whether the revision loop bypasses the evaluator
// for this route. Only the quick route does.
func (r Route) SkipsEvaluation() bool {
	return r.Kind == RouteQuick
}

// KnownRoute reports whether label is one of the four canonical routes.
func KnownRoute(label string) bool {
	_, ok := canonicalSearches[RouteKind(label)]
	return ok
}

// SearchItem is one planned web search with its rationale.
type SearchItem struct {
	Term   string `json:"term"`
	Reason string `json:"reason"`
}

// SearchPlan is the ordered set of searches to run. Order carries no
// priority; execution is concurrent.
type SearchPlan struct {
	Searches []SearchItem `json:"searches"`
}

// SearchResult is one completed search summary, keyed by the term that
// produced it. Failed searches produce no SearchResult at all.
type SearchResult struct {
	Term    string `json:"term"`
	Summary string `json:"summary"`
}

// ReportDraft is one writer output. Drafts are immutable; a revision
// produces a new draft.
type ReportDraft struct {
	MarkdownReport    string   `json:"markdown_report"`
	ShortSummary      string   `json:"short_summary"`
	FollowUpQuestions []string `json:"follow_up_questions"`
}

// EvaluationVerdict is the evaluator's judgment of a draft.
type EvaluationVerdict struct {
	IsAcceptable bool     `json:"is_acceptable"`
	Issues       []string `json:"issues"`
	Suggestions  string   `json:"suggestions"`
	Score        int      `json:"score"`
}

// ClarificationRound is one question/answer exchange. A blank answer means
// the user skipped the question.
type ClarificationRound struct {
	Question  string `json:"question"`
	WhyAsking string `json:"why_asking"`
	Answer    string `json:"answer"`
}

// RevisionOutcome distinguishes how the revision loop terminated.
type RevisionOutcome string

const (
	// OutcomeApproved means the evaluator accepted a draft.
	OutcomeApproved RevisionOutcome = "approved"
	// OutcomeExhausted means the final attempt was returned without any
	// accepted evaluation. The last draft is never evaluated.
	OutcomeExhausted RevisionOutcome = "exhausted"
	// OutcomeQuickPath means the quick route returned the first draft with
	// no evaluation at all.
	OutcomeQuickPath RevisionOutcome = "quick_path"
)

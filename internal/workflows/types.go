package workflows

import (
	"time"

	"github.com/meridianlabs-ai/deepresearch/internal/research"
)

// ResearchInput starts a research run.
type ResearchInput struct {
	Query string `json:"query"`

	// ClarifyingRounds from a prior clarification session; folded into the
	// query before routing. Blank answers are dropped by enrichment.
	ClarifyingRounds []research.ClarificationRound `json:"clarifying_rounds,omitempty"`

	// RouteOverride bypasses classification when set to anything but ""
	// or "auto". Unknown labels are honored with the default search count.
	RouteOverride string `json:"route_override,omitempty"`

	// MaxConcurrentSearches gates fan-out width (0 = default 5, clamp 1..20).
	MaxConcurrentSearches int `json:"max_concurrent_searches,omitempty"`

	// TraceURLTemplate, when set, is formatted with the trace ID for the
	// first progress message.
	TraceURLTemplate string `json:"trace_url_template,omitempty"`
}

// ResearchResult is the terminal state of a run.
type ResearchResult struct {
	MarkdownReport    string                   `json:"markdown_report"`
	ShortSummary      string                   `json:"short_summary"`
	FollowUpQuestions []string                 `json:"follow_up_questions"`
	Route             research.Route           `json:"route"`
	Outcome           research.RevisionOutcome `json:"outcome"`
	WriterAttempts    int                      `json:"writer_attempts"`
	SearchesPlanned   int                      `json:"searches_planned"`
	SearchesSucceeded int                      `json:"searches_succeeded"`
	TraceID           string                   `json:"trace_id"`
}

// ClarificationInput starts an interactive clarification session.
type ClarificationInput struct {
	Query string `json:"query"`

	// MaxQuestions per session; 0 means the default bound of 3. Values
	// above the bound are clamped.
	MaxQuestions int `json:"max_questions,omitempty"`

	// AnswerTimeout is how long each round waits for an answer signal
	// before recording a blank answer and moving on (0 = 5m).
	AnswerTimeout time.Duration `json:"answer_timeout,omitempty"`
}

// ClarificationResult carries the accumulated rounds and the enriched
// query ready for a research run.
type ClarificationResult struct {
	Rounds        []research.ClarificationRound `json:"rounds"`
	EnrichedQuery string                        `json:"enriched_query"`
}

// SignalClarificationAnswer delivers one user answer to a waiting
// clarification session.
const SignalClarificationAnswer = "clarification_answer"

// ClarificationAnswer is the signal payload. A blank answer skips the
// question. Round, when positive, pins the answer to that question so a
// late arrival cannot be credited to a later one; zero means the round
// currently waiting.
type ClarificationAnswer struct {
	Answer string `json:"answer"`
	Round  int    `json:"round,omitempty"`
}

package activities

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/testsuite"
	"go.uber.org/zap/zaptest"

	"github.com/meridianlabs-ai/deepresearch/internal/research"
)

// fakeCapabilities scripts capability responses and records calls.
type fakeCapabilities struct {
	classifyCalls int
	clarifyCalls  int
	planCalls     int
	writeCalls    int
	evalCalls     int
	searchCalls   int
	deliverCalls  int

	classifyErr error
	searchErr   error
	deliverErr  error

	route   research.Route
	plan    research.SearchPlan
	draft   research.ReportDraft
	verdict research.EvaluationVerdict

	lastClarifyContext string
	lastFeedback       string
	lastEvalResults    []string
}

func (f *fakeCapabilities) Classify(ctx context.Context, query string) (research.Route, error) {
	f.classifyCalls++
	if f.classifyErr != nil {
		return research.Route{}, f.classifyErr
	}
	return f.route, nil
}

func (f *fakeCapabilities) Clarify(ctx context.Context, contextStr string) (research.ClarificationRound, error) {
	f.clarifyCalls++
	f.lastClarifyContext = contextStr
	return research.ClarificationRound{Question: "What scope?", WhyAsking: "narrows the topic"}, nil
}

func (f *fakeCapabilities) Plan(ctx context.Context, query string, numSearches int) (research.SearchPlan, error) {
	f.planCalls++
	return f.plan, nil
}

func (f *fakeCapabilities) Write(ctx context.Context, query string, results []string, feedback string) (research.ReportDraft, error) {
	f.writeCalls++
	f.lastFeedback = feedback
	return f.draft, nil
}

func (f *fakeCapabilities) Evaluate(ctx context.Context, query, markdown string, results []string) (research.EvaluationVerdict, error) {
	f.evalCalls++
	f.lastEvalResults = results
	return f.verdict, nil
}

func (f *fakeCapabilities) Search(ctx context.Context, input string) (string, error) {
	f.searchCalls++
	if f.searchErr != nil {
		return "", f.searchErr
	}
	return "summary for " + input, nil
}

func (f *fakeCapabilities) Deliver(ctx context.Context, markdown string) error {
	f.deliverCalls++
	return f.deliverErr
}

func newActivityEnv(t *testing.T, caps *fakeCapabilities) *testsuite.TestActivityEnvironment {
	t.Helper()
	suite := &testsuite.WorkflowTestSuite{}
	env := suite.NewTestActivityEnvironment()
	acts := NewActivities(caps, zaptest.NewLogger(t))
	env.RegisterActivity(acts.RouteQuery)
	env.RegisterActivity(acts.GenerateClarifyingQuestion)
	env.RegisterActivity(acts.PlanSearches)
	env.RegisterActivity(acts.ExecuteSearch)
	env.RegisterActivity(acts.WriteReport)
	env.RegisterActivity(acts.EvaluateReport)
	env.RegisterActivity(acts.DeliverReport)
	return env
}

func TestRouteQueryReturnsClassifierRoute(t *testing.T) {
	caps := &fakeCapabilities{
		route: research.Route{Kind: research.RouteDeep, Reasoning: "broad", NumSearches: 7},
	}
	env := newActivityEnv(t, caps)

	val, err := env.ExecuteActivity((&Activities{}).RouteQuery, RouteQueryInput{Query: "q"})
	require.NoError(t, err)
	var out RouteQueryResult
	require.NoError(t, val.Get(&out))
	assert.Equal(t, research.RouteDeep, out.Route.Kind)
	assert.Equal(t, 7, out.Route.NumSearches)
	assert.Equal(t, 1, caps.classifyCalls)
}

func TestRouteQueryPropagatesClassifierFailure(t *testing.T) {
	caps := &fakeCapabilities{classifyErr: errors.New("model down")}
	env := newActivityEnv(t, caps)

	_, err := env.ExecuteActivity((&Activities{}).RouteQuery, RouteQueryInput{Query: "q"})
	assert.Error(t, err)
}

func TestGenerateClarifyingQuestionBuildsContext(t *testing.T) {
	caps := &fakeCapabilities{}
	env := newActivityEnv(t, caps)

	rounds := []research.ClarificationRound{
		{Question: "Q1", Answer: "A1"},
	}
	val, err := env.ExecuteActivity((&Activities{}).GenerateClarifyingQuestion, ClarifyInput{Query: "origq", Rounds: rounds})
	require.NoError(t, err)
	var out ClarifyResult
	require.NoError(t, val.Get(&out))
	assert.Equal(t, "What scope?", out.Question)
	assert.Contains(t, caps.lastClarifyContext, "origq")
	assert.Contains(t, caps.lastClarifyContext, "Q1")
	assert.Contains(t, caps.lastClarifyContext, "A1")
}

func TestGenerateClarifyingQuestionEnforcesRoundLimit(t *testing.T) {
	caps := &fakeCapabilities{}
	env := newActivityEnv(t, caps)

	full := make([]research.ClarificationRound, research.MaxClarifyingQuestions)
	_, err := env.ExecuteActivity((&Activities{}).GenerateClarifyingQuestion, ClarifyInput{Query: "q", Rounds: full})
	assert.Error(t, err)
	assert.Zero(t, caps.clarifyCalls)
}

func TestPlanSearchesPassesPlanThrough(t *testing.T) {
	caps := &fakeCapabilities{
		plan: research.SearchPlan{Searches: []research.SearchItem{
			{Term: "a", Reason: "r1"},
			{Term: "b", Reason: "r2"},
		}},
	}
	env := newActivityEnv(t, caps)

	// Requested 5, capability returned 2; no truncation or padding.
	val, err := env.ExecuteActivity((&Activities{}).PlanSearches, PlanSearchesInput{Query: "q", NumSearches: 5})
	require.NoError(t, err)
	var out PlanSearchesResult
	require.NoError(t, val.Get(&out))
	assert.Len(t, out.Plan.Searches, 2)
}

func TestExecuteSearchCarriesSourceTerm(t *testing.T) {
	caps := &fakeCapabilities{}
	env := newActivityEnv(t, caps)

	val, err := env.ExecuteActivity((&Activities{}).ExecuteSearch, ExecuteSearchInput{
		Item: research.SearchItem{Term: "go scheduler", Reason: "core topic"},
	})
	require.NoError(t, err)
	var out ExecuteSearchResult
	require.NoError(t, val.Get(&out))
	assert.Equal(t, "go scheduler", out.Result.Term)
	assert.Contains(t, out.Result.Summary, "Search term: go scheduler")
}

func TestExecuteSearchSurfacesFailure(t *testing.T) {
	caps := &fakeCapabilities{searchErr: errors.New("timeout")}
	env := newActivityEnv(t, caps)

	_, err := env.ExecuteActivity((&Activities{}).ExecuteSearch, ExecuteSearchInput{
		Item: research.SearchItem{Term: "x"},
	})
	assert.Error(t, err)
}

func TestWriteReportForwardsFeedback(t *testing.T) {
	caps := &fakeCapabilities{
		draft: research.ReportDraft{MarkdownReport: "# R", ShortSummary: "s"},
	}
	env := newActivityEnv(t, caps)

	val, err := env.ExecuteActivity((&Activities{}).WriteReport, WriteReportInput{
		Query:    "q",
		Results:  []string{"r1"},
		Feedback: "Issues: A\nSuggestions: B",
	})
	require.NoError(t, err)
	var out WriteReportResult
	require.NoError(t, val.Get(&out))
	assert.Equal(t, "# R", out.Draft.MarkdownReport)
	assert.Equal(t, "Issues: A\nSuggestions: B", caps.lastFeedback)
}

func TestEvaluateReportReturnsVerdict(t *testing.T) {
	caps := &fakeCapabilities{
		verdict: research.EvaluationVerdict{IsAcceptable: false, Issues: []string{"thin"}, Suggestions: "expand", Score: 4},
	}
	env := newActivityEnv(t, caps)

	val, err := env.ExecuteActivity((&Activities{}).EvaluateReport, EvaluateReportInput{
		Query:   "q",
		Report:  "# R",
		Results: []string{"r1", "r2", "r3"},
	})
	require.NoError(t, err)
	var out EvaluateReportResult
	require.NoError(t, val.Get(&out))
	assert.False(t, out.Verdict.IsAcceptable)
	assert.Equal(t, 4, out.Verdict.Score)
	assert.Len(t, caps.lastEvalResults, 3)
}

func TestDeliverReportSurfacesFailure(t *testing.T) {
	caps := &fakeCapabilities{deliverErr: errors.New("webhook 403")}
	env := newActivityEnv(t, caps)

	_, err := env.ExecuteActivity((&Activities{}).DeliverReport, DeliverReportInput{MarkdownReport: "# R"})
	assert.Error(t, err)
}

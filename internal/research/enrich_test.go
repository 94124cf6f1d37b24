package research

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnrichQueryNoRounds(t *testing.T) {
	assert.Equal(t, "q", EnrichQuery("q", nil))
	assert.Equal(t, "q", EnrichQuery("q", []ClarificationRound{}))
}

func TestEnrichQueryAllBlankAnswers(t *testing.T) {
	rounds := []ClarificationRound{
		{Question: "Q1", Answer: ""},
		{Question: "Q2", Answer: "   "},
	}
	assert.Equal(t, "q", EnrichQuery("q", rounds))
}

func TestEnrichQueryAnsweredRound(t *testing.T) {
	rounds := []ClarificationRound{
		{Question: "What scope?", Answer: "Europe only"},
	}
	out := EnrichQuery("energy prices", rounds)
	assert.Contains(t, out, "energy prices")
	assert.Contains(t, out, "Europe only")
	assert.Contains(t, out, "What scope?")
}

func TestEnrichQueryDropsBlankKeepsAnswered(t *testing.T) {
	rounds := []ClarificationRound{
		{Question: "Skipped", Answer: ""},
		{Question: "Kept", Answer: "yes"},
	}
	out := EnrichQuery("q", rounds)
	assert.NotContains(t, out, "Skipped")
	assert.Contains(t, out, "Kept")
}

func TestManualRouteKnownLabels(t *testing.T) {
	cases := map[string]int{
		"quick":       3,
		"deep":        5,
		"technical":   5,
		"comparative": 6,
	}
	for label, want := range cases {
		r := ManualRoute(label)
		assert.Equal(t, want, r.NumSearches, label)
		assert.Equal(t, "Manually selected "+label+" route", r.Reasoning)
	}
}

func TestManualRouteUnknownLabelFallsBack(t *testing.T) {
	r := ManualRoute("forensic")
	assert.Equal(t, 5, r.NumSearches)
	assert.Equal(t, RouteKind("forensic"), r.Kind)
}

func TestNormalizeClassifiedTrustsPositiveCount(t *testing.T) {
	r := NormalizeClassified(Route{Kind: RouteQuick, NumSearches: 9})
	assert.Equal(t, 9, r.NumSearches)
}

func TestNormalizeClassifiedFallsBackToTable(t *testing.T) {
	r := NormalizeClassified(Route{Kind: RouteComparative})
	assert.Equal(t, 6, r.NumSearches)
}

func TestRevisionFeedbackFormat(t *testing.T) {
	v := EvaluationVerdict{Issues: []string{"A", "B"}, Suggestions: "C"}
	assert.Equal(t, "Issues: A, B\nSuggestions: C", RevisionFeedback(v))
}

func TestSearchInputFormat(t *testing.T) {
	in := SearchInput(SearchItem{Term: "go generics", Reason: "background"})
	assert.Equal(t, "Search term: go generics\nReason: background", in)
}

func TestSkipsEvaluation(t *testing.T) {
	assert.True(t, Route{Kind: RouteQuick}.SkipsEvaluation())
	assert.False(t, Route{Kind: RouteDeep}.SkipsEvaluation())
	assert.False(t, Route{Kind: RouteComparative}.SkipsEvaluation())
}

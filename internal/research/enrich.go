package research

import (
	"fmt"
	"strings"
)

// EnrichQuery folds answered clarification rounds into the original query.
// Rounds with blank answers are dropped; if nothing was answered the
// original query is returned unchanged. Pure and deterministic.
func EnrichQuery(original string, rounds []ClarificationRound) string {
	answered := false
	for _, r := range rounds {
		if strings.TrimSpace(r.Answer) != "" {
			answered = true
			break
		}
	}
	if !answered {
		return original
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Original Query: %s\n\nAdditional Context:\n", original)
	for _, r := range rounds {
		if strings.TrimSpace(r.Answer) == "" {
			continue
		}
		fmt.Fprintf(&b, "- %s\n  Answer: %s\n", r.Question, r.Answer)
	}
	return b.String()
}

// ClarifyContext builds the prompt context for the next clarifying question
// from the original query and all prior rounds, in order.
func ClarifyContext(original string, rounds []ClarificationRound) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Original research query: %s\n\n", original)
	if len(rounds) > 0 {
		b.WriteString("Previous clarifying questions and answers:\n")
		for i, r := range rounds {
			fmt.Fprintf(&b, "%d. Q: %s\n   A: %s\n\n", i+1, r.Question, r.Answer)
		}
	}
	b.WriteString("Generate the next clarifying question to better understand the user's needs.")
	return b.String()
}

// RevisionFeedback formats an evaluator rejection into the feedback string
// handed back to the writer on the next attempt.
func RevisionFeedback(v EvaluationVerdict) string {
	return fmt.Sprintf("Issues: %s\nSuggestions: %s",
		strings.Join(v.Issues, ", "), v.Suggestions)
}

// SearchInput formats one planned item the way the search capability
// expects it.
func SearchInput(item SearchItem) string {
	return fmt.Sprintf("Search term: %s\nReason: %s", item.Term, item.Reason)
}

package workflows

import (
	"fmt"
	"strings"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/meridianlabs-ai/deepresearch/internal/activities"
	"github.com/meridianlabs-ai/deepresearch/internal/constants"
	"github.com/meridianlabs-ai/deepresearch/internal/research"
)

const defaultAnswerTimeout = 5 * time.Minute

// ClarificationWorkflow runs an interactive pre-research session: it
// generates up to MaxQuestions clarifying questions one at a time, waits
// for each answer as a signal, and returns the rounds plus the enriched
// query. A round that times out or whose answer is blank is kept with a
// blank answer, which enrichment later drops.
func ClarificationWorkflow(ctx workflow.Context, input ClarificationInput) (ClarificationResult, error) {
	logger := workflow.GetLogger(ctx)
	if strings.TrimSpace(input.Query) == "" {
		return ClarificationResult{}, temporal.NewNonRetryableApplicationError(
			"query must not be empty", "InvalidInput", nil)
	}

	maxQuestions := input.MaxQuestions
	if maxQuestions <= 0 || maxQuestions > research.MaxClarifyingQuestions {
		maxQuestions = research.MaxClarifyingQuestions
	}
	answerTimeout := input.AnswerTimeout
	if answerTimeout <= 0 {
		answerTimeout = defaultAnswerTimeout
	}

	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: time.Minute,
		RetryPolicy:         &temporal.RetryPolicy{MaximumAttempts: 2},
	})

	answerCh := workflow.GetSignalChannel(ctx, SignalClarificationAnswer)

	var rounds []research.ClarificationRound
	for i := 0; i < maxQuestions; i++ {
		// An answer queued before its question exists is stale: it was sent
		// for an earlier round that already timed out.
		for {
			var stale ClarificationAnswer
			if !answerCh.ReceiveAsync(&stale) {
				break
			}
			logger.Info("Discarding stale clarification answer", "round", i+1)
		}

		var generated activities.ClarifyResult
		if err := workflow.ExecuteActivity(ctx, constants.GenerateClarifyingQuestionActivity,
			activities.ClarifyInput{Query: input.Query, Rounds: rounds}).Get(ctx, &generated); err != nil {
			return ClarificationResult{}, fmt.Errorf("generate question %d: %w", i+1, err)
		}

		round := research.ClarificationRound{
			Question:  generated.Question,
			WhyAsking: generated.WhyAsking,
		}

		roundNum := i + 1
		timer := workflow.NewTimer(ctx, answerTimeout)
		answered := false
		timedOut := false
		selector := workflow.NewSelector(ctx)
		selector.AddReceive(answerCh, func(c workflow.ReceiveChannel, _ bool) {
			var answer ClarificationAnswer
			c.Receive(ctx, &answer)
			if answer.Round > 0 && answer.Round != roundNum {
				logger.Info("Discarding answer pinned to another round",
					"round", roundNum, "answer_round", answer.Round)
				return
			}
			round.Answer = strings.TrimSpace(answer.Answer)
			answered = true
		})
		selector.AddFuture(timer, func(workflow.Future) {
			timedOut = true
			logger.Info("Answer wait timed out, recording blank answer", "round", roundNum)
		})
		for !answered && !timedOut {
			selector.Select(ctx)
		}

		rounds = append(rounds, round)
		if !answered {
			continue
		}
		logger.Info("Clarification answer received", "round", roundNum, "blank", round.Answer == "")
	}

	return ClarificationResult{
		Rounds:        rounds,
		EnrichedQuery: research.EnrichQuery(input.Query, rounds),
	}, nil
}

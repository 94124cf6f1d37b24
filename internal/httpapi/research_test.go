package httpapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/mocks"
	"go.uber.org/zap/zaptest"

	"github.com/meridianlabs-ai/deepresearch/internal/config"
	"github.com/meridianlabs-ai/deepresearch/internal/workflows"
)

func newResearchTestHandler(t *testing.T, mockClient *mocks.Client) *http.ServeMux {
	t.Helper()
	h := NewResearchHandler(mockClient, "research-tasks", config.ResearchConfig{
		MaxConcurrentSearches: 7,
		ClarificationTimeout:  2 * time.Minute,
		TraceURLTemplate:      "https://traces.example.com/%s",
	}, zaptest.NewLogger(t))
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	return mux
}

func TestSubmitAppliesConfiguredFanoutDefault(t *testing.T) {
	mockClient := &mocks.Client{}
	mockRun := &mocks.WorkflowRun{}
	mockRun.On("GetRunID").Return("run-1").Maybe()

	var captured workflows.ResearchInput
	mockClient.On("ExecuteWorkflow",
		mock.Anything, mock.Anything, mock.Anything,
		mock.AnythingOfType("workflows.ResearchInput"),
	).Run(func(args mock.Arguments) {
		captured = args.Get(3).(workflows.ResearchInput)
	}).Return(mockRun, nil)

	mux := newResearchTestHandler(t, mockClient)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/research",
		strings.NewReader(`{"query":"compare stream processors"}`)))

	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, 7, captured.MaxConcurrentSearches,
		"request without a width gets the configured default")
	assert.Equal(t, "https://traces.example.com/%s", captured.TraceURLTemplate)
	mockClient.AssertExpectations(t)
}

func TestSubmitRequestWidthWinsOverConfig(t *testing.T) {
	mockClient := &mocks.Client{}
	mockRun := &mocks.WorkflowRun{}
	mockRun.On("GetRunID").Return("run-1").Maybe()

	var captured workflows.ResearchInput
	mockClient.On("ExecuteWorkflow",
		mock.Anything, mock.Anything, mock.Anything,
		mock.AnythingOfType("workflows.ResearchInput"),
	).Run(func(args mock.Arguments) {
		captured = args.Get(3).(workflows.ResearchInput)
	}).Return(mockRun, nil)

	mux := newResearchTestHandler(t, mockClient)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/research",
		strings.NewReader(`{"query":"q","max_concurrent_searches":3}`)))

	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, 3, captured.MaxConcurrentSearches)
	mockClient.AssertExpectations(t)
}

func TestStartClarificationAppliesConfiguredTimeout(t *testing.T) {
	mockClient := &mocks.Client{}
	mockRun := &mocks.WorkflowRun{}
	mockRun.On("GetRunID").Return("run-1").Maybe()

	var captured workflows.ClarificationInput
	mockClient.On("ExecuteWorkflow",
		mock.Anything, mock.Anything, mock.Anything,
		mock.AnythingOfType("workflows.ClarificationInput"),
	).Run(func(args mock.Arguments) {
		captured = args.Get(3).(workflows.ClarificationInput)
	}).Return(mockRun, nil)

	mux := newResearchTestHandler(t, mockClient)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/clarifications",
		strings.NewReader(`{"query":"pick a queue","max_questions":2}`)))

	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, 2*time.Minute, captured.AnswerTimeout)
	assert.Equal(t, 2, captured.MaxQuestions)
	mockClient.AssertExpectations(t)
}

func TestAnswerForwardsRound(t *testing.T) {
	mockClient := &mocks.Client{}

	var captured workflows.ClarificationAnswer
	mockClient.On("SignalWorkflow",
		mock.Anything, "clarify-abc", "", workflows.SignalClarificationAnswer,
		mock.AnythingOfType("workflows.ClarificationAnswer"),
	).Run(func(args mock.Arguments) {
		captured = args.Get(4).(workflows.ClarificationAnswer)
	}).Return(nil)

	mux := newResearchTestHandler(t, mockClient)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/clarifications/answer",
		strings.NewReader(`{"run_id":"clarify-abc","answer":"about 10TB","round":2}`)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "about 10TB", captured.Answer)
	assert.Equal(t, 2, captured.Round)
	mockClient.AssertExpectations(t)
}

func TestSubmitRejectsEmptyQuery(t *testing.T) {
	mockClient := &mocks.Client{}
	mux := newResearchTestHandler(t, mockClient)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/research",
		strings.NewReader(`{"query":""}`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	mockClient.AssertNotCalled(t, "ExecuteWorkflow")
}

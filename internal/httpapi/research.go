package httpapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"go.temporal.io/sdk/client"
	"go.uber.org/zap"

	"github.com/meridianlabs-ai/deepresearch/internal/config"
	"github.com/meridianlabs-ai/deepresearch/internal/research"
	"github.com/meridianlabs-ai/deepresearch/internal/workflows"
)

// TemporalClient is the subset of client.Client the research API uses.
type TemporalClient interface {
	ExecuteWorkflow(ctx context.Context, options client.StartWorkflowOptions, workflow interface{}, args ...interface{}) (client.WorkflowRun, error)
	GetWorkflow(ctx context.Context, workflowID, runID string) client.WorkflowRun
	SignalWorkflow(ctx context.Context, workflowID, runID, signalName string, arg interface{}) error
}

// ResearchHandler exposes the submit/result/clarification API backed by
// Temporal. Research config supplies run defaults (fan-out width, answer
// timeout, trace URL template) for requests that do not set them.
type ResearchHandler struct {
	tc        TemporalClient
	taskQueue string
	research  config.ResearchConfig
	logger    *zap.Logger
}

func NewResearchHandler(tc TemporalClient, taskQueue string, research config.ResearchConfig, logger *zap.Logger) *ResearchHandler {
	return &ResearchHandler{
		tc:        tc,
		taskQueue: taskQueue,
		research:  research,
		logger:    logger,
	}
}

// RegisterRoutes registers the research API on the provided mux.
func (h *ResearchHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/research", h.handleSubmit)
	mux.HandleFunc("/research/result", h.handleResult)
	mux.HandleFunc("/clarifications", h.handleStartClarification)
	mux.HandleFunc("/clarifications/answer", h.handleAnswer)
}

type submitRequest struct {
	Query                 string                        `json:"query"`
	RouteOverride         string                        `json:"route_override,omitempty"`
	ClarifyingRounds      []research.ClarificationRound `json:"clarifying_rounds,omitempty"`
	MaxConcurrentSearches int                           `json:"max_concurrent_searches,omitempty"`
}

type submitResponse struct {
	RunID string `json:"run_id"`
}

// handleSubmit starts a research run and returns its run ID immediately.
// POST /research
func (h *ResearchHandler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	maxConcurrent := req.MaxConcurrentSearches
	if maxConcurrent <= 0 {
		maxConcurrent = h.research.MaxConcurrentSearches
	}

	runID := "research-" + uuid.NewString()
	_, err := h.tc.ExecuteWorkflow(r.Context(), client.StartWorkflowOptions{
		ID:        runID,
		TaskQueue: h.taskQueue,
	}, workflows.ResearchWorkflow, workflows.ResearchInput{
		Query:                 req.Query,
		RouteOverride:         req.RouteOverride,
		ClarifyingRounds:      req.ClarifyingRounds,
		MaxConcurrentSearches: maxConcurrent,
		TraceURLTemplate:      h.research.TraceURLTemplate,
	})
	if err != nil {
		h.logger.Error("Failed to start research run", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to start run")
		return
	}

	h.logger.Info("Research run submitted",
		zap.String("run_id", runID),
		zap.String("override", req.RouteOverride),
	)
	writeJSON(w, http.StatusAccepted, submitResponse{RunID: runID})
}

// handleResult blocks until the run finishes and returns its result.
// GET /research/result?run_id=<id>
func (h *ResearchHandler) handleResult(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	runID := r.URL.Query().Get("run_id")
	if runID == "" {
		writeError(w, http.StatusBadRequest, "run_id required")
		return
	}

	var result workflows.ResearchResult
	if err := h.tc.GetWorkflow(r.Context(), runID, "").Get(r.Context(), &result); err != nil {
		h.logger.Warn("Run result fetch failed", zap.String("run_id", runID), zap.Error(err))
		writeError(w, http.StatusBadGateway, "run failed: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type clarificationStartRequest struct {
	Query        string `json:"query"`
	MaxQuestions int    `json:"max_questions,omitempty"`
}

// handleStartClarification begins an interactive clarification session.
// POST /clarifications
func (h *ResearchHandler) handleStartClarification(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req clarificationStartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	runID := "clarify-" + uuid.NewString()
	_, err := h.tc.ExecuteWorkflow(r.Context(), client.StartWorkflowOptions{
		ID:        runID,
		TaskQueue: h.taskQueue,
	}, workflows.ClarificationWorkflow, workflows.ClarificationInput{
		Query:         req.Query,
		MaxQuestions:  req.MaxQuestions,
		AnswerTimeout: h.research.ClarificationTimeout,
	})
	if err != nil {
		h.logger.Error("Failed to start clarification session", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to start session")
		return
	}
	writeJSON(w, http.StatusAccepted, submitResponse{RunID: runID})
}

type answerRequest struct {
	RunID  string `json:"run_id"`
	Answer string `json:"answer"`
	// Round, when set, pins the answer to that question; the session
	// discards it if the round has already moved on.
	Round int `json:"round,omitempty"`
}

// handleAnswer delivers one clarification answer to a waiting session.
// A blank answer skips the current question. POST /clarifications/answer
func (h *ResearchHandler) handleAnswer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.RunID == "" {
		writeError(w, http.StatusBadRequest, "run_id required")
		return
	}

	err := h.tc.SignalWorkflow(r.Context(), req.RunID, "",
		workflows.SignalClarificationAnswer, workflows.ClarificationAnswer{Answer: req.Answer, Round: req.Round})
	if err != nil {
		h.logger.Warn("Signal delivery failed", zap.String("run_id", req.RunID), zap.Error(err))
		writeError(w, http.StatusNotFound, "session not found or finished")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "delivered"})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

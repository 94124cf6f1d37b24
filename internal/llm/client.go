package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/meridianlabs-ai/deepresearch/internal/research"
)

// Config holds the endpoints and limits for the external capabilities.
type Config struct {
	// BaseURL of the LLM service exposing the structured agent endpoints.
	BaseURL string
	// SearchURL of the search capability. Defaults to BaseURL when empty.
	SearchURL string
	// DeliveryURL is the webhook the final report is posted to.
	DeliveryURL string
	// Timeout applies to every HTTP request.
	Timeout time.Duration
	// RequestsPerSecond caps outbound calls; 0 disables the limiter.
	RequestsPerSecond float64
	// Burst for the rate limiter; defaults to 1 when rate limiting is on.
	Burst int
}

// Client fronts the hosted text-generation, search, and delivery
// capabilities over HTTP JSON.
type Client struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewClient builds a capability client. A nil logger is replaced with a nop.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.SearchURL == "" {
		cfg.SearchURL = cfg.BaseURL
	}
	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}
	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: limiter,
		logger:  logger,
	}
}

func (c *Client) post(ctx context.Context, url string, reqBody, respBody interface{}) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit wait: %w", err)
		}
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("call %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s returned status %d", url, resp.StatusCode)
	}
	if respBody == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(respBody); err != nil {
		return fmt.Errorf("decode response from %s: %w", url, err)
	}
	return nil
}

type classifyRequest struct {
	Query string `json:"query"`
}

// Classify asks the classification capability to pick a research route for
// the query. The returned search count is the classifier's to choose.
func (c *Client) Classify(ctx context.Context, query string) (research.Route, error) {
	var route research.Route
	url := c.cfg.BaseURL + "/agent/classify"
	if err := c.post(ctx, url, classifyRequest{Query: query}, &route); err != nil {
		return research.Route{}, &GenerationError{Endpoint: "classify", Err: err}
	}
	if route.Kind == "" {
		return research.Route{}, &GenerationError{Endpoint: "classify", Err: fmt.Errorf("empty route in response")}
	}
	return research.NormalizeClassified(route), nil
}

type clarifyRequest struct {
	Context string `json:"context"`
}

type clarifyResponse struct {
	Question  string `json:"question"`
	WhyAsking string `json:"why_asking"`
}

// Clarify requests one new clarifying question for the given context string.
func (c *Client) Clarify(ctx context.Context, contextStr string) (research.ClarificationRound, error) {
	var out clarifyResponse
	url := c.cfg.BaseURL + "/agent/clarify"
	if err := c.post(ctx, url, clarifyRequest{Context: contextStr}, &out); err != nil {
		return research.ClarificationRound{}, &GenerationError{Endpoint: "clarify", Err: err}
	}
	if out.Question == "" {
		return research.ClarificationRound{}, &GenerationError{Endpoint: "clarify", Err: fmt.Errorf("empty question in response")}
	}
	return research.ClarificationRound{Question: out.Question, WhyAsking: out.WhyAsking}, nil
}

type planRequest struct {
	Query       string `json:"query"`
	NumSearches int    `json:"num_searches"`
}

// Plan requests numSearches diverse search items for the query. The plan is
// passed through as returned; the capability owns the final count.
func (c *Client) Plan(ctx context.Context, query string, numSearches int) (research.SearchPlan, error) {
	var plan research.SearchPlan
	url := c.cfg.BaseURL + "/agent/plan"
	if err := c.post(ctx, url, planRequest{Query: query, NumSearches: numSearches}, &plan); err != nil {
		return research.SearchPlan{}, &GenerationError{Endpoint: "plan", Err: err}
	}
	if len(plan.Searches) == 0 {
		return research.SearchPlan{}, &GenerationError{Endpoint: "plan", Err: fmt.Errorf("empty search plan")}
	}
	return plan, nil
}

type writeRequest struct {
	Query    string   `json:"query"`
	Results  []string `json:"results"`
	Feedback string   `json:"feedback,omitempty"`
}

// Write synthesizes a report draft from the query and search summaries,
// optionally incorporating revision feedback.
func (c *Client) Write(ctx context.Context, query string, results []string, feedback string) (research.ReportDraft, error) {
	var draft research.ReportDraft
	url := c.cfg.BaseURL + "/agent/write"
	req := writeRequest{Query: query, Results: results, Feedback: feedback}
	if err := c.post(ctx, url, req, &draft); err != nil {
		return research.ReportDraft{}, &GenerationError{Endpoint: "write", Err: err}
	}
	if draft.MarkdownReport == "" {
		return research.ReportDraft{}, &GenerationError{Endpoint: "write", Err: fmt.Errorf("empty markdown report")}
	}
	return draft, nil
}

type evaluateRequest struct {
	Query   string   `json:"query"`
	Report  string   `json:"report"`
	Results []string `json:"results"`
}

// Evaluate scores a draft against the query and a truncated result sample.
func (c *Client) Evaluate(ctx context.Context, query, markdown string, results []string) (research.EvaluationVerdict, error) {
	var verdict research.EvaluationVerdict
	url := c.cfg.BaseURL + "/agent/evaluate"
	req := evaluateRequest{Query: query, Report: markdown, Results: results}
	if err := c.post(ctx, url, req, &verdict); err != nil {
		return research.EvaluationVerdict{}, &GenerationError{Endpoint: "evaluate", Err: err}
	}
	return verdict, nil
}

type searchRequest struct {
	Input string `json:"input"`
}

type searchResponse struct {
	Summary string `json:"summary"`
}

// Search runs one formatted search input and returns the summarized text.
func (c *Client) Search(ctx context.Context, input string) (string, error) {
	var out searchResponse
	url := c.cfg.SearchURL + "/search"
	if err := c.post(ctx, url, searchRequest{Input: input}, &out); err != nil {
		return "", &SearchError{Err: err}
	}
	if out.Summary == "" {
		return "", &SearchError{Err: fmt.Errorf("empty summary in response")}
	}
	return out.Summary, nil
}

type deliverRequest struct {
	MarkdownReport string `json:"markdown_report"`
}

// Deliver hands the final report to the delivery webhook. Fire-and-forget
// from the workflow's perspective; transport errors still surface.
func (c *Client) Deliver(ctx context.Context, markdown string) error {
	if c.cfg.DeliveryURL == "" {
		c.logger.Warn("No delivery URL configured, skipping delivery")
		return nil
	}
	if err := c.post(ctx, c.cfg.DeliveryURL, deliverRequest{MarkdownReport: markdown}, nil); err != nil {
		return &DeliveryError{Err: err}
	}
	return nil
}

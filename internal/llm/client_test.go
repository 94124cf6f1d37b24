package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handlers map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	for path, h := range handlers {
		mux.HandleFunc(path, h)
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClassifyParsesRoute(t *testing.T) {
	srv := newTestServer(t, map[string]http.HandlerFunc{
		"/agent/classify": func(w http.ResponseWriter, r *http.Request) {
			var req map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "compare X vs Y", req["query"])
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"route":        "comparative",
				"reasoning":    "comparison query",
				"num_searches": 6,
			})
		},
	})

	c := NewClient(Config{BaseURL: srv.URL}, nil)
	route, err := c.Classify(context.Background(), "compare X vs Y")
	require.NoError(t, err)
	assert.Equal(t, "comparative", string(route.Kind))
	assert.Equal(t, 6, route.NumSearches)
}

func TestClassifyFillsMissingSearchCount(t *testing.T) {
	srv := newTestServer(t, map[string]http.HandlerFunc{
		"/agent/classify": func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"route":     "deep",
				"reasoning": "broad topic",
			})
		},
	})

	c := NewClient(Config{BaseURL: srv.URL}, nil)
	route, err := c.Classify(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, 5, route.NumSearches)
}

func TestClassifyServerErrorIsGenerationError(t *testing.T) {
	srv := newTestServer(t, map[string]http.HandlerFunc{
		"/agent/classify": func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		},
	})

	c := NewClient(Config{BaseURL: srv.URL}, nil)
	_, err := c.Classify(context.Background(), "q")
	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, "classify", genErr.Endpoint)
}

func TestPlanPassesCountThrough(t *testing.T) {
	srv := newTestServer(t, map[string]http.HandlerFunc{
		"/agent/plan": func(w http.ResponseWriter, r *http.Request) {
			var req map[string]interface{}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.EqualValues(t, 4, req["num_searches"])
			// Return a different count than requested; the client must not
			// truncate or pad.
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"searches": []map[string]string{
					{"term": "a", "reason": "r1"},
					{"term": "b", "reason": "r2"},
				},
			})
		},
	})

	c := NewClient(Config{BaseURL: srv.URL}, nil)
	plan, err := c.Plan(context.Background(), "q", 4)
	require.NoError(t, err)
	assert.Len(t, plan.Searches, 2)
	assert.Equal(t, "a", plan.Searches[0].Term)
}

func TestSearchFailureIsSearchError(t *testing.T) {
	srv := newTestServer(t, map[string]http.HandlerFunc{
		"/search": func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "unavailable", http.StatusBadGateway)
		},
	})

	c := NewClient(Config{BaseURL: srv.URL}, nil)
	_, err := c.Search(context.Background(), "Search term: x\nReason: y")
	var searchErr *SearchError
	assert.ErrorAs(t, err, &searchErr)
}

func TestWriteIncludesFeedback(t *testing.T) {
	var gotFeedback string
	srv := newTestServer(t, map[string]http.HandlerFunc{
		"/agent/write": func(w http.ResponseWriter, r *http.Request) {
			var req map[string]interface{}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			gotFeedback, _ = req["feedback"].(string)
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"markdown_report": "# Report",
				"short_summary":   "s",
			})
		},
	})

	c := NewClient(Config{BaseURL: srv.URL}, nil)
	draft, err := c.Write(context.Background(), "q", []string{"r1"}, "Issues: A\nSuggestions: B")
	require.NoError(t, err)
	assert.Equal(t, "# Report", draft.MarkdownReport)
	assert.Equal(t, "Issues: A\nSuggestions: B", gotFeedback)
}

func TestDeliverSkipsWhenUnconfigured(t *testing.T) {
	c := NewClient(Config{BaseURL: "http://unused"}, nil)
	assert.NoError(t, c.Deliver(context.Background(), "# Report"))
}

func TestDeliverFailureIsDeliveryError(t *testing.T) {
	srv := newTestServer(t, map[string]http.HandlerFunc{
		"/deliver": func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "nope", http.StatusForbidden)
		},
	})

	c := NewClient(Config{BaseURL: srv.URL, DeliveryURL: srv.URL + "/deliver"}, nil)
	err := c.Deliver(context.Background(), "# Report")
	var delErr *DeliveryError
	assert.ErrorAs(t, err, &delErr)
	assert.False(t, errors.Is(err, context.Canceled))
}

package health

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeChecker struct {
	name     string
	err      error
	critical bool
}

func (f *fakeChecker) Name() string                  { return f.name }
func (f *fakeChecker) Check(_ context.Context) error { return f.err }
func (f *fakeChecker) Critical() bool                { return f.critical }

func TestRunAllHealthy(t *testing.T) {
	m := NewManager(zaptest.NewLogger(t))
	m.Register(&fakeChecker{name: "a", critical: true})
	m.Register(&fakeChecker{name: "b"})

	ready, results := m.Run(context.Background())
	assert.True(t, ready)
	require.Len(t, results, 2)
	assert.Equal(t, StatusHealthy, results[0].Status)
}

func TestCriticalFailureBlocksReadiness(t *testing.T) {
	m := NewManager(zaptest.NewLogger(t))
	m.Register(&fakeChecker{name: "llm-service", err: errors.New("down"), critical: true})

	ready, results := m.Run(context.Background())
	assert.False(t, ready)
	assert.Equal(t, StatusUnhealthy, results[0].Status)
	assert.Equal(t, "down", results[0].Error)
}

func TestNonCriticalFailureStaysReady(t *testing.T) {
	m := NewManager(zaptest.NewLogger(t))
	m.Register(&fakeChecker{name: "redis", err: errors.New("down")})

	ready, _ := m.Run(context.Background())
	assert.True(t, ready)
}

func TestReadyzEndpoint(t *testing.T) {
	m := NewManager(zaptest.NewLogger(t))
	m.Register(&fakeChecker{name: "llm-service", err: errors.New("down"), critical: true})

	mux := http.NewServeMux()
	m.RegisterRoutes(mux)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ready":false`)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLLMServiceChecker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewLLMServiceChecker(srv.URL)
	assert.NoError(t, c.Check(context.Background()))

	bad := NewLLMServiceChecker(srv.URL + "/missing")
	assert.Error(t, bad.Check(context.Background()))
}

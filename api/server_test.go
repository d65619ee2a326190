package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"complexity-engine/api"
	"complexity-engine/internal/resolve"
	"complexity-engine/internal/solver"
	"complexity-engine/pkg/complexity"
	"complexity-engine/pkg/symbolic"
)

func newTestServer() http.Handler {
	engine := resolve.NewEngine(solver.DefaultParams())
	return api.NewServer(engine, nil, nil).Routes()
}

func postResolve(t *testing.T, handler http.Handler, req resolve.Request) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(req)
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/resolve", bytes.NewReader(body)))
	return rec
}

func TestHandleResolve(t *testing.T) {
	handler := newTestServer()
	rec := postResolve(t, handler, resolve.Request{
		AlgorithmName: "merge_sort",
		AlgorithmType: complexity.TypeRecursive,
		Expressions: []complexity.CostExpression{{
			Kind:    complexity.KindRecurrence,
			Case:    complexity.CaseUnified,
			Terms:   []complexity.RecursiveTerm{complexity.DivideTerm(2, 2)},
			Driving: symbolic.Linear(),
		}},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var result complexity.ComplexityResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "merge_sort", result.AlgorithmName)
	require.NotNil(t, result.Unified)
	require.NotNil(t, result.Unified.Resolution.Theta)
	assert.Equal(t, "Θ(n log n)", result.Unified.Resolution.Theta.Expression())
	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", result.Audit.RequestID.String())
}

func TestHandleResolveValidationError(t *testing.T) {
	handler := newTestServer()
	rec := postResolve(t, handler, resolve.Request{
		AlgorithmName: "broken",
		AlgorithmType: complexity.TypeRecursive,
		Expressions: []complexity.CostExpression{{
			Kind: complexity.KindRecurrence,
			Case: complexity.CaseUnified,
		}},
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body["error"], "VALIDATION_FAILED")
}

func TestHandleResolveUnsolvableReturns422(t *testing.T) {
	handler := newTestServer()
	rec := postResolve(t, handler, resolve.Request{
		AlgorithmName: "mixed",
		AlgorithmType: complexity.TypeRecursive,
		Expressions: []complexity.CostExpression{{
			Kind: complexity.KindRecurrence,
			Case: complexity.CaseUnified,
			Terms: []complexity.RecursiveTerm{
				complexity.DivideTerm(1, 2),
				complexity.DecrementTerm(1, 1),
			},
			Driving: symbolic.Constant(),
		}},
	})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestHandleResolveMalformedBody(t *testing.T) {
	handler := newTestServer()
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/resolve",
		bytes.NewReader([]byte("{not json"))))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStartWithGracefulShutdownReturnsListenError(t *testing.T) {
	engine := resolve.NewEngine(solver.DefaultParams())
	cfg := api.DefaultConfig()
	cfg.Port = "not-a-port"
	srv := api.NewServer(engine, nil, cfg)
	assert.Error(t, srv.StartWithGracefulShutdown())
}

func TestHealthEndpoints(t *testing.T) {
	handler := newTestServer()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var health map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "healthy", health["status"])

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())

	// No cache configured: readiness is unconditional.
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/version", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var version map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &version))
	assert.Equal(t, api.Version, version["version"])
}

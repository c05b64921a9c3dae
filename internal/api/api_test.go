package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/corank/pkg/cache"
	"github.com/matzehuels/corank/pkg/observability"
	"github.com/matzehuels/corank/pkg/pipeline"
	"github.com/matzehuels/corank/pkg/store"
)

const threeRankings = `{"name":"demo","rankings":[[["a"],["b"],["c"]],[["b"],["a"],["c"]],[["a"],["c"],["b"]]]}`

func newTestServer(t *testing.T, st store.Store, opts Options) *httptest.Server {
	t.Helper()
	logger := log.New(io.Discard)
	runner := pipeline.NewRunner(cache.NewNullCache(), nil, st, logger)
	srv := httptest.NewServer(NewRouter(runner, logger, opts))
	t.Cleanup(srv.Close)
	return srv
}

func post(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, nil, Options{})
	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody[map[string]string](t, resp)
	assert.Equal(t, "ok", body["status"])
}

func TestConsensus(t *testing.T) {
	srv := newTestServer(t, store.NewMemoryStore(), Options{})
	resp := post(t, srv.URL+"/api/v1/consensus", threeRankings)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody[ConsensusResponse](t, resp)
	assert.Equal(t, [][]string{{"a"}, {"b"}, {"c"}}, body.Consensus)
	assert.Equal(t, 2.0, body.Score)
	assert.True(t, body.Optimal)
	assert.Equal(t, "ParCons", body.Algorithm)
	assert.Equal(t, "demo", body.Dataset)
	assert.False(t, body.CacheHit)
	assert.False(t, body.Saved)
}

func TestConsensusSchemes(t *testing.T) {
	srv := newTestServer(t, nil, Options{})
	opposed := `"rankings":[[["a"],["b"],["c"]],[["c"],["b"],["a"]]]`

	tests := []struct {
		name   string
		scheme string
		want   [][]string
	}{
		{"explicit vectors", `{"before":[0,1,0.25,0,0,0],"tied":[0.25,0.25,0,0,0,0]}`, [][]string{{"a", "b", "c"}}},
		{"preset", `{"preset":"unifying"}`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, srv.URL+"/api/v1/consensus", `{`+opposed+`,"scheme":`+tt.scheme+`}`)
			require.Equal(t, http.StatusOK, resp.StatusCode)
			body := decodeBody[ConsensusResponse](t, resp)
			if tt.want != nil {
				assert.Equal(t, tt.want, body.Consensus)
			}
			assert.Len(t, flatten(body.Consensus), 3)
		})
	}
}

func flatten(buckets [][]string) []string {
	var out []string
	for _, b := range buckets {
		out = append(out, b...)
	}
	return out
}

func TestConsensusErrors(t *testing.T) {
	srv := newTestServer(t, nil, Options{MaxBodyBytes: 512})

	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"not json", `{`, http.StatusBadRequest, "INVALID_FORMAT"},
		{"unknown field", `{"rankings":[[["a"]]],"bogus":1}`, http.StatusBadRequest, "INVALID_FORMAT"},
		{"no rankings", `{"rankings":[]}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"empty bucket", `{"rankings":[[["a"],[]]]}`, http.StatusBadRequest, "MALFORMED_INPUT"},
		{"repeated element", `{"rankings":[[["a"],["a"]]]}`, http.StatusBadRequest, "MALFORMED_INPUT"},
		{"unknown preset", `{"rankings":[[["a"]]],"scheme":{"preset":"nope"}}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"negative penalty", `{"rankings":[[["a"]]],"scheme":{"before":[0,-1,0,0,0,0],"tied":[1,1,0,0,0,0]}}`, http.StatusBadRequest, "INVALID_SCORING_SCHEME"},
		{"preset and vectors", `{"rankings":[[["a"]]],"scheme":{"preset":"induced","before":[0,1,1,0,1,1],"tied":[1,1,0,1,1,0]}}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"half a scheme", `{"rankings":[[["a"]]],"scheme":{"before":[0,1,1,0,0,0]}}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"too large", `{"rankings":[[["` + strings.Repeat("x", 1024) + `"]]]}`, http.StatusRequestEntityTooLarge, "INVALID_INPUT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, srv.URL+"/api/v1/consensus", tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)
			body := decodeBody[errorBody](t, resp)
			assert.Equal(t, tt.code, body.Code)
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestRunsLifecycle(t *testing.T) {
	st := store.NewMemoryStore()
	srv := newTestServer(t, st, Options{})

	resp := post(t, srv.URL+"/api/v1/consensus", strings.Replace(threeRankings, `"name"`, `"save":true,"name"`, 1))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	saved := decodeBody[ConsensusResponse](t, resp)
	require.True(t, saved.Saved)
	id := saved.ID.String()

	resp, err := http.Get(srv.URL + "/api/v1/runs")
	require.NoError(t, err)
	defer resp.Body.Close()
	list := decodeBody[struct {
		Runs []store.Summary `json:"runs"`
	}](t, resp)
	require.Len(t, list.Runs, 1)
	assert.Equal(t, saved.ID, list.Runs[0].ID)
	assert.Equal(t, 3, list.Runs[0].Elements)

	resp, err = http.Get(srv.URL + "/api/v1/runs/" + id)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	run := decodeBody[store.Run](t, resp)
	assert.Equal(t, saved.Consensus, run.Consensus)

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/api/v1/runs/"+id, nil)
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/api/v1/runs/" + id)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "RUN_NOT_FOUND", decodeBody[errorBody](t, resp).Code)
}

func TestRunsBadRequests(t *testing.T) {
	srv := newTestServer(t, store.NewMemoryStore(), Options{})
	for _, path := range []string{"/api/v1/runs/not-a-uuid", "/api/v1/runs?limit=x", "/api/v1/runs?limit=-1"} {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, path)
	}
}

func TestRunsWithoutStore(t *testing.T) {
	srv := newTestServer(t, nil, Options{})
	resp, err := http.Get(srv.URL + "/api/v1/runs")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotImplemented, resp.StatusCode)
}

func TestGraph(t *testing.T) {
	srv := newTestServer(t, nil, Options{})
	body := strings.Replace(threeRankings, `"name"`, `"format":"dot","costs":true,"name"`, 1)
	resp := post(t, srv.URL+"/api/v1/graph", body)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/vnd.graphviz", resp.Header.Get("Content-Type"))

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("digraph")))

	resp = post(t, srv.URL+"/api/v1/graph", strings.Replace(threeRankings, `"name"`, `"format":"png","name"`, 1))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSchemes(t *testing.T) {
	srv := newTestServer(t, nil, Options{})
	resp, err := http.Get(srv.URL + "/api/v1/schemes")
	require.NoError(t, err)
	defer resp.Body.Close()
	body := decodeBody[map[string]json.RawMessage](t, resp)
	assert.Contains(t, body, "unifying")
	assert.Contains(t, body, "induced")
	assert.Contains(t, body, "fagin")
}

func TestMetricsMiddleware(t *testing.T) {
	t.Cleanup(observability.Reset)
	reg := prometheus.NewRegistry()
	prom := observability.NewPrometheus(reg)
	observability.SetConsensusHooks(prom)
	observability.SetHTTPHooks(prom)

	srv := newTestServer(t, nil, Options{Gatherer: reg})
	post(t, srv.URL+"/api/v1/consensus", threeRankings)

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	text := string(data)
	assert.Contains(t, text, "corank_computations_total")
	assert.Contains(t, text, `route="/api/v1/consensus"`)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, statusFor(io.EOF))
}

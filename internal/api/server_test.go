package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"mlengine/internal/intelligence"
	"mlengine/internal/intelligence/memorystore"
	"mlengine/internal/intelligence/schema"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T, snap *memorystore.Snapshot) *httptest.Server {
	t.Helper()

	store := memorystore.NewStore()
	if snap != nil {
		store.Publish(snap)
	}
	svc := intelligence.New(nil, store, nil, zap.NewNop())

	srv := httptest.NewServer(NewServer(Options{MatrixSample: 2}, svc, zap.NewNop()).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func sampleSnapshot() *memorystore.Snapshot {
	return &memorystore.Snapshot{
		Universe: memorystore.NewUniverseTable([]memorystore.Entity{
			{ID: "1", Ticker: "AAA", Name: "Alpha", Sector: "Energy", AnomalyFlag: true, LastAuditDate: time.Date(2024, 2, 3, 0, 0, 0, 0, time.UTC)},
			{ID: "2", Ticker: "BBB", Name: "Beta", Sector: "Energy"},
			{ID: "3", Ticker: "CCC", Name: "Gamma", Sector: "Utilities"},
		}),
		LoadedAt: time.Date(2024, 2, 4, 0, 0, 0, 0, time.UTC),
	}
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	return resp.StatusCode
}

// go test -v --run TestHealth
func TestHealth(t *testing.T) {
	srv := newTestServer(t, sampleSnapshot())

	var h schema.Health
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/ml/health", &h))
	assert.Equal(t, "operational", h.Status)
	assert.Equal(t, "ml-engine", h.Service)
	assert.Equal(t, 3, h.UniverseRows)
}

// go test -v --run TestStatsAndSectors
func TestStatsAndSectors(t *testing.T) {
	srv := newTestServer(t, sampleSnapshot())

	var stats schema.GlobalStats
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/ml/stats", &stats))
	assert.Equal(t, 3, stats.TotalIndexed)
	assert.Equal(t, 1, stats.Anomalies)

	var sectors []schema.SectorAnalysis
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/ml/overview/sectors", &sectors))
	require.Len(t, sectors, 2)
	assert.Equal(t, "Energy", sectors[0].Name)
	assert.Equal(t, 50.0, sectors[0].Risk)
}

// go test -v --run TestEmptyUniverseShapes
func TestEmptyUniverseShapes(t *testing.T) {
	srv := newTestServer(t, nil)

	for _, path := range []string{"/ml/overview/sectors", "/ml/overview/matrix"} {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		var raw json.RawMessage
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&raw))
		resp.Body.Close()
		assert.Equal(t, "[]", string(raw), path)
	}

	var stats map[string]any
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/ml/stats", &stats))
	assert.Equal(t, map[string]any{"total_indexed": 0.0, "anomalies": 0.0, "drift_24h": 0.0}, stats)
}

// go test -v --run TestMatrixSize
func TestMatrixSize(t *testing.T) {
	srv := newTestServer(t, sampleSnapshot())

	var points []schema.MarketMatrixPoint
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/ml/overview/matrix", &points))
	assert.Len(t, points, 2)

	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/ml/overview/matrix?size=10", &points))
	assert.Len(t, points, 3)

	var e errorBody
	require.Equal(t, http.StatusBadRequest, getJSON(t, srv.URL+"/ml/overview/matrix?size=lots", &e))
	assert.Contains(t, e.Detail, "size")
}

// go test -v --run TestResearch
func TestResearch(t *testing.T) {
	srv := newTestServer(t, sampleSnapshot())

	var r schema.ResearchResult
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/ml/research/aaa", &r))
	assert.Equal(t, "AAA", r.Ticker)
	assert.Equal(t, "2024-02-03", r.LastAudit)
	assert.Equal(t, schema.TrendStable, r.ESGTrend)

	var e errorBody
	require.Equal(t, http.StatusNotFound, getJSON(t, srv.URL+"/ml/research/zzz", &e))
	assert.Equal(t, "Ticker 'zzz' not found in the GreenScale institutional universe.", e.Detail)
}

// go test -v --run TestAnomalies
func TestAnomalies(t *testing.T) {
	srv := newTestServer(t, sampleSnapshot())

	var summary schema.AnomalySummary
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/ml/anomalies?sector=Energy&limit=5", &summary))
	assert.Equal(t, 1, summary.TotalFound)
	require.Len(t, summary.Anomalies, 1)
	assert.Equal(t, "AAA", summary.Anomalies[0].Ticker)

	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/ml/anomalies?sector=Utilities", &summary))
	assert.Zero(t, summary.TotalFound)
	assert.Empty(t, summary.Anomalies)
}

// go test -v --run TestSearchWithoutIndex
func TestSearchWithoutIndex(t *testing.T) {
	srv := newTestServer(t, sampleSnapshot())

	resp, err := http.Post(srv.URL+"/ml/search", "application/json", strings.NewReader(`{"query":"alp","sector":null}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var res schema.SearchResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	assert.Equal(t, 0, res.Total)
	assert.NotNil(t, res.Hits)
}

// go test -v --run TestSearchMalformedBody
func TestSearchMalformedBody(t *testing.T) {
	srv := newTestServer(t, sampleSnapshot())

	resp, err := http.Post(srv.URL+"/ml/search", "application/json", strings.NewReader(`{"query":`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var e errorBody
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&e))
	assert.Contains(t, e.Detail, "invalid search request")
}

// go test -v --run TestMethodNotAllowed
func TestMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, sampleSnapshot())

	resp, err := http.Get(srv.URL + "/ml/search")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/monishmahesha2006/resume-relevance-system/internal/models"
	"github.com/monishmahesha2006/resume-relevance-system/internal/types"
	"github.com/monishmahesha2006/resume-relevance-system/pkg/match"
)

type stubEmbedder struct{}

func (stubEmbedder) Embed(context.Context, string) ([]float32, error) {
	return []float32{1, 0}, nil
}

type memDocStore struct {
	resumes map[string]*models.ProcessedDocument
	jds     map[string]*models.ProcessedDocument
}

func (m *memDocStore) GetResume(_ context.Context, id string) (*models.ProcessedDocument, error) {
	if doc, ok := m.resumes[id]; ok {
		return doc, nil
	}
	return nil, types.ErrNotFound
}

func (m *memDocStore) GetJobDescription(_ context.Context, id string) (*models.ProcessedDocument, error) {
	if doc, ok := m.jds[id]; ok {
		return doc, nil
	}
	return nil, types.ErrNotFound
}

func (m *memDocStore) ListResumeIDs(context.Context) ([]string, error) {
	return mapKeys(m.resumes), nil
}

func (m *memDocStore) ListJobDescriptionIDs(context.Context) ([]string, error) {
	return mapKeys(m.jds), nil
}

func mapKeys(m map[string]*models.ProcessedDocument) []string {
	var keys []string
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

type memResultStore struct {
	mu      sync.Mutex
	results map[string]*models.MatchResult
}

func (m *memResultStore) key(resumeID, jdID string) string { return resumeID + "/" + jdID }

func (m *memResultStore) UpsertResult(_ context.Context, result *models.MatchResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.results == nil {
		m.results = make(map[string]*models.MatchResult)
	}
	m.results[m.key(result.ResumeID, result.JDID)] = result
	return nil
}

func (m *memResultStore) GetResult(_ context.Context, resumeID, jdID string) (*models.MatchResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if result, ok := m.results[m.key(resumeID, jdID)]; ok {
		return result, nil
	}
	return nil, types.ErrNotFound
}

func (m *memResultStore) ListResults(context.Context, int) ([]*models.MatchResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var results []*models.MatchResult
	for _, r := range m.results {
		results = append(results, r)
	}
	return results, nil
}

func newTestServer(t *testing.T) (*Server, *memDocStore, *memResultStore) {
	t.Helper()

	engine, err := match.NewEngine(match.DefaultParams(), stubEmbedder{})
	require.NoError(t, err)

	docs := &memDocStore{
		resumes: map[string]*models.ProcessedDocument{
			"r1": {ID: "r1", Sections: map[string]string{"summary": "go developer"}, Skills: []string{"Go"}},
			"r2": {ID: "r2", Sections: map[string]string{"summary": "python developer"}, Skills: []string{"Python"}},
		},
		jds: map[string]*models.ProcessedDocument{
			"j1": {ID: "j1", Sections: map[string]string{"requirements": "go role"}, Skills: []string{"Go"}},
		},
	}
	results := &memResultStore{}

	return New(Config{Workers: 2}, engine, docs, results, nil), docs, results
}

func TestHealthEndpoint(t *testing.T) {
	server, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	server.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestMatchEndpoint(t *testing.T) {
	server, _, results := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/match/r1/j1", nil)
	rec := httptest.NewRecorder()
	server.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var result models.MatchResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "r1", result.ResumeID)
	assert.Equal(t, "j1", result.JDID)
	assert.GreaterOrEqual(t, result.RelevanceScore, 0.0)
	assert.LessOrEqual(t, result.RelevanceScore, 1.0)

	stored, err := results.GetResult(context.Background(), "r1", "j1")
	require.NoError(t, err)
	assert.Equal(t, result.RelevanceScore, stored.RelevanceScore)
}

func TestMatchEndpointUnknownResume(t *testing.T) {
	server, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/match/unknown/j1", nil)
	rec := httptest.NewRecorder()
	server.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "resume unknown not found")
}

func TestMatchAllEndpoint(t *testing.T) {
	server, _, results := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/match/all", nil)
	rec := httptest.NewRecorder()
	server.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var summary match.BatchSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Len(t, summary.Results, 2) // 2 resumes x 1 jd
	assert.Empty(t, summary.Failures)

	_, err := results.GetResult(context.Background(), "r2", "j1")
	assert.NoError(t, err)
}

func TestResultsEndpoint(t *testing.T) {
	server, _, results := newTestServer(t)
	require.NoError(t, results.UpsertResult(context.Background(), &models.MatchResult{
		ResumeID: "r1", JDID: "j1", RelevanceScore: 0.5, Verdict: models.VerdictMedium,
	}))

	req := httptest.NewRequest(http.MethodGet, "/results", nil)
	rec := httptest.NewRecorder()
	server.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var listed []*models.MatchResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	assert.Len(t, listed, 1)
}

func TestResultsEndpointEmpty(t *testing.T) {
	server, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/results", nil)
	rec := httptest.NewRecorder()
	server.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestResultsEndpointBadLimit(t *testing.T) {
	server, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/results?limit=abc", nil)
	rec := httptest.NewRecorder()
	server.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestResultEndpointNotFound(t *testing.T) {
	server, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/results/r1/j1", nil)
	rec := httptest.NewRecorder()
	server.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBatchWebSocket(t *testing.T) {
	server, _, _ := newTestServer(t)
	ts := httptest.NewServer(server.Routes())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/batch"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(map[string]bool{"force": true}))

	var progressFrames int
	for {
		var msg Message
		require.NoError(t, conn.ReadJSON(&msg))

		switch msg.Type {
		case "progress":
			progressFrames++
		case "summary":
			assert.Equal(t, 2, progressFrames)

			raw, err := json.Marshal(msg.Data)
			require.NoError(t, err)
			var summary match.BatchSummary
			require.NoError(t, json.Unmarshal(raw, &summary))
			assert.Len(t, summary.Results, 2)
			return
		default:
			t.Fatalf("unexpected frame type %q", msg.Type)
		}
	}
}

package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestNewServer_RequiresRetrieval(t *testing.T) {
	s, err := NewServer(Ports{})

	assert.Nil(t, s)
	assert.ErrorIs(t, err, ErrMissingRetrievalService)
}

func TestRetrieveHandler(t *testing.T) {
	retrieval := &mockRetrievalService{results: []domain.RetrievalResult{{
		Text:     "chunk text",
		Metadata: domain.Metadata{Source: "guide", Location: "ROOT", Tag: "AI"},
	}}}
	s, err := NewServer(Ports{Retrieval: retrieval})
	require.NoError(t, err)

	rec := do(t, s, http.MethodPost, "/api/v1/retrieve", `{"query": "ranking", "k": 4, "tag": "AI"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp RetrieveResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Documents, 1)
	assert.Equal(t, "chunk text", resp.Documents[0].Text)
	assert.Equal(t, "guide", resp.Documents[0].Metadata.Source)

	assert.Equal(t, "ranking", retrieval.lastQuery.Query)
	assert.Equal(t, 4, retrieval.lastQuery.K)
	require.NotNil(t, retrieval.lastQuery.Tag)
	assert.Equal(t, "AI", *retrieval.lastQuery.Tag)
}

func TestRetrieveHandler_NullTag(t *testing.T) {
	retrieval := &mockRetrievalService{}
	s, err := NewServer(Ports{Retrieval: retrieval})
	require.NoError(t, err)

	rec := do(t, s, http.MethodPost, "/api/v1/retrieve", `{"query": "ranking", "k": 4, "tag": null}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, retrieval.lastQuery.Tag)
	assert.JSONEq(t, `{"documents": []}`, rec.Body.String())
}

func TestRetrieveHandler_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "malformed json", body: `{"query":`},
		{name: "missing query", body: `{"k": 3}`},
		{name: "blank query", body: `{"query": "   "}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewServer(Ports{Retrieval: &mockRetrievalService{}})
			require.NoError(t, err)

			rec := do(t, s, http.MethodPost, "/api/v1/retrieve", tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), `"error"`)
		})
	}
}

func TestIngestHandler(t *testing.T) {
	ingestion := &mockIngestionService{chunks: 12}
	s, err := NewServer(Ports{Retrieval: &mockRetrievalService{}, Ingestion: ingestion})
	require.NoError(t, err)

	rec := do(t, s, http.MethodPost, "/api/v1/ingest", `{"location": "https://example.com/a.pdf", "tag": "AI"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"chunks": 12}`, rec.Body.String())
	assert.Equal(t, "https://example.com/a.pdf", ingestion.lastRequest.Location)
	assert.Equal(t, 0, ingestion.lastRequest.ChunkSize)
	assert.Equal(t, -1, ingestion.lastRequest.ChunkOverlap)

	rec = do(t, s, http.MethodPost, "/api/v1/ingest", `{"location": "a.md", "chunk_size": 200, "chunk_overlap": 0}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 200, ingestion.lastRequest.ChunkSize)
	assert.Equal(t, 0, ingestion.lastRequest.ChunkOverlap)
}

func TestIngestHandler_DisabledWithoutService(t *testing.T) {
	s, err := NewServer(Ports{Retrieval: &mockRetrievalService{}})
	require.NoError(t, err)

	rec := do(t, s, http.MethodPost, "/api/v1/ingest", `{"location": "a.md"}`)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestIngestHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "unsupported format", err: &domain.UnsupportedFormatError{Path: "a.txt", Suffix: ".txt"},
			expected: http.StatusBadRequest},
		{name: "format", err: &domain.FormatError{Format: domain.FormatQA, Reason: "no valid Q&A found"},
			expected: http.StatusBadRequest},
		{name: "fetch", err: &domain.FetchError{Location: "x", StatusCode: 404}, expected: http.StatusBadGateway},
		{name: "embedding", err: &domain.EmbeddingError{Err: errors.New("quota")}, expected: http.StatusBadGateway},
		{name: "store", err: domain.ErrStoreUnavailable, expected: http.StatusServiceUnavailable},
		{name: "other", err: errors.New("boom"), expected: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewServer(Ports{
				Retrieval: &mockRetrievalService{},
				Ingestion: &mockIngestionService{err: tt.err},
			})
			require.NoError(t, err)

			rec := do(t, s, http.MethodPost, "/api/v1/ingest", `{"location": "a.md"}`)

			assert.Equal(t, tt.expected, rec.Code)
			var resp errorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.err.Error(), resp.Error)
		})
	}
}

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name     string
		status   *mockStatusService
		expected int
	}{
		{name: "no status service", status: nil, expected: http.StatusOK},
		{name: "healthy", status: &mockStatusService{status: &domain.Status{EmbeddingOK: true, StoreOK: true}},
			expected: http.StatusOK},
		{name: "store down", status: &mockStatusService{status: &domain.Status{EmbeddingOK: true}},
			expected: http.StatusServiceUnavailable},
		{name: "status error", status: &mockStatusService{err: errors.New("x")},
			expected: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ports := Ports{Retrieval: &mockRetrievalService{}}
			if tt.status != nil {
				ports.Status = tt.status
			}
			s, err := NewServer(ports)
			require.NoError(t, err)

			rec := do(t, s, http.MethodGet, "/healthz", "")

			assert.Equal(t, tt.expected, rec.Code)
		})
	}
}

func TestServer_RunStopsOnCancel(t *testing.T) {
	s, err := NewServer(Ports{Retrieval: &mockRetrievalService{}})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- s.Run(ctx, "127.0.0.1:0") }()
	cancel()

	assert.NoError(t, <-errCh)
}

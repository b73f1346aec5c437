package mcp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

func TestNewServer(t *testing.T) {
	t.Run("nil ports returns error", func(t *testing.T) {
		server, err := NewServer(nil, Options{})
		assert.Nil(t, server)
		assert.ErrorIs(t, err, ErrMissingRetrievalService)
	})

	t.Run("nil retrieval service returns error", func(t *testing.T) {
		server, err := NewServer(&Ports{}, Options{})
		require.Error(t, err)
		assert.Nil(t, server)
		assert.ErrorIs(t, err, ErrMissingRetrievalService)
	})

	t.Run("ingest allowed without ingestion service", func(t *testing.T) {
		server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{}}, Options{AllowIngest: true})
		assert.Nil(t, server)
		assert.ErrorIs(t, err, ErrMissingIngestionService)
	})

	t.Run("valid ports creates server", func(t *testing.T) {
		server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{}}, Options{})
		require.NoError(t, err)
		assert.NotNil(t, server)
	})
}

func TestPorts_Validate(t *testing.T) {
	t.Run("retrieval only is valid", func(t *testing.T) {
		ports := &Ports{Retrieval: &mockRetrievalService{}}
		assert.NoError(t, ports.Validate(false))
	})

	t.Run("all ports is valid", func(t *testing.T) {
		ports := &Ports{
			Retrieval: &mockRetrievalService{},
			Ingestion: &mockIngestionService{},
			Status:    &mockStatusService{},
		}
		assert.NoError(t, ports.Validate(true))
	})
}

// connect starts an in-memory client session against the server.
func connect(t *testing.T, s *Server) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()

	clientTransport, serverTransport := mcp.NewInMemoryTransports()
	ss, err := s.server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ss.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cs.Close() })

	return cs
}

func toolNames(t *testing.T, cs *mcp.ClientSession) map[string]*mcp.Tool {
	t.Helper()
	res, err := cs.ListTools(context.Background(), nil)
	require.NoError(t, err)
	tools := make(map[string]*mcp.Tool, len(res.Tools))
	for _, tool := range res.Tools {
		tools[tool.Name] = tool
	}
	return tools
}

func TestServer_ListTools(t *testing.T) {
	t.Run("retrieval only", func(t *testing.T) {
		server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{}}, Options{})
		require.NoError(t, err)

		tools := toolNames(t, connect(t, server))

		require.Contains(t, tools, "retrieval")
		assert.NotContains(t, tools, "ingest")
		retrieval := tools["retrieval"]
		assert.Equal(t, "Retrieve Relevant Documents", retrieval.Title)
		require.NotNil(t, retrieval.Annotations)
		assert.True(t, retrieval.Annotations.ReadOnlyHint)
	})

	t.Run("ingest allowed", func(t *testing.T) {
		server, err := NewServer(&Ports{
			Retrieval: &mockRetrievalService{},
			Ingestion: &mockIngestionService{},
		}, Options{AllowIngest: true})
		require.NoError(t, err)

		tools := toolNames(t, connect(t, server))

		assert.Contains(t, tools, "retrieval")
		assert.Contains(t, tools, "ingest")
	})
}

func TestServer_CallRetrieval(t *testing.T) {
	retrieval := &mockRetrievalService{results: []domain.RetrievalResult{{
		Text:     "Cosine similarity ranks chunks.",
		Metadata: domain.Metadata{Source: "guide", Location: "Vectors", Tag: "AI"},
	}}}
	server, err := NewServer(&Ports{Retrieval: retrieval}, Options{})
	require.NoError(t, err)
	cs := connect(t, server)

	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "retrieval",
		Arguments: map[string]any{"query": "how are chunks ranked", "k": 3, "tag": "AI"},
	})

	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Equal(t, "how are chunks ranked", retrieval.lastQuery.Query)
	assert.Equal(t, 3, retrieval.lastQuery.K)
	require.NotNil(t, retrieval.lastQuery.Tag)
	assert.Equal(t, "AI", *retrieval.lastQuery.Tag)

	structured, ok := res.StructuredContent.(map[string]any)
	require.True(t, ok)
	docs, ok := structured["documents"].([]any)
	require.True(t, ok)
	require.Len(t, docs, 1)
	doc := docs[0].(map[string]any)
	assert.Equal(t, "Cosine similarity ranks chunks.", doc["text"])
	assert.Equal(t, map[string]any{"source": "guide", "location": "Vectors", "tag": "AI"}, doc["metadata"])
}

func TestServer_CallRetrieval_ErrorIsToolError(t *testing.T) {
	retrieval := &mockRetrievalService{err: &domain.EmbeddingError{Provider: "nomic", Err: assert.AnError}}
	server, err := NewServer(&Ports{Retrieval: retrieval}, Options{})
	require.NoError(t, err)
	cs := connect(t, server)

	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "retrieval",
		Arguments: map[string]any{"query": "q", "k": 1},
	})

	require.NoError(t, err)
	assert.True(t, res.IsError)
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	assert.Contains(t, text.Text, "embedding nomic")
}

func TestServer_ReadStatusResource(t *testing.T) {
	status := &mockStatusService{status: &domain.Status{
		EmbeddingProvider: "nomic",
		EmbeddingModel:    "nomic-embed-text-v1.5",
		Dimensions:        768,
		StoreBackend:      "sqlite",
		Chunks:            12,
		EmbeddingOK:       true,
		StoreOK:           true,
	}}
	server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{}, Status: status}, Options{})
	require.NoError(t, err)
	cs := connect(t, server)

	res, err := cs.ReadResource(context.Background(), &mcp.ReadResourceParams{URI: StatusURI})

	require.NoError(t, err)
	require.Len(t, res.Contents, 1)
	assert.Equal(t, "application/json", res.Contents[0].MIMEType)
	assert.Contains(t, res.Contents[0].Text, `"chunks": 12`)
	assert.Contains(t, res.Contents[0].Text, `"store_backend": "sqlite"`)
}

func TestServer_Handler_ServesMCPPath(t *testing.T) {
	server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{}}, Options{})
	require.NoError(t, err)

	ts := httptest.NewServer(server.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/other")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_RunHTTP_StopsOnCancel(t *testing.T) {
	server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{}}, Options{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- server.RunHTTP(ctx, "127.0.0.1:0") }()
	cancel()

	assert.NoError(t, <-errCh)
}

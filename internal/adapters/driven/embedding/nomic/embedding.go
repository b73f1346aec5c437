// Package nomic provides an embedding service adapter for the Nomic Atlas
// hosted embedding API.
package nomic

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/embedding/ratelimit"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default configuration values.
const (
	DefaultBaseURL    = "https://api-atlas.nomic.ai"
	DefaultModel      = "nomic-embed-text-v1.5"
	DefaultTimeout    = 60 * time.Second
	DefaultDimensions = domain.EmbeddingDimensions
	DefaultBatchSize  = 256

	embedPath = "/v1/embedding/text"
)

// Task types select the embedding prefix the model applies.
const (
	TaskSearchQuery    = "search_query"
	TaskSearchDocument = "search_document"
)

// Config holds configuration for the Nomic embedding service.
type Config struct {
	// APIKey is the Nomic API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api-atlas.nomic.ai).
	BaseURL string

	// Model is the embedding model to use (default: nomic-embed-text-v1.5).
	Model string

	// Timeout is the request timeout (default: 60s).
	Timeout time.Duration

	// Dimensions is the requested output dimensionality (default: 768).
	Dimensions int

	// BatchSize is the most texts sent in one request (default: 256).
	BatchSize int

	// RequestsPerSecond throttles requests; zero disables throttling.
	RequestsPerSecond float64

	// HTTPClient is the transport the bearer token is attached to.
	HTTPClient *http.Client
}

// EmbeddingService generates embeddings using the Nomic API.
type EmbeddingService struct {
	client     *http.Client
	limiter    *ratelimit.Limiter
	baseURL    string
	model      string
	dimensions int
	batchSize  int
}

// embedRequest is the Nomic API request format.
type embedRequest struct {
	Model          string   `json:"model"`
	Texts          []string `json:"texts"`
	TaskType       string   `json:"task_type"`
	Dimensionality int      `json:"dimensionality"`
}

// embedResponse is the Nomic API response format.
type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
	Usage      struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

// errorResponse carries the API's error detail.
type errorResponse struct {
	Detail any `json:"detail"`
}

// NewEmbeddingService creates a new Nomic embedding service.
func NewEmbeddingService(cfg Config) (*EmbeddingService, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("nomic: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Dimensions == 0 {
		cfg.Dimensions = DefaultDimensions
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}

	ctx := context.Background()
	if cfg.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, cfg.HTTPClient)
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.APIKey, TokenType: "Bearer"})
	client := oauth2.NewClient(ctx, ts)
	client.Timeout = cfg.Timeout

	return &EmbeddingService{
		client:     client,
		limiter:    ratelimit.New(cfg.RequestsPerSecond, 1),
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
		batchSize:  cfg.BatchSize,
	}, nil
}

// Embed generates a query embedding.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := s.embed(ctx, []string{text}, TaskSearchQuery)
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch generates document embeddings, splitting large inputs into
// provider-sized requests while keeping input order.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	embeddings := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += s.batchSize {
		end := min(start+s.batchSize, len(texts))
		vectors, err := s.embed(ctx, texts[start:end], TaskSearchDocument)
		if err != nil {
			return nil, err
		}
		embeddings = append(embeddings, vectors...)
	}
	return embeddings, nil
}

func (s *EmbeddingService) embed(ctx context.Context, texts []string, task string) ([][]float32, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, s.wrap(0, err)
	}

	body, err := json.Marshal(embedRequest{
		Model:          s.model,
		Texts:          texts,
		TaskType:       task,
		Dimensionality: s.dimensions,
	})
	if err != nil {
		return nil, s.wrap(0, fmt.Errorf("marshal request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+embedPath, bytes.NewReader(body))
	if err != nil {
		return nil, s.wrap(0, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, s.wrap(0, fmt.Errorf("send request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode == http.StatusTooManyRequests {
			s.limiter.Backoff(resp.Header.Get("Retry-After"))
		}
		return nil, s.wrap(resp.StatusCode, errors.New(readDetail(resp.Body)))
	}

	var out embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, s.wrap(0, fmt.Errorf("decode response: %w", err))
	}
	if len(out.Embeddings) != len(texts) {
		return nil, s.wrap(0, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(out.Embeddings)))
	}

	logger.Debug("nomic: embedded %d texts (%s, %d tokens)", len(texts), task, out.Usage.TotalTokens)
	return out.Embeddings, nil
}

func (s *EmbeddingService) wrap(status int, err error) error {
	return &domain.EmbeddingError{
		Provider:   domain.EmbeddingProviderNomic.String(),
		Model:      s.model,
		StatusCode: status,
		Err:        err,
	}
}

func readDetail(r io.Reader) string {
	body, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil || len(body) == 0 {
		return "no response body"
	}
	var e errorResponse
	if json.Unmarshal(body, &e) == nil && e.Detail != nil {
		if s, ok := e.Detail.(string); ok {
			return s
		}
		if b, err := json.Marshal(e.Detail); err == nil {
			return string(b)
		}
	}
	return strings.TrimSpace(string(body))
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping validates the API key by embedding a one-word query.
// Nomic has no free endpoint that checks credentials.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	_, err := s.embed(ctx, []string{"ping"}, TaskSearchQuery)
	return err
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	s.client.CloseIdleConnections()
	return nil
}

package rest

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// RetrieveRequest is the body of POST /api/v1/retrieve.
type RetrieveRequest struct {
	Query string  `json:"query" binding:"required"`
	K     int     `json:"k"`
	Tag   *string `json:"tag"`
}

// RetrieveResponse is the body returned by POST /api/v1/retrieve.
type RetrieveResponse struct {
	Documents []domain.RetrievalResult `json:"documents"`
}

// IngestRequest is the body of POST /api/v1/ingest.
type IngestRequest struct {
	Location     string `json:"location" binding:"required"`
	Tag          string `json:"tag"`
	ChunkSize    int    `json:"chunk_size"`
	ChunkOverlap *int   `json:"chunk_overlap"`
}

// IngestResponse is the body returned by POST /api/v1/ingest.
type IngestResponse struct {
	Chunks int `json:"chunks"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) retrieveHandler(c *gin.Context) {
	var req RetrieveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		abort(c, http.StatusBadRequest, domain.ErrEmptyQuery)
		return
	}

	results, err := s.ports.Retrieval.Retrieve(c.Request.Context(), domain.RetrievalQuery{
		Query: req.Query,
		K:     req.K,
		Tag:   req.Tag,
	})
	if err != nil {
		abort(c, statusFor(err), err)
		return
	}
	if results == nil {
		results = []domain.RetrievalResult{}
	}

	c.JSON(http.StatusOK, RetrieveResponse{Documents: results})
}

func (s *Server) ingestHandler(c *gin.Context) {
	var req IngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}

	ingest := domain.IngestRequest{
		Location:     req.Location,
		Tag:          req.Tag,
		ChunkSize:    req.ChunkSize,
		ChunkOverlap: -1,
	}
	if req.ChunkOverlap != nil {
		ingest.ChunkOverlap = *req.ChunkOverlap
	}

	n, err := s.ports.Ingestion.Ingest(c.Request.Context(), ingest)
	if err != nil {
		abort(c, statusFor(err), err)
		return
	}

	c.JSON(http.StatusOK, IngestResponse{Chunks: n})
}

func (s *Server) healthHandler(c *gin.Context) {
	if s.ports.Status == nil {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
		return
	}

	status, err := s.ports.Status.Status(c.Request.Context())
	if err != nil {
		abort(c, http.StatusServiceUnavailable, err)
		return
	}
	code := http.StatusOK
	if !status.Healthy() {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, status)
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrEmptyQuery),
		errors.Is(err, domain.ErrUnsupportedFormat),
		errors.Is(err, domain.ErrFormat):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrFetch),
		errors.Is(err, domain.ErrEmbedding):
		return http.StatusBadGateway
	case errors.Is(err, domain.ErrStoreUnavailable),
		errors.Is(err, domain.ErrEmbeddingUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func abort(c *gin.Context, code int, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(code, errorResponse{Error: err.Error()})
}

// Package rest exposes retrieval and ingestion over a JSON HTTP API.
package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// ErrMissingRetrievalService is returned when the retrieval service is not provided.
var ErrMissingRetrievalService = errors.New("rest: retrieval service is required")

// DefaultAddr is the default listen address.
const DefaultAddr = ":8080"

// Ports aggregates the driving ports served over HTTP.
type Ports struct {
	Retrieval driving.RetrievalService

	// Ingestion enables POST /api/v1/ingest when set.
	Ingestion driving.IngestionService

	// Status backs GET /healthz when set.
	Status driving.StatusService
}

// Server is the REST API server.
type Server struct {
	ports  Ports
	engine *gin.Engine
}

// NewServer builds the router for the given ports.
func NewServer(ports Ports) (*Server, error) {
	if ports.Retrieval == nil {
		return nil, ErrMissingRetrievalService
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger())

	s := &Server{ports: ports, engine: engine}
	s.registerRoutes()
	return s, nil
}

// registerRoutes registers all the routes for the API.
func (s *Server) registerRoutes() {
	s.engine.GET("/healthz", s.healthHandler)

	v1 := s.engine.Group("/api/v1")
	{
		v1.POST("/retrieve", s.retrieveHandler)
		if s.ports.Ingestion != nil {
			v1.POST("/ingest", s.ingestHandler)
		}
	}
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run listens on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("rest shutdown: %v", err)
		}
	}()

	logger.WithFields(map[string]any{"addr": addr}).Warn("REST API listening")
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("rest: %w", err)
	}
	return nil
}

// requestLogger logs one structured line per request.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		c.Next()

		fields := map[string]any{
			"method":   c.Request.Method,
			"path":     c.FullPath(),
			"status":   c.Writer.Status(),
			"duration": time.Since(started).String(),
		}
		entry := logger.WithFields(fields)
		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			entry.Error("request failed")
		case len(c.Errors) > 0:
			entry.Warn(c.Errors.String())
		default:
			entry.Debug("request")
		}
	}
}

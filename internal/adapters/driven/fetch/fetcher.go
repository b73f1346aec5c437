// Package fetch retrieves raw document bytes from URLs and local paths.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// Ensure Fetcher implements the interface.
var _ driven.SourceFetcher = (*Fetcher)(nil)

// Default configuration values.
const (
	DefaultTimeout  = 60 * time.Second
	DefaultMaxBytes = 256 << 20
)

// Config holds configuration for the fetcher.
type Config struct {
	// Timeout bounds a whole HTTP request, body included (default: 60s).
	Timeout time.Duration

	// MaxBytes caps the document size (default: 256 MiB).
	MaxBytes int64

	// Client replaces the default HTTP client. Timeout is ignored when set.
	Client *http.Client
}

// Fetcher reads http(s) URLs with GET, and file:// URLs or bare paths from
// disk.
type Fetcher struct {
	client   *http.Client
	maxBytes int64
}

// New creates a fetcher.
func New(cfg Config) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = DefaultMaxBytes
	}
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &Fetcher{client: client, maxBytes: cfg.MaxBytes}
}

// Fetch returns the full content at location.
// Every failure is a *domain.FetchError.
func (f *Fetcher) Fetch(ctx context.Context, location string) ([]byte, error) {
	u, err := url.Parse(location)
	if err == nil {
		switch strings.ToLower(u.Scheme) {
		case "http", "https":
			return f.fetchHTTP(ctx, location)
		case "file":
			return f.readFile(location, u.Path)
		}
	}
	return f.readFile(location, location)
}

func (f *Fetcher) fetchHTTP(ctx context.Context, location string) ([]byte, error) {
	logger.Debug("fetch: GET %s", location)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, http.NoBody)
	if err != nil {
		return nil, &domain.FetchError{Location: location, Err: err}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &domain.FetchError{Location: location, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &domain.FetchError{
			Location:   location,
			StatusCode: resp.StatusCode,
			Err:        errors.New(resp.Status),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, &domain.FetchError{Location: location, Err: fmt.Errorf("read body: %w", err)}
	}
	if int64(len(body)) > f.maxBytes {
		return nil, &domain.FetchError{Location: location, Err: fmt.Errorf("document exceeds %d bytes", f.maxBytes)}
	}

	logger.Debug("fetch: %s returned %d bytes", location, len(body))
	return body, nil
}

func (f *Fetcher) readFile(location, path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &domain.FetchError{Location: location, Err: err}
	}
	if info.IsDir() {
		return nil, &domain.FetchError{Location: location, Err: errors.New("is a directory")}
	}
	if info.Size() > f.maxBytes {
		return nil, &domain.FetchError{Location: location, Err: fmt.Errorf("document exceeds %d bytes", f.maxBytes)}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &domain.FetchError{Location: location, Err: err}
	}
	return data, nil
}

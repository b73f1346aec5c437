// Package tidb provides a vector store on TiDB's native VECTOR column type.
//
// The table layout matches the one earlier deployments created, so an
// existing "embedded_documents" table can be searched without migration:
// the chunk text lives in "document" and its metadata in the "meta" JSON
// column.
package tidb

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/storage/vecmath"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// Default configuration values.
const (
	DefaultTable           = "embedded_documents"
	DefaultConnMaxLifetime = 300 * time.Second
	DefaultMaxOpenConns    = 10
	DefaultPort            = "4000"
)

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,63}$`)

// Config holds configuration for the TiDB store.
type Config struct {
	// DSN is a go-sql-driver/mysql data source name (required).
	DSN string

	// Table is the vector table (default: embedded_documents).
	Table string

	// Dimensions is the VECTOR column size (default: 768).
	Dimensions int

	// ConnMaxLifetime recycles pooled connections (default: 300s).
	ConnMaxLifetime time.Duration
}

// Store is a TiDB-backed vector store.
type Store struct {
	db         *sqlx.DB
	table      string
	dimensions int
}

// row is one search hit.
type row struct {
	ID       string         `db:"id"`
	Document sql.NullString `db:"document"`
	Meta     []byte         `db:"meta"`
	Distance float64        `db:"distance"`
}

// NewStore opens a pooled connection, verifies it with a ping and creates
// the table if it does not exist.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("%w: tidb DSN is required", domain.ErrStoreUnavailable)
	}
	if cfg.Table == "" {
		cfg.Table = DefaultTable
	}
	if !identifier.MatchString(cfg.Table) {
		return nil, fmt.Errorf("%w: invalid table name %q", domain.ErrInvalidInput, cfg.Table)
	}
	if cfg.Dimensions <= 0 {
		cfg.Dimensions = domain.EmbeddingDimensions
	}
	if cfg.ConnMaxLifetime <= 0 {
		cfg.ConnMaxLifetime = DefaultConnMaxLifetime
	}

	db, err := sqlx.Open("mysql", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("opening tidb: %w", err)
	}
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetMaxOpenConns(DefaultMaxOpenConns)

	s := &Store{db: db, table: cfg.Table, dimensions: cfg.Dimensions}

	if err := s.Ping(ctx); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, s.createTableSQL()); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating table %s: %w", cfg.Table, err)
	}

	logger.Debug("tidb: using table %s (%d dimensions)", s.table, s.dimensions)
	return s, nil
}

func (s *Store) createTableSQL() string {
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS `%s` ("+
		"id VARCHAR(36) PRIMARY KEY, "+
		"embedding VECTOR(%d) NOT NULL COMMENT 'hnsw(distance=cosine)', "+
		"document TEXT, "+
		"meta JSON, "+
		"create_time DATETIME DEFAULT CURRENT_TIMESTAMP, "+
		"update_time DATETIME DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP)",
		s.table, s.dimensions)
}

// Add inserts all chunks in one transaction.
func (s *Store) Add(ctx context.Context, chunks []domain.EmbeddedChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	if err := vecmath.CheckDimensions(chunks, s.dimensions); err != nil {
		return err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.PreparexContext(ctx,
		fmt.Sprintf("INSERT INTO `%s` (id, embedding, document, meta) VALUES (?, ?, ?, ?)", s.table))
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, c := range chunks {
		meta, err := json.Marshal(c.Metadata)
		if err != nil {
			return fmt.Errorf("encoding metadata: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, uuid.NewString(), VectorLiteral(c.Embedding), c.Text, string(meta)); err != nil {
			return fmt.Errorf("inserting chunk: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing chunks: %w", err)
	}
	return nil
}

// Search orders chunks by VEC_COSINE_DISTANCE and returns the k closest.
func (s *Store) Search(ctx context.Context, vector []float32, k int, filter domain.Filter) ([]domain.ScoredChunk, error) {
	if k <= 0 {
		return []domain.ScoredChunk{}, nil
	}

	query, args := s.searchSQL(vector, k, filter)
	var rows []row
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("searching %s: %w", s.table, err)
	}

	results := make([]domain.ScoredChunk, 0, len(rows))
	for _, r := range rows {
		var meta domain.Metadata
		if len(r.Meta) > 0 {
			if err := json.Unmarshal(r.Meta, &meta); err != nil {
				return nil, fmt.Errorf("decoding metadata of %s: %w", r.ID, err)
			}
		}
		results = append(results, domain.ScoredChunk{
			ID:    r.ID,
			Chunk: domain.Chunk{Text: r.Document.String, Metadata: meta},
			Score: 1 - r.Distance,
		})
	}
	return results, nil
}

func (s *Store) searchSQL(vector []float32, k int, filter domain.Filter) (string, []any) {
	var b strings.Builder
	fmt.Fprintf(&b, "SELECT id, document, meta, VEC_COSINE_DISTANCE(embedding, ?) AS distance FROM `%s`", s.table)
	args := []any{VectorLiteral(vector)}
	where, whereArgs := whereClause(filter)
	b.WriteString(where)
	args = append(args, whereArgs...)
	b.WriteString(" ORDER BY distance LIMIT ?")
	args = append(args, k)
	return b.String(), args
}

// Count returns the number of chunks matching filter.
func (s *Store) Count(ctx context.Context, filter domain.Filter) (int, error) {
	where, args := whereClause(filter)
	var n int
	if err := s.db.GetContext(ctx, &n, fmt.Sprintf("SELECT COUNT(*) FROM `%s`", s.table)+where, args...); err != nil {
		return 0, fmt.Errorf("counting %s: %w", s.table, err)
	}
	return n, nil
}

func whereClause(filter domain.Filter) (string, []any) {
	if !filter.HasTag() {
		return "", nil
	}
	return " WHERE JSON_UNQUOTE(JSON_EXTRACT(meta, '$.tag')) = ?", []any{*filter.Tag}
}

// Ping checks a pooled connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
	return nil
}

// Close closes the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// VectorLiteral renders a vector in TiDB's text form, e.g. "[0.5,1,-2]".
func VectorLiteral(v []float32) string {
	var b strings.Builder
	b.Grow(len(v) * 10)
	b.WriteByte('[')
	for i, f := range v {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(float64(f), 'g', -1, 32))
	}
	b.WriteByte(']')
	return b.String()
}

// DSNFromEnv builds a DSN from TIDB_USER (or TIDB_PREFIX), TIDB_PASSWORD,
// TIDB_HOST, TIDB_PORT and TIDB_DB. TLS is verified unless TIDB_TLS is
// "false". ok is false when TIDB_HOST is unset.
func DSNFromEnv(getenv func(string) string) (dsn string, ok bool) {
	host := getenv("TIDB_HOST")
	if host == "" {
		return "", false
	}
	port := getenv("TIDB_PORT")
	if port == "" {
		port = DefaultPort
	}
	user := getenv("TIDB_USER")
	if user == "" {
		user = getenv("TIDB_PREFIX")
	}

	cfg := mysql.NewConfig()
	cfg.User = user
	cfg.Passwd = getenv("TIDB_PASSWORD")
	cfg.Net = "tcp"
	cfg.Addr = host + ":" + port
	cfg.DBName = getenv("TIDB_DB")
	cfg.ParseTime = true
	if !strings.EqualFold(getenv("TIDB_TLS"), "false") {
		cfg.TLSConfig = "true"
	}
	return cfg.FormatDSN(), true
}

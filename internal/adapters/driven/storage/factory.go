// Package storage selects and constructs the configured vector store.
package storage

import (
	"context"
	"fmt"
	"os"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/storage/milvus"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/storage/tidb"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// New opens the vector store selected by settings.Backend.
// dimensions must match the embedding service the store will be fed from.
func New(ctx context.Context, settings domain.StoreSettings, dimensions int) (driven.VectorStore, error) {
	return newStore(ctx, settings, dimensions, os.Getenv)
}

func newStore(
	ctx context.Context,
	settings domain.StoreSettings,
	dimensions int,
	getenv func(string) string,
) (driven.VectorStore, error) {
	logger.Debug("opening %s vector store (%d dimensions)", settings.Backend, dimensions)

	switch settings.Backend {
	case domain.StoreBackendMemory:
		return memory.NewVectorStore(dimensions), nil

	case domain.StoreBackendSQLite:
		store, err := sqlite.NewStore(settings.Path, dimensions)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
		}
		return store, nil

	case domain.StoreBackendTiDB:
		dsn := settings.DSN
		if dsn == "" {
			dsn, _ = tidb.DSNFromEnv(getenv)
		}
		store, err := tidb.NewStore(ctx, tidb.Config{
			DSN:        dsn,
			Table:      settings.Table,
			Dimensions: dimensions,
		})
		if err != nil {
			return nil, err
		}
		return store, nil

	case domain.StoreBackendMilvus:
		store, err := milvus.Connect(ctx, milvus.Config{
			Address:    settings.Address,
			Collection: settings.Collection,
			Dimensions: dimensions,
		})
		if err != nil {
			return nil, err
		}
		return store, nil

	default:
		return nil, fmt.Errorf("%w: unknown store backend %q (expected sqlite, memory, tidb or milvus)",
			domain.ErrStoreUnavailable, settings.Backend)
	}
}

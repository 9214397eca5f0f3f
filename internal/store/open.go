package store

import (
	"context"

	"github.com/ppiankov/plancours/internal/model"
)

// Open returns the PostgreSQL store when a database URL is configured and the
// JSON file store otherwise
func Open(ctx context.Context, cfg model.StoreConfig) (Store, error) {
	if cfg.DatabaseURL != "" {
		return OpenPostgres(ctx, cfg.DatabaseURL)
	}
	return NewFileStore(cfg.Dir)
}

// OpenBlobs returns the blob store for cfg
func OpenBlobs(cfg model.StoreConfig) (BlobStore, error) {
	return NewDiskBlobStore(cfg.BlobDir)
}

// Package datastore persists the findings collection.
package datastore

import (
	"context"

	"github.com/aleister1102/leakwatch/internal/common"
	"github.com/aleister1102/leakwatch/internal/config"
	"github.com/aleister1102/leakwatch/internal/models"
	"github.com/rs/zerolog"
)

// FindingRepository stores the whole findings collection at once. Callers
// that read, modify and write back must serialize those cycles themselves.
type FindingRepository interface {
	RetrieveFindings(ctx context.Context) ([]models.Finding, error)
	StoreFindings(ctx context.Context, findings []models.Finding) error
	Close() error
}

// NewFindingRepository opens the backend selected by cfg.Backend
func NewFindingRepository(cfg config.StorageConfig, logger zerolog.Logger) (FindingRepository, error) {
	switch cfg.Backend {
	case config.StorageBackendSQLite:
		return NewSQLiteStore(cfg.SQLitePath, logger)
	case config.StorageBackendParquet:
		return NewParquetStore(cfg, logger)
	case config.StorageBackendMemory:
		return NewMemoryStore(), nil
	}
	return nil, common.WrapErrorf(common.ErrUnsupportedBackend, "backend %q", cfg.Backend)
}

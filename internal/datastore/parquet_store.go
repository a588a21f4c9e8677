package datastore

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/aleister1102/leakwatch/internal/common"
	"github.com/aleister1102/leakwatch/internal/config"
	"github.com/aleister1102/leakwatch/internal/models"
	"github.com/parquet-go/parquet-go"
	"github.com/rs/zerolog"
)

const findingsFileName = "findings.parquet"

// ParquetStore keeps the findings snapshot in one Parquet file, replaced
// atomically on every store
type ParquetStore struct {
	filePath string
	codec    string
	logger   zerolog.Logger
}

func NewParquetStore(cfg config.StorageConfig, logger zerolog.Logger) (*ParquetStore, error) {
	if cfg.ParquetBasePath == "" {
		return nil, common.NewValidationError("parquet_base_path", cfg.ParquetBasePath, "ParquetBasePath is not configured")
	}
	if err := os.MkdirAll(cfg.ParquetBasePath, 0755); err != nil {
		return nil, common.WrapError(err, "failed to create Parquet directory: "+cfg.ParquetBasePath)
	}
	return &ParquetStore{
		filePath: filepath.Join(cfg.ParquetBasePath, findingsFileName),
		codec:    cfg.CompressionCodec,
		logger:   logger.With().Str("component", "ParquetStore").Logger(),
	}, nil
}

func (ps *ParquetStore) RetrieveFindings(ctx context.Context) ([]models.Finding, error) {
	file, err := os.Open(ps.filePath)
	if errors.Is(err, os.ErrNotExist) {
		ps.logger.Debug().Str("file_path", ps.filePath).Msg("No findings file yet")
		return []models.Finding{}, nil
	}
	if err != nil {
		return nil, common.WrapError(err, "failed to open findings parquet file: "+ps.filePath)
	}
	defer file.Close()

	reader := parquet.NewGenericReader[FindingRecord](file)
	defer reader.Close()

	findings := make([]models.Finding, 0, reader.NumRows())
	batch := make([]FindingRecord, 100)
	for {
		if err := common.ContextErr(ctx, ps.logger, "load findings"); err != nil {
			return nil, err
		}
		n, err := reader.Read(batch)
		for _, r := range batch[:n] {
			f, ferr := FromRecord(r)
			if ferr != nil {
				return nil, ferr
			}
			findings = append(findings, f)
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, common.WrapError(err, "failed to read findings from parquet file")
		}
	}
	return findings, nil
}

// StoreFindings writes a temp file next to the target and renames it over
func (ps *ParquetStore) StoreFindings(ctx context.Context, findings []models.Finding) error {
	records := make([]FindingRecord, 0, len(findings))
	for _, f := range findings {
		r, err := ToRecord(f)
		if err != nil {
			return err
		}
		records = append(records, r)
	}
	if err := common.ContextErr(ctx, ps.logger, "before parquet write"); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(ps.filePath), ".findings-*.parquet")
	if err != nil {
		return common.WrapError(err, "failed to create temp parquet file")
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = os.Remove(tmpPath)
	}()

	writer := parquet.NewGenericWriter[FindingRecord](tmp, ps.compressionOption())
	if _, err := writer.Write(records); err != nil {
		_ = writer.Close()
		_ = tmp.Close()
		return common.WrapError(err, "failed to write findings to parquet file")
	}
	if err := writer.Close(); err != nil {
		_ = tmp.Close()
		return common.WrapError(err, "failed to flush parquet writer")
	}
	if err := tmp.Close(); err != nil {
		return common.WrapError(err, "failed to close temp parquet file")
	}

	if err := os.Rename(tmpPath, ps.filePath); err != nil {
		return common.WrapError(err, "failed to replace findings parquet file")
	}
	ps.logger.Debug().Str("file_path", ps.filePath).Int("records_written", len(records)).Msg("Stored findings")
	return nil
}

func (ps *ParquetStore) Close() error { return nil }

func (ps *ParquetStore) compressionOption() parquet.WriterOption {
	switch ps.codec {
	case "gzip":
		return parquet.Compression(&parquet.Gzip)
	case "snappy":
		return parquet.Compression(&parquet.Snappy)
	case "none":
		return parquet.Compression(&parquet.Uncompressed)
	default:
		return parquet.Compression(&parquet.Zstd)
	}
}

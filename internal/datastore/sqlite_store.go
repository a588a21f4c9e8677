package datastore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aleister1102/leakwatch/internal/common"
	"github.com/aleister1102/leakwatch/internal/models"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

const findingsSchema = `
CREATE TABLE IF NOT EXISTS findings (
	position          INTEGER NOT NULL,
	fingerprint       TEXT PRIMARY KEY,
	secret_type       TEXT NOT NULL,
	validity          TEXT NOT NULL,
	error             TEXT NOT NULL DEFAULT '',
	metadata_json     TEXT NOT NULL DEFAULT '',
	secret_value_json TEXT NOT NULL,
	occurrences_json  TEXT NOT NULL,
	discovered_at     INTEGER NOT NULL,
	validated_at      INTEGER NOT NULL,
	num_occurrences   INTEGER NOT NULL
);
`

// SQLiteStore keeps findings in a single SQLite table
type SQLiteStore struct {
	db     *sql.DB
	path   string
	logger zerolog.Logger
}

// NewSQLiteStore opens (creating if needed) the database at path
func NewSQLiteStore(path string, logger zerolog.Logger) (*SQLiteStore, error) {
	logger = logger.With().Str("component", "SQLiteStore").Logger()
	if path == "" {
		return nil, common.NewValidationError("sqlite_path", path, "sqlite path is not configured")
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("sql.Open failed for %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{db: db, path: path, logger: logger}
	if _, err := db.Exec(findingsSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	logger.Debug().Str("path", path).Msg("Findings database ready")
	return store, nil
}

func (s *SQLiteStore) RetrieveFindings(ctx context.Context) ([]models.Finding, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT fingerprint, secret_type, validity, error, metadata_json,
		secret_value_json, occurrences_json, discovered_at, validated_at, num_occurrences
		FROM findings ORDER BY position`)
	if err != nil {
		return nil, common.WrapError(err, "failed to query findings")
	}
	defer rows.Close()

	findings := make([]models.Finding, 0)
	for rows.Next() {
		var r FindingRecord
		if err := rows.Scan(&r.Fingerprint, &r.SecretType, &r.Validity, &r.Error, &r.MetadataJSON,
			&r.SecretValueJSON, &r.OccurrencesJSON, &r.DiscoveredAt, &r.ValidatedAt, &r.NumOccurrences); err != nil {
			return nil, common.WrapError(err, "failed to scan finding row")
		}
		f, err := FromRecord(r)
		if err != nil {
			return nil, err
		}
		findings = append(findings, f)
	}
	if err := rows.Err(); err != nil {
		return nil, common.WrapError(err, "failed to iterate findings")
	}
	return findings, nil
}

// StoreFindings replaces the table content in one transaction
func (s *SQLiteStore) StoreFindings(ctx context.Context, findings []models.Finding) error {
	records := make([]FindingRecord, 0, len(findings))
	for _, f := range findings {
		r, err := ToRecord(f)
		if err != nil {
			return err
		}
		records = append(records, r)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return common.WrapError(err, "failed to begin transaction")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM findings`); err != nil {
		return common.WrapError(err, "failed to clear findings")
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO findings (position, fingerprint, secret_type, validity, error,
		metadata_json, secret_value_json, occurrences_json, discovered_at, validated_at, num_occurrences)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return common.WrapError(err, "failed to prepare insert")
	}
	defer stmt.Close()

	for i, r := range records {
		if _, err := stmt.ExecContext(ctx, i, r.Fingerprint, r.SecretType, r.Validity, r.Error, r.MetadataJSON,
			r.SecretValueJSON, r.OccurrencesJSON, r.DiscoveredAt, r.ValidatedAt, r.NumOccurrences); err != nil {
			return common.WrapErrorf(err, "failed to insert finding %s", r.Fingerprint)
		}
	}

	if err := tx.Commit(); err != nil {
		return common.WrapError(err, "failed to commit findings")
	}
	s.logger.Debug().Int("count", len(records)).Msg("Stored findings")
	return nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

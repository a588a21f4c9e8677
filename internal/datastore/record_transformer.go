package datastore

import (
	"encoding/json"
	"time"

	"github.com/aleister1102/leakwatch/internal/common"
	"github.com/aleister1102/leakwatch/internal/models"
)

// FindingRecord is the flat row form of a Finding shared by the SQLite and
// Parquet backends. Nested values are JSON strings, times are Unix millis.
type FindingRecord struct {
	Fingerprint     string `parquet:"fingerprint"`
	SecretType      string `parquet:"secret_type"`
	Validity        string `parquet:"validity"`
	Error           string `parquet:"error"`
	MetadataJSON    string `parquet:"metadata_json"`
	SecretValueJSON string `parquet:"secret_value_json"`
	OccurrencesJSON string `parquet:"occurrences_json"`
	DiscoveredAt    int64  `parquet:"discovered_at"`
	ValidatedAt     int64  `parquet:"validated_at"`
	NumOccurrences  int32  `parquet:"num_occurrences"`
}

// ToRecord flattens a finding
func ToRecord(f models.Finding) (FindingRecord, error) {
	metadata, err := marshalOptional(f.Metadata, len(f.Metadata) == 0)
	if err != nil {
		return FindingRecord{}, common.WrapErrorf(err, "failed to marshal metadata of %s", f.Fingerprint)
	}
	secretValue, err := json.Marshal(f.SecretValue)
	if err != nil {
		return FindingRecord{}, common.WrapErrorf(err, "failed to marshal secret value of %s", f.Fingerprint)
	}
	occurrences, err := json.Marshal(f.Occurrences)
	if err != nil {
		return FindingRecord{}, common.WrapErrorf(err, "failed to marshal occurrences of %s", f.Fingerprint)
	}

	return FindingRecord{
		Fingerprint:     f.Fingerprint,
		SecretType:      f.SecretType,
		Validity:        f.Validity.String(),
		Error:           f.Error,
		MetadataJSON:    metadata,
		SecretValueJSON: string(secretValue),
		OccurrencesJSON: string(occurrences),
		DiscoveredAt:    toMillis(f.DiscoveredAt),
		ValidatedAt:     toMillis(f.ValidatedAt),
		NumOccurrences:  int32(f.NumOccurrences),
	}, nil
}

// FromRecord rebuilds a finding from its row form
func FromRecord(r FindingRecord) (models.Finding, error) {
	validity, err := models.ParseValidity(r.Validity)
	if err != nil {
		return models.Finding{}, common.WrapErrorf(err, "finding %s", r.Fingerprint)
	}

	f := models.Finding{
		Fingerprint:    r.Fingerprint,
		SecretType:     r.SecretType,
		Validity:       validity,
		Error:          r.Error,
		DiscoveredAt:   fromMillis(r.DiscoveredAt),
		ValidatedAt:    fromMillis(r.ValidatedAt),
		NumOccurrences: int(r.NumOccurrences),
	}
	if r.MetadataJSON != "" {
		if err := json.Unmarshal([]byte(r.MetadataJSON), &f.Metadata); err != nil {
			return models.Finding{}, common.WrapErrorf(err, "failed to unmarshal metadata of %s", r.Fingerprint)
		}
	}
	if r.SecretValueJSON != "" {
		if err := json.Unmarshal([]byte(r.SecretValueJSON), &f.SecretValue); err != nil {
			return models.Finding{}, common.WrapErrorf(err, "failed to unmarshal secret value of %s", r.Fingerprint)
		}
	}
	if r.OccurrencesJSON != "" {
		if err := json.Unmarshal([]byte(r.OccurrencesJSON), &f.Occurrences); err != nil {
			return models.Finding{}, common.WrapErrorf(err, "failed to unmarshal occurrences of %s", r.Fingerprint)
		}
	}
	return f, nil
}

func marshalOptional(v any, empty bool) (string, error) {
	if empty {
		return "", nil
	}
	data, err := json.Marshal(v)
	return string(data), err
}

func toMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

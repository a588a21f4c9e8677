// Package lifecycle merges detections into the persisted findings
// collection and applies validity transitions.
package lifecycle

import (
	"context"
	"sync"
	"time"

	"github.com/aleister1102/leakwatch/internal/common"
	"github.com/aleister1102/leakwatch/internal/datastore"
	"github.com/aleister1102/leakwatch/internal/models"
	"github.com/aleister1102/leakwatch/internal/validators"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Manager owns every read-modify-write cycle over the repository. All
// mutations run under one mutex, so concurrent families never overwrite
// each other's updates.
type Manager struct {
	mu            sync.Mutex
	repo          datastore.FindingRepository
	now           func() time.Time
	newID         func() string
	recordRepeats bool
	logger        zerolog.Logger
}

// Option customizes a Manager
type Option func(*Manager)

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// WithIDGenerator replaces the uuid based occurrence ID generator
func WithIDGenerator(newID func() string) Option {
	return func(m *Manager) {
		m.newID = newID
	}
}

// WithRepeatOccurrences makes AddOccurrence record sightings at new locations
func WithRepeatOccurrences(enabled bool) Option {
	return func(m *Manager) {
		m.recordRepeats = enabled
	}
}

// NewManager creates a manager over repo
func NewManager(repo datastore.FindingRepository, logger zerolog.Logger, opts ...Option) *Manager {
	m := &Manager{
		repo:   repo,
		now:    time.Now,
		newID:  uuid.NewString,
		logger: logger.With().Str("component", "LifecycleManager").Logger(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// RecordOutcome describes what Record did with an occurrence
type RecordOutcome struct {
	Finding models.Finding
	// Created is true when the fingerprint was not stored before
	Created bool
	// Appended is true when the occurrence was added to the finding
	Appended bool
}

// RecordsRepeats reports whether AddOccurrence stores repeat sightings
func (m *Manager) RecordsRepeats() bool {
	return m.recordRepeats
}

// Findings returns the stored collection
func (m *Manager) Findings(ctx context.Context) ([]models.Finding, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.repo.RetrieveFindings(ctx)
}

// Lookup returns the finding stored under fingerprint
func (m *Manager) Lookup(ctx context.Context, fingerprint string) (models.Finding, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	findings, err := m.repo.RetrieveFindings(ctx)
	if err != nil {
		return models.Finding{}, false, common.WrapError(err, "failed to retrieve findings")
	}
	if i := indexOf(findings, fingerprint); i >= 0 {
		return findings[i], true, nil
	}
	return models.Finding{}, false, nil
}

// Record stores a validated occurrence. Only a valid result creates a new
// finding; when the fingerprint already exists (another scan recorded it
// meanwhile) the occurrence is merged and the result applied to it.
func (m *Manager) Record(ctx context.Context, occ models.Occurrence, result validators.Result) (RecordOutcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	findings, err := m.repo.RetrieveFindings(ctx)
	if err != nil {
		return RecordOutcome{}, common.WrapError(err, "failed to retrieve findings")
	}

	i := indexOf(findings, occ.Fingerprint)
	if i < 0 {
		if !result.IsValid() {
			m.logger.Debug().
				Str("fingerprint", occ.Fingerprint).
				Str("validity", result.Validity.String()).
				Msg("Not recording unconfirmed secret")
			return RecordOutcome{}, nil
		}
		f := m.newFinding(occ, result)
		findings = append(findings, f)
		if err := m.repo.StoreFindings(ctx, findings); err != nil {
			return RecordOutcome{}, common.WrapError(err, "failed to store findings")
		}
		m.logger.Info().
			Str("secret_type", f.SecretType).
			Str("fingerprint", f.Fingerprint).
			Str("file", occ.FilePath).
			Msg("New finding recorded")
		return RecordOutcome{Finding: f.Clone(), Created: true, Appended: true}, nil
	}

	f := &findings[i]
	appended := m.appendOccurrence(f, occ, result.Validity)
	m.apply(f, result)
	if err := m.repo.StoreFindings(ctx, findings); err != nil {
		return RecordOutcome{}, common.WrapError(err, "failed to store findings")
	}
	return RecordOutcome{Finding: f.Clone(), Appended: appended}, nil
}

// AddOccurrence attaches a sighting of an already stored secret without
// validating it. Nothing is written unless repeat occurrences are enabled and
// the (url, file) location is new.
func (m *Manager) AddOccurrence(ctx context.Context, occ models.Occurrence) (bool, error) {
	if !m.recordRepeats {
		return false, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	findings, err := m.repo.RetrieveFindings(ctx)
	if err != nil {
		return false, common.WrapError(err, "failed to retrieve findings")
	}
	i := indexOf(findings, occ.Fingerprint)
	if i < 0 {
		return false, nil
	}

	f := &findings[i]
	if !m.appendOccurrence(f, occ, f.Validity) {
		return false, nil
	}
	if err := m.repo.StoreFindings(ctx, findings); err != nil {
		return false, common.WrapError(err, "failed to store findings")
	}
	m.logger.Debug().Str("fingerprint", occ.Fingerprint).Str("file", occ.FilePath).Msg("Repeat occurrence recorded")
	return true, nil
}

// ApplyResult runs the validity state machine for the stored finding
func (m *Manager) ApplyResult(ctx context.Context, fingerprint string, result validators.Result) (models.Finding, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	findings, err := m.repo.RetrieveFindings(ctx)
	if err != nil {
		return models.Finding{}, common.WrapError(err, "failed to retrieve findings")
	}
	i := indexOf(findings, fingerprint)
	if i < 0 {
		return models.Finding{}, common.WrapErrorf(common.ErrNotFound, "finding %s", fingerprint)
	}

	f := &findings[i]
	m.apply(f, result)
	if err := m.repo.StoreFindings(ctx, findings); err != nil {
		return models.Finding{}, common.WrapError(err, "failed to store findings")
	}
	return f.Clone(), nil
}

func (m *Manager) newFinding(occ models.Occurrence, result validators.Result) models.Finding {
	stamp := m.stamp(time.Time{})
	occ.ID = m.newID()
	occ.Validity = result.Validity
	occ.DiscoveredAt = stamp

	f := models.Finding{
		Fingerprint:    occ.Fingerprint,
		SecretType:     occ.SecretType,
		SecretValue:    map[string]models.TaggedPayload{occ.ID: occ.SecretValue},
		Validity:       result.Validity,
		Error:          result.Error,
		Metadata:       copyMetadata(result.Metadata),
		DiscoveredAt:   stamp,
		ValidatedAt:    stamp,
		NumOccurrences: 1,
		Occurrences:    []models.Occurrence{occ},
	}
	return f
}

// appendOccurrence adds occ unless the finding already holds one at the same
// location. The first-seen occurrence always stays in place.
func (m *Manager) appendOccurrence(f *models.Finding, occ models.Occurrence, validity models.Validity) bool {
	if f.HasLocation(occ) {
		return false
	}
	occ.ID = m.newID()
	occ.Validity = validity
	occ.DiscoveredAt = m.stamp(time.Time{})

	if f.SecretValue == nil {
		f.SecretValue = make(map[string]models.TaggedPayload)
	}
	f.SecretValue[occ.ID] = occ.SecretValue
	f.Occurrences = append(f.Occurrences, occ)
	f.NumOccurrences = len(f.Occurrences)
	return true
}

// apply moves the finding to the validity reported by result
func (m *Manager) apply(f *models.Finding, result validators.Result) {
	previous := f.Validity
	f.ValidatedAt = m.stamp(f.ValidatedAt)

	switch result.Validity {
	case models.ValidityValid:
		f.Validity = models.ValidityValid
		f.Error = ""
		if len(result.Metadata) > 0 {
			f.Metadata = copyMetadata(result.Metadata)
		}
		if previous == models.ValidityInvalid {
			m.logger.Info().Str("fingerprint", f.Fingerprint).Str("secret_type", f.SecretType).Msg("Finding reactivated")
		}
	case models.ValidityInvalid:
		f.Validity = models.ValidityInvalid
		f.Error = result.Error
	default:
		f.Validity = models.ValidityFailedToCheck
		f.Error = result.Error
	}

	if previous != f.Validity {
		m.logger.Debug().
			Str("fingerprint", f.Fingerprint).
			Str("from", previous.String()).
			Str("to", f.Validity.String()).
			Msg("Validity changed")
	}
}

// stamp returns the current time at millisecond precision, moved 1ms past
// prev when the clock has not advanced beyond it
func (m *Manager) stamp(prev time.Time) time.Time {
	t := m.now().UTC().Truncate(time.Millisecond)
	if !prev.IsZero() && !t.After(prev) {
		t = prev.Add(time.Millisecond)
	}
	return t
}

func indexOf(findings []models.Finding, fingerprint string) int {
	for i := range findings {
		if findings[i].Fingerprint == fingerprint {
			return i
		}
	}
	return -1
}

func copyMetadata(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	dst := make(map[string]string, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

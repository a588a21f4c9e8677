package lifecycle

import (
	"context"
	"errors"
	"time"

	"github.com/aleister1102/leakwatch/internal/common"
	"github.com/aleister1102/leakwatch/internal/models"
	"github.com/aleister1102/leakwatch/internal/validators"
)

// ValidatorSource resolves the validator of a family
type ValidatorSource interface {
	Get(family string) (validators.Validator, bool)
}

// RevalidateSummary counts the outcomes of a sweep
type RevalidateSummary struct {
	Checked       int
	Valid         int
	Invalid       int
	FailedToCheck int
	Reactivated   int
	Skipped       int
	Duration      time.Duration
}

// Revalidate re-checks every stored finding with its family validator and
// the first stored payload. Validators run outside the store lock; each
// result is applied in its own read-modify-write cycle.
func (m *Manager) Revalidate(ctx context.Context, source ValidatorSource) (RevalidateSummary, error) {
	start := m.now()
	var summary RevalidateSummary

	snapshot, err := m.Findings(ctx)
	if err != nil {
		return summary, common.WrapError(err, "failed to retrieve findings")
	}
	m.logger.Info().Int("count", len(snapshot)).Msg("Starting revalidation sweep")

	for _, f := range snapshot {
		if ctx.Err() != nil {
			return summary, ctx.Err()
		}

		v, ok := source.Get(f.SecretType)
		payload := f.Payload()
		if !ok || payload == nil {
			m.logger.Warn().Str("fingerprint", f.Fingerprint).Str("secret_type", f.SecretType).Msg("No validator or payload, skipping")
			summary.Skipped++
			continue
		}

		result := v.Validate(ctx, payload)
		updated, err := m.ApplyResult(ctx, f.Fingerprint, result)
		if errors.Is(err, common.ErrNotFound) {
			summary.Skipped++
			continue
		}
		if err != nil {
			return summary, err
		}

		summary.Checked++
		switch updated.Validity {
		case models.ValidityValid:
			summary.Valid++
			if f.Validity == models.ValidityInvalid {
				summary.Reactivated++
			}
		case models.ValidityInvalid:
			summary.Invalid++
		default:
			summary.FailedToCheck++
		}
	}

	summary.Duration = m.now().Sub(start)
	m.logger.Info().
		Int("checked", summary.Checked).
		Int("valid", summary.Valid).
		Int("invalid", summary.Invalid).
		Int("failed_to_check", summary.FailedToCheck).
		Int("reactivated", summary.Reactivated).
		Int("skipped", summary.Skipped).
		Dur("duration", summary.Duration).
		Msg("Revalidation sweep complete")
	return summary, nil
}

package detector

import (
	"context"

	"github.com/aleister1102/leakwatch/internal/falsepositive"
	"github.com/aleister1102/leakwatch/internal/fingerprint"
	"github.com/aleister1102/leakwatch/internal/lifecycle"
	"github.com/aleister1102/leakwatch/internal/models"
	"github.com/aleister1102/leakwatch/internal/patterns"
	"github.com/aleister1102/leakwatch/internal/validators"
	"github.com/rs/zerolog"
)

// Content is one delivered file to scan
type Content struct {
	// PageURL is the page the file was delivered to
	PageURL string
	// DeliveryURL is where the file itself came from
	DeliveryURL string
	Body        string
}

// Attributor maps a payload found in delivered content to its source
type Attributor interface {
	Resolve(ctx context.Context, content, deliveryURL string, payload models.Payload) models.SourceContent
}

// FindingRecorder is the lifecycle side of the pipeline
type FindingRecorder interface {
	Lookup(ctx context.Context, fingerprint string) (models.Finding, bool, error)
	Record(ctx context.Context, occ models.Occurrence, result validators.Result) (lifecycle.RecordOutcome, error)
	AddOccurrence(ctx context.Context, occ models.Occurrence) (bool, error)
	RecordsRepeats() bool
}

// FamilyReport summarizes one family's pass over one content
type FamilyReport struct {
	Family     string
	Candidates int
	Filtered   int
	Duplicates int
	Validated  int
	Rejected   int
	Created    []models.Finding
	Errors     []error
}

// Pipeline runs extract, filter, dedup, validate, attribute and record for
// a single family. Candidates are handled one at a time, so a later
// candidate's dedup check sees every earlier one already recorded.
type Pipeline struct {
	family   Family
	filter   *falsepositive.Filter
	resolver Attributor
	recorder FindingRecorder
	maxPairs int
	logger   zerolog.Logger
}

// NewPipeline creates the pipeline of family
func NewPipeline(family Family, filter *falsepositive.Filter, resolver Attributor, recorder FindingRecorder, maxPairs int, logger zerolog.Logger) *Pipeline {
	return &Pipeline{
		family:   family,
		filter:   filter,
		resolver: resolver,
		recorder: recorder,
		maxPairs: maxPairs,
		logger:   logger.With().Str("component", "Pipeline").Str("family", family.Name).Logger(),
	}
}

// Run scans content. Per-candidate problems are collected in the report
// and never stop the pass.
func (p *Pipeline) Run(ctx context.Context, content Content) FamilyReport {
	report := FamilyReport{Family: p.family.Name}

	screened := make(map[string][]patterns.Candidate)
	for field, candidates := range patterns.ExtractAll(content.Body, p.family.Patterns) {
		report.Candidates += len(candidates)
		for _, c := range candidates {
			if reason, rejected := p.screen(c); rejected {
				report.Filtered++
				p.logger.Debug().Str("candidate", models.Redact(c.Value)).Str("reason", reason).Msg("Candidate filtered")
				continue
			}
			screened[field] = append(screened[field], c)
		}
	}
	if len(screened) == 0 {
		return report
	}

	seen := make(map[string]struct{})
	for _, payload := range p.family.Build(screened, p.maxPairs) {
		if ctx.Err() != nil {
			report.Errors = append(report.Errors, ctx.Err())
			return report
		}

		fp, err := fingerprint.Compute(payload, p.family.Algorithm)
		if err != nil {
			report.Errors = append(report.Errors, err)
			continue
		}
		if _, dup := seen[fp]; dup {
			continue
		}
		seen[fp] = struct{}{}

		if err := p.process(ctx, content, payload, fp, &report); err != nil {
			p.logger.Error().Err(err).Str("fingerprint", fp).Msg("Failed to process candidate")
			report.Errors = append(report.Errors, err)
		}
	}
	return report
}

func (p *Pipeline) process(ctx context.Context, content Content, payload models.Payload, fp string, report *FamilyReport) error {
	_, exists, err := p.recorder.Lookup(ctx, fp)
	if err != nil {
		return err
	}
	if exists {
		report.Duplicates++
		if p.recorder.RecordsRepeats() {
			_, err := p.recorder.AddOccurrence(ctx, p.occurrence(ctx, content, payload, fp))
			return err
		}
		return nil
	}

	result := p.family.Validator.Validate(ctx, payload)
	report.Validated++
	p.logger.Debug().
		Str("secret", models.RedactPayload(payload)).
		Str("validity", result.Validity.String()).
		Str("error", result.Error).
		Msg("Candidate validated")
	if !result.IsValid() {
		report.Rejected++
		return nil
	}

	outcome, err := p.recorder.Record(ctx, p.occurrence(ctx, content, payload, fp), result)
	if err != nil {
		return err
	}
	if outcome.Created {
		report.Created = append(report.Created, outcome.Finding)
	}
	return nil
}

func (p *Pipeline) occurrence(ctx context.Context, content Content, payload models.Payload, fp string) models.Occurrence {
	return models.Occurrence{
		SecretType:    p.family.Name,
		Fingerprint:   fp,
		SecretValue:   models.Tag(payload),
		FilePath:      content.DeliveryURL,
		URL:           content.PageURL,
		SourceContent: p.resolver.Resolve(ctx, content.Body, content.DeliveryURL, payload),
	}
}

// screen applies the entropy threshold first, then the term and shape checks
func (p *Pipeline) screen(c patterns.Candidate) (string, bool) {
	threshold := 0.0
	for _, pat := range p.family.Patterns {
		if pat.Field == c.Field {
			threshold = pat.EntropyThreshold
			break
		}
	}
	if falsepositive.BelowEntropy(c.Value, threshold) {
		return "below entropy threshold", true
	}
	if p.family.SkipTermFilter {
		return "", false
	}
	if isFP, reason := p.filter.IsKnownFalsePositive(c.Value); isFP {
		return reason, true
	}
	return "", false
}

package detector

import (
	"context"
	"fmt"
	"time"

	"github.com/aleister1102/leakwatch/internal/common"
	"github.com/aleister1102/leakwatch/internal/config"
	"github.com/aleister1102/leakwatch/internal/falsepositive"
	"github.com/aleister1102/leakwatch/internal/models"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Notifier receives findings created during a scan
type Notifier interface {
	NotifyNewFindings(ctx context.Context, findings []models.Finding) error
}

// ScanReport is the outcome of scanning one content with every family
type ScanReport struct {
	DeliveryURL string
	Families    []FamilyReport
	Created     []models.Finding
	Duration    time.Duration
}

// Engine fans one content out to every family pipeline
type Engine struct {
	pipelines      []*Pipeline
	notifier       Notifier
	maxContentSize int64
	logger         zerolog.Logger
}

// EngineOption customizes an Engine
type EngineOption func(*Engine)

// WithNotifier reports created findings to n after each scan
func WithNotifier(n Notifier) EngineOption {
	return func(e *Engine) {
		e.notifier = n
	}
}

// NewEngine creates an engine running families with the scanner settings
func NewEngine(families []Family, cfg config.ScannerConfig, resolver Attributor, recorder FindingRecorder, logger zerolog.Logger, opts ...EngineOption) *Engine {
	logger = logger.With().Str("component", "DetectionEngine").Logger()
	filter := falsepositive.New(cfg.FalsePositiveTerms...)

	e := &Engine{
		maxContentSize: int64(cfg.MaxContentSizeMB) * 1024 * 1024,
		logger:         logger,
	}
	for _, f := range families {
		e.pipelines = append(e.pipelines, NewPipeline(f, filter, resolver, recorder, cfg.MaxPairCandidates, logger))
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Scan scans a single content
func (e *Engine) Scan(ctx context.Context, content Content) (ScanReport, error) {
	reports, err := e.ScanAll(ctx, []Content{content})
	if len(reports) == 0 {
		return ScanReport{DeliveryURL: content.DeliveryURL}, err
	}
	return reports[0], err
}

// ScanAll scans contents in order and notifies once about every finding
// created along the way. Content over the size limit is skipped.
func (e *Engine) ScanAll(ctx context.Context, contents []Content) ([]ScanReport, error) {
	var reports []ScanReport
	var created []models.Finding
	var errs common.ErrorCollector

	for _, content := range contents {
		if ctx.Err() != nil {
			errs.Add(ctx.Err())
			break
		}
		if e.maxContentSize > 0 && int64(len(content.Body)) > e.maxContentSize {
			e.logger.Warn().Str("url", content.DeliveryURL).Int("size", len(content.Body)).Msg("Content exceeds size limit, skipping")
			errs.AddWithContext(common.ErrContentTooLarge, content.DeliveryURL)
			continue
		}
		report := e.scan(ctx, content)
		created = append(created, report.Created...)
		reports = append(reports, report)
	}

	if e.notifier != nil && len(created) > 0 {
		if err := e.notifier.NotifyNewFindings(ctx, created); err != nil {
			e.logger.Error().Err(err).Int("count", len(created)).Msg("Failed to send finding notification")
		}
	}
	return reports, errs.Error()
}

func (e *Engine) scan(ctx context.Context, content Content) ScanReport {
	start := time.Now()
	reports := make([]FamilyReport, len(e.pipelines))

	var g errgroup.Group
	for i, p := range e.pipelines {
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					reports[i] = FamilyReport{Family: p.family.Name, Errors: []error{fmt.Errorf("pipeline panic: %v", r)}}
					e.logger.Error().Str("family", p.family.Name).Interface("panic", r).Msg("Family pipeline panicked")
				}
			}()
			reports[i] = p.Run(ctx, content)
			return nil
		})
	}
	_ = g.Wait()

	report := ScanReport{DeliveryURL: content.DeliveryURL, Families: reports}
	candidates := 0
	for _, r := range reports {
		candidates += r.Candidates
		report.Created = append(report.Created, r.Created...)
	}
	report.Duration = time.Since(start)

	e.logger.Info().
		Str("url", content.DeliveryURL).
		Int("families", len(reports)).
		Int("candidates", candidates).
		Int("new_findings", len(report.Created)).
		Dur("duration", report.Duration).
		Msg("Content scanned")
	return report
}

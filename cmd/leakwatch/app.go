package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/aleister1102/leakwatch/internal/common"
	"github.com/aleister1102/leakwatch/internal/config"
	"github.com/aleister1102/leakwatch/internal/datastore"
	"github.com/aleister1102/leakwatch/internal/detector"
	"github.com/aleister1102/leakwatch/internal/fetcher"
	"github.com/aleister1102/leakwatch/internal/httpclient"
	"github.com/aleister1102/leakwatch/internal/lifecycle"
	"github.com/aleister1102/leakwatch/internal/notifier"
	"github.com/aleister1102/leakwatch/internal/patterns"
	"github.com/aleister1102/leakwatch/internal/sourcemap"
	"github.com/aleister1102/leakwatch/internal/urlhandler"
	"github.com/aleister1102/leakwatch/internal/validators"

	"github.com/rs/zerolog"
)

// application holds the wired components shared by every mode
type application struct {
	cfg        *config.GlobalConfig
	repo       datastore.FindingRepository
	manager    *lifecycle.Manager
	registry   *validators.Registry
	engine     *detector.Engine
	fetcher    *fetcher.Fetcher
	fileReader *common.FileReader
	logger     zerolog.Logger
}

// scanSummary totals one scan run across every target
type scanSummary struct {
	Targets  int
	Contents int
	Created  int
	Failed   int
	Duration time.Duration
}

func newApplication(cfg *config.GlobalConfig, logger zerolog.Logger) (*application, error) {
	clientCfg := httpclient.FromConfig(cfg.HTTPClientConfig)

	// Validator calls map every transport failure to failed_to_check, so
	// only content fetches are retried.
	validatorClient, err := httpclient.NewHTTPClient(clientCfg, logger)
	if err != nil {
		return nil, common.WrapError(err, "failed to create validator HTTP client")
	}
	fetchClient, err := httpclient.NewHTTPClientBuilder(logger).
		WithConfig(clientCfg).
		WithRetry(httpclient.RetryFromConfig(cfg.HTTPClientConfig.Retry)).
		Build()
	if err != nil {
		return nil, common.WrapError(err, "failed to create fetch HTTP client")
	}

	catalog, err := patterns.LoadCatalog()
	if err != nil {
		return nil, common.WrapError(err, "failed to load pattern catalog")
	}

	registry := validators.NewRegistry(validators.Deps{
		Client: validatorClient,
		Config: cfg.ValidatorConfig,
		Logger: logger,
	})
	families, err := detector.BuildFamilies(catalog, registry, cfg.ScannerConfig.EnabledFamilies)
	if err != nil {
		return nil, err
	}

	discord, err := notifier.NewDiscordNotifier(cfg.NotificationConfig, validatorClient, logger)
	if err != nil {
		return nil, common.WrapError(err, "failed to create discord notifier")
	}

	repo, err := datastore.NewFindingRepository(cfg.StorageConfig, logger)
	if err != nil {
		return nil, common.WrapError(err, "failed to open finding store")
	}

	manager := lifecycle.NewManager(repo, logger,
		lifecycle.WithRepeatOccurrences(cfg.ScannerConfig.RecordRepeatOccurrences))
	resolver := sourcemap.NewResolver(cfg.SourceMapConfig, fetchClient, logger)

	return &application{
		cfg:        cfg,
		repo:       repo,
		manager:    manager,
		registry:   registry,
		engine:     detector.NewEngine(families, cfg.ScannerConfig, resolver, manager, logger, detector.WithNotifier(discord)),
		fetcher:    fetcher.NewFetcher(fetchClient, cfg.FetcherConfig, logger),
		fileReader: common.NewFileReader(int64(cfg.ScannerConfig.MaxContentSizeMB)*1024*1024, logger),
		logger:     logger.With().Str("component", "App").Logger(),
	}, nil
}

func (a *application) Close() error {
	return a.repo.Close()
}

// collectTargets returns the URLs to fetch, -url first and then the -input list
func collectTargets(flags AppFlags, logger zerolog.Logger) ([]string, error) {
	var targets []string
	if flags.TargetURL != "" {
		normalized, err := urlhandler.NormalizeURL(flags.TargetURL)
		if err != nil {
			return nil, common.NewValidationError("url", flags.TargetURL, err.Error())
		}
		targets = append(targets, normalized)
	}
	if flags.TargetsFile != "" {
		fromFile, err := urlhandler.ReadURLsFromFile(flags.TargetsFile, logger)
		if err != nil {
			return nil, err
		}
		for _, t := range fromFile {
			if len(targets) > 0 && targets[0] == t {
				continue
			}
			targets = append(targets, t)
		}
	}
	return targets, nil
}

// runScan fetches every target and scans what it delivers. A failing target
// is logged and counted; the run goes on with the rest.
func (a *application) runScan(ctx context.Context, flags AppFlags) (scanSummary, error) {
	startTime := time.Now()
	summary := scanSummary{}

	targets, err := collectTargets(flags, a.logger)
	if err != nil {
		return summary, err
	}

	var contents [][]detector.Content
	if flags.ContentFile != "" {
		body, err := a.fileReader.ReadFile(flags.ContentFile)
		if err != nil {
			return summary, err
		}
		contents = append(contents, []detector.Content{{
			PageURL:     flags.ContentFile,
			DeliveryURL: flags.ContentFile,
			Body:        string(body),
		}})
		summary.Targets++
	}

	for _, target := range targets {
		if ctx.Err() != nil {
			return summary, ctx.Err()
		}
		summary.Targets++
		page, err := a.fetcher.FetchPage(ctx, target)
		if err != nil {
			a.logger.Error().Err(err).Str("url", target).Msg("Failed to fetch target")
			summary.Failed++
			continue
		}
		contents = append(contents, page)
	}

	for _, batch := range contents {
		reports, err := a.engine.ScanAll(ctx, batch)
		if err != nil {
			if common.IsContextError(err) {
				return summary, err
			}
			a.logger.Warn().Err(err).Msg("Scan completed with errors")
		}
		for _, r := range reports {
			summary.Contents++
			summary.Created += len(r.Created)
		}
	}

	summary.Duration = time.Since(startTime)
	a.logger.Info().
		Int("targets", summary.Targets).
		Int("contents", summary.Contents).
		Int("created", summary.Created).
		Int("failed_targets", summary.Failed).
		Dur("duration", summary.Duration).
		Msg("Scan finished")
	return summary, nil
}

func (a *application) runRevalidate(ctx context.Context) (lifecycle.RevalidateSummary, error) {
	summary, err := a.manager.Revalidate(ctx, a.registry)
	if err != nil {
		return summary, err
	}
	a.logger.Info().
		Int("checked", summary.Checked).
		Int("valid", summary.Valid).
		Int("invalid", summary.Invalid).
		Int("failed_to_check", summary.FailedToCheck).
		Int("reactivated", summary.Reactivated).
		Int("skipped", summary.Skipped).
		Dur("duration", summary.Duration).
		Msg("Revalidation finished")
	return summary, nil
}

// runList writes every persisted finding to w as indented JSON
func (a *application) runList(ctx context.Context, w io.Writer) error {
	findings, err := a.manager.Findings(ctx)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(findings); err != nil {
		return fmt.Errorf("failed to encode findings: %w", err)
	}
	return nil
}

// runCycle is one automated cycle: scan, then optionally revalidate.
func (a *application) runCycle(ctx context.Context, cycle int, flags AppFlags) error {
	a.logger.Info().Int("cycle", cycle).Msg("Starting automated cycle")
	if flags.HasTargets() {
		if _, err := a.runScan(ctx, flags); err != nil {
			return err
		}
	}
	if a.cfg.SchedulerConfig.RevalidateEachCycle {
		if _, err := a.runRevalidate(ctx); err != nil {
			return err
		}
	}
	return nil
}

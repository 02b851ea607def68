package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"UltraCampScraper/internal/config"
	"UltraCampScraper/internal/domain"
	"UltraCampScraper/internal/infrastructure/export"
	"UltraCampScraper/internal/infrastructure/fetcher"
	"UltraCampScraper/internal/infrastructure/parser"
	"UltraCampScraper/internal/logging"
	"UltraCampScraper/internal/ports"
	"UltraCampScraper/internal/report"
	"UltraCampScraper/internal/usecase"
)

// Result is what one scrape run produced.
type Result struct {
	Records []domain.EnrichedRecord
	Summary domain.RunSummary
	Paths   []string
}

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	pipeline *usecase.Pipeline
	exporter ports.RecordExporter
	out      io.Writer
}

// New builds a runnable application instance. The run summary table is
// written to out when it is not nil.
func New(cfg config.Config, baseLogger *slog.Logger, out io.Writer) *Application {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	pageFetcher := fetcher.New(fetcher.Options{
		Interval:    cfg.Fetch.RateLimit,
		Timeout:     cfg.Fetch.Timeout,
		MaxAttempts: cfg.Fetch.MaxAttempts,
		BackoffUnit: cfg.Fetch.BackoffUnit,
		UserAgent:   cfg.Site.UserAgent,
		Logger:      baseLogger.With("component", "fetcher"),
	})

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Fetcher:       pageFetcher,
		ListingParser: parser.NewListingParser(cfg.Site.BaseURL, baseLogger.With("component", "parser.listing")),
		DetailParser:  parser.NewDetailParser(baseLogger.With("component", "parser.detail")),
		Logger:        baseLogger.With("component", "pipeline"),
	})

	dispatcher := export.NewDispatcher(
		export.NewRegistry(cfg.Site.Location()),
		cfg.Output.Formats,
		cfg.Output.Dir,
		baseLogger.With("component", "export"),
	)

	return &Application{
		cfg:      cfg,
		logger:   baseLogger,
		pipeline: pipeline,
		exporter: dispatcher,
		out:      out,
	}
}

// Run scrapes the configured camp location and exports the result. When no
// listing survives the filters nothing is written.
func (a *Application) Run(ctx context.Context) (Result, error) {
	if err := a.cfg.Validate(); err != nil {
		return Result{}, fmt.Errorf("invalid configuration: %w", err)
	}

	records, summary, err := a.pipeline.Run(ctx, a.cfg.ScrapeConfig())
	if err != nil {
		return Result{Records: records, Summary: summary}, err
	}
	result := Result{Records: records, Summary: summary}

	if summary.FilteredCount == 0 {
		a.logger.Warn("no classes found matching criteria", "grade", summary.Config.GradeFilter)
	} else {
		paths, err := a.exporter.Export(ctx, records, summary)
		if err != nil {
			return result, fmt.Errorf("export: %w", err)
		}
		result.Paths = paths
		for _, p := range paths {
			a.logger.Info("exported", "path", p)
		}
	}

	if a.out != nil {
		report.Summary(a.out, summary, result.Paths)
	}
	return result, nil
}

// RenderGrid prints the weekly calendar of a YAML export.
func RenderGrid(w io.Writer, path string) error {
	doc, err := export.ReadYAML(path)
	if err != nil {
		return err
	}
	report.Grid(w, doc.Classes)
	return nil
}

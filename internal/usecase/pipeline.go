package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"UltraCampScraper/internal/domain"
	"UltraCampScraper/internal/grades"
	"UltraCampScraper/internal/ports"
)

const (
	// extendedCareSuffix marks after-school care listings that are not enrichment classes.
	extendedCareSuffix = "Extended Care"
	progressEvery      = 5
)

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Fetcher       ports.PageFetcher
	ListingParser ports.ListingParser
	DetailParser  ports.DetailParser
	Logger        *slog.Logger
	Now           func() time.Time
}

// Pipeline implements the listing → detail → enriched record workflow.
type Pipeline struct {
	fetcher       ports.PageFetcher
	listingParser ports.ListingParser
	detailParser  ports.DetailParser
	logger        *slog.Logger
	now           func() time.Time
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &Pipeline{
		fetcher:       deps.Fetcher,
		listingParser: deps.ListingParser,
		detailParser:  deps.DetailParser,
		logger:        deps.Logger,
		now:           now,
	}
}

// Run scrapes one camp location. Only failures before the first detail page
// (listing URL, listing fetch or listing parse) and context cancellation are
// returned as errors; a failed session is logged, counted and skipped.
func (p *Pipeline) Run(ctx context.Context, cfg domain.ScrapeConfig) ([]domain.EnrichedRecord, domain.RunSummary, error) {
	summary := domain.RunSummary{Config: cfg}

	if p.fetcher == nil || p.listingParser == nil || p.detailParser == nil {
		return nil, summary, errors.New("pipeline is not fully configured")
	}

	listingURL, err := p.listingParser.ListingURL(cfg.CampID, cfg.CampCode, cfg.LocationID)
	if err != nil {
		return nil, summary, fmt.Errorf("build listing url: %w", err)
	}

	p.info("fetch listing", "url", listingURL)
	body, err := p.fetcher.Fetch(ctx, listingURL)
	if err != nil {
		return nil, summary, fmt.Errorf("fetch listing: %w", err)
	}

	stubs, err := p.listingParser.ParseListing(body)
	if err != nil {
		return nil, summary, fmt.Errorf("parse listing: %w", err)
	}
	summary.ListingsFound = len(stubs)
	p.info("listing parsed", "classes", len(stubs))

	stubs = grades.Filter(stubs, cfg.GradeFilter)
	if cfg.GradeFilter != "" {
		p.info("grade filter applied", "grade", cfg.GradeFilter, "classes", len(stubs))
	}

	stubs, skipped := dropExtendedCare(stubs)
	summary.ExtendedCareSkipped = skipped
	summary.FilteredCount = len(stubs)
	if skipped > 0 {
		p.info("extended care listings skipped", "count", skipped)
	}

	records := make([]domain.EnrichedRecord, 0, len(stubs))
	for i, stub := range stubs {
		if err := ctx.Err(); err != nil {
			return records, summary, fmt.Errorf("scrape interrupted: %w", err)
		}

		progress := fmt.Sprintf("%d/%d", i+1, len(stubs))
		p.debug("fetch detail", "progress", progress, "name", stub.Name, "url", stub.DetailURL)

		record, err := p.enrich(ctx, stub)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return records, summary, fmt.Errorf("scrape interrupted: %w", ctxErr)
			}
			summary.FailureCount++
			p.warn("skip class", "progress", progress, "name", stub.Name, "error", err)
		} else {
			summary.SuccessCount++
			records = append(records, record)
		}

		if (i+1)%progressEvery == 0 {
			p.info("progress", "processed", progress)
		}
	}

	summary.ScrapedAt = p.now()
	p.info("scrape finished", "succeeded", summary.SuccessCount, "failed", summary.FailureCount)
	return records, summary, nil
}

func (p *Pipeline) enrich(ctx context.Context, stub domain.SessionStub) (domain.EnrichedRecord, error) {
	body, err := p.fetcher.Fetch(ctx, stub.DetailURL)
	if err != nil {
		return domain.EnrichedRecord{}, err
	}

	detail, err := p.detailParser.ParseDetail(body)
	if err != nil {
		return domain.EnrichedRecord{}, fmt.Errorf("parse detail %s: %w", stub.SessionID, err)
	}
	if detail == nil {
		return domain.EnrichedRecord{}, fmt.Errorf("parse detail %s: empty record", stub.SessionID)
	}

	return domain.Enrich(stub, *detail), nil
}

func dropExtendedCare(stubs []domain.SessionStub) ([]domain.SessionStub, int) {
	kept := make([]domain.SessionStub, 0, len(stubs))
	for _, stub := range stubs {
		if strings.HasSuffix(stub.Name, extendedCareSuffix) {
			continue
		}
		kept = append(kept, stub)
	}
	return kept, len(stubs) - len(kept)
}

func (p *Pipeline) debug(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Debug(msg, args...)
	}
}

func (p *Pipeline) info(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Info(msg, args...)
	}
}

func (p *Pipeline) warn(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}

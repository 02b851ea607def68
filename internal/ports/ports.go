package ports

import (
	"context"

	"UltraCampScraper/internal/domain"
)

// PageFetcher retrieves raw page bodies, pacing and retrying as needed.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// ListingParser addresses the listing page and turns its body into session stubs.
type ListingParser interface {
	ListingURL(campID int, campCode string, locationID int) (string, error)
	ParseListing(html string) ([]domain.SessionStub, error)
}

// DetailParser turns a detail page body into a best-effort record.
type DetailParser interface {
	ParseDetail(html string) (*domain.DetailRecord, error)
}

// RecordExporter hands finished records to the configured output formats
// and returns the written paths.
type RecordExporter interface {
	Export(ctx context.Context, records []domain.EnrichedRecord, summary domain.RunSummary) ([]string, error)
}

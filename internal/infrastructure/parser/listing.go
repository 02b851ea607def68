package parser

import (
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"UltraCampScraper/internal/domain"
	"UltraCampScraper/internal/ports"
)

const (
	// DefaultBaseURL is where listing and relative detail links live.
	DefaultBaseURL = "https://www.ultracamp.com/info/"

	listingPage      = "upcomingSessions.aspx"
	detailPathMarker = "sessionDetail.aspx"
)

var (
	sessionIDExpr = regexp.MustCompile(`idSession=(\d+)`)
	gradeTextExpr = regexp.MustCompile(`(?i)Grades?\s+(P[234]|TK|K|[1-8](?:st|nd|rd|th))(?:\s*-\s*(P[234]|TK|K|[1-8](?:st|nd|rd|th)))?`)
)

// ListingParser extracts session stubs from an upcoming-sessions page.
type ListingParser struct {
	baseURL string
	logger  *slog.Logger
}

var _ ports.ListingParser = (*ListingParser)(nil)

// NewListingParser resolves relative detail links against baseURL (DefaultBaseURL when empty).
func NewListingParser(baseURL string, logger *slog.Logger) *ListingParser {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &ListingParser{baseURL: baseURL, logger: logger}
}

// ParseListing returns one stub per detail link in document order.
func (p *ListingParser) ParseListing(body string) ([]domain.SessionStub, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse listing document: %w", err)
	}

	stubs := make([]domain.SessionStub, 0)
	doc.Find(`a[href*="` + detailPathMarker + `"]`).Each(func(i int, link *goquery.Selection) {
		stub, err := p.parseAnchor(link)
		if err != nil {
			if p.logger != nil {
				p.logger.Warn("skip listing anchor", "index", i, "error", err)
			}
			return
		}
		if stub.Name == "" || stub.DetailURL == "" {
			return
		}
		stubs = append(stubs, stub)
	})

	return stubs, nil
}

func (p *ListingParser) parseAnchor(link *goquery.Selection) (stub domain.SessionStub, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed anchor: %v", r)
		}
	}()

	href, _ := link.Attr("href")
	href = strings.TrimSpace(href)
	detailURL := href
	if href != "" && !strings.HasPrefix(href, "http") {
		detailURL = p.baseURL + strings.TrimPrefix(href, "/")
	}

	var sessionID string
	if m := sessionIDExpr.FindStringSubmatch(detailURL); m != nil {
		sessionID = m[1]
	}

	var gradeRange string
	if m := gradeTextExpr.FindString(cleanText(link.Parent().Text())); m != "" {
		gradeRange = cleanText(m)
	}

	return domain.SessionStub{
		Name:       cleanText(link.Text()),
		GradeRange: gradeRange,
		SessionID:  sessionID,
		DetailURL:  detailURL,
	}, nil
}

// ListingURL addresses the upcoming-sessions page under the parser's base URL.
func (p *ListingParser) ListingURL(campID int, campCode string, locationID int) (string, error) {
	return BuildListingURL(p.baseURL, campID, campCode, locationID)
}

// BuildListingURL addresses the upcoming-sessions page for one camp location.
func BuildListingURL(base string, campID int, campCode string, locationID int) (string, error) {
	if base == "" {
		base = DefaultBaseURL
	}

	parsed, err := url.Parse(strings.TrimSuffix(base, "/") + "/" + listingPage)
	if err != nil {
		return "", fmt.Errorf("invalid base url %s: %w", base, err)
	}

	query := parsed.Query()
	query.Set("idCamp", strconv.Itoa(campID))
	query.Set("campCode", campCode)
	query.Set("idLocation", strconv.Itoa(locationID))
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

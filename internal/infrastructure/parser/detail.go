package parser

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"UltraCampScraper/internal/domain"
	"UltraCampScraper/internal/ports"
)

// ErrUnparsable marks a detail page the extractors could not process.
var ErrUnparsable = errors.New("detail page unparsable")

const (
	// CanonicalLocation is reported when no better location text is found.
	CanonicalLocation = "CAIS K-8th"
	unknownInstructor = "Unknown"

	contentRegionSelector = "#lblDescription"

	// characters inspected on each side of a campus match for narrative words.
	narrativeWindow   = 50
	fullAddressMaxLen = 200
)

const weekdays = `Monday|Tuesday|Wednesday|Thursday|Friday|Saturday|Sunday`

var (
	instructorExpr  = regexp.MustCompile(`Instructor(?:\s+Name)?:\s*([^\n]+)`)
	weekdayLineExpr = regexp.MustCompile(`(?i)^(?:` + weekdays + `):`)
	dayExpr         = regexp.MustCompile(`(?i)(` + weekdays + `):`)
	timeExpr        = regexp.MustCompile(`(?i)Time:\s*(\d{1,2}:\d{2}\s*(?:AM|PM)\s*-\s*\d{1,2}:\d{2}\s*(?:AM|PM))`)
	datesExpr       = regexp.MustCompile(`Dates:\s*(\d{1,2}/\d{1,2}/\d{4})\s*-\s*(\d{1,2}/\d{1,2}/\d{4})`)
	classCountExpr  = regexp.MustCompile(`(?i)\((\d+)\s+class(?:es)?\)`)
	gradeLevelsExpr = regexp.MustCompile(`(?i)Ages:\s*(Grades?\s+[A-Za-z0-9\s\-]+?)(?:\s+Cost|$)`)
	costExpr        = regexp.MustCompile(`Cost:\s*(\$[\d,]+\.?\d*)`)

	campusExpr      = regexp.MustCompile(`(?i)CAIS\s+K\s*-\s*8th`)
	fullAddressExpr = regexp.MustCompile(`(?i)CAIS\s+K\s*-\s*8th[,\s]+3250\s+19th\s+Avenue`)
	addressStopExpr = regexp.MustCompile(`(?i)Dates:|Time:|Ages:`)

	// narrativeExpr flags a campus mention that sits inside description prose.
	// Tuned against the UltraCamp session template; keep as is.
	narrativeExpr = regexp.MustCompile(`(?i)students?|adventure|exciting|program|will|class|learn`)
)

// DetailParser recovers a DetailRecord from one session detail page.
type DetailParser struct {
	logger *slog.Logger
}

var _ ports.DetailParser = (*DetailParser)(nil)

// NewDetailParser builds a parser; logger may be nil.
func NewDetailParser(logger *slog.Logger) *DetailParser {
	return &DetailParser{logger: logger}
}

// ParseDetail extracts every field independently. A page without text yields
// a record of defaults; ErrUnparsable is returned only when the document
// cannot be read or extraction panics.
func (p *DetailParser) ParseDetail(body string) (record *domain.DetailRecord, err error) {
	defer func() {
		if r := recover(); r != nil {
			record = nil
			err = fmt.Errorf("%w: %v", ErrUnparsable, r)
		}
	}()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnparsable, err)
	}

	page := pageText(doc.Find("body"))
	region := pageText(doc.Find(contentRegionSelector))

	startDate, endDate := extractDates(page)
	overview, strategy := resolveDescription(page, region)
	if p.logger != nil {
		p.logger.Debug("description resolved", "strategy", strategy, "length", runeLen(overview))
	}

	return &domain.DetailRecord{
		Instructor:      extractInstructor(page),
		GradeLevels:     extractGradeLevels(page),
		DayOfWeek:       extractDay(page),
		Time:            extractTime(page),
		StartDate:       startDate,
		EndDate:         endDate,
		NumberOfClasses: extractClassCount(page),
		Location:        extractLocation(page),
		Cost:            extractCost(page),
		ProgramOverview: overview,
	}, nil
}

// extractInstructor skips a capture that is really the next day-schedule line.
func extractInstructor(text string) string {
	m := instructorExpr.FindStringSubmatch(text)
	if m == nil {
		return unknownInstructor
	}
	name := cleanText(m[1])
	if name == "" || weekdayLineExpr.MatchString(name) {
		return unknownInstructor
	}
	return name
}

func extractDay(text string) string {
	if m := dayExpr.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return ""
}

func extractTime(text string) string {
	if m := timeExpr.FindStringSubmatch(text); m != nil {
		return cleanText(m[1])
	}
	return ""
}

func extractDates(text string) (string, string) {
	if m := datesExpr.FindStringSubmatch(text); m != nil {
		return m[1], m[2]
	}
	return "", ""
}

func extractClassCount(text string) *int {
	m := classCountExpr.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 0 {
		return nil
	}
	return &n
}

func extractGradeLevels(text string) string {
	if m := gradeLevelsExpr.FindStringSubmatch(text); m != nil {
		return cleanText(m[1])
	}
	return ""
}

func extractCost(text string) string {
	if m := costExpr.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return ""
}

// extractLocation starts from the canonical campus name, accepts the page's own
// spelling only outside narrative prose, and prefers a short full-address line.
func extractLocation(text string) string {
	location := CanonicalLocation

	if loc := campusExpr.FindStringIndex(text); loc != nil {
		before := lastRunes(text[:loc[0]], narrativeWindow)
		after := firstRunes(text[loc[1]:], narrativeWindow)
		if !narrativeExpr.MatchString(before) && !narrativeExpr.MatchString(after) {
			location = cleanText(text[loc[0]:loc[1]])
		}
	}

	if loc := fullAddressExpr.FindStringIndex(text); loc != nil {
		candidate := text[loc[0]:loc[1]] + cutBefore(text[loc[1]:], addressStopExpr, 0)
		if runeLen(candidate) < fullAddressMaxLen {
			addr := cleanText(candidate)
			if !strings.Contains(addr, "function") {
				location = addr
			}
		}
	}

	return location
}

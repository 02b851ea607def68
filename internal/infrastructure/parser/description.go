package parser

import (
	"regexp"
	"strings"
)

const (
	minDescriptionLen = 20
	maxDescriptionLen = 2000
	// minScheduleGap is how much text must sit between the day-schedule line and
	// the next label before that gap is trusted as a description.
	minScheduleGap = 50
	// paragraphSkip is how far past the instructor label the fallback search starts.
	paragraphSkip = 100
)

// descriptionDenylist holds fragments that only appear when an extraction
// has run into embedded script. Tuned against the UltraCamp session template.
var descriptionDenylist = []string{
	"function(",
	"function ",
	"gtm.start",
	"getElementById",
	"window.",
	"document.",
}

var (
	afterScheduleExpr   = regexp.MustCompile(`(?i)Instructor(?:\s+Name)?:[^\n]*\n+(?:` + weekdays + `):\s*\([^)]+\)[^\n]*\n+([\s\S]+)`)
	descriptionHeadExpr = regexp.MustCompile(`(?i)Description\s+(?:Instructor Name:[^\n]+\s+)?(?:[A-Za-z]+:)?[^\n]*\s+([\s\S]+)`)
	scheduleLineExpr    = regexp.MustCompile(`(?i)(?:` + weekdays + `):\s*\([^)]+\)[^\n]+`)
	regionScheduleExpr  = regexp.MustCompile(`(?i)(?:` + weekdays + `):\s*\([^)]+\)[^\n]*`)
	instructorLabelExpr = regexp.MustCompile(`(?i)Instructor(?:\s+Name)?:`)
	paragraphExpr       = regexp.MustCompile(`([A-Z][\s\S]*?[.!?])\s+(?:CAIS|Location|Dates|Time|Ages|$)`)

	labelStopExpr    = regexp.MustCompile(`(?i)Location:|Dates:|Time:|Ages:`)
	headingStopExpr  = regexp.MustCompile(`(?i)\s+CAIS\s+K|Location:|Dates:|Time:|Ages:`)
	scheduleStopExpr = regexp.MustCompile(`(?i)Time:|Dates:|Ages:|Cost:`)
)

// descriptionStrategy proposes a program overview from the page text and the
// narrower content region. An empty result means no candidate.
type descriptionStrategy struct {
	name    string
	extract func(page, region string) string
}

// descriptionStrategies run in priority order; the first valid candidate wins.
var descriptionStrategies = []descriptionStrategy{
	{name: "after-schedule", extract: textAfterSchedule},
	{name: "description-heading", extract: textAfterHeading},
	{name: "schedule-gap", extract: textInScheduleGap},
	{name: "content-region", extract: textInContentRegion},
	{name: "first-paragraph", extract: firstParagraph},
}

func resolveDescription(page, region string) (string, string) {
	for _, strategy := range descriptionStrategies {
		candidate := cleanText(strategy.extract(page, region))
		if validDescription(candidate) {
			return candidate, strategy.name
		}
	}
	return "", ""
}

// validDescription rejects script fragments before looking at length.
func validDescription(text string) bool {
	for _, fragment := range descriptionDenylist {
		if strings.Contains(text, fragment) {
			return false
		}
	}
	n := runeLen(text)
	return n >= minDescriptionLen && n <= maxDescriptionLen
}

func textAfterSchedule(page, _ string) string {
	m := afterScheduleExpr.FindStringSubmatch(page)
	if m == nil {
		return ""
	}
	return cutBefore(m[1], labelStopExpr, 1)
}

func textAfterHeading(page, _ string) string {
	m := descriptionHeadExpr.FindStringSubmatch(page)
	if m == nil {
		return ""
	}
	return cutBefore(m[1], headingStopExpr, 1)
}

func textInScheduleGap(page, _ string) string {
	loc := scheduleLineExpr.FindStringIndex(page)
	if loc == nil {
		return ""
	}
	after := page[loc[1]:]
	stop := scheduleStopExpr.FindStringIndex(after)
	if stop == nil || runeLen(after[:stop[0]]) < minScheduleGap {
		return ""
	}
	return after[:stop[0]]
}

func textInContentRegion(_, region string) string {
	if region == "" {
		return ""
	}
	loc := regionScheduleExpr.FindStringIndex(region)
	if loc == nil {
		return ""
	}
	return region[loc[1]:]
}

func firstParagraph(page, _ string) string {
	loc := instructorLabelExpr.FindStringIndex(page)
	if loc == nil {
		return ""
	}
	rest := page[loc[0]:]
	skipped := firstRunes(rest, paragraphSkip)
	if len(skipped) == len(rest) {
		return ""
	}
	m := paragraphExpr.FindStringSubmatch(rest[len(skipped):])
	if m == nil {
		return ""
	}
	return m[1]
}

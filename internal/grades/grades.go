// Package grades normalizes UltraCamp grade labels and filters listings by grade.
package grades

import (
	"regexp"
	"strings"

	"UltraCampScraper/internal/domain"
)

var aliases = map[string]string{
	"p2":           "P2",
	"p3":           "P3",
	"p4":           "P4",
	"tk":           "TK",
	"k":            "K",
	"kindergarten": "K",
	"1":            "1st",
	"1st":          "1st",
	"first":        "1st",
	"2":            "2nd",
	"2nd":          "2nd",
	"second":       "2nd",
	"3":            "3rd",
	"3rd":          "3rd",
	"third":        "3rd",
	"4":            "4th",
	"4th":          "4th",
	"fourth":       "4th",
	"5":            "5th",
	"5th":          "5th",
	"fifth":        "5th",
	"6":            "6th",
	"6th":          "6th",
	"sixth":        "6th",
	"7":            "7th",
	"7th":          "7th",
	"seventh":      "7th",
	"8":            "8th",
	"8th":          "8th",
	"eighth":       "8th",
}

// ordering of the fixed grade vocabulary, youngest first.
var ranks = map[string]int{
	"P2":  -4,
	"P3":  -3,
	"P4":  -2,
	"TK":  -1,
	"K":   0,
	"1st": 1,
	"2nd": 2,
	"3rd": 3,
	"4th": 4,
	"5th": 5,
	"6th": 6,
	"7th": 7,
	"8th": 8,
}

var (
	singleExpr = regexp.MustCompile(`(?i)Grades?\s+([A-Za-z0-9]+)$`)
	rangeExpr  = regexp.MustCompile(`(?i)Grades?\s+([A-Za-z0-9]+)\s*-\s*([A-Za-z0-9]+)`)
)

// Normalize maps loose spellings ("kindergarten", "3", "third") to the canonical
// label. Unknown input is returned unchanged.
func Normalize(input string) string {
	if v, ok := aliases[strings.ToLower(strings.TrimSpace(input))]; ok {
		return v
	}
	return input
}

// Rank returns the position of a grade in the fixed ordering.
func Rank(grade string) (int, bool) {
	r, ok := ranks[Normalize(grade)]
	return r, ok
}

// ParseRange reads "Grade X" or "Grades X - Y" text. It returns nil when neither form matches.
func ParseRange(text string) *domain.GradeRange {
	cleaned := strings.TrimSpace(text)
	if cleaned == "" {
		return nil
	}

	if m := singleExpr.FindStringSubmatch(cleaned); m != nil {
		g := Normalize(m[1])
		return &domain.GradeRange{Start: g, End: g}
	}

	if m := rangeExpr.FindStringSubmatch(cleaned); m != nil {
		return &domain.GradeRange{Start: Normalize(m[1]), End: Normalize(m[2])}
	}

	return nil
}

// Matches reports whether target falls inside the range described by rangeText.
// Bounds are compared by rank; when any rank is unknown it falls back to
// equality with either bound.
func Matches(rangeText, target string) bool {
	if rangeText == "" || target == "" {
		return false
	}

	r := ParseRange(rangeText)
	if r == nil {
		return false
	}

	t, okT := Rank(target)
	start, okS := Rank(r.Start)
	end, okE := Rank(r.End)
	if !okT || !okS || !okE {
		norm := Normalize(target)
		return norm == Normalize(r.Start) || norm == Normalize(r.End)
	}

	return t >= start && t <= end
}

// Filter keeps the stubs whose grade range includes target. An empty target keeps everything.
func Filter(stubs []domain.SessionStub, target string) []domain.SessionStub {
	if strings.TrimSpace(target) == "" {
		return stubs
	}

	kept := make([]domain.SessionStub, 0, len(stubs))
	for _, stub := range stubs {
		if Matches(stub.GradeRange, target) {
			kept = append(kept, stub)
		}
	}
	return kept
}

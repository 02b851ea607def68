// Package schedule orders and groups classes by their weekly time slot.
package schedule

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"UltraCampScraper/internal/domain"
)

// Weekdays are the school days shown in the weekly grid.
var Weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}

var clockExpr = regexp.MustCompile(`(?i)(\d{1,2}):(\d{2})\s*(AM|PM)`)

// ParseClock converts "3:30 PM" to minutes after midnight.
func ParseClock(s string) (int, bool) {
	m := clockExpr.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}

	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	if hour < 1 || hour > 12 || minute > 59 {
		return 0, false
	}

	switch strings.ToUpper(m[3]) {
	case "PM":
		if hour != 12 {
			hour += 12
		}
	case "AM":
		if hour == 12 {
			hour = 0
		}
	}

	return hour*60 + minute, true
}

// SlotBounds splits "3:30 PM - 4:30 PM" into start and end minutes.
func SlotBounds(slot string) (start, end int, ok bool) {
	parts := strings.SplitN(slot, "-", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	start, okStart := ParseClock(parts[0])
	end, okEnd := ParseClock(parts[1])
	if !okStart || !okEnd {
		return 0, 0, false
	}
	return start, end, true
}

func startOf(slot string) int {
	first, _, _ := strings.Cut(slot, " - ")
	minutes, _ := ParseClock(first)
	return minutes
}

// CompareSlots orders slots by start time; unparsable slots sort as midnight.
func CompareSlots(a, b string) int {
	return startOf(a) - startOf(b)
}

// UniqueSlots returns the distinct non-empty time slots ordered by start time.
func UniqueSlots(records []domain.EnrichedRecord) []string {
	seen := map[string]struct{}{}
	slots := make([]string, 0)
	for _, r := range records {
		if r.Time == "" {
			continue
		}
		if _, ok := seen[r.Time]; ok {
			continue
		}
		seen[r.Time] = struct{}{}
		slots = append(slots, r.Time)
	}

	sort.SliceStable(slots, func(i, j int) bool {
		return CompareSlots(slots[i], slots[j]) < 0
	})
	return slots
}

// Grid maps a time slot to the classes running in it on each weekday.
type Grid map[string]map[string][]domain.EnrichedRecord

// GroupByDayAndTime builds the weekly grid. Records on days outside Weekdays
// keep their slot row but are not placed in a column.
func GroupByDayAndTime(records []domain.EnrichedRecord) Grid {
	grid := Grid{}
	for _, r := range records {
		row, ok := grid[r.Time]
		if !ok {
			row = make(map[string][]domain.EnrichedRecord, len(Weekdays))
			for _, day := range Weekdays {
				row[day] = nil
			}
			grid[r.Time] = row
		}
		if day, weekday := weekdayColumn(r.DayOfWeek); weekday {
			row[day] = append(row[day], r)
		}
	}
	return grid
}

// weekdayColumn matches a scraped day name against Weekdays ignoring case.
func weekdayColumn(day string) (string, bool) {
	day = strings.TrimSpace(day)
	for _, d := range Weekdays {
		if strings.EqualFold(d, day) {
			return d, true
		}
	}
	return "", false
}

package export

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"UltraCampScraper/internal/domain"
	"UltraCampScraper/internal/exporter"
	"UltraCampScraper/internal/schedule"
)

const (
	dateLayout       = "1/2/2006"
	icalLocalLayout  = "20060102T150405"
	icalUTCLayout    = "20060102T150405Z"
	calendarName     = "Enrichment classes"
	calendarProduct  = "-//UltraCampScraper//Enrichment Classes//EN"
	eventUIDTemplate = "ultracamp-%s@ultracampscraper"
)

var byDay = map[time.Weekday]string{
	time.Sunday:    "SU",
	time.Monday:    "MO",
	time.Tuesday:   "TU",
	time.Wednesday: "WE",
	time.Thursday:  "TH",
	time.Friday:    "FR",
	time.Saturday:  "SA",
}

// ICSExporter writes one weekly recurring event per class with a usable schedule.
// Records missing a weekday, time slot or date pair are left out.
type ICSExporter struct {
	loc *time.Location
}

// NewICSExporter anchors event times in loc (UTC when nil).
func NewICSExporter(loc *time.Location) ICSExporter {
	if loc == nil {
		loc = time.UTC
	}
	return ICSExporter{loc: loc}
}

func (ICSExporter) Format() string    { return "ics" }
func (ICSExporter) Extension() string { return "ics" }

func (e ICSExporter) Export(_ context.Context, req exporter.Request) (string, error) {
	cal := e.Calendar(req.Records, req.Summary.ScrapedAt)

	if err := ensureDir(req.Dir); err != nil {
		return "", err
	}
	path := exporter.OutputPath(req.Dir, req.Summary, e.Extension())
	if err := os.WriteFile(path, []byte(cal.Serialize()), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

// Calendar builds the VCALENDAR without writing it.
func (e ICSExporter) Calendar(records []domain.EnrichedRecord, stamp time.Time) *ics.Calendar {
	if stamp.IsZero() {
		stamp = time.Now()
	}
	loc := e.location()

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(calendarProduct)
	cal.SetXWRCalName(calendarName)
	cal.SetXWRTimezone(loc.String())

	used := make(map[string]struct{}, len(records))
	for i, record := range records {
		occ, ok := firstOccurrence(record, loc)
		if !ok {
			continue
		}

		id := record.SessionID
		if id == "" {
			id = fmt.Sprintf("row-%d", i+1)
		} else if _, dup := used[id]; dup {
			id = fmt.Sprintf("%s-row-%d", id, i+1)
		}
		used[id] = struct{}{}

		event := cal.AddEvent(fmt.Sprintf(eventUIDTemplate, id))
		event.SetDtStampTime(stamp)
		event.SetProperty(ics.ComponentPropertyDtStart, occ.start.Format(icalLocalLayout), ics.WithTZID(loc.String()))
		event.SetProperty(ics.ComponentPropertyDtEnd, occ.end.Format(icalLocalLayout), ics.WithTZID(loc.String()))
		event.AddProperty(ics.ComponentPropertyRrule, fmt.Sprintf("FREQ=WEEKLY;BYDAY=%s;UNTIL=%s",
			byDay[occ.start.Weekday()], occ.until.UTC().Format(icalUTCLayout)))
		event.SetSummary(record.Name)
		if desc := eventDescription(record); desc != "" {
			event.SetDescription(desc)
		}
		if record.Location != "" {
			event.SetLocation(record.Location)
		}
		if record.DetailURL != "" {
			event.SetURL(record.DetailURL)
		}
	}

	return cal
}

func (e ICSExporter) location() *time.Location {
	if e.loc == nil {
		return time.UTC
	}
	return e.loc
}

type occurrence struct {
	start, end, until time.Time
}

// firstOccurrence places the first meeting on or after the start date.
func firstOccurrence(r domain.EnrichedRecord, loc *time.Location) (occurrence, bool) {
	weekday, ok := parseWeekday(r.DayOfWeek)
	if !ok {
		return occurrence{}, false
	}
	from, to, ok := schedule.SlotBounds(r.Time)
	if !ok || to <= from {
		return occurrence{}, false
	}
	startDate, err := time.ParseInLocation(dateLayout, r.StartDate, loc)
	if err != nil {
		return occurrence{}, false
	}
	endDate, err := time.ParseInLocation(dateLayout, r.EndDate, loc)
	if err != nil || endDate.Before(startDate) {
		return occurrence{}, false
	}

	day := startDate.AddDate(0, 0, (int(weekday)-int(startDate.Weekday())+7)%7)
	if day.After(endDate) {
		return occurrence{}, false
	}

	at := func(minutes int) time.Time {
		return time.Date(day.Year(), day.Month(), day.Day(), minutes/60, minutes%60, 0, 0, loc)
	}
	return occurrence{
		start: at(from),
		end:   at(to),
		until: time.Date(endDate.Year(), endDate.Month(), endDate.Day(), 23, 59, 59, 0, loc),
	}, true
}

func parseWeekday(name string) (time.Weekday, bool) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(d.String(), strings.TrimSpace(name)) {
			return d, true
		}
	}
	return 0, false
}

func eventDescription(r domain.EnrichedRecord) string {
	var parts []string
	if r.ProgramOverview != "" {
		parts = append(parts, r.ProgramOverview)
	}
	if r.Instructor != "" {
		parts = append(parts, "Instructor: "+r.Instructor)
	}
	if r.GradeRange != "" {
		parts = append(parts, r.GradeRange)
	}
	if r.Cost != "" {
		parts = append(parts, "Cost: "+r.Cost)
	}
	return strings.Join(parts, "\n")
}

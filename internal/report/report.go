// Package report renders scrape results as terminal tables.
package report

import (
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"UltraCampScraper/internal/domain"
	"UltraCampScraper/internal/schedule"
)

// Summary prints the run counters and the files written.
func Summary(w io.Writer, summary domain.RunSummary, paths []string) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Metric", "Value"})

	grade := summary.Config.GradeFilter
	if grade == "" {
		grade = "all"
	}

	t.AppendRows([]table.Row{
		{"Camp", summary.Config.CampCode},
		{"Grade", grade},
		{"Listings found", summary.ListingsFound},
		{"After filters", summary.FilteredCount},
		{"Extended Care skipped", summary.ExtendedCareSkipped},
		{"Scraped", summary.SuccessCount},
		{"Failed", summary.FailureCount},
	})
	if len(paths) > 0 {
		t.AppendSeparator()
		for _, p := range paths {
			t.AppendRow(table.Row{"Output", p})
		}
	}

	t.SetStyle(table.StyleRounded)
	t.Render()
}

// Grid prints the weekly calendar: one row per time slot, one column per
// school day. Classes without a time slot are not shown.
func Grid(w io.Writer, records []domain.EnrichedRecord) {
	grid := schedule.GroupByDayAndTime(records)

	header := table.Row{"Time"}
	for _, day := range schedule.Weekdays {
		header = append(header, day)
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(header)

	for _, slot := range schedule.UniqueSlots(records) {
		row := table.Row{slot}
		for _, day := range schedule.Weekdays {
			row = append(row, cell(grid[slot][day]))
		}
		t.AppendRow(row)
		t.AppendSeparator()
	}

	t.SetStyle(table.StyleRounded)
	t.Render()
}

func cell(records []domain.EnrichedRecord) string {
	lines := make([]string, 0, len(records))
	for _, r := range records {
		label := r.Name
		if r.GradeRange != "" {
			label += " (" + r.GradeRange + ")"
		}
		lines = append(lines, label)
	}
	return strings.Join(lines, "\n")
}

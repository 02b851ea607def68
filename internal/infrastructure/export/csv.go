package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"UltraCampScraper/internal/domain"
	"UltraCampScraper/internal/exporter"
)

var csvHeader = []string{
	"Session ID",
	"Class Name",
	"Grade Range",
	"Instructor",
	"Day of Week",
	"Time",
	"Start Date",
	"End Date",
	"Number of Classes",
	"Location",
	"Cost",
	"Program Overview",
	"Detail URL",
}

// CSVExporter writes one row per record under a fixed header.
type CSVExporter struct{}

func (CSVExporter) Format() string    { return "csv" }
func (CSVExporter) Extension() string { return "csv" }

func (e CSVExporter) Export(_ context.Context, req exporter.Request) (path string, err error) {
	if err := ensureDir(req.Dir); err != nil {
		return "", err
	}

	path = exporter.OutputPath(req.Dir, req.Summary, e.Extension())
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, closeErr)
		}
	}()

	w := csv.NewWriter(file)
	if err := w.Write(csvHeader); err != nil {
		return "", fmt.Errorf("write csv header: %w", err)
	}
	for _, record := range req.Records {
		if err := w.Write(csvRow(record)); err != nil {
			return "", fmt.Errorf("write csv row %s: %w", record.SessionID, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flush csv: %w", err)
	}

	return path, nil
}

func csvRow(r domain.EnrichedRecord) []string {
	count := ""
	if r.NumberOfClasses != nil {
		count = strconv.Itoa(*r.NumberOfClasses)
	}
	return []string{
		r.SessionID,
		r.Name,
		r.GradeRange,
		r.Instructor,
		r.DayOfWeek,
		r.Time,
		r.StartDate,
		r.EndDate,
		count,
		r.Location,
		r.Cost,
		r.ProgramOverview,
		r.DetailURL,
	}
}

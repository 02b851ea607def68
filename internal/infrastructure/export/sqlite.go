package export

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"

	"UltraCampScraper/internal/domain"
	"UltraCampScraper/internal/exporter"
)

const sqliteSchema = `
CREATE TABLE runs (
	id                    INTEGER PRIMARY KEY,
	scraped_at            TEXT    NOT NULL,
	camp_id               INTEGER NOT NULL,
	camp_code             TEXT    NOT NULL,
	location_id           INTEGER NOT NULL,
	grade_filter          TEXT,
	listings_found        INTEGER NOT NULL,
	filtered_count        INTEGER NOT NULL,
	extended_care_skipped INTEGER NOT NULL,
	success_count         INTEGER NOT NULL,
	failure_count         INTEGER NOT NULL
);

CREATE TABLE classes (
	id                INTEGER PRIMARY KEY,
	run_id            INTEGER NOT NULL REFERENCES runs(id),
	session_id        TEXT    NOT NULL,
	name              TEXT    NOT NULL,
	grade_range       TEXT    NOT NULL,
	instructor        TEXT    NOT NULL,
	grade_levels      TEXT    NOT NULL,
	day_of_week       TEXT    NOT NULL,
	time              TEXT    NOT NULL,
	start_date        TEXT    NOT NULL,
	end_date          TEXT    NOT NULL,
	number_of_classes INTEGER,
	location          TEXT    NOT NULL,
	cost              TEXT    NOT NULL,
	program_overview  TEXT    NOT NULL,
	detail_url        TEXT    NOT NULL
);

CREATE INDEX classes_session_id ON classes (session_id);
`

// SQLiteExporter writes a fresh database file holding the run and its classes.
type SQLiteExporter struct{}

func (SQLiteExporter) Format() string    { return "sqlite" }
func (SQLiteExporter) Extension() string { return "sqlite" }

func (e SQLiteExporter) Export(ctx context.Context, req exporter.Request) (path string, err error) {
	if err := ensureDir(req.Dir); err != nil {
		return "", err
	}

	path = exporter.OutputPath(req.Dir, req.Summary, e.Extension())
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("replace %s: %w", path, err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, closeErr)
		}
	}()

	if err := writeRun(ctx, db, req.Records, req.Summary); err != nil {
		return "", err
	}
	return path, nil
}

func writeRun(ctx context.Context, db *sql.DB, records []domain.EnrichedRecord, summary domain.RunSummary) (err error) {
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	query, args, err := sq.Insert("runs").
		Columns("scraped_at", "camp_id", "camp_code", "location_id", "grade_filter",
			"listings_found", "filtered_count", "extended_care_skipped", "success_count", "failure_count").
		Values(NewMetadata(summary, len(records)).ScrapedAt, summary.Config.CampID, summary.Config.CampCode,
			summary.Config.LocationID, nullable(summary.Config.GradeFilter),
			summary.ListingsFound, summary.FilteredCount, summary.ExtendedCareSkipped,
			summary.SuccessCount, summary.FailureCount).
		ToSql()
	if err != nil {
		return fmt.Errorf("build run insert: %w", err)
	}

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("run id: %w", err)
	}

	for _, r := range records {
		var count any
		if r.NumberOfClasses != nil {
			count = *r.NumberOfClasses
		}

		query, args, err := sq.Insert("classes").
			Columns("run_id", "session_id", "name", "grade_range", "instructor", "grade_levels",
				"day_of_week", "time", "start_date", "end_date", "number_of_classes",
				"location", "cost", "program_overview", "detail_url").
			Values(runID, r.SessionID, r.Name, r.GradeRange, r.Instructor, r.GradeLevels,
				r.DayOfWeek, r.Time, r.StartDate, r.EndDate, count,
				r.Location, r.Cost, r.ProgramOverview, r.DetailURL).
			ToSql()
		if err != nil {
			return fmt.Errorf("build class insert: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert class %s: %w", r.SessionID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

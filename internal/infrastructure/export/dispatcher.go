package export

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"UltraCampScraper/internal/domain"
	"UltraCampScraper/internal/exporter"
	"UltraCampScraper/internal/ports"
)

// Dispatcher implements RecordExporter via registered format exporters.
type Dispatcher struct {
	registry *exporter.Registry
	formats  []string
	dir      string
	logger   *slog.Logger
}

var _ ports.RecordExporter = (*Dispatcher)(nil)

// NewDispatcher wires the exporter registry with the configured formats and output directory.
func NewDispatcher(reg *exporter.Registry, formats []string, dir string, log *slog.Logger) *Dispatcher {
	return &Dispatcher{
		registry: reg,
		formats:  formats,
		dir:      dir,
		logger:   log,
	}
}

// Export resolves every requested format before writing any file, then runs
// the exporters in order and returns the written paths.
func (d *Dispatcher) Export(ctx context.Context, records []domain.EnrichedRecord, summary domain.RunSummary) ([]string, error) {
	if d.registry == nil {
		return nil, fmt.Errorf("exporter registry is not configured")
	}

	names := d.registry.Expand(d.formats)
	if len(names) == 0 {
		return nil, fmt.Errorf("no export format requested")
	}

	exporters := make([]exporter.Exporter, 0, len(names))
	for _, name := range names {
		e, err := d.registry.Resolve(name)
		if err != nil {
			return nil, err
		}
		exporters = append(exporters, e)
	}

	if err := ensureDir(d.dir); err != nil {
		return nil, err
	}

	d.debug("export", "formats", names, "records", len(records), "dir", d.dir)

	req := exporter.Request{Records: records, Summary: summary, Dir: d.dir}
	paths := make([]string, 0, len(exporters))
	for _, e := range exporters {
		if err := ctx.Err(); err != nil {
			return paths, err
		}
		path, err := e.Export(ctx, req)
		if err != nil {
			return paths, fmt.Errorf("export %s: %w", e.Format(), err)
		}
		d.debug("exported", "format", e.Format(), "path", path)
		paths = append(paths, path)
	}

	return paths, nil
}

// NewRegistry registers every built-in format. loc anchors calendar events.
func NewRegistry(loc *time.Location) *exporter.Registry {
	reg := exporter.NewRegistry()
	reg.Register(YAMLExporter{})
	reg.Register(CSVExporter{})
	reg.Register(NewICSExporter(loc))
	reg.Register(SQLiteExporter{})
	return reg
}

func ensureDir(dir string) error {
	if dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir %s: %w", dir, err)
	}
	return nil
}

func (d *Dispatcher) debug(msg string, args ...interface{}) {
	if d.logger != nil {
		d.logger.Debug(msg, args...)
	}
}

package exporter

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"UltraCampScraper/internal/domain"
)

const (
	// FormatBoth selects the YAML and CSV pair.
	FormatBoth = "both"
	// FormatAll selects every registered format.
	FormatAll = "all"
)

// Request carries everything an exporter needs to write one file.
type Request struct {
	Records []domain.EnrichedRecord
	Summary domain.RunSummary
	Dir     string
}

// Exporter writes records in a single file format.
type Exporter interface {
	Format() string
	Extension() string
	Export(ctx context.Context, req Request) (string, error)
}

// Registry keeps a mapping from format names to their implementations.
type Registry struct {
	exporters map[string]Exporter
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{exporters: map[string]Exporter{}}
}

// Register adds or replaces an exporter implementation.
func (r *Registry) Register(exporter Exporter) {
	if r.exporters == nil {
		r.exporters = map[string]Exporter{}
	}
	r.exporters[exporter.Format()] = exporter
}

// Resolve returns an exporter by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Exporter, error) {
	if exporter, ok := r.exporters[name]; ok {
		return exporter, nil
	}
	return nil, fmt.Errorf("export format %s is not registered", name)
}

// Formats lists the registered format names in sorted order.
func (r *Registry) Formats() []string {
	names := make([]string, 0, len(r.exporters))
	for name := range r.exporters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Expand resolves the "both" and "all" aliases and removes duplicates while
// keeping the requested order.
func (r *Registry) Expand(requested []string) []string {
	seen := map[string]bool{}
	var out []string
	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}

	for _, name := range requested {
		switch name = strings.ToLower(strings.TrimSpace(name)); name {
		case "":
		case FormatBoth:
			add("yaml")
			add("csv")
		case FormatAll:
			for _, f := range r.Formats() {
				add(f)
			}
		default:
			add(name)
		}
	}
	return out
}

// FileName returns enrichment-<grade|all>.<ext>.
func FileName(summary domain.RunSummary, ext string) string {
	label := summary.Config.GradeFilter
	if label == "" {
		label = "all"
	}
	return fmt.Sprintf("enrichment-%s.%s", label, ext)
}

// OutputPath joins dir with the file name for ext.
func OutputPath(dir string, summary domain.RunSummary, ext string) string {
	return filepath.Join(dir, FileName(summary, ext))
}

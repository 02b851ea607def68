package exporter

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"UltraCampScraper/internal/domain"
)

type stubExporter struct{ name string }

func (s stubExporter) Format() string    { return s.name }
func (s stubExporter) Extension() string { return s.name }
func (s stubExporter) Export(context.Context, Request) (string, error) {
	return s.name, nil
}

func registry() *Registry {
	reg := NewRegistry()
	for _, name := range []string{"yaml", "csv", "ics", "sqlite"} {
		reg.Register(stubExporter{name: name})
	}
	return reg
}

func TestResolve(t *testing.T) {
	t.Parallel()

	reg := registry()
	e, err := reg.Resolve("ics")
	require.NoError(t, err)
	assert.Equal(t, "ics", e.Format())

	_, err = reg.Resolve("xlsx")
	assert.Error(t, err)

	var zero Registry
	zero.Register(stubExporter{name: "csv"})
	_, err = zero.Resolve("csv")
	assert.NoError(t, err)
}

func TestExpand(t *testing.T) {
	t.Parallel()

	reg := registry()
	assert.Equal(t, []string{"yaml", "csv"}, reg.Expand([]string{"both"}))
	assert.Equal(t, []string{"csv", "ics", "sqlite", "yaml"}, reg.Expand([]string{"all"}))
	assert.Equal(t, []string{"ics", "yaml", "csv"}, reg.Expand([]string{" ICS ", "both", "yaml", ""}))
	assert.Equal(t, []string{"xlsx"}, reg.Expand([]string{"xlsx"}))
}

func TestFileName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "enrichment-all.yaml", FileName(domain.RunSummary{}, "yaml"))

	summary := domain.RunSummary{Config: domain.ScrapeConfig{GradeFilter: "3rd"}}
	assert.Equal(t, "enrichment-3rd.csv", FileName(summary, "csv"))
	assert.Equal(t, filepath.Join("out", "enrichment-3rd.ics"), OutputPath("out", summary, "ics"))
}

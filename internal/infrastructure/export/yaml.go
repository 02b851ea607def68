package export

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"UltraCampScraper/internal/domain"
	"UltraCampScraper/internal/exporter"
)

// scrapedAtLayout matches the millisecond ISO-8601 stamps of earlier exports.
const scrapedAtLayout = "2006-01-02T15:04:05.000Z07:00"

// Metadata describes the run that produced an export.
type Metadata struct {
	ScrapedAt    string `yaml:"scrapedAt"`
	CampID       int    `yaml:"campId"`
	CampCode     string `yaml:"campCode"`
	LocationID   int    `yaml:"locationId"`
	GradeFilter  string `yaml:"gradeFilter,omitempty"`
	TotalClasses int    `yaml:"totalClasses"`
}

// Document is the top-level shape of a YAML export.
type Document struct {
	Metadata Metadata                `yaml:"metadata"`
	Classes  []domain.EnrichedRecord `yaml:"classes"`
}

// NewMetadata derives export metadata from a run summary.
func NewMetadata(summary domain.RunSummary, total int) Metadata {
	return Metadata{
		ScrapedAt:    summary.ScrapedAt.UTC().Format(scrapedAtLayout),
		CampID:       summary.Config.CampID,
		CampCode:     summary.Config.CampCode,
		LocationID:   summary.Config.LocationID,
		GradeFilter:  summary.Config.GradeFilter,
		TotalClasses: total,
	}
}

// YAMLExporter writes {metadata, classes} documents.
type YAMLExporter struct{}

func (YAMLExporter) Format() string    { return "yaml" }
func (YAMLExporter) Extension() string { return "yaml" }

func (e YAMLExporter) Export(_ context.Context, req exporter.Request) (string, error) {
	classes := req.Records
	if classes == nil {
		classes = []domain.EnrichedRecord{}
	}

	doc := Document{
		Metadata: NewMetadata(req.Summary, len(classes)),
		Classes:  classes,
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return "", fmt.Errorf("encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("encode yaml: %w", err)
	}

	if err := ensureDir(req.Dir); err != nil {
		return "", err
	}
	path := exporter.OutputPath(req.Dir, req.Summary, e.Extension())
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

// ReadYAML loads a document written by YAMLExporter.
func ReadYAML(path string) (Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("read %s: %w", path, err)
	}

	var doc Document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return Document{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return doc, nil
}

// ScrapedAtTime parses the metadata timestamp; the zero time is returned when it is malformed.
func (m Metadata) ScrapedAtTime() time.Time {
	t, err := time.Parse(scrapedAtLayout, m.ScrapedAt)
	if err != nil {
		return time.Time{}
	}
	return t
}

package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"UltraCampScraper/internal/domain"
	"UltraCampScraper/internal/infrastructure/parser"
)

const base = "https://camp.test/info/"

type fakeFetcher struct {
	mu     sync.Mutex
	pages  map[string]string
	calls  []string
	cancel func()
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	f.calls = append(f.calls, url)
	if f.cancel != nil {
		f.cancel()
	}
	body, ok := f.pages[url]
	if !ok {
		return "", fmt.Errorf("fetch %s failed after 3 attempts: unexpected status 503", url)
	}
	return body, nil
}

func listingURL(t *testing.T) string {
	t.Helper()
	u, err := parser.BuildListingURL(base, 502, "cis", 5710)
	require.NoError(t, err)
	return u
}

func newPipeline(f *fakeFetcher) *Pipeline {
	return NewPipeline(PipelineDeps{
		Fetcher:       f,
		ListingParser: parser.NewListingParser(base, nil),
		DetailParser:  parser.NewDetailParser(nil),
		Now:           func() time.Time { return time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC) },
	})
}

func scrapeConfig(grade string) domain.ScrapeConfig {
	return domain.ScrapeConfig{CampID: 502, CampCode: "cis", LocationID: 5710, GradeFilter: grade}
}

func detailPage(instructor, day string) string {
	return `<html><body>
<div>Instructor Name: ` + instructor + `</div>
<div>` + day + `: (10 classes) Jan 14 - Mar 18</div>
<div>Children practice drawing and painting with many media.</div>
<div>Time: 3:30 PM - 4:30 PM</div>
<div>Dates: 1/14/2026 - 3/18/2026</div>
</body></html>`
}

func TestRunSkipsExtendedCareAndFilteredGrades(t *testing.T) {
	t.Parallel()

	f := &fakeFetcher{pages: map[string]string{}}
	f.pages[listingURL(t)] = `<table>
<tr><td><a href="sessionDetail.aspx?idSession=1">Chess Club</a> Grades 3rd - 5th</td></tr>
<tr><td><a href="sessionDetail.aspx?idSession=2">Kindergarten Extended Care</a> Grade K</td></tr>
</table>`

	records, summary, err := newPipeline(f).Run(context.Background(), scrapeConfig("K"))
	require.NoError(t, err)

	assert.Empty(t, records)
	assert.Equal(t, 2, summary.ListingsFound)
	assert.Equal(t, 0, summary.FilteredCount)
	assert.Equal(t, 1, summary.ExtendedCareSkipped)
	assert.Equal(t, 0, summary.SuccessCount)
	assert.Equal(t, 0, summary.FailureCount)
	assert.Equal(t, []string{listingURL(t)}, f.calls)
}

func TestRunEnrichesAndCountsFailures(t *testing.T) {
	t.Parallel()

	f := &fakeFetcher{pages: map[string]string{}}
	f.pages[listingURL(t)] = `<table>
<tr><td><a href="sessionDetail.aspx?idSession=1">Art Studio</a> Grades K - 2nd</td></tr>
<tr><td><a href="sessionDetail.aspx?idSession=2">Robotics</a> Grades 1st - 5th</td></tr>
<tr><td><a href="sessionDetail.aspx?idSession=3">Blank Page</a> Grades 1st - 3rd</td></tr>
<tr><td><a href="sessionDetail.aspx?idSession=4">Missing Page</a> Grades 1st - 3rd</td></tr>
<tr><td><a href="sessionDetail.aspx?idSession=5">Middle School Debate</a> Grades 6th - 8th</td></tr>
</table>`
	f.pages[base+"sessionDetail.aspx?idSession=1"] = detailPage("Pat Kim", "Monday")
	f.pages[base+"sessionDetail.aspx?idSession=2"] = detailPage("Lee Chan", "Thursday")
	f.pages[base+"sessionDetail.aspx?idSession=3"] = "<html><body></body></html>"

	cfg := scrapeConfig("1st")
	records, summary, err := newPipeline(f).Run(context.Background(), cfg)
	require.NoError(t, err)

	require.Len(t, records, 3)
	assert.Equal(t, "Art Studio", records[0].Name)
	assert.Equal(t, "1", records[0].SessionID)
	assert.Equal(t, "Pat Kim", records[0].Instructor)
	assert.Equal(t, "Monday", records[0].DayOfWeek)
	assert.Equal(t, "Robotics", records[1].Name)
	assert.Equal(t, "Thursday", records[1].DayOfWeek)
	assert.Equal(t, "3:30 PM - 4:30 PM", records[1].Time)
	assert.Equal(t, "Blank Page", records[2].Name)
	assert.Equal(t, "Unknown", records[2].Instructor)
	assert.Equal(t, parser.CanonicalLocation, records[2].Location)

	assert.Equal(t, 5, summary.ListingsFound)
	assert.Equal(t, 4, summary.FilteredCount)
	assert.Equal(t, 3, summary.SuccessCount)
	assert.Equal(t, 1, summary.FailureCount)
	assert.Equal(t, cfg, summary.Config)
	assert.Equal(t, time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC), summary.ScrapedAt)

	// one listing fetch and one fetch per remaining stub, in order
	require.Len(t, f.calls, 5)
	assert.Equal(t, base+"sessionDetail.aspx?idSession=4", f.calls[4])
}

func TestRunFailsWhenListingUnreachable(t *testing.T) {
	t.Parallel()

	f := &fakeFetcher{pages: map[string]string{}}
	_, _, err := newPipeline(f).Run(context.Background(), scrapeConfig(""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch listing")
}

func TestRunStopsWhenCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	f := &fakeFetcher{pages: map[string]string{}, cancel: cancel}
	f.pages[listingURL(t)] = `<p><a href="sessionDetail.aspx?idSession=1">Art</a> Grade K</p>
<p><a href="sessionDetail.aspx?idSession=2">Chess</a> Grade K</p>`

	records, _, err := newPipeline(f).Run(ctx, scrapeConfig(""))
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Empty(t, records)
	assert.Len(t, f.calls, 1)
}

func TestRunRequiresCollaborators(t *testing.T) {
	t.Parallel()

	_, _, err := NewPipeline(PipelineDeps{}).Run(context.Background(), scrapeConfig(""))
	assert.Error(t, err)
}

package parser

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const listingHTML = `
<html><body>
<table>
  <tr><td><a href="sessionDetail.aspx?idCamp=502&amp;campCode=cis&amp;idSession=12345">  Robotics
      Lab </a> Grades 2nd - 5th $425.00</td></tr>
  <tr><td><a href="https://www.ultracamp.com/info/sessionDetail.aspx?idSession=777">Chess Club</a> Grade K</td></tr>
  <tr><td><a href="sessionDetail.aspx?idCamp=502">   </a> Grades 1st - 2nd</td></tr>
  <tr><td><a href="sessionDetail.aspx?foo=1">Art Studio</a> Grades 10th - 12th, all welcome</td></tr>
  <tr><td><a href="sessionDetail.aspx?idSession=12345">Robotics Lab</a> Grades 2nd - 5th</td></tr>
  <tr><td><a href="/about.aspx">About</a></td></tr>
</table>
</body></html>`

func TestParseListing(t *testing.T) {
	t.Parallel()

	p := NewListingParser("", nil)
	stubs, err := p.ParseListing(listingHTML)
	require.NoError(t, err)
	require.Len(t, stubs, 4)

	assert.Equal(t, "Robotics Lab", stubs[0].Name)
	assert.Equal(t, "Grades 2nd - 5th", stubs[0].GradeRange)
	assert.Equal(t, "12345", stubs[0].SessionID)
	assert.Equal(t, "https://www.ultracamp.com/info/sessionDetail.aspx?idCamp=502&campCode=cis&idSession=12345", stubs[0].DetailURL)

	assert.Equal(t, "Chess Club", stubs[1].Name)
	assert.Equal(t, "Grade K", stubs[1].GradeRange)
	assert.Equal(t, "777", stubs[1].SessionID)
	assert.Equal(t, "https://www.ultracamp.com/info/sessionDetail.aspx?idSession=777", stubs[1].DetailURL)

	assert.Equal(t, "Art Studio", stubs[2].Name)
	assert.Empty(t, stubs[2].SessionID)
	assert.Empty(t, stubs[2].GradeRange)

	// duplicates are passed through untouched
	assert.Equal(t, stubs[0].SessionID, stubs[3].SessionID)
}

func TestParseListingCustomBase(t *testing.T) {
	t.Parallel()

	p := NewListingParser("http://127.0.0.1:8080/info", nil)
	stubs, err := p.ParseListing(`<p><a href="/sessionDetail.aspx?idSession=9">Drama</a> Grades TK - K</p>`)
	require.NoError(t, err)
	require.Len(t, stubs, 1)
	assert.Equal(t, "http://127.0.0.1:8080/info/sessionDetail.aspx?idSession=9", stubs[0].DetailURL)
	assert.Equal(t, "Grades TK - K", stubs[0].GradeRange)
}

func TestParseListingEmpty(t *testing.T) {
	t.Parallel()

	stubs, err := NewListingParser("", nil).ParseListing("<html><body><p>No sessions</p></body></html>")
	require.NoError(t, err)
	assert.Empty(t, stubs)
}

func TestBuildListingURL(t *testing.T) {
	t.Parallel()

	u, err := BuildListingURL("", 502, "cis", 5710)
	require.NoError(t, err)

	parsed, err := url.Parse(u)
	require.NoError(t, err)
	assert.Equal(t, "www.ultracamp.com", parsed.Host)
	assert.Equal(t, "/info/upcomingSessions.aspx", parsed.Path)

	q := parsed.Query()
	assert.Equal(t, "502", q.Get("idCamp"))
	assert.Equal(t, "cis", q.Get("campCode"))
	assert.Equal(t, "5710", q.Get("idLocation"))
}

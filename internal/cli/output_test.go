package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nycstandup/showcatalog/internal/fetch"
	"github.com/nycstandup/showcatalog/internal/scraper"
	"github.com/nycstandup/showcatalog/internal/show"
)

func sampleShows() []show.Record {
	return []show.Record{
		{Venue: "Comedy Cellar", Neighborhood: "Greenwich Village", Title: "Late Show", ShowDate: "2026-02-27", ShowTime: "9:30 PM", Price: "$25", Comedians: "Mark Normand", TicketLink: "https://www.comedycellar.com/"},
		{Venue: "Gotham Comedy Club", Title: "Early Show", ShowDate: "2026-02-27", ShowTime: "7:00 PM", Price: "See website", Comedians: "Various"},
		{Venue: "Stand Up NY", Title: "Mystery Show", Price: "Free", Comedians: "Various"},
	}
}

func TestWriteShowsText(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteShows(&buf, sampleShows(), FormatText, ShowsOptions{Verbose: true}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	for _, want := range []string{
		"Fri, Feb 27 2026 (2 shows):",
		"   9:30 PM  Late Show @ Comedy Cellar (Greenwich Village)  $25",
		"With: Mark Normand",
		"Date TBA (1 show):",
		"       TBA  Mystery Show @ Stand Up NY  Free",
		"Total: 3 shows",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "With: Various") {
		t.Error("the placeholder comedian list should not be printed")
	}
}

func TestWriteShowsEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteShows(&buf, nil, FormatText, ShowsOptions{}); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "No shows found.\n" {
		t.Errorf("output = %q", buf.String())
	}

	buf.Reset()
	if err := WriteShows(&buf, nil, FormatJSON, ShowsOptions{}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"shows": []`) {
		t.Errorf("empty JSON should carry an empty array: %s", buf.String())
	}
}

func TestWriteShowsTableAndICS(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteShows(&buf, sampleShows(), FormatTable, ShowsOptions{}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "Late Show") || !strings.Contains(buf.String(), "Greenwich Village") {
		t.Errorf("table output:\n%s", buf.String())
	}
	if strings.Contains(buf.String(), "\x1b[") {
		t.Error("non-terminal output must not contain color codes")
	}

	buf.Reset()
	loc, _ := time.LoadLocation("America/New_York")
	if err := WriteShows(&buf, sampleShows(), FormatICS, ShowsOptions{Location: loc}); err != nil {
		t.Fatal(err)
	}
	if got := strings.Count(buf.String(), "BEGIN:VEVENT"); got != 2 {
		t.Errorf("ICS events = %d, want 2 (undated show skipped)", got)
	}
}

func TestWriteRunSummary(t *testing.T) {
	result := &scraper.RunResult{
		RunID: "run-1",
		Venues: []scraper.VenueResult{
			{ID: "nycc", Venue: "New York Comedy Club", Transport: fetch.Direct, Records: sampleShows()[:2]},
			{ID: "comedy-cellar", Venue: "Comedy Cellar", Transport: fetch.Rendered, Err: errors.New("blocked: status 403")},
		},
		Records:  sampleShows()[:2],
		Written:  2,
		Replaced: true,
		Diff:     &show.DiffResult{Added: sampleShows()[:1]},
	}

	var buf bytes.Buffer
	if err := WriteRunSummary(&buf, result, FormatText, true); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		"OK   New York Comedy Club",
		"FAIL Comedy Cellar",
		"New: 1  Gone: 0",
		"NEW: 2026-02-27 9:30 PM Late Show @ Comedy Cellar",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
	if !strings.HasSuffix(out, "Total: 2 shows\n") {
		t.Errorf("summary must end with the total line:\n%s", out)
	}
}

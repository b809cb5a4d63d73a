package calendar

import (
	"strings"
	"testing"
	"time"

	"github.com/nycstandup/showcatalog/internal/show"
)

func newYork(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatal(err)
	}
	return loc
}

func testOptions(t *testing.T) Options {
	return Options{
		Name:     "NYC Comedy",
		Location: newYork(t),
		Now:      time.Date(2026, 2, 26, 12, 0, 0, 0, time.UTC),
	}
}

func TestGenerateICS(t *testing.T) {
	r := show.Record{
		Venue:        "Comedy Cellar",
		Title:        "Late Show",
		Comedians:    "Mark Normand, Sam Morril",
		ShowDate:     "2026-02-27",
		ShowTime:     "9:30 PM",
		Price:        "$25",
		TicketLink:   "https://www.comedycellar.com/reservations/?showid=1772245800",
		Neighborhood: "Greenwich Village",
	}

	ics := GenerateICS(r, testOptions(t))

	requiredFields := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//NYC Standup//showcatalog//EN",
		"X-WR-CALNAME:NYC Comedy",
		"X-WR-TIMEZONE:America/New_York",
		"BEGIN:VEVENT",
		"UID:" + show.Key(r) + "@showcatalog",
		"DTSTAMP:20260226T120000Z",
		"DTSTART:20260228T023000Z", // 9:30 PM EST
		"DTEND:20260228T040000Z",
		"SUMMARY:Late Show",
		"LOCATION:Comedy Cellar\\, Greenwich Village",
		"URL:https://www.comedycellar.com/reservations/?showid=1772245800",
		"STATUS:CONFIRMED",
		"END:VEVENT",
		"END:VCALENDAR",
	}
	for _, field := range requiredFields {
		if !strings.Contains(ics, field) {
			t.Errorf("ICS missing field %q:\n%s", field, ics)
		}
	}

	unfolded := strings.ReplaceAll(ics, "\r\n ", "")
	if !strings.Contains(unfolded, `DESCRIPTION:With: Mark Normand\, Sam Morril\nPrice: $25`) {
		t.Errorf("unexpected description:\n%s", unfolded)
	}

	for _, line := range strings.Split(strings.TrimSuffix(ics, "\r\n"), "\r\n") {
		if len(line) > 75 {
			t.Errorf("line longer than 75 octets: %q", line)
		}
	}
}

func TestGenerateICS_DateOnly(t *testing.T) {
	ics := GenerateICS(show.Record{Venue: "Gotham Comedy Club", Title: "Open Mic", ShowDate: "2026-03-01"}, testOptions(t))

	for _, field := range []string{"DTSTART;VALUE=DATE:20260301", "DTEND;VALUE=DATE:20260302"} {
		if !strings.Contains(ics, field) {
			t.Errorf("ICS missing %q", field)
		}
	}
	if strings.Contains(ics, "URL:") {
		t.Error("no URL expected without a ticket link")
	}
}

func TestGenerateICS_NoDate(t *testing.T) {
	if ics := GenerateICS(show.Record{Venue: "Stand Up NY", Title: "Mystery"}, testOptions(t)); ics != "" {
		t.Errorf("expected no calendar for an undated show, got:\n%s", ics)
	}
}

func TestGenerateICS_SpecialCharacters(t *testing.T) {
	r := show.Record{
		Venue:    "The Stand NYC",
		Title:    "Roast; With, Special\\Characters",
		ShowDate: "2026-03-02",
		ShowTime: "8:00 PM",
	}
	ics := GenerateICS(r, testOptions(t))

	if !strings.Contains(ics, `SUMMARY:Roast\; With\, Special\\Characters`) {
		t.Errorf("special characters not escaped:\n%s", ics)
	}
}

func TestGenerateBulkICS(t *testing.T) {
	records := []show.Record{
		{Venue: "Comedy Cellar", Title: "Early Show", ShowDate: "2026-02-27", ShowTime: "7:00 PM"},
		{Venue: "Comedy Cellar", Title: "Late Show", ShowDate: "2026-02-27", ShowTime: "9:30 PM"},
		{Venue: "Stand Up NY", Title: "Undated"},
		{Venue: "Gotham Comedy Club", Title: "Sunday Showcase", ShowDate: "2026-03-01"},
	}

	ics := GenerateBulkICS(records, testOptions(t))

	if got := strings.Count(ics, "BEGIN:VEVENT"); got != 3 {
		t.Errorf("BEGIN:VEVENT count = %d, want 3", got)
	}
	if got := strings.Count(ics, "END:VEVENT"); got != 3 {
		t.Errorf("END:VEVENT count = %d, want 3", got)
	}
	if strings.Count(ics, "BEGIN:VCALENDAR") != 1 {
		t.Error("bulk output should be a single calendar")
	}
	for _, r := range records[:2] {
		if !strings.Contains(ics, "UID:"+show.Key(r)+"@showcatalog") {
			t.Errorf("missing UID for %q", r.Title)
		}
	}
}

func TestGenerateBulkICS_Empty(t *testing.T) {
	ics := GenerateBulkICS(nil, Options{})
	if !strings.Contains(ics, "BEGIN:VCALENDAR") || strings.Contains(ics, "BEGIN:VEVENT") {
		t.Errorf("unexpected empty calendar:\n%s", ics)
	}
	if strings.Contains(ics, "X-WR-CALNAME") || strings.Contains(ics, "X-WR-TIMEZONE") {
		t.Error("default options should not name the calendar")
	}
}

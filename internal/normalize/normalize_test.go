package normalize

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/nycstandup/showcatalog/internal/show"
)

var cellar = show.Venue{
	Name:         "Comedy Cellar",
	Address:      "117 MacDougal St, New York, NY 10012",
	Neighborhood: "Greenwich Village",
	URL:          "https://www.comedycellar.com/",
}

func TestNormalizeDefaults(t *testing.T) {
	rec := Normalize(show.Partial{}, cellar, Options{})

	if rec.Venue != "Comedy Cellar" {
		t.Errorf("Venue = %q", rec.Venue)
	}
	if rec.Title != show.DefaultTitle {
		t.Errorf("Title = %q, want %q", rec.Title, show.DefaultTitle)
	}
	if rec.Comedians != show.DefaultComedians {
		t.Errorf("Comedians = %q, want %q", rec.Comedians, show.DefaultComedians)
	}
	if rec.Price != show.PriceUnknown {
		t.Errorf("Price = %q, want %q", rec.Price, show.PriceUnknown)
	}
	if rec.TicketLink != cellar.URL {
		t.Errorf("TicketLink = %q, want venue URL", rec.TicketLink)
	}
	if rec.ShowType != show.DefaultShowType {
		t.Errorf("ShowType = %q", rec.ShowType)
	}
	if rec.Neighborhood != "Greenwich Village" {
		t.Errorf("Neighborhood = %q", rec.Neighborhood)
	}
	if rec.ShowDate != "" || rec.ShowTime != "" {
		t.Errorf("unresolved date rendered as %q %q", rec.ShowDate, rec.ShowTime)
	}
}

func TestNormalizeFields(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatal(err)
	}
	var p show.Partial
	p.Title = "  Mark   Normand\n ft: Sam Morril "
	p.Comedians = " Mark Normand,  Sam Morril "
	p.Price = " $25 "
	p.TicketLink = "/reservations/?showid=1772240400"
	p.Description = "  Late set  "
	p.Stamp(time.Date(2026, time.February, 27, 21, 30, 0, 0, loc), true)

	rec := Normalize(p, cellar, Options{})

	tests := []struct {
		field, got, want string
	}{
		{"title", rec.Title, "Mark Normand ft: Sam Morril"},
		{"comedians", rec.Comedians, "Mark Normand, Sam Morril"},
		{"price", rec.Price, "$25"},
		{"link", rec.TicketLink, "https://www.comedycellar.com/reservations/?showid=1772240400"},
		{"description", rec.Description, "Late set"},
		{"date", rec.ShowDate, "2026-02-27"},
		{"time", rec.ShowTime, "9:30 PM"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %q, want %q", tt.field, tt.got, tt.want)
		}
	}
}

func TestNormalizeDateOnly(t *testing.T) {
	var p show.Partial
	p.Stamp(time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC), false)

	rec := Normalize(p, cellar, Options{})
	if rec.ShowDate != "2026-03-02" {
		t.Errorf("ShowDate = %q", rec.ShowDate)
	}
	if rec.ShowTime != "" {
		t.Errorf("ShowTime = %q, want empty", rec.ShowTime)
	}
}

func TestNormalizeTitleTruncation(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  int
	}{
		{"short", "Late Show", 9},
		{"exact", strings.Repeat("a", 60), 60},
		{"long", strings.Repeat("b", 120), 60},
		{"multibyte", strings.Repeat("é", 75), 60},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := Normalize(show.Partial{Title: tt.title}, cellar, Options{})
			if n := utf8.RuneCountInString(rec.Title); n != tt.want {
				t.Errorf("title length = %d, want %d", n, tt.want)
			}
		})
	}
}

func TestNormalizeNeighborhoodFallback(t *testing.T) {
	v := show.Venue{Name: "Pop Up", URL: "https://popup.example.com/"}

	rec := Normalize(show.Partial{}, v, Options{Neighborhood: "Bushwick"})
	if rec.Neighborhood != "Bushwick" {
		t.Errorf("Neighborhood = %q, want option fallback", rec.Neighborhood)
	}

	rec = Normalize(show.Partial{}, cellar, Options{Neighborhood: "Bushwick"})
	if rec.Neighborhood != "Greenwich Village" {
		t.Errorf("Neighborhood = %q, venue should win", rec.Neighborhood)
	}
}

func TestAll(t *testing.T) {
	recs := All([]show.Partial{{Title: "One"}, {Title: "Two"}}, cellar, Options{})
	if len(recs) != 2 || recs[0].Title != "One" || recs[1].Title != "Two" {
		t.Errorf("All() = %+v", recs)
	}
}

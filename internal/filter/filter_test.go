package filter

import (
	"strings"
	"testing"
	"time"

	"github.com/nycstandup/showcatalog/internal/show"
)

func day(s string) *time.Time {
	t, err := time.Parse(show.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return &t
}

func catalog() []show.Record {
	return []show.Record{
		{Venue: "Comedy Cellar", Neighborhood: "Greenwich Village", Title: "Late Show", Comedians: "Mark Normand, Sam Morril", ShowDate: "2026-02-27", Price: "$25"}, // Friday
		{Venue: "Gotham Comedy Club", Neighborhood: "Chelsea", Title: "Gotham All Stars", Comedians: "Various", ShowDate: "2026-03-03", Price: "$20 - $35"},          // Tuesday
		{Venue: "Stand Up NY", Neighborhood: "Upper West Side", Title: "Open Mic", Comedians: "Various", ShowDate: "2026-03-01", Price: "Free"},                      // Sunday
		{Venue: "The Stand NYC", Neighborhood: "Gramercy", Title: "Mystery Lineup", Comedians: "Various", Price: "See website"},
	}
}

func titles(rs []show.Record) string {
	var out []string
	for _, r := range rs {
		out = append(out, r.Title)
	}
	return strings.Join(out, ",")
}

func TestFilterApply(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		want   string
	}{
		{"empty", Filter{}, "Late Show,Gotham All Stars,Open Mic,Mystery Lineup"},
		{"search comedian", Filter{Terms: []string{"normand"}}, "Late Show"},
		{"search title", Filter{Terms: []string{"mic", "all stars"}}, "Gotham All Stars,Open Mic"},
		{"venue substring", Filter{Venues: []string{"comedy"}}, "Late Show,Gotham All Stars"},
		{"neighborhood", Filter{Neighborhoods: []string{"chelsea"}}, "Gotham All Stars"},
		{"weekends", Filter{WeekendsOnly: true}, "Late Show,Open Mic"},
		{"date from", Filter{DateFrom: day("2026-03-01")}, "Gotham All Stars,Open Mic"},
		{"date range", Filter{DateFrom: day("2026-02-27"), DateTo: day("2026-03-01")}, "Late Show,Open Mic"},
		{"max price", Filter{MaxPrice: 22}, "Gotham All Stars,Open Mic"},
		{"free only", Filter{FreeOnly: true}, "Open Mic"},
		{"combined", Filter{WeekendsOnly: true, MaxPrice: 30, Venues: []string{"cellar"}}, "Late Show"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := titles(tt.filter.Apply(catalog())); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		in     string
		want   float64
		wantOK bool
	}{
		{"$25", 25, true},
		{"25.50", 25.5, true},
		{"Free", 0, true},
		{"$20 - $35", 20, true},
		{"$1,000", 1000, true},
		{"See website", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParsePrice(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParsePrice(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestFilterString(t *testing.T) {
	if got := NewFilter().String(); got != "No active filters" {
		t.Errorf("empty = %q", got)
	}
	f := Filter{DateFrom: day("2026-03-01"), Terms: []string{"normand"}, WeekendsOnly: true, MaxPrice: 30}
	want := "From: Mar 1, 2026 | Search: normand | Weekends only | Max price: $30.00"
	if got := f.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

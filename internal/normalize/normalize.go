package normalize

import (
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/nycstandup/showcatalog/internal/show"
)

// Options adjusts normalization for one venue.
type Options struct {
	// Neighborhood is used when the venue itself has none.
	Neighborhood string
}

// Normalize converts a candidate into a record for venue v.
func Normalize(p show.Partial, v show.Venue, opts Options) show.Record {
	rec := show.Record{
		Venue:        strings.TrimSpace(v.Name),
		Title:        truncate(collapse(p.Title), show.TitleMaxLen),
		Comedians:    collapse(p.Comedians),
		Price:        strings.TrimSpace(p.Price),
		TicketLink:   ticketLink(p.TicketLink, v.URL),
		Description:  strings.TrimSpace(p.Description),
		Neighborhood: strings.TrimSpace(v.Neighborhood),
		ShowType:     strings.TrimSpace(p.ShowType),
		ShowDate:     p.Date(),
		ShowTime:     p.Clock(),
	}

	if rec.Title == "" {
		rec.Title = show.DefaultTitle
	}
	if rec.Comedians == "" {
		rec.Comedians = show.DefaultComedians
	}
	if rec.Price == "" {
		rec.Price = show.PriceUnknown
	}
	if rec.ShowType == "" {
		rec.ShowType = show.DefaultShowType
	}
	if rec.Neighborhood == "" {
		rec.Neighborhood = strings.TrimSpace(opts.Neighborhood)
	}
	return rec
}

// All normalizes every candidate in order.
func All(parts []show.Partial, v show.Venue, opts Options) []show.Record {
	out := make([]show.Record, 0, len(parts))
	for _, p := range parts {
		out = append(out, Normalize(p, v, opts))
	}
	return out
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncate cuts s to at most n characters, trimming any trailing space left
// at the cut.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return strings.TrimSpace(string(r[:n]))
}

// ticketLink resolves link against the venue URL, falling back to the venue
// URL when link is empty.
func ticketLink(link, venueURL string) string {
	link = strings.TrimSpace(link)
	venueURL = strings.TrimSpace(venueURL)
	if link == "" {
		return venueURL
	}
	ref, err := url.Parse(link)
	if err != nil || ref.IsAbs() {
		return link
	}
	base, err := url.Parse(venueURL)
	if err != nil || !base.IsAbs() {
		return link
	}
	return base.ResolveReference(ref).String()
}

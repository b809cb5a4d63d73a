package venue

import (
	"fmt"
	"strings"
	"time"

	"github.com/nycstandup/showcatalog/internal/browser"
	"github.com/nycstandup/showcatalog/internal/extract"
	"github.com/nycstandup/showcatalog/internal/fetch"
	"github.com/nycstandup/showcatalog/internal/show"
)

// Source describes how to obtain shows for one venue.
type Source struct {
	ID        string
	Venue     show.Venue
	PageURL   string // listing page; the venue URL when empty
	Transport fetch.Transport
	Strategy  extract.Kind
	Extract   extract.Config
	Wait      browser.WaitCondition
	Disabled  bool
}

// ListingURL returns the page to fetch.
func (s Source) ListingURL() string {
	if s.PageURL != "" {
		return s.PageURL
	}
	return s.Venue.URL
}

// Validate checks that the source can be scraped.
func (s Source) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("venue id is required")
	}
	if s.Venue.Name == "" {
		return fmt.Errorf("venue %s: name is required", s.ID)
	}
	if s.ListingURL() == "" {
		return fmt.Errorf("venue %s: url is required", s.ID)
	}
	if _, err := fetch.ParseTransport(string(s.Transport)); err != nil {
		return fmt.Errorf("venue %s: %w", s.ID, err)
	}
	if _, err := extract.ParseKind(string(s.Strategy)); err != nil {
		return fmt.Errorf("venue %s: %w", s.ID, err)
	}
	if s.Strategy == extract.DomHeuristic && s.Extract.HrefPattern == "" {
		return fmt.Errorf("venue %s: dom-heuristic needs href_pattern", s.ID)
	}
	if err := s.Extract.Validate(); err != nil {
		return fmt.Errorf("venue %s: %w", s.ID, err)
	}
	return nil
}

// Builtin returns the sources the catalog ships with.
func Builtin() []Source {
	return []Source{
		{
			ID: "nycc",
			Venue: show.Venue{
				Name:         "New York Comedy Club",
				Address:      "85 E 4th St, New York, NY 10003",
				Neighborhood: "East Village",
				URL:          "https://newyorkcomedyclub.com/",
			},
			Transport: fetch.Direct,
			Strategy:  extract.StructuredData,
		},
		{
			ID: "comedy-cellar",
			Venue: show.Venue{
				Name:         "Comedy Cellar",
				Address:      "117 MacDougal St, New York, NY 10012",
				Neighborhood: "Greenwich Village",
				URL:          "https://www.comedycellar.com/",
			},
			PageURL:   "https://www.comedycellar.com/new-york-line-up/",
			Transport: fetch.Rendered,
			Strategy:  extract.DomHeuristic,
			Extract: extract.Config{
				HrefPattern:      `showid=\d+`,
				HrefEpochParam:   "showid",
				DefaultTitle:     "Comedy Cellar Show",
				DefaultComedians: show.DefaultComedians,
				MaxCandidates:    40,
			},
			Wait: browser.WaitCondition{Settle: 5 * time.Second},
		},
		{
			ID: "gotham",
			Venue: show.Venue{
				Name:         "Gotham Comedy Club",
				Address:      "208 W 23rd St, New York, NY 10011",
				Neighborhood: "Chelsea",
				URL:          "https://gothamcomedyclub.com/",
			},
			Transport: fetch.Rendered,
			Strategy:  extract.DomHeuristic,
			Extract: extract.Config{
				HrefPattern:     `/event/`,
				DatePattern:     extract.DateWeekdayMonthDay,
				MaxHops:         3,
				DefaultShowTime: "8:00 PM",
				MinTextLen:      4,
				MaxTextLen:      79,
				MaxCandidates:   30,
			},
			Wait: browser.WaitCondition{Settle: 3 * time.Second},
		},
		{
			ID: "standup-ny",
			Venue: show.Venue{
				Name:         "Stand Up NY",
				Address:      "236 W 78th St, New York, NY 10024",
				Neighborhood: "Upper West Side",
				URL:          "https://standupny.com/",
			},
			Transport: fetch.Rendered,
			Strategy:  extract.FreeText,
			Extract: extract.Config{
				DefaultTitle:  "Stand Up NY Show",
				MaxCandidates: 15,
			},
			Wait: browser.WaitCondition{Settle: 3 * time.Second},
		},
		{
			ID: "the-stand",
			Venue: show.Venue{
				Name:         "The Stand NYC",
				Address:      "116 E 16th St, New York, NY 10003",
				Neighborhood: "Gramercy",
				URL:          "https://thestandnyc.com/",
			},
			PageURL:   "https://thestandnyc.com/shows",
			Transport: fetch.Rendered,
			Strategy:  extract.DomHeuristic,
			Extract: extract.Config{
				HrefPattern:     `/shows/show/`,
				DatePattern:     extract.DateCompactPipe,
				MonthNameTable:  "short",
				MaxHops:         10,
				DefaultShowTime: "8:00 PM",
				MaxCandidates:   30,
			},
			Wait: browser.WaitCondition{Settle: 2 * time.Second, ScrollY: 2000},
		},
		{
			ID: "broadway",
			Venue: show.Venue{
				Name:         "Broadway Comedy Club",
				Address:      "318 W 53rd St, New York, NY 10019",
				Neighborhood: "Midtown",
				URL:          "https://www.broadwaycomedyclub.com/",
			},
			PageURL:   "https://www.broadwaycomedyclub.com/shows",
			Transport: fetch.Rendered,
			Strategy:  extract.DomHeuristic,
			Extract: extract.Config{
				HrefPattern:     `/shows/|/event/`,
				DatePattern:     extract.DateWeekdayMonthDay,
				MaxHops:         5,
				DefaultShowTime: "8:00 PM",
				MaxCandidates:   30,
			},
			Wait: browser.WaitCondition{Settle: 3 * time.Second},
		},
	}
}

// normalizeID lowercases an id and turns spaces into dashes.
func normalizeID(id string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(id)), " ", "-")
}

package cli

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/nycstandup/showcatalog/internal/show"
)

// SortOrder represents the available sorting options
type SortOrder string

const (
	SortByDate  SortOrder = "date"
	SortByVenue SortOrder = "venue"
	SortByTitle SortOrder = "title"
)

func parseSortOrder(s string) (SortOrder, error) {
	switch o := SortOrder(strings.ToLower(strings.TrimSpace(s))); o {
	case SortByDate, SortByVenue, SortByTitle:
		return o, nil
	case "":
		return SortByDate, nil
	default:
		return "", fmt.Errorf("invalid sort order: %s (must be 'date', 'venue' or 'title')", s)
	}
}

// sortShows sorts shows in place. Every order is stable.
func sortShows(shows []show.Record, order SortOrder) {
	switch order {
	case SortByDate:
		sort.SliceStable(shows, func(i, j int) bool {
			return compareByDate(shows[i], shows[j])
		})
	case SortByVenue:
		sort.SliceStable(shows, func(i, j int) bool {
			if !strings.EqualFold(shows[i].Venue, shows[j].Venue) {
				return strings.ToLower(shows[i].Venue) < strings.ToLower(shows[j].Venue)
			}
			return compareByDate(shows[i], shows[j])
		})
	case SortByTitle:
		sort.SliceStable(shows, func(i, j int) bool {
			if !strings.EqualFold(shows[i].Title, shows[j].Title) {
				return strings.ToLower(shows[i].Title) < strings.ToLower(shows[j].Title)
			}
			return compareByDate(shows[i], shows[j])
		})
	}
}

// compareByDate orders dated shows first, by date then time of day; a show
// without a time sorts after the timed shows of its date.
func compareByDate(a, b show.Record) bool {
	if a.ShowDate != b.ShowDate {
		switch {
		case a.ShowDate == "":
			return false
		case b.ShowDate == "":
			return true
		}
		return a.ShowDate < b.ShowDate
	}

	ma, okA := minutes(a.ShowTime)
	mb, okB := minutes(b.ShowTime)
	switch {
	case okA && okB:
		return ma < mb
	case okA != okB:
		return okA
	}
	return false
}

func minutes(clock string) (int, bool) {
	t, err := time.Parse(show.ClockLayout, strings.ToUpper(strings.TrimSpace(clock)))
	if err != nil {
		return 0, false
	}
	return t.Hour()*60 + t.Minute(), true
}

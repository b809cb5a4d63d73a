// Package filter refines catalog listings beyond what the store query
// supports:
//   - Date ranges (from/to dates, parsed from "Mar 1-15" style input)
//   - Search terms (substring of title or comedians, case-insensitive)
//   - Venues and neighborhoods (substring matching, case-insensitive)
//   - Weekends only (Friday through Sunday)
//   - Maximum price, or free shows only
//
// Example usage:
//
//	f := filter.NewFilter()
//	f.WeekendsOnly = true
//	f.Terms = []string{"Normand"}
//	filtered := f.Apply(shows)
package filter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/nycstandup/showcatalog/internal/show"
)

// Filter represents show filtering criteria
type Filter struct {
	// Date range filtering, inclusive
	DateFrom *time.Time `json:"date_from,omitempty"`
	DateTo   *time.Time `json:"date_to,omitempty"`

	// Terms match the title or comedians (case-insensitive substring)
	Terms []string `json:"terms,omitempty"`

	// Venue and neighborhood filtering (case-insensitive substring)
	Venues        []string `json:"venues,omitempty"`
	Neighborhoods []string `json:"neighborhoods,omitempty"`

	// WeekendsOnly keeps Friday, Saturday and Sunday shows
	WeekendsOnly bool `json:"weekends_only,omitempty"`

	// MaxPrice drops shows known to cost more, and shows with no listed
	// price. Zero disables the check.
	MaxPrice float64 `json:"max_price,omitempty"`
	FreeOnly bool    `json:"free_only,omitempty"`
}

// NewFilter creates a new empty filter with no active criteria.
func NewFilter() *Filter {
	return &Filter{}
}

// IsEmpty checks if the filter has any active criteria.
func (f *Filter) IsEmpty() bool {
	return f.DateFrom == nil &&
		f.DateTo == nil &&
		len(f.Terms) == 0 &&
		len(f.Venues) == 0 &&
		len(f.Neighborhoods) == 0 &&
		!f.WeekendsOnly &&
		f.MaxPrice == 0 &&
		!f.FreeOnly
}

// Matches checks if a show matches all active filter criteria. Shows with no
// date fail every date-based criterion.
func (f *Filter) Matches(r show.Record) bool {
	if f.IsEmpty() {
		return true
	}

	if f.DateFrom != nil || f.DateTo != nil || f.WeekendsOnly {
		day, err := time.Parse(show.DateLayout, r.ShowDate)
		if err != nil {
			return false
		}
		if f.DateFrom != nil && day.Before(dateOf(*f.DateFrom)) {
			return false
		}
		if f.DateTo != nil && day.After(dateOf(*f.DateTo)) {
			return false
		}
		if f.WeekendsOnly {
			switch day.Weekday() {
			case time.Friday, time.Saturday, time.Sunday:
			default:
				return false
			}
		}
	}

	if len(f.Terms) > 0 && !containsAny(r.Title+"\n"+r.Comedians, f.Terms) {
		return false
	}
	if len(f.Venues) > 0 && !containsAny(r.Venue, f.Venues) {
		return false
	}
	if len(f.Neighborhoods) > 0 && !containsAny(r.Neighborhood, f.Neighborhoods) {
		return false
	}

	if f.FreeOnly || f.MaxPrice > 0 {
		price, ok := ParsePrice(r.Price)
		if !ok {
			return false
		}
		if f.FreeOnly && price != 0 {
			return false
		}
		if f.MaxPrice > 0 && price > f.MaxPrice {
			return false
		}
	}

	return true
}

// Apply returns the shows matching the filter, preserving order.
func (f *Filter) Apply(shows []show.Record) []show.Record {
	if f.IsEmpty() {
		return shows
	}
	filtered := make([]show.Record, 0, len(shows))
	for _, r := range shows {
		if f.Matches(r) {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// String returns a human-readable description of the active filter criteria.
// Format: "From: Mar 1, 2026 | To: Mar 15, 2026 | Search: normand | Weekends only"
func (f *Filter) String() string {
	if f.IsEmpty() {
		return "No active filters"
	}

	var parts []string
	if f.DateFrom != nil {
		parts = append(parts, "From: "+f.DateFrom.Format("Jan 2, 2006"))
	}
	if f.DateTo != nil {
		parts = append(parts, "To: "+f.DateTo.Format("Jan 2, 2006"))
	}
	if len(f.Terms) > 0 {
		parts = append(parts, "Search: "+strings.Join(f.Terms, ", "))
	}
	if len(f.Venues) > 0 {
		parts = append(parts, "Venues: "+strings.Join(f.Venues, ", "))
	}
	if len(f.Neighborhoods) > 0 {
		parts = append(parts, "Neighborhoods: "+strings.Join(f.Neighborhoods, ", "))
	}
	if f.WeekendsOnly {
		parts = append(parts, "Weekends only")
	}
	if f.FreeOnly {
		parts = append(parts, "Free only")
	}
	if f.MaxPrice > 0 {
		parts = append(parts, fmt.Sprintf("Max price: $%.2f", f.MaxPrice))
	}
	return strings.Join(parts, " | ")
}

// ParsePrice reads a rendered catalog price. "Free" is 0; a range such as
// "$20 - $35" yields its lower bound. ok is false when no amount is listed.
func ParsePrice(price string) (float64, bool) {
	p := strings.TrimSpace(price)
	if show.IsFree(p) {
		return 0, true
	}
	p = strings.TrimPrefix(p, "$")
	if i := strings.IndexAny(p, " -"); i >= 0 {
		p = p[:i]
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(p, ",", ""), 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

func containsAny(haystack string, needles []string) bool {
	h := strings.ToLower(haystack)
	for _, n := range needles {
		if n = strings.TrimSpace(n); n != "" && strings.Contains(h, strings.ToLower(n)) {
			return true
		}
	}
	return false
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

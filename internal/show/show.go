package show

import (
	"strings"
	"time"
)

// Sentinel values used in place of missing fields.
const (
	DefaultTitle     = "Untitled Show"
	DefaultComedians = "Various"
	DefaultShowType  = "show"
	PriceUnknown     = "See website"
	PriceFree        = "Free"

	// TitleMaxLen bounds Record.Title, in characters.
	TitleMaxLen = 60
)

// DateLayout is the ISO calendar date layout used for Record.ShowDate.
const DateLayout = "2006-01-02"

// ClockLayout renders a show time as a localized 12-hour clock, e.g. "8:00 PM".
const ClockLayout = "3:04 PM"

// Venue is a fixed directory entry for a club that lists shows.
type Venue struct {
	Name         string `json:"name" toml:"name"`
	Address      string `json:"address,omitempty" toml:"address"`
	Neighborhood string `json:"neighborhood,omitempty" toml:"neighborhood"`
	URL          string `json:"url,omitempty" toml:"url"`
}

// Record is one listed performance in the catalog.
type Record struct {
	ID           int64     `json:"id"`
	Venue        string    `json:"venue"`
	Title        string    `json:"title"`
	Comedians    string    `json:"comedians"`
	ShowDate     string    `json:"show_date,omitempty"` // YYYY-MM-DD, empty when unresolved
	ShowTime     string    `json:"show_time,omitempty"` // "8:00 PM", empty when unresolved
	Price        string    `json:"price"`
	TicketLink   string    `json:"ticket_link"`
	Description  string    `json:"description,omitempty"`
	Neighborhood string    `json:"neighborhood,omitempty"`
	ShowType     string    `json:"show_type"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}

// Partial is an extracted show candidate. Zero values mean "unknown".
type Partial struct {
	Title       string
	Comedians   string
	Description string
	TicketLink  string
	Price       string
	ShowType    string

	// Start is the resolved instant of the show, zero when the date is unknown.
	Start time.Time
	// HasClock reports whether Start carries a real time of day.
	HasClock bool
}

// Stamp sets the show's start instant.
func (p *Partial) Stamp(start time.Time, hasClock bool) {
	p.Start = start
	p.HasClock = hasClock && !start.IsZero()
}

// Date returns the venue-local calendar date of the show, or "".
func (p *Partial) Date() string {
	if p.Start.IsZero() {
		return ""
	}
	return p.Start.Format(DateLayout)
}

// Clock returns the 12-hour rendering of the show time, or "".
func (p *Partial) Clock() string {
	if !p.HasClock {
		return ""
	}
	return p.Start.Format(ClockLayout)
}

// Filter selects catalog rows. Set fields are combined with AND.
type Filter struct {
	Venue        string
	Neighborhood string
	Date         string // exact YYYY-MM-DD
	Today        bool
	ThisWeekend  bool // today through today+7 days, inclusive
	Limit        int  // 0 means unbounded
}

// IsFree reports whether a rendered price means no charge.
func IsFree(price string) bool {
	return strings.EqualFold(strings.TrimSpace(price), PriceFree)
}

// ExtractComedians derives a performer list from a billing title such as
// "Jane Doe, John Roe ft: Sam Poe".
func ExtractComedians(title string) string {
	cleaned := strings.TrimSpace(title)
	if cleaned == "" {
		return ""
	}
	cleaned = comedianSeparators.ReplaceAllString(cleaned, ", ")
	return strings.Trim(cleaned, ", ")
}

package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/nycstandup/showcatalog/internal/show"
)

// DefaultDuration is the assumed length of a show.
const DefaultDuration = 90 * time.Minute

const prodID = "-//NYC Standup//showcatalog//EN"

// Options controls how records become calendar events.
type Options struct {
	// Name is the calendar's display name (X-WR-CALNAME).
	Name string
	// Location interprets ShowDate and ShowTime. Defaults to UTC.
	Location *time.Location
	// Duration is the event length for timed shows. Defaults to DefaultDuration.
	Duration time.Duration
	// Now stamps DTSTAMP. Defaults to time.Now.
	Now time.Time
}

func (o Options) withDefaults() Options {
	if o.Location == nil {
		o.Location = time.UTC
	}
	if o.Duration <= 0 {
		o.Duration = DefaultDuration
	}
	if o.Now.IsZero() {
		o.Now = time.Now()
	}
	return o
}

// GenerateICS generates an iCalendar (.ics) file for one show. It returns
// "" when the show has no date.
func GenerateICS(r show.Record, opts Options) string {
	opts = opts.withDefaults()
	var ics strings.Builder
	if !writeEvent(&ics, r, opts) {
		return ""
	}
	return wrapCalendar(ics.String(), opts)
}

// GenerateBulkICS generates one calendar holding every dated show. Shows
// without a date cannot be placed and are skipped.
func GenerateBulkICS(records []show.Record, opts Options) string {
	opts = opts.withDefaults()
	var events strings.Builder
	for _, r := range records {
		writeEvent(&events, r, opts)
	}
	return wrapCalendar(events.String(), opts)
}

func wrapCalendar(events string, opts Options) string {
	var ics strings.Builder
	ics.WriteString("BEGIN:VCALENDAR\r\n")
	ics.WriteString("VERSION:2.0\r\n")
	ics.WriteString("PRODID:" + prodID + "\r\n")
	ics.WriteString("CALSCALE:GREGORIAN\r\n")
	ics.WriteString("METHOD:PUBLISH\r\n")
	if opts.Name != "" {
		writeLine(&ics, "X-WR-CALNAME", escapeICS(opts.Name))
	}
	if opts.Location != time.UTC {
		writeLine(&ics, "X-WR-TIMEZONE", opts.Location.String())
	}
	ics.WriteString(events)
	ics.WriteString("END:VCALENDAR\r\n")
	return ics.String()
}

func writeEvent(ics *strings.Builder, r show.Record, opts Options) bool {
	day, err := time.ParseInLocation(show.DateLayout, r.ShowDate, opts.Location)
	if err != nil {
		return false
	}

	ics.WriteString("BEGIN:VEVENT\r\n")
	writeLine(ics, "UID", show.Key(r)+"@showcatalog")
	writeLine(ics, "DTSTAMP", formatICSTime(opts.Now))

	if start, ok := startInstant(day, r.ShowTime, opts.Location); ok {
		writeLine(ics, "DTSTART", formatICSTime(start))
		writeLine(ics, "DTEND", formatICSTime(start.Add(opts.Duration)))
	} else {
		// All-day event when the time is unknown.
		writeLine(ics, "DTSTART;VALUE=DATE", day.Format("20060102"))
		writeLine(ics, "DTEND;VALUE=DATE", day.AddDate(0, 0, 1).Format("20060102"))
	}

	writeLine(ics, "SUMMARY", escapeICS(r.Title))

	var desc []string
	if r.Comedians != "" && r.Comedians != show.DefaultComedians {
		desc = append(desc, "With: "+r.Comedians)
	}
	if r.Price != "" {
		desc = append(desc, "Price: "+r.Price)
	}
	if r.Description != "" {
		desc = append(desc, r.Description)
	}
	if r.TicketLink != "" {
		desc = append(desc, "Tickets: "+r.TicketLink)
	}
	if len(desc) > 0 {
		writeLine(ics, "DESCRIPTION", escapeICS(strings.Join(desc, "\n")))
	}

	location := r.Venue
	if r.Neighborhood != "" {
		location = fmt.Sprintf("%s, %s", r.Venue, r.Neighborhood)
	}
	writeLine(ics, "LOCATION", escapeICS(location))
	if r.TicketLink != "" {
		writeLine(ics, "URL", r.TicketLink)
	}

	ics.WriteString("STATUS:CONFIRMED\r\n")
	ics.WriteString("TRANSP:OPAQUE\r\n")
	ics.WriteString("END:VEVENT\r\n")
	return true
}

func startInstant(day time.Time, clock string, loc *time.Location) (time.Time, bool) {
	if clock == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(show.ClockLayout, strings.ToUpper(strings.TrimSpace(clock)))
	if err != nil {
		return time.Time{}, false
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, loc), true
}

// writeLine writes a content line folded at 75 octets (RFC 5545 3.1).
func writeLine(ics *strings.Builder, name, value string) {
	line := name + ":" + value
	limit := 75
	for len(line) > limit {
		cut := limit
		// Never split a UTF-8 sequence.
		for cut > 0 && line[cut]&0xC0 == 0x80 {
			cut--
		}
		ics.WriteString(line[:cut])
		ics.WriteString("\r\n ")
		line = line[cut:]
		limit = 74
	}
	ics.WriteString(line)
	ics.WriteString("\r\n")
}

// formatICSTime formats a time.Time as an iCalendar datetime string
func formatICSTime(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

// escapeICS escapes special characters for iCalendar format
func escapeICS(s string) string {
	// Replace special characters according to RFC 5545
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, ";", "\\;")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}

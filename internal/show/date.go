package show

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

var comedianSeparators = regexp.MustCompile(`(?i)\s+(?:ft|feat|featuring|presents?)\b[.:]?\s*`)

// RolloverGrace is how far in the past a year-less date may fall and still be
// placed in the current year. Older dates roll to the next year.
const RolloverGrace = 7 * 24 * time.Hour

// ResolveYearless places a month/day without a year relative to now.
// The current year is assumed; when that date is more than RolloverGrace
// before today it is moved to the following year. ok is false when the
// month/day pair is not a real calendar date (e.g. Feb 30).
func ResolveYearless(month time.Month, day int, now time.Time, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	year := local.Year()

	d, ok := calendarDate(year, month, day, loc)
	if !ok {
		// Feb 29 seen in December before a leap year.
		return calendarDate(year+1, month, day, loc)
	}

	today := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	if today.Sub(d) > RolloverGrace {
		return calendarDate(year+1, month, day, loc)
	}
	return d, true
}

// ExplicitDate builds a calendar date from year/month/day, rejecting
// overflowing values instead of normalizing them.
func ExplicitDate(year int, month time.Month, day int, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.UTC
	}
	return calendarDate(year, month, day, loc)
}

func calendarDate(year int, month time.Month, day int, loc *time.Location) (time.Time, bool) {
	if month < time.January || month > time.December || day < 1 || day > 31 {
		return time.Time{}, false
	}
	d := time.Date(year, month, day, 0, 0, 0, 0, loc)
	if d.Month() != month || d.Day() != day {
		return time.Time{}, false
	}
	return d, true
}

// Clock is a time of day in 24-hour form.
type Clock struct {
	Hour   int
	Minute int
}

// ClockFromParts converts 12-hour clock parts to 24-hour form. PM hours other
// than 12 add 12; 12 AM becomes 0.
func ClockFromParts(hour, minute int, meridiem string) (Clock, error) {
	if hour < 1 || hour > 12 || minute < 0 || minute > 59 {
		return Clock{}, fmt.Errorf("clock out of range: %d:%02d", hour, minute)
	}
	switch strings.ToUpper(strings.TrimSpace(meridiem)) {
	case "PM", "P":
		if hour != 12 {
			hour += 12
		}
	case "AM", "A":
		if hour == 12 {
			hour = 0
		}
	default:
		return Clock{}, fmt.Errorf("unknown meridiem %q", meridiem)
	}
	return Clock{Hour: hour, Minute: minute}, nil
}

var clockPattern = regexp.MustCompile(`(?i)\b(\d{1,2})(?::(\d{2}))?\s*([AP])\.?\s?M\b\.?`)

// FindClock returns the first 12-hour time of day in s, e.g. "7:30 PM",
// "7:30pm" or "8 PM".
func FindClock(s string) (Clock, bool) {
	m := clockPattern.FindStringSubmatch(s)
	if m == nil {
		return Clock{}, false
	}
	hour, _ := strconv.Atoi(m[1])
	minute := 0
	if m[2] != "" {
		minute, _ = strconv.Atoi(m[2])
	}
	c, err := ClockFromParts(hour, minute, m[3])
	if err != nil {
		return Clock{}, false
	}
	return c, true
}

// StripClock removes every time-of-day token from s.
func StripClock(s string) string {
	return clockPattern.ReplaceAllString(s, " ")
}

// ParseClock parses a rendered show time ("8:00 PM") back into 24-hour form.
func ParseClock(s string) (Clock, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Clock{}, false
	}
	return FindClock(s)
}

// Minutes returns the number of minutes after midnight.
func (c Clock) Minutes() int {
	return c.Hour*60 + c.Minute
}

// On places the clock on the calendar date d.
func (c Clock) On(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), c.Hour, c.Minute, 0, 0, d.Location())
}

// MonthTable maps lower-case month spellings to months.
type MonthTable map[string]time.Month

// Month looks up a month name, ignoring case and a trailing period.
func (t MonthTable) Month(name string) (time.Month, bool) {
	m, ok := t[strings.TrimSuffix(strings.ToLower(strings.TrimSpace(name)), ".")]
	return m, ok
}

// Pattern returns an alternation of every spelling in the table, longest
// first so "june" wins over "jun".
func (t MonthTable) Pattern() string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, regexp.QuoteMeta(name))
	}
	sort.Slice(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) > len(names[j])
		}
		return names[i] < names[j]
	})
	return strings.Join(names, "|")
}

// Month name tables recognised by venue configuration.
var (
	ShortMonths = MonthTable{
		"jan": time.January, "feb": time.February, "mar": time.March,
		"apr": time.April, "may": time.May, "jun": time.June,
		"jul": time.July, "aug": time.August, "sep": time.September,
		"sept": time.September, "oct": time.October, "nov": time.November,
		"dec": time.December,
	}
	LongMonths = MonthTable{
		"january": time.January, "february": time.February, "march": time.March,
		"april": time.April, "may": time.May, "june": time.June,
		"july": time.July, "august": time.August, "september": time.September,
		"october": time.October, "november": time.November, "december": time.December,
	}
	AnyMonths = mergeTables(ShortMonths, LongMonths)
)

func mergeTables(tables ...MonthTable) MonthTable {
	out := make(MonthTable)
	for _, t := range tables {
		for k, v := range t {
			out[k] = v
		}
	}
	return out
}

// MonthTableByName resolves a configured table name: "short", "long" or "any".
func MonthTableByName(name string) (MonthTable, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "any":
		return AnyMonths, nil
	case "short":
		return ShortMonths, nil
	case "long":
		return LongMonths, nil
	default:
		return nil, fmt.Errorf("unknown month table %q", name)
	}
}

package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"sync"
	"time"

	"github.com/nycstandup/showcatalog/internal/show"
)

const weekdayPattern = `mon(?:day)?|tue(?:s|sday)?|wed(?:nesday)?|thu(?:r|rs|rsday)?|fri(?:day)?|sat(?:urday)?|sun(?:day)?`

// dateMatcher finds a calendar date inside free text.
type dateMatcher struct {
	re      *regexp.Regexp
	months  show.MonthTable
	monthAt int // submatch index of the month name
	dayAt   int
	yearAt  int // 0 when the pattern carries no year
}

type matcherKey struct {
	pattern string
	table   string
}

var (
	matcherMu    sync.Mutex
	matcherCache = map[matcherKey]*dateMatcher{}
)

// newDateMatcher compiles the named pattern against a month table. Matchers
// are cached; venue configs reuse a handful of combinations.
func newDateMatcher(pattern, table string) (*dateMatcher, error) {
	key := matcherKey{pattern, table}
	matcherMu.Lock()
	defer matcherMu.Unlock()
	if m, ok := matcherCache[key]; ok {
		return m, nil
	}

	months, err := show.MonthTableByName(table)
	if err != nil {
		return nil, err
	}
	monthAlt := months.Pattern()

	m := &dateMatcher{months: months}
	switch pattern {
	case "", DateWeekdayMonthDay:
		m.re = regexp.MustCompile(`(?i)\b(?:` + weekdayPattern + `)\.?,?\s+(` + monthAlt + `)\.?\s+(\d{1,2})(?:st|nd|rd|th)?\b`)
		m.monthAt, m.dayAt = 1, 2
	case DateCompactPipe:
		m.re = regexp.MustCompile(`(?i)\b(?:` + weekdayPattern + `)\s*\|\s*(` + monthAlt + `)\.?\s+(\d{1,2})\b`)
		m.monthAt, m.dayAt = 1, 2
	case DateDayMonthYear:
		m.re = regexp.MustCompile(`(?i)\b(\d{1,2})(?:st|nd|rd|th)?\s+(` + monthAlt + `)\.?,?\s+(\d{4})\b`)
		m.dayAt, m.monthAt, m.yearAt = 1, 2, 3
	default:
		return nil, fmt.Errorf("unknown date pattern %q", pattern)
	}
	matcherCache[key] = m
	return m, nil
}

// Match reports whether text contains a date.
func (m *dateMatcher) Match(text string) bool {
	return m.re.MatchString(text)
}

// Resolve finds the first date in text and places it on the calendar in loc.
// Year-less dates follow show.ResolveYearless.
func (m *dateMatcher) Resolve(text string, now time.Time, loc *time.Location) (time.Time, bool) {
	sub := m.re.FindStringSubmatch(text)
	if sub == nil {
		return time.Time{}, false
	}
	month, ok := m.months.Month(sub[m.monthAt])
	if !ok {
		return time.Time{}, false
	}
	day, err := strconv.Atoi(sub[m.dayAt])
	if err != nil {
		return time.Time{}, false
	}
	if m.yearAt > 0 {
		year, err := strconv.Atoi(sub[m.yearAt])
		if err != nil {
			return time.Time{}, false
		}
		return show.ExplicitDate(year, month, day, loc)
	}
	return show.ResolveYearless(month, day, now, loc)
}

// stampClock places the first time of day found in text (or the default
// show time) on date and records it on p. It reports whether a clock from
// text was used.
func stampClock(p *show.Partial, date time.Time, text string, cfg Config) bool {
	if clock, ok := show.FindClock(text); ok {
		p.Stamp(clock.On(date), true)
		return true
	}
	if clock, ok := show.ParseClock(cfg.DefaultShowTime); ok {
		p.Stamp(clock.On(date), true)
		return false
	}
	p.Stamp(date, false)
	return false
}

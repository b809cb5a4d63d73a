package extract

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/nycstandup/showcatalog/internal/fetch"
	"github.com/nycstandup/showcatalog/internal/show"
)

// Kind names an extraction strategy.
type Kind string

const (
	StructuredData Kind = "structured-data"
	DomHeuristic   Kind = "dom-heuristic"
	FreeText       Kind = "free-text"
)

// ParseKind validates a configured strategy name.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case StructuredData, DomHeuristic, FreeText:
		return k, nil
	default:
		return "", fmt.Errorf("unknown extraction strategy %q", s)
	}
}

// Date pattern names recognised in Config.DatePattern.
const (
	// DateWeekdayMonthDay matches "Fri Feb 27", "Friday, February 27".
	DateWeekdayMonthDay = "weekday-month-day"
	// DateCompactPipe matches "FRI | FEB 27".
	DateCompactPipe = "compact-pipe"
	// DateDayMonthYear matches "27 February 2026".
	DateDayMonthYear = "day-month-year"
)

// Config carries the per-venue options for a strategy.
type Config struct {
	HrefPattern      string   `toml:"href_pattern"`      // DomHeuristic: regexp matched against anchor hrefs
	HrefEpochParam   string   `toml:"href_epoch_param"`  // DomHeuristic: query parameter holding unix seconds
	DatePattern      string   `toml:"date_pattern"`      // one of the Date* names
	MonthNameTable   string   `toml:"month_name_table"`  // "short", "long" or "any"
	DefaultShowTime  string   `toml:"default_show_time"` // e.g. "8:00 PM", used when no time is found
	RequireTime      bool     `toml:"require_time"`      // discard candidates without a time of day
	DefaultPrice     string   `toml:"default_price"`
	DefaultTitle     string   `toml:"default_title"`
	DefaultComedians string   `toml:"default_comedians"`
	Neighborhood     string   `toml:"neighborhood"`
	MaxHops          int      `toml:"max_hops"`     // DomHeuristic walk bound
	MinTextLen       int      `toml:"min_text_len"` // DomHeuristic anchor text bounds
	MaxTextLen       int      `toml:"max_text_len"`
	TitleWindow      int      `toml:"title_window"`   // FreeText lines scanned for a title
	Boilerplate      []string `toml:"boilerplate"`    // FreeText words that disqualify a title line
	MaxCandidates    int      `toml:"max_candidates"` // 0 means unbounded
}

const (
	defaultMaxHops     = 3
	defaultMinTextLen  = 3
	defaultMaxTextLen  = 80
	defaultTitleWindow = 8
)

// Context is the per-call environment shared by all strategies.
type Context struct {
	Venue    show.Venue
	Location *time.Location
	Now      time.Time

	// OnParseError, when set, observes skipped structured-data blocks.
	OnParseError func(*ParseError)
}

// Extractor is one extraction strategy.
type Extractor interface {
	Extract(page *fetch.RawPage, cfg Config, ec Context) ([]show.Partial, error)
}

var strategies = map[Kind]Extractor{
	StructuredData: structuredData{},
	DomHeuristic:   domHeuristic{},
	FreeText:       freeText{},
}

// For returns the extractor for kind.
func For(kind Kind) (Extractor, error) {
	e, ok := strategies[kind]
	if !ok {
		return nil, fmt.Errorf("unknown extraction strategy %q", kind)
	}
	return e, nil
}

// Run selects the strategy for kind and applies the recency filter.
func Run(kind Kind, page *fetch.RawPage, cfg Config, ec Context) ([]show.Partial, error) {
	e, err := For(kind)
	if err != nil {
		return nil, err
	}
	if ec.Location == nil {
		ec.Location = time.Local
	}
	if ec.Now.IsZero() {
		ec.Now = time.Now()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	candidates, err := e.Extract(page, cfg, ec)
	if err != nil {
		return nil, err
	}
	upcoming := Upcoming(candidates, cfg, ec.Now)
	if cfg.MaxCandidates > 0 && len(upcoming) > cfg.MaxCandidates {
		upcoming = upcoming[:cfg.MaxCandidates]
	}
	return upcoming, nil
}

// Upcoming keeps candidates whose start is strictly after now. A candidate
// without a time of day is compared at the venue's default show time, or at
// the last minute of its date.
func Upcoming(candidates []show.Partial, cfg Config, now time.Time) []show.Partial {
	out := make([]show.Partial, 0, len(candidates))
	for _, c := range candidates {
		if c.Start.IsZero() {
			continue
		}
		if effectiveStart(c, cfg).After(now) {
			out = append(out, c)
		}
	}
	return out
}

func effectiveStart(c show.Partial, cfg Config) time.Time {
	if c.HasClock {
		return c.Start
	}
	if clock, ok := show.ParseClock(cfg.DefaultShowTime); ok {
		return clock.On(c.Start)
	}
	return time.Date(c.Start.Year(), c.Start.Month(), c.Start.Day(), 23, 59, 0, 0, c.Start.Location())
}

// Validate checks option values that are compiled at extraction time.
func (c Config) Validate() error {
	if c.HrefPattern != "" {
		if _, err := regexp.Compile(c.HrefPattern); err != nil {
			return fmt.Errorf("href_pattern: %w", err)
		}
	}
	if _, err := show.MonthTableByName(c.MonthNameTable); err != nil {
		return fmt.Errorf("month_name_table: %w", err)
	}
	switch c.DatePattern {
	case "", DateWeekdayMonthDay, DateCompactPipe, DateDayMonthYear:
	default:
		return fmt.Errorf("date_pattern: unknown pattern %q", c.DatePattern)
	}
	if c.DefaultShowTime != "" {
		if _, ok := show.ParseClock(c.DefaultShowTime); !ok {
			return fmt.Errorf("default_show_time: cannot parse %q", c.DefaultShowTime)
		}
	}
	return nil
}

func (c Config) maxHops() int {
	if c.MaxHops > 0 {
		return c.MaxHops
	}
	return defaultMaxHops
}

func (c Config) textBounds() (int, int) {
	lo, hi := c.MinTextLen, c.MaxTextLen
	if lo <= 0 {
		lo = defaultMinTextLen
	}
	if hi <= 0 {
		hi = defaultMaxTextLen
	}
	return lo, hi
}

func (c Config) titleWindow() int {
	if c.TitleWindow > 0 {
		return c.TitleWindow
	}
	return defaultTitleWindow
}

// applyDefaults fills price, title and comedians from the venue config.
func (c Config) applyDefaults(p *show.Partial) {
	if p.Price == "" {
		p.Price = c.DefaultPrice
	}
	if p.Title == "" {
		p.Title = c.DefaultTitle
	}
	if p.Comedians == "" {
		p.Comedians = c.DefaultComedians
	}
}

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/nycstandup/showcatalog/internal/calendar"
	"github.com/nycstandup/showcatalog/internal/scraper"
	"github.com/nycstandup/showcatalog/internal/show"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText  OutputFormat = "text"
	FormatJSON  OutputFormat = "json"
	FormatTable OutputFormat = "table"
	FormatICS   OutputFormat = "ics"
)

// ShowsOptions tunes catalog listings.
type ShowsOptions struct {
	Location *time.Location
	Verbose  bool
}

// ShowsResult is the JSON form of a catalog listing.
type ShowsResult struct {
	Count int           `json:"count"`
	Shows []show.Record `json:"shows"`
}

// WriteShows writes a catalog listing in the specified format
func WriteShows(w io.Writer, shows []show.Record, format OutputFormat, opts ShowsOptions) error {
	switch format {
	case FormatJSON:
		if shows == nil {
			shows = []show.Record{}
		}
		return writeJSON(w, ShowsResult{Count: len(shows), Shows: shows})
	case FormatText:
		return writeShowsText(w, shows, opts.Verbose)
	case FormatTable:
		return writeShowsTable(w, shows)
	case FormatICS:
		_, err := io.WriteString(w, calendar.GenerateBulkICS(shows, calendar.Options{
			Name:     "NYC Comedy Shows",
			Location: opts.Location,
		}))
		return err
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs results as JSON
func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// writeShowsText prints shows grouped by date, in the order given.
func writeShowsText(w io.Writer, shows []show.Record, verbose bool) error {
	if len(shows) == 0 {
		fmt.Fprintln(w, "No shows found.")
		return nil
	}

	var (
		group string
		count = groupCounts(shows)
	)
	for i, s := range shows {
		if i == 0 || s.ShowDate != group {
			group = s.ShowDate
			if i > 0 {
				fmt.Fprintln(w)
			}
			fmt.Fprintf(w, "%s (%s):\n", dateHeading(s.ShowDate), plural(count[s.ShowDate], "show"))
		}

		clock := s.ShowTime
		if clock == "" {
			clock = "TBA"
		}
		where := s.Venue
		if s.Neighborhood != "" {
			where = fmt.Sprintf("%s (%s)", s.Venue, s.Neighborhood)
		}
		fmt.Fprintf(w, "  %8s  %s @ %s  %s\n", clock, s.Title, where, s.Price)
		if verbose {
			if s.Comedians != "" && s.Comedians != show.DefaultComedians {
				fmt.Fprintf(w, "            With: %s\n", s.Comedians)
			}
			fmt.Fprintf(w, "            Tickets: %s\n", s.TicketLink)
		}
	}
	fmt.Fprintf(w, "\nTotal: %s\n", plural(len(shows), "show"))
	return nil
}

func writeShowsTable(w io.Writer, shows []show.Record) error {
	rows := make([][]string, 0, len(shows))
	for _, s := range shows {
		rows = append(rows, []string{s.ShowDate, s.ShowTime, s.Venue, s.Title, s.Price, s.Neighborhood})
	}
	_, err := fmt.Fprintln(w, renderTable(w,
		[]string{"Date", "Time", "Venue", "Title", "Price", "Neighborhood"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignLeft, alignLeft, alignRight, alignLeft}))
	return err
}

func groupCounts(shows []show.Record) map[string]int {
	counts := make(map[string]int)
	for _, s := range shows {
		counts[s.ShowDate]++
	}
	return counts
}

func dateHeading(date string) string {
	if date == "" {
		return "Date TBA"
	}
	d, err := time.Parse(show.DateLayout, date)
	if err != nil {
		return date
	}
	return d.Format("Mon, Jan 2 2006")
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

type venueSummary struct {
	ID          string `json:"id"`
	Venue       string `json:"venue"`
	Transport   string `json:"transport"`
	Shows       int    `json:"shows"`
	ParseErrors int    `json:"parse_errors,omitempty"`
	Error       string `json:"error,omitempty"`
	ElapsedMS   int64  `json:"elapsed_ms"`
}

type runSummary struct {
	RunID      string         `json:"run_id"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	Venues     []venueSummary `json:"venues"`
	Total      int            `json:"total"`
	Replaced   bool           `json:"replaced"`
	SkipReason string         `json:"skip_reason,omitempty"`
	Added      int            `json:"added"`
	Removed    int            `json:"removed"`
	Purged     int64          `json:"purged,omitempty"`
}

// WriteRunSummary reports a scrape run. The text form always ends with the
// "Total: N shows" line.
func WriteRunSummary(w io.Writer, result *scraper.RunResult, format OutputFormat, verbose bool) error {
	total := len(result.Records)
	if result.Replaced {
		total = result.Written
	}

	summary := runSummary{
		RunID:      result.RunID,
		StartedAt:  result.StartedAt.UTC(),
		FinishedAt: result.FinishedAt.UTC(),
		Total:      total,
		Replaced:   result.Replaced,
		SkipReason: result.SkipReason,
		Purged:     result.Purged,
	}
	if result.Diff != nil {
		summary.Added = len(result.Diff.Added)
		summary.Removed = len(result.Diff.Removed)
	}
	for _, v := range result.Venues {
		vs := venueSummary{
			ID:          v.ID,
			Venue:       v.Venue,
			Transport:   string(v.Transport),
			Shows:       len(v.Records),
			ParseErrors: v.ParseErrors,
			ElapsedMS:   v.Elapsed.Milliseconds(),
		}
		if v.Err != nil {
			vs.Error = v.Err.Error()
		}
		summary.Venues = append(summary.Venues, vs)
	}

	switch format {
	case FormatJSON:
		return writeJSON(w, summary)
	case FormatText:
		return writeRunText(w, summary, result, verbose)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

func writeRunText(w io.Writer, s runSummary, result *scraper.RunResult, verbose bool) error {
	for _, v := range s.Venues {
		if v.Error != "" {
			fmt.Fprintf(w, "  FAIL %-24s %s\n", v.Venue, v.Error)
			continue
		}
		fmt.Fprintf(w, "  OK   %-24s %s\n", v.Venue, plural(v.Shows, "show"))
	}

	if result.Diff != nil {
		fmt.Fprintf(w, "\nNew: %d  Gone: %d\n", s.Added, s.Removed)
		if verbose {
			for _, r := range result.Diff.Added {
				fmt.Fprintf(w, "  NEW: %s %s %s @ %s\n", r.ShowDate, r.ShowTime, r.Title, r.Venue)
			}
			for _, r := range result.Diff.Removed {
				fmt.Fprintf(w, "  GONE: %s %s %s @ %s\n", r.ShowDate, r.ShowTime, r.Title, r.Venue)
			}
		}
	}
	if s.SkipReason != "" {
		fmt.Fprintf(w, "Catalog not written: %s\n", s.SkipReason)
	}
	if s.Purged > 0 {
		fmt.Fprintf(w, "Purged %s\n", plural(int(s.Purged), "old show"))
	}
	_, err := fmt.Fprintf(w, "Total: %d shows\n", s.Total)
	return err
}

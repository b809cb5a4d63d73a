package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nycstandup/showcatalog/internal/filter"
	"github.com/nycstandup/showcatalog/internal/logger"
	"github.com/nycstandup/showcatalog/internal/show"
)

func (a *app) showsCmd() *cobra.Command {
	var (
		f         show.Filter
		refine    filter.Filter
		dateRange string
		format    string
		order     string
	)
	cmd := &cobra.Command{
		Use:   "shows",
		Short: "List shows in the catalog",
		Example: `  showcatalog shows --today
  showcatalog shows --weekend --neighborhood "Greenwich Village" --format table
  showcatalog shows --venue "Comedy Cellar" --format ics > cellar.ics
  showcatalog shows --range "Mar 1-15" --search normand --max-price 30`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			outFormat, err := parseFormat(format, FormatText, FormatTable, FormatJSON, FormatICS)
			if err != nil {
				return err
			}
			sortOrder, err := parseSortOrder(order)
			if err != nil {
				return err
			}
			if f.Date != "" {
				if _, err := time.Parse(show.DateLayout, f.Date); err != nil {
					return fmt.Errorf("invalid --date %q (want YYYY-MM-DD)", f.Date)
				}
			}
			if f.Limit < 0 {
				return fmt.Errorf("--limit must not be negative")
			}
			if dateRange != "" {
				from, to, err := filter.ParseDateRange(dateRange, time.Now().In(a.cfg.Location()))
				if err != nil {
					return err
				}
				refine.DateFrom, refine.DateTo = from, to
			}

			// Refinements run after the query, so the limit must too.
			limit := f.Limit
			if !refine.IsEmpty() {
				f.Limit = 0
			}

			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			shows, err := store.GetShows(cmd.Context(), f)
			if err != nil {
				return err
			}
			if !refine.IsEmpty() {
				shows = refine.Apply(shows)
				a.log.Debug("refined listing", logger.Fields{"filter": refine.String(), "shows": len(shows)})
				if limit > 0 && len(shows) > limit {
					shows = shows[:limit]
				}
			}
			sortShows(shows, sortOrder)

			return WriteShows(a.stdout, shows, outFormat, ShowsOptions{
				Location: a.cfg.Location(),
				Verbose:  a.verbose,
			})
		},
	}
	cmd.Flags().BoolVar(&f.Today, "today", false, "Only shows on today's date")
	cmd.Flags().BoolVar(&f.ThisWeekend, "weekend", false, "Only shows from today through the next 7 days")
	cmd.Flags().StringVar(&f.Venue, "venue", "", "Exact venue name")
	cmd.Flags().StringVar(&f.Neighborhood, "neighborhood", "", "Exact neighborhood")
	cmd.Flags().StringVar(&f.Date, "date", "", "Exact date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&f.Limit, "limit", 0, "Maximum number of shows (0 for all)")
	cmd.Flags().StringSliceVar(&refine.Terms, "search", nil, "Match title or comedians (substring, repeatable)")
	cmd.Flags().StringVar(&dateRange, "range", "", `Date range such as "Mar 1-15", "March 1 - April 15" or "March"`)
	cmd.Flags().BoolVar(&refine.WeekendsOnly, "weekends-only", false, "Only Friday, Saturday and Sunday shows")
	cmd.Flags().Float64Var(&refine.MaxPrice, "max-price", 0, "Only shows with a listed price at or below this")
	cmd.Flags().BoolVar(&refine.FreeOnly, "free", false, "Only free shows")
	cmd.Flags().StringVar(&format, "format", "text", "Output format: text, table, json or ics")
	cmd.Flags().StringVar(&order, "sort", string(SortByDate), "Sort order: date, venue or title")
	return cmd
}

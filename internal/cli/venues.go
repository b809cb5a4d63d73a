package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nycstandup/showcatalog/internal/venue"
)

type venueRow struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Neighborhood string `json:"neighborhood,omitempty"`
	URL          string `json:"url"`
	Transport    string `json:"transport"`
	Strategy     string `json:"strategy"`
	Enabled      bool   `json:"enabled"`
}

func (a *app) venuesCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "venues",
		Short: "List configured venues",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			f, err := parseFormat(format, FormatTable, FormatJSON)
			if err != nil {
				return err
			}
			rows := venueRows(a.cfg.Registry().All())
			if f == FormatJSON {
				enc := json.NewEncoder(a.stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(rows)
			}

			table := make([][]string, 0, len(rows))
			for _, r := range rows {
				enabled := "yes"
				if !r.Enabled {
					enabled = "no"
				}
				table = append(table, []string{r.ID, r.Name, r.Neighborhood, r.Transport, r.Strategy, enabled})
			}
			fmt.Fprintln(a.stdout, renderTable(a.stdout,
				[]string{"ID", "Venue", "Neighborhood", "Transport", "Strategy", "Enabled"},
				table, nil))
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "table", "Output format: table or json")
	return cmd
}

func venueRows(sources []venue.Source) []venueRow {
	rows := make([]venueRow, 0, len(sources))
	for _, s := range sources {
		rows = append(rows, venueRow{
			ID:           s.ID,
			Name:         s.Venue.Name,
			Neighborhood: s.Venue.Neighborhood,
			URL:          s.ListingURL(),
			Transport:    string(s.Transport),
			Strategy:     string(s.Strategy),
			Enabled:      !s.Disabled,
		})
	}
	return rows
}

func (a *app) purgeCmd() *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete catalog rows created more than N days ago",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("days") {
				days = a.cfg.Retention.Days
			}
			if days < 0 {
				return fmt.Errorf("--days must not be negative")
			}

			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			n, err := store.PurgeOlderThan(cmd.Context(), days)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "Purged %d shows older than %d days\n", n, days)
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 0, "Age threshold in days (default from [retention] days)")
	return cmd
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nycstandup/showcatalog/internal/config"
)

func (a *app) configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}

	var path string
	initCmd := &cobra.Command{
		Use:         "init",
		Short:       "Write an annotated sample config file",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"config": "skip"},
		RunE: func(_ *cobra.Command, _ []string) error {
			target := path
			if target == "" {
				target = a.configPath
			}
			if target == "" {
				var err error
				if target, err = config.DefaultConfigPath(); err != nil {
					return err
				}
			}
			if err := config.CreateSample(target); err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "Wrote sample config to %s\n", target)
			return nil
		},
	}
	initCmd.Flags().StringVar(&path, "path", "", "Where to write the file (default --config or ~/.config/showcatalog/config.toml)")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective settings",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			rows := [][]string{
				{"db_path", a.cfg.DBPath},
				{"lock_path", a.cfg.LockPath},
				{"timezone", a.cfg.Location().String()},
				{"log_level", a.cfg.LogLevel},
				{"api.bind", a.cfg.API.Bind},
				{"fetch.courtesy_delay", a.cfg.CourtesyDelay().String()},
				{"browser.settle", a.cfg.DefaultSettle().String()},
				{"retention.days", fmt.Sprint(a.cfg.Retention.Days)},
				{"retention.purge_after_run", fmt.Sprint(a.cfg.Retention.PurgeAfterRun)},
				{"run.keep_catalog_on_empty", fmt.Sprint(a.cfg.Run.KeepCatalogOnEmpty)},
				{"venues", fmt.Sprintf("%d enabled of %d", len(a.cfg.Registry().Enabled()), len(a.cfg.Registry().All()))},
			}
			fmt.Fprintln(a.stdout, renderTable(a.stdout, []string{"Setting", "Value"}, rows, nil))
			return nil
		},
	}

	cmd.AddCommand(initCmd, showCmd)
	return cmd
}

package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/nycstandup/showcatalog/internal/logger"
	"github.com/nycstandup/showcatalog/internal/scraper"
	"github.com/nycstandup/showcatalog/internal/show"
)

func (a *app) scrapeCmd() *cobra.Command {
	var (
		dryRun bool
		venues []string
		format string
	)
	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Refresh the catalog from every enabled venue",
		Long: `Fetch, extract and normalize shows from each venue, then replace the
catalog in a single transaction.

A venue that is blocked or unreachable contributes zero shows and does not
fail the run. The command exits non-zero only when the catalog write fails.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := parseFormat(format, FormatText, FormatJSON)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.scrape(ctx, venues, dryRun, f)
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Run every venue but do not write the catalog")
	cmd.Flags().StringSliceVar(&venues, "venue", nil, "Only scrape these venues (id or name, repeatable)")
	cmd.Flags().StringVar(&format, "format", "text", "Output format: text or json")
	return cmd
}

func (a *app) scrape(ctx context.Context, keys []string, dryRun bool, format OutputFormat) error {
	sources, err := a.cfg.Registry().Select(keys)
	if err != nil {
		return err
	}
	if len(sources) == 0 {
		return fmt.Errorf("no venues enabled")
	}

	if err := os.MkdirAll(filepath.Dir(a.cfg.LockPath), 0o755); err != nil {
		return fmt.Errorf("creating lock directory: %w", err)
	}
	lock := flock.New(a.cfg.LockPath)
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("another scrape is already running (lock %s)", a.cfg.LockPath)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			a.log.Warn("failed to release scrape lock", logger.Fields{"lock": a.cfg.LockPath}, err)
		}
	}()

	store, err := a.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	all := a.cfg.Registry().All()
	directory := make([]show.Venue, 0, len(all))
	for _, src := range all {
		directory = append(directory, src.Venue)
	}
	if err := store.SyncVenues(ctx, directory); err != nil {
		return err
	}

	opts := scraper.Options{
		CourtesyDelay:      a.cfg.CourtesyDelay(),
		DefaultSettle:      a.cfg.DefaultSettle(),
		KeepCatalogOnEmpty: a.cfg.Run.KeepCatalogOnEmpty,
		DryRun:             dryRun,
		Location:           a.cfg.Location(),
	}
	if a.cfg.Retention.PurgeAfterRun {
		opts.PurgeAfterDays = a.cfg.Retention.Days
	}

	sc := scraper.New(a.newFetcher(a.cfg), store, a.log, opts)
	result, runErr := sc.Run(ctx, sources)
	if result != nil {
		if err := WriteRunSummary(a.stdout, result, format, a.verbose); err != nil {
			return fmt.Errorf("writing output: %w", err)
		}
	}
	return runErr
}

package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nycstandup/showcatalog/internal/browser"
	"github.com/nycstandup/showcatalog/internal/config"
	"github.com/nycstandup/showcatalog/internal/fetch"
	"github.com/nycstandup/showcatalog/internal/logger"
	"github.com/nycstandup/showcatalog/internal/scraper"
	"github.com/nycstandup/showcatalog/internal/storage"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

// app carries state shared by every subcommand.
type app struct {
	stdout io.Writer
	stderr io.Writer

	configPath string
	logLevel   string
	verbose    bool

	cfg *config.Config
	log *logger.Logger

	// newFetcher builds the page fetcher for scrape runs.
	newFetcher func(cfg *config.Config) scraper.Fetcher
}

func newApp(stdout, stderr io.Writer) *app {
	return &app{
		stdout: stdout,
		stderr: stderr,
		newFetcher: func(cfg *config.Config) scraper.Fetcher {
			return fetch.New(cfg.FetchConfig(), browser.NewChrome())
		},
	}
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	return newApp(os.Stdout, os.Stderr).rootCmd()
}

func (a *app) rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "showcatalog",
		Short: "Scrape NYC comedy club listings into a local catalog",
		Long: `showcatalog collects upcoming stand-up shows from New York comedy clubs
into a SQLite catalog and serves it over a small read API.

Run "showcatalog scrape" from a scheduler to refresh the catalog.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if skipsConfig(cmd) {
				return nil
			}
			return a.init()
		},
	}
	cmd.SetOut(a.stdout)
	cmd.SetErr(a.stderr)

	cmd.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to config file (default ~/.config/showcatalog/config.toml)")
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn or error (overrides config)")
	cmd.PersistentFlags().BoolVar(&a.verbose, "verbose", false, "Enable debug logging")

	cmd.AddCommand(
		a.scrapeCmd(),
		a.showsCmd(),
		a.venuesCmd(),
		a.purgeCmd(),
		a.serveCmd(),
		a.configCmd(),
	)
	return cmd
}

// skipsConfig reports whether cmd runs without loading configuration.
func skipsConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations["config"] == "skip" {
			return true
		}
	}
	return false
}

func (a *app) init() error {
	cfg, path, exists, err := config.Load(a.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	a.cfg = cfg

	levelName := cfg.LogLevel
	if a.logLevel != "" {
		levelName = a.logLevel
	}
	if a.verbose {
		levelName = string(logger.LevelDebug)
	}
	level, err := logger.ParseLevel(levelName)
	if err != nil {
		return err
	}
	a.log = logger.New(level, a.stderr)
	logger.SetDefault(a.log)

	a.log.Debug("config loaded", logger.Fields{"path": path, "exists": exists, "db": cfg.DBPath})
	return nil
}

func (a *app) openStore() (*storage.Store, error) {
	store, err := storage.Open(a.cfg.DBPath, storage.WithLocation(a.cfg.Location()))
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}
	return store, nil
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	return run(os.Args[1:], os.Stdout, os.Stderr)
}

func run(args []string, stdout, stderr io.Writer) int {
	cmd := newApp(stdout, stderr).rootCmd()
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		if errors.Is(err, storage.ErrReplaceFailed) {
			fmt.Fprintln(stderr, "The catalog was left unchanged.")
		}
		return ExitError
	}
	return ExitSuccess
}

func parseFormat(s string, allowed ...OutputFormat) (OutputFormat, error) {
	f := OutputFormat(strings.ToLower(strings.TrimSpace(s)))
	for _, a := range allowed {
		if f == a {
			return f, nil
		}
	}
	names := make([]string, len(allowed))
	for i, a := range allowed {
		names[i] = "'" + string(a) + "'"
	}
	return "", fmt.Errorf("invalid format: %s (must be %s)", s, strings.Join(names, ", "))
}

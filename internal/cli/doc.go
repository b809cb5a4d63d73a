// Package cli implements the command-line interface for showcatalog.
//
// The root command loads configuration once and hands it to the
// subcommands: scrape (one catalog refresh), shows (query the catalog as
// text, table, JSON or ICS), venues, purge, serve (read API) and config.
// Logs go to stderr as JSON lines; stdout carries command output only.
package cli

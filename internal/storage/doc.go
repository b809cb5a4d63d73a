// Package storage persists the show catalog in SQLite.
//
// The catalog is rebuilt wholesale by every scrape run: ReplaceAll deletes
// every show and inserts the new set inside one transaction, so readers see
// either the previous catalog or the new one, never a mix. Schema changes are
// applied at Open from embedded golang-migrate migrations. The default
// database location is ~/.local/share/showcatalog/shows.db.
package storage

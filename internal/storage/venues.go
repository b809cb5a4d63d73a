package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/nycstandup/showcatalog/internal/show"
)

// SyncVenues upserts the venue directory by name.
func (s *Store) SyncVenues(ctx context.Context, venues []show.Venue) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sync venues: %w", err)
	}
	defer tx.Rollback() // nolint:errcheck

	for _, v := range venues {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO venues (name, address, neighborhood, url) VALUES (?, ?, ?, ?)
             ON CONFLICT(name) DO UPDATE SET
                 address = excluded.address,
                 neighborhood = excluded.neighborhood,
                 url = excluded.url`,
			v.Name,
			nullableString(v.Address),
			nullableString(v.Neighborhood),
			nullableString(v.URL),
		)
		if err != nil {
			return fmt.Errorf("upsert venue %q: %w", v.Name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sync venues: %w", err)
	}
	return nil
}

// Venues returns the venue directory ordered by name.
func (s *Store) Venues(ctx context.Context) ([]show.Venue, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, address, neighborhood, url FROM venues ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query venues: %w", err)
	}
	defer rows.Close()

	venues := make([]show.Venue, 0)
	for rows.Next() {
		var (
			v                           show.Venue
			address, neighborhood, link sql.NullString
		)
		if err := rows.Scan(&v.Name, &address, &neighborhood, &link); err != nil {
			return nil, fmt.Errorf("scan venue: %w", err)
		}
		v.Address = address.String
		v.Neighborhood = neighborhood.String
		v.URL = link.String
		venues = append(venues, v)
	}
	return venues, rows.Err()
}

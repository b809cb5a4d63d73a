package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/nycstandup/showcatalog/internal/show"
)

const showColumns = `id, venue, title, comedians, show_date, show_time, price,
    ticket_link, description, neighborhood, show_type, created_at, updated_at`

// ReplaceAll swaps the catalog for records in a single transaction and
// returns the number of rows written. On any error the previous catalog is
// left untouched and the error wraps ErrReplaceFailed.
func (s *Store) ReplaceAll(ctx context.Context, records []show.Record) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: begin: %w", ErrReplaceFailed, err)
	}
	defer tx.Rollback() // nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM shows`); err != nil {
		return 0, fmt.Errorf("%w: clear shows: %w", ErrReplaceFailed, err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO shows (
            venue, title, comedians, show_date, show_time, show_minutes, price,
            ticket_link, description, neighborhood, show_type, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("%w: prepare insert: %w", ErrReplaceFailed, err)
	}
	defer stmt.Close()

	ts := s.timestamp()
	for i, r := range records {
		if r.Venue == "" || r.Title == "" {
			return 0, fmt.Errorf("%w: record %d: venue and title are required", ErrReplaceFailed, i)
		}
		_, err := stmt.ExecContext(ctx,
			r.Venue,
			r.Title,
			nullableString(r.Comedians),
			nullableString(r.ShowDate),
			nullableString(r.ShowTime),
			showMinutes(r.ShowTime),
			nullableString(r.Price),
			nullableString(r.TicketLink),
			nullableString(r.Description),
			nullableString(r.Neighborhood),
			orDefault(r.ShowType, show.DefaultShowType),
			ts,
			ts,
		)
		if err != nil {
			return 0, fmt.Errorf("%w: insert %q: %w", ErrReplaceFailed, r.Title, err)
		}
	}

	if s.beforeCommit != nil {
		if err := s.beforeCommit(tx); err != nil {
			return 0, fmt.Errorf("%w: %w", ErrReplaceFailed, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%w: commit: %w", ErrReplaceFailed, err)
	}
	return len(records), nil
}

// GetShows returns catalog rows matching every set field of f, ordered by
// date then time. Rows without a date or time sort after those with one.
func (s *Store) GetShows(ctx context.Context, f show.Filter) ([]show.Record, error) {
	var (
		where []string
		args  []any
	)
	if f.Venue != "" {
		where = append(where, "venue = ?")
		args = append(args, f.Venue)
	}
	if f.Neighborhood != "" {
		where = append(where, "neighborhood = ?")
		args = append(args, f.Neighborhood)
	}
	if f.Date != "" {
		where = append(where, "show_date = ?")
		args = append(args, f.Date)
	}

	today := s.today()
	if f.Today {
		where = append(where, "show_date = ?")
		args = append(args, today.Format(show.DateLayout))
	}
	if f.ThisWeekend {
		where = append(where, "show_date BETWEEN ? AND ?")
		args = append(args, today.Format(show.DateLayout), today.AddDate(0, 0, 7).Format(show.DateLayout))
	}

	query := `SELECT ` + showColumns + ` FROM shows`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY show_date IS NULL, show_date, show_minutes IS NULL, show_minutes, id`
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query shows: %w", err)
	}
	defer rows.Close()

	records := make([]show.Record, 0)
	for rows.Next() {
		r, err := scanShow(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Count returns the number of shows in the catalog.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM shows`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count shows: %w", err)
	}
	return n, nil
}

// PurgeOlderThan deletes shows written more than days ago, judged by their
// creation time only, and returns the number removed.
func (s *Store) PurgeOlderThan(ctx context.Context, days int) (int64, error) {
	if days < 0 {
		return 0, fmt.Errorf("purge: days must not be negative, got %d", days)
	}
	cutoff := s.now().UTC().Add(-time.Duration(days) * 24 * time.Hour).Format(timestampLayout)
	res, err := s.db.ExecContext(ctx, `DELETE FROM shows WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge shows: %w", err)
	}
	return res.RowsAffected()
}

// LastUpdated returns the creation time of the newest row, which is the time
// of the last committed run. ok is false for an empty catalog.
func (s *Store) LastUpdated(ctx context.Context) (time.Time, bool, error) {
	var v sql.NullString
	if err := s.db.QueryRowContext(ctx, `SELECT MAX(created_at) FROM shows`).Scan(&v); err != nil {
		return time.Time{}, false, fmt.Errorf("last updated: %w", err)
	}
	if !v.Valid || v.String == "" {
		return time.Time{}, false, nil
	}
	return parseTimestamp(v.String), true, nil
}

func (s *Store) today() time.Time {
	now := s.now().In(s.loc)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanShow(row rowScanner) (show.Record, error) {
	var (
		r                                   show.Record
		comedians, date, clock, price, link sql.NullString
		description, neighborhood           sql.NullString
		createdAt, updatedAt                string
	)
	if err := row.Scan(
		&r.ID, &r.Venue, &r.Title, &comedians, &date, &clock, &price,
		&link, &description, &neighborhood, &r.ShowType, &createdAt, &updatedAt,
	); err != nil {
		return show.Record{}, fmt.Errorf("scan show: %w", err)
	}
	r.Comedians = comedians.String
	r.ShowDate = date.String
	r.ShowTime = clock.String
	r.Price = price.String
	r.TicketLink = link.String
	r.Description = description.String
	r.Neighborhood = neighborhood.String
	r.CreatedAt = parseTimestamp(createdAt)
	r.UpdatedAt = parseTimestamp(updatedAt)
	return r, nil
}

// showMinutes stores the clock as minutes after midnight so "9:00 PM" sorts
// after "10:00 AM".
func showMinutes(clock string) any {
	c, ok := show.ParseClock(clock)
	if !ok {
		return nil
	}
	return c.Minutes()
}

func nullableString(v string) any {
	if v == "" {
		return nil
	}
	return v
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

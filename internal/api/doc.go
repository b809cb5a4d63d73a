// Package api serves the catalog over a small read-only JSON HTTP API.
//
// Routes:
//
//	GET /api/shows   shows matching today, weekend, venue, neighborhood, date, limit
//	GET /api/venues  the venue directory
//	GET /healthz     liveness
//
// The API never writes; it reads whatever the last committed scrape left in
// the store.
package api

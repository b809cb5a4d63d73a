// Package scraper runs one catalog refresh across every configured venue.
//
// Each venue is an independent pipeline: fetch the listing page, extract show
// candidates with the venue's strategy, and normalize them into records. A
// failing venue contributes zero records and never aborts the run. Venues
// fetched directly run one after another with a courtesy delay between
// requests; venues that need a browser run concurrently. When every pipeline
// has finished, the collected records replace the catalog in one write.
package scraper

// Package show provides the catalog's record types and the date and clock
// helpers shared by every extraction strategy.
//
// A Record is one listed performance as stored in the catalog. A Partial is
// what an extractor yields before normalization: every field may be missing.
// Venue is read-only directory data. Filter describes a catalog query.
package show

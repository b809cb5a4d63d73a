// Package extract turns raw venue pages into show candidates.
//
// Three strategies exist, selected per venue by Kind:
//
//   - StructuredData reads JSON-LD Event markup.
//   - DomHeuristic pairs ticket links with the nearest preceding date text.
//   - FreeText scans the page's visible lines for date/time/title triples.
//
// Every strategy resolves dates in the venue's time zone and drops candidates
// that start at or before the extraction instant.
package extract

package show

import (
	"crypto/sha1"
	"fmt"
	"sort"
	"strings"
)

// Key identifies a performance across runs. It ignores price, links and
// descriptions, which venues edit freely.
func Key(r Record) string {
	h := sha1.New()
	h.Write([]byte(strings.ToLower(strings.Join([]string{r.Venue, r.ShowDate, r.ShowTime, r.Title}, "|"))))
	return fmt.Sprintf("%x", h.Sum(nil))
}

// DiffResult contains the results of comparing two catalogs.
type DiffResult struct {
	Added   []Record
	Removed []Record
	Venues  map[string]int // added shows per venue
}

// Diff compares the catalog before a run against the records the run produced.
func Diff(previous, current []Record) *DiffResult {
	result := &DiffResult{Venues: make(map[string]int)}

	before := make(map[string]bool, len(previous))
	for _, r := range previous {
		before[Key(r)] = true
	}
	after := make(map[string]bool, len(current))
	for _, r := range current {
		k := Key(r)
		if after[k] {
			continue
		}
		after[k] = true
		if !before[k] {
			result.Added = append(result.Added, r)
			result.Venues[r.Venue]++
		}
	}
	for _, r := range previous {
		if !after[Key(r)] {
			result.Removed = append(result.Removed, r)
		}
	}

	sortRecords(result.Added)
	sortRecords(result.Removed)
	return result
}

// sortRecords orders records by date, then venue and title. Unresolved dates
// sort last.
func sortRecords(rs []Record) {
	sort.SliceStable(rs, func(i, j int) bool {
		a, b := rs[i], rs[j]
		if (a.ShowDate == "") != (b.ShowDate == "") {
			return b.ShowDate == ""
		}
		if a.ShowDate != b.ShowDate {
			return a.ShowDate < b.ShowDate
		}
		if a.Venue != b.Venue {
			return a.Venue < b.Venue
		}
		return a.Title < b.Title
	})
}

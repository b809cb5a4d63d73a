// Package venue holds the directory of clubs the catalog scrapes.
//
// Each Source binds a venue to one fetch transport, one extraction strategy
// and that strategy's options. The built-in registry covers the Manhattan
// clubs the catalog launched with; configuration can override any field of a
// built-in entry, disable it, or add new venues.
package venue

// Package webdir implements the scraped people-search backend.
//
// Lookups issue a GET against the public people-search page and scrape
// the first result row. Anything that prevents a row from being read
// (an HTTP failure, a missing results container, no rows) is reported as
// no match.
package webdir

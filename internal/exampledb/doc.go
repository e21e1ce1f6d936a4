// Package exampledb stores example sentences per word in SQLite. Words
// missing from the database are fetched from the configured sources
// (dictionary site scrapers, an LLM) and stored for the next lookup.
package exampledb

// Package anki persists flashcard records and talks to Anki.
//
// Records are first appended to a pending CSV file. The file can be
// imported into Anki as is, or turned into an .apkg package with
// APKGGenerator. Reader opens an existing Anki collection read-only to
// find cards that already exist for a word.
package anki

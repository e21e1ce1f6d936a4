package testutil

import (
	"database/sql"
	"strings"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

// AnkiNote is a note to put into a test collection
type AnkiNote struct {
	DeckID int64
	Fields []string
}

// CreateAnkiCollection writes a minimal Anki collection with a decks table
// to path. Deck names use 0x1f between levels like Anki does.
func CreateAnkiCollection(t *testing.T, path string, decks map[int64]string, notes []AnkiNote) {
	t.Helper()

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("Failed to create collection: %v", err)
	}
	defer db.Close()

	statements := []string{
		`CREATE TABLE decks (id integer PRIMARY KEY NOT NULL, name text NOT NULL)`,
		`CREATE TABLE notes (id integer PRIMARY KEY, flds text NOT NULL)`,
		`CREATE TABLE cards (id integer PRIMARY KEY, nid integer NOT NULL, did integer NOT NULL)`,
	}
	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("Failed to create collection table: %v", err)
		}
	}

	for id, name := range decks {
		if _, err := db.Exec(`INSERT INTO decks VALUES (?, ?)`, id, name); err != nil {
			t.Fatalf("Failed to insert deck: %v", err)
		}
	}

	for i, note := range notes {
		noteID := int64(1000 + i)
		if _, err := db.Exec(`INSERT INTO notes VALUES (?, ?)`, noteID, strings.Join(note.Fields, "\x1f")); err != nil {
			t.Fatalf("Failed to insert note: %v", err)
		}
		if _, err := db.Exec(`INSERT INTO cards VALUES (?, ?, ?)`, 5000+i, noteID, note.DeckID); err != nil {
			t.Fatalf("Failed to insert card: %v", err)
		}
	}
}

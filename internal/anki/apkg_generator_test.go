package anki

import (
	"archive/zip"
	"context"
	"database/sql"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewAPKGGenerator(t *testing.T) {
	gen := NewAPKGGenerator("")

	if gen.deckName != DefaultDeck {
		t.Errorf("Expected deck name %q, got %q", DefaultDeck, gen.deckName)
	}
	if gen.Len() != 0 {
		t.Errorf("Expected no records, got %d", gen.Len())
	}
	if gen.modelID == gen.deckID {
		t.Error("model and deck IDs must differ")
	}

	gen.AddRecords(sampleRecords())
	gen.AddRecord(sampleRecords()[0])
	if gen.Len() != 3 {
		t.Errorf("Expected 3 records, got %d", gen.Len())
	}
}

func TestGenerateAPKGWithoutRecords(t *testing.T) {
	gen := NewAPKGGenerator("Test Deck")
	if err := gen.GenerateAPKG(filepath.Join(t.TempDir(), "out.apkg")); err == nil {
		t.Error("expected error for empty package")
	}
}

func TestGenerateAPKG(t *testing.T) {
	tempDir := t.TempDir()
	gen := NewAPKGGenerator("Chinese::General")
	gen.AddRecords(sampleRecords())

	outputPath := filepath.Join(tempDir, "export", "cards.apkg")
	if err := gen.GenerateAPKG(outputPath); err != nil {
		t.Fatalf("GenerateAPKG() error = %v", err)
	}

	reader, err := zip.OpenReader(outputPath)
	if err != nil {
		t.Fatalf("Failed to open APKG as zip: %v", err)
	}
	defer reader.Close()

	found := map[string]bool{}
	for _, file := range reader.File {
		found[file.Name] = true
		if file.Name == "media" {
			rc, err := file.Open()
			if err != nil {
				t.Fatalf("Failed to open media: %v", err)
			}
			data, _ := io.ReadAll(rc)
			rc.Close()
			if string(data) != "{}" {
				t.Errorf("media mapping = %q, want {}", data)
			}
		}
	}
	for _, name := range []string{"collection.anki2", "media"} {
		if !found[name] {
			t.Errorf("Required file %q not found in APKG", name)
		}
	}
}

func TestCreateDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "collection.anki2")

	gen := NewAPKGGenerator("Chinese::General")
	gen.AddRecords(sampleRecords())

	if err := gen.createDatabase(dbPath); err != nil {
		t.Fatalf("createDatabase() error = %v", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	var noteCount, cardCount, reverseCount int
	if err := db.QueryRow("SELECT COUNT(*) FROM notes").Scan(&noteCount); err != nil {
		t.Fatal(err)
	}
	if err := db.QueryRow("SELECT COUNT(*) FROM cards").Scan(&cardCount); err != nil {
		t.Fatal(err)
	}
	if err := db.QueryRow("SELECT COUNT(*) FROM cards WHERE ord = 1").Scan(&reverseCount); err != nil {
		t.Fatal(err)
	}

	if noteCount != 2 {
		t.Errorf("Expected 2 notes, got %d", noteCount)
	}
	// Only the primary record gets the reverse card
	if cardCount != 3 || reverseCount != 1 {
		t.Errorf("Expected 3 cards with 1 reverse, got %d with %d", cardCount, reverseCount)
	}

	var flds, sfld string
	if err := db.QueryRow("SELECT flds, sfld FROM notes ORDER BY id LIMIT 1").Scan(&flds, &sfld); err != nil {
		t.Fatal(err)
	}
	fields := strings.Split(flds, FieldSeparator)
	if len(fields) != len(NoteFields) {
		t.Fatalf("Expected %d fields, got %d", len(NoteFields), len(fields))
	}
	if fields[FrontField] != "他___得很快" || fields[BackField] != "走" || fields[TwoCardsField] != "Y" {
		t.Errorf("unexpected fields %q", fields)
	}
	if sfld != "走" {
		t.Errorf("sort field = %q, want 走", sfld)
	}
}

// The reader finds cards the generator wrote, through the schema 11
// deck JSON
func TestGeneratedCollectionIsReadable(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "collection.anki2")

	gen := NewAPKGGenerator("Chinese::General")
	gen.AddRecords(sampleRecords())
	if err := gen.createDatabase(dbPath); err != nil {
		t.Fatalf("createDatabase() error = %v", err)
	}

	reader, err := OpenReader(context.Background(), dbPath)
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer reader.Close()

	notes, err := reader.WordCards(context.Background(), "走")
	if err != nil {
		t.Fatalf("WordCards() error = %v", err)
	}
	if len(notes) != 2 {
		t.Errorf("WordCards() returned %d notes, want 2", len(notes))
	}

	if _, err := os.Stat(dbPath); err != nil {
		t.Errorf("collection disappeared: %v", err)
	}
}

package anki

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"
)

// Decks the reader knows about. Anki separates deck levels with 0x1f.
const (
	GeneralDeck = "Chinese\x1fGeneral"
	WordsDeck   = "Chinese\x1fWords"
)

// Note is the list of fields of one Anki note
type Note []string

// Reader reads an Anki collection without modifying it
type Reader struct {
	db    *sql.DB
	decks map[string]int64
}

// OpenReader opens the collection file at path read-only
func OpenReader(ctx context.Context, path string) (*Reader, error) {
	dsn := "file:" + (&url.URL{Path: path}).EscapedPath() + "?mode=ro"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open anki collection: %w", err)
	}

	r := &Reader{db: db}
	if err := r.loadDecks(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return r, nil
}

// Close closes the collection
func (r *Reader) Close() error {
	return r.db.Close()
}

// Ping checks that the collection is still readable
func (r *Reader) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// loadDecks reads the decks table of current collections and falls back
// to the JSON column of schema 11 collections
func (r *Reader) loadDecks(ctx context.Context) error {
	r.decks = make(map[string]int64)

	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM decks`)
	if err == nil {
		defer rows.Close()
		for rows.Next() {
			var id int64
			var name string
			if err := rows.Scan(&id, &name); err != nil {
				return fmt.Errorf("failed to read decks: %w", err)
			}
			r.decks[name] = id
		}
		return rows.Err()
	}
	if !strings.Contains(err.Error(), "no such table") {
		return fmt.Errorf("failed to read decks: %w", err)
	}

	var raw string
	if err := r.db.QueryRowContext(ctx, `SELECT decks FROM col`).Scan(&raw); err != nil {
		return fmt.Errorf("failed to read decks: %w", err)
	}
	var decks map[string]struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal([]byte(raw), &decks); err != nil {
		return fmt.Errorf("failed to decode decks: %w", err)
	}
	for _, d := range decks {
		r.decks[strings.ReplaceAll(d.Name, "::", "\x1f")] = d.ID
	}
	return nil
}

// Decks returns the deck names of the collection, sorted
func (r *Reader) Decks() []string {
	names := make([]string, 0, len(r.decks))
	for name := range r.decks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// notes returns the notes with a card in deck. A non-empty contains
// narrows the query to notes whose fields contain it.
func (r *Reader) notes(ctx context.Context, deck, contains string) ([]Note, error) {
	deckID, ok := r.decks[deck]
	if !ok {
		return nil, nil
	}

	sub := sq.Select("nid").From("cards").Where(sq.Eq{"did": deckID})
	subSQL, subArgs, err := sub.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build cards query: %w", err)
	}

	q := sq.Select("flds").From("notes").
		Where("id IN ("+subSQL+")", subArgs...).
		OrderBy("id")
	if contains != "" {
		q = q.Where("instr(flds, ?) > 0", contains)
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build notes query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query notes: %w", err)
	}
	defer rows.Close()

	var notes []Note
	for rows.Next() {
		var flds string
		if err := rows.Scan(&flds); err != nil {
			return nil, fmt.Errorf("failed to read note: %w", err)
		}
		notes = append(notes, Note(strings.Split(flds, FieldSeparator)))
	}
	return notes, rows.Err()
}

// WordCards returns the sentence notes of the general deck whose back
// field is word. Old two-field notes are skipped.
func (r *Reader) WordCards(ctx context.Context, word string) ([]Note, error) {
	notes, err := r.notes(ctx, GeneralDeck, word)
	if err != nil {
		return nil, err
	}
	var matched []Note
	for _, n := range notes {
		if len(n) == 2 || len(n) <= BackField {
			continue
		}
		if n[BackField] == word {
			matched = append(matched, n)
		}
	}
	return matched, nil
}

// LegacyWordCards returns the notes of the old words deck whose first
// field is word
func (r *Reader) LegacyWordCards(ctx context.Context, word string) ([]Note, error) {
	notes, err := r.notes(ctx, WordsDeck, word)
	if err != nil {
		return nil, err
	}
	var matched []Note
	for _, n := range notes {
		if len(n) > 0 && n[0] == word {
			matched = append(matched, n)
		}
	}
	return matched, nil
}

// KnownWords returns the distinct back words of the general deck, sorted
func (r *Reader) KnownWords(ctx context.Context) ([]string, error) {
	notes, err := r.notes(ctx, GeneralDeck, "")
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	var words []string
	for _, n := range notes {
		if len(n) <= BackField || n[BackField] == "" {
			continue
		}
		if _, ok := seen[n[BackField]]; ok {
			continue
		}
		seen[n[BackField]] = struct{}{}
		words = append(words, n[BackField])
	}
	sort.Strings(words)
	return words, nil
}

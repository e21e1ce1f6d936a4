package exampledb

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	"codeberg.org/snonux/cardcreator/internal/cards"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Sentence is a stored example sentence
type Sentence struct {
	Chinese string    `json:"chinese"`
	English string    `json:"english"`
	Source  string    `json:"source"`
	Created time.Time `json:"created"`
}

// WordEntry is what one row of the examples table holds
type WordEntry struct {
	Word     string     `json:"word"`
	Examples []Sentence `json:"examples"`
}

// DB is the example sentence database
type DB struct {
	conn    *sql.DB
	sources []Source
	log     *zap.Logger
	now     func() time.Time

	migrator *goose.Provider
}

// Open opens (and if needed creates) the database at path. Sources are
// queried in order for words that are not stored yet.
func Open(path string, logger *zap.Logger, sources ...Source) (*DB, error) {
	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open example db: %w", err)
	}
	// One writer at a time, and a single shared connection keeps
	// ":memory:" databases in one place.
	conn.SetMaxOpenConns(1)

	if logger == nil {
		logger = zap.NewNop()
	}
	db := &DB{
		conn:    conn,
		sources: sources,
		log:     logger.With(zap.String("component", "exampledb")),
		now:     time.Now,
	}

	provider, err := newMigrator(conn)
	if err != nil {
		conn.Close()
		return nil, err
	}
	db.migrator = provider
	if _, err := provider.Up(context.Background()); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to migrate example db: %w", err)
	}

	return db, nil
}

func newMigrator(conn *sql.DB) (*goose.Provider, error) {
	fsys, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return nil, err
	}
	provider, err := goose.NewProvider(goose.DialectSQLite3, conn, fsys)
	if err != nil {
		return nil, fmt.Errorf("failed to load migrations: %w", err)
	}
	return provider, nil
}

// Create drops any existing table and creates an empty one
func (db *DB) Create(ctx context.Context) error {
	if _, err := db.migrator.DownTo(ctx, 0); err != nil {
		return fmt.Errorf("failed to drop examples table: %w", err)
	}
	if _, err := db.migrator.Up(ctx); err != nil {
		return fmt.Errorf("failed to create examples table: %w", err)
	}
	return nil
}

// Close closes the underlying database
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping checks that the database is reachable
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Insert stores the entry, replacing an existing one for the same word
func (db *DB) Insert(ctx context.Context, entry WordEntry) error {
	if entry.Word == "" {
		return errors.New("entry has no word")
	}
	if len(entry.Examples) == 0 {
		return fmt.Errorf("entry for %s has no examples", entry.Word)
	}

	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode entry: %w", err)
	}

	query, args, err := sq.Insert("examples").Options("OR REPLACE").
		Columns("word", "entry").
		Values(entry.Word, string(raw)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert: %w", err)
	}
	if _, err := db.conn.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert examples for %s: %w", entry.Word, err)
	}
	return nil
}

// Stored returns the stored entry for word, or nil if there is none.
// Rows that are not JSON, such as protobuf blobs written by older example
// databases, count as missing so that Get fetches and replaces them.
func (db *DB) Stored(ctx context.Context, word string) (*WordEntry, error) {
	query, args, err := sq.Select("entry").From("examples").Where(sq.Eq{"word": word}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var raw string
	err = db.conn.QueryRowContext(ctx, query, args...).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query examples for %s: %w", word, err)
	}

	var entry WordEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		db.log.Warn("ignoring undecodable examples",
			zap.String("word", word),
			zap.Error(err))
		return nil, nil
	}
	return &entry, nil
}

// Get returns example sentences for word. Stored sentences win; otherwise
// all sources are asked and a non-empty result is stored. A source that
// fails is skipped.
func (db *DB) Get(ctx context.Context, word string) ([]Sentence, error) {
	entry, err := db.Stored(ctx, word)
	if err != nil {
		return nil, err
	}
	if entry != nil {
		return entry.Examples, nil
	}

	fetched := WordEntry{Word: word}
	for _, src := range db.sources {
		pairs, err := src.Sentences(ctx, word)
		if err != nil {
			db.log.Warn("example source failed",
				zap.String("source", src.Name()),
				zap.String("word", word),
				zap.Error(err))
			continue
		}
		for _, p := range pairs {
			fetched.Examples = append(fetched.Examples, Sentence{
				Chinese: p.Chinese,
				English: p.English,
				Source:  src.Name(),
				Created: db.now().UTC(),
			})
		}
		db.log.Debug("fetched examples",
			zap.String("source", src.Name()),
			zap.String("word", word),
			zap.Int("count", len(pairs)))
	}

	// Nothing found, maybe every source failed: try again next time
	if len(fetched.Examples) == 0 {
		return nil, nil
	}

	if err := db.Insert(ctx, fetched); err != nil {
		return nil, err
	}
	return fetched.Examples, nil
}

// Examples returns the sentences for word as card examples
func (db *DB) Examples(ctx context.Context, word string) ([]cards.Example, error) {
	sentences, err := db.Get(ctx, word)
	if err != nil {
		return nil, err
	}
	return ToExamples(sentences), nil
}

// ToExamples converts stored sentences into card examples
func ToExamples(sentences []Sentence) []cards.Example {
	examples := make([]cards.Example, 0, len(sentences))
	for _, s := range sentences {
		examples = append(examples, cards.Example{SourceText: s.Chinese, GlossText: s.English})
	}
	return examples
}

package anki

import (
	"archive/zip"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"codeberg.org/snonux/cardcreator/internal/cards"
)

// DefaultDeck is the deck exported cards land in
const DefaultDeck = "Chinese::General"

// NoteTypeName names the note type inside the package
const NoteTypeName = "Chinese Sentence Cloze (cardcreator)"

// APKGGenerator creates Anki package files (.apkg)
type APKGGenerator struct {
	deckName string
	deckID   int64
	modelID  int64
	records  []cards.Record
	now      func() time.Time
}

// NewAPKGGenerator creates a new APKG generator
func NewAPKGGenerator(deckName string) *APKGGenerator {
	if deckName == "" {
		deckName = DefaultDeck
	}
	// IDs are millisecond timestamps like the ones Anki assigns
	now := time.Now().UnixMilli()
	return &APKGGenerator{
		deckName: deckName,
		deckID:   now,
		modelID:  now + 1,
		now:      time.Now,
	}
}

// AddRecord adds one flashcard record
func (g *APKGGenerator) AddRecord(r cards.Record) {
	g.records = append(g.records, r)
}

// AddRecords adds several flashcard records
func (g *APKGGenerator) AddRecords(records []cards.Record) {
	g.records = append(g.records, records...)
}

// Len returns the number of records added
func (g *APKGGenerator) Len() int {
	return len(g.records)
}

// GenerateAPKG writes the package to outputPath
func (g *APKGGenerator) GenerateAPKG(outputPath string) error {
	if len(g.records) == 0 {
		return fmt.Errorf("no cards to export")
	}

	// The SQLite driver needs a real file, so the package is assembled on disk
	tempDir, err := os.MkdirTemp("", "cardcreator_export_*")
	if err != nil {
		return fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer os.RemoveAll(tempDir)

	// No media, but Anki expects the mapping file
	if err := os.WriteFile(filepath.Join(tempDir, "media"), []byte("{}"), 0644); err != nil {
		return fmt.Errorf("failed to create media mapping: %w", err)
	}

	dbPath := filepath.Join(tempDir, "collection.anki2")
	if err := g.createDatabase(dbPath); err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := createZipPackage(tempDir, outputPath); err != nil {
		return fmt.Errorf("failed to create zip package: %w", err)
	}

	return nil
}

func (g *APKGGenerator) createDatabase(dbPath string) error {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	for _, query := range collectionSchema {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to create tables: %w", err)
		}
	}

	if err := g.insertCollection(db); err != nil {
		return fmt.Errorf("failed to insert collection: %w", err)
	}

	if err := g.insertNotesAndCards(db); err != nil {
		return fmt.Errorf("failed to insert notes and cards: %w", err)
	}

	return nil
}

// collectionSchema is the schema 11 layout older and current Anki
// versions both import
var collectionSchema = []string{
	`CREATE TABLE col (
		id integer PRIMARY KEY,
		crt integer NOT NULL,
		mod integer NOT NULL,
		scm integer NOT NULL,
		ver integer NOT NULL,
		dty integer NOT NULL,
		usn integer NOT NULL,
		ls integer NOT NULL,
		conf text NOT NULL,
		models text NOT NULL,
		decks text NOT NULL,
		dconf text NOT NULL,
		tags text NOT NULL
	)`,
	`CREATE TABLE notes (
		id integer PRIMARY KEY,
		guid text NOT NULL,
		mid integer NOT NULL,
		mod integer NOT NULL,
		usn integer NOT NULL,
		tags text NOT NULL,
		flds text NOT NULL,
		sfld text NOT NULL,
		csum integer NOT NULL,
		flags integer NOT NULL,
		data text NOT NULL
	)`,
	`CREATE TABLE cards (
		id integer PRIMARY KEY,
		nid integer NOT NULL,
		did integer NOT NULL,
		ord integer NOT NULL,
		mod integer NOT NULL,
		usn integer NOT NULL,
		type integer NOT NULL,
		queue integer NOT NULL,
		due integer NOT NULL,
		ivl integer NOT NULL,
		factor integer NOT NULL,
		reps integer NOT NULL,
		lapses integer NOT NULL,
		left integer NOT NULL,
		odue integer NOT NULL,
		odid integer NOT NULL,
		flags integer NOT NULL,
		data text NOT NULL
	)`,
	`CREATE TABLE revlog (
		id integer PRIMARY KEY,
		cid integer NOT NULL,
		usn integer NOT NULL,
		ease integer NOT NULL,
		ivl integer NOT NULL,
		lastIvl integer NOT NULL,
		factor integer NOT NULL,
		time integer NOT NULL,
		type integer NOT NULL
	)`,
	`CREATE TABLE graves (
		usn integer NOT NULL,
		oid integer NOT NULL,
		type integer NOT NULL
	)`,
	`CREATE INDEX ix_notes_csum ON notes (csum)`,
	`CREATE INDEX ix_cards_nid ON cards (nid)`,
	`CREATE INDEX ix_cards_sched ON cards (did, queue, due)`,
	`CREATE INDEX ix_revlog_cid ON revlog (cid)`,
}

func deckJSON(id int64, name, desc string, mod int64) map[string]interface{} {
	return map[string]interface{}{
		"id":               id,
		"name":             name,
		"mod":              mod,
		"desc":             desc,
		"collapsed":        false,
		"dyn":              0,
		"conf":             1,
		"usn":              0,
		"newToday":         []int{0, 0},
		"revToday":         []int{0, 0},
		"lrnToday":         []int{0, 0},
		"timeToday":        []int{0, 0},
		"browserCollapsed": false,
		"extendNew":        10,
		"extendRev":        50,
	}
}

func (g *APKGGenerator) insertCollection(db *sql.DB) error {
	now := g.now().Unix()

	decks := map[string]interface{}{
		"1": deckJSON(1, "Default", "", now),
		fmt.Sprintf("%d", g.deckID): deckJSON(g.deckID, g.deckName,
			"Chinese sentence cards created by cardcreator", now),
	}
	decksJSON, err := json.Marshal(decks)
	if err != nil {
		return err
	}

	models := map[string]interface{}{
		fmt.Sprintf("%d", g.modelID): g.noteTypeConfig(now),
	}
	modelsJSON, err := json.Marshal(models)
	if err != nil {
		return err
	}

	conf := map[string]interface{}{
		"nextPos":       1,
		"estTimes":      true,
		"activeDecks":   []int64{1},
		"sortType":      "noteFld",
		"sortBackwards": false,
		"addToCur":      true,
		"curDeck":       1,
		"newSpread":     0,
		"dueCounts":     true,
		"collapseTime":  1200,
		"timeLim":       0,
		"schedVer":      1,
		"curModel":      fmt.Sprintf("%d", g.modelID),
		"dayLearnFirst": false,
	}
	confJSON, err := json.Marshal(conf)
	if err != nil {
		return err
	}

	dconf := map[string]interface{}{
		"1": map[string]interface{}{
			"id":   1,
			"name": "Default",
			"dyn":  0,
			"new": map[string]interface{}{
				"delays":        []int{1, 10},
				"ints":          []int{1, 4, 7},
				"initialFactor": 2500,
				"perDay":        20,
				"order":         1,
				"bury":          true,
				"separate":      true,
			},
			"lapse": map[string]interface{}{
				"delays":      []int{10},
				"mult":        0,
				"minInt":      1,
				"leechFails":  8,
				"leechAction": 0,
			},
			"rev": map[string]interface{}{
				"perDay":   100,
				"ease4":    1.3,
				"fuzz":     0.05,
				"maxIvl":   36500,
				"ivlFct":   1,
				"bury":     true,
				"minSpace": 1,
			},
			"timer":    0,
			"maxTaken": 60,
			"usn":      0,
			"mod":      now,
			"autoplay": true,
			"replayq":  true,
		},
	}
	dconfJSON, err := json.Marshal(dconf)
	if err != nil {
		return err
	}

	_, err = db.Exec(`INSERT INTO col VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		1,        // id
		now,      // crt
		now*1000, // mod
		now*1000, // scm
		11,       // ver
		0,        // dty
		0,        // usn
		0,        // ls
		string(confJSON),
		string(modelsJSON),
		string(decksJSON),
		string(dconfJSON),
		"{}", // tags
	)
	return err
}

func (g *APKGGenerator) noteTypeConfig(mod int64) map[string]interface{} {
	flds := make([]map[string]interface{}, 0, len(NoteFields))
	for i, name := range NoteFields {
		flds = append(flds, map[string]interface{}{
			"name":   name,
			"ord":    i,
			"sticky": false,
			"rtl":    false,
			"font":   "Arial",
			"size":   20,
			"media":  []string{},
		})
	}

	return map[string]interface{}{
		"id":    g.modelID,
		"name":  NoteTypeName,
		"type":  0,
		"mod":   mod,
		"usn":   -1,
		"sortf": BackField,
		"did":   g.deckID,
		// The reverse card needs both Back and TwoCards
		"req": [][]interface{}{
			{0, "all", []int{FrontField}},
			{1, "all", []int{BackField, TwoCardsField}},
		},
		"vers":      []int{},
		"tags":      []string{},
		"latexPre":  "\\documentclass[12pt]{article}\n\\special{papersize=3in,5in}\n\\usepackage[utf8]{inputenc}\n\\usepackage{amssymb,amsmath}\n\\pagestyle{empty}\n\\setlength{\\parindent}{0in}\n\\begin{document}",
		"latexPost": "\\end{document}",
		"flds":      flds,
		"tmpls": []map[string]interface{}{
			{
				"name":  "Sentence",
				"ord":   0,
				"qfmt":  frontTemplate,
				"afmt":  backTemplate,
				"did":   nil,
				"bqfmt": "",
				"bafmt": "",
			},
			{
				"name":  "Word",
				"ord":   1,
				"qfmt":  reverseFrontTemplate,
				"afmt":  reverseBackTemplate,
				"did":   nil,
				"bqfmt": "",
				"bafmt": "",
			},
		},
		"css": cardCSS,
	}
}

const frontTemplate = `<div class="front">{{Front}}</div>
{{#Hints}}<div class="hints">{{Hints}}</div>{{/Hints}}`

const backTemplate = `{{FrontSide}}

<hr id="answer">

<div class="word">{{Back}}</div>
<div class="sentence">{{Sentence}}</div>
<div class="info">{{Info}}</div>`

const reverseFrontTemplate = `{{#TwoCards}}<div class="word">{{Back}}</div>{{/TwoCards}}`

const reverseBackTemplate = `{{FrontSide}}

<hr id="answer">

<div class="info">{{Info}}</div>`

const cardCSS = `.card {
  font-family: "Noto Sans CJK SC", "PingFang SC", sans-serif;
  font-size: 24px;
  text-align: center;
  color: #333;
  background-color: white;
}

.front, .sentence {
  font-size: 32px;
}

.word {
  font-size: 40px;
  font-weight: bold;
  color: #c0392b;
  margin: 20px 0;
}

.hints, .info {
  font-size: 18px;
  color: #7f8c8d;
}

hr#answer {
  margin: 30px 0;
  border: 0;
  border-top: 1px solid #ecf0f1;
}`

// insertNotesAndCards adds one note per record. Every note gets the
// sentence card, records that start a pair also get the word card.
func (g *APKGGenerator) insertNotesAndCards(db *sql.DB) error {
	now := g.now()
	cardQuery := `INSERT INTO cards VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	for i, r := range g.records {
		// Leave room for two cards per note
		noteID := now.UnixMilli() + int64(i*3)
		fields := noteFields(r)

		_, err := db.Exec(`INSERT INTO notes VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			noteID,
			uuid.NewString(),
			g.modelID,
			now.Unix(),
			-1, // usn
			"",
			strings.Join(fields, FieldSeparator),
			r.BackWord, // sort field
			0,          // csum
			0,          // flags
			"",
		)
		if err != nil {
			return fmt.Errorf("failed to insert note: %w", err)
		}

		ords := []int{0}
		if r.IsPrimaryOfPair {
			ords = append(ords, 1)
		}
		for _, ord := range ords {
			cardID := noteID + 1 + int64(ord)
			_, err = db.Exec(cardQuery,
				cardID,
				noteID,
				g.deckID,
				ord,
				now.Unix(),
				-1,     // usn
				0,      // type new
				0,      // queue new
				cardID, // due is the position for new cards
				0, 0, 0, 0, 0, 0, 0, 0,
				"",
			)
			if err != nil {
				return fmt.Errorf("failed to insert card %d of note %d: %w", ord, i, err)
			}
		}
	}

	return nil
}

// createZipPackage zips every file of dir into outputPath
func createZipPackage(dir, outputPath string) error {
	zipFile, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer zipFile.Close()

	archive := zip.NewWriter(zipFile)

	err = filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		relPath, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}

		writer, err := archive.Create(relPath)
		if err != nil {
			return err
		}

		file, err := os.Open(path)
		if err != nil {
			return err
		}
		defer file.Close()

		_, err = io.Copy(writer, file)
		return err
	})
	if err != nil {
		archive.Close()
		return err
	}

	if err := archive.Close(); err != nil {
		return err
	}
	return zipFile.Close()
}

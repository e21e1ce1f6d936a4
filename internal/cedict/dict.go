package cedict

import (
	"bufio"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"codeberg.org/snonux/cardcreator/internal/cards"
)

const (
	// DictFile is the CC-CEDICT file name inside the data directory
	DictFile = "cedict_ts.u8"
	// HSKWordsFile lists HSK words, one per line, with "#" starting a new level
	HSKWordsFile = "hsk_words.txt"
)

// ErrNotFound is returned when a word has no dictionary entry
var ErrNotFound = errors.New("word not in dictionary")

var lineRe = regexp.MustCompile(`^(\S*)\s(\S*)\s\[(.*)\] /(.*)/`)

// Meaning is a single CC-CEDICT sense
type Meaning struct {
	Pinyin  string // numbered pinyin, e.g. "zou3"
	Meaning string // English gloss
}

// PinyinDiacritic returns the pinyin with tone marks
func (m Meaning) PinyinDiacritic() string {
	return PinyinDiacritic(m.Pinyin)
}

// Entry collects all meanings of one simplified word
type Entry struct {
	Word        string
	Traditional string
	Meanings    []Meaning
	HSKLevel    int // 1-6, 0 when the word is on no HSK list
}

// Dict is an in-memory CC-CEDICT dictionary. It is read-only after Load.
type Dict struct {
	entries     map[string]*Entry
	traditional map[string]*Entry
}

// Load reads the dictionary from dataDir. The HSK word list is optional.
func Load(fs afero.Fs, dataDir string) (*Dict, error) {
	d := &Dict{
		entries:     make(map[string]*Entry),
		traditional: make(map[string]*Entry),
	}

	if err := d.loadCedict(fs, filepath.Join(dataDir, DictFile)); err != nil {
		return nil, err
	}

	hskPath := filepath.Join(dataDir, HSKWordsFile)
	if ok, _ := afero.Exists(fs, hskPath); ok {
		if err := d.loadHSKWords(fs, hskPath); err != nil {
			return nil, err
		}
	}

	return d, nil
}

func (d *Dict) loadCedict(fs afero.Fs, path string) error {
	file, err := fs.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open dictionary: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		m := lineRe.FindStringSubmatch(line)
		if m == nil {
			return fmt.Errorf("%s:%d: malformed dictionary line", filepath.Base(path), lineNo)
		}
		trad, word, pinyin, meaning := m[1], m[2], m[3], m[4]

		entry, ok := d.entries[word]
		if !ok {
			entry = &Entry{Word: word, Traditional: trad}
			d.entries[word] = entry
			d.traditional[trad] = entry
		}
		entry.Meanings = append(entry.Meanings, Meaning{Pinyin: pinyin, Meaning: meaning})
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read dictionary: %w", err)
	}

	// Main meanings first, variants last
	for _, entry := range d.entries {
		sort.SliceStable(entry.Meanings, func(i, j int) bool {
			return meaningRank(entry.Meanings[i]) < meaningRank(entry.Meanings[j])
		})
	}
	return nil
}

func meaningRank(m Meaning) int {
	switch {
	case strings.HasPrefix(m.Meaning, "variant"):
		return 1
	case strings.HasPrefix(m.Meaning, "old variant"):
		return 2
	case strings.HasPrefix(m.Meaning, "archaic variant"):
		return 3
	default:
		return 0
	}
}

func (d *Dict) loadHSKWords(fs afero.Fs, path string) error {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return fmt.Errorf("failed to read HSK words: %w", err)
	}

	level := 1
	inLevel := false
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "#") {
			if inLevel {
				level++
				inLevel = false
			}
			continue
		}
		if line == "" {
			continue
		}
		inLevel = true
		if entry, ok := d.entries[line]; ok {
			entry.HSKLevel = level
		}
	}
	return nil
}

// Lookup returns the entry for a simplified or traditional word
func (d *Dict) Lookup(word string) (*Entry, bool) {
	if entry, ok := d.entries[word]; ok {
		return entry, true
	}
	entry, ok := d.traditional[word]
	return entry, ok
}

// Definitions returns the word's meanings as card definitions
func (d *Dict) Definitions(word string) ([]cards.Definition, error) {
	entry, ok := d.Lookup(word)
	if !ok {
		return nil, fmt.Errorf("%s: %w", word, ErrNotFound)
	}

	defs := make([]cards.Definition, 0, len(entry.Meanings))
	for _, m := range entry.Meanings {
		defs = append(defs, cards.Definition{
			Pronunciation: m.PinyinDiacritic(),
			Meaning:       m.Meaning,
		})
	}
	return defs, nil
}

// Len returns the number of simplified entries
func (d *Dict) Len() int {
	return len(d.entries)
}

package anki

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"

	"codeberg.org/snonux/cardcreator/internal/cards"
)

// PendingFile is the default name of the pending cards file
const PendingFile = "pending_anki.csv"

// PendingStore appends flashcard records to a semicolon separated file
// which Anki can import. Each line holds the note fields in NoteFields order.
type PendingStore struct {
	fs   afero.Fs
	path string
	mu   sync.Mutex
}

// NewPendingStore creates a store writing to path on fs
func NewPendingStore(fs afero.Fs, path string) *PendingStore {
	return &PendingStore{fs: fs, path: path}
}

// Path returns the location of the pending file
func (s *PendingStore) Path() string {
	return s.path
}

// Append adds records to the end of the file, creating it if needed
func (s *PendingStore) Append(records []cards.Record) error {
	if len(records) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fs.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", s.path, err)
	}

	file, err := s.fs.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open pending file: %w", err)
	}
	defer file.Close()

	writer := newWriter(file)
	for _, r := range records {
		if err := writer.Write(noteFields(r)); err != nil {
			return fmt.Errorf("failed to write card: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to write pending file: %w", err)
	}

	return file.Close()
}

// Load reads all pending records. A missing file means no records.
func (s *PendingStore) Load() ([]cards.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load()
}

// Drain passes the pending records to fn while holding the store lock.
// Appends wait until fn returns, so fn can move the file away without
// losing cards saved in the meantime.
func (s *PendingStore) Drain(fn func(records []cards.Record) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return err
	}
	return fn(records)
}

func (s *PendingStore) load() ([]cards.Record, error) {
	file, err := s.fs.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open pending file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.Comma = ';'
	reader.FieldsPerRecord = len(NoteFields)
	reader.LazyQuotes = true

	var records []cards.Record
	for line := 1; ; line++ {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", s.path, err)
		}
		r, err := recordFromFields(fields)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", s.path, line, err)
		}
		records = append(records, r)
	}
	return records, nil
}

// Count returns the number of pending records
func (s *PendingStore) Count() (int, error) {
	records, err := s.Load()
	return len(records), err
}

func newWriter(w io.Writer) *csv.Writer {
	writer := csv.NewWriter(w)
	writer.Comma = ';'
	return writer
}

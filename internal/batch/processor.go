package batch

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/afero"
)

// WordEntry is one line of a batch file
type WordEntry struct {
	Word string
	// Definitions and Examples are 0-based indices into the lookup result
	Definitions []int
	Examples    []int
	// All is set for bare words, everything found gets selected
	All bool
}

// ReadBatchFile reads words from a file on fs
// Supports formats:
// - word only: "走" (all definitions and examples are used)
// - with picks: "走 = 0,1 | 2,4" (definition indices | example indices)
// Blank lines and lines starting with '#' are ignored.
func ReadBatchFile(fs afero.Fs, filename string) ([]WordEntry, error) {
	content, err := afero.ReadFile(fs, filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}

	var entries []WordEntry
	for n, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		entry, err := parseLine(line)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", filename, n+1, err)
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

func parseLine(line string) (WordEntry, error) {
	word, picks, found := strings.Cut(line, "=")
	word = strings.TrimSpace(word)
	if word == "" {
		return WordEntry{}, fmt.Errorf("missing word in %q", line)
	}
	if !found {
		return WordEntry{Word: word, All: true}, nil
	}

	defPart, exPart, ok := strings.Cut(picks, "|")
	if !ok {
		return WordEntry{}, fmt.Errorf("expected \"definitions | examples\" after '=' in %q", line)
	}

	defs, err := parseIndices(defPart)
	if err != nil {
		return WordEntry{}, fmt.Errorf("definitions of %s: %w", word, err)
	}
	examples, err := parseIndices(exPart)
	if err != nil {
		return WordEntry{}, fmt.Errorf("examples of %s: %w", word, err)
	}

	return WordEntry{Word: word, Definitions: defs, Examples: examples}, nil
}

// parseIndices parses a comma separated list of non-negative integers
func parseIndices(s string) ([]int, error) {
	var indices []int
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		i, err := strconv.Atoi(field)
		if err != nil || i < 0 {
			return nil, fmt.Errorf("invalid index %q", field)
		}
		indices = append(indices, i)
	}
	return indices, nil
}

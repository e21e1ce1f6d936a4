package internal

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

// ExportFileName names an exported deck package after the deck and the
// export time, e.g. Chinese_General-20240102-150405.apkg
func ExportFileName(deckName string, now time.Time) string {
	name := SanitizeFilename(strings.ReplaceAll(deckName, "::", "_"))
	if name == "" {
		name = "cards"
	}
	return fmt.Sprintf("%s-%s.apkg", name, now.Format("20060102-150405"))
}

// SanitizeFilename creates a safe filename from a string
func SanitizeFilename(s string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(s) {
		if isAlphaNumeric(r) || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}

// isAlphaNumeric checks if a rune is a letter (including Han characters) or digit
func isAlphaNumeric(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

package anki

import (
	"fmt"

	"codeberg.org/snonux/cardcreator/internal/cards"
)

// NoteFields are the fields of the vocabulary note type, in order. Extra
// is kept empty, it exists so that Back stays at index 3 like in the
// notes the collection already holds.
var NoteFields = []string{"Front", "Extra", "Hints", "Back", "Sentence", "Info", "TwoCards"}

// Field positions within a note
const (
	FrontField = iota
	ExtraField
	HintsField
	BackField
	SentenceField
	InfoField
	TwoCardsField
)

// TwoCardsYes marks a note that also gets a reverse card
const TwoCardsYes = "Y"

// FieldSeparator separates note fields in the notes table
const FieldSeparator = "\x1f"

// noteFields lays out a record as note fields
func noteFields(r cards.Record) []string {
	twoCards := ""
	if r.IsPrimaryOfPair {
		twoCards = TwoCardsYes
	}
	return []string{
		r.FrontText,
		"",
		r.FrontHint,
		r.BackWord,
		r.FullSentence,
		r.InfoHTML,
		twoCards,
	}
}

// recordFromFields is the inverse of noteFields
func recordFromFields(fields []string) (cards.Record, error) {
	if len(fields) != len(NoteFields) {
		return cards.Record{}, fmt.Errorf("expected %d fields, got %d", len(NoteFields), len(fields))
	}
	return cards.Record{
		FrontText:       fields[FrontField],
		FrontHint:       fields[HintsField],
		BackWord:        fields[BackField],
		FullSentence:    fields[SentenceField],
		InfoHTML:        fields[InfoField],
		IsPrimaryOfPair: fields[TwoCardsField] == TwoCardsYes,
	}, nil
}

package cards

import (
	"errors"
	"strings"
)

// UserProvidedGloss marks an example sentence typed in by the user instead
// of coming from the example database.
const UserProvidedGloss = "[ADDED]"

// Blank replaces the target word on the front of a card.
const Blank = "___"

// InfoSeparator joins formatted definitions in the info field.
const InfoSeparator = "<br>"

var (
	// ErrNoSelection is returned when no definition or no example was picked.
	ErrNoSelection = errors.New("pick some definitions and examples")

	// ErrEmptyWord is returned for an empty or whitespace-only word.
	ErrEmptyWord = errors.New("word must not be empty")
)

// Definition is a single dictionary sense of a word
type Definition struct {
	Pronunciation string `json:"pronunciation"`
	Meaning       string `json:"meaning"`
}

// String formats the definition as "(pronunciation) meaning"
func (d Definition) String() string {
	return "(" + d.Pronunciation + ") " + d.Meaning
}

// Example is a sentence using the word together with its translation
type Example struct {
	SourceText string `json:"sourceText"`
	GlossText  string `json:"glossText"`
}

// IsUserProvided reports whether the example was added by the user
func (e Example) IsUserProvided() bool {
	return e.GlossText == UserProvidedGloss
}

// Record is one flashcard as it is handed to the persistence layer.
// Records are never modified after Assemble returns them.
type Record struct {
	FrontText       string `json:"frontText"`
	FrontHint       string `json:"frontHint"`
	BackWord        string `json:"backWord"`
	FullSentence    string `json:"fullSentence"`
	InfoHTML        string `json:"infoHtml"`
	IsPrimaryOfPair bool   `json:"isPrimaryOfPair"`
}

// ValidateWord trims the word and rejects it when nothing is left
func ValidateWord(word string) (string, error) {
	word = strings.TrimSpace(word)
	if word == "" {
		return "", ErrEmptyWord
	}
	return word, nil
}

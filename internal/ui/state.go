// Package ui holds the state of the card creation page and the events
// that change it. The server renders a State and rebuilds it from every
// form post, so nothing lives between requests.
package ui

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"codeberg.org/snonux/cardcreator/internal/anki"
	"codeberg.org/snonux/cardcreator/internal/cards"
	"codeberg.org/snonux/cardcreator/internal/lookup"
)

// Mode is the step the page is in
type Mode int

const (
	// ModePickSentences shows definitions and examples to pick from
	ModePickSentences Mode = iota
	// ModeCreateCards shows the assembled cards ready to be saved
	ModeCreateCards
)

func (m Mode) String() string {
	switch m {
	case ModePickSentences:
		return "pick"
	case ModeCreateCards:
		return "create"
	default:
		return "unknown"
	}
}

// NoSelectionNotice is shown when cards are requested without a pick
const NoSelectionNotice = "Pick some definitions and examples!"

// Form field names
const (
	FieldDefinition = "def"
	FieldExample    = "ex"
	FieldCustom     = "custom"
	FieldPending    = "pending"
	FieldCards      = "cards"
	FieldHint       = "hint"
	FieldMode       = "mode"
)

// State is everything the card creation page shows
type State struct {
	Word            string
	Mode            Mode
	Definitions     []cards.Definition
	DefinitionMask  cards.SelectionMask
	Examples        []cards.Example
	ExampleMask     cards.SelectionMask
	Cards           []cards.Record
	PendingSentence string
	Notice          string

	// Shown for reference only
	WordCards       []anki.Note
	LegacyWordCards []anki.Note
}

// New creates the initial state for a lookup result
func New(result *lookup.Result) *State {
	s := &State{
		Word:            result.Word,
		Mode:            ModePickSentences,
		Definitions:     append([]cards.Definition(nil), result.Definitions...),
		Examples:        append([]cards.Example(nil), result.Examples...),
		WordCards:       result.WordCards,
		LegacyWordCards: result.LegacyWordCards,
	}
	s.DefinitionMask = make(cards.SelectionMask, len(s.Definitions))
	s.ExampleMask = make(cards.SelectionMask, len(s.Examples))
	return s
}

// ToggleDefinition flips the selection of definition i
func (s *State) ToggleDefinition(i int) {
	s.DefinitionMask = toggle(s.DefinitionMask, len(s.Definitions), i)
}

// ToggleExample flips the selection of example i
func (s *State) ToggleExample(i int) {
	s.ExampleMask = toggle(s.ExampleMask, len(s.Examples), i)
}

func toggle(mask cards.SelectionMask, n, i int) cards.SelectionMask {
	if i < 0 || i >= n {
		return mask
	}
	mask = mask.Resize(n)
	mask[i] = !mask[i]
	return mask
}

// AddPendingSentence moves the typed sentence into the examples
func (s *State) AddPendingSentence() {
	s.Examples, s.ExampleMask = cards.AddCustomSentence(s.Examples, s.ExampleMask, s.PendingSentence)
	s.PendingSentence = ""
}

// CreateCards assembles the selection into cards and switches to
// ModeCreateCards. Without a selection the mode stays and a notice is set.
func (s *State) CreateCards() error {
	records, err := cards.Assemble(s.Word, s.Definitions, s.DefinitionMask, s.Examples, s.ExampleMask)
	if errors.Is(err, cards.ErrNoSelection) {
		s.Notice = NoSelectionNotice
		return err
	}
	if err != nil {
		return err
	}

	s.Cards = records
	s.Mode = ModeCreateCards
	s.Notice = ""
	return nil
}

// SetHint sets the front hint of card i
func (s *State) SetHint(i int, hint string) {
	if i >= 0 && i < len(s.Cards) {
		s.Cards[i].FrontHint = hint
	}
}

// SaveFailed keeps the cards so the user can retry
func (s *State) SaveFailed(err error) {
	s.Notice = fmt.Sprintf("Saving cards failed: %v", err)
}

// Back returns to picking, the selection is kept
func (s *State) Back() {
	s.Mode = ModePickSentences
	s.Cards = nil
	s.Notice = ""
}

// Reset clears selections, cards and typed text
func (s *State) Reset() {
	s.Mode = ModePickSentences
	s.DefinitionMask = make(cards.SelectionMask, len(s.Definitions))
	s.ExampleMask = make(cards.SelectionMask, len(s.Examples))
	s.Cards = nil
	s.PendingSentence = ""
	s.Notice = ""
}

// CustomSentences returns the sentences the user added, in order
func (s *State) CustomSentences() []string {
	var sentences []string
	for _, e := range s.Examples {
		if e.IsUserProvided() {
			sentences = append(sentences, e.SourceText)
		}
	}
	return sentences
}

// CardsJSON encodes the cards for the hidden form field
func (s *State) CardsJSON() (string, error) {
	raw, err := json.Marshal(s.Cards)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// FromForm rebuilds the state from a form post of the card creation page.
// Custom sentences are appended to the looked up examples before the
// checked boxes are applied, so their indices continue the example list.
func FromForm(result *lookup.Result, form url.Values) (*State, error) {
	s := New(result)

	for _, sentence := range form[FieldCustom] {
		s.Examples, s.ExampleMask = cards.AddCustomSentence(s.Examples, s.ExampleMask, sentence)
	}

	for _, v := range form[FieldDefinition] {
		i, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid definition index %q: %w", v, err)
		}
		if i >= 0 && i < len(s.DefinitionMask) {
			s.DefinitionMask[i] = true
		}
	}
	for _, v := range form[FieldExample] {
		i, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid example index %q: %w", v, err)
		}
		if i >= 0 && i < len(s.ExampleMask) {
			s.ExampleMask[i] = true
		}
	}

	s.PendingSentence = form.Get(FieldPending)

	if raw := form.Get(FieldCards); raw != "" {
		if err := json.Unmarshal([]byte(raw), &s.Cards); err != nil {
			return nil, fmt.Errorf("invalid cards: %w", err)
		}
		s.Mode = ModeCreateCards
		for i, hint := range form[FieldHint] {
			s.SetHint(i, hint)
		}
	}

	return s, nil
}

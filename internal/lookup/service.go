// Package lookup gathers everything known about a word: dictionary
// definitions, example sentences and the cards that already exist for it.
package lookup

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"codeberg.org/snonux/cardcreator/internal/anki"
	"codeberg.org/snonux/cardcreator/internal/cards"
	"codeberg.org/snonux/cardcreator/internal/cedict"
)

// ErrNotFound is returned for words the dictionary does not know
var ErrNotFound = errors.New("word not found")

// Dictionary provides definitions, it is implemented by cedict.Dict
type Dictionary interface {
	Definitions(word string) ([]cards.Definition, error)
}

// Examples provides example sentences, it is implemented by exampledb.DB
type Examples interface {
	Examples(ctx context.Context, word string) ([]cards.Example, error)
}

// Collection provides existing cards, it is implemented by anki.Reader
type Collection interface {
	WordCards(ctx context.Context, word string) ([]anki.Note, error)
	LegacyWordCards(ctx context.Context, word string) ([]anki.Note, error)
}

// Result is the outcome of a lookup
type Result struct {
	Word            string             `json:"word"`
	Definitions     []cards.Definition `json:"definitions"`
	Examples        []cards.Example    `json:"examples"`
	WordCards       []anki.Note        `json:"wordCards"`
	LegacyWordCards []anki.Note        `json:"legacyWordCards"`
}

// Service looks words up
type Service struct {
	dict       Dictionary
	examples   Examples
	collection Collection
	log        *zap.Logger
}

// NewService creates a lookup service. collection may be nil when no Anki
// collection is configured.
func NewService(dict Dictionary, examples Examples, collection Collection, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		dict:       dict,
		examples:   examples,
		collection: collection,
		log:        logger.With(zap.String("component", "lookup")),
	}
}

// Lookup returns definitions, examples and existing cards for word.
// Examples and cards are fetched concurrently.
func (s *Service) Lookup(ctx context.Context, word string) (*Result, error) {
	word, err := cards.ValidateWord(word)
	if err != nil {
		return nil, err
	}
	start := time.Now()

	defs, err := s.dict.Definitions(word)
	if errors.Is(err, cedict.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", word, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up %s: %w", word, err)
	}

	result := &Result{
		Word:            word,
		Definitions:     defs,
		Examples:        []cards.Example{},
		WordCards:       []anki.Note{},
		LegacyWordCards: []anki.Note{},
	}

	g, gctx := errgroup.WithContext(ctx)

	if s.examples != nil {
		g.Go(func() error {
			examples, err := s.examples.Examples(gctx, word)
			if err != nil {
				return fmt.Errorf("failed to get examples for %s: %w", word, err)
			}
			if examples != nil {
				result.Examples = examples
			}
			return nil
		})
	}

	if s.collection != nil {
		g.Go(func() error {
			notes, err := s.collection.WordCards(gctx, word)
			if err != nil {
				return fmt.Errorf("failed to read word cards for %s: %w", word, err)
			}
			if notes != nil {
				result.WordCards = notes
			}
			return nil
		})
		g.Go(func() error {
			notes, err := s.collection.LegacyWordCards(gctx, word)
			if err != nil {
				return fmt.Errorf("failed to read legacy cards for %s: %w", word, err)
			}
			if notes != nil {
				result.LegacyWordCards = notes
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.log.Debug("looked up word",
		zap.String("word", word),
		zap.Int("definitions", len(result.Definitions)),
		zap.Int("examples", len(result.Examples)),
		zap.Int("wordCards", len(result.WordCards)),
		zap.Duration("took", time.Since(start)))

	return result, nil
}

package processor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"codeberg.org/snonux/cardcreator/internal"
	"codeberg.org/snonux/cardcreator/internal/anki"
	"codeberg.org/snonux/cardcreator/internal/archive"
	"codeberg.org/snonux/cardcreator/internal/batch"
	"codeberg.org/snonux/cardcreator/internal/cards"
	"codeberg.org/snonux/cardcreator/internal/cedict"
	"codeberg.org/snonux/cardcreator/internal/cli"
	"codeberg.org/snonux/cardcreator/internal/exampledb"
	"codeberg.org/snonux/cardcreator/internal/lookup"
	"codeberg.org/snonux/cardcreator/internal/models"
	"codeberg.org/snonux/cardcreator/internal/server"
)

// ErrNoPendingCards is returned by Export when there is nothing to export
var ErrNoPendingCards = errors.New("no pending cards to export")

const (
	sourceTimeout   = 15 * time.Second
	breakerFailures = 3
	breakerTimeout  = time.Minute
)

// Processor handles the main word processing logic
type Processor struct {
	flags  *cli.Flags
	fs     afero.Fs
	log    *zap.Logger
	out    io.Writer
	now    func() time.Time
	apiKey string

	pending    *anki.PendingStore
	dict       *cedict.Dict
	examples   *exampledb.DB
	collection *anki.Reader
	lookup     *lookup.Service
}

// NewProcessor creates a new word processor working on the OS filesystem
func NewProcessor(flags *cli.Flags, logger *zap.Logger) *Processor {
	return NewProcessorWithFs(flags, afero.NewOsFs(), logger)
}

// NewProcessorWithFs creates a processor reading the dictionary and the
// pending cards through fs
func NewProcessorWithFs(flags *cli.Flags, fs afero.Fs, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{
		flags:   flags,
		fs:      fs,
		log:     logger,
		out:     os.Stdout,
		now:     time.Now,
		apiKey:  cli.GetOpenAIKey(),
		pending: anki.NewPendingStore(fs, flags.PendingPath()),
	}
}

// open loads the dictionary and opens the databases on first use
func (p *Processor) open(ctx context.Context) error {
	if p.lookup != nil {
		return nil
	}

	dict, err := cedict.Load(p.fs, p.flags.DataDir)
	if err != nil {
		return fmt.Errorf("failed to load dictionary: %w", err)
	}
	p.log.Info("dictionary loaded", zap.Int("entries", dict.Len()))

	sources, err := p.exampleSources()
	if err != nil {
		return err
	}

	if err := p.fs.MkdirAll(p.flags.DataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	examples, err := exampledb.Open(p.flags.ExampleDBPath(), p.log, sources...)
	if err != nil {
		return err
	}

	// A nil *anki.Reader must not end up in the interface
	var collection lookup.Collection
	if p.flags.AnkiCollection != "" {
		reader, err := anki.OpenReader(ctx, p.flags.AnkiCollection)
		if err != nil {
			examples.Close()
			return err
		}
		p.collection = reader
		collection = reader
		p.log.Info("anki collection opened",
			zap.String("path", p.flags.AnkiCollection),
			zap.Strings("decks", reader.Decks()))
	}

	p.dict = dict
	p.examples = examples
	p.lookup = lookup.NewService(dict, examples, collection, p.log)
	return nil
}

// exampleSources builds the configured example sentence sources, each
// behind a circuit breaker
func (p *Processor) exampleSources() ([]exampledb.Source, error) {
	client := &http.Client{Timeout: sourceTimeout}

	var sources []exampledb.Source
	for _, name := range p.flags.Sources {
		var src exampledb.Source
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "linedict":
			src = exampledb.NewLineDict(client)
		case "yellowbridge":
			src = exampledb.NewYellowBridge(client)
		case "openai":
			if p.apiKey == "" {
				p.log.Warn("openai example source disabled, no API key")
				continue
			}
			src = exampledb.NewLLM(p.apiKey, p.flags.OpenAIModel, p.flags.OpenAICount)
		case "":
			continue
		default:
			return nil, fmt.Errorf("unknown example source: %s", name)
		}
		sources = append(sources, exampledb.NewBreakerSource(src, breakerFailures, breakerTimeout))
	}
	return sources, nil
}

// Close releases the databases
func (p *Processor) Close() error {
	var errs []error
	if p.examples != nil {
		errs = append(errs, p.examples.Close())
	}
	if p.collection != nil {
		errs = append(errs, p.collection.Close())
	}
	return errors.Join(errs...)
}

// RunServer serves the web UI until ctx is cancelled
func (p *Processor) RunServer(ctx context.Context) error {
	if err := p.open(ctx); err != nil {
		return err
	}

	components := map[string]server.Pinger{"examples": p.examples}
	if p.collection != nil {
		components["collection"] = p.collection
	}

	srv, err := server.New(server.Config{
		Lookup:     p.lookup,
		Store:      p.pending,
		Exporter:   p,
		Components: components,
		Version:    internal.Version,
		Logger:     p.log,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(p.out, "Serving on http://%s\n", p.flags.Listen)
	return srv.Run(ctx, p.flags.Listen)
}

// ProcessSingleWord prints the definitions and examples of word. With
// --def/--example indices (or --sentence) it also creates the cards.
func (p *Processor) ProcessSingleWord(ctx context.Context, word string) error {
	if err := p.open(ctx); err != nil {
		return err
	}

	result, err := p.lookup.Lookup(ctx, word)
	if err != nil {
		return fmt.Errorf("failed to look up '%s': %w", word, err)
	}
	p.printResult(result)

	if len(p.flags.Definitions) == 0 && len(p.flags.Examples) == 0 && len(p.flags.Sentences) == 0 {
		return nil
	}

	records, err := assemble(result, batch.WordEntry{
		Word:        result.Word,
		Definitions: p.flags.Definitions,
		Examples:    p.flags.Examples,
	}, p.flags.Sentences)
	if err != nil {
		return err
	}

	return p.saveRecords(records)
}

// ProcessBatch creates cards for every word of the batch file
func (p *Processor) ProcessBatch(ctx context.Context) error {
	entries, err := batch.ReadBatchFile(p.fs, p.flags.BatchFile)
	if err != nil {
		return err
	}

	if err := p.open(ctx); err != nil {
		return err
	}

	known, err := p.knownWords(ctx)
	if err != nil {
		return err
	}

	// Track statistics
	skippedCount := 0
	processedCount := 0
	cardCount := 0
	errorCount := 0

	for i, entry := range entries {
		fmt.Fprintf(p.out, "\nProcessing %d/%d: %s\n", i+1, len(entries), entry.Word)

		// Explicit picks always create cards, bare words only once
		if _, ok := known[entry.Word]; ok && entry.All {
			fmt.Fprintf(p.out, "  ✓ Skipping '%s' - already has cards in the collection\n", entry.Word)
			skippedCount++
			continue
		}

		result, err := p.lookup.Lookup(ctx, entry.Word)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error looking up '%s': %v\n", entry.Word, err)
			errorCount++
			continue
		}

		records, err := assemble(result, entry, nil)
		if err == nil {
			err = p.saveRecords(records)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error processing '%s': %v\n", entry.Word, err)
			errorCount++
			continue
		}

		processedCount++
		cardCount += len(records)
	}

	// Print summary
	fmt.Fprintf(p.out, "\n=== Batch Processing Summary ===\n")
	fmt.Fprintf(p.out, "Total words: %d\n", len(entries))
	fmt.Fprintf(p.out, "Processed: %d\n", processedCount)
	fmt.Fprintf(p.out, "Cards: %d\n", cardCount)
	fmt.Fprintf(p.out, "Skipped (already in collection): %d\n", skippedCount)
	if errorCount > 0 {
		fmt.Fprintf(p.out, "Errors: %d\n", errorCount)
	}
	fmt.Fprintf(p.out, "================================\n")

	return nil
}

// knownWords returns the words that already have sentence cards in the
// Anki collection
func (p *Processor) knownWords(ctx context.Context) (map[string]struct{}, error) {
	known := make(map[string]struct{})
	if p.collection == nil {
		return known, nil
	}

	words, err := p.collection.KnownWords(ctx)
	if err != nil {
		return nil, err
	}
	for _, w := range words {
		known[w] = struct{}{}
	}
	return known, nil
}

// assemble builds the cards for entry. Custom sentences are appended to
// the examples and always selected.
func assemble(result *lookup.Result, entry batch.WordEntry, sentences []string) ([]cards.Record, error) {
	examples := result.Examples
	var exMask cards.SelectionMask

	defMask, err := maskFor("definition", len(result.Definitions), entry.Definitions, entry.All)
	if err != nil {
		return nil, err
	}
	exMask, err = maskFor("example", len(examples), entry.Examples, entry.All)
	if err != nil {
		return nil, err
	}

	for _, s := range sentences {
		before := len(examples)
		examples, exMask = cards.AddCustomSentence(examples, exMask, s)
		if len(examples) > before {
			exMask[before] = true
		}
	}

	return cards.Assemble(result.Word, result.Definitions, defMask, examples, exMask)
}

func maskFor(kind string, n int, indices []int, all bool) (cards.SelectionMask, error) {
	if all {
		mask := make(cards.SelectionMask, n)
		for i := range mask {
			mask[i] = true
		}
		return mask, nil
	}
	for _, i := range indices {
		if i < 0 || i >= n {
			return nil, fmt.Errorf("%s index %d out of range (%d available)", kind, i, n)
		}
	}
	return cards.MaskFromIndices(n, indices...), nil
}

func (p *Processor) saveRecords(records []cards.Record) error {
	if p.flags.DryRun {
		for _, r := range records {
			fmt.Fprintf(p.out, "  Card: %s | %s | %s\n", r.FrontText, r.BackWord, strings.ReplaceAll(r.InfoHTML, cards.InfoSeparator, "; "))
		}
		fmt.Fprintf(p.out, "  Dry run, %d cards not saved\n", len(records))
		return nil
	}

	if err := p.pending.Append(records); err != nil {
		return err
	}
	fmt.Fprintf(p.out, "  Saved %d cards to %s\n", len(records), p.pending.Path())
	return nil
}

func (p *Processor) printResult(result *lookup.Result) {
	fmt.Fprintf(p.out, "\n%s\n", result.Word)
	if entry, ok := p.dict.Lookup(result.Word); ok && entry.HSKLevel > 0 {
		fmt.Fprintf(p.out, "HSK %d\n", entry.HSKLevel)
	}

	fmt.Fprintf(p.out, "\nDefinitions:\n")
	for i, d := range result.Definitions {
		fmt.Fprintf(p.out, "  [%d] %s\n", i, d)
	}

	fmt.Fprintf(p.out, "\nExamples:\n")
	if len(result.Examples) == 0 {
		fmt.Fprintf(p.out, "  (none)\n")
	}
	for i, e := range result.Examples {
		fmt.Fprintf(p.out, "  [%d] %s\n      %s\n", i, e.SourceText, e.GlossText)
	}

	if n := len(result.WordCards) + len(result.LegacyWordCards); n > 0 {
		fmt.Fprintf(p.out, "\nExisting cards: %d\n", n)
	}
}

// Export writes the pending cards to an .apkg file in the output directory
// and archives the pending file. It returns the package path. Cards saved
// while the export runs stay pending for the next one.
func (p *Processor) Export(ctx context.Context) (string, error) {
	var outputPath, archived string
	var count int

	err := p.pending.Drain(func(records []cards.Record) error {
		if len(records) == 0 {
			return ErrNoPendingCards
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		outputDir := p.flags.OutputDir
		if outputDir == "" {
			outputDir = filepath.Join(p.flags.StateDir, "export")
		}
		// The package itself is written by SQLite and archive/zip, so fs
		// must be backed by the OS filesystem for exports
		if err := p.fs.MkdirAll(outputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}

		now := p.now()
		gen := anki.NewAPKGGenerator(p.flags.DeckName)
		gen.AddRecords(records)

		outputPath = filepath.Join(outputDir, internal.ExportFileName(p.flags.DeckName, now))
		if err := gen.GenerateAPKG(outputPath); err != nil {
			return fmt.Errorf("failed to generate APKG: %w", err)
		}

		var err error
		archived, err = archive.ArchivePending(p.fs, p.pending.Path(), now)
		if err != nil {
			return err
		}
		count = len(records)
		return nil
	})
	if err != nil {
		return "", err
	}

	p.log.Info("exported cards",
		zap.Int("cards", count),
		zap.String("package", outputPath),
		zap.String("archived", archived))
	return outputPath, nil
}

// ArchivePending moves the pending cards file into the archive directory
func (p *Processor) ArchivePending() (string, error) {
	return archive.ArchivePending(p.fs, p.pending.Path(), p.now())
}

// ListModels prints the OpenAI chat models usable for example sentences
func (p *Processor) ListModels(ctx context.Context) error {
	return models.NewLister(p.apiKey).ListAvailableModels(ctx, p.out, p.flags.OpenAIModel)
}

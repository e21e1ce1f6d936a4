package cli

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

// Flags holds all command-line flag values
type Flags struct {
	// General flags
	CfgFile   string
	DataDir   string
	StateDir  string
	OutputDir string
	Listen    string
	BatchFile string
	Export    bool
	Archive   bool
	DeckName  string
	LogLevel  string
	LogJSON   bool

	// Single word flags
	Definitions []int
	Examples    []int
	Sentences   []string
	DryRun      bool

	// Lookup sources
	AnkiCollection string
	Sources        []string
	ListModels     bool

	// OpenAI flags
	OpenAIModel string
	OpenAICount int
}

// NewFlags creates a new Flags instance with default values
func NewFlags() *Flags {
	return &Flags{
		DataDir:     DefaultDataDir(),
		StateDir:    DefaultStateDir(),
		OutputDir:   filepath.Join(DefaultStateDir(), "export"),
		Listen:      "localhost:5000",
		DeckName:    "Chinese::General",
		LogLevel:    "info",
		Sources:     []string{"linedict", "yellowbridge"},
		OpenAIModel: "gpt-4o-mini",
		OpenAICount: 5,
	}
}

// DefaultDataDir holds the dictionary files and the example database
func DefaultDataDir() string {
	return filepath.Join(xdg.DataHome, "cardcreator")
}

// DefaultStateDir holds the pending cards and their archives
func DefaultStateDir() string {
	return filepath.Join(xdg.StateHome, "cardcreator")
}

// ExampleDBPath is the location of the example sentence database
func (f *Flags) ExampleDBPath() string {
	return filepath.Join(f.DataDir, "examples.db")
}

// PendingPath is the location of the pending cards file
func (f *Flags) PendingPath() string {
	return filepath.Join(f.StateDir, "pending_anki.csv")
}

package cli

import (
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestNewFlags(t *testing.T) {
	flags := NewFlags()

	tests := []struct {
		name     string
		got      interface{}
		expected interface{}
	}{
		{"Listen", flags.Listen, "localhost:5000"},
		{"DeckName", flags.DeckName, "Chinese::General"},
		{"LogLevel", flags.LogLevel, "info"},
		{"Sources", flags.Sources, []string{"linedict", "yellowbridge"}},
		{"OpenAIModel", flags.OpenAIModel, "gpt-4o-mini"},
		{"OpenAICount", flags.OpenAICount, 5},
		{"DataDir", flags.DataDir, DefaultDataDir()},
		{"StateDir", flags.StateDir, DefaultStateDir()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !reflect.DeepEqual(tt.got, tt.expected) {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.expected)
			}
		})
	}

	// Test boolean defaults (should be false)
	boolTests := []struct {
		name  string
		value bool
	}{
		{"Export", flags.Export},
		{"Archive", flags.Archive},
		{"DryRun", flags.DryRun},
		{"ListModels", flags.ListModels},
		{"LogJSON", flags.LogJSON},
	}

	for _, tt := range boolTests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value {
				t.Errorf("%s = %v, want false", tt.name, tt.value)
			}
		})
	}
}

func TestDefaultDirs(t *testing.T) {
	if !strings.HasSuffix(DefaultDataDir(), "cardcreator") {
		t.Errorf("DefaultDataDir() = %s", DefaultDataDir())
	}
	if !strings.HasSuffix(DefaultStateDir(), "cardcreator") {
		t.Errorf("DefaultStateDir() = %s", DefaultStateDir())
	}
}

func TestDerivedPaths(t *testing.T) {
	flags := &Flags{DataDir: "/data", StateDir: "/state"}

	if got := flags.ExampleDBPath(); got != filepath.Join("/data", "examples.db") {
		t.Errorf("ExampleDBPath() = %s", got)
	}
	if got := flags.PendingPath(); got != filepath.Join("/state", "pending_anki.csv") {
		t.Errorf("PendingPath() = %s", got)
	}
}

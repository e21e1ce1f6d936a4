package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"codeberg.org/snonux/cardcreator/internal"
)

// CreateRootCommand creates and configures the root cobra command
func CreateRootCommand(flags *Flags) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "cardcreator [word]",
		Short: "Chinese Anki Flashcard Creator",
		Long: `cardcreator creates Anki sentence cards for Chinese words.

It looks words up in CC-CEDICT, collects example sentences from the web
and turns the definitions and sentences you pick into cloze style cards.

Examples:
  cardcreator                              # Serve the web UI (default)
  cardcreator 走                           # List definitions and examples for 走
  cardcreator 走 --def 0 --example 1,3     # Create cards from the picked entries
  cardcreator --batch words.txt            # Create cards for every word in a file
  cardcreator --export                     # Write pending cards to an .apkg file`,
		Args:    cobra.MaximumNArgs(1),
		Version: internal.Version,
	}

	// Set up flags
	setupFlags(rootCmd, flags)

	return rootCmd
}

func setupFlags(cmd *cobra.Command, flags *Flags) {
	// Global flags
	cmd.PersistentFlags().StringVar(&flags.CfgFile, "config", "", "config file (default is $HOME/.cardcreator.yaml)")
	cmd.PersistentFlags().StringVar(&flags.LogLevel, "log-level", flags.LogLevel, "Log level: debug, info, warn, error")
	cmd.PersistentFlags().BoolVar(&flags.LogJSON, "log-json", false, "Log as JSON")

	// Local flags
	cmd.Flags().StringVar(&flags.DataDir, "data-dir", flags.DataDir, "Directory with cedict_ts.u8, hsk_words.txt and the example database")
	cmd.Flags().StringVar(&flags.StateDir, "state-dir", flags.StateDir, "Directory for pending cards and archives")
	cmd.Flags().StringVarP(&flags.OutputDir, "output", "o", flags.OutputDir, "Output directory for exported .apkg files")
	cmd.Flags().StringVarP(&flags.Listen, "listen", "l", flags.Listen, "Address the web UI listens on")
	cmd.Flags().StringVar(&flags.BatchFile, "batch", "", "Create cards for words from file (one per line)")
	cmd.Flags().BoolVar(&flags.Export, "export", false, "Export pending cards to an .apkg file and archive them")
	cmd.Flags().BoolVar(&flags.Archive, "archive", false, "Archive the pending cards file without exporting")
	cmd.Flags().StringVar(&flags.DeckName, "deck-name", flags.DeckName, "Deck name for APKG export")
	cmd.Flags().StringVar(&flags.AnkiCollection, "anki-collection", "", "Anki collection.anki2 to look up existing cards in")
	cmd.Flags().StringSliceVar(&flags.Sources, "sources", flags.Sources, "Example sentence sources: linedict, yellowbridge, openai")
	cmd.Flags().BoolVar(&flags.ListModels, "list-models", false, "List OpenAI chat models available for example sentences")

	// Single word flags
	cmd.Flags().IntSliceVarP(&flags.Definitions, "def", "d", nil, "Definition indices to put on the cards")
	cmd.Flags().IntSliceVarP(&flags.Examples, "example", "e", nil, "Example indices to create cards for")
	cmd.Flags().StringArrayVarP(&flags.Sentences, "sentence", "s", nil, "Add your own example sentence (repeatable)")
	cmd.Flags().BoolVar(&flags.DryRun, "dry-run", false, "Print the cards instead of saving them")

	// OpenAI flags
	cmd.Flags().StringVar(&flags.OpenAIModel, "openai-model", flags.OpenAIModel, "OpenAI chat model for generated example sentences")
	cmd.Flags().IntVar(&flags.OpenAICount, "openai-count", flags.OpenAICount, "Number of sentences to generate per word")

	// Bind flags to viper
	bindFlagsToViper(cmd)
}

func bindFlagsToViper(cmd *cobra.Command) {
	viper.BindPFlag("log.level", cmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log.json", cmd.PersistentFlags().Lookup("log-json"))
	viper.BindPFlag("paths.data", cmd.Flags().Lookup("data-dir"))
	viper.BindPFlag("paths.state", cmd.Flags().Lookup("state-dir"))
	viper.BindPFlag("paths.output", cmd.Flags().Lookup("output"))
	viper.BindPFlag("paths.anki_collection", cmd.Flags().Lookup("anki-collection"))
	viper.BindPFlag("server.listen", cmd.Flags().Lookup("listen"))
	viper.BindPFlag("anki.deck", cmd.Flags().Lookup("deck-name"))
	viper.BindPFlag("examples.sources", cmd.Flags().Lookup("sources"))
	viper.BindPFlag("llm.model", cmd.Flags().Lookup("openai-model"))
	viper.BindPFlag("llm.count", cmd.Flags().Lookup("openai-count"))
}

// ApplyConfig copies values from the config file and environment into
// flags the user did not set on the command line
func ApplyConfig(cmd *cobra.Command, flags *Flags) {
	str := func(name, key string, dst *string) {
		if !changed(cmd, name) && viper.IsSet(key) {
			*dst = viper.GetString(key)
		}
	}
	str("log-level", "log.level", &flags.LogLevel)
	str("data-dir", "paths.data", &flags.DataDir)
	str("state-dir", "paths.state", &flags.StateDir)
	str("output", "paths.output", &flags.OutputDir)
	str("anki-collection", "paths.anki_collection", &flags.AnkiCollection)
	str("listen", "server.listen", &flags.Listen)
	str("deck-name", "anki.deck", &flags.DeckName)
	str("openai-model", "llm.model", &flags.OpenAIModel)

	if !changed(cmd, "log-json") && viper.IsSet("log.json") {
		flags.LogJSON = viper.GetBool("log.json")
	}
	if !changed(cmd, "sources") && viper.IsSet("examples.sources") {
		flags.Sources = viper.GetStringSlice("examples.sources")
	}
	if !changed(cmd, "openai-count") && viper.IsSet("llm.count") {
		flags.OpenAICount = viper.GetInt("llm.count")
	}

	// Exports follow a moved state directory unless placed explicitly
	if !changed(cmd, "output") && !viper.IsSet("paths.output") {
		flags.OutputDir = filepath.Join(flags.StateDir, "export")
	}
}

func changed(cmd *cobra.Command, name string) bool {
	if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
		return true
	}
	if f := cmd.PersistentFlags().Lookup(name); f != nil && f.Changed {
		return true
	}
	return false
}

// InitConfig initializes viper configuration
func InitConfig(cfgFile string) {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting home directory: %v\n", err)
			return
		}

		// Search config in home directory with name ".cardcreator" (without extension)
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".cardcreator")
	}

	// Environment variables, e.g. CARDCREATOR_SERVER_LISTEN
	viper.SetEnvPrefix("CARDCREATOR")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Read config file
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// GetOpenAIKey retrieves the OpenAI API key from environment or config
func GetOpenAIKey() string {
	// First check environment variable
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return key
	}

	// Then check config file
	return viper.GetString("llm.openai_key")
}

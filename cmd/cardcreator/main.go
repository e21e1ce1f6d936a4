package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"codeberg.org/snonux/cardcreator/internal/cli"
	"codeberg.org/snonux/cardcreator/internal/logging"
	"codeberg.org/snonux/cardcreator/internal/processor"
)

func main() {
	// Create flags instance
	flags := cli.NewFlags()

	// Create root command
	rootCmd := cli.CreateRootCommand(flags)

	// Set up command initialization
	cobra.OnInitialize(func() {
		cli.InitConfig(flags.CfgFile)
	})

	// Set the run function
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runCommand(cmd, args, flags)
	}

	// Execute command
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runCommand(cmd *cobra.Command, args []string, flags *cli.Flags) error {
	// Config file and environment fill in what the command line left out
	cli.ApplyConfig(cmd, flags)

	logger, err := logging.New(flags.LogLevel, flags.LogJSON)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	proc := processor.NewProcessor(flags, logger)
	defer proc.Close()

	// Handle --archive flag
	if flags.Archive {
		archived, err := proc.ArchivePending()
		if err != nil {
			return fmt.Errorf("failed to archive pending cards: %w", err)
		}
		fmt.Printf("Archived pending cards to %s\n", archived)
		return nil
	}

	// Handle --list-models flag
	if flags.ListModels {
		return proc.ListModels(ctx)
	}

	switch {
	case flags.BatchFile != "":
		if err := proc.ProcessBatch(ctx); err != nil {
			return err
		}
	case len(args) > 0:
		if err := proc.ProcessSingleWord(ctx, args[0]); err != nil {
			return err
		}
	case !flags.Export:
		// No input provided - serve the web UI by default
		if err := proc.RunServer(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	}

	// Export pending cards if requested
	if flags.Export {
		fmt.Printf("\nExporting pending cards...\n")
		outputPath, err := proc.Export(ctx)
		if err != nil {
			logger.Error("export failed", zap.Error(err))
			return err
		}
		fmt.Printf("Anki package created: %s\n", outputPath)
	}

	return nil
}

package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/minirag/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: heredoc.Doc(`
		View and configure chunking, search and evaluation defaults.

		Settings are stored in config.toml in the settings directory.
		MINIRAG_* environment variables (also read from .env) take precedence
		over the file, and command flags take precedence over both.
	`),
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	Args:  cobra.NoArgs,
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a single setting",
	Long: heredoc.Doc(`
		Set a single setting and save it.

		Keys:
		  chunking.strategy    fixed_size or paragraph
		  chunking.chunk_size  characters per fixed_size chunk
		  chunking.overlap     characters shared by consecutive fixed_size chunks
		  chunking.lookback    characters searched backwards for a word boundary
		  search.limit         default number of search results
		  evaluation.limit     default number of results per evaluated query
	`),
	Example: heredoc.Doc(`
		$ minirag settings set chunking.strategy paragraph
		$ minirag settings set chunking.chunk_size 500
	`),
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsResetCmd = &cobra.Command{
	Use:   "reset [key]",
	Short: "Restore a setting to its default",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsReset,
}

var settingsWizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Interactive setup wizard",
	Long:  `Run an interactive wizard to configure all settings step by step.`,
	Args:  cobra.NoArgs,
	RunE:  runSettingsWizard,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsResetCmd)
	settingsCmd.AddCommand(settingsWizardCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Chunking]")
	cmd.Printf("  Strategy: %s\n", settings.Chunking.Strategy.Description())
	cmd.Printf("  Chunk size: %d characters\n", settings.Chunking.ChunkSize)
	cmd.Printf("  Overlap: %d characters\n", settings.Chunking.Overlap)
	cmd.Printf("  Lookback: %d characters\n", settings.Chunking.LookBack)
	cmd.Println()

	cmd.Println("[Search]")
	cmd.Printf("  Limit: %d\n", settings.Search.Limit)
	cmd.Println()

	cmd.Println("[Evaluation]")
	cmd.Printf("  Limit: %d\n", settings.Evaluation.Limit)
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	if err := settingsService.Set(args[0], args[1]); err != nil {
		return fmt.Errorf("failed to set %s: %w", args[0], err)
	}
	cmd.Printf("Set %s to %s\n", args[0], args[1])
	return nil
}

func runSettingsReset(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	if err := settingsService.Reset(args[0]); err != nil {
		return fmt.Errorf("failed to reset %s: %w", args[0], err)
	}
	cmd.Printf("Reset %s to its default\n", args[0])
	return nil
}

func runSettingsWizard(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("minirag Settings Wizard")
	cmd.Println("=======================")
	cmd.Println()

	reader := bufio.NewReader(cmd.InOrStdin())

	// Step 1: Chunking strategy
	cmd.Println("Step 1: Select Chunking Strategy")
	cmd.Println("--------------------------------")
	strategies := []domain.ChunkType{domain.ChunkFixedSize, domain.ChunkParagraph}
	current := 1
	for i, s := range strategies {
		cmd.Printf("  %d. %s\n", i+1, s.Description())
		if s == settings.Chunking.Strategy {
			current = i + 1
		}
	}
	cmd.Printf("\nEnter choice [%d]: ", current)
	choice := parseChoice(readLine(reader), len(strategies), current)
	settings.Chunking.Strategy = strategies[choice-1]
	cmd.Println()

	// Step 2: Fixed size parameters
	cmd.Println("Step 2: Fixed Size Parameters")
	cmd.Println("-----------------------------")
	settings.Chunking.ChunkSize = promptInt(cmd, reader, "Chunk size in characters", settings.Chunking.ChunkSize)
	settings.Chunking.Overlap = promptInt(cmd, reader, "Overlap in characters", settings.Chunking.Overlap)
	cmd.Println()

	// Step 3: Limits
	cmd.Println("Step 3: Result Limits")
	cmd.Println("---------------------")
	settings.Search.Limit = promptInt(cmd, reader, "Search results", settings.Search.Limit)
	settings.Evaluation.Limit = promptInt(cmd, reader, "Evaluation results", settings.Evaluation.Limit)
	cmd.Println()

	if err := settingsService.Save(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	cmd.Println("Configuration Complete!")
	cmd.Println("=======================")
	cmd.Println("All settings are valid and saved.")
	return nil
}

func promptInt(cmd *cobra.Command, reader *bufio.Reader, label string, current int) int {
	cmd.Printf("%s [%d]: ", label, current)
	input := readLine(reader)
	if input == "" {
		return current
	}
	v, err := strconv.Atoi(input)
	if err != nil {
		cmd.Printf("Not a number, keeping %d\n", current)
		return current
	}
	return v
}

func readLine(reader *bufio.Reader) string {
	input, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return ""
	}
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

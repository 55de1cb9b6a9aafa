package cli

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/minirag/internal/adapters/driving/tui"
)

// errNotTerminal is returned when tui is started without a terminal.
var errNotTerminal = errors.New("tui needs an interactive terminal")

// isTerminal reports whether stdout is a terminal. Replaced in tests.
var isTerminal = func() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// tuiCmd represents the tui command.
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal UI",
	Long: `Launch an interactive search session over the loaded documents.

Load documents with --docs; add --watch to keep them in step with the
files on disk while the session runs.

Controls:
  Enter    - Search
  ↑/k, ↓/j - Navigate results
  y        - Copy the selected chunk
  /        - New search
  Tab      - Browse documents
  ?        - Toggle help
  Esc      - Quit (back, in other views)`,
	RunE: runTUI,
}

func init() {
	tuiCmd.Flags().BoolP("watch", "w", false, "re-ingest --docs paths when files change")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	if !isTerminal() {
		return errNotTerminal
	}
	if searchService == nil || documentService == nil {
		return errors.New("search service not configured")
	}

	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	watch, err := cmd.Flags().GetBool("watch")
	if err != nil {
		return fmt.Errorf("getting watch flag: %w", err)
	}

	ctx := commandContext(cmd)
	if watch {
		stop, err := startWatch(ctx, cmd, docPaths)
		if err != nil {
			return err
		}
		defer stop()
	}

	ports := tui.NewPorts(searchService, documentService)
	ports.Sync = syncOrchestrator
	ports.Clipboard = clipboard.WriteAll

	app, err := tui.NewApp(ports)
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}

	if err := app.WithContext(ctx).Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

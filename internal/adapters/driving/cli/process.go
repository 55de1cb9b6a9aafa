package cli

import (
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"
)

// stdinPath is the argument that reads a document from standard input.
const stdinPath = "-"

var processName string

var processCmd = &cobra.Command{
	Use:   "process [path...]",
	Short: "Process documents",
	Long: heredoc.Doc(`
		Reads files or directories, splits each document into chunks and
		prints the resulting document IDs.

		Directories are walked recursively for .txt, .text, .md and .markdown
		files; hidden files are skipped. Use - to read one document from
		standard input, named with --name.
	`),
	Example: heredoc.Doc(`
		$ minirag process notes/ml.md
		$ minirag process notes/ --strategy paragraph
		$ cat draft.txt | minirag process - --name draft.txt
	`),
	Args: cobra.MinimumNArgs(1),
	RunE: runProcess,
}

func init() {
	processCmd.Flags().StringVar(&processName, "name", "stdin.txt", "source path recorded for - input")
	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}
	ctx := commandContext(cmd)

	var paths []string
	for _, arg := range args {
		if arg != stdinPath {
			paths = append(paths, arg)
			continue
		}
		content, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		cmd.Printf("Processing document: %s\n", processName)
		if _, err := documentService.ProcessContent(ctx, string(content), processName, ""); err != nil {
			return fmt.Errorf("failed to process %s: %w", processName, err)
		}
	}

	failed := 0
	if len(paths) > 0 {
		for _, p := range paths {
			cmd.Printf("Processing document: %s\n", p)
		}
		result, err := ingestPaths(cmd, paths)
		if err != nil {
			return err
		}
		failed = result.Failed
	}

	seq, err := documentService.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}
	summaries := slices.Collect(seq)
	if len(summaries) == 0 {
		return errors.New("no documents were processed")
	}

	cmd.Printf("✓ Processed %d documents", len(summaries))
	if failed > 0 {
		cmd.Printf(" (%d failed)", failed)
	}
	cmd.Println()
	for i := range summaries {
		cmd.Printf("  Document ID: %s\n", summaries[i].ID)
		cmd.Printf("    Source: %s\n", summaries[i].SourcePath)
		cmd.Printf("    Chunks: %d, Words: %d\n", summaries[i].ChunkCount, summaries[i].WordCount)
	}
	return nil
}

package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List processed documents",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show storage statistics",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(statsCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	ctx := commandContext(cmd)
	stats, err := documentService.Stats(ctx)
	if err != nil {
		return fmt.Errorf("failed to read stats: %w", err)
	}
	summaries, err := documentService.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	cmd.Printf("Processed Documents (%d):\n", stats.TotalDocuments)
	for summary := range summaries {
		cmd.Printf("  - %s (%s, %d words, %d chunks) %s\n",
			summary.ID, summary.Kind, summary.WordCount, summary.ChunkCount, summary.SourcePath)
	}
	return nil
}

func runStats(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	stats, err := documentService.Stats(commandContext(cmd))
	if err != nil {
		return fmt.Errorf("failed to read stats: %w", err)
	}
	cmd.Println("Storage Statistics:")
	cmd.Printf("  Total Documents: %d\n", stats.TotalDocuments)
	cmd.Printf("  Total Chunks: %d\n", stats.TotalChunks)
	cmd.Printf("  Total Size: %d bytes\n", stats.TotalSizeBytes)
	return nil
}

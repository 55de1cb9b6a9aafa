package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var documentCmd = &cobra.Command{
	Use:   "document",
	Short: "Inspect processed documents",
	Long:  `View the details, content or chunks of a processed document, or remove it.`,
}

var documentGetCmd = &cobra.Command{
	Use:   "get [doc-id]",
	Short: "Show document info",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentGet,
}

var documentContentCmd = &cobra.Command{
	Use:   "content [doc-id]",
	Short: "Print document content",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentContent,
}

var documentChunksCmd = &cobra.Command{
	Use:   "chunks [doc-id]",
	Short: "Print document chunks in order",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentChunks,
}

var documentDeleteCmd = &cobra.Command{
	Use:   "delete [doc-id]",
	Short: "Remove a document and its chunks",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentDelete,
}

func init() {
	documentCmd.AddCommand(documentGetCmd)
	documentCmd.AddCommand(documentContentCmd)
	documentCmd.AddCommand(documentChunksCmd)
	documentCmd.AddCommand(documentDeleteCmd)
	rootCmd.AddCommand(documentCmd)
}

func runDocumentGet(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	details, err := documentService.GetDetails(commandContext(cmd), args[0])
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	cmd.Printf("Document: %s\n\n", details.ID)
	cmd.Printf("  Title:    %s\n", details.Title)
	cmd.Printf("  Source:   %s\n", details.SourcePath)
	cmd.Printf("  Type:     %s\n", details.Kind)
	cmd.Printf("  Size:     %d bytes\n", details.SizeBytes)
	cmd.Printf("  Words:    %d\n", details.WordCount)
	cmd.Printf("  Chunks:   %d\n", details.ChunkCount)
	cmd.Printf("  Created:  %s\n", details.CreatedAt.Format("2006-01-02 15:04:05"))
	return nil
}

func runDocumentContent(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	content, err := documentService.GetContent(commandContext(cmd), args[0])
	if err != nil {
		return fmt.Errorf("failed to get content: %w", err)
	}

	cmd.Println(content)
	return nil
}

func runDocumentChunks(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	chunks, err := documentService.GetChunks(commandContext(cmd), args[0])
	if err != nil {
		return fmt.Errorf("failed to get chunks: %w", err)
	}

	if len(chunks) == 0 {
		cmd.Println("Document has no chunks.")
		return nil
	}

	for i := range chunks {
		c := &chunks[i]
		cmd.Printf("[%d] %s (%s, bytes %d-%d, %d words)\n", c.Position, c.ID, c.Type, c.Start, c.End, c.WordCount)
		cmd.Println(c.Content)
		cmd.Println()
	}
	cmd.Printf("Total: %d chunks\n", len(chunks))
	return nil
}

func runDocumentDelete(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	if err := documentService.Delete(commandContext(cmd), args[0]); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	cmd.Printf("Deleted document: %s\n", args[0])
	return nil
}
